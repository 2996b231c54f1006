package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

type Service interface {
	CreateProject(ctx context.Context, input CreateInput) (*Project, error)
	ListPublished(ctx context.Context, limit int) ([]Project, error)
	ListAll(ctx context.Context, limit int) ([]Project, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*Project, error)
	UpdateProject(ctx context.Context, id int64, patch Patch) (bool, error)
	DeleteProject(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateProject(ctx context.Context, input CreateInput) (*Project, error) {
	created, err := s.repo.Create(ctx, input)
	if err != nil {
		if errors.Is(err, ErrSlugExists) {
			log.Warn().Str("title", input.Title).Msg("service: project slug collision")
			return nil, ErrSlugExists
		}
		log.Error().Err(err).Msg("service: failed to create project in repository")
		return nil, fmt.Errorf("service: failed to save project: %w", err)
	}

	log.Info().Int64("project_id", created.ID).Str("slug", created.Slug).Msg("service: project created")
	return created, nil
}

func (s *service) ListPublished(ctx context.Context, limit int) ([]Project, error) {
	projects, err := s.repo.GetAllPublished(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list published projects")
		return nil, fmt.Errorf("service: failed to list published projects: %w", err)
	}

	return projects, nil
}

func (s *service) ListAll(ctx context.Context, limit int) ([]Project, error) {
	projects, err := s.repo.GetAll(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list projects")
		return nil, fmt.Errorf("service: failed to list projects: %w", err)
	}

	return projects, nil
}

func (s *service) GetPublishedBySlug(ctx context.Context, slug string) (*Project, error) {
	found, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Str("slug", slug).Msg("service: project not found by slug")
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("slug", slug).Msg("service: failed to get project by slug")
		return nil, fmt.Errorf("service: failed to get project by slug: %w", err)
	}

	return found, nil
}

func (s *service) UpdateProject(ctx context.Context, id int64, patch Patch) (bool, error) {
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrSlugExists) {
			log.Warn().Err(err).Int64("project_id", id).Msg("service: project update rejected")
			return false, err
		}
		log.Error().Err(err).Int64("project_id", id).Msg("service: failed to update project")
		return false, fmt.Errorf("service: failed to update project %d: %w", id, err)
	}

	if updated {
		log.Info().Int64("project_id", id).Msg("service: project updated")
	}
	return updated, nil
}

func (s *service) DeleteProject(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Int64("project_id", id).Msg("service: delete of unknown project")
			return ErrNotFound
		}
		log.Error().Err(err).Int64("project_id", id).Msg("service: failed to delete project")
		return fmt.Errorf("service: failed to delete project %d: %w", id, err)
	}

	log.Info().Int64("project_id", id).Msg("service: project deleted")
	return nil
}
