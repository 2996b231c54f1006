package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vasiliy-maslov/portfolio-service/internal/db"
)

var (
	ErrNotFound   = errors.New("project not found")
	ErrSlugExists = errors.New("project slug already exists")
)

const (
	DefaultPublishedLimit = 20
	DefaultAdminLimit     = 100
)

const projectColumns = "id, title, slug, short_description, full_description, category, technologies, features, " +
	"thumbnail_url, main_image_url, github_url, demo_url, client_name, project_date, display_order, featured, " +
	"status, created_at, updated_at"

type Repository interface {
	Create(ctx context.Context, input CreateInput) (*Project, error)
	GetAllPublished(ctx context.Context, limit int) ([]Project, error)
	GetAll(ctx context.Context, limit int) ([]Project, error)
	GetBySlug(ctx context.Context, slug string) (*Project, error)
	GetByID(ctx context.Context, id int64) (*Project, error)
	Update(ctx context.Context, id int64, patch Patch) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type Option func(*postgresRepository)

// WithClock replaces the time source used for slugs and update stamps.
func WithClock(now func() time.Time) Option {
	return func(r *postgresRepository) {
		r.now = now
	}
}

type postgresRepository struct {
	db   *sqlx.DB
	psql sq.StatementBuilderType
	now  func() time.Time
}

func NewRepository(db *sqlx.DB, opts ...Option) Repository {
	r := &postgresRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create stores text fields verbatim, markup included; escaping happens when responses are encoded.
func (r *postgresRepository) Create(ctx context.Context, input CreateInput) (*Project, error) {
	now := r.now()

	p := &Project{
		Title:            input.Title,
		Slug:             GenerateSlug(input.Title, now),
		ShortDescription: input.ShortDescription,
		FullDescription:  input.FullDescription,
		Category:         input.Category,
		Technologies:     StringList(input.Technologies),
		Features:         StringList(input.Features),
		ThumbnailURL:     input.ThumbnailURL,
		MainImageURL:     input.MainImageURL,
		GithubURL:        input.GithubURL,
		DemoURL:          input.DemoURL,
		ClientName:       input.ClientName,
		DisplayOrder:     input.DisplayOrder,
		Featured:         input.Featured,
		Status:           input.Status,
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.Status == "" {
		p.Status = StatusPublished
	}
	if input.ProjectDate != nil {
		p.ProjectDate = *input.ProjectDate
	} else {
		p.ProjectDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if p.Technologies == nil {
		p.Technologies = StringList{}
	}
	if p.Features == nil {
		p.Features = StringList{}
	}

	query, args, err := r.psql.Insert("projects").
		Columns(
			"title", "slug", "short_description", "full_description", "category",
			"technologies", "features", "thumbnail_url", "main_image_url", "github_url",
			"demo_url", "client_name", "project_date", "display_order", "featured", "status",
		).
		Values(
			p.Title, p.Slug, p.ShortDescription, p.FullDescription, p.Category,
			p.Technologies, p.Features, p.ThumbnailURL, p.MainImageURL, p.GithubURL,
			p.DemoURL, p.ClientName, p.ProjectDate, p.DisplayOrder, p.Featured, string(p.Status),
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to build project insert: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("repository: failed to insert project: %w", err)
	}

	return p, nil
}

func (r *postgresRepository) GetAllPublished(ctx context.Context, limit int) ([]Project, error) {
	if limit <= 0 {
		limit = DefaultPublishedLimit
	}
	return r.list(ctx, sq.Eq{"status": string(StatusPublished)}, limit)
}

func (r *postgresRepository) GetAll(ctx context.Context, limit int) ([]Project, error) {
	if limit <= 0 {
		limit = DefaultAdminLimit
	}
	return r.list(ctx, nil, limit)
}

// list returns projects in display order; a nil filter includes every status.
func (r *postgresRepository) list(ctx context.Context, filter sq.Sqlizer, limit int) ([]Project, error) {
	builder := r.psql.Select(projectColumns).From("projects")
	if filter != nil {
		builder = builder.Where(filter)
	}

	query, args, err := builder.
		OrderBy("display_order ASC", "created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to build project listing: %w", err)
	}

	projects := []Project{}
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("repository: failed to list projects: %w", err)
	}

	return projects, nil
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	var p Project
	err := r.db.GetContext(ctx, &p,
		"SELECT "+projectColumns+" FROM projects WHERE slug = $1 AND status = $2 LIMIT 1",
		slug, string(StatusPublished),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select project by slug: %w", err)
	}

	return &p, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Project, error) {
	var p Project
	err := r.db.GetContext(ctx, &p, "SELECT "+projectColumns+" FROM projects WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select project %d: %w", id, err)
	}

	return &p, nil
}

func (r *postgresRepository) Update(ctx context.Context, id int64, patch Patch) (bool, error) {
	if patch.IsEmpty() {
		return false, nil
	}

	now := r.now()
	builder := r.psql.Update("projects").Where(sq.Eq{"id": id})

	if patch.Title != nil {
		builder = builder.
			Set("title", *patch.Title).
			Set("slug", GenerateSlug(*patch.Title, now))
	}
	if patch.ShortDescription != nil {
		builder = builder.Set("short_description", *patch.ShortDescription)
	}
	if patch.FullDescription != nil {
		builder = builder.Set("full_description", *patch.FullDescription)
	}
	if patch.Category != nil {
		builder = builder.Set("category", *patch.Category)
	}
	if patch.Technologies != nil {
		builder = builder.Set("technologies", StringList(*patch.Technologies))
	}
	if patch.Features != nil {
		builder = builder.Set("features", StringList(*patch.Features))
	}
	if patch.ThumbnailURL != nil {
		builder = builder.Set("thumbnail_url", *patch.ThumbnailURL)
	}
	if patch.MainImageURL != nil {
		builder = builder.Set("main_image_url", *patch.MainImageURL)
	}
	if patch.GithubURL != nil {
		builder = builder.Set("github_url", *patch.GithubURL)
	}
	if patch.DemoURL != nil {
		builder = builder.Set("demo_url", *patch.DemoURL)
	}
	if patch.ClientName != nil {
		builder = builder.Set("client_name", *patch.ClientName)
	}
	if patch.ProjectDate != nil {
		builder = builder.Set("project_date", *patch.ProjectDate)
	}
	if patch.DisplayOrder != nil {
		builder = builder.Set("display_order", *patch.DisplayOrder)
	}
	if patch.Featured != nil {
		builder = builder.Set("featured", *patch.Featured)
	}
	if patch.Status != nil {
		builder = builder.Set("status", string(*patch.Status))
	}
	builder = builder.Set("updated_at", now)

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("repository: failed to build project update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return false, ErrSlugExists
		}
		return false, fmt.Errorf("repository: failed to update project %d: %w", id, err)
	}

	if err := requireAffected(res, id); err != nil {
		return false, err
	}

	return true, nil
}

// Delete marks the project as deleted; the row is kept.
func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE projects SET status = $1, updated_at = $2 WHERE id = $3",
		string(StatusDeleted), r.now(), id,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to delete project %d: %w", id, err)
	}

	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read affected rows for project %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
