package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmptyPassword      = errors.New("password cannot be empty")
)

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	UpdatePassword(ctx context.Context, id int64, newPassword string) error
	UpdateUser(ctx context.Context, id int64, patch Patch) (bool, error)
}

type service struct {
	repo Repository
	cost int
}

func NewService(repo Repository) Service {
	return &service{repo: repo, cost: bcrypt.DefaultCost}
}

// NewServiceWithCost is NewService with an explicit bcrypt cost.
func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, cost: cost}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// unknownEmailHash is compared against when the email does not exist so that
// both failure paths spend a bcrypt comparison.
func unknownEmailHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	return dummyHash
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if input.Password == "" {
		return nil, ErrEmptyPassword
	}

	exists, err := s.repo.EmailExists(ctx, input.Email)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to check email before registration")
		return nil, fmt.Errorf("service: failed to check email: %w", err)
	}
	if exists {
		log.Warn().Str("email", input.Email).Msg("service: registration with existing email")
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to generate password hash")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	publicID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate user uuid: %w", err)
	}

	timezone := strings.TrimSpace(input.Timezone)
	if timezone == "" {
		timezone = DefaultTimezone
	}

	newUser := &User{
		UUID:         publicID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
		Timezone:     timezone,
	}

	id, err := s.repo.Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			log.Warn().Str("email", input.Email).Msg("service: email taken by a concurrent registration")
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to save user: %w", err)
	}

	newUser.ID = id
	log.Info().Int64("user_id", id).Msg("service: user registered")
	return newUser, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(unknownEmailHash(), []byte(password))
			log.Warn().Str("email", email).Msg("service: login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("service: failed to load user for login")
		return nil, fmt.Errorf("service: failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		log.Warn().Int64("user_id", found.ID).Msg("service: login attempt with wrong password")
		return nil, ErrInvalidCredentials
	}

	return found, nil
}

func (s *service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to get user by id")
		return nil, fmt.Errorf("service: failed to get user by id %d: %w", id, err)
	}

	return found, nil
}

func (s *service) UpdatePassword(ctx context.Context, id int64, newPassword string) error {
	if newPassword == "" {
		return ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to generate password hash")
		return fmt.Errorf("service: failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to update password")
		return fmt.Errorf("service: failed to update password for user %d: %w", id, err)
	}

	return nil
}

func (s *service) UpdateUser(ctx context.Context, id int64, patch Patch) (bool, error) {
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmailExists) {
			return false, err
		}
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to update user")
		return false, fmt.Errorf("service: failed to update user %d: %w", id, err)
	}

	return updated, nil
}
