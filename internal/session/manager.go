package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultTTL = 24 * time.Hour

type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(store Store, ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{store: store, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create starts a session for claims under a fresh random token.
func (m *Manager) Create(ctx context.Context, claims Claims) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("session: failed to generate token: %w", err)
	}

	if claims.Role == "" {
		claims.Role = RoleAdmin
	}

	now := m.now()
	s := &Session{
		Token:        token,
		Claims:       claims,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(m.ttl),
	}

	if err := m.store.Save(ctx, s); err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("session: failed to save session")
		return nil, fmt.Errorf("session: failed to save session: %w", err)
	}

	log.Info().Int64("user_id", claims.UserID).Time("expires_at", s.ExpiresAt).Msg("session: created")
	return s, nil
}

func (m *Manager) Load(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	s, err := m.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("session: failed to load session: %w", err)
	}

	if s.Expired(m.now()) {
		return nil, ErrNoSession
	}
	return s, nil
}

func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("session: failed to delete session: %w", err)
	}
	return nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
