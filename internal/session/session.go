package session

import (
	"context"
	"errors"
	"time"

	"github.com/vasiliy-maslov/portfolio-service/internal/user"
)

// RoleAdmin is the only role; every authenticated user administers the portfolio.
const RoleAdmin = "admin"

var (
	ErrNoSession       = errors.New("session not found or expired")
	ErrUnauthenticated = errors.New("authentication required")
)

// Claims is the identity snapshot stored with a session at login.
type Claims struct {
	UserID    int64  `json:"id"`
	UUID      string `json:"uuid"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Timezone  string `json:"timezone"`
	Role      string `json:"role"`
}

func NewClaims(u *user.User) Claims {
	return Claims{
		UserID:    u.ID,
		UUID:      u.UUID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Timezone:  u.Timezone,
		Role:      RoleAdmin,
	}
}

type Session struct {
	Token        string
	Claims       Claims
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type contextKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// Check never fails; it reports whether ctx carries a session and its claims.
func Check(ctx context.Context) (bool, *Claims) {
	s, ok := FromContext(ctx)
	if !ok {
		return false, nil
	}
	claims := s.Claims
	return true, &claims
}

func CurrentUser(ctx context.Context) (*Claims, error) {
	ok, claims := Check(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
