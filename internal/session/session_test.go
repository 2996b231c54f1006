package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/portfolio-service/internal/session"
	"github.com/vasiliy-maslov/portfolio-service/internal/user"
)

func TestNewClaims(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	claims := session.NewClaims(&user.User{
		ID:        7,
		UUID:      id,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "a@x.com",
		Timezone:  "Europe/Paris",
	})

	assert.Equal(t, session.Claims{
		UserID:    7,
		UUID:      id.String(),
		Email:     "a@x.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Timezone:  "Europe/Paris",
		Role:      session.RoleAdmin,
	}, claims)
}

func TestCheck_Anonymous(t *testing.T) {
	ok, claims := session.Check(context.Background())
	assert.False(t, ok)
	assert.Nil(t, claims)

	_, err := session.CurrentUser(context.Background())
	require.ErrorIs(t, err, session.ErrUnauthenticated)
}

func TestCheck_Authenticated(t *testing.T) {
	s := &session.Session{Token: "t", Claims: session.Claims{UserID: 1, Email: "a@x.com"}}
	ctx := session.NewContext(context.Background(), s)

	ok, claims := session.Check(ctx)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", claims.Email)

	current, err := session.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current.UserID)
}

func TestNewContext_NilSessionIsAnonymous(t *testing.T) {
	ctx := session.NewContext(context.Background(), nil)
	_, ok := session.FromContext(ctx)
	assert.False(t, ok)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := session.Session{ExpiresAt: now}
	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}
