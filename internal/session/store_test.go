package session_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/portfolio-service/internal/session"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	s := &session.Session{
		Token:     "abc",
		Claims:    session.Claims{UserID: 1},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Claims.UserID)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestMemoryStore_ReturnsCopy(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &session.Session{Token: "abc", ExpiresAt: time.Now().Add(time.Hour)}))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	got.Claims.Email = "mutated@x.com"

	again, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, again.Claims.Email)
}

func TestMemoryStore_ExpiredIsGone(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &session.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Minute)}))

	_, err := store.Get(ctx, "old")
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &session.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, store.Save(ctx, &session.Session{Token: "new", ExpiresAt: time.Now().Add(time.Hour)}))

	removed, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = store.Get(ctx, "new")
	require.NoError(t, err)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := fmt.Sprintf("token-%d", i)
			_ = store.Save(ctx, &session.Session{Token: token, ExpiresAt: time.Now().Add(time.Hour)})
			_, _ = store.Get(ctx, token)
			_ = store.Delete(ctx, token)
		}(i)
	}
	wg.Wait()
}
