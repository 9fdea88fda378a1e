package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, ttl), mr
}

func TestStoreCreateAndGet(t *testing.T) {
	store, _ := setupStore(t, time.Minute)

	token, err := store.Create(context.Background(), Session{UserID: 7, Role: "student"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sess, err := store.Get(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, uint(7), sess.UserID)
	require.Equal(t, "student", sess.Role)
}

func TestStoreGetUnknownToken(t *testing.T) {
	store, _ := setupStore(t, time.Minute)

	_, err := store.Get(context.Background(), "no-such-token")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(context.Background(), "  ")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreIdleExpiry(t *testing.T) {
	store, mr := setupStore(t, time.Minute)

	token, err := store.Create(context.Background(), Session{UserID: 1, Role: "admin"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(context.Background(), token)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRefreshExtendsIdleWindow(t *testing.T) {
	store, mr := setupStore(t, time.Minute)

	token, err := store.Create(context.Background(), Session{UserID: 2, Role: "supervisor"})
	require.NoError(t, err)

	mr.FastForward(45 * time.Second)
	require.NoError(t, store.Refresh(context.Background(), token))
	mr.FastForward(45 * time.Second)

	sess, err := store.Get(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, uint(2), sess.UserID)
}

func TestStoreRefreshUnknownToken(t *testing.T) {
	store, _ := setupStore(t, time.Minute)

	require.ErrorIs(t, store.Refresh(context.Background(), "gone"), ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	store, _ := setupStore(t, time.Minute)

	token, err := store.Create(context.Background(), Session{UserID: 3, Role: "student"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), token))
	_, err = store.Get(context.Background(), token)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(context.Background(), token))
}
