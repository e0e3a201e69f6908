package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/storage"
	"github.com/rryowa/campus_session/internal/storage/storagetest"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestTokenStorage(t *testing.T) {
	storagetest.RunTokenStoreTests(t, func(t *testing.T) storage.TokenStore {
		_, client := newTestRedis(t)
		return NewTokenStorage(client, "")
	})
}

func TestTokenStorage_Keys(t *testing.T) {
	mr, client := newTestRedis(t)
	s := NewTokenStorage(client, "")

	require.NoError(t, s.Save(context.Background(), models.TokenPair{Access: "a", Refresh: "r"}))

	access, err := mr.Get(models.AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "a", access)
	refresh, err := mr.Get(models.RefreshTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "r", refresh)
}

func TestTokenStorage_NamespacesIsolated(t *testing.T) {
	_, client := newTestRedis(t)
	alice := NewTokenStorage(client, "alice")
	bob := NewTokenStorage(client, "bob")

	require.NoError(t, alice.Save(context.Background(), models.TokenPair{Access: "a", Refresh: "r"}))

	_, err := bob.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrTokensNotFound)

	require.NoError(t, bob.Clear(context.Background()))
	_, err = alice.Load(context.Background())
	assert.NoError(t, err)
}

func TestTokenStorage_HalfPairIsAbsent(t *testing.T) {
	mr, client := newTestRedis(t)
	require.NoError(t, mr.Set(models.AccessTokenKey, "a"))

	_, err := NewTokenStorage(client, "").Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrTokensNotFound)
}

func TestSessionRepository(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	s := models.RefreshSession{Selector: "sel", VerifierHash: "hash", Username: "U22312"}
	require.NoError(t, repo.CreateSession(ctx, s, time.Hour))

	got, err := repo.GetSession(ctx, "sel")
	require.NoError(t, err)
	assert.Equal(t, "hash", got.VerifierHash)

	mr.FastForward(time.Hour + time.Second)
	_, err = repo.GetSession(ctx, "sel")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionRepository_DeleteAllUserSessions(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, models.RefreshSession{Selector: "a", Username: "u1"}, time.Hour))
	require.NoError(t, repo.CreateSession(ctx, models.RefreshSession{Selector: "b", Username: "u1"}, time.Hour))

	require.NoError(t, repo.DeleteAllUserSessions(ctx, "u1"))

	for _, sel := range []string{"a", "b"} {
		_, err := repo.GetSession(ctx, sel)
		assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	}
}
