// Package storagetest holds the behavior every TokenStore backend must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/storage"
)

// RunTokenStoreTests runs the TokenStore contract against stores built by
// newStore. Each subtest gets a fresh, empty store.
func RunTokenStoreTests(t *testing.T, newStore func(t *testing.T) storage.TokenStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Load(ctx)
		assert.ErrorIs(t, err, storage.ErrTokensNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		s := newStore(t)
		pair := models.TokenPair{Access: "access-1", Refresh: "refresh-1"}
		require.NoError(t, s.Save(ctx, pair))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, pair, got)
	})

	t.Run("overwrite", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, models.TokenPair{Access: "a1", Refresh: "r1"}))
		require.NoError(t, s.Save(ctx, models.TokenPair{Access: "a2", Refresh: "r2"}))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.TokenPair{Access: "a2", Refresh: "r2"}, got)
	})

	t.Run("half pair rejected", func(t *testing.T) {
		s := newStore(t)
		assert.ErrorIs(t, s.Save(ctx, models.TokenPair{Access: "a"}), storage.ErrIncompletePair)
		assert.ErrorIs(t, s.Save(ctx, models.TokenPair{Refresh: "r"}), storage.ErrIncompletePair)

		_, err := s.Load(ctx)
		assert.ErrorIs(t, err, storage.ErrTokensNotFound)
	})

	t.Run("clear", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, models.TokenPair{Access: "a", Refresh: "r"}))
		require.NoError(t, s.Clear(ctx))

		_, err := s.Load(ctx)
		assert.ErrorIs(t, err, storage.ErrTokensNotFound)

		require.NoError(t, s.Clear(ctx))
	})
}
