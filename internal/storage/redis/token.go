package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/storage"
)

type TokenStorage struct {
	client     redis.UniversalClient
	accessKey  string
	refreshKey string
}

func NewTokenStorage(client redis.UniversalClient, namespace string) *TokenStorage {
	access, refresh := storage.Keys(namespace)
	return &TokenStorage{client: client, accessKey: access, refreshKey: refresh}
}

// Load reads both keys in one round trip. A half-present pair is treated as
// absent.
func (s *TokenStorage) Load(ctx context.Context) (models.TokenPair, error) {
	vals, err := s.client.MGet(ctx, s.accessKey, s.refreshKey).Result()
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("mget tokens: %w", err)
	}

	access, okA := vals[0].(string)
	refresh, okR := vals[1].(string)
	if !okA || !okR {
		return models.TokenPair{}, storage.ErrTokensNotFound
	}
	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Save writes both keys inside MULTI/EXEC.
func (s *TokenStorage) Save(ctx context.Context, pair models.TokenPair) error {
	if err := storage.CheckPair(pair); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.accessKey, pair.Access, 0)
		pipe.Set(ctx, s.refreshKey, pair.Refresh, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

func (s *TokenStorage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.accessKey, s.refreshKey).Err(); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
