package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/storage"
)

const (
	sessionPrefix     = "idp:session:"
	userSessionPrefix = "idp:user_sessions:"
)

// SessionRepository stores identity provider refresh sessions as JSON values
// that expire with the refresh token.
type SessionRepository struct {
	client redis.UniversalClient
}

func NewSessionRepository(client redis.UniversalClient) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) CreateSession(ctx context.Context, s models.RefreshSession, ttl time.Duration) error {
	if s.Selector == "" || s.Username == "" {
		return fmt.Errorf("session: missing selector or username")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionPrefix+s.Selector, data, ttl)
		pipe.SAdd(ctx, userSessionPrefix+s.Username, s.Selector)
		return nil
	})
	return err
}

func (r *SessionRepository) GetSession(ctx context.Context, selector string) (*models.RefreshSession, error) {
	val, err := r.client.Get(ctx, sessionPrefix+selector).Result()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var s models.RefreshSession
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, selector string) error {
	return r.client.Del(ctx, sessionPrefix+selector).Err()
}

func (r *SessionRepository) DeleteAllUserSessions(ctx context.Context, username string) error {
	selectors, err := r.client.SMembers(ctx, userSessionPrefix+username).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	keys := make([]string, 0, len(selectors)+1)
	for _, sel := range selectors {
		keys = append(keys, sessionPrefix+sel)
	}
	keys = append(keys, userSessionPrefix+username)

	return r.client.Del(ctx, keys...).Err()
}
