package memory

import (
	"context"
	"sync"

	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/storage"
)

// TokenStorage keeps the pair in process memory. Nothing survives a restart.
type TokenStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewTokenStorage() *TokenStorage {
	return &TokenStorage{data: make(map[string]string, 2)}
}

func (s *TokenStorage) Load(_ context.Context) (models.TokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	access, okA := s.data[models.AccessTokenKey]
	refresh, okR := s.data[models.RefreshTokenKey]
	if !okA || !okR {
		return models.TokenPair{}, storage.ErrTokensNotFound
	}
	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *TokenStorage) Save(_ context.Context, pair models.TokenPair) error {
	if err := storage.CheckPair(pair); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[models.AccessTokenKey] = pair.Access
	s.data[models.RefreshTokenKey] = pair.Refresh
	return nil
}

func (s *TokenStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, models.AccessTokenKey)
	delete(s.data, models.RefreshTokenKey)
	return nil
}
