package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/storage"
)

// TokenStorage persists the pair as a 0600 JSON document keyed by the fixed
// storage key names. Writes go through a temp file and rename so a reader
// never sees half a pair.
type TokenStorage struct {
	mu   sync.Mutex
	path string
}

func NewTokenStorage(path string) *TokenStorage {
	return &TokenStorage{path: path}
}

func (s *TokenStorage) Load(_ context.Context) (models.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.TokenPair{}, storage.ErrTokensNotFound
	}
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("read token file: %w", err)
	}

	var doc map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.TokenPair{}, fmt.Errorf("decode token file: %w", err)
	}

	pair := models.TokenPair{Access: doc[models.AccessTokenKey], Refresh: doc[models.RefreshTokenKey]}
	if storage.CheckPair(pair) != nil {
		return models.TokenPair{}, storage.ErrTokensNotFound
	}
	return pair, nil
}

func (s *TokenStorage) Save(_ context.Context, pair models.TokenPair) error {
	if err := storage.CheckPair(pair); err != nil {
		return err
	}

	data, err := json.MarshalIndent(map[string]string{
		models.AccessTokenKey:  pair.Access,
		models.RefreshTokenKey: pair.Refresh,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create token dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

func (s *TokenStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
