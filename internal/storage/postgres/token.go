package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/storage"
)

// TokenStorage keeps the pair as two rows of the auth_tokens table.
type TokenStorage struct {
	db         *sql.DB
	accessKey  string
	refreshKey string
}

func NewTokenStorage(db *sql.DB, namespace string) *TokenStorage {
	access, refresh := storage.Keys(namespace)
	return &TokenStorage{db: db, accessKey: access, refreshKey: refresh}
}

func (s *TokenStorage) Load(ctx context.Context) (models.TokenPair, error) {
	repo := NewTokenRepository(s.db)

	values, err := repo.GetValues(ctx, s.accessKey, s.refreshKey)
	if err != nil {
		return models.TokenPair{}, err
	}

	access, okA := values[s.accessKey]
	refresh, okR := values[s.refreshKey]
	if !okA || !okR {
		return models.TokenPair{}, storage.ErrTokensNotFound
	}
	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Save upserts both rows in one transaction.
func (s *TokenStorage) Save(ctx context.Context, pair models.TokenPair) error {
	if err := storage.CheckPair(pair); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	repoTx := NewTokenRepository(tx)
	if err := repoTx.PutValue(ctx, s.accessKey, pair.Access); err != nil {
		return err
	}
	if err := repoTx.PutValue(ctx, s.refreshKey, pair.Refresh); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *TokenStorage) Clear(ctx context.Context) error {
	return NewTokenRepository(s.db).DeleteValues(ctx, s.accessKey, s.refreshKey)
}
