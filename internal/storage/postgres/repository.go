package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/rryowa/campus_session/internal/storage"
)

type TokenRepository struct {
	db storage.DBTX
}

func NewTokenRepository(db storage.DBTX) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) PutValue(ctx context.Context, key, value string) error {
	query := `INSERT INTO auth_tokens (storage_key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (storage_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	return nil
}

func (r *TokenRepository) GetValues(ctx context.Context, keys ...string) (map[string]string, error) {
	query := `SELECT storage_key, value FROM auth_tokens WHERE storage_key = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("failed to select tokens: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan token row: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate token rows: %w", err)
	}
	return out, nil
}

func (r *TokenRepository) DeleteValues(ctx context.Context, keys ...string) error {
	query := `DELETE FROM auth_tokens WHERE storage_key = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(keys)); err != nil {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}
	return nil
}
