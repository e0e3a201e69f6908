package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rryowa/campus_session/internal/models"
)

var (
	ErrTokensNotFound  = errors.New("tokens not found")
	ErrIncompletePair  = errors.New("token pair must carry both access and refresh tokens")
	ErrSessionNotFound = errors.New("session not found")
)

// TokenStore persists the access/refresh pair under two fixed keys. It holds
// no policy: both values are written together, read together and cleared
// together.
type TokenStore interface {
	// Load returns ErrTokensNotFound when nothing is persisted.
	Load(ctx context.Context) (models.TokenPair, error)
	Save(ctx context.Context, pair models.TokenPair) error
	Clear(ctx context.Context) error
}

// SessionRepository keeps the identity provider's refresh sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session models.RefreshSession, ttl time.Duration) error
	GetSession(ctx context.Context, selector string) (*models.RefreshSession, error)
	DeleteSession(ctx context.Context, selector string) error
	DeleteAllUserSessions(ctx context.Context, username string) error
}

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Keys returns the access and refresh storage keys for a namespace. The
// empty namespace yields the bare key names.
func Keys(namespace string) (access, refresh string) {
	if namespace == "" {
		return models.AccessTokenKey, models.RefreshTokenKey
	}
	return namespace + ":" + models.AccessTokenKey, namespace + ":" + models.RefreshTokenKey
}

func CheckPair(pair models.TokenPair) error {
	if pair.Access == "" || pair.Refresh == "" {
		return ErrIncompletePair
	}
	return nil
}
