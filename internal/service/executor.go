package service

import (
	"context"
	"net/http"

	"github.com/rryowa/campus_session/internal/models"
)

// TokenSource yields a valid access token or a KindNotAuthenticated error.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Executor issues calls that carry a Bearer credential.
type Executor struct {
	http   *JSONClient
	tokens TokenSource
}

func NewExecutor(http *JSONClient, tokens TokenSource) *Executor {
	return &Executor{http: http, tokens: tokens}
}

// Do fails with KindNotAuthenticated before any network I/O when no token is
// available. The Authorization header always wins over caller headers.
func (e *Executor) Do(ctx context.Context, r Request, out any) error {
	token, err := e.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	h := make(http.Header, len(r.Header)+1)
	for k, vs := range r.Header {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	h.Set(models.AuthorizationHeader, models.BearerPrefix+token)
	r.Header = h

	return e.http.Do(ctx, r, out)
}

// Fetch is Do with a typed result.
func Fetch[T any](ctx context.Context, e *Executor, r Request) (T, error) {
	var out T
	err := e.Do(ctx, r, &out)
	return out, err
}
