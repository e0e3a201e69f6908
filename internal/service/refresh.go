package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rryowa/campus_session/internal/metrics"
	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/storage"
)

const refreshFlightKey = "refresh"

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (models.RefreshResponse, error)
}

// RefreshEndpoint calls the REFRESH endpoint without an identity header.
type RefreshEndpoint struct {
	http *JSONClient
	url  string
}

func NewRefreshEndpoint(http *JSONClient, url string) *RefreshEndpoint {
	return &RefreshEndpoint{http: http, url: url}
}

func (e *RefreshEndpoint) Refresh(ctx context.Context, refreshToken string) (models.RefreshResponse, error) {
	var out models.RefreshResponse
	err := e.http.Do(ctx, Request{
		Method: http.MethodPost,
		URL:    e.url,
		Body:   models.RefreshRequest{RefreshToken: refreshToken},
	}, &out)
	return out, err
}

// RefreshCoordinator owns the in-memory token pair and is the only writer of
// the TokenStore. Concurrent callers that find the access token expired share
// one refresh call.
type RefreshCoordinator struct {
	mu sync.Mutex
	// pair and gen are guarded by mu. gen changes on every login, logout or
	// wipe so a refresh that settles late cannot resurrect a dead session.
	pair models.TokenPair
	gen  uint64

	flight    singleflight.Group
	store     storage.TokenStore
	validator *TokenValidator
	refresher Refresher
	timeout   time.Duration
	log       *zap.SugaredLogger
	metrics   *metrics.Metrics
}

func NewRefreshCoordinator(
	store storage.TokenStore,
	validator *TokenValidator,
	refresher Refresher,
	timeout time.Duration,
	log *zap.SugaredLogger,
	m *metrics.Metrics,
) *RefreshCoordinator {
	return &RefreshCoordinator{
		store:     store,
		validator: validator,
		refresher: refresher,
		timeout:   timeout,
		log:       log,
		metrics:   m,
	}
}

// Restore loads a previously persisted pair into memory. A missing pair is
// not an error.
func (c *RefreshCoordinator) Restore(ctx context.Context) error {
	pair, err := c.store.Load(ctx)
	if errors.Is(err, storage.ErrTokensNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore tokens: %w", err)
	}

	c.mu.Lock()
	c.pair = pair
	c.gen++
	c.mu.Unlock()

	c.log.Debugw("tokens restored", "access_valid", c.validator.IsValid(pair.Access))
	return nil
}

// SetTokens persists a fresh pair, as after login, and then installs it.
func (c *RefreshCoordinator) SetTokens(ctx context.Context, pair models.TokenPair) error {
	if err := storage.CheckPair(pair); err != nil {
		return err
	}

	// Persisted first: a pair that failed to save never becomes the session.
	if err := c.store.Save(ctx, pair); err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}

	c.mu.Lock()
	c.pair = pair
	c.gen++
	c.mu.Unlock()
	return nil
}

// Clear wipes memory first, then the store. It returns the pair it dropped.
func (c *RefreshCoordinator) Clear(ctx context.Context) (models.TokenPair, error) {
	c.mu.Lock()
	old := c.pair
	c.pair = models.TokenPair{}
	c.gen++
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		return old, fmt.Errorf("clear stored tokens: %w", err)
	}
	return old, nil
}

// AccessToken returns a valid access token, refreshing at most once across
// all concurrent callers. Errors are *AuthError of KindNotAuthenticated;
// IsSessionExpired tells a failed refresh apart from "never logged in".
// A caller whose ctx ends while waiting stops waiting; the shared refresh
// keeps going for the others.
func (c *RefreshCoordinator) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	access := c.pair.Access
	c.mu.Unlock()

	if access != "" && c.validator.IsValid(access) {
		return access, nil
	}

	ch := c.flight.DoChan(refreshFlightKey, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", notAuthenticated(ctx.Err())
	}
}

func (c *RefreshCoordinator) refresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	pair, gen := c.pair, c.gen
	c.mu.Unlock()

	// A flight that settled just before this one may already have rotated.
	if pair.Access != "" && c.validator.IsValid(pair.Access) {
		return pair.Access, nil
	}
	if pair.Refresh == "" {
		c.metrics.ObserveRefresh(metrics.RefreshSkipped)
		return "", notAuthenticated(ErrNoSession)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.log.Debug("refreshing access token")
	resp, err := c.refresher.Refresh(ctx, pair.Refresh)
	if err != nil {
		c.metrics.ObserveRefresh(metrics.RefreshFailure)
		c.log.Warnw("token refresh failed, dropping session", "error", err)
		c.wipe(ctx, gen)
		return "", notAuthenticated(fmt.Errorf("%w: %w", ErrSessionExpired, err))
	}

	next := models.TokenPair{Access: resp.AccessToken, Refresh: pair.Refresh}
	if resp.RefreshToken != "" {
		next.Refresh = resp.RefreshToken
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.log.Debug("session changed during refresh, discarding result")
		return c.current()
	}
	c.pair = next
	c.gen++
	c.mu.Unlock()

	if err := c.store.Save(ctx, next); err != nil {
		c.log.Errorw("failed to persist refreshed tokens", "error", err)
	}

	c.metrics.ObserveRefresh(metrics.RefreshSuccess)
	c.log.Debugw("access token refreshed", "rotated", resp.RefreshToken != "")
	return next.Access, nil
}

// wipe clears memory and store unless the session changed since gen.
func (c *RefreshCoordinator) wipe(ctx context.Context, gen uint64) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.pair = models.TokenPair{}
	c.gen++
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.log.Errorw("failed to clear stored tokens", "error", err)
	}
}

func (c *RefreshCoordinator) current() (string, error) {
	c.mu.Lock()
	access := c.pair.Access
	c.mu.Unlock()

	if access != "" && c.validator.IsValid(access) {
		return access, nil
	}
	return "", notAuthenticated(ErrNoSession)
}
