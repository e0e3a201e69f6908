package service

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/rryowa/campus_session/internal/metrics"
	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/storage"
	"github.com/rryowa/campus_session/internal/util"
)

// SessionClient is the public face of the session manager: login, logout,
// status, and the authenticated student endpoints.
type SessionClient struct {
	cfg    *util.ClientConfig
	http   *JSONClient
	tokens *RefreshCoordinator
	exec   *Executor
	revoke *RevokeService
	log    *zap.SugaredLogger
}

type SessionOptions struct {
	HTTPClient *http.Client
	Validator  *TokenValidator
	Metrics    *metrics.Metrics
}

func NewSessionClient(cfg *util.ClientConfig, store storage.TokenStore, log *zap.SugaredLogger, opts SessionOptions) *SessionClient {
	validator := opts.Validator
	if validator == nil {
		validator = NewTokenValidator(cfg.ValiditySkew)
	}

	jc := NewJSONClient(opts.HTTPClient, cfg.RequestTimeout, log, opts.Metrics)
	tokens := NewRefreshCoordinator(
		store,
		validator,
		NewRefreshEndpoint(jc, cfg.URL(cfg.Endpoints.Refresh)),
		cfg.RefreshTimeout,
		log,
		opts.Metrics,
	)

	var revoke *RevokeService
	if cfg.Endpoints.Logout != "" {
		revoke = NewRevokeService(jc, log, cfg.URL(cfg.Endpoints.Logout))
	}

	return &SessionClient{
		cfg:    cfg,
		http:   jc,
		tokens: tokens,
		exec:   NewExecutor(jc, tokens),
		revoke: revoke,
		log:    log,
	}
}

// Restore picks up tokens persisted by an earlier process.
func (s *SessionClient) Restore(ctx context.Context) error {
	return s.tokens.Restore(ctx)
}

// Login goes straight to the LOGIN endpoint: it must work without a valid
// token. On failure nothing is stored and the current state is untouched.
func (s *SessionClient) Login(ctx context.Context, creds models.LoginRequest) error {
	if err := creds.Validate(); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var resp models.LoginResponse
	err := s.http.Do(ctx, Request{
		Method: http.MethodPost,
		URL:    s.cfg.URL(s.cfg.Endpoints.Login),
		Body:   creds,
	}, &resp)
	if err != nil {
		s.log.Warnw("login failed", "username", creds.Username, "error", err)
		return err
	}

	if err := s.tokens.SetTokens(ctx, resp.Pair()); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	s.log.Infow("login successful", "username", creds.Username)
	return nil
}

// Logout clears local tokens unconditionally, then asks the server to revoke
// the refresh token if a logout endpoint is configured. Only a local store
// failure is reported.
func (s *SessionClient) Logout(ctx context.Context) error {
	old, err := s.tokens.Clear(ctx)
	s.revoke.Revoke(ctx, old.Refresh)

	if err != nil {
		s.log.Errorw("failed to clear tokens", "error", err)
		return err
	}
	s.log.Info("logged out")
	return nil
}

// IsAuthenticated reports whether a valid access token can be produced now.
// When the access token has expired this performs the refresh call and, if
// that fails, wipes the session: an observable side effect.
func (s *SessionClient) IsAuthenticated(ctx context.Context) bool {
	token, err := s.tokens.AccessToken(ctx)
	return err == nil && token != ""
}

func (s *SessionClient) AccessToken(ctx context.Context) (string, error) {
	return s.tokens.AccessToken(ctx)
}

// Do runs an arbitrary authenticated call against a configured endpoint.
func (s *SessionClient) Do(ctx context.Context, r Request, out any) error {
	return s.exec.Do(ctx, r, out)
}

func (s *SessionClient) Profile(ctx context.Context) (models.Profile, error) {
	return Fetch[models.Profile](ctx, s.exec, Request{
		Method: http.MethodPost,
		URL:    s.cfg.URL(s.cfg.Endpoints.Profile),
	})
}

func (s *SessionClient) Courses(ctx context.Context, q models.CourseQuery) (models.CourseList, error) {
	list, err := Fetch[models.CourseList](ctx, s.exec, Request{
		Method: http.MethodGet,
		URL:    s.cfg.URL(s.cfg.Endpoints.Courses) + "?" + q.Values().Encode(),
	})
	if err != nil {
		return models.CourseList{}, err
	}
	if list.Data == nil {
		list.Data = []models.Course{}
	}
	return list, nil
}

func (s *SessionClient) Grades(ctx context.Context) ([]models.Grade, error) {
	return fetchList[models.Grade](ctx, s.exec, http.MethodGet, s.cfg.URL(s.cfg.Endpoints.Grades))
}

func (s *SessionClient) Attendance(ctx context.Context) ([]models.Attendance, error) {
	return fetchList[models.Attendance](ctx, s.exec, http.MethodGet, s.cfg.URL(s.cfg.Endpoints.Attendance))
}

func (s *SessionClient) Messages(ctx context.Context) ([]models.Message, error) {
	return fetchList[models.Message](ctx, s.exec, http.MethodPost, s.cfg.URL(s.cfg.Endpoints.Messages))
}

// fetchList normalizes a JSON null to an empty slice.
func fetchList[T any](ctx context.Context, e *Executor, method, url string) ([]T, error) {
	out, err := Fetch[[]T](ctx, e, Request{Method: method, URL: url})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
