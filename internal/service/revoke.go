package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/rryowa/campus_session/internal/models"
)

// RevokeService tells the identity provider a refresh token is dead. It is
// best effort: failures are logged and swallowed.
type RevokeService struct {
	http *JSONClient
	log  *zap.SugaredLogger
	url  string
}

func NewRevokeService(http *JSONClient, log *zap.SugaredLogger, url string) *RevokeService {
	return &RevokeService{http: http, log: log, url: url}
}

func (s *RevokeService) Revoke(ctx context.Context, refreshToken string) {
	if s == nil || s.url == "" || refreshToken == "" {
		return
	}

	err := s.http.Do(ctx, Request{
		Method: http.MethodPost,
		URL:    s.url,
		Body:   models.LogoutRequest{RefreshToken: refreshToken},
	}, nil)
	if err != nil {
		s.log.Warnw("server-side revocation failed", "error", err)
	}
}
