package models

import "errors"

var (
	ErrMissingAccessToken  = errors.New("response is missing access_token")
	ErrMissingRefreshToken = errors.New("response is missing refresh_token")
	ErrMissingCredentials  = errors.New("username and password are required")
)

// TokenPair is the access/refresh pair held by the client. Both halves are
// written and cleared together.
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

func (p TokenPair) IsZero() bool { return p.Access == "" && p.Refresh == "" }

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if r.Username == "" || r.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// LoginResponse must carry both tokens.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (r LoginResponse) Validate() error {
	if r.AccessToken == "" {
		return ErrMissingAccessToken
	}
	if r.RefreshToken == "" {
		return ErrMissingRefreshToken
	}
	return nil
}

func (r LoginResponse) Pair() TokenPair {
	return TokenPair{Access: r.AccessToken, Refresh: r.RefreshToken}
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse may omit refresh_token when the server does not rotate it.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

func (r RefreshResponse) Validate() error {
	if r.AccessToken == "" {
		return ErrMissingAccessToken
	}
	return nil
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ErrorResponse is the error body shape understood on both sides of the wire.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
