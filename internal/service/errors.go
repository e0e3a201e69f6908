package service

import (
	"errors"
	"fmt"
)

// ErrorKind tags an AuthError so callers can dispatch without parsing the
// message text.
type ErrorKind string

const (
	// KindTransport: the request never completed (DNS, connect, timeout).
	KindTransport ErrorKind = "transport"
	// KindServer: the server answered with status >= 400 or an unusable body.
	KindServer ErrorKind = "server"
	// KindTokenInvalid: a token could not be decoded.
	KindTokenInvalid ErrorKind = "token_invalid"
	// KindNotAuthenticated: no usable access token after a refresh attempt.
	KindNotAuthenticated ErrorKind = "not_authenticated"
)

var (
	ErrNoSession      = errors.New("not authenticated: log in first")
	ErrSessionExpired = errors.New("session expired, please log in again")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenNoExpiry  = errors.New("token has no exp claim")
	ErrTokenSegments  = errors.New("token must have three segments")
)

type AuthError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// KindOf returns the kind of the first AuthError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsSessionExpired reports whether err means a refresh failed and the user
// must log in again, as opposed to a transient failure of one request.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

func transportError(err error) *AuthError {
	return &AuthError{Kind: KindTransport, Message: "cannot reach server", Err: err}
}

func serverError(status int, msg string) *AuthError {
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}
	return &AuthError{Kind: KindServer, Status: status, Message: msg}
}

func notAuthenticated(cause error) *AuthError {
	return &AuthError{Kind: KindNotAuthenticated, Err: cause}
}

func tokenInvalid(cause error) *AuthError {
	return &AuthError{Kind: KindTokenInvalid, Err: fmt.Errorf("%w: %w", ErrTokenInvalid, cause)}
}

// Result is the uniform envelope handed to collaborators.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

func NewResult[T any](data T, err error) Result[T] {
	if err != nil {
		return Result[T]{Error: err.Error(), Kind: string(KindOf(err))}
	}
	return Result[T]{Success: true, Data: data}
}
