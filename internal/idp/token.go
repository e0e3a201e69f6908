package idp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/storage"
	"github.com/rryowa/campus_session/internal/util"
)

var (
	ErrTokenInvalid               = errors.New("token invalid")
	ErrTokenMalformed             = errors.New("token is malformed")
	ErrInvalidSigningMethod       = errors.New("invalid signing method")
	ErrRefreshTokenNotFoundOrUsed = errors.New("refresh token not found or already used")
)

// TokenService issues HS512 access tokens and selector.verifier refresh
// tokens. Refresh tokens rotate on every use.
type TokenService struct {
	JwtSecretKey []byte
	accessTTL    time.Duration
	refreshTTL   time.Duration
	sessions     storage.SessionRepository
	now          func() time.Time
}

func NewTokenService(cfg *util.TokenConfig, sessions storage.SessionRepository) *TokenService {
	return &TokenService{
		JwtSecretKey: cfg.JwtSecretKey,
		accessTTL:    cfg.AccessTTL,
		refreshTTL:   cfg.RefreshTTL,
		sessions:     sessions,
		now:          time.Now,
	}
}

type jwtClaims struct {
	Username string `json:"uid"`
	jwt.RegisteredClaims
}

// IssuePair creates a session for username and returns its token pair.
func (ts *TokenService) IssuePair(ctx context.Context, username string) (models.TokenPair, error) {
	now := ts.now()

	access, jti, err := ts.CreateAccessToken(username, now)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, selector, verifierHash, err := ts.CreateRefreshToken()
	if err != nil {
		return models.TokenPair{}, err
	}

	session := models.RefreshSession{
		Selector:       selector,
		VerifierHash:   verifierHash,
		Username:       username,
		AccessTokenJTI: jti,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ts.refreshTTL),
	}
	if err := ts.sessions.CreateSession(ctx, session, ts.refreshTTL); err != nil {
		return models.TokenPair{}, fmt.Errorf("create session: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Rotate consumes a refresh token and issues a new pair for the same user.
func (ts *TokenService) Rotate(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	session, err := ts.lookup(ctx, refreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := ts.sessions.DeleteSession(ctx, session.Selector); err != nil {
		return models.TokenPair{}, fmt.Errorf("consume session: %w", err)
	}

	return ts.IssuePair(ctx, session.Username)
}

// Revoke drops the session behind refreshToken. Unknown tokens are ignored.
func (ts *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	session, err := ts.lookup(ctx, refreshToken)
	if errors.Is(err, ErrRefreshTokenNotFoundOrUsed) {
		return nil
	}
	if err != nil {
		return err
	}
	return ts.sessions.DeleteSession(ctx, session.Selector)
}

func (ts *TokenService) lookup(ctx context.Context, refreshToken string) (*models.RefreshSession, error) {
	selector, _, ok := strings.Cut(refreshToken, ".")
	if !ok {
		return nil, ErrTokenMalformed
	}

	session, err := ts.sessions.GetSession(ctx, selector)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil, ErrRefreshTokenNotFoundOrUsed
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	// A known selector with the wrong verifier means the token leaked: every
	// session of that user is dropped.
	if err := ts.ValidateRefreshToken(refreshToken, session.VerifierHash); err != nil {
		if err := ts.sessions.DeleteAllUserSessions(ctx, session.Username); err != nil {
			return nil, fmt.Errorf("revoke user sessions: %w", err)
		}
		return nil, ErrRefreshTokenNotFoundOrUsed
	}
	return session, nil
}

// CreateAccessToken creates a SHA512 signed access token with a fresh JTI.
func (ts *TokenService) CreateAccessToken(username string, now time.Time) (string, string, error) {
	jti := uuid.NewString()
	claims := &jwtClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signedToken, err := token.SignedString(ts.JwtSecretKey)
	if err != nil {
		return "", "", fmt.Errorf("signed string: %w", err)
	}

	return signedToken, jti, nil
}

func (ts *TokenService) CreateRefreshToken() (token, selector, verifierHash string, err error) {
	rawToken := make([]byte, util.RawTokenLength)
	if _, err = rand.Read(rawToken); err != nil {
		return "", "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	selector = base64.RawURLEncoding.EncodeToString(rawToken[:16])
	verifier := base64.RawURLEncoding.EncodeToString(rawToken[16:])

	hashedVerifierBytes := sha256.Sum256([]byte(verifier))
	verifierHash = hex.EncodeToString(hashedVerifierBytes[:])

	token = selector + "." + verifier

	return token, selector, verifierHash, nil
}

func (ts *TokenService) ValidateRefreshToken(token, verifierHash string) error {
	parts := strings.Split(token, ".")
	if len(parts) != util.TokenPartsExpected {
		return errors.New("invalid token format")
	}

	verifier := parts[1]

	hashedVerifierBytes, err := hex.DecodeString(verifierHash)
	if err != nil {
		return fmt.Errorf("failed to decode stored hash: %w", err)
	}

	newHashBytes := sha256.Sum256([]byte(verifier))

	if subtle.ConstantTimeCompare(newHashBytes[:], hashedVerifierBytes) != 1 {
		return errors.New("invalid refresh token")
	}

	return nil
}

// ValidateAccessToken checks signature and expiry and returns the username.
func (ts *TokenService) ValidateAccessToken(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithLeeway(util.JWTLeeWay),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}

	parsedToken, err := jwt.ParseWithClaims(
		token,
		&jwtClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS512.Alg() {
				return nil, ErrInvalidSigningMethod
			}
			return ts.JwtSecretKey, nil
		},
		opts...,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := parsedToken.Claims.(*jwtClaims)
	if !ok || !parsedToken.Valid || claims.Username == "" {
		return "", ErrTokenInvalid
	}

	return claims.Username, nil
}
