package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DecodedClaims is derived from the access token payload, never stored.
type DecodedClaims struct {
	ExpiresAt time.Time
}

// TokenValidator decides whether an access token is still usable. It never
// checks signatures: the client trusts what the identity provider handed it
// and only needs the expiry.
type TokenValidator struct {
	skew   time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewTokenValidator(skew time.Duration) *TokenValidator {
	return &TokenValidator{
		skew:   skew,
		now:    time.Now,
		parser: jwt.NewParser(),
	}
}

// WithClock replaces the wall clock, for tests.
func (v *TokenValidator) WithClock(now func() time.Time) *TokenValidator {
	v.now = now
	return v
}

// Decode reads the payload segment only. The header and signature are
// never inspected.
func (v *TokenValidator) Decode(token string) (DecodedClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return DecodedClaims{}, tokenInvalid(ErrTokenSegments)
	}

	payload, err := v.parser.DecodeSegment(parts[1])
	if err != nil {
		return DecodedClaims{}, tokenInvalid(err)
	}

	var claims jwt.RegisteredClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return DecodedClaims{}, tokenInvalid(err)
	}
	if claims.ExpiresAt == nil {
		return DecodedClaims{}, tokenInvalid(ErrTokenNoExpiry)
	}

	return DecodedClaims{ExpiresAt: claims.ExpiresAt.Time}, nil
}

// IsValid reports exp > now + skew, comparing whole seconds. Malformed
// tokens are invalid.
func (v *TokenValidator) IsValid(token string) bool {
	if token == "" {
		return false
	}
	claims, err := v.Decode(token)
	if err != nil {
		return false
	}
	return claims.ExpiresAt.Unix() > v.now().Unix()+int64(v.skew/time.Second)
}
