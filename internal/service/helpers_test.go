package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// tokenExpiringAt builds a signed JWT whose only interesting claim is exp.
func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   "U22312",
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func validToken(t *testing.T) string {
	return tokenExpiringAt(t, testNow.Add(time.Hour))
}

func expiredToken(t *testing.T) string {
	return tokenExpiringAt(t, testNow.Add(-time.Minute))
}
