package service

import (
	"encoding/base64"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidator_IsValid(t *testing.T) {
	v := NewTokenValidator(300 * time.Second).WithClock(fixedClock)

	tests := []struct {
		name string
		exp  time.Time
		want bool
	}{
		{"expires in an hour", testNow.Add(time.Hour), true},
		{"expires in 301s", testNow.Add(301 * time.Second), true},
		{"expires in exactly 300s", testNow.Add(300 * time.Second), false},
		{"expires in 299s", testNow.Add(299 * time.Second), false},
		{"already expired", testNow.Add(-time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.IsValid(tokenExpiringAt(t, tt.exp)))
		})
	}
}

func TestTokenValidator_ZeroSkew(t *testing.T) {
	v := NewTokenValidator(0).WithClock(fixedClock)

	assert.True(t, v.IsValid(tokenExpiringAt(t, testNow.Add(time.Second))))
	assert.False(t, v.IsValid(tokenExpiringAt(t, testNow)))
}

func TestTokenValidator_Malformed(t *testing.T) {
	v := NewTokenValidator(300 * time.Second).WithClock(fixedClock)

	for _, token := range []string{"", "abc", "a.b", "a.b.c", "!!!.###.$$$"} {
		assert.False(t, v.IsValid(token), "token %q", token)
	}

	_, err := v.Decode("not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, KindTokenInvalid, KindOf(err))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenValidator_MissingExp(t *testing.T) {
	v := NewTokenValidator(300 * time.Second).WithClock(fixedClock)

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"U22312"}`))
	token := header + "." + payload + ".sig"

	_, err := v.Decode(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenNoExpiry)
	assert.False(t, v.IsValid(token))
}

func TestTokenValidator_UnknownAlgorithmStillDecodes(t *testing.T) {
	v := NewTokenValidator(300 * time.Second).WithClock(fixedClock)

	exp := testNow.Add(time.Hour).Unix()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"XS999","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":` + strconv.FormatInt(exp, 10) + `}`))
	token := header + "." + payload + ".sig"

	claims, err := v.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, exp, claims.ExpiresAt.Unix())
	assert.True(t, v.IsValid(token))
}

func TestTokenValidator_OnlyPayloadMatters(t *testing.T) {
	v := NewTokenValidator(300 * time.Second).WithClock(fixedClock)

	exp := testNow.Add(time.Hour).Unix()
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":` + strconv.FormatInt(exp, 10) + `}`))

	tests := []struct {
		name   string
		header string
	}{
		{"garbage header", "!!notbase64!!"},
		{"header without alg", base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT"}`))},
		{"empty header", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := tt.header + "." + payload + ".sig"
			claims, err := v.Decode(token)
			require.NoError(t, err)
			assert.Equal(t, exp, claims.ExpiresAt.Unix())
			assert.True(t, v.IsValid(token))
		})
	}
}

func TestTokenValidator_SegmentCount(t *testing.T) {
	v := NewTokenValidator(300 * time.Second).WithClock(fixedClock)

	token := validToken(t)
	for _, bad := range []string{strings.SplitN(token, ".", 2)[1], token + ".extra"} {
		_, err := v.Decode(bad)
		assert.ErrorIs(t, err, ErrTokenSegments)
	}
}
