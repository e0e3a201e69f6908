package models

import "time"

// RefreshSession is the identity provider's record of an issued refresh token.
// Only the verifier hash is kept; the selector is the lookup key.
type RefreshSession struct {
	Selector       string    `json:"selector"`
	VerifierHash   string    `json:"verifier_hash"`
	Username       string    `json:"username"`
	AccessTokenJTI string    `json:"access_token_jti"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}
