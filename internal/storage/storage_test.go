package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rryowa/campus_session/internal/models"
)

func TestKeys(t *testing.T) {
	access, refresh := Keys("")
	assert.Equal(t, "ldap_access_token", access)
	assert.Equal(t, "ldap_refresh_token", refresh)

	access, refresh = Keys("U22312")
	assert.Equal(t, "U22312:ldap_access_token", access)
	assert.Equal(t, "U22312:ldap_refresh_token", refresh)
}

func TestCheckPair(t *testing.T) {
	assert.NoError(t, CheckPair(models.TokenPair{Access: "a", Refresh: "r"}))
	assert.ErrorIs(t, CheckPair(models.TokenPair{Access: "a"}), ErrIncompletePair)
	assert.ErrorIs(t, CheckPair(models.TokenPair{}), ErrIncompletePair)
}
