package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewClientConfig_Defaults(t *testing.T) {
	for _, k := range []string{
		"LDAP_BASE_URL", "LDAP_LOGOUT_PATH", "REQUEST_TIMEOUT", "REFRESH_TIMEOUT",
		"TOKEN_VALIDITY_SKEW", "COURSES_LANG", "COURSES_PAGE_SIZE",
	} {
		t.Setenv(k, "")
	}

	cfg := NewClientConfig()
	assert.Equal(t, "https://my.tiue.uz", cfg.BaseURL)
	assert.Equal(t, "https://my.tiue.uz/mobile/login", cfg.URL(cfg.Endpoints.Login))
	assert.Equal(t, "/mobile/refresh", cfg.Endpoints.Refresh)
	assert.Empty(t, cfg.Endpoints.Logout)
	assert.Zero(t, cfg.RequestTimeout)
	assert.Zero(t, cfg.RefreshTimeout)
	assert.Equal(t, 300*time.Second, cfg.ValiditySkew)
	assert.Equal(t, "en", cfg.CoursesLang)
	assert.Equal(t, 10, cfg.CoursesPageSize)
}

func TestNewClientConfig_Overrides(t *testing.T) {
	t.Setenv("LDAP_BASE_URL", "http://localhost:8080/")
	t.Setenv("LDAP_LOGOUT_PATH", "/mobile/logout")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("REFRESH_TIMEOUT", "bogus")
	t.Setenv("TOKEN_VALIDITY_SKEW", "1m")
	t.Setenv("COURSES_PAGE_SIZE", "25")

	cfg := NewClientConfig()
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "/mobile/logout", cfg.Endpoints.Logout)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Zero(t, cfg.RefreshTimeout)
	assert.Equal(t, time.Minute, cfg.ValiditySkew)
	assert.Equal(t, 25, cfg.CoursesPageSize)
}

func TestNewCacheConfig(t *testing.T) {
	t.Setenv("PROFILE_CACHE_TTL", "")
	t.Setenv("COURSES_CACHE_TTL", "30s")

	cfg := NewCacheConfig()
	assert.Equal(t, 10*time.Minute, cfg.ProfileTTL)
	assert.Equal(t, 30*time.Second, cfg.CoursesTTL)
}

func TestNewStoreConfig(t *testing.T) {
	t.Setenv("TOKEN_STORE", "")
	t.Setenv("TOKEN_FILE", "")
	t.Setenv("TOKEN_NAMESPACE", "")

	cfg := NewStoreConfig()
	assert.Equal(t, StoreFile, cfg.Backend)
	assert.Equal(t, ".campus-tokens.json", cfg.FilePath)

	t.Setenv("TOKEN_STORE", "Redis")
	t.Setenv("TOKEN_NAMESPACE", "U22312")
	cfg = NewStoreConfig()
	assert.Equal(t, StoreRedis, cfg.Backend)
	assert.Equal(t, "U22312", cfg.Namespace)
}

func TestNewTokenConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")

	cfg := NewTokenConfig()
	assert.Equal(t, []byte("s3cret"), cfg.JwtSecretKey)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTTL)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud"))
}
