package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "ENV", "CORS_ORIGINS", "AUTH_MODE", "AUTH0_DOMAIN", "AUTH0_AUDIENCE", "JWT_SECRET",
	"STORE_BACKEND", "REMOTE_API_URL", "REMOTE_TIMEOUT", "DATABASE_URL", "SAVE_DEBOUNCE", "SAVE_TIMEOUT",
	"SESSION_IDLE_TTL", "RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_BURST", "S3_BUCKET", "S3_URL_EXPIRY",
}

// clearEnv blanks every key Load reads; getEnv treats empty as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cr3t")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, AuthModeHS256, cfg.AuthMode)
	assert.Equal(t, StoreRemote, cfg.StoreBackend)
	assert.Equal(t, 30*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 800*time.Millisecond, cfg.SaveDebounce)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, 300, cfg.RateLimitPerMinute)
	assert.False(t, cfg.S3.Enabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_MODE", "auth0")
	t.Setenv("AUTH0_DOMAIN", "tenant.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")
	t.Setenv("SAVE_DEBOUNCE", "2s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "60")
	t.Setenv("S3_BUCKET", "exports")
	t.Setenv("CORS_ORIGINS", "http://a,http://b")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, AuthModeAuth0, cfg.AuthMode)
	assert.Equal(t, StorePostgres, cfg.StoreBackend)
	assert.Equal(t, 2*time.Second, cfg.SaveDebounce)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORSOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"hs256 without secret", map[string]string{"AUTH_MODE": "hs256"}, "JWT_SECRET"},
		{"auth0 without domain", map[string]string{"AUTH_MODE": "auth0", "AUTH0_AUDIENCE": "x"}, "AUTH0_DOMAIN"},
		{"unknown auth mode", map[string]string{"AUTH_MODE": "basic"}, "AUTH_MODE"},
		{"postgres without url", map[string]string{"JWT_SECRET": "s", "STORE_BACKEND": "postgres"}, "DATABASE_URL"},
		{"unknown store", map[string]string{"JWT_SECRET": "s", "STORE_BACKEND": "mongo"}, "STORE_BACKEND"},
		{"bad duration", map[string]string{"JWT_SECRET": "s", "SAVE_DEBOUNCE": "soon"}, "SAVE_DEBOUNCE"},
		{"bad int", map[string]string{"JWT_SECRET": "s", "RATE_LIMIT_BURST": "many"}, "RATE_LIMIT_BURST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
