package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"AUTH_JWT_SECRET", "AUTH_SECRET_FILE", "AUTH_ACCESS_TOKEN_TTL", "AUTH_REFRESH_TOKEN_TTL",
		"AUTH_DATABASE_DRIVER", "AUTH_DATABASE_FILE", "AUTH_DATABASE_URL", "AUTH_STORE_TIMEOUT",
		"REDIS_ADDR", "REDIS_DB", "AUTH_COOKIE_SECURE", "PORT", "HOUSEKEEPING_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "auth.db", cfg.DatabaseFile)
	require.Equal(t, "jwt_secret", cfg.SecretFile)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, 3*time.Second, cfg.StoreTimeout)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
	require.Equal(t, 8080, cfg.Port)
	require.True(t, cfg.CookieSecure)
	require.Empty(t, cfg.RedisAddr)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_DATABASE_DRIVER", "Postgres")
	t.Setenv("AUTH_DATABASE_URL", "postgres://auth@localhost/auth")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL", "120") // minutes
	t.Setenv("AUTH_COOKIE_SECURE", "false")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("PORT", "not-a-port")

	cfg := LoadConfig()
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 2*time.Hour, cfg.RefreshTokenTTL)
	require.False(t, cfg.CookieSecure)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Equal(t, 2, cfg.RedisDB)
	require.Equal(t, 8080, cfg.Port, "unparsable values fall back to the default")
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	base := Config{
		DatabaseDriver:  DriverSQLite,
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "unsupported AUTH_DATABASE_DRIVER"},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = DriverPostgres }, "AUTH_DATABASE_URL is required"},
		{"zero access ttl", func(c *Config) { c.AccessTokenTTL = 0 }, "AUTH_ACCESS_TOKEN_TTL must be positive"},
		{"refresh shorter than access", func(c *Config) { c.RefreshTokenTTL = 30 * time.Second }, "must exceed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
