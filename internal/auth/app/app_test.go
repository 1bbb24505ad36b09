package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/novastudy/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		SecretFile:           filepath.Join(dir, "jwt_secret"),
		AccessTokenTTL:       time.Minute,
		RefreshTokenTTL:      time.Hour,
		DatabaseDriver:       DriverSQLite,
		DatabaseFile:         filepath.Join(dir, "auth.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		StoreTimeout:         time.Second,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func startApp(t *testing.T, cfg Config) *authsdk.SDKClient {
	t.Helper()

	application, err := New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, application.closeStores())
	})
	return authsdk.NewSDKClient(srv.URL)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDriver = "mysql"

	_, err := New(cfg)
	require.ErrorContains(t, err, "invalid configuration")
}

func TestApplicationSessionLifecycle(t *testing.T) {
	client := startApp(t, testConfig(t))
	ctx := context.Background()

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "ada",
		Password: "correct-horse-1",
		Email:    "ada@example.com",
		FullName: "Ada Lovelace",
	})
	require.NoError(t, err)

	session, err := client.Login(ctx, "ada", "correct-horse-1")
	require.NoError(t, err)

	_, err = session.MyAccount(ctx)
	require.NoError(t, err)

	require.NoError(t, session.Refresh(ctx))
	require.NoError(t, session.Logout(ctx))

	_, err = session.MyAccount(ctx)
	require.ErrorIs(t, err, authsdk.ErrTokenRevoked)

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Empty(t, ready.Checks.Cache)
}

func TestApplicationWithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.RedisAddr = mr.Addr()
	cfg.StoreTimeout = 5 * time.Second // room for redis client retries once it is gone

	client := startApp(t, cfg)
	ctx := context.Background()

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "grace",
		Password: "correct-horse-2",
		Email:    "grace@example.com",
		FullName: "Grace Hopper",
	})
	require.NoError(t, err)

	session, err := client.Login(ctx, "grace", "correct-horse-2")
	require.NoError(t, err)
	require.NoError(t, session.Logout(ctx))

	require.Len(t, mr.Keys(), 1, "revoked access token is cached")

	_, err = session.MyAccount(ctx)
	require.ErrorIs(t, err, authsdk.ErrTokenRevoked)

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Cache)

	// Losing redis degrades readiness but revocation still holds via the database.
	mr.Close()
	_, err = session.MyAccount(ctx)
	require.ErrorIs(t, err, authsdk.ErrTokenRevoked)

	ready, err = client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "degraded", ready.Status)
}

func TestApplicationExportsMetrics(t *testing.T) {
	application, err := New(testConfig(t))
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, application.closeStores())
	})
	client := authsdk.NewSDKClient(srv.URL)
	ctx := context.Background()

	_, err = client.Register(ctx, authsdk.RegisterRequest{
		Username: "linus",
		Password: "correct-horse-3",
		Email:    "linus@example.com",
		FullName: "Linus Torvalds",
	})
	require.NoError(t, err)

	_, err = client.Login(ctx, "linus", "correct-horse-3")
	require.NoError(t, err)
	_, err = client.Login(ctx, "linus", "wrong-horse")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	// Scrapers carry no token.
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "auth_logins_total{outcome=\"ok\"} 1\n")
	require.Contains(t, string(body), "auth_logins_total{outcome=\"failed\"} 1\n")
}
