package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/novastudy/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/novastudy/pkg/cryptox"
	"github.com/aussiebroadwan/novastudy/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("service-test-secret-0123456789-abcdef")

func TestMain(m *testing.M) {
	cryptox.SetPepper("service-test-pepper")
	os.Exit(m.Run())
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{counts: map[string]int64{}}
}

func (c *countingMetrics) add(name string, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name] += n
}

func (c *countingMetrics) get(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

func (c *countingMetrics) LoginSucceeded(context.Context)   { c.add("login_ok", 1) }
func (c *countingMetrics) LoginFailed(context.Context)      { c.add("login_failed", 1) }
func (c *countingMetrics) RefreshSucceeded(context.Context) { c.add("refresh_ok", 1) }
func (c *countingMetrics) RefreshFailed(context.Context)    { c.add("refresh_failed", 1) }
func (c *countingMetrics) LoggedOut(context.Context)        { c.add("logout", 1) }
func (c *countingMetrics) BlacklistPurged(_ context.Context, n int64) {
	c.add("purged", n)
}

type fakeCache struct {
	remembered map[string]time.Time
}

func (f *fakeCache) Remember(_ context.Context, token string, expiresAt time.Time) error {
	f.remembered[token] = expiresAt
	return nil
}

type fixture struct {
	store   *sqlite.Store
	users   *UserService
	tokens  *TokenService
	metrics *countingMetrics
	cache   *fakeCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(testSecret)
	require.NoError(t, err)

	users := &UserService{Store: st}
	f := &fixture{
		store:   st,
		users:   users,
		metrics: newCountingMetrics(),
		cache:   &fakeCache{remembered: map[string]time.Time{}},
	}
	f.tokens = &TokenService{
		Users:      users,
		Signer:     signer,
		Verifier:   verifier,
		Store:      st,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		Cache:      f.cache,
		Metrics:    f.metrics,
	}
	return f
}

func (f *fixture) register(t *testing.T, username string) {
	t.Helper()
	_, err := f.users.Register(context.Background(), RegisterInput{
		Username: username,
		Password: "correct-horse",
		Email:    username + "@example.com",
		FullName: "User " + username,
	})
	require.NoError(t, err)
}
