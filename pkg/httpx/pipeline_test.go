package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/novastudy/pkg/httpx"
	"github.com/aussiebroadwan/novastudy/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
	calls   int
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, token string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[token], nil
}

type recordingRejections struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingRejections) RecordRejection(_ context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

type pipelineFixture struct {
	signer    *jwtx.HS256Signer
	blacklist *fakeBlacklist
	rejects   *recordingRejections
	handler   http.Handler
	seen      httpx.Principal
	reached   bool
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(testSecret)
	require.NoError(t, err)

	f := &pipelineFixture{
		signer:    signer,
		blacklist: &fakeBlacklist{revoked: map[string]bool{}},
		rejects:   &recordingRejections{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.reached = true
		f.seen = httpx.PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/admin", httpx.RequireAuthority(f.rejects, "MANAGE_USERS")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.reached = true
			w.WriteHeader(http.StatusOK)
		}),
	))

	f.handler = httpx.Pipeline{
		Public: httpx.NewPublicPaths("/", "/auth/login", "/swagger/"),
		Stages: []httpx.Middleware{
			httpx.BlacklistMiddleware(f.blacklist, time.Second, f.rejects),
			httpx.AuthnMiddleware(jwtx.NewAccessVerifier(verifier), f.rejects),
		},
	}.Wrap(mux)

	return f
}

func (f *pipelineFixture) do(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeMinimal(t *testing.T, rec *httptest.ResponseRecorder) httpx.MinimalErrorBody {
	t.Helper()
	var body httpx.MinimalErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestPublicPaths(t *testing.T) {
	p := httpx.NewPublicPaths("/", "/auth/login", "/swagger/")

	require.True(t, p.Match("/"))
	require.True(t, p.Match("/auth/login"))
	require.True(t, p.Match("/swagger/index.html"))
	require.False(t, p.Match("/auth/login/extra"))
	require.False(t, p.Match("/users/my-account"))
	require.False(t, p.Match("/swagger"))
}

func TestPipeline_PublicBypass(t *testing.T) {
	f := newPipelineFixture(t)

	rec := f.do("/swagger/index.html", "garbage")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, f.reached)
	require.False(t, f.seen.IsAuthenticated())
	require.Zero(t, f.blacklist.calls, "public paths skip the blacklist")
}

func TestPipeline_MissingToken(t *testing.T) {
	f := newPipelineFixture(t)

	rec := f.do("/users/my-account", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")

	body := decodeMinimal(t, rec)
	require.Equal(t, httpx.CodeInvalidToken, body.ErrorCode)
	require.Equal(t, "Missing or invalid access token", body.Message)
	require.False(t, f.reached)
	require.Equal(t, []string{httpx.ReasonMissingToken}, f.rejects.reasons)
}

func TestPipeline_InvalidToken(t *testing.T) {
	f := newPipelineFixture(t)

	rec := f.do("/users/my-account", "not.a.jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid or expired access token", decodeMinimal(t, rec).Message)
	require.Equal(t, 1, f.blacklist.calls)
	require.False(t, f.reached)
}

func TestPipeline_RefreshTokenRejected(t *testing.T) {
	f := newPipelineFixture(t)

	refresh, err := f.signer.IssueRefresh("alice", time.Hour)
	require.NoError(t, err)

	rec := f.do("/users/my-account", refresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, f.reached)
}

func TestPipeline_RevokedBeforeAuthn(t *testing.T) {
	f := newPipelineFixture(t)

	token, err := f.signer.IssueAccess("alice", []string{"VIEW_PROFILE"}, time.Hour)
	require.NoError(t, err)
	f.blacklist.revoked[token] = true

	rec := f.do("/users/my-account", token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeMinimal(t, rec)
	require.Equal(t, httpx.CodeTokenRevoked, body.ErrorCode)
	require.Equal(t, "Access token has been revoked", body.Message)
	require.False(t, f.reached)
	require.Equal(t, []string{httpx.ReasonRevoked}, f.rejects.reasons)
}

func TestPipeline_BlacklistFailure(t *testing.T) {
	f := newPipelineFixture(t)
	f.blacklist.err = errors.New("db down")

	token, err := f.signer.IssueAccess("alice", nil, time.Hour)
	require.NoError(t, err)

	rec := f.do("/users/my-account", token)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, httpx.CodeInternal, decodeMinimal(t, rec).ErrorCode)
	require.False(t, f.reached)
}

func TestPipeline_Authenticated(t *testing.T) {
	f := newPipelineFixture(t)

	token, err := f.signer.IssueAccess("alice", []string{"VIEW_PROFILE"}, time.Hour)
	require.NoError(t, err)

	rec := f.do("/users/my-account", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, f.reached)
	require.True(t, f.seen.IsAuthenticated())
	require.Equal(t, "alice", f.seen.Subject)
	require.True(t, f.seen.HasAuthority("VIEW_PROFILE"))
	require.Empty(t, f.rejects.reasons)
}

func TestRequireAuthority(t *testing.T) {
	f := newPipelineFixture(t)

	user, err := f.signer.IssueAccess("alice", []string{"VIEW_PROFILE"}, time.Hour)
	require.NoError(t, err)
	admin, err := f.signer.IssueAccess("root", []string{"VIEW_PROFILE", "MANAGE_USERS"}, time.Hour)
	require.NoError(t, err)

	rec := f.do("/admin", user)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var body httpx.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, httpx.CodeForbidden, body.ErrorCode)
	require.Equal(t, "Access denied", body.Message)
	require.Equal(t, "/admin", body.Path)
	require.False(t, f.reached)

	rec = f.do("/admin", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, f.reached)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler, mark("first"), mark("second"), mark("third"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"first", "second", "third"}, order)
}
