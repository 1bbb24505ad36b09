package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/novastudy/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newPair(t *testing.T) (*jwtx.HS256Signer, *jwtx.HS256Verifier) {
	t.Helper()

	s, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	v, err := jwtx.NewVerifierHS256(testSecret)
	require.NoError(t, err)
	return s, v
}

func TestHS256_RoundTrip(t *testing.T) {
	s, v := newPair(t)
	require.Equal(t, "HS256", s.Alg())

	tok, err := s.IssueAccess("alice", []string{"ROLE_USER", "VIEW_PROFILE"}, 15*time.Minute)
	require.NoError(t, err)

	claims, err := v.VerifyAccess(tok)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, jwtx.TokenTypeAccess, claims.TokenType)
	require.ElementsMatch(t, []string{"ROLE_USER", "VIEW_PROFILE"}, claims.Authorities)
	require.Equal(t, 15*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestHS256_RefreshTokensAreDistinct(t *testing.T) {
	s, v := newPair(t)

	a, err := s.IssueRefresh("alice", time.Hour)
	require.NoError(t, err)
	b, err := s.IssueRefresh("alice", time.Hour)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	claims, err := v.VerifyRefresh(a)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Empty(t, claims.Authorities)
}

func TestHS256_Rejections(t *testing.T) {
	s, v := newPair(t)

	t.Run("weak secret", func(t *testing.T) {
		_, err := jwtx.NewSignerHS256([]byte("short"))
		require.ErrorIs(t, err, jwtx.ErrWeakSecret)
		_, err = jwtx.NewVerifierHS256([]byte("short"))
		require.ErrorIs(t, err, jwtx.ErrWeakSecret)
	})

	t.Run("unknown token type", func(t *testing.T) {
		_, err := s.Issue("alice", "id", nil, time.Minute)
		require.ErrorIs(t, err, jwtx.ErrTokenType)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := v.Verify("not-a-jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("tampered signature", func(t *testing.T) {
		tok, err := s.IssueAccess("alice", nil, time.Minute)
		require.NoError(t, err)

		parts := strings.Split(tok, ".")
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err = v.Verify(parts[0] + "." + parts[1] + "." + string(sig))
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("different secret", func(t *testing.T) {
		other, err := jwtx.NewSignerHS256([]byte("ffffffffffffffffffffffffffffffff"))
		require.NoError(t, err)
		tok, err := other.IssueAccess("alice", nil, time.Minute)
		require.NoError(t, err)

		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := jwtx.NewAccessClaims("alice", nil, time.Minute, time.Now())
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("expired beyond leeway", func(t *testing.T) {
		tok, err := s.IssueAccess("alice", nil, -time.Minute)
		require.NoError(t, err)

		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("expired within leeway", func(t *testing.T) {
		tok, err := s.IssueAccess("alice", nil, -3*time.Second)
		require.NoError(t, err)

		_, err = v.Verify(tok)
		require.NoError(t, err)
	})

	t.Run("refresh token used as access", func(t *testing.T) {
		tok, err := s.IssueRefresh("alice", time.Minute)
		require.NoError(t, err)

		_, err = v.VerifyAccess(tok)
		require.ErrorIs(t, err, jwtx.ErrTokenType)

		_, err = jwtx.NewAccessVerifier(v).Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrTokenType)
	})
}

func TestHS256_AccessAuthoritiesClaim(t *testing.T) {
	s, v := newPair(t)

	t.Run("empty grant is emitted and accepted", func(t *testing.T) {
		tok, err := s.IssueAccess("alice", nil, time.Minute)
		require.NoError(t, err)

		payload, err := jwt.NewParser().DecodeSegment(strings.Split(tok, ".")[1])
		require.NoError(t, err)
		require.Contains(t, string(payload), `"authorities":[]`)

		claims, err := v.VerifyAccess(tok)
		require.NoError(t, err)
		require.Empty(t, claims.Authorities)
	})

	t.Run("missing claim is rejected", func(t *testing.T) {
		claims := jwtx.NewAccessClaims("alice", nil, time.Minute, time.Now())
		claims.Authorities = nil
		tok, err := s.Sign(claims)
		require.NoError(t, err)

		_, err = v.VerifyAccess(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)

		_, err = jwtx.NewAccessVerifier(v).Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})

	t.Run("refresh tokens omit it", func(t *testing.T) {
		tok, err := s.IssueRefresh("alice", time.Minute)
		require.NoError(t, err)

		payload, err := jwt.NewParser().DecodeSegment(strings.Split(tok, ".")[1])
		require.NoError(t, err)
		require.NotContains(t, string(payload), "authorities")
	})
}

func TestHS256_ShortLivedToken(t *testing.T) {
	s, v := newPair(t)

	tok, err := s.IssueAccess("alice", nil, 5*time.Second)
	require.NoError(t, err)
	_, err = v.Verify(tok)
	require.NoError(t, err, "fresh token verifies immediately")

	// Issued 6s ago with a 5s ttl: past exp but inside the 10s skew.
	issued := time.Now().Add(-6 * time.Second)
	tok, err = s.Sign(jwtx.NewAccessClaims("alice", nil, 5*time.Second, issued))
	require.NoError(t, err)
	_, err = v.Verify(tok)
	require.NoError(t, err)

	// Once exp plus the skew has passed the token is expired.
	issued = time.Now().Add(-16 * time.Second)
	tok, err = s.Sign(jwtx.NewAccessClaims("alice", nil, 5*time.Second, issued))
	require.NoError(t, err)
	_, err = v.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}
