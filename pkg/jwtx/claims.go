package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. Both can be overridden through configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultLeeway is the clock skew tolerated when checking exp/iat.
	DefaultLeeway = 10 * time.Second
)

// Token types carried in the "token_type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the claims carried by every token this service mints. Access
// tokens carry authorities, refresh tokens only carry the subject and a jti.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType is either "access" or "refresh"
	TokenType string `json:"token_type"`

	// Authorities are role and permission names, e.g. ["ROLE_USER","VIEW_PROFILE"].
	// Access tokens always carry the claim, even when empty.
	Authorities []string `json:"authorities,omitzero"`
}

// NewAccessClaims builds the claims for an access token. Each one gets a
// fresh jti, so two tokens minted in the same second are distinct strings.
func NewAccessClaims(subject string, authorities []string, ttl time.Duration, now time.Time) Claims {
	if authorities == nil {
		authorities = []string{}
	}
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TokenType:   TokenTypeAccess,
		Authorities: authorities,
	}
}

// NewRefreshClaims builds the claims for a refresh token. The jti keeps two
// refresh tokens minted in the same second for the same subject distinct.
func NewRefreshClaims(subject string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TokenType: TokenTypeRefresh,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateTokenType checks the "token_type" claim.
func (c *Claims) ValidateTokenType(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.TokenType != expected {
		return ErrTokenType
	}

	return nil
}

// ValidateAuthorities checks that the "authorities" claim is present. An
// empty list is a valid grant of nothing.
func (c *Claims) ValidateAuthorities() error {
	if c.Authorities == nil {
		return ErrInvalidClaim
	}
	return nil
}

// HasAuthority reports whether the named authority was granted.
func (c *Claims) HasAuthority(name string) bool {
	return slices.Contains(c.Authorities, name)
}

// Expiry returns the "exp" claim, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
