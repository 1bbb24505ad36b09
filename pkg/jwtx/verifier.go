package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrTokenType    = errors.New("jwtx: unexpected token type")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HS256Verifier validates tokens signed with the shared HMAC secret.
type HS256Verifier struct {
	secret []byte
	leeway time.Duration
}

// NewVerifierHS256 creates a verifier with the default 10s leeway.
func NewVerifierHS256(secret []byte) (*HS256Verifier, error) {
	if len(secret) < MinSecretSize {
		return nil, ErrWeakSecret
	}
	return &HS256Verifier{
		secret: append([]byte(nil), secret...),
		leeway: DefaultLeeway,
	}, nil
}

// Verify validates signature, algorithm and expiry and returns the claims.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

// VerifyAccess is Verify plus a check that the token is an access token
// carrying an "authorities" claim.
func (v *HS256Verifier) VerifyAccess(tokenStr string) (Claims, error) {
	return v.verifyType(tokenStr, TokenTypeAccess)
}

// VerifyRefresh is Verify plus a check that the token is a refresh token.
func (v *HS256Verifier) VerifyRefresh(tokenStr string) (Claims, error) {
	return v.verifyType(tokenStr, TokenTypeRefresh)
}

func (v *HS256Verifier) verifyType(tokenStr, tokenType string) (Claims, error) {
	c, err := v.Verify(tokenStr)
	if err != nil {
		return Claims{}, err
	}
	if err := c.ValidateTokenType(tokenType); err != nil {
		return Claims{}, err
	}
	if tokenType == TokenTypeAccess {
		if err := c.ValidateAuthorities(); err != nil {
			return Claims{}, err
		}
	}
	return c, nil
}

// AccessAdapter a Verifier wrapper that only accepts access tokens.
type AccessAdapter struct{ *HS256Verifier }

func (a AccessAdapter) Verify(token string) (Claims, error) {
	return a.HS256Verifier.VerifyAccess(token)
}

// NewAccessVerifier returns a Verifier that rejects anything but access
// tokens, which is what the request pipeline wants.
func NewAccessVerifier(v *HS256Verifier) Verifier {
	return AccessAdapter{v}
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}
