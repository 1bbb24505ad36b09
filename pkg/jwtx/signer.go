package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretSize is the smallest HMAC secret accepted for HS256.
const MinSecretSize = 32

// ErrWeakSecret is returned when the signing secret is too short.
var ErrWeakSecret = errors.New("jwtx: secret must be at least 32 bytes")

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// HS256Signer signs tokens with a single shared HMAC secret.
type HS256Signer struct {
	secret []byte
	now    func() time.Time
}

var _ Signer = (*HS256Signer)(nil)

// NewSignerHS256 creates an HS256 signer over the raw secret bytes.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	s := &HS256Signer{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Issue builds claims for the given token type and signs them.
func (s *HS256Signer) Issue(subject, tokenType string, authorities []string, ttl time.Duration) (string, error) {
	now := s.now().UTC()

	var claims Claims
	switch tokenType {
	case TokenTypeAccess:
		claims = NewAccessClaims(subject, authorities, ttl, now)
	case TokenTypeRefresh:
		claims = NewRefreshClaims(subject, ttl, now)
	default:
		return "", ErrTokenType
	}

	return s.Sign(claims)
}

// IssueAccess mints an access token carrying the subject's authorities.
func (s *HS256Signer) IssueAccess(subject string, authorities []string, ttl time.Duration) (string, error) {
	return s.Issue(subject, TokenTypeAccess, authorities, ttl)
}

// IssueRefresh mints a refresh token carrying only the subject.
func (s *HS256Signer) IssueRefresh(subject string, ttl time.Duration) (string, error) {
	return s.Issue(subject, TokenTypeRefresh, nil, ttl)
}

// Validate does a quick sanity check on the secret.
func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinSecretSize {
		return ErrWeakSecret
	}
	return nil
}
