package domain

import "time"

// TokenStatus is the lifecycle state of a stored refresh token. It only ever
// moves from VALID to INVALID.
type TokenStatus string

const (
	TokenStatusValid   TokenStatus = "VALID"
	TokenStatusInvalid TokenStatus = "INVALID"
)

// DefaultDeviceInfo is recorded when the client sent no User-Agent.
const DefaultDeviceInfo = "Unknown"

// TokenPair is what a successful login hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RefreshToken models the stored refresh token record in the DB.
type RefreshToken struct {
	ID         string
	UserID     string
	Token      string // raw signed refresh token, looked up by exact match
	SessionID  string // UUID v4 minted at login
	DeviceInfo string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Status     TokenStatus
}

// IsValid reports whether the record may still be exchanged.
func (t *RefreshToken) IsValid() bool {
	return t.Status == TokenStatusValid
}

// IsExpired reports whether the record is past its expiry at now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// BlacklistedToken is a revoked access token kept until its own exp passes.
type BlacklistedToken struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}
