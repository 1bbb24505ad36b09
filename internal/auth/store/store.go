package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/novastudy/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so that a transaction cannot be opened from within another.
type Store interface {
	Users() Users
	Roles() Roles
	RefreshTokens() RefreshTokens
	Blacklist() Blacklist

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists on a username or email collision.
	CreateUser(ctx context.Context, u domain.User) error

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type Roles interface {
	// GetRoleByName fetches a role and its permissions.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListRolesForUser returns every role granted to the user with permissions.
	ListRolesForUser(ctx context.Context, userID string) ([]domain.Role, error)

	// AssignRole grants a role to a user. Granting twice is a no-op.
	AssignRole(ctx context.Context, userID, roleID string) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByToken returns the record by exact token match.
	GetRefreshTokenByToken(ctx context.Context, token string) (domain.RefreshToken, error)

	// MarkRefreshTokenInvalid flips status to INVALID.
	MarkRefreshTokenInvalid(ctx context.Context, id string) error
}

type Blacklist interface {
	// InsertBlacklistedToken records a revoked access token until expiresAt.
	// Inserting the same token twice is a no-op.
	InsertBlacklistedToken(ctx context.Context, token string, expiresAt time.Time) error

	// IsBlacklisted reports whether a row exists for the exact token.
	IsBlacklisted(ctx context.Context, token string) (bool, error)

	// PurgeExpiredBlacklistedTokens deletes rows with expires_at < now.
	PurgeExpiredBlacklistedTokens(ctx context.Context, now time.Time) (int64, error)
}
