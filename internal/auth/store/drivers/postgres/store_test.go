package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/novastudy/internal/auth/domain"
	"github.com/aussiebroadwan/novastudy/internal/auth/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStoreFromDB(db), mock
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	st, mock := newStoreWithMock(t)

	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+users\b.*VALUES\s*\(\$1,.*\$7\)`).
		WithArgs("u1", "alice", "alice@example.com", "Alice", "hash", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	now := time.Now()
	err := st.Users().CreateUser(context.Background(), domain.User{
		ID: "u1", Username: "alice", Email: "alice@example.com", FullName: "Alice",
		PasswordHash: "hash", CreatedAt: now, UpdatedAt: now,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	st, mock := newStoreWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1$`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := st.Users().GetUserByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRolesForUser_GroupsPermissions(t *testing.T) {
	st, mock := newStoreWithMock(t)

	created := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "created_at", "name"}).
		AddRow("r-admin", "ROLE_ADMIN", created, "MANAGE_USERS").
		AddRow("r-admin", "ROLE_ADMIN", created, "VIEW_PROFILE").
		AddRow("r-empty", "ROLE_EMPTY", created, nil)

	mock.ExpectQuery(`(?s)^\s*SELECT\s+r\.id,.*WHERE\s+ur\.user_id\s*=\s*\$1`).
		WithArgs("u1").
		WillReturnRows(rows)

	roles, err := st.Roles().ListRolesForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.Equal(t, []string{"MANAGE_USERS", "VIEW_PROFILE"}, roles[0].Permissions)
	require.Empty(t, roles[1].Permissions)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRefreshTokenByToken(t *testing.T) {
	st, mock := newStoreWithMock(t)

	issued := time.Now().UTC().Truncate(time.Second)
	expires := issued.Add(time.Hour)
	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "session_id", "device_info", "issued_at", "expires_at", "status"}).
		AddRow("rt1", "u1", "tok", "5c1d3f9a-7c34-4bb5-9e2b-0d1f4f6c1a10", "curl", issued, expires, "VALID")

	mock.ExpectQuery(`(?s)^\s*SELECT\s+id,.*FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1$`).
		WithArgs("tok").
		WillReturnRows(rows)

	got, err := st.RefreshTokens().GetRefreshTokenByToken(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)
	require.Equal(t, domain.TokenStatusValid, got.Status)
	require.True(t, got.ExpiresAt.Equal(expires))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRefreshTokenInvalid(t *testing.T) {
	st, mock := newStoreWithMock(t)

	mock.ExpectExec(`^UPDATE\s+refresh_tokens\s+SET\s+status\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2$`).
		WithArgs("INVALID", "rt1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.RefreshTokens().MarkRefreshTokenInvalid(context.Background(), "rt1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBlacklist(t *testing.T) {
	ctx := context.Background()

	t.Run("insert ignores duplicates", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		exp := time.Now().Add(time.Minute)

		mock.ExpectExec(`(?s)INSERT\s+INTO\s+token_blacklist\b.*ON\s+CONFLICT\s+\(token\)\s+DO\s+NOTHING`).
			WithArgs(sqlmock.AnyArg(), "access", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, st.Blacklist().InsertBlacklistedToken(ctx, "access", exp))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lookup", func(t *testing.T) {
		st, mock := newStoreWithMock(t)

		mock.ExpectQuery(`SELECT\s+EXISTS\(SELECT\s+1\s+FROM\s+token_blacklist\s+WHERE\s+token\s*=\s*\$1\)`).
			WithArgs("access").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		found, err := st.Blacklist().IsBlacklisted(ctx, "access")
		require.NoError(t, err)
		require.True(t, found)
	})

	t.Run("lookup error is returned", func(t *testing.T) {
		st, mock := newStoreWithMock(t)

		mock.ExpectQuery(`FROM\s+token_blacklist`).
			WithArgs("access").
			WillReturnError(errors.New("db down"))

		_, err := st.Blacklist().IsBlacklisted(ctx, "access")
		require.Error(t, err)
	})

	t.Run("purge reports rows deleted", func(t *testing.T) {
		st, mock := newStoreWithMock(t)
		now := time.Now()

		mock.ExpectExec(`^DELETE\s+FROM\s+token_blacklist\s+WHERE\s+expires_at\s*<\s*\$1$`).
			WithArgs(now.UTC()).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := st.Blacklist().PurgeExpiredBlacklistedTokens(ctx, now)
		require.NoError(t, err)
		require.EqualValues(t, 3, n)
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		st, mock := newStoreWithMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT\s+INTO\s+token_blacklist`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE\s+refresh_tokens`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := st.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Blacklist().InsertBlacklistedToken(ctx, "access", time.Now()); err != nil {
				return err
			}
			return tx.RefreshTokens().MarkRefreshTokenInvalid(ctx, "rt1")
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		st, mock := newStoreWithMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT\s+INTO\s+token_blacklist`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE\s+refresh_tokens`).WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		err := st.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Blacklist().InsertBlacklistedToken(ctx, "access", time.Now()); err != nil {
				return err
			}
			return tx.RefreshTokens().MarkRefreshTokenInvalid(ctx, "rt1")
		})
		require.EqualError(t, err, "boom")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
