package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/novastudy/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.users.Register(ctx, RegisterInput{
		Username: "alice",
		Password: "correct-horse",
		Email:    "alice@example.com",
		FullName: "Alice",
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.NotEqual(t, "correct-horse", user.PasswordHash)

	account, err := f.users.GetAccount(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{domain.RoleUser}, account.Roles)
	require.Contains(t, account.Authorities, domain.RoleUser)
	require.Contains(t, account.Authorities, domain.PermissionViewProfile)
	require.NotContains(t, account.Authorities, domain.PermissionManageUsers)
}

func TestRegister_Conflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice")

	_, err := f.users.Register(ctx, RegisterInput{
		Username: "alice", Password: "correct-horse", Email: "other@example.com",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = f.users.Register(ctx, RegisterInput{
		Username: "bob", Password: "correct-horse", Email: "alice@example.com",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice")

	account, err := f.users.Authenticate(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "alice", account.Username)

	_, err = f.users.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.users.Authenticate(ctx, "nobody", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetAccount_Unknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.GetAccount(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}
