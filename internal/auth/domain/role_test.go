package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/novastudy/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestAuthorities(t *testing.T) {
	roles := []domain.Role{
		{Name: domain.RoleUser, Permissions: []string{domain.PermissionViewProfile}},
		{Name: domain.RoleAdmin, Permissions: []string{domain.PermissionViewProfile, domain.PermissionManageUsers}},
	}

	require.Equal(t, []string{
		domain.PermissionManageUsers,
		domain.RoleAdmin,
		domain.RoleUser,
		domain.PermissionViewProfile,
	}, domain.Authorities(roles))
	require.Equal(t, []string{domain.RoleUser, domain.RoleAdmin}, domain.RoleNames(roles))
	require.Empty(t, domain.Authorities(nil))
}
