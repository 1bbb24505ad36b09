package domain

import (
	"slices"
	"time"
)

// Seeded role and permission names.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"

	PermissionViewProfile = "VIEW_PROFILE"
	PermissionManageUsers = "MANAGE_USERS"
)

type Role struct {
	ID          string
	Name        string
	Permissions []string
	CreatedAt   time.Time
}

// Authorities flattens roles into the set of role names and permission
// names they carry, sorted and without duplicates.
func Authorities(roles []Role) []string {
	out := make([]string, 0, len(roles)*2)
	for _, r := range roles {
		out = append(out, r.Name)
		out = append(out, r.Permissions...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// RoleNames returns just the role names.
func RoleNames(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Name)
	}
	return out
}
