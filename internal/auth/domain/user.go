package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string // argon2 encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Account is a user together with its resolved authorities.
type Account struct {
	User
	Roles       []string
	Authorities []string // role names plus the permissions those roles grant
}
