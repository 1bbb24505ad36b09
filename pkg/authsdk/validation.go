package authsdk

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validate checks the registration fields and returns one message per
// failing rule, in field order. Nil means the request is valid.
func (r RegisterRequest) Validate() []string {
	var errs []string

	username := utf8.RuneCountInString(r.Username)
	switch {
	case strings.TrimSpace(r.Username) == "":
		errs = append(errs, "Username is required")
	case username < 3 || username > 50:
		errs = append(errs, "Username must be between 3 and 50 characters")
	}

	password := utf8.RuneCountInString(r.Password)
	switch {
	case strings.TrimSpace(r.Password) == "":
		errs = append(errs, "Password is required")
	case password < 6 || password > 255:
		errs = append(errs, "Password must be between 6 and 255 characters")
	}

	switch {
	case strings.TrimSpace(r.Email) == "":
		errs = append(errs, "Email is required")
	case !validEmail(r.Email):
		errs = append(errs, "Email must be valid")
	case utf8.RuneCountInString(r.Email) > 100:
		errs = append(errs, "Email must not exceed 100 characters")
	}

	if utf8.RuneCountInString(r.FullName) > 100 {
		errs = append(errs, "Full name must not exceed 100 characters")
	}

	return errs
}

// Validate checks the login fields.
func (r LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Username) == "" {
		errs = append(errs, "Username cannot be blank")
	}
	if strings.TrimSpace(r.Password) == "" {
		errs = append(errs, "Password cannot be blank")
	}
	return errs
}

// validEmail accepts a bare addr-spec only, no display name.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && addr.Name == ""
}
