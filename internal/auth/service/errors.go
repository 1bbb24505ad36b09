package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrRoleNotFound       = errors.New("role not found")
	ErrUserNotFound       = errors.New("user not found")
)

// Refresh and logout failures all read as ErrUnauthorized through errors.Is.
var (
	ErrInvalidRefreshToken = fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	ErrRefreshTokenRevoked = fmt.Errorf("%w: refresh token is not valid", ErrUnauthorized)
	ErrRefreshTokenExpired = fmt.Errorf("%w: refresh token has expired", ErrUnauthorized)
	ErrInvalidAccessToken  = fmt.Errorf("%w: invalid access token", ErrUnauthorized)
)
