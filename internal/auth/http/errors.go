package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/novastudy/internal/auth/service"
	"github.com/aussiebroadwan/novastudy/pkg/authsdk"
	"github.com/aussiebroadwan/novastudy/pkg/slogx"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// serviceErrors maps service errors onto their wire form. Order matters:
// the wrapped refresh errors are checked before the ErrUnauthorized base.
var serviceErrors = []struct {
	err error
	api *authsdk.APIError
}{
	{service.ErrInvalidCredentials, authsdk.ErrInvalidCredentials},
	{service.ErrRefreshTokenExpired, authsdk.ErrUnauthorized.WithMessage("Refresh token has expired")},
	{service.ErrRefreshTokenRevoked, authsdk.ErrUnauthorized.WithMessage("Refresh token is not valid")},
	{service.ErrInvalidRefreshToken, authsdk.ErrUnauthorized.WithMessage("Invalid refresh token")},
	{service.ErrInvalidAccessToken, authsdk.ErrUnauthorized.WithMessage("Invalid access token")},
	{service.ErrUnauthorized, authsdk.ErrUnauthorized},
	{service.ErrUsernameTaken, authsdk.ErrConflict.WithMessage("Username already exists")},
	{service.ErrEmailTaken, authsdk.ErrConflict.WithMessage("Email already exists")},
	{service.ErrRoleNotFound, authsdk.ErrResourceNotFound.WithMessage("Role not found")},
	{service.ErrUserNotFound, authsdk.ErrResourceNotFound.WithMessage("User not found")},
}

// writeServiceError writes the mapped error, or a generic 500 for anything
// unexpected. Unexpected errors are logged, mapped ones are not.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			m.api.WriteError(w, r)
			return
		}
	}

	log := slogx.FromContext(r.Context())
	if errors.Is(err, context.DeadlineExceeded) {
		log.Error("store call timed out", "err", err)
	} else {
		log.Error("unexpected error", "err", err)
	}
	authsdk.ErrInternalServer.WriteError(w, r)
}

// decodeBody reads a JSON body into dst. On failure it has already written
// the 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		authsdk.ErrBadRequest.WriteError(w, r)
		return false
	}
	return true
}

// validate writes a 400 carrying every failed rule when errs is non-empty.
func validate(w http.ResponseWriter, r *http.Request, errs []string) bool {
	if len(errs) == 0 {
		return true
	}
	authsdk.ErrBadRequest.WithMessage(strings.Join(errs, ", ")).WriteError(w, r)
	return false
}
