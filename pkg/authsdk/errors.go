package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/novastudy/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeResourceNotFound   = "ERR_RESOURCE_NOT_FOUND"
	ErrorCodeMethodNotAllowed   = "ERR_METHOD_NOT_ALLOWED"
	ErrorCodeInternalServer     = httpx.CodeInternal
	ErrorCodeBadRequest         = "ERR_BAD_REQUEST"
	ErrorCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrorCodeForbidden          = httpx.CodeForbidden
	ErrorCodeConflict           = "ERR_CONFLICT"
	ErrorCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrorCodeInvalidToken       = httpx.CodeInvalidToken
	ErrorCodeTokenRevoked       = httpx.CodeTokenRevoked
	ErrorCodeTooManyRequests    = httpx.CodeTooManyRequests
)

// ============================================================================
// APIError
// ============================================================================

// APIError is an error response from the service. It is used by the server
// to write responses and by the client to represent them.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"status"`

	// Code is the stable error code, e.g. "ERR_CONFLICT"
	Code string `json:"errorCode"`

	// Message is a human-readable description of the error
	Message string `json:"message"`

	// Path is filled in by the server for handler errors
	Path string `json:"path,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on the error code so callers can compare against the
// predefined errors regardless of the message.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy with a different message.
func (e *APIError) WithMessage(msg string) *APIError {
	cp := *e
	cp.Message = msg
	return &cp
}

// WriteError writes this error as the standard error body.
func (e *APIError) WriteError(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(w, r, e.StatusCode, e.Code, e.Message)
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrResourceNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeResourceNotFound,
		Message:    "Resource not found",
	}

	ErrMethodNotAllowed = &APIError{
		StatusCode: http.StatusMethodNotAllowed,
		Code:       ErrorCodeMethodNotAllowed,
		Message:    "Method not allowed",
	}

	ErrInternalServer = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeInternalServer,
		Message:    "Unexpected error occurred",
	}

	ErrBadRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeBadRequest,
		Message:    "Invalid request data",
	}

	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeUnauthorized,
		Message:    "Authentication required",
	}

	ErrForbidden = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeForbidden,
		Message:    "Access denied",
	}

	ErrConflict = &APIError{
		StatusCode: http.StatusConflict,
		Code:       ErrorCodeConflict,
		Message:    "Data conflict occurred",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCredentials,
		Message:    "Invalid account",
	}

	// ErrInvalidToken is returned by the pipeline when the access token is
	// missing, malformed or expired.
	ErrInvalidToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidToken,
		Message:    "Invalid or expired access token",
	}

	// ErrTokenRevoked is returned by the pipeline for blacklisted tokens.
	ErrTokenRevoked = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeTokenRevoked,
		Message:    "Access token has been revoked",
	}

	ErrTooManyRequests = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       ErrorCodeTooManyRequests,
		Message:    "Too many requests. Please try again later.",
	}
)

// parseErrorResponse converts a non-2xx response into an *APIError. Both the
// full and the minimal body decode into the same shape.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp struct {
		Status    int       `json:"status"`
		Message   string    `json:"message"`
		Path      string    `json:"path"`
		ErrorCode string    `json:"errorCode"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.ErrorCode != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       errResp.ErrorCode,
			Message:    errResp.Message,
			Path:       errResp.Path,
		}
	}

	// Fallback for unexpected bodies
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       http.StatusText(resp.StatusCode),
		Message:    string(body),
	}
}
