package authsdk

import (
	"time"

	"github.com/aussiebroadwan/novastudy/pkg/httpx"
)

// ErrorResponse is the error body written by handlers.
type ErrorResponse = httpx.ErrorBody

// MinimalErrorResponse is the error body written by the request pipeline.
type MinimalErrorResponse = httpx.MinimalErrorBody

// Response is the success envelope with a typed payload.
type Response[T any] struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
}

// ============================================================================
// Requests
// ============================================================================

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ============================================================================
// Responses
// ============================================================================

// RegisterResponse is the data of a successful registration.
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// UserInfo describes the authenticated account.
type UserInfo struct {
	UserID      string   `json:"userId"`
	Email       string   `json:"email"`
	UserName    string   `json:"userName"`
	FullName    string   `json:"fullName"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	Authorities []string `json:"authorities"`
}

// LoginResponse is the data of a successful login. The refresh token is
// also set as an HttpOnly cookie.
type LoginResponse struct {
	UserInfo     UserInfo `json:"userInfo"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// RefreshResponse is the data of GET /auth/refresh-token.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
}
