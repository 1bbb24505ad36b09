package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/novastudy/internal/auth/domain"
	"github.com/aussiebroadwan/novastudy/internal/auth/service"
	"github.com/aussiebroadwan/novastudy/pkg/authsdk"
	"github.com/aussiebroadwan/novastudy/pkg/httpx"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	Tokens *service.TokenService
	Users  *service.UserService
	Cookie CookieConfig

	// StoreTimeout bounds the service call of each request. Zero disables it.
	StoreTimeout time.Duration
}

func (h *AuthHandler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	if h.StoreTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.StoreTimeout)
}

// HandleRegister godoc
//
//	@Summary		Register a new account
//	@Description	Creates a user with ROLE_USER. Does not log in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"Account details"
//	@Success		200		{object}	authsdk.Response[authsdk.RegisterResponse]
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure		409		{object}	authsdk.ErrorResponse	"Username or email already exists"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeBody(w, r, &req) || !validate(w, r, req.Validate()) {
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	user, err := h.Users.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "Create new account successful", authsdk.RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Issues an access token and a refresh token. The refresh token is also set as an HttpOnly cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.Response[authsdk.LoginResponse]
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid account"
//	@Failure		429		{object}	authsdk.MinimalErrorResponse
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeBody(w, r, &req) || !validate(w, r, req.Validate()) {
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	res, err := h.Tokens.Login(ctx, req.Username, req.Password, r.UserAgent())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookie.set(w, res.RefreshToken)
	httpx.WriteSuccess(w, http.StatusOK, "Login successful", authsdk.LoginResponse{
		UserInfo:     userInfo(res.Account),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

// HandleMyAccount godoc
//
//	@Summary		Current account
//	@Description	Returns the authenticated account. Requires VIEW_PROFILE.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Response[authsdk.UserInfo]
//	@Failure		401	{object}	authsdk.MinimalErrorResponse	"Missing, invalid or revoked access token"
//	@Failure		403	{object}	authsdk.ErrorResponse			"Access denied"
//	@Router			/auth/my-account [get].
func (h *AuthHandler) HandleMyAccount(w http.ResponseWriter, r *http.Request) {
	p := httpx.PrincipalFrom(r.Context())
	if !p.IsAuthenticated() {
		authsdk.ErrUnauthorized.WriteError(w, r)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	account, err := h.Users.GetAccount(ctx, p.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "Get information successful", userInfo(account))
}

// HandleRefresh godoc
//
//	@Summary		Refresh the access token
//	@Description	Exchanges the refresh_token cookie for a new access token. The refresh token is not rotated.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.Response[authsdk.RefreshResponse]
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing, unknown, revoked or expired refresh token"
//	@Router			/auth/refresh-token [get].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := refreshTokenFrom(r)
	if !ok {
		authsdk.ErrUnauthorized.WithMessage("Refresh token is missing").WriteError(w, r)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	res, err := h.Tokens.Refresh(ctx, refreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookie.set(w, res.RefreshToken)
	httpx.WriteSuccess(w, http.StatusOK, "Access Token refreshed successfully", authsdk.RefreshResponse{
		AccessToken: res.AccessToken,
	})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Blacklists the access token and invalidates the refresh_token cookie's session.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Response[any]
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid tokens"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := httpx.BearerToken(r)
	if !ok {
		authsdk.ErrUnauthorized.WithMessage("Access token is missing").WriteError(w, r)
		return
	}
	refreshToken, ok := refreshTokenFrom(r)
	if !ok {
		authsdk.ErrUnauthorized.WithMessage("Refresh token is missing").WriteError(w, r)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := h.Tokens.Logout(ctx, refreshToken, accessToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookie.clear(w)
	httpx.WriteSuccess(w, http.StatusOK, "Logout successful", nil)
}

func userInfo(a domain.Account) authsdk.UserInfo {
	return authsdk.UserInfo{
		UserID:      a.ID,
		Email:       a.Email,
		UserName:    a.Username,
		FullName:    a.FullName,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
		Authorities: a.Authorities,
	}
}
