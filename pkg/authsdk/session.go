package authsdk

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// Session represents an authenticated session.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	user         UserInfo
}

// newSession creates a new authenticated session from a login response.
func newSession(client *SDKClient, resp LoginResponse) *Session {
	return &Session{
		client:       client,
		accessToken:  resp.AccessToken,
		refreshToken: resp.RefreshToken,
		user:         resp.UserInfo,
	}
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the refresh token issued at login.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// User returns the account returned at login.
func (s *Session) User() UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// MyAccount fetches the authenticated account. Requires VIEW_PROFILE.
func (s *Session) MyAccount(ctx context.Context) (*UserInfo, error) {
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/auth/my-account", nil, s.bearer(), nil)
	if err != nil {
		return nil, err
	}

	var out Response[UserInfo]
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Refresh exchanges the refresh token for a new access token. The refresh
// token itself stays the same.
func (s *Session) Refresh(ctx context.Context) error {
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/auth/refresh-token", nil, nil, s.refreshCookie())
	if err != nil {
		return err
	}

	var out Response[RefreshResponse]
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = out.Data.AccessToken
	s.mu.Unlock()
	return nil
}

// Logout revokes the access token and invalidates the refresh token.
func (s *Session) Logout(ctx context.Context) error {
	if s.RefreshToken() == "" {
		return errors.New("no refresh token to revoke")
	}

	resp, err := s.client.doRequest(ctx, http.MethodPost, "/auth/logout", nil, s.bearer(), s.refreshCookie())
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

func (s *Session) bearer() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.AccessToken()}
}

func (s *Session) refreshCookie() []*http.Cookie {
	return []*http.Cookie{{Name: RefreshCookieName, Value: s.RefreshToken()}}
}
