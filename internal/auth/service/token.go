package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/novastudy/internal/auth/domain"
	"github.com/aussiebroadwan/novastudy/internal/auth/store"
	"github.com/aussiebroadwan/novastudy/pkg/cryptox"
	"github.com/aussiebroadwan/novastudy/pkg/idx"
	"github.com/aussiebroadwan/novastudy/pkg/jwtx"
	"github.com/aussiebroadwan/novastudy/pkg/slogx"
	"github.com/google/uuid"
)

// BlacklistCache is told about a revoked access token once the durable
// blacklist row is committed.
type BlacklistCache interface {
	Remember(ctx context.Context, token string, expiresAt time.Time) error
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	domain.TokenPair
	Account   domain.Account
	SessionID string
}

// RefreshResult carries a new access token. The refresh token is returned
// unchanged.
type RefreshResult struct {
	domain.TokenPair
	ExpiresAt time.Time
}

type TokenService struct {
	Users    *UserService
	Signer   *jwtx.HS256Signer
	Verifier *jwtx.HS256Verifier
	Store    store.Store

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Cache is optional.
	Cache   BlacklistCache
	Metrics Metrics

	now func() time.Time
}

func (s *TokenService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL <= 0 {
		return jwtx.DefaultAccessTokenTTL
	}
	return s.AccessTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL <= 0 {
		return jwtx.DefaultRefreshTokenTTL
	}
	return s.RefreshTTL
}

// Login authenticates the user and opens a new session: an access token
// carrying the user's authorities and a persisted refresh token.
func (s *TokenService) Login(ctx context.Context, username, password, deviceInfo string) (*LoginResult, error) {
	l := slogx.FromContext(ctx)
	m := metricsOrNop(s.Metrics)

	account, err := s.Users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			l.Info("login failed", slog.String("username", username))
			m.LoginFailed(ctx)
		}
		return nil, err
	}

	accessToken, err := s.Signer.IssueAccess(account.ID, account.Authorities, s.accessTTL())
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.Signer.IssueRefresh(account.ID, s.refreshTTL())
	if err != nil {
		return nil, err
	}

	if deviceInfo == "" {
		deviceInfo = domain.DefaultDeviceInfo
	}

	now := s.clock()
	record := domain.RefreshToken{
		ID:         idx.New().String(),
		UserID:     account.ID,
		Token:      refreshToken,
		SessionID:  uuid.NewString(),
		DeviceInfo: deviceInfo,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.refreshTTL()),
		Status:     domain.TokenStatusValid,
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, record); err != nil {
		return nil, err
	}

	l.Info("login succeeded",
		slog.String("user_id", account.ID),
		slog.String("session_id", record.SessionID),
		slog.String("device_info", record.DeviceInfo),
	)
	m.LoginSucceeded(ctx)

	return &LoginResult{
		TokenPair: domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
		Account:   account,
		SessionID: record.SessionID,
	}, nil
}

// Refresh exchanges a stored, valid refresh token for a new access token.
// A record found expired is flipped to INVALID before the call fails, so
// every later attempt fails as revoked.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	res, err := s.refresh(ctx, refreshToken)
	m := metricsOrNop(s.Metrics)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			m.RefreshFailed(ctx)
		}
		return nil, err
	}
	m.RefreshSucceeded(ctx)
	return res, nil
}

func (s *TokenService) refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	l := slogx.FromContext(ctx).With(slog.String("token_fp", fingerprint(refreshToken)))

	record, err := s.Store.RefreshTokens().GetRefreshTokenByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("refresh with unknown token")
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if !record.IsValid() {
		l.Info("refresh with revoked token", slog.String("session_id", record.SessionID))
		return nil, ErrRefreshTokenRevoked
	}

	if record.IsExpired(s.clock()) {
		if err := s.Store.RefreshTokens().MarkRefreshTokenInvalid(ctx, record.ID); err != nil {
			return nil, err
		}
		l.Info("refresh token expired", slog.String("session_id", record.SessionID))
		return nil, ErrRefreshTokenExpired
	}

	claims, err := s.Verifier.VerifyRefresh(refreshToken)
	if err != nil || claims.Subject != record.UserID {
		l.Warn("stored refresh token failed verification", slog.Any("err", err))
		return nil, ErrInvalidRefreshToken
	}

	account, err := s.Users.GetAccount(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	accessToken, err := s.Signer.IssueAccess(account.ID, account.Authorities, s.accessTTL())
	if err != nil {
		return nil, err
	}

	l.Debug("access token refreshed", slog.String("session_id", record.SessionID))
	return &RefreshResult{
		TokenPair: domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// Logout ends a session: the access token is blacklisted until its own
// expiry and the refresh record is flipped to INVALID, in one transaction.
func (s *TokenService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	l := slogx.FromContext(ctx)

	record, err := s.Store.RefreshTokens().GetRefreshTokenByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidRefreshToken
		}
		return err
	}

	claims, err := s.Verifier.VerifyAccess(accessToken)
	if err != nil {
		l.Info("logout with unusable access token", slog.Any("err", err))
		return ErrInvalidAccessToken
	}
	expiresAt := claims.Expiry()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Blacklist().InsertBlacklistedToken(ctx, accessToken, expiresAt); err != nil {
			return err
		}
		return tx.RefreshTokens().MarkRefreshTokenInvalid(ctx, record.ID)
	})
	if err != nil {
		return err
	}

	if s.Cache != nil {
		if err := s.Cache.Remember(ctx, accessToken, expiresAt); err != nil {
			l.Warn("blacklist cache write failed", slog.Any("err", err))
		}
	}

	l.Info("logout succeeded",
		slog.String("user_id", record.UserID),
		slog.String("session_id", record.SessionID),
		slog.String("device_info", record.DeviceInfo),
	)
	metricsOrNop(s.Metrics).LoggedOut(ctx)
	return nil
}

// fingerprint shortens a token for logs. Raw tokens are never logged.
func fingerprint(token string) string {
	fp := cryptox.FingerprintToken(token)
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
