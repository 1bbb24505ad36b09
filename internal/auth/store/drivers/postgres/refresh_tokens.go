package postgres

import (
	"context"

	"github.com/aussiebroadwan/novastudy/internal/auth/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, session_id, device_info, issued_at, expires_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.UserID, t.Token, t.SessionID, t.DeviceInfo, t.IssuedAt, t.ExpiresAt, string(t.Status),
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByToken(ctx context.Context, token string) (domain.RefreshToken, error) {
	var (
		t      domain.RefreshToken
		status string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, session_id, device_info, issued_at, expires_at, status
		FROM refresh_tokens
		WHERE token = $1`, token,
	).Scan(&t.ID, &t.UserID, &t.Token, &t.SessionID, &t.DeviceInfo, &t.IssuedAt, &t.ExpiresAt, &status)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}

	t.IssuedAt = t.IssuedAt.UTC()
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.Status = domain.TokenStatus(status)
	return t, nil
}

func (r *refreshTokensRepo) MarkRefreshTokenInvalid(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET status = $1 WHERE id = $2`,
		string(domain.TokenStatusInvalid), id,
	)
	return err
}
