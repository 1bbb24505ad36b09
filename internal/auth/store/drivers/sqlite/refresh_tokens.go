package sqlite

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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Token, t.SessionID, t.DeviceInfo,
		toMillis(t.IssuedAt), toMillis(t.ExpiresAt), string(t.Status),
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByToken(
	ctx context.Context,
	token string,
) (domain.RefreshToken, error) {
	var (
		t               domain.RefreshToken
		status          string
		issued, expires int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, session_id, device_info, issued_at, expires_at, status
		FROM refresh_tokens
		WHERE token = ?`, token,
	).Scan(&t.ID, &t.UserID, &t.Token, &t.SessionID, &t.DeviceInfo, &issued, &expires, &status)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}

	t.IssuedAt = fromMillis(issued)
	t.ExpiresAt = fromMillis(expires)
	t.Status = domain.TokenStatus(status)
	return t, nil
}

func (r *refreshTokensRepo) MarkRefreshTokenInvalid(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET status = ? WHERE id = ?`,
		string(domain.TokenStatusInvalid), id,
	)
	return err
}
