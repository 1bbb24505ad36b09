package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/novastudy/pkg/idx"
)

type blacklistRepo struct {
	db dbtx
}

func (r *blacklistRepo) InsertBlacklistedToken(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO token_blacklist (id, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO NOTHING`,
		idx.New().String(), token, time.Now().UTC(), expiresAt.UTC(),
	)
	return err
}

func (r *blacklistRepo) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM token_blacklist WHERE token = $1)`, token,
	).Scan(&found)
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *blacklistRepo) PurgeExpiredBlacklistedTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM token_blacklist WHERE expires_at < $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
