// Package blacklistcache puts redis in front of the durable blacklist.
//
// The database stays the source of truth. A redis hit is trusted for
// presence; a miss or any redis error falls through to the database, so an
// unavailable cache never lets a revoked token pass.
package blacklistcache

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/novastudy/internal/auth/store"
	"github.com/aussiebroadwan/novastudy/pkg/cryptox"
	"github.com/aussiebroadwan/novastudy/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bl:"

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Cache decorates a store.Blacklist.
type Cache struct {
	rdb  *redis.Client
	next store.Blacklist
	now  func() time.Time
}

var _ store.Blacklist = (*Cache)(nil)

// New connects to redis. The connection is lazy; use Ping to check it.
func New(cfg Config, next store.Blacklist) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), next)
}

func NewWithClient(rdb *redis.Client, next store.Blacklist) *Cache {
	return &Cache{rdb: rdb, next: next, now: time.Now}
}

func (c *Cache) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.rdb.Close() }

// key never contains the raw token.
func key(token string) string {
	return keyPrefix + cryptox.FingerprintToken(token)
}

// InsertBlacklistedToken writes the durable row, then the cache entry.
func (c *Cache) InsertBlacklistedToken(ctx context.Context, token string, expiresAt time.Time) error {
	if err := c.next.InsertBlacklistedToken(ctx, token, expiresAt); err != nil {
		return err
	}
	if err := c.Remember(ctx, token, expiresAt); err != nil {
		slogx.FromContext(ctx).Warn("blacklist cache write failed", "err", err)
	}
	return nil
}

// Remember caches a token that is already durably blacklisted. The entry
// expires together with the token.
func (c *Cache) Remember(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, key(token), 1, ttl).Err()
}

func (c *Cache) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key(token)).Result()
	switch {
	case err == nil && n > 0:
		return true, nil
	case err != nil && !errors.Is(err, redis.Nil):
		slogx.FromContext(ctx).Warn("blacklist cache read failed, using database", "err", err)
	}
	return c.next.IsBlacklisted(ctx, token)
}

// PurgeExpiredBlacklistedTokens only touches the database. Cache entries
// expire on their own.
func (c *Cache) PurgeExpiredBlacklistedTokens(ctx context.Context, now time.Time) (int64, error) {
	return c.next.PurgeExpiredBlacklistedTokens(ctx, now)
}
