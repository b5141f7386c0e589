package redis

import (
	"context"
	"fmt"
	"time"

	"admissions/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Open connects to Redis. It returns nil when no address is configured so
// callers can run without rate limiting or token revocation.
func Open(ctx context.Context, cfg config.RedisCfg) (*redis.Client, error) {
	if cfg.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set: rate limiting and logout revocation disabled")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// TokenDenylist stores revoked token ids until the token would have expired.
type TokenDenylist struct {
	client redis.UniversalClient
	prefix string
}

func NewTokenDenylist(client redis.UniversalClient) *TokenDenylist {
	return &TokenDenylist{client: client, prefix: "auth:revoked:"}
}

func (d *TokenDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// already expired, nothing to deny
		return nil
	}
	return d.client.Set(ctx, d.prefix+jti, 1, ttl).Err()
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RateLimiter is a fixed-window request counter keyed by client.
type RateLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRateLimiter(client redis.UniversalClient, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

// Allow counts one request for key and reports whether it is within the limit.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.windowKey(key, l.now())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.limit), nil
}

func (l *RateLimiter) windowKey(key string, now time.Time) string {
	return fmt.Sprintf("%s%s:%d", l.prefix, key, now.UnixNano()/int64(l.window))
}
