// Package balancecache caches derived balances in Redis. The cache is
// an optimization only: entries expire after a short TTL (the staleness
// bound) and every successful wallet mutation invalidates the key
// synchronously before the new balance is returned to the caller.
package balancecache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, userID uint64) (int64, bool)
	Set(ctx context.Context, userID uint64, balance int64)
	Invalidate(ctx context.Context, userID uint64)
}

// Noop disables caching; every read falls through to the store.
type Noop struct{}

func (Noop) Get(context.Context, uint64) (int64, bool) { return 0, false }
func (Noop) Set(context.Context, uint64, int64)        {}
func (Noop) Invalidate(context.Context, uint64)        {}

type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{rdb: rdb, ttl: ttl}, nil
}

func key(userID uint64) string {
	return "balance:" + strconv.FormatUint(userID, 10)
}

// Get is best-effort: a Redis failure is a miss, never a request error.
func (c *Redis) Get(ctx context.Context, userID uint64) (int64, bool) {
	raw, err := c.rdb.Get(ctx, key(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("balance cache read failed", "user_id", userID, "error", err)
		}

		return 0, false
	}

	balance, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.Warn("balance cache entry corrupt", "user_id", userID, "raw", raw)

		return 0, false
	}

	return balance, true
}

func (c *Redis) Set(ctx context.Context, userID uint64, balance int64) {
	err := c.rdb.Set(ctx, key(userID), strconv.FormatInt(balance, 10), c.ttl).Err()
	if err != nil {
		slog.Warn("balance cache write failed", "user_id", userID, "error", err)
	}
}

func (c *Redis) Invalidate(ctx context.Context, userID uint64) {
	err := c.rdb.Del(ctx, key(userID)).Err()
	if err != nil {
		slog.Warn("balance cache invalidation failed", "user_id", userID, "error", err)
	}
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}
