// Package cachestore is the TTL key-value cache substrate: a codec over
// go-redis, grounded on core/cache/redis_cache.py's CacheManager. Every
// method swallows backend errors and logs them rather than raising to the
// caller, matching the original's "cache never blocks the bot" contract.
package cachestore

import (
	"context"
	"time"
)

// Store is the cache substrate interface every package depends on.
type Store interface {
	Get(ctx context.Context, key string, out any) (found bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration) (ok bool)
	Delete(ctx context.Context, key string) (ok bool)
	DeletePattern(ctx context.Context, pattern string) (deleted int)
	Exists(ctx context.Context, key string) bool
	MGet(ctx context.Context, keys []string, out func(i int) any) (found []bool)
	Incr(ctx context.Context, key string, amount int64) (int64, bool)
	Expire(ctx context.Context, key string, ttl time.Duration) bool
	TTL(ctx context.Context, key string) (time.Duration, bool)
	Close(ctx context.Context) error
}
