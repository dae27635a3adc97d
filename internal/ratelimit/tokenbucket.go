package ratelimit

import (
	"context"
	"time"

	"github.com/filevault/botcore/internal/cachestore"
)

type bucketState struct {
	Tokens     float64 `json:"tokens"`
	LastRefill int64   `json:"last_refill"` // unix seconds
}

// TokenBucket is a persisted, continuously-refilling token bucket shared
// across process instances via cachestore, grounded on
// DistributedRateLimiter.acquire_token.
type TokenBucket struct {
	store cachestore.Store
	clock func() time.Time
}

// NewTokenBucket builds a TokenBucket over store using the real clock.
func NewTokenBucket(store cachestore.Store) *TokenBucket {
	return &TokenBucket{store: store, clock: time.Now}
}

// Acquire consumes one token from the bucket named key, refilling at
// refillRate tokens/sec up to capacity. Returns true if a token was
// available.
func (b *TokenBucket) Acquire(ctx context.Context, key string, refillRate float64, capacity int) bool {
	now := b.clock()
	bucketKey := cachestore.Keys.TokenBucket(key)

	var state bucketState
	tokens := float64(capacity)
	lastRefill := now
	if b.store.Get(ctx, bucketKey, &state) {
		tokens = state.Tokens
		lastRefill = time.Unix(state.LastRefill, 0)
	}

	elapsed := now.Sub(lastRefill).Seconds()
	tokens += elapsed * refillRate
	if tokens > float64(capacity) {
		tokens = float64(capacity)
	}

	if tokens < 1 {
		return false
	}
	tokens--

	b.store.Set(ctx, bucketKey, bucketState{Tokens: tokens, LastRefill: now.Unix()}, cachestore.TTL.RateLimitCooldown)
	return true
}
