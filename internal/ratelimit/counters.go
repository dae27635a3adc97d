package ratelimit

import (
	"context"
	"time"

	"github.com/filevault/botcore/internal/cache"
	"github.com/filevault/botcore/internal/cachestore"
)

// ActionConfig is the limit configuration for one named action, grounded
// on rate_limiter.py's RateLimitConfig/configs table.
type ActionConfig struct {
	MaxRequests  int
	Window       time.Duration
	CooldownTime time.Duration
}

// DefaultActionConfigs mirrors RateLimiter.configs' defaults exactly.
var DefaultActionConfigs = map[string]ActionConfig{
	"search":        {MaxRequests: 30, Window: cachestore.TTL.RateLimitWindow, CooldownTime: time.Minute},
	"file_request":  {MaxRequests: 10, Window: time.Minute, CooldownTime: time.Minute},
	"broadcast":     {MaxRequests: 1, Window: time.Hour, CooldownTime: time.Hour},
	"inline_query":  {MaxRequests: 50, Window: time.Minute, CooldownTime: time.Minute},
	"premium_check": {MaxRequests: 100, Window: time.Minute, CooldownTime: time.Minute},
}

// Counters implements per-(principal, action) sliding-window limiting with
// a cooldown once the limit is hit, backed by cachestore. A short-lived
// local cache of active cooldowns avoids a Redis round trip for every
// message from a principal that is already in cooldown, which is the
// hottest path once a flood starts.
type Counters struct {
	store   cachestore.Store
	configs map[string]ActionConfig
	local   *cache.Cache
}

// NewCounters builds a Counters using cfgs, falling back to
// DefaultActionConfigs for actions not present in cfgs.
func NewCounters(store cachestore.Store, cfgs map[string]ActionConfig) *Counters {
	merged := make(map[string]ActionConfig, len(DefaultActionConfigs))
	for k, v := range DefaultActionConfigs {
		merged[k] = v
	}
	for k, v := range cfgs {
		merged[k] = v
	}
	return &Counters{store: store, configs: merged, local: cache.New(time.Minute)}
}

// Check reports whether principalID may perform action now, and if not, the
// seconds remaining until it may retry.
func (c *Counters) Check(ctx context.Context, principalID int64, action string) (allowed bool, retryAfter time.Duration) {
	cfg, ok := c.configs[action]
	if !ok {
		return true, 0
	}

	cooldownKey := cachestore.Keys.RateLimitCooldown(principalID, action)

	if until, ok := c.local.Get(cooldownKey); ok {
		if remaining := time.Until(until.(time.Time)); remaining > 0 {
			return false, remaining
		}
		c.local.Delete(cooldownKey)
	}

	var cooldownSecs int64
	if c.store.Get(ctx, cooldownKey, &cooldownSecs) {
		d := time.Duration(cooldownSecs) * time.Second
		c.local.SetWithTTL(cooldownKey, time.Now().Add(d), d)
		return false, d
	}

	key := cachestore.Keys.RateLimit(principalID, action)
	var current int64
	c.store.Get(ctx, key, &current)

	if int(current) >= cfg.MaxRequests {
		c.store.Set(ctx, cooldownKey, int64(cfg.CooldownTime/time.Second), cfg.CooldownTime)
		c.local.SetWithTTL(cooldownKey, time.Now().Add(cfg.CooldownTime), cfg.CooldownTime)
		return false, cfg.CooldownTime
	}

	c.store.Incr(ctx, key, 1)
	c.store.Expire(ctx, key, cfg.Window)
	return true, 0
}

// Reset clears the counter and cooldown for principalID/action.
func (c *Counters) Reset(ctx context.Context, principalID int64, action string) {
	c.store.Delete(ctx, cachestore.Keys.RateLimit(principalID, action))
	cooldownKey := cachestore.Keys.RateLimitCooldown(principalID, action)
	c.store.Delete(ctx, cooldownKey)
	c.local.Delete(cooldownKey)
}
