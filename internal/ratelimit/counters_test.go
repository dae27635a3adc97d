package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/filevault/botcore/internal/cachestore/cachetest"
)

func TestCounters_AllowsUnderLimit(t *testing.T) {
	store := cachetest.New()
	c := NewCounters(store, map[string]ActionConfig{
		"search": {MaxRequests: 3, Window: time.Minute, CooldownTime: time.Minute},
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, retryAfter := c.Check(ctx, 42, "search")
		if !allowed {
			t.Fatalf("request %d: expected allowed, got cooldown %v", i, retryAfter)
		}
	}
}

func TestCounters_BlocksOverLimit(t *testing.T) {
	store := cachetest.New()
	c := NewCounters(store, map[string]ActionConfig{
		"search": {MaxRequests: 2, Window: time.Minute, CooldownTime: time.Hour},
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if allowed, _ := c.Check(ctx, 42, "search"); !allowed {
			t.Fatalf("request %d: expected allowed", i)
		}
	}

	allowed, retryAfter := c.Check(ctx, 42, "search")
	if allowed {
		t.Fatal("expected third request to be blocked")
	}
	if retryAfter <= 0 || retryAfter > time.Hour {
		t.Errorf("retryAfter = %v, want in (0, 1h]", retryAfter)
	}
}

func TestCounters_CooldownServedFromLocalCache(t *testing.T) {
	store := cachetest.New()
	c := NewCounters(store, map[string]ActionConfig{
		"search": {MaxRequests: 1, Window: time.Minute, CooldownTime: time.Hour},
	})
	ctx := context.Background()

	if allowed, _ := c.Check(ctx, 42, "search"); !allowed {
		t.Fatal("expected first request to be allowed")
	}
	if allowed, _ := c.Check(ctx, 42, "search"); allowed {
		t.Fatal("expected second request to trip the cooldown")
	}

	// Nil out the store; any further store access would panic, proving the
	// local cooldown cache short-circuits before reaching it.
	c.store = nil

	allowed, retryAfter := c.Check(ctx, 42, "search")
	if allowed {
		t.Fatal("expected local cache to still report cooldown")
	}
	if retryAfter <= 0 {
		t.Errorf("retryAfter = %v, want > 0", retryAfter)
	}
}

func TestCounters_UnknownActionAlwaysAllowed(t *testing.T) {
	c := NewCounters(cachetest.New(), nil)
	allowed, retryAfter := c.Check(context.Background(), 1, "unknown_action")
	if !allowed || retryAfter != 0 {
		t.Errorf("got (%v, %v), want (true, 0)", allowed, retryAfter)
	}
}

func TestCounters_ResetClearsLocalAndStoreCooldown(t *testing.T) {
	store := cachetest.New()
	c := NewCounters(store, map[string]ActionConfig{
		"search": {MaxRequests: 1, Window: time.Minute, CooldownTime: time.Hour},
	})
	ctx := context.Background()

	c.Check(ctx, 42, "search")
	c.Check(ctx, 42, "search") // trips cooldown, populates local cache

	c.Reset(ctx, 42, "search")

	allowed, _ := c.Check(ctx, 42, "search")
	if !allowed {
		t.Fatal("expected reset to clear the cooldown")
	}
}
