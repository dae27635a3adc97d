// Package ratelimit implements action counters, a persisted token bucket,
// per-endpoint circuit breakers, and named semaphores guarding outbound
// platform calls and database writes.
package ratelimit

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig configures a named circuit breaker.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// Breaker wraps a gobreaker.CircuitBreaker for a single logical endpoint
// (e.g. "platform.send", "platform.copy").
type Breaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

// NewBreaker builds a circuit breaker that trips after cfg.FailureThreshold
// consecutive failures.
func NewBreaker(cfg BreakerConfig) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// State returns the breaker's current state as a string for metrics export.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Execute runs fn under the breaker's protection.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	return b.cb.Execute(fn)
}
