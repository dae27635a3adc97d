package ratelimit

import (
	"context"
	"time"

	"github.com/filevault/botcore/internal/apperr"
)

// FloodWaitError carries the platform's requested backoff, grounded on the
// Pyrogram FloodWait signal the platform SDK raises on outbound calls.
type FloodWaitError struct {
	Seconds int
}

func (e *FloodWaitError) Error() string { return "flood wait" }

// Breakers is the set of circuit breakers keyed by logical endpoint name
// (e.g. "platform.send", "platform.copy").
type Breakers struct {
	named map[string]*Breaker
}

// NewBreakers builds named breakers from cfgs.
func NewBreakers(cfgs map[string]BreakerConfig) *Breakers {
	named := make(map[string]*Breaker, len(cfgs))
	for name, cfg := range cfgs {
		named[name] = NewBreaker(cfg)
	}
	return &Breakers{named: named}
}

func (b *Breakers) get(endpoint string) *Breaker {
	if br, ok := b.named[endpoint]; ok {
		return br
	}
	br := NewBreaker(BreakerConfig{
		Name:             endpoint,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	})
	b.named[endpoint] = br
	return br
}

// Guarded composes a semaphore acquire, a circuit breaker, and a
// single-retry-on-flood-wait policy around fn, the single call site every
// outbound platform call or write-heavy database operation in this repo
// goes through.
func Guarded(ctx context.Context, breakers *Breakers, sems *Semaphores, endpoint, semaphoreName string, fn func(context.Context) (any, error)) (any, error) {
	release := sems.Acquire(semaphoreName)
	defer release()

	br := breakers.get(endpoint)
	result, err := br.Execute(func() (any, error) {
		return fn(ctx)
	})
	if err == nil {
		return result, nil
	}

	var fw *FloodWaitError
	if as, ok := err.(*FloodWaitError); ok {
		fw = as
	}
	if fw != nil {
		select {
		case <-time.After(time.Duration(fw.Seconds) * time.Second):
		case <-ctx.Done():
			return nil, apperr.Wrap(apperr.Timeout, "context cancelled during flood wait", ctx.Err())
		}
		return br.Execute(func() (any, error) {
			return fn(ctx)
		})
	}

	return nil, apperr.Wrap(apperr.TelegramAPIError, "guarded call to "+endpoint+" failed", err)
}
