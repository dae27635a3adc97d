// Package access implements the Access & Quota Engine: membership/ban
// checks, premium-aware daily quota decisions, and atomic quota
// reservation, grounded on repositories/user.py.
package access

import (
	"context"
	"time"

	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/cachestore"
	"github.com/filevault/botcore/internal/cachestore/invalidate"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/store"
)

// Policy is the runtime-tunable knobs the decision logic depends on.
type Policy struct {
	PremiumDisabled    bool
	PremiumDurationDays int
	DailyLimit         int
}

// Engine is the Access & Quota Engine.
type Engine struct {
	repo   store.Repository[models.Principal]
	cache  cachestore.Store
	invl   *invalidate.Invalidator
	clock  func() time.Time
}

// New builds an Engine over coll.
func New(coll store.Collection, cache cachestore.Store) *Engine {
	return &Engine{
		repo:  store.NewRepository[models.Principal](coll),
		cache: cache,
		invl:  invalidate.New(cache),
		clock: time.Now,
	}
}

// Decision is the outcome of CanRetrieve.
type Decision struct {
	Allowed       bool
	Reason        string
	RemainingDays int
}

// CanRetrieve implements the seven-step decision from the access & quota
// design. ownerID may be nil when there is no bot owner override.
func (e *Engine) CanRetrieve(ctx context.Context, principalID int64, ownerID *int64, policy Policy) (Decision, error) {
	if policy.PremiumDisabled {
		return Decision{Allowed: true, Reason: "unlimited"}, nil
	}
	if ownerID != nil && principalID == *ownerID {
		return Decision{Allowed: true, Reason: "owner"}, nil
	}

	p, found, err := e.repo.FindByID(ctx, principalID)
	if err != nil {
		return Decision{}, apperr.Wrap(apperr.DatabaseError, "load principal", err)
	}
	if !found {
		return Decision{Allowed: true, Reason: "new principal"}, nil
	}
	if p.Status == models.PrincipalBanned {
		reason := p.BanReason
		if reason == "" {
			reason = "banned"
		}
		return Decision{Allowed: false, Reason: reason}, nil
	}

	now := e.clock()
	if p.IsPremium {
		if expiry, ok := p.PremiumExpiry(time.Duration(policy.PremiumDurationDays) * 24 * time.Hour); ok && now.Before(expiry) {
			remaining := int(expiry.Sub(now).Hours() / 24)
			return Decision{Allowed: true, Reason: "premium", RemainingDays: remaining}, nil
		}
		// Premium flagged but expired: caller is responsible for clearing
		// the flag via RemovePremium; fall through to quota check.
	}

	count := p.DailyRetrievalCount
	if p.LastRetrievalDate == nil || !sameDay(*p.LastRetrievalDate, now) {
		count = 0
	}
	if count >= policy.DailyLimit {
		return Decision{Allowed: false, Reason: "daily limit reached"}, nil
	}
	return Decision{Allowed: true, Reason: "quota available", RemainingDays: 0}, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
