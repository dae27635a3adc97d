package access

import (
	"context"

	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/cachestore"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/store"
)

// Ban marks principalID banned with reason, then invalidates its cached
// record plus the banned-users list, per ban_user.
func (e *Engine) Ban(ctx context.Context, principalID int64, reason string) (*models.Principal, error) {
	p, found, err := e.repo.FindByID(ctx, principalID)
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "load principal", err)
	}
	if !found {
		return nil, apperr.New(apperr.NotFound, "principal not found")
	}
	if p.Status == models.PrincipalBanned {
		return p, apperr.New(apperr.DuplicateEntry, "principal already banned")
	}

	now := e.clock()
	if _, err := e.repo.Update(ctx, principalID, map[string]any{
		"status":     models.PrincipalBanned,
		"ban_reason": reason,
		"updated_at": now,
	}, false); err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "ban principal", err)
	}

	e.invl.PrincipalAndBanned(ctx, principalID)

	p.Status = models.PrincipalBanned
	p.BanReason = reason
	p.UpdatedAt = now
	return p, nil
}

// Unban clears a ban, invalidating the same cache entries as Ban.
func (e *Engine) Unban(ctx context.Context, principalID int64) (*models.Principal, error) {
	p, found, err := e.repo.FindByID(ctx, principalID)
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "load principal", err)
	}
	if !found {
		return nil, apperr.New(apperr.NotFound, "principal not found")
	}
	if p.Status != models.PrincipalBanned {
		return p, apperr.New(apperr.InvalidInput, "principal is not banned")
	}

	now := e.clock()
	if _, err := e.repo.Update(ctx, principalID, map[string]any{
		"status":     models.PrincipalActive,
		"ban_reason": "",
		"updated_at": now,
	}, false); err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "unban principal", err)
	}

	e.invl.PrincipalAndBanned(ctx, principalID)

	p.Status = models.PrincipalActive
	p.BanReason = ""
	p.UpdatedAt = now
	return p, nil
}

// BannedPrincipals returns all banned principal IDs, cache-first with the
// banned-users-list TTL.
func (e *Engine) BannedPrincipals(ctx context.Context) ([]int64, error) {
	var ids []int64
	cacheKey := cachestore.Keys.BannedUsers()
	if e.cache.Get(ctx, cacheKey, &ids) {
		return ids, nil
	}

	principals, err := e.repo.FindMany(ctx, map[string]any{"status": string(models.PrincipalBanned)}, store.FindOptions{})
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "list banned principals", err)
	}
	ids = make([]int64, 0, len(principals))
	for _, p := range principals {
		ids = append(ids, p.ID)
	}
	e.cache.Set(ctx, cacheKey, ids, cachestore.TTL.BannedUsersList)
	return ids, nil
}

// AddPremium grants premium status with an activation date of now.
func (e *Engine) AddPremium(ctx context.Context, principalID int64) (*models.Principal, error) {
	return e.setPremium(ctx, principalID, true)
}

// RemovePremium clears premium status and resets the daily counter.
func (e *Engine) RemovePremium(ctx context.Context, principalID int64) (*models.Principal, error) {
	return e.setPremium(ctx, principalID, false)
}

func (e *Engine) setPremium(ctx context.Context, principalID int64, isPremium bool) (*models.Principal, error) {
	p, found, err := e.repo.FindByID(ctx, principalID)
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "load principal", err)
	}
	if !found {
		return nil, apperr.New(apperr.NotFound, "principal not found")
	}
	if p.IsPremium == isPremium {
		return p, apperr.New(apperr.DuplicateEntry, "principal already has requested premium state")
	}

	now := e.clock()
	set := map[string]any{
		"is_premium": isPremium,
		"updated_at": now,
	}
	if isPremium {
		set["premium_activation_date"] = now
	} else {
		set["premium_activation_date"] = nil
		set["daily_retrieval_count"] = 0
	}

	if _, err := e.repo.Update(ctx, principalID, set, false); err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "update premium status", err)
	}

	e.invl.Principal(ctx, principalID)

	p.IsPremium = isPremium
	if isPremium {
		p.PremiumActivationDate = &now
	} else {
		p.PremiumActivationDate = nil
		p.DailyRetrievalCount = 0
	}
	p.UpdatedAt = now
	return p, nil
}
