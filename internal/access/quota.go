package access

import (
	"context"
	"time"

	"github.com/filevault/botcore/internal/apperr"
)

// maxCASAttempts bounds the compare-and-set retry loop so a pathologically
// hot principal document cannot spin ReserveQuotaAtomic forever.
const maxCASAttempts = 8

// ReserveQuotaAtomic atomically increments principalID's daily counter by
// the largest k<=n such that count+k<=dailyLimit, rolling the date over if
// last_retrieval_date is not today. It is implemented as a compare-and-set
// loop against the principal document (matching the previously-read count
// and date in the update filter) since the document store here has no
// native atomic bounded-increment operator, per the design's CAS-loop
// option.
func (e *Engine) ReserveQuotaAtomic(ctx context.Context, principalID int64, n, dailyLimit int) (ok bool, reserved int, reason string, err error) {
	now := e.clock()

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		p, found, ferr := e.repo.FindByID(ctx, principalID)
		if ferr != nil {
			return false, 0, "", apperr.Wrap(apperr.DatabaseError, "load principal", ferr)
		}

		var prevCount int
		var prevDate *time.Time
		if found {
			prevCount = p.DailyRetrievalCount
			prevDate = p.LastRetrievalDate
		}

		rolledOver := prevDate == nil || !sameDay(*prevDate, now)
		effectiveCount := prevCount
		if rolledOver {
			effectiveCount = 0
		}

		k := n
		if effectiveCount+k > dailyLimit {
			k = dailyLimit - effectiveCount
		}
		if k <= 0 {
			return false, 0, "daily limit reached", nil
		}

		// The filter must pin both the count and the date it was read
		// against. Pinning count alone lets two callers that both observed
		// the same stale document across a day rollover race each other:
		// if the winner's rolled-over write happens to land on a count
		// that numerically equals the loser's stale prevCount (effectiveCount
		// 0 + k == prevCount), the loser's count-only filter would still
		// match the winner's already-written document and re-apply a
		// second reservation on top of it.
		filter := map[string]any{"_id": principalID}
		if found {
			filter["daily_retrieval_count"] = prevCount
			if prevDate != nil {
				filter["last_retrieval_date"] = *prevDate
			} else {
				filter["last_retrieval_date"] = nil
			}
		}

		matched, modified, upsertedID, uerr := e.updateOneFiltered(ctx, filter, map[string]any{
			"daily_retrieval_count": effectiveCount + k,
			"last_retrieval_date":   now,
			"updated_at":            now,
		}, !found)
		if uerr != nil {
			return false, 0, "", apperr.Wrap(apperr.DatabaseError, "reserve quota update", uerr)
		}
		if modified > 0 || matched > 0 || upsertedID != nil {
			return true, k, "", nil
		}
		// Lost the race; another caller mutated the document. Retry.
	}
	return false, 0, "", apperr.New(apperr.SystemError, "quota reservation contention exceeded retry budget")
}

// ReleaseQuota decrements principalID's daily counter by n, clamped at 0,
// used when bulk delivery sends fewer than reserved.
func (e *Engine) ReleaseQuota(ctx context.Context, principalID int64, n int) error {
	p, found, err := e.repo.FindByID(ctx, principalID)
	if err != nil {
		return apperr.Wrap(apperr.DatabaseError, "load principal", err)
	}
	if !found {
		return nil
	}
	newCount := p.DailyRetrievalCount - n
	if newCount < 0 {
		newCount = 0
	}
	_, err = e.repo.Update(ctx, principalID, map[string]any{
		"daily_retrieval_count": newCount,
		"updated_at":            e.clock(),
	}, false)
	if err != nil {
		return apperr.Wrap(apperr.DatabaseError, "release quota", err)
	}
	return nil
}

func (e *Engine) updateOneFiltered(ctx context.Context, filter, set map[string]any, upsert bool) (matched, modified int64, upsertedID any, err error) {
	return e.repo.Coll.UpdateOne(ctx, filter, set, upsert)
}
