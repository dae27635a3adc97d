// Package maintenance runs the bot's daily upkeep: expiring stale premium
// grants, resetting daily retrieval counters exactly once per day even
// across overlapping scheduler runs, and reporting system statistics,
// grounded on core/services/maintenance.py's MaintenanceService.
package maintenance

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/cachestore"
	"github.com/filevault/botcore/internal/mediaindex"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/store"
)

const dateLayout = "2006-01-02"

// tickInterval is the Serve loop's check granularity. RunDailyMaintenance
// is itself idempotent per calendar day (see lastCounterResetDate), so
// ticking far more often than once a day is safe and just means a missed
// midnight boundary is picked up within minutes instead of hours.
const tickInterval = 6 * time.Minute

// errorBackoff is how long Serve waits before retrying after
// RunDailyMaintenance's own storage calls fail outright (distinct from
// RunDailyMaintenance's internal per-field error tolerance).
const errorBackoff = 1 * time.Hour

// Engine runs daily maintenance and reports system statistics.
type Engine struct {
	principals store.Repository[models.Principal]
	settings   store.Repository[models.BotSetting]
	index      *mediaindex.Index
	db         store.Database
	cache      cachestore.Store
	clock      func() time.Time
	log        zerolog.Logger

	premiumDuration time.Duration
}

// New builds an Engine. premiumDuration is how long a premium grant lasts
// before CleanupExpiredPremium reclaims it.
func New(principalsColl, settingsColl store.Collection, index *mediaindex.Index, db store.Database, cache cachestore.Store, premiumDuration time.Duration) *Engine {
	return &Engine{
		principals:      store.NewRepository[models.Principal](principalsColl),
		settings:        store.NewRepository[models.BotSetting](settingsColl),
		index:           index,
		db:              db,
		cache:           cache,
		clock:           time.Now,
		log:             zerolog.Nop(),
		premiumDuration: premiumDuration,
	}
}

// WithLogger attaches log to e, returning e for chaining.
func (e *Engine) WithLogger(log zerolog.Logger) *Engine {
	e.log = log
	return e
}

// Serve implements suture.Service: it runs RunDailyMaintenance on a fixed
// tick, backing off for errorBackoff when a tick's storage calls fail
// outright rather than busy-looping against a down document store.
func (e *Engine) Serve(ctx context.Context) error {
	for {
		wait := tickInterval
		if _, err := e.principals.Count(ctx, map[string]any{}); err != nil {
			e.log.Error().Err(err).Msg("maintenance tick skipped, document store unreachable")
			wait = errorBackoff
		} else {
			result := e.RunDailyMaintenance(ctx)
			e.log.Info().
				Int("expired_premium", result.ExpiredPremium).
				Bool("counters_reset", result.CountersReset).
				Int("reset_count", result.ResetCount).
				Msg("daily maintenance tick")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// DailyResult summarizes one run_daily_maintenance call.
type DailyResult struct {
	ExpiredPremium int
	CountersReset  bool
	ResetCount     int
}

// RunDailyMaintenance cleans up expired premium grants and resets daily
// retrieval counters exactly once per calendar day, persisting the reset
// date so a Docker rebuild or a second scheduler instance can't double
// fire it the same day.
func (e *Engine) RunDailyMaintenance(ctx context.Context) DailyResult {
	var result DailyResult

	expired, err := e.CleanupExpiredPremium(ctx)
	if err != nil {
		expired = 0
	}
	result.ExpiredPremium = expired

	today := e.clock().UTC().Format(dateLayout)
	lastReset, ok := e.lastCounterResetDate(ctx)
	if ok && lastReset == today {
		return result
	}

	count, err := e.ResetDailyCounters(ctx)
	if err != nil {
		return result
	}
	e.storeCounterResetDate(ctx, today)
	result.CountersReset = true
	result.ResetCount = count
	return result
}

// CleanupExpiredPremium clears is_premium on every principal whose
// activation date is older than premiumDuration.
func (e *Engine) CleanupExpiredPremium(ctx context.Context) (int, error) {
	cutoff := e.clock().Add(-e.premiumDuration)
	principals, err := e.principals.FindMany(ctx, map[string]any{
		"is_premium":              true,
		"premium_activation_date": map[string]any{"$lte": cutoff},
	}, store.FindOptions{})
	if err != nil {
		return 0, apperr.Wrap(apperr.DatabaseError, "find expired premium principals", err)
	}

	now := e.clock()
	for _, p := range principals {
		if _, err := e.principals.Update(ctx, p.ID, map[string]any{
			"is_premium":              false,
			"premium_activation_date": nil,
			"updated_at":              now,
		}, false); err != nil {
			return 0, apperr.Wrap(apperr.DatabaseError, "clear expired premium", err)
		}
	}
	return len(principals), nil
}

// ResetDailyCounters zeroes daily_retrieval_count for every principal
// that still carries a nonzero count.
func (e *Engine) ResetDailyCounters(ctx context.Context) (int, error) {
	principals, err := e.principals.FindMany(ctx, map[string]any{
		"daily_retrieval_count": map[string]any{"$gt": 0},
	}, store.FindOptions{})
	if err != nil {
		return 0, apperr.Wrap(apperr.DatabaseError, "find principals with nonzero counters", err)
	}

	for _, p := range principals {
		if _, err := e.principals.Update(ctx, p.ID, map[string]any{
			"daily_retrieval_count": 0,
		}, false); err != nil {
			return 0, apperr.Wrap(apperr.DatabaseError, "reset daily counter", err)
		}
	}
	return len(principals), nil
}

func (e *Engine) lastCounterResetDate(ctx context.Context) (string, bool) {
	var cached string
	if e.cache.Get(ctx, cachestore.Keys.LastCounterResetDate(), &cached) {
		return cached, true
	}
	setting, found, err := e.settings.FindByID(ctx, "last_counter_reset_date")
	if err != nil || !found {
		return "", false
	}
	value, ok := setting.Value.(string)
	if !ok || value == "" {
		return "", false
	}
	e.cache.Set(ctx, cachestore.Keys.LastCounterResetDate(), value, cachestore.TTL.MaintenanceResetCounters)
	return value, true
}

func (e *Engine) storeCounterResetDate(ctx context.Context, date string) {
	setting := models.BotSetting{
		Key:         "last_counter_reset_date",
		Value:       date,
		ValueType:   models.SettingString,
		Description: "Last daily counter reset date: " + date,
		UpdatedAt:   e.clock(),
	}
	if _, found, _ := e.settings.FindByID(ctx, setting.Key); found {
		e.settings.Update(ctx, setting.Key, map[string]any{
			"value":       date,
			"description": setting.Description,
			"updated_at":  setting.UpdatedAt,
		}, false)
	} else {
		e.settings.Create(ctx, setting)
	}
	e.cache.Set(ctx, cachestore.Keys.LastCounterResetDate(), date, cachestore.TTL.MaintenanceResetCounters)
}
