// Package botsettings is the typed runtime-settings store: get/set/reset
// individual keys, bulk upsert, and rejection of writes to
// models.ProtectedSettingKeys, grounded on repositories/bot_settings.py's
// BotSettingsRepository.
package botsettings

import (
	"context"
	"time"

	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/cachestore"
	"github.com/filevault/botcore/internal/cachestore/invalidate"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/store"
)

// Engine reads and writes runtime bot settings.
type Engine struct {
	repo  store.Repository[models.BotSetting]
	cache cachestore.Store
	invl  *invalidate.Invalidator
	clock func() time.Time
}

// New builds an Engine over coll.
func New(coll store.Collection, cache cachestore.Store) *Engine {
	return &Engine{
		repo:  store.NewRepository[models.BotSetting](coll),
		cache: cache,
		invl:  invalidate.New(cache),
		clock: time.Now,
	}
}

// Get fetches a setting by key, cache-first, per get_setting.
func (e *Engine) Get(ctx context.Context, key string) (*models.BotSetting, error) {
	var cached models.BotSetting
	if e.cache.Get(ctx, cachestore.Keys.BotSetting(key), &cached) {
		return &cached, nil
	}

	setting, found, err := e.repo.FindByID(ctx, key)
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "get setting", err)
	}
	if !found {
		return nil, nil
	}
	e.cache.Set(ctx, cachestore.Keys.BotSetting(key), *setting, cachestore.TTL.BotSettings)
	return setting, nil
}

// Set creates or overwrites a setting, per set_setting. Rejects protected
// keys.
func (e *Engine) Set(ctx context.Context, key string, value any, valueType models.SettingValueType, defaultValue any, description string) error {
	if models.ProtectedSettingKeys[key] {
		return apperr.New(apperr.InvalidInput, "setting is protected and cannot be changed via the bot")
	}

	setting := models.BotSetting{
		Key:          key,
		Value:        value,
		ValueType:    valueType,
		DefaultValue: defaultValue,
		Description:  description,
		UpdatedAt:    e.clock(),
	}
	if _, err := e.repo.Update(ctx, key, map[string]any{
		"value":         setting.Value,
		"value_type":    setting.ValueType,
		"default_value": setting.DefaultValue,
		"description":   setting.Description,
		"updated_at":    setting.UpdatedAt,
	}, true); err != nil {
		return apperr.Wrap(apperr.DatabaseError, "set setting", err)
	}
	e.invl.Setting(ctx, key)
	return nil
}

// Update changes just the value (and optionally description) of an
// existing setting, creating it with an inferred value type when absent,
// per update_setting. Rejects protected keys.
func (e *Engine) Update(ctx context.Context, key string, value any, description *string) error {
	if models.ProtectedSettingKeys[key] {
		return apperr.New(apperr.InvalidInput, "setting is protected and cannot be changed via the bot")
	}

	existing, err := e.Get(ctx, key)
	if err != nil {
		return err
	}
	if existing == nil {
		desc := ""
		if description != nil {
			desc = *description
		}
		return e.Set(ctx, key, value, inferValueType(value), nil, desc)
	}

	set := map[string]any{
		"value":      value,
		"updated_at": e.clock(),
	}
	if description != nil {
		set["description"] = *description
	}
	if _, err := e.repo.Update(ctx, key, set, false); err != nil {
		return apperr.Wrap(apperr.DatabaseError, "update setting", err)
	}
	e.invl.Setting(ctx, key)
	return nil
}

// ResetToDefault restores key's value to its recorded default, per
// reset_to_default.
func (e *Engine) ResetToDefault(ctx context.Context, key string) error {
	setting, err := e.Get(ctx, key)
	if err != nil {
		return err
	}
	if setting == nil {
		return apperr.New(apperr.NotFound, "setting not found")
	}
	return e.Set(ctx, key, setting.DefaultValue, setting.ValueType, setting.DefaultValue, setting.Description)
}

// GetAll returns every setting keyed by its Key, per get_all_settings.
func (e *Engine) GetAll(ctx context.Context) (map[string]models.BotSetting, error) {
	settings, err := e.repo.FindMany(ctx, map[string]any{}, store.FindOptions{})
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "list settings", err)
	}
	out := make(map[string]models.BotSetting, len(settings))
	for _, s := range settings {
		out[s.Key] = s
	}
	return out, nil
}

// BulkUpsert writes every entry in settings in one pass, skipping
// protected keys, per bulk_upsert.
func (e *Engine) BulkUpsert(ctx context.Context, settings map[string]models.BotSetting) error {
	for key, s := range settings {
		if models.ProtectedSettingKeys[key] {
			continue
		}
		if err := e.Set(ctx, key, s.Value, s.ValueType, s.DefaultValue, s.Description); err != nil {
			return err
		}
	}
	return nil
}

func inferValueType(value any) models.SettingValueType {
	switch value.(type) {
	case bool:
		return models.SettingBool
	case int, int32, int64:
		return models.SettingInt
	case []string, []any:
		return models.SettingList
	default:
		return models.SettingString
	}
}
