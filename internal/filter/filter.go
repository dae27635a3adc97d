// Package filter manages per-group keyword-triggered auto-replies,
// grounded on repositories/filter.py's FilterRepository. Each group gets
// its own store.Database collection ("filters_<group_id>"), mirroring the
// original's get_collection partitioning rather than one shared
// collection filtered by group_id — this keeps a group's filter lookups
// and text index scoped to that group alone.
package filter

import (
	"context"
	"sync"
	"time"

	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/cachestore"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/store"
)

// Engine manages filters across every group's own collection.
type Engine struct {
	db    store.Database
	cache cachestore.Store
	clock func() time.Time

	mu    sync.Mutex
	repos map[string]store.Repository[models.Filter]
}

// New builds an Engine over db.
func New(db store.Database, cache cachestore.Store) *Engine {
	return &Engine{
		db:    db,
		cache: cache,
		clock: time.Now,
		repos: make(map[string]store.Repository[models.Filter]),
	}
}

func (e *Engine) repoFor(groupID string) store.Repository[models.Filter] {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.repos[groupID]
	if !ok {
		r = store.NewRepository[models.Filter](e.db.Collection("filters_" + groupID))
		e.repos[groupID] = r
	}
	return r
}

// Add creates or overwrites the filter keyed by text within groupID, per
// add_filter (text is the collection's upsert key, not _id: filters carry
// no id of their own, matching the teacher's text-first key shape).
func (e *Engine) Add(ctx context.Context, groupID, text, reply, btn, file, alert string) error {
	repo := e.repoFor(groupID)
	now := e.clock()
	set := map[string]any{
		"text":       text,
		"reply":      reply,
		"btn":        btn,
		"file":       file,
		"alert":      alert,
		"group_id":   groupID,
		"updated_at": now,
	}
	if _, _, _, err := repo.Coll.UpdateOne(ctx, map[string]any{"text": text}, withCreatedAt(set, now), true); err != nil {
		return apperr.Wrap(apperr.DatabaseError, "add filter", err)
	}
	e.cache.Delete(ctx, cachestore.Keys.Filter(groupID, text))
	e.cache.Delete(ctx, cachestore.Keys.FilterList(groupID))
	return nil
}

func withCreatedAt(set map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(set)+1)
	for k, v := range set {
		out[k] = v
	}
	out["created_at"] = now
	return out
}

// Find looks up a filter by text within groupID, cache-first, per
// find_filter.
func (e *Engine) Find(ctx context.Context, groupID, text string) (*models.Filter, error) {
	var cached models.Filter
	cacheKey := cachestore.Keys.Filter(groupID, text)
	if e.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	repo := e.repoFor(groupID)
	found, err := repo.Coll.FindOne(ctx, map[string]any{"text": text}, &cached)
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "find filter", err)
	}
	if !found {
		return nil, nil
	}
	e.cache.Set(ctx, cacheKey, cached, cachestore.TTL.FilterData)
	return &cached, nil
}

// List returns every filter text registered for groupID, cache-first, per
// get_filters.
func (e *Engine) List(ctx context.Context, groupID string) ([]string, error) {
	var cached []string
	cacheKey := cachestore.Keys.FilterList(groupID)
	if e.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	repo := e.repoFor(groupID)
	filters, err := repo.FindMany(ctx, map[string]any{}, store.FindOptions{})
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "list filters", err)
	}
	texts := make([]string, 0, len(filters))
	for _, f := range filters {
		if f.Text != "" {
			texts = append(texts, f.Text)
		}
	}
	e.cache.Set(ctx, cacheKey, texts, cachestore.TTL.FilterList)
	return texts, nil
}

// Delete removes the filter keyed by text within groupID, per
// delete_filter. Returns false when no such filter existed.
func (e *Engine) Delete(ctx context.Context, groupID, text string) (bool, error) {
	repo := e.repoFor(groupID)
	n, err := repo.Coll.DeleteOne(ctx, map[string]any{"text": text})
	if err != nil {
		return false, apperr.Wrap(apperr.DatabaseError, "delete filter", err)
	}
	if n == 0 {
		return false, nil
	}
	e.cache.Delete(ctx, cachestore.Keys.Filter(groupID, text))
	e.cache.Delete(ctx, cachestore.Keys.FilterList(groupID))
	return true, nil
}

// DeleteAll removes every filter registered for groupID, per
// delete_all_filters (the original drops the whole per-group collection;
// this does the same via DeleteMany since store.Collection has no drop
// operation).
func (e *Engine) DeleteAll(ctx context.Context, groupID string) error {
	repo := e.repoFor(groupID)
	if _, err := repo.Coll.DeleteMany(ctx, map[string]any{}); err != nil {
		return apperr.Wrap(apperr.DatabaseError, "delete all filters", err)
	}
	e.cache.Delete(ctx, cachestore.Keys.FilterList(groupID))
	return nil
}

// Count returns the number of filters registered for groupID, per
// count_filters.
func (e *Engine) Count(ctx context.Context, groupID string) (int64, error) {
	repo := e.repoFor(groupID)
	n, err := repo.Count(ctx, map[string]any{})
	if err != nil {
		return 0, apperr.Wrap(apperr.DatabaseError, "count filters", err)
	}
	return n, nil
}
