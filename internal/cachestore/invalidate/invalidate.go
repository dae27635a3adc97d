// Package invalidate provides targeted cache invalidators for principals,
// media files, and versioned bulk-search results, grounded on
// core/cache/invalidation.py's CacheInvalidator.
package invalidate

import (
	"context"
	"sync"
	"time"

	"github.com/filevault/botcore/internal/cachestore"
	"github.com/filevault/botcore/internal/models"
)

// searchCacheVersionKey is the counter bumped to lazily invalidate every
// versioned search-results cache entry in O(1).
const searchCacheVersionKey = "cache:search:version"

// fullInvalidationCooldown throttles version bumps to avoid a cache
// stampede when many deletes happen back to back.
const fullInvalidationCooldown = 5 * time.Second

// Invalidator bundles targeted invalidation helpers over a cachestore.Store.
type Invalidator struct {
	store cachestore.Store

	mu                sync.Mutex
	lastFullInvalidate time.Time
}

// New builds an Invalidator over store.
func New(store cachestore.Store) *Invalidator {
	return &Invalidator{store: store}
}

// SearchCacheVersion returns the current search cache version, defaulting
// to 1 when unset.
func (i *Invalidator) SearchCacheVersion(ctx context.Context) int64 {
	var v int64
	if i.store.Get(ctx, searchCacheVersionKey, &v) {
		return v
	}
	return 1
}

// BumpSearchCacheVersion increments the version, throttled to once per
// fullInvalidationCooldown.
func (i *Invalidator) BumpSearchCacheVersion(ctx context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if time.Since(i.lastFullInvalidate) < fullInvalidationCooldown {
		return
	}
	i.lastFullInvalidate = time.Now()
	if n, ok := i.store.Incr(ctx, searchCacheVersionKey, 1); ok && n == 1 {
		i.store.Incr(ctx, searchCacheVersionKey, 1)
	}
}

// Principal invalidates just the principal's own cached record.
func (i *Invalidator) Principal(ctx context.Context, principalID int64) {
	i.store.Delete(ctx, cachestore.Keys.User(principalID))
}

// PrincipalAndBanned invalidates the principal record plus the banned-list
// cache, used by ban/unban.
func (i *Invalidator) PrincipalAndBanned(ctx context.Context, principalID int64) {
	i.store.Delete(ctx, cachestore.Keys.User(principalID))
	i.store.Delete(ctx, cachestore.Keys.BannedUsers())
}

// PrincipalAll invalidates every cache entry touching a principal
// (comprehensive ban/delete-account path).
func (i *Invalidator) PrincipalAll(ctx context.Context, principalID int64) {
	for _, pattern := range cachestore.UserRelated(principalID) {
		if containsGlob(pattern) {
			i.store.DeletePattern(ctx, pattern)
		} else {
			i.store.Delete(ctx, pattern)
		}
	}
}

// File invalidates every cache entry for a single media file and bumps the
// file-stats cache key, grounded on invalidate_file_cache.
func (i *Invalidator) File(ctx context.Context, f *models.MediaFile) {
	if f.FileUniqueID != "" {
		i.store.Delete(ctx, cachestore.Keys.Media(f.FileUniqueID))
	}
	if f.FileID != "" {
		i.store.Delete(ctx, cachestore.Keys.Media(f.FileID))
	}
	if f.FileRef != "" {
		i.store.Delete(ctx, cachestore.Keys.Media(f.FileRef))
	}
	i.store.Delete(ctx, cachestore.Keys.FileStats())
}

// Setting invalidates one bot setting key, or the aggregate settings cache
// when key is empty.
func (i *Invalidator) Setting(ctx context.Context, key string) {
	if key == "" {
		i.store.Delete(ctx, cachestore.Keys.AllSettings())
		return
	}
	i.store.Delete(ctx, cachestore.Keys.BotSetting(key))
	i.store.Delete(ctx, cachestore.Keys.AllSettings())
}

func containsGlob(s string) bool {
	for _, r := range s {
		if r == '*' {
			return true
		}
	}
	return false
}
