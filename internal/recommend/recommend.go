// Package recommend records the search queries a principal makes so a
// handler layer can surface "recent searches" shortcuts, and tracks
// sitewide query popularity for a "trending searches" shortcut. Per
// spec.md's Open Questions the per-principal recency list is deliberately a
// recorder, not a recommendation engine: cachestore.Store exposes no
// sorted-set primitives (ZINCRBY/ZREVRANGE), so the ranking/co-occurrence
// machinery in core/services/recommendation.py and the fuzzy-matching
// find_similar_queries in core/services/search_history.py are out of
// scope — only track_search/get_most_searched_keywords' recency list is
// rebuilt here. Trending, by contrast, is deliberately process-local and
// approximate (reset on restart, not shared across instances), so it is
// built on an in-process sliding window rather than cachestore.
package recommend

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/filevault/botcore/internal/cache"
	"github.com/filevault/botcore/internal/cachestore"
)

// MaxKeywords bounds how many recent queries are retained per principal,
// mirroring search_history.py's max_keywords default.
const MaxKeywords = 8

const (
	trendingWindow     = time.Hour
	trendingBuckets    = 12
	trendingMaxQueries = 2000

	// trendingMinDistinctSearchers keeps one principal re-running the same
	// query from putting it on the trending list alone.
	trendingMinDistinctSearchers = 2
)

// Recorder tracks recent search queries per principal, plus a sitewide
// trending-queries signal.
type Recorder struct {
	cache cachestore.Store

	// volume and distinct back TrendingQueries: volume counts every search
	// for a query within the window, distinct counts how many different
	// principals ran it. Both live only in process memory.
	volume   *cache.SlidingWindowStore
	distinct *cache.UniqueValueStore
}

// New builds a Recorder over store.
func New(store cachestore.Store) *Recorder {
	return &Recorder{
		cache:    store,
		volume:   cache.NewSlidingWindowStore(trendingWindow, trendingBuckets, trendingMaxQueries),
		distinct: cache.NewUniqueValueStore(trendingWindow, trendingBuckets, trendingMaxQueries),
	}
}

// Record normalizes and stores query as the principal's most recent
// search, evicting the oldest entry once MaxKeywords is exceeded and
// moving a repeated query back to the front, per track_search.
func (r *Recorder) Record(ctx context.Context, principalID int64, query string) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if len(normalized) < 2 || len(normalized) > 64 {
		return
	}

	key := cachestore.Keys.SearchHistory(principalID)
	var history []string
	r.cache.Get(ctx, key, &history)

	deduped := make([]string, 0, len(history)+1)
	deduped = append(deduped, normalized)
	for _, q := range history {
		if q != normalized {
			deduped = append(deduped, q)
		}
	}
	if len(deduped) > MaxKeywords {
		deduped = deduped[:MaxKeywords]
	}
	r.cache.Set(ctx, key, deduped, cachestore.TTL.SearchHistory)

	r.volume.Increment(normalized)
	r.distinct.Add(normalized, strconv.FormatInt(principalID, 10))
}

// TrendingQueries returns up to limit queries searched most in the trailing
// trendingWindow, ranked by search volume and restricted to queries run by
// at least trendingMinDistinctSearchers distinct principals so one
// principal repeating a query can't put it on the list alone. This signal
// is process-local: a restart or a second instance starts it from empty.
func (r *Recorder) TrendingQueries(limit int) []string {
	type scored struct {
		query  string
		volume int64
	}

	candidates := make([]scored, 0, r.volume.Len())
	for _, q := range r.volume.Keys() {
		if r.distinct.CountUnique(q) < trendingMinDistinctSearchers {
			continue
		}
		if v := r.volume.Count(q); v > 0 {
			candidates = append(candidates, scored{query: q, volume: v})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].volume != candidates[j].volume {
			return candidates[i].volume > candidates[j].volume
		}
		return candidates[i].query < candidates[j].query
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.query
	}
	return out
}

// RecentQueries returns the principal's most recent searches, most recent
// first, per get_most_searched_keywords.
func (r *Recorder) RecentQueries(ctx context.Context, principalID int64) []string {
	var history []string
	r.cache.Get(ctx, cachestore.Keys.SearchHistory(principalID), &history)
	return history
}

// Clear removes a principal's search history, per clear_search_history.
func (r *Recorder) Clear(ctx context.Context, principalID int64) {
	r.cache.Delete(ctx, cachestore.Keys.SearchHistory(principalID))
}
