package mediaindex

import (
	"context"
	"time"

	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/cache"
	"github.com/filevault/botcore/internal/cachestore"
	"github.com/filevault/botcore/internal/cachestore/invalidate"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/store"
)

// recentDuplicatesCapacity/TTL bound the in-process dedup fast-path: an
// ingestion burst that re-posts files already seen this process (a channel
// re-broadcasting, a batch retried after a transient error) shouldn't pay a
// database round trip per file just to learn what it already knows.
const (
	recentDuplicatesCapacity = 5000
	recentDuplicatesTTL      = 10 * time.Minute

	// hotFilesCapacity/TTL bound an in-process L1 ahead of the cachestore
	// lookup in FindFile. File popularity is heavily skewed — a handful of
	// files account for most retrieval requests — so an LFU eviction policy
	// keeps exactly those files resident without a Redis round trip.
	hotFilesCapacity = 2000
)

// Index is the media file catalog.
type Index struct {
	repo  store.Repository[models.MediaFile]
	cache cachestore.Store
	invl  *invalidate.Invalidator
	clock func() time.Time

	// recent remembers file_unique_ids confirmed to exist in the database,
	// so BatchCheckDuplicates can skip querying for ids it already knows
	// about. Entries are only ever added on a confirmed-existing id and
	// removed on deletion, so a cache miss just falls through to the
	// database — it can never hide a real duplicate.
	recent *cache.LRUCache

	// hot is an in-process L1 cache of recently-popular files, checked
	// before the shared cachestore. A miss here always falls through to
	// cachestore and then the database, so a cold hot-cache never hides a
	// real file. Built through the Cacher factory rather than a concrete
	// LFUCache so the eviction strategy stays a one-line config change.
	hot cache.Cacher
}

// New builds an Index over coll.
func New(coll store.Collection, cache cachestore.Store) *Index {
	return &Index{
		repo:   store.NewRepository[models.MediaFile](coll),
		cache:  cache,
		invl:   invalidate.New(cache),
		clock:  time.Now,
		recent: newRecentDuplicatesCache(),
		hot:    newHotFilesCache(),
	}
}

func newRecentDuplicatesCache() *cache.LRUCache {
	return cache.NewLRUCache(recentDuplicatesCapacity, recentDuplicatesTTL)
}

func newHotFilesCache() cache.Cacher {
	return cache.NewCacher(cache.CacheConfig{
		Type:     cache.CacheTypeLFU,
		TTL:      cachestore.TTL.MediaFile,
		Capacity: hotFilesCapacity,
	})
}

// FindFile looks up a file by file_unique_id, checking the local hot-file
// cache, then cachestore, then the database, in that order.
func (ix *Index) FindFile(ctx context.Context, fileUniqueID string) (*models.MediaFile, error) {
	if v, ok := ix.hot.Get(fileUniqueID); ok {
		f := v.(models.MediaFile)
		return &f, nil
	}

	var cached models.MediaFile
	cacheKey := cachestore.Keys.Media(fileUniqueID)
	if ix.cache.Get(ctx, cacheKey, &cached) {
		ix.hot.Set(fileUniqueID, cached)
		return &cached, nil
	}

	files, err := ix.repo.FindMany(ctx, map[string]any{"file_unique_id": fileUniqueID}, store.FindOptions{Limit: 1})
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "find file", err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	f := files[0]
	ix.cache.Set(ctx, cacheKey, f, cachestore.TTL.MediaFile)
	ix.hot.Set(fileUniqueID, f)
	return &f, nil
}

// SaveStatus mirrors save_media's status_code.
type SaveStatus = models.SaveStatus

// SaveMedia inserts media unless a file sharing its file_unique_id already
// exists, per save_media's duplicate-first-then-insert sequencing.
func (ix *Index) SaveMedia(ctx context.Context, media models.MediaFile) (models.SaveStatus, *models.MediaFile, error) {
	existing, err := ix.FindFile(ctx, media.FileUniqueID)
	if err != nil {
		return models.SaveStatusError, nil, err
	}
	if existing != nil {
		ix.recent.Add(media.FileUniqueID, ix.clock())
		return models.SaveStatusDuplicate, existing, nil
	}

	now := ix.clock()
	if media.IndexedAt.IsZero() {
		media.IndexedAt = now
	}
	media.UpdatedAt = now

	if err := ix.repo.Create(ctx, media); err != nil {
		if err == store.ErrDuplicateKey {
			existing, ferr := ix.FindFile(ctx, media.FileUniqueID)
			if ferr != nil {
				return models.SaveStatusError, nil, ferr
			}
			ix.recent.Add(media.FileUniqueID, ix.clock())
			return models.SaveStatusDuplicate, existing, nil
		}
		return models.SaveStatusError, nil, apperr.Wrap(apperr.DatabaseError, "save media", err)
	}
	ix.recent.Add(media.FileUniqueID, now)
	return models.SaveStatusSaved, nil, nil
}

// BatchCheckDuplicates partitions uniqueIDs into those already indexed.
// Ids this process has already confirmed as duplicates are served from the
// in-process recent-duplicates cache without touching the database; the
// rest are looked up in one batch query, same as before.
func (ix *Index) BatchCheckDuplicates(ctx context.Context, uniqueIDs []string) (map[string]bool, error) {
	dup := make(map[string]bool, len(uniqueIDs))
	if len(uniqueIDs) == 0 {
		return dup, nil
	}

	ids := make([]any, 0, len(uniqueIDs))
	for _, id := range uniqueIDs {
		if ix.recent.Contains(id) {
			dup[id] = true
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return dup, nil
	}

	files, err := ix.repo.FindMany(ctx, map[string]any{"file_unique_id": map[string]any{"$in": ids}}, store.FindOptions{})
	if err != nil {
		return nil, apperr.Wrap(apperr.DatabaseError, "batch check duplicates", err)
	}
	now := ix.clock()
	for _, f := range files {
		dup[f.FileUniqueID] = true
		ix.recent.Add(f.FileUniqueID, now)
	}
	return dup, nil
}

// BulkSaveResult summarizes a BulkSaveMedia call.
type BulkSaveResult struct {
	Saved     int
	Duplicate int
	Errored   int
}

// BulkSaveMedia inserts every file in media not already present, checking
// duplicates as one batch query instead of one round trip per file.
func (ix *Index) BulkSaveMedia(ctx context.Context, media []models.MediaFile) (BulkSaveResult, error) {
	var result BulkSaveResult
	if len(media) == 0 {
		return result, nil
	}

	ids := make([]string, len(media))
	for i, m := range media {
		ids[i] = m.FileUniqueID
	}
	dup, err := ix.BatchCheckDuplicates(ctx, ids)
	if err != nil {
		return result, err
	}

	now := ix.clock()
	toInsert := make([]models.MediaFile, 0, len(media))
	seen := make(map[string]bool, len(media))
	for _, m := range media {
		if dup[m.FileUniqueID] || seen[m.FileUniqueID] {
			result.Duplicate++
			continue
		}
		seen[m.FileUniqueID] = true
		if m.IndexedAt.IsZero() {
			m.IndexedAt = now
		}
		m.UpdatedAt = now
		toInsert = append(toInsert, m)
	}

	for _, m := range toInsert {
		if err := ix.repo.Create(ctx, m); err != nil {
			if err == store.ErrDuplicateKey {
				result.Duplicate++
				ix.recent.Add(m.FileUniqueID, now)
				continue
			}
			result.Errored++
			continue
		}
		result.Saved++
		ix.recent.Add(m.FileUniqueID, now)
	}
	return result, nil
}

// SearchResult is the outcome of SearchFiles.
type SearchResult struct {
	Files      []models.MediaFile
	NextOffset int
	Total      int64
}

// SearchFiles runs a keyword search against file_name (and caption, when
// useCaption) with cache-first reads keyed on the exact query parameters.
func (ix *Index) SearchFiles(ctx context.Context, query string, fileType models.FileType, offset, limit int, useCaption bool) (SearchResult, error) {
	normalized := normalizeQuery(query)
	cacheKey := cachestore.Keys.SearchResults(normalized, string(fileType), offset, limit, useCaption)

	var cached SearchResult
	if ix.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	filter := buildSearchFilter(normalized, string(fileType), useCaption)

	total, err := ix.repo.Count(ctx, filter)
	if err != nil {
		return SearchResult{}, apperr.Wrap(apperr.DatabaseError, "count search results", err)
	}

	files, err := ix.repo.FindMany(ctx, filter, store.FindOptions{
		Skip:  int64(offset),
		Limit: int64(limit),
		Sort:  []store.SortSpec{{Field: "indexed_at", Ascending: false}},
	})
	if err != nil {
		return SearchResult{}, apperr.Wrap(apperr.DatabaseError, "search files", err)
	}

	nextOffset := 0
	if int64(offset+limit) < total {
		nextOffset = offset + limit
	}

	result := SearchResult{Files: files, NextOffset: nextOffset, Total: total}
	ix.cache.Set(ctx, cacheKey, result, cachestore.TTL.SearchResults)
	return result, nil
}

// DeleteFilesByKeyword deletes every file whose name or caption matches
// keyword and invalidates each one's cache entries.
func (ix *Index) DeleteFilesByKeyword(ctx context.Context, keyword string) (int, error) {
	filter := buildSearchFilter(normalizeQuery(keyword), "", true)
	files, err := ix.repo.FindMany(ctx, filter, store.FindOptions{})
	if err != nil {
		return 0, apperr.Wrap(apperr.DatabaseError, "find files by keyword", err)
	}
	if len(files) == 0 {
		return 0, nil
	}

	ops := make([]store.WriteOp, len(files))
	for i, f := range files {
		ops[i] = store.WriteOp{DeleteOne: &store.DeleteOneOp{Filter: map[string]any{"file_unique_id": f.FileUniqueID}}}
	}
	if _, err := ix.repo.Coll.BulkWrite(ctx, ops); err != nil {
		return 0, apperr.Wrap(apperr.DatabaseError, "bulk delete files", err)
	}

	for i := range files {
		ix.invl.File(ctx, &files[i])
		ix.recent.Remove(files[i].FileUniqueID)
		ix.hot.Delete(files[i].FileUniqueID)
	}
	return len(files), nil
}

// DeleteFile removes a single file by file_unique_id and invalidates its
// cache entries, grounded on DeleteHandler._delete_file. Returns false
// when no matching file existed.
func (ix *Index) DeleteFile(ctx context.Context, fileUniqueID string) (bool, error) {
	f, err := ix.FindFile(ctx, fileUniqueID)
	if err != nil {
		return false, err
	}
	if f == nil {
		return false, nil
	}
	n, err := ix.repo.Coll.DeleteOne(ctx, map[string]any{"file_unique_id": fileUniqueID})
	if err != nil {
		return false, apperr.Wrap(apperr.DatabaseError, "delete file", err)
	}
	if n == 0 {
		return false, nil
	}
	ix.invl.File(ctx, f)
	ix.recent.Remove(fileUniqueID)
	ix.hot.Delete(fileUniqueID)
	return true, nil
}

// GetFileStats aggregates total file count, total size, and per-type
// breakdown via a single $facet pipeline, cache-first.
func (ix *Index) GetFileStats(ctx context.Context) (models.FileStats, error) {
	var cached models.FileStats
	cacheKey := cachestore.Keys.FileStats()
	if ix.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	pipeline := []map[string]any{
		{"$facet": map[string]any{
			"total": []map[string]any{{"$count": "count"}},
			"by_type": []map[string]any{
				{"$group": map[string]any{
					"_id":  "$file_type",
					"count": map[string]any{"$sum": 1},
					"size":  map[string]any{"$sum": "$file_size"},
				}},
			},
			"total_size": []map[string]any{
				{"$group": map[string]any{
					"_id":  nil,
					"size": map[string]any{"$sum": "$file_size"},
				}},
			},
		}},
	}

	var facets []struct {
		Total []struct {
			Count int64 `bson:"count" json:"count"`
		} `bson:"total" json:"total"`
		ByType []struct {
			ID    string `bson:"_id" json:"_id"`
			Count int64  `bson:"count" json:"count"`
			Size  int64  `bson:"size" json:"size"`
		} `bson:"by_type" json:"by_type"`
		TotalSize []struct {
			Size int64 `bson:"size" json:"size"`
		} `bson:"total_size" json:"total_size"`
	}
	if err := ix.repo.Coll.Aggregate(ctx, pipeline, &facets); err != nil {
		return models.FileStats{}, apperr.Wrap(apperr.DatabaseError, "aggregate file stats", err)
	}

	stats := models.FileStats{ByType: map[models.FileType]models.TypeStat{}}
	if len(facets) > 0 {
		f := facets[0]
		if len(f.Total) > 0 {
			stats.TotalFiles = f.Total[0].Count
		}
		if len(f.TotalSize) > 0 {
			stats.TotalSize = f.TotalSize[0].Size
		}
		for _, t := range f.ByType {
			stats.ByType[models.FileType(t.ID)] = models.TypeStat{Count: t.Count, Size: t.Size}
		}
	}

	ix.cache.Set(ctx, cacheKey, stats, cachestore.TTL.FileStats)
	return stats, nil
}

// EnsureIndexes creates every index the search and dedup paths rely on,
// grounded on MediaRepository.create_indexes.
func (ix *Index) EnsureIndexes(ctx context.Context) error {
	specs := []store.IndexSpec{
		{Name: "text_search", Keys: []store.SortSpec{{Field: "file_name"}, {Field: "caption"}}, Text: true},
		{Name: "type_date", Keys: []store.SortSpec{{Field: "file_type", Ascending: true}, {Field: "indexed_at", Ascending: false}}},
		{Name: "size_index", Keys: []store.SortSpec{{Field: "file_size", Ascending: true}}},
		{Name: "date_index", Keys: []store.SortSpec{{Field: "indexed_at", Ascending: false}}},
		{Name: "file_ref_index", Keys: []store.SortSpec{{Field: "file_ref", Ascending: true}}, Unique: true, Sparse: true},
		{Name: "type_name_index", Keys: []store.SortSpec{{Field: "file_type", Ascending: true}, {Field: "file_name", Ascending: true}}},
		{Name: "unique_id_index", Keys: []store.SortSpec{{Field: "file_unique_id", Ascending: true}}, Unique: true},
	}
	if err := ix.repo.Coll.CreateIndexes(ctx, specs); err != nil {
		return apperr.Wrap(apperr.DatabaseError, "create media indexes", err)
	}
	return nil
}
