package maintenance

import (
	"context"
	"time"

	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/cachestore"
	"github.com/filevault/botcore/internal/models"
)

// mainCollections mirrors get_database_storage_stats' main_collections list.
var mainCollections = []string{"media_files", "users", "indexed_channels", "connections", "filters"}

// UserStats mirrors UserRepository.get_user_stats' facet output.
type UserStats struct {
	Total       int64
	Premium     int64
	Banned      int64
	ActiveToday int64
}

// CollectionStorageStats mirrors one entry of get_database_storage_stats'
// per-collection breakdown.
type CollectionStorageStats struct {
	Count         int64
	Size          int64
	StorageSize   int64
	TotalIndexSize int64
}

// StorageStats mirrors get_database_storage_stats' top-level shape.
type StorageStats struct {
	DatabaseSize int64
	StorageSize  int64
	IndexSize    int64
	Collections  map[string]CollectionStorageStats
	AvgObjSize   int64
	ObjectsCount int64
}

// SystemStats mirrors get_system_stats' combined payload.
type SystemStats struct {
	Users   UserStats
	Files   models.FileStats
	Storage StorageStats
}

// GetSystemStats assembles user, file, and database storage statistics.
func (e *Engine) GetSystemStats(ctx context.Context) (SystemStats, error) {
	var stats SystemStats

	userStats, err := e.GetUserStats(ctx)
	if err != nil {
		return stats, err
	}
	stats.Users = userStats

	fileStats, err := e.index.GetFileStats(ctx)
	if err != nil {
		return stats, err
	}
	stats.Files = fileStats

	stats.Storage = e.getDatabaseStorageStats(ctx)
	return stats, nil
}

// GetUserStats aggregates total/premium/banned/active-today principal
// counts via a single $facet pipeline, cache-first.
func (e *Engine) GetUserStats(ctx context.Context) (UserStats, error) {
	var cached UserStats
	if e.cache.Get(ctx, cachestore.Keys.UserStats(), &cached) {
		return cached, nil
	}

	todayStart := time.Date(e.clock().UTC().Year(), e.clock().UTC().Month(), e.clock().UTC().Day(), 0, 0, 0, 0, time.UTC)
	tomorrowStart := todayStart.Add(24 * time.Hour)
	pipeline := []map[string]any{
		{"$facet": map[string]any{
			"total":   []map[string]any{{"$count": "count"}},
			"premium": []map[string]any{{"$match": map[string]any{"is_premium": true}}, {"$count": "count"}},
			"banned":  []map[string]any{{"$match": map[string]any{"status": string(models.PrincipalBanned)}}, {"$count": "count"}},
			"active_today": []map[string]any{
				{"$match": map[string]any{"last_retrieval_date": map[string]any{"$gte": todayStart, "$lt": tomorrowStart}}},
				{"$count": "count"},
			},
		}},
	}

	var facets []struct {
		Total []struct {
			Count int64 `bson:"count" json:"count"`
		} `bson:"total" json:"total"`
		Premium []struct {
			Count int64 `bson:"count" json:"count"`
		} `bson:"premium" json:"premium"`
		Banned []struct {
			Count int64 `bson:"count" json:"count"`
		} `bson:"banned" json:"banned"`
		ActiveToday []struct {
			Count int64 `bson:"count" json:"count"`
		} `bson:"active_today" json:"active_today"`
	}
	if err := e.principals.Coll.Aggregate(ctx, pipeline, &facets); err != nil {
		return UserStats{}, apperr.Wrap(apperr.DatabaseError, "aggregate user stats", err)
	}

	var stats UserStats
	if len(facets) > 0 {
		f := facets[0]
		if len(f.Total) > 0 {
			stats.Total = f.Total[0].Count
		}
		if len(f.Premium) > 0 {
			stats.Premium = f.Premium[0].Count
		}
		if len(f.Banned) > 0 {
			stats.Banned = f.Banned[0].Count
		}
		if len(f.ActiveToday) > 0 {
			stats.ActiveToday = f.ActiveToday[0].Count
		}
	}

	e.cache.Set(ctx, cachestore.Keys.UserStats(), stats, cachestore.TTL.UserStats)
	return stats, nil
}

// getDatabaseStorageStats reads dbStats plus collStats for each of
// mainCollections, degrading to zeroed entries per collection on error
// rather than failing the whole call, matching the original's per-
// collection try/except.
func (e *Engine) getDatabaseStorageStats(ctx context.Context) StorageStats {
	stats := StorageStats{Collections: make(map[string]CollectionStorageStats, len(mainCollections))}

	dbStats, err := e.db.Stats(ctx)
	if err != nil {
		return stats
	}
	stats.DatabaseSize = dbStats.DataSize
	stats.StorageSize = dbStats.StorageSize
	stats.IndexSize = dbStats.IndexSize

	for _, name := range mainCollections {
		collStats, err := e.db.CollectionStats(ctx, name)
		if err != nil {
			stats.Collections[name] = CollectionStorageStats{}
			continue
		}
		stats.Collections[name] = CollectionStorageStats{
			Count:          collStats.Count,
			Size:           collStats.Size,
			StorageSize:    collStats.StorageSize,
			TotalIndexSize: 0,
		}
		stats.AvgObjSize = collStats.AvgObjSize
	}
	stats.ObjectsCount = sumCounts(stats.Collections)
	return stats
}

func sumCounts(collections map[string]CollectionStorageStats) int64 {
	var total int64
	for _, c := range collections {
		total += c.Count
	}
	return total
}
