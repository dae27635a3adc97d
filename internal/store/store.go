// Package store defines the document store collaborator interface consumed
// by every repository in this bot, plus a mongo-driver implementation.
// It is the Go analog of the original bot's BaseRepository/AggregationMixin
// pair: find_one/find/insert_one/update_one($set,upsert)/delete_one/
// delete_many/count_documents/bulk_write/aggregate($facet)/create_indexes.
package store

import "context"

// SortSpec is one (field, direction) pair; direction is +1 or -1.
type SortSpec struct {
	Field     string
	Ascending bool
}

// FindOptions configures Collection.Find.
type FindOptions struct {
	Skip  int64
	Limit int64
	Sort  []SortSpec
}

// IndexSpec describes one index to create via Collection.CreateIndexes.
type IndexSpec struct {
	Name   string
	Keys   []SortSpec
	Unique bool
	Sparse bool
	Text   bool // text index over Keys' fields
}

// WriteOp is one operation in an unordered bulk write (bulk_write(ordered=false)).
type WriteOp struct {
	DeleteOne *DeleteOneOp
}

// DeleteOneOp deletes the single document matching Filter.
type DeleteOneOp struct {
	Filter map[string]any
}

// BulkResult summarizes the outcome of an unordered bulk write.
type BulkResult struct {
	DeletedCount int64
	Errors       []error
}

// Collection is the minimal document-store surface every repository needs.
// Implementations never panic; transient errors are returned, not retried
// internally (retry policy lives in the caller per spec.md's
// exactly-once-effect requirement on writes).
type Collection interface {
	FindOne(ctx context.Context, filter map[string]any, out any) (bool, error)
	Find(ctx context.Context, filter map[string]any, opts FindOptions, out any) error
	InsertOne(ctx context.Context, doc any) error
	UpdateOne(ctx context.Context, filter map[string]any, set map[string]any, upsert bool) (matched, modified int64, upsertedID any, err error)
	DeleteOne(ctx context.Context, filter map[string]any) (deleted int64, err error)
	DeleteMany(ctx context.Context, filter map[string]any) (deleted int64, err error)
	CountDocuments(ctx context.Context, filter map[string]any) (int64, error)
	BulkWrite(ctx context.Context, ops []WriteOp) (BulkResult, error)
	Aggregate(ctx context.Context, pipeline []map[string]any, out any) error
	CreateIndexes(ctx context.Context, specs []IndexSpec) error
	Distinct(ctx context.Context, field string, filter map[string]any, out any) error
}

// Database hands out named collections and exposes store-wide stats,
// grounded on maintenance.py's get_database_storage_stats (dbStats/collStats).
type Database interface {
	Collection(name string) Collection
	Stats(ctx context.Context) (DBStats, error)
	CollectionStats(ctx context.Context, name string) (CollStats, error)
	Close(ctx context.Context) error
}

// DBStats mirrors the fields of MongoDB's dbStats command this repo reads.
type DBStats struct {
	Collections int64
	DataSize    int64
	StorageSize int64
	Indexes     int64
	IndexSize   int64
}

// CollStats mirrors the fields of MongoDB's collStats command this repo reads.
type CollStats struct {
	Count      int64
	Size       int64
	AvgObjSize int64
	StorageSize int64
}

// Asc builds an ascending SortSpec.
func Asc(field string) SortSpec { return SortSpec{Field: field, Ascending: true} }

// Desc builds a descending SortSpec.
func Desc(field string) SortSpec { return SortSpec{Field: field, Ascending: false} }
