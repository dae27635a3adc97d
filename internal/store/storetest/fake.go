// Package storetest provides an in-memory store.Collection test double.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/filevault/botcore/internal/store"
)

// Collection is an in-memory store.Collection backed by BSON round-
// tripping (the same encoding the real mongo-driver Collection uses),
// which keeps its field-naming and type semantics identical to a real
// document store: every domain struct here carries bson tags, not json
// tags, and no shared pointers leak between caller and stored document.
type Collection struct {
	mu   sync.Mutex
	docs map[string]map[string]any
}

// New builds an empty Collection.
func New() *Collection {
	return &Collection{docs: make(map[string]map[string]any)}
}

func toDoc(v any) map[string]any {
	b, err := bson.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	bson.Unmarshal(b, &m)
	return m
}

func idOf(doc map[string]any) string {
	return fmt.Sprint(doc["_id"])
}

// viaBSON round-trips src (typically a slice or bare value with no
// document shape of its own) through BSON into dst, the same way a real
// mongo cursor decodes a result array into a caller's slice.
func viaBSON(src, dst any) error {
	data, err := bson.Marshal(bson.M{"v": src})
	if err != nil {
		return err
	}
	rv, err := bson.Raw(data).LookupErr("v")
	if err != nil {
		return err
	}
	return rv.Unmarshal(dst)
}

func matches(doc map[string]any, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if m, isMap := want.(map[string]any); isMap && isOperatorMap(m) {
			if !matchesOperators(got, ok, m) {
				return false
			}
			continue
		}
		if !ok || !equalLoose(got, want) {
			return false
		}
	}
	return true
}

func isOperatorMap(m map[string]any) bool {
	for k := range m {
		if len(k) > 0 && k[0] == '$' {
			return true
		}
	}
	return false
}

func matchesOperators(got any, ok bool, ops map[string]any) bool {
	for op, arg := range ops {
		switch op {
		case "$in":
			found := false
			for _, candidate := range toSlice(arg) {
				if equalLoose(got, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case "$ne":
			if equalLoose(got, arg) {
				return false
			}
		case "$gt", "$gte", "$lt", "$lte":
			if !ok {
				return false
			}
			cmp, comparable := compareLoose(got, arg)
			if !comparable {
				return false
			}
			switch op {
			case "$gt":
				if cmp <= 0 {
					return false
				}
			case "$gte":
				if cmp < 0 {
					return false
				}
			case "$lt":
				if cmp >= 0 {
					return false
				}
			case "$lte":
				if cmp > 0 {
					return false
				}
			}
		}
	}
	return true
}

// compareLoose orders two loosely-typed values the way Mongo's query
// operators compare dates and numbers. Returns comparable=false for
// types it cannot order (e.g. comparing against a missing field).
func compareLoose(a, b any) (cmp int, comparable bool) {
	if at, ok := a.(time.Time); ok {
		bt, ok := asTime(b)
		if !ok {
			return 0, false
		}
		switch {
		case at.Before(bt):
			return -1, true
		case at.After(bt):
			return 1, true
		default:
			return 0, true
		}
	}
	if bt, ok := b.(time.Time); ok {
		at, ok := asTime(a)
		if !ok {
			return 0, false
		}
		switch {
		case at.Before(bt):
			return -1, true
		case at.After(bt):
			return 1, true
		default:
			return 0, true
		}
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	default:
		return time.Time{}, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func toSlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

func equalLoose(a, b any) bool {
	ab, _ := bson.Marshal(bson.M{"v": a})
	bb, _ := bson.Marshal(bson.M{"v": b})
	return string(ab) == string(bb)
}

func (c *Collection) FindOne(ctx context.Context, filter map[string]any, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if matches(doc, filter) {
			return true, decodeInto(doc, out)
		}
	}
	return false, nil
}

func (c *Collection) Find(ctx context.Context, filter map[string]any, opts store.FindOptions, out any) error {
	c.mu.Lock()
	var matched []map[string]any
	for _, doc := range c.docs {
		if matches(doc, filter) {
			matched = append(matched, doc)
		}
	}
	c.mu.Unlock()

	for _, s := range opts.Sort {
		field := s.Field
		asc := s.Ascending
		sort.SliceStable(matched, func(i, j int) bool {
			less := toComparable(matched[i][field]) < toComparable(matched[j][field])
			if asc {
				return less
			}
			return !less && toComparable(matched[i][field]) != toComparable(matched[j][field])
		})
	}

	if opts.Skip > 0 && int(opts.Skip) < len(matched) {
		matched = matched[opts.Skip:]
	} else if int(opts.Skip) >= len(matched) {
		matched = nil
	}
	if opts.Limit > 0 && int(opts.Limit) < len(matched) {
		matched = matched[:opts.Limit]
	}

	return viaBSON(matched, out)
}

func toComparable(v any) string {
	b, _ := bson.Marshal(bson.M{"v": v})
	return string(b)
}

func (c *Collection) InsertOne(ctx context.Context, doc any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := toDoc(doc)
	id := idOf(d)
	if id == "" {
		return nil
	}
	if _, exists := c.docs[id]; exists {
		return store.ErrDuplicateKey
	}
	c.docs[id] = d
	return nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter map[string]any, set map[string]any, upsert bool) (int64, int64, any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, doc := range c.docs {
		if matches(doc, filter) {
			for k, v := range set {
				doc[k] = toDoc(map[string]any{"v": v})["v"]
			}
			c.docs[id] = doc
			return 1, 1, nil, nil
		}
	}
	if upsert {
		d := map[string]any{}
		for k, v := range filter {
			d[k] = v
		}
		for k, v := range set {
			d[k] = v
		}
		id := idOf(d)
		c.docs[id] = toDoc(d)
		return 0, 0, id, nil
	}
	return 0, 0, nil, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter map[string]any) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, doc := range c.docs {
		if matches(doc, filter) {
			delete(c.docs, id)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *Collection) DeleteMany(ctx context.Context, filter map[string]any) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for id, doc := range c.docs {
		if matches(doc, filter) {
			delete(c.docs, id)
			n++
		}
	}
	return n, nil
}

func (c *Collection) CountDocuments(ctx context.Context, filter map[string]any) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, doc := range c.docs {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (c *Collection) BulkWrite(ctx context.Context, ops []store.WriteOp) (store.BulkResult, error) {
	var result store.BulkResult
	for _, op := range ops {
		if op.DeleteOne != nil {
			n, err := c.DeleteOne(ctx, op.DeleteOne.Filter)
			if err != nil {
				result.Errors = append(result.Errors, err)
				continue
			}
			result.DeletedCount += n
		}
	}
	return result, nil
}

// Aggregate interprets the single $facet pipeline shape every repository
// in this bot issues: one stage, {"$facet": {name: [stages...]}}, where
// each named sub-pipeline is $match/$group/$count stages over the full
// document set. It is a generic-enough interpreter to serve every $facet
// query in the repo rather than hardcoding one caller's shape.
func (c *Collection) Aggregate(ctx context.Context, pipeline []map[string]any, out any) error {
	c.mu.Lock()
	docs := make([]map[string]any, 0, len(c.docs))
	for _, d := range c.docs {
		docs = append(docs, d)
	}
	c.mu.Unlock()

	if len(pipeline) == 0 {
		return viaBSON([]map[string]any{}, out)
	}
	facetStage, _ := pipeline[0]["$facet"].(map[string]any)

	result := map[string]any{}
	for name, sub := range facetStage {
		stages, _ := sub.([]map[string]any)
		result[name] = runFacetPipeline(docs, stages)
	}

	return viaBSON([]map[string]any{result}, out)
}

func runFacetPipeline(docs []map[string]any, stages []map[string]any) []map[string]any {
	for _, stage := range stages {
		if match, ok := stage["$match"].(map[string]any); ok {
			filtered := make([]map[string]any, 0, len(docs))
			for _, d := range docs {
				if matches(d, match) {
					filtered = append(filtered, d)
				}
			}
			docs = filtered
			continue
		}
		if countField, ok := stage["$count"].(string); ok {
			if len(docs) == 0 {
				return nil
			}
			return []map[string]any{{countField: len(docs)}}
		}
		if group, ok := stage["$group"].(map[string]any); ok {
			return runGroupStage(docs, group)
		}
	}
	out := make([]map[string]any, len(docs))
	copy(out, docs)
	return out
}

func runGroupStage(docs []map[string]any, group map[string]any) []map[string]any {
	idSpec := group["_id"]
	buckets := map[string][]map[string]any{}
	idValues := map[string]any{}
	for _, d := range docs {
		key, val := groupKey(d, idSpec)
		buckets[key] = append(buckets[key], d)
		idValues[key] = val
	}

	var out []map[string]any
	for key, bucketDocs := range buckets {
		row := map[string]any{"_id": idValues[key]}
		for field, accSpec := range group {
			if field == "_id" {
				continue
			}
			accMap, _ := accSpec.(map[string]any)
			sumRef, hasSum := accMap["$sum"]
			if !hasSum {
				continue
			}
			row[field] = sumAccumulator(bucketDocs, sumRef)
		}
		out = append(out, row)
	}
	return out
}

func groupKey(d map[string]any, idSpec any) (string, any) {
	if idSpec == nil {
		return "", nil
	}
	ref, ok := idSpec.(string)
	if !ok || len(ref) == 0 || ref[0] != '$' {
		return toComparable(idSpec), idSpec
	}
	v := d[ref[1:]]
	return toComparable(v), v
}

func sumAccumulator(docs []map[string]any, ref any) int64 {
	var total int64
	field, isField := ref.(string)
	isFieldRef := isField && len(field) > 0 && field[0] == '$'
	for _, d := range docs {
		if isFieldRef {
			total += toInt64(d[field[1:]])
			continue
		}
		total += toInt64(ref)
	}
	return total
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

func (c *Collection) CreateIndexes(ctx context.Context, specs []store.IndexSpec) error { return nil }

func (c *Collection) Distinct(ctx context.Context, field string, filter map[string]any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := map[string]bool{}
	var values []any
	for _, doc := range c.docs {
		if !matches(doc, filter) {
			continue
		}
		v := doc[field]
		key := toComparable(v)
		if !seen[key] {
			seen[key] = true
			values = append(values, v)
		}
	}
	return viaBSON(values, out)
}

// Database is an in-memory store.Database test double: it hands out
// storetest Collections by name and reports whatever DBStats/CollStats
// were preloaded via SetStats/SetCollectionStats, mirroring a stub of
// MongoDB's dbStats/collStats commands.
type Database struct {
	mu          sync.Mutex
	collections map[string]*Collection
	dbStats     store.DBStats
	collStats   map[string]store.CollStats
}

// NewDatabase builds an empty Database fake.
func NewDatabase() *Database {
	return &Database{
		collections: make(map[string]*Collection),
		collStats:   make(map[string]store.CollStats),
	}
}

// Collection returns (creating if needed) the named Collection.
func (d *Database) Collection(name string) store.Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.collections[name]
	if !ok {
		c = New()
		d.collections[name] = c
	}
	return c
}

// SetStats configures the value Stats returns.
func (d *Database) SetStats(s store.DBStats) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dbStats = s
}

// SetCollectionStats configures the value CollectionStats(name) returns.
func (d *Database) SetCollectionStats(name string, s store.CollStats) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collStats[name] = s
}

func (d *Database) Stats(ctx context.Context) (store.DBStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dbStats, nil
}

func (d *Database) CollectionStats(ctx context.Context, name string) (store.CollStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.collStats[name]
	if !ok {
		return store.CollStats{}, fmt.Errorf("storetest: no stats configured for collection %q", name)
	}
	return s, nil
}

func (d *Database) Close(ctx context.Context) error { return nil }

func decodeInto(doc map[string]any, out any) error {
	b, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(b, out)
}
