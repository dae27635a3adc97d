package store

import "context"

// Repository is a generic CRUD helper over a single Collection, mirroring
// the original BaseRepository[T]'s find_by_id/create/update/delete/count
// surface. Domain-specific repositories (Principal, MediaFile, ...) embed
// this for the mechanical parts and add their own cached, keyed lookups on
// top since caching semantics differ per entity (TTL, invalidation targets).
type Repository[T any] struct {
	Coll Collection
}

// NewRepository builds a Repository bound to coll.
func NewRepository[T any](coll Collection) Repository[T] {
	return Repository[T]{Coll: coll}
}

// FindByID fetches the document with the given _id into a zero-value T.
func (r Repository[T]) FindByID(ctx context.Context, id any) (*T, bool, error) {
	var out T
	found, err := r.Coll.FindOne(ctx, map[string]any{"_id": id}, &out)
	if err != nil || !found {
		return nil, found, err
	}
	return &out, true, nil
}

// FindMany fetches every document matching filter into a slice of T.
func (r Repository[T]) FindMany(ctx context.Context, filter map[string]any, opts FindOptions) ([]T, error) {
	var out []T
	if err := r.Coll.Find(ctx, filter, opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts entity. Returns ErrDuplicateKey via store.ErrDuplicateKey
// rather than panicking, per the explicit-result-shape re-architecture.
func (r Repository[T]) Create(ctx context.Context, entity any) error {
	return r.Coll.InsertOne(ctx, entity)
}

// Update applies a $set of fields to the document with the given _id.
func (r Repository[T]) Update(ctx context.Context, id any, set map[string]any, upsert bool) (bool, error) {
	matched, modified, upsertedID, err := r.Coll.UpdateOne(ctx, map[string]any{"_id": id}, set, upsert)
	if err != nil {
		return false, err
	}
	return modified > 0 || (upsert && upsertedID != nil) || matched > 0, nil
}

// Delete removes the document with the given _id.
func (r Repository[T]) Delete(ctx context.Context, id any) (bool, error) {
	n, err := r.Coll.DeleteOne(ctx, map[string]any{"_id": id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count counts documents matching filter.
func (r Repository[T]) Count(ctx context.Context, filter map[string]any) (int64, error) {
	return r.Coll.CountDocuments(ctx, filter)
}
