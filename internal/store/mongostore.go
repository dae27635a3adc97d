package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoDatabase is the mongo-driver backed Database implementation.
type MongoDatabase struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and pings the target database, returning a ready Database.
func Connect(ctx context.Context, uri, dbName string) (*MongoDatabase, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoDatabase{client: client, db: client.Database(dbName)}, nil
}

func (d *MongoDatabase) Collection(name string) Collection {
	return &mongoCollection{coll: d.db.Collection(name)}
}

func (d *MongoDatabase) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *MongoDatabase) Stats(ctx context.Context) (DBStats, error) {
	var raw bson.M
	if err := d.db.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&raw); err != nil {
		return DBStats{}, fmt.Errorf("dbStats: %w", err)
	}
	return DBStats{
		Collections: toInt64(raw["collections"]),
		DataSize:    toInt64(raw["dataSize"]),
		StorageSize: toInt64(raw["storageSize"]),
		Indexes:     toInt64(raw["indexes"]),
		IndexSize:   toInt64(raw["indexSize"]),
	}, nil
}

func (d *MongoDatabase) CollectionStats(ctx context.Context, name string) (CollStats, error) {
	var raw bson.M
	cmd := bson.D{{Key: "collStats", Value: name}}
	if err := d.db.RunCommand(ctx, cmd).Decode(&raw); err != nil {
		return CollStats{}, fmt.Errorf("collStats %s: %w", name, err)
	}
	return CollStats{
		Count:       toInt64(raw["count"]),
		Size:        toInt64(raw["size"]),
		AvgObjSize:  toInt64(raw["avgObjSize"]),
		StorageSize: toInt64(raw["storageSize"]),
	}, nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) FindOne(ctx context.Context, filter map[string]any, out any) (bool, error) {
	err := c.coll.FindOne(ctx, bson.M(filter)).Decode(out)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find_one: %w", err)
	}
	return true, nil
}

func (c *mongoCollection) Find(ctx context.Context, filter map[string]any, opts FindOptions, out any) error {
	findOpts := options.Find()
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if len(opts.Sort) > 0 {
		sortDoc := bson.D{}
		for _, s := range opts.Sort {
			dir := -1
			if s.Ascending {
				dir = 1
			}
			sortDoc = append(sortDoc, bson.E{Key: s.Field, Value: dir})
		}
		findOpts.SetSort(sortDoc)
	}
	cur, err := c.coll.Find(ctx, bson.M(filter), findOpts)
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc any) error {
	_, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert_one: %w", err)
	}
	return nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter map[string]any, set map[string]any, upsert bool) (int64, int64, any, error) {
	update := bson.M{"$set": set}
	res, err := c.coll.UpdateOne(ctx, bson.M(filter), update, options.UpdateOne().SetUpsert(upsert))
	if err != nil {
		return 0, 0, nil, fmt.Errorf("update_one: %w", err)
	}
	return res.MatchedCount, res.ModifiedCount, res.UpsertedID, nil
}

func (c *mongoCollection) DeleteOne(ctx context.Context, filter map[string]any) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, bson.M(filter))
	if err != nil {
		return 0, fmt.Errorf("delete_one: %w", err)
	}
	return res.DeletedCount, nil
}

func (c *mongoCollection) DeleteMany(ctx context.Context, filter map[string]any) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, bson.M(filter))
	if err != nil {
		return 0, fmt.Errorf("delete_many: %w", err)
	}
	return res.DeletedCount, nil
}

func (c *mongoCollection) CountDocuments(ctx context.Context, filter map[string]any) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, bson.M(filter))
	if err != nil {
		return 0, fmt.Errorf("count_documents: %w", err)
	}
	return n, nil
}

func (c *mongoCollection) BulkWrite(ctx context.Context, ops []WriteOp) (BulkResult, error) {
	if len(ops) == 0 {
		return BulkResult{}, nil
	}
	models := make([]mongo.WriteModel, 0, len(ops))
	for _, op := range ops {
		if op.DeleteOne != nil {
			models = append(models, mongo.NewDeleteOneModel().SetFilter(bson.M(op.DeleteOne.Filter)))
		}
	}
	res, err := c.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return BulkResult{Errors: []error{err}}, fmt.Errorf("bulk_write: %w", err)
	}
	return BulkResult{DeletedCount: res.DeletedCount}, nil
}

func (c *mongoCollection) Aggregate(ctx context.Context, pipeline []map[string]any, out any) error {
	stages := make(bson.A, 0, len(pipeline))
	for _, stage := range pipeline {
		stages = append(stages, bson.M(stage))
	}
	cur, err := c.coll.Aggregate(ctx, stages)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

func (c *mongoCollection) CreateIndexes(ctx context.Context, specs []IndexSpec) error {
	models := make([]mongo.IndexModel, 0, len(specs))
	for _, spec := range specs {
		keys := bson.D{}
		for _, k := range spec.Keys {
			if spec.Text {
				keys = append(keys, bson.E{Key: k.Field, Value: "text"})
				continue
			}
			dir := -1
			if k.Ascending {
				dir = 1
			}
			keys = append(keys, bson.E{Key: k.Field, Value: dir})
		}
		idxOpts := options.Index().SetName(spec.Name)
		if spec.Unique {
			idxOpts.SetUnique(true)
		}
		if spec.Sparse {
			idxOpts.SetSparse(true)
		}
		models = append(models, mongo.IndexModel{Keys: keys, Options: idxOpts})
	}
	_, err := c.coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("create_indexes: %w", err)
	}
	return nil
}

func (c *mongoCollection) Distinct(ctx context.Context, field string, filter map[string]any, out any) error {
	res := c.coll.Distinct(ctx, field, bson.M(filter))
	return res.Decode(out)
}

// ErrDuplicateKey is returned by InsertOne in place of the original's
// pymongo DuplicateKeyError, per the explicit-result-shape re-architecture:
// callers branch on this sentinel instead of catching an exception.
var ErrDuplicateKey = fmt.Errorf("store: duplicate key")
