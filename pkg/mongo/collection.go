package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection is a typed wrapper around a MongoDB collection. Documents are
// decoded into T; driver sentinel errors are mapped to ErrNoDocuments and
// ErrDuplicateKey.
type Collection[T any] struct {
	coll *mongo.Collection
}

// NewCollection returns a typed handle for the named collection.
func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{coll: db.Collection(name)}
}

// Raw exposes the underlying driver collection.
func (c *Collection[T]) Raw() *mongo.Collection {
	return c.coll
}

// FindOne returns the first document matching filter.
func (c *Collection[T]) FindOne(ctx context.Context, filter any) (T, error) {
	var doc T
	err := c.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		return doc, mapError(err)
	}
	return doc, nil
}

// InsertOne stores doc and returns its generated _id.
func (c *Collection[T]) InsertOne(ctx context.Context, doc T) (bson.ObjectID, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return bson.ObjectID{}, mapError(err)
	}
	id, _ := res.InsertedID.(bson.ObjectID)
	return id, nil
}

// UpdateOne applies update to the first document matching filter and
// returns the number of matched documents.
func (c *Collection[T]) UpdateOne(ctx context.Context, filter, update any) (int64, error) {
	res, err := c.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, mapError(err)
	}
	return res.MatchedCount, nil
}

// FindOneAndUpdate applies update and returns the document as it is after
// the update.
func (c *Collection[T]) FindOneAndUpdate(ctx context.Context, filter, update any, sort any) (T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if sort != nil {
		opts.SetSort(sort)
	}
	var doc T
	err := c.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		return doc, mapError(err)
	}
	return doc, nil
}

// DeleteOne removes the first document matching filter.
func (c *Collection[T]) DeleteOne(ctx context.Context, filter any) error {
	res, err := c.coll.DeleteOne(ctx, filter)
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNoDocuments
	}
	return nil
}

// Count returns the number of documents matching filter.
func (c *Collection[T]) Count(ctx context.Context, filter any) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}
	return c.coll.CountDocuments(ctx, filter)
}

// Paginate returns up to limit documents matching filter after skipping
// skip documents, in ascending _id order.
func (c *Collection[T]) Paginate(ctx context.Context, filter any, skip, limit int64) ([]T, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapError(err)
	}
	docs := make([]T, 0, limit)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapError(err)
	}
	return docs, nil
}

// EnsureIndexes creates the given indexes if they do not exist yet.
func (c *Collection[T]) EnsureIndexes(ctx context.Context, models ...mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	_, err := c.coll.Indexes().CreateMany(ctx, models)
	return err
}

func mapError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return errors.Join(ErrNoDocuments, err)
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(ErrDuplicateKey, err)
	default:
		return err
	}
}
