package generic

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BaseRepository Interface
type BaseRepository[T Entity] interface {
	InsertOne(ctx context.Context, entity T) error
	FindByReference(ctx context.Context, ref string) (T, bool, error)
	FindOne(ctx context.Context, filter bson.M) (T, bool, error)
	FindPage(ctx context.Context, filter bson.M, page, size int) ([]T, error)
	Replace(ctx context.Context, entity T) (bool, error)
	UpdateFields(ctx context.Context, filter bson.M, set bson.M) (bool, error)
	DeleteOne(ctx context.Context, ref string) (bool, error)
}

// MongoBaseRepository Implementation
type MongoBaseRepository[T Entity] struct {
	Collection *mongo.Collection
	KeyField   string
}

func NewBaseRepository[T Entity](collection *mongo.Collection, keyField string) *MongoBaseRepository[T] {
	return &MongoBaseRepository[T]{Collection: collection, KeyField: keyField}
}

// 1. Insert
func (r *MongoBaseRepository[T]) InsertOne(ctx context.Context, entity T) error {
	_, err := r.Collection.InsertOne(ctx, entity)
	return err
}

// 2. Find by reference
func (r *MongoBaseRepository[T]) FindByReference(ctx context.Context, ref string) (T, bool, error) {
	return r.FindOne(ctx, bson.M{r.KeyField: ref})
}

// 3. Find one by filter. A missing document is not an error.
func (r *MongoBaseRepository[T]) FindOne(ctx context.Context, filter bson.M) (T, bool, error) {
	var entity T
	err := r.Collection.FindOne(ctx, filter).Decode(&entity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entity, false, nil
		}
		return entity, false, err
	}
	return entity, true, nil
}

// 4. Find a page, 1-based, in insertion order
func (r *MongoBaseRepository[T]) FindPage(ctx context.Context, filter bson.M, page, size int) ([]T, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]T, 0, size)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// 5. Replace (full document), reports whether a document matched
func (r *MongoBaseRepository[T]) Replace(ctx context.Context, entity T) (bool, error) {
	res, err := r.Collection.ReplaceOne(ctx, bson.M{r.KeyField: entity.GetReference()}, entity)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// 6. Partial update with $set
func (r *MongoBaseRepository[T]) UpdateFields(ctx context.Context, filter bson.M, set bson.M) (bool, error) {
	res, err := r.Collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// 7. Delete
func (r *MongoBaseRepository[T]) DeleteOne(ctx context.Context, ref string) (bool, error) {
	res, err := r.Collection.DeleteOne(ctx, bson.M{r.KeyField: ref})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
