package collection

import (
	"context"
	"errors"
	"time"

	"github.com/medbill/medbill-site/backend/api/internal/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo stores one document kind per collection, keyed by the id in _id.
type Mongo[T Document[T]] struct {
	col *mongo.Collection
}

// NewMongo wraps col and ensures the given indexes plus a deletedAt index.
func NewMongo[T Document[T]](ctx context.Context, col *mongo.Collection, indexes ...mongo.IndexModel) *Mongo[T] {
	indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: "deletedAt", Value: 1}}})
	database.EnsureIndexes(ctx, col, indexes...)
	return &Mongo[T]{col: col}
}

func filterOf(q Query) bson.M {
	return database.ActiveFilter(bson.M(q.Equals))
}

func sortOf(fields []SortField) bson.D {
	if len(fields) == 0 {
		fields = Newest
	}
	d := bson.D{}
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: f.Field, Value: dir})
	}
	return append(d, bson.E{Key: "_id", Value: 1})
}

func (m *Mongo[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	err := m.col.FindOne(ctx, database.ActiveFilter(bson.M{"_id": id})).Decode(&doc)
	if err != nil {
		var zero T
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return doc, nil
}

func (m *Mongo[T]) Find(ctx context.Context, q Query) ([]T, error) {
	opts := options.Find().SetSort(sortOf(q.Sort)).SetSkip(int64(max(q.Offset, 0)))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cur, err := m.col.Find(ctx, filterOf(q), opts)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Mongo[T]) Count(ctx context.Context, q Query) (int64, error) {
	return m.col.CountDocuments(ctx, filterOf(q))
}

func (m *Mongo[T]) Insert(ctx context.Context, doc T) error {
	_, err := m.col.InsertOne(ctx, doc)
	return err
}

func (m *Mongo[T]) Replace(ctx context.Context, doc T) error {
	res, err := m.col.ReplaceOne(ctx, database.ActiveFilter(bson.M{"_id": doc.Meta().ID}), doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo[T]) SoftDelete(ctx context.Context, id string, now time.Time) (bool, error) {
	res, err := m.col.UpdateOne(ctx,
		database.ActiveFilter(bson.M{"_id": id}),
		bson.M{"$set": bson.M{"deletedAt": now, "updatedAt": now}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
