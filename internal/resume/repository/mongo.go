package repository

import (
	"context"

	"github.com/medbill/medbill-site/backend/api/internal/database"
	"github.com/medbill/medbill-site/backend/api/internal/resume"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(ctx context.Context, col *mongo.Collection) *MongoRepo {
	database.EnsureIndexes(ctx, col,
		mongo.IndexModel{Keys: bson.D{{Key: "careerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, a *resume.Application) error {
	_, err := m.col.InsertOne(ctx, a)
	return err
}

func (m *MongoRepo) List(ctx context.Context, careerID string) ([]*resume.Application, error) {
	filter := bson.M{}
	if careerID != "" {
		filter["careerId"] = careerID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []*resume.Application{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
