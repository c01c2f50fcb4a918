package admins

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Admin is a local admin account.
type Admin struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Role         string    `bson:"role" json:"role"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Repository persists admin accounts keyed by lower-cased email.
// GetByEmail returns (nil, nil) when no account exists.
type Repository interface {
	UpsertByEmail(ctx context.Context, a *Admin) (*Admin, error)
	GetByEmail(ctx context.Context, email string) (*Admin, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(ctx context.Context, col *mongo.Collection) *MongoRepository {
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &MongoRepository{col: col}
}

func (r *MongoRepository) UpsertByEmail(ctx context.Context, a *Admin) (*Admin, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":         a.Name,
			"role":         a.Role,
			"passwordHash": a.PasswordHash,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{"_id": a.ID, "createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out Admin
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"email": a.Email}, update, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	var a Admin
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]Admin
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byEmail: make(map[string]Admin)}
}

func (r *MemoryRepository) UpsertByEmail(ctx context.Context, a *Admin) (*Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	cur, ok := r.byEmail[a.Email]
	if !ok {
		cur = Admin{ID: a.ID, Email: a.Email, CreatedAt: now}
	}
	cur.Name, cur.Role, cur.PasswordHash, cur.UpdatedAt = a.Name, a.Role, a.PasswordHash, now
	r.byEmail[a.Email] = cur
	out := cur
	return &out, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &a, nil
}
