package database

import (
	"context"
	"fmt"
	"time"

	"github.com/medbill/medbill-site/backend/api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// ConnectWithRetry retries ConnectMongo with doubling backoff to ride out
// container startup races.
func ConnectWithRetry(ctx context.Context, uri string, timeout time.Duration, attempts int) (*mongo.Client, error) {
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		client, err := ConnectMongo(ctx, uri, timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warnw("mongo connect failed", "attempt", attempt, "of", attempts, "err", err)
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("mongo unreachable after %d attempts: %w", attempts, lastErr)
}

// ActiveFilter restricts a query to rows that are not soft-deleted.
// Matches documents whose deletedAt is null or missing.
func ActiveFilter(extra bson.M) bson.M {
	f := bson.M{"deletedAt": nil}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

// EnsureIndexes creates the given indexes, logging instead of failing so a
// read-only replica can still serve traffic.
func EnsureIndexes(ctx context.Context, col *mongo.Collection, models ...mongo.IndexModel) {
	if len(models) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := col.Indexes().CreateMany(ctx, models); err != nil {
		logger.Warnw("index creation failed", "collection", col.Name(), "err", err)
	}
}
