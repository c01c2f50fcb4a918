package content

import (
	"context"
	"encoding/json"
	"time"

	"github.com/medbill/medbill-site/backend/api/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const cachePrefix = "content:"

// Cache is a read-through cache for public content responses. A nil *Cache
// is valid and caches nothing. Redis failures degrade to uncached reads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(kind, variant string) string { return cachePrefix + kind + ":" + variant }

// Load decodes the cached value for kind/variant into dst and reports a hit.
func (c *Cache) Load(ctx context.Context, kind, variant string, dst any) bool {
	if c == nil {
		return false
	}
	b, err := c.client.Get(ctx, cacheKey(kind, variant)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warnw("content cache read failed", "kind", kind, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		logger.Warnw("content cache entry unreadable", "kind", kind, "err", err)
		return false
	}
	return true
}

func (c *Cache) Store(ctx context.Context, kind, variant string, v any) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(kind, variant), b, c.ttl).Err(); err != nil {
		logger.Warnw("content cache write failed", "kind", kind, "err", err)
	}
}

// Invalidate drops every cached response of kind.
func (c *Cache) Invalidate(ctx context.Context, kind string) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, cacheKey(kind, "*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warnw("content cache scan failed", "kind", kind, "err", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warnw("content cache invalidation failed", "kind", kind, "err", err)
	}
}
