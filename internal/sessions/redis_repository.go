package sessions

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps each session in a hash under "<prefix><refreshToken>"
// that Redis expires at the session's ExpiresAt.
type RedisRepository struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisRepository{client: client, prefix: prefix, now: time.Now}
}

// WithClock overrides the time source used for the expiry check on read.
func (r *RedisRepository) WithClock(now func() time.Time) *RedisRepository {
	r.now = now
	return r
}

func (r *RedisRepository) key(refresh string) string { return r.prefix + refresh }

// Create writes the hash and its expiry atomically. Sessions already past
// ExpiresAt are not stored.
func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	if !s.ExpiresAt.After(r.now()) {
		return nil
	}
	k := r.key(s.RefreshToken)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, map[string]any{
			"sub":       s.Subject,
			"email":     s.Email,
			"name":      s.Name,
			"role":      s.Role,
			"expiresAt": s.ExpiresAt.UnixMilli(),
			"createdAt": s.CreatedAt.UnixMilli(),
		})
		p.PExpireAt(ctx, k, s.ExpiresAt)
		return nil
	})
	return err
}

func millis(v string) (time.Time, error) {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func (r *RedisRepository) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	k := r.key(refresh)
	h, err := r.client.HGetAll(ctx, k).Result()
	if err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, nil
	}
	exp, err := millis(h["expiresAt"])
	if err != nil {
		return nil, fmt.Errorf("session %s: bad expiresAt: %w", k, err)
	}
	if !exp.After(r.now()) {
		_ = r.client.Del(ctx, k).Err()
		return nil, nil
	}
	created, _ := millis(h["createdAt"])
	return &Session{
		RefreshToken: refresh,
		Subject:      h["sub"],
		Email:        h["email"],
		Name:         h["name"],
		Role:         h["role"],
		ExpiresAt:    exp,
		CreatedAt:    created,
	}, nil
}

func (r *RedisRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	return r.client.Del(ctx, r.key(refresh)).Err()
}
