package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_CreateGetDelete(t *testing.T) {
	m := mr.RunT(t)
	repo := NewRedisRepository(redis.NewClient(&redis.Options{Addr: m.Addr()}), "test:session:")
	ctx := context.Background()

	s := &Session{RefreshToken: "r1", Subject: "admin-1", Role: "admin", CreatedAt: time.Now().UTC(), ExpiresAt: time.Now().UTC().Add(5 * time.Second)}
	require.NoError(t, repo.Create(ctx, s))
	require.True(t, m.Exists("test:session:r1"))

	got, err := repo.GetByRefresh(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "admin-1", got.Subject)

	require.NoError(t, repo.DeleteByRefresh(ctx, "r1"))
	got, err = repo.GetByRefresh(ctx, "r1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisRepository_TTLExpiry(t *testing.T) {
	m := mr.RunT(t)
	repo := NewRedisRepository(redis.NewClient(&redis.Options{Addr: m.Addr()}), "")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Session{RefreshToken: "r2", Subject: "s", ExpiresAt: time.Now().UTC().Add(time.Second)}))
	got, err := repo.GetByRefresh(ctx, "r2")
	require.NoError(t, err)
	require.NotNil(t, got)

	m.FastForward(2 * time.Second)
	got, err = repo.GetByRefresh(ctx, "r2")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisRepository_StoresHashWithFields(t *testing.T) {
	m := mr.RunT(t)
	repo := NewRedisRepository(redis.NewClient(&redis.Options{Addr: m.Addr()}), "")
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.Create(ctx, &Session{RefreshToken: "r3", Subject: "admin-1", Email: "a@b.c", Name: "Admin", Role: "admin", CreatedAt: created, ExpiresAt: created.Add(time.Hour)}))
	require.Equal(t, "a@b.c", m.HGet("session:r3", "email"))
	require.Greater(t, m.TTL("session:r3"), 59*time.Minute)

	got, err := repo.GetByRefresh(ctx, "r3")
	require.NoError(t, err)
	require.Equal(t, "r3", got.RefreshToken)
	require.Equal(t, "Admin", got.Name)
	require.Equal(t, created, got.CreatedAt)
	require.Equal(t, created.Add(time.Hour), got.ExpiresAt)
}

func TestRedisRepository_ClockExpiresOnRead(t *testing.T) {
	m := mr.RunT(t)
	now := time.Now().UTC()
	repo := NewRedisRepository(redis.NewClient(&redis.Options{Addr: m.Addr()}), "").WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Session{RefreshToken: "r4", Subject: "s", ExpiresAt: now.Add(time.Minute)}))
	now = now.Add(2 * time.Minute)
	got, err := repo.GetByRefresh(ctx, "r4")
	require.NoError(t, err)
	require.Nil(t, got)
	require.False(t, m.Exists("session:r4"))

	require.NoError(t, repo.Create(ctx, &Session{RefreshToken: "r5", Subject: "s", ExpiresAt: now.Add(-time.Second)}))
	require.False(t, m.Exists("session:r5"))
}
