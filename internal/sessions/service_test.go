package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/medbill/medbill-site/backend/api/pkg/middleware"
	"github.com/stretchr/testify/require"
)

var admin = middleware.Identity{Subject: "admin-1", Email: "admin@medbill.test", Name: "Admin", Role: "admin"}

func TestCreateValidateDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), time.Hour)

	r, exp, err := svc.Create(ctx, admin)
	require.NoError(t, err)
	require.Len(t, r, 64)
	require.True(t, exp.After(time.Now()))

	id, err := svc.Validate(ctx, r)
	require.NoError(t, err)
	require.Equal(t, admin, id)

	require.NoError(t, svc.Delete(ctx, r))
	_, err = svc.Validate(ctx, r)
	require.ErrorIs(t, err, ErrInvalidSession)

	_, err = svc.Validate(ctx, "")
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidate_ExpiredIsRemoved(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	svc := NewService(repo, time.Minute)
	r, _, err := svc.Create(ctx, admin)
	require.NoError(t, err)

	svc.WithClock(func() time.Time { return time.Now().UTC().Add(time.Hour) })
	_, err = svc.Validate(ctx, r)
	require.ErrorIs(t, err, ErrInvalidSession)
	s, _ := repo.GetByRefresh(ctx, r)
	require.Nil(t, s)
}

func TestRotate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), time.Hour)
	r, _, err := svc.Create(ctx, admin)
	require.NoError(t, err)

	id, next, _, err := svc.Rotate(ctx, r)
	require.NoError(t, err)
	require.Equal(t, admin, id)
	require.NotEqual(t, r, next)

	_, err = svc.Validate(ctx, r)
	require.ErrorIs(t, err, ErrInvalidSession)
	_, err = svc.Validate(ctx, next)
	require.NoError(t, err)
}
