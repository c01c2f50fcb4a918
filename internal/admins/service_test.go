package admins

import (
	"context"
	"testing"

	"github.com/medbill/medbill-site/backend/api/internal/config"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func hashed(t *testing.T, pw string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

func TestSeedAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())
	require.NoError(t, svc.Seed(ctx, config.AdminConfig{Email: " Admin@MedBill.test ", Name: "Admin", PasswordHash: hashed(t, "s3cret!")}))

	id, err := svc.Authenticate(ctx, "admin@medbill.test", "s3cret!")
	require.NoError(t, err)
	require.Equal(t, "admin@medbill.test", id.Email)
	require.Equal(t, RoleAdmin, id.Role)
	require.NotEmpty(t, id.Subject)

	_, err = svc.Authenticate(ctx, "admin@medbill.test", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@medbill.test", "s3cret!")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSeed_KeepsIDOnRepeat(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	svc := NewService(repo)
	cfg := config.AdminConfig{Email: "a@b.c", PasswordHash: hashed(t, "one")}
	require.NoError(t, svc.Seed(ctx, cfg))
	first, _ := repo.GetByEmail(ctx, "a@b.c")

	cfg.PasswordHash = hashed(t, "two")
	require.NoError(t, svc.Seed(ctx, cfg))
	second, _ := repo.GetByEmail(ctx, "a@b.c")
	require.Equal(t, first.ID, second.ID)

	_, err := svc.Authenticate(ctx, "a@b.c", "two")
	require.NoError(t, err)
}

func TestSeed_SkipsAndRejects(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())
	require.NoError(t, svc.Seed(ctx, config.AdminConfig{}))
	require.Error(t, svc.Seed(ctx, config.AdminConfig{Email: "a@b.c", PasswordHash: "plaintext"}))
}

func TestSeed_PlainPasswordIsHashed(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	svc := NewService(repo)
	require.NoError(t, svc.Seed(ctx, config.AdminConfig{Email: "dev@medbill.test", Password: "local-only"}))

	a, err := repo.GetByEmail(ctx, "dev@medbill.test")
	require.NoError(t, err)
	require.NotEqual(t, "local-only", a.PasswordHash)
	_, err = svc.Authenticate(ctx, "dev@medbill.test", "local-only")
	require.NoError(t, err)
}
