// Package admins authenticates local admin accounts for the admin login.
package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/medbill/medbill-site/backend/api/internal/config"
	"github.com/medbill/medbill-site/backend/api/pkg/logger"
	"github.com/medbill/medbill-site/backend/api/pkg/middleware"
	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = "admin"

var ErrInvalidCredentials = errors.New("invalid email or password")

// dummyHash keeps the cost of a failed lookup equal to a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// HashPassword bcrypt-hashes a plain password.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Authenticate checks email/password and returns the admin identity.
func (s *Service) Authenticate(ctx context.Context, email, password string) (middleware.Identity, error) {
	a, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return middleware.Identity{}, fmt.Errorf("load admin: %w", err)
	}
	hash := dummyHash
	if a != nil {
		hash = []byte(a.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || a == nil {
		return middleware.Identity{}, ErrInvalidCredentials
	}
	return middleware.Identity{Subject: a.ID, Email: a.Email, Name: a.Name, Role: a.Role}, nil
}

// Upsert creates or updates the account for email with a pre-computed bcrypt hash.
func (s *Service) Upsert(ctx context.Context, email, name, passwordHash string) (*Admin, error) {
	email = normalizeEmail(email)
	if email == "" || passwordHash == "" {
		return nil, errors.New("admin email and password hash are required")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash is not a bcrypt hash: %w", err)
	}
	return s.repo.UpsertByEmail(ctx, &Admin{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         RoleAdmin,
		PasswordHash: passwordHash,
	})
}

// Seed installs the bootstrap account from configuration, if one is set.
func (s *Service) Seed(ctx context.Context, cfg config.AdminConfig) error {
	hash := cfg.PasswordHash
	if hash == "" && cfg.Password != "" {
		logger.Warn("ADMIN_PASSWORD is set in plain text; prefer ADMIN_PASSWORD_HASH")
		h, err := HashPassword(cfg.Password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		hash = h
	}
	if cfg.Email == "" || hash == "" {
		return nil
	}
	a, err := s.Upsert(ctx, cfg.Email, cfg.Name, hash)
	if err != nil {
		return err
	}
	logger.Infow("bootstrap admin ready", "email", a.Email)
	return nil
}
