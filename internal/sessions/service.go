package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/medbill/medbill-site/backend/api/pkg/middleware"
)

var ErrInvalidSession = errors.New("invalid or expired refresh token")

type Service struct {
	repo Repository
	ttl  time.Duration
	now  func() time.Time
}

func NewService(r Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{repo: r, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Create opens a refresh session for id and returns the refresh token.
func (s *Service) Create(ctx context.Context, id middleware.Identity) (string, time.Time, error) {
	r, err := newRefreshToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate refresh token: %w", err)
	}
	now := s.now()
	sess := &Session{
		RefreshToken: r,
		Subject:      id.Subject,
		Email:        id.Email,
		Name:         id.Name,
		Role:         id.Role,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}
	return r, sess.ExpiresAt, nil
}

// Validate returns the identity behind a live refresh token. Expired sessions
// are removed.
func (s *Service) Validate(ctx context.Context, refresh string) (middleware.Identity, error) {
	if refresh == "" {
		return middleware.Identity{}, ErrInvalidSession
	}
	sess, err := s.repo.GetByRefresh(ctx, refresh)
	if err != nil {
		return middleware.Identity{}, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return middleware.Identity{}, ErrInvalidSession
	}
	if s.now().After(sess.ExpiresAt) {
		_ = s.repo.DeleteByRefresh(ctx, refresh)
		return middleware.Identity{}, ErrInvalidSession
	}
	return middleware.Identity{Subject: sess.Subject, Email: sess.Email, Name: sess.Name, Role: sess.Role}, nil
}

// Rotate replaces a refresh token with a new one for the same identity.
func (s *Service) Rotate(ctx context.Context, refresh string) (middleware.Identity, string, time.Time, error) {
	id, err := s.Validate(ctx, refresh)
	if err != nil {
		return middleware.Identity{}, "", time.Time{}, err
	}
	if err := s.repo.DeleteByRefresh(ctx, refresh); err != nil {
		return middleware.Identity{}, "", time.Time{}, fmt.Errorf("delete session: %w", err)
	}
	next, exp, err := s.Create(ctx, id)
	if err != nil {
		return middleware.Identity{}, "", time.Time{}, err
	}
	return id, next, exp, nil
}

func (s *Service) Delete(ctx context.Context, refresh string) error {
	return s.repo.DeleteByRefresh(ctx, refresh)
}
