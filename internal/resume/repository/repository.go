package repository

import (
	"context"

	"github.com/medbill/medbill-site/backend/api/internal/resume"
)

// Repository persists job applications. Applications are append-only.
type Repository interface {
	Create(ctx context.Context, a *resume.Application) error
	// List returns applications newest first; an empty careerID matches all.
	List(ctx context.Context, careerID string) ([]*resume.Application, error)
}
