package repository

import (
	"context"
	"errors"
	"time"

	"github.com/medbill/medbill-site/backend/api/internal/booking"
)

var ErrNotFound = errors.New("booking not found")

// Filter selects active bookings for the admin listing.
type Filter struct {
	Status booking.Status // empty = any
	Offset int
	Limit  int
}

// Repository persists bookings. Every read and write only matches active
// (not soft-deleted) rows.
type Repository interface {
	Create(ctx context.Context, b *booking.Booking) error
	Get(ctx context.Context, id string) (*booking.Booking, error)
	List(ctx context.Context, f Filter) ([]*booking.Booking, int64, error)
	// Update applies p to the active row and returns the stored result.
	Update(ctx context.Context, id string, p booking.Patch, now time.Time) (*booking.Booking, error)
	// SoftDelete stamps deletedAt on the active row. Reports whether a row matched.
	SoftDelete(ctx context.Context, id string, now time.Time) (bool, error)
}
