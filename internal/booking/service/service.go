package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medbill/medbill-site/backend/api/internal/apierr"
	"github.com/medbill/medbill-site/backend/api/internal/booking"
	"github.com/medbill/medbill-site/backend/api/internal/booking/repository"
	"github.com/medbill/medbill-site/backend/api/internal/events"
	"github.com/medbill/medbill-site/backend/api/internal/paging"
	"github.com/medbill/medbill-site/backend/api/pkg/logger"
	"github.com/medbill/medbill-site/backend/api/pkg/metrics"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CreateInput is a public booking submission.
type CreateInput struct {
	ServiceID       *string `json:"serviceId"`
	ServiceName     *string `json:"serviceName"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	AppointmentDate string  `json:"appointmentDate"`
	AppointmentTime *string `json:"appointmentTime"`
	Message         *string `json:"message"`
}

// UpdateInput is an admin partial update; nil fields are left untouched.
type UpdateInput struct {
	ServiceID       *string `json:"serviceId"`
	ServiceName     *string `json:"serviceName"`
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	AppointmentDate *string `json:"appointmentDate"`
	AppointmentTime *string `json:"appointmentTime"`
	Message         *string `json:"message"`
	Status          *string `json:"status"`
}

type ListInput struct {
	Status string
	Page   int
	Limit  int
}

type ListResult struct {
	Bookings []*booking.Booking
	Page     int
	Limit    int
	Total    int64
}

// Service owns booking validation, normalization and lifecycle rules.
type Service struct {
	repo   repository.Repository
	events events.Publisher
	now    func() time.Time
}

func NewService(repo repository.Repository, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Noop{}
	}
	return &Service{repo: repo, events: pub, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// optional trims and maps blank to nil.
func optional(p *string) *string {
	v := trimmed(p)
	if v == nil || *v == "" {
		return nil
	}
	return v
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(booking.DateLayout, s)
	if err != nil {
		return time.Time{}, apierr.Validation("appointmentDate must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// Create validates a submission and stores it as a pending booking.
func (s *Service) Create(ctx context.Context, in CreateInput) (*booking.Booking, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	phone := strings.TrimSpace(in.Phone)
	date := strings.TrimSpace(in.AppointmentDate)

	var missing []string
	for _, f := range []struct{ field, value string }{
		{"name", name}, {"email", email}, {"phone", phone}, {"appointmentDate", date},
	} {
		if f.value == "" {
			missing = append(missing, f.field)
		}
	}
	if len(missing) > 0 {
		return nil, apierr.Validation("Please fill in all required fields: %s", strings.Join(missing, ", "))
	}
	if !validEmail(email) {
		return nil, apierr.Validation("Please provide a valid email address")
	}
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		return nil, apierr.Validation("appointmentDate cannot be in the past")
	}

	b := &booking.Booking{
		ID:              uuid.NewString(),
		ServiceID:       optional(in.ServiceID),
		ServiceName:     optional(in.ServiceName),
		Name:            name,
		Email:           email,
		Phone:           phone,
		AppointmentDate: d.Format(booking.DateLayout),
		AppointmentTime: optional(in.AppointmentTime),
		Message:         optional(in.Message),
		Status:          booking.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, apierr.Persistence("create booking", err)
	}
	metrics.BookingsCreated.Inc()
	logger.Infow("booking created", "id", b.ID, "date", b.AppointmentDate)

	if err := s.events.Publish(ctx, events.BookingCreated, b); err != nil {
		logger.Warnw("booking event not published", "id", b.ID, "err", err)
	}
	return b, nil
}

// Get returns the active booking with id.
func (s *Service) Get(ctx context.Context, id string) (*booking.Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.NotFound("Booking")
		}
		return nil, apierr.Persistence("get booking", err)
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, in ListInput) (*ListResult, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	page := paging.ClampPage(in.Page, limit)
	f := repository.Filter{Offset: (page - 1) * limit, Limit: limit}
	if in.Status != "" {
		st, ok := booking.ParseStatus(in.Status)
		if !ok {
			return nil, apierr.Validation("unknown status filter %q", in.Status)
		}
		f.Status = st
	}
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apierr.Persistence("list bookings", err)
	}
	return &ListResult{Bookings: list, Page: page, Limit: limit, Total: total}, nil
}

// Update applies an admin partial update. A status outside the known set is
// dropped without error while the rest of the update still applies; known
// statuses are accepted regardless of the current state.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*booking.Booking, error) {
	p := booking.Patch{
		ServiceID:       trimmed(in.ServiceID),
		ServiceName:     trimmed(in.ServiceName),
		AppointmentTime: trimmed(in.AppointmentTime),
		Message:         trimmed(in.Message),
	}
	if v := trimmed(in.Name); v != nil {
		if *v == "" {
			return nil, apierr.Validation("name cannot be empty")
		}
		p.Name = v
	}
	if in.Email != nil {
		e := normalizeEmail(*in.Email)
		if !validEmail(e) {
			return nil, apierr.Validation("Please provide a valid email address")
		}
		p.Email = &e
	}
	if v := trimmed(in.Phone); v != nil {
		if *v == "" {
			return nil, apierr.Validation("phone cannot be empty")
		}
		p.Phone = v
	}
	if v := trimmed(in.AppointmentDate); v != nil {
		d, err := parseDate(*v)
		if err != nil {
			return nil, err
		}
		formatted := d.Format(booking.DateLayout)
		p.AppointmentDate = &formatted
	}
	if in.Status != nil {
		if st, ok := booking.ParseStatus(*in.Status); ok {
			p.Status = &st
		} else {
			logger.Warnw("ignoring unknown booking status", "id", id, "status", *in.Status)
		}
	}

	var before *booking.Booking
	if p.Status != nil {
		cur, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		before = cur
	}

	b, err := s.repo.Update(ctx, id, p, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.NotFound("Booking")
		}
		return nil, apierr.Persistence("update booking", err)
	}

	if before != nil && before.Status != *p.Status {
		metrics.BookingStatusUpdates.WithLabelValues(string(*p.Status)).Inc()
		if !before.Status.CanTransitionTo(*p.Status) {
			logger.Warnw("booking status moved outside workflow", "id", id, "from", before.Status, "to", *p.Status)
		}
	}
	logger.Infow("booking updated", "id", id)
	return b, nil
}

// Delete soft-deletes the booking. Deleting a missing or already deleted
// booking is a successful no-op; the first deletion timestamp is kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	matched, err := s.repo.SoftDelete(ctx, id, s.now())
	if err != nil {
		return apierr.Persistence("delete booking", err)
	}
	if matched {
		logger.Infow("booking deleted", "id", id)
	} else {
		logger.Debugw("booking delete matched no active row", "id", id)
	}
	return nil
}
