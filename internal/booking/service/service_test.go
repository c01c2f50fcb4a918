package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medbill/medbill-site/backend/api/internal/apierr"
	"github.com/medbill/medbill-site/backend/api/internal/booking"
	"github.com/medbill/medbill-site/backend/api/internal/booking/repository"
	"github.com/medbill/medbill-site/backend/api/internal/events"
	"github.com/medbill/medbill-site/backend/api/internal/events/eventstest"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2030, 6, 15, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *repository.MemoryRepo, *eventstest.Recorder) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	rec := &eventstest.Recorder{}
	clock := fixedNow
	svc := NewService(repo, rec).WithClock(func() time.Time { return clock })
	return svc, repo, rec
}

func str(s string) *string { return &s }

func validInput() CreateInput {
	return CreateInput{
		ServiceID:       str("svc-1"),
		Name:            "  Jane Doe ",
		Email:           " Jane@X.com",
		Phone:           " 555-1234 ",
		AppointmentDate: "2099-01-01",
	}
}

func TestCreate_PendingAndNormalized(t *testing.T) {
	svc, repo, rec := newService(t)

	b, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.NotEmpty(t, b.ID)
	require.Equal(t, booking.StatusPending, b.Status)
	require.Nil(t, b.DeletedAt)
	require.Equal(t, "Jane Doe", b.Name)
	require.Equal(t, "jane@x.com", b.Email)
	require.Equal(t, "555-1234", b.Phone)
	require.Equal(t, "svc-1", *b.ServiceID)
	require.Nil(t, b.ServiceName)
	require.Nil(t, b.Message)
	require.Equal(t, fixedNow, b.CreatedAt)
	require.Equal(t, fixedNow, b.UpdatedAt)
	require.Equal(t, 1, repo.Len())
	require.Equal(t, []string{events.BookingCreated}, rec.Keys())
}

func TestCreate_RoundTripReturnsNormalizedValues(t *testing.T) {
	svc, _, _ := newService(t)
	in := validInput()
	in.ServiceName = str("  Revenue Cycle Management ")
	in.Message = str("  ")

	created, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
	require.Equal(t, "jane@x.com", got.Email)
	require.Equal(t, "Revenue Cycle Management", *got.ServiceName)
	require.Nil(t, got.Message)
}

func TestCreate_RequiredFields(t *testing.T) {
	for _, tc := range []struct {
		name  string
		apply func(*CreateInput)
	}{
		{"missing date", func(in *CreateInput) { in.AppointmentDate = "" }},
		{"blank name", func(in *CreateInput) { in.Name = "   " }},
		{"missing phone", func(in *CreateInput) { in.Phone = "" }},
		{"missing email", func(in *CreateInput) { in.Email = "" }},
		{"email without at", func(in *CreateInput) { in.Email = "jane.x.com" }},
		{"bad date", func(in *CreateInput) { in.AppointmentDate = "01/01/2099" }},
		{"past date", func(in *CreateInput) { in.AppointmentDate = "2030-06-14" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, rec := newService(t)
			in := validInput()
			tc.apply(&in)

			_, err := svc.Create(context.Background(), in)
			require.ErrorIs(t, err, apierr.ErrValidation)
			require.Equal(t, 0, repo.Len())
			require.Empty(t, rec.Keys())
		})
	}
}

func TestCreate_TodayIsAllowed(t *testing.T) {
	svc, _, _ := newService(t)
	in := validInput()
	in.AppointmentDate = "2030-06-15"
	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
}

type failingRepo struct{ repository.Repository }

func (failingRepo) Create(context.Context, *booking.Booking) error { return errors.New("disk full") }

func TestCreate_PersistenceError(t *testing.T) {
	rec := &eventstest.Recorder{}
	svc := NewService(failingRepo{}, rec).WithClock(func() time.Time { return fixedNow })
	_, err := svc.Create(context.Background(), validInput())
	require.ErrorIs(t, err, apierr.ErrPersistence)
	require.Empty(t, rec.Keys())
}

func TestCreate_EventFailureDoesNotFailRequest(t *testing.T) {
	repo := repository.NewMemoryRepo()
	rec := &eventstest.Recorder{Err: errors.New("broker down")}
	svc := NewService(repo, rec).WithClock(func() time.Time { return fixedNow })
	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, 1, repo.Len())
}

func TestUpdate_UnknownStatusIgnoredOtherFieldsApplied(t *testing.T) {
	svc, _, _ := newService(t)
	b, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	later := fixedNow.Add(time.Hour)
	svc.WithClock(func() time.Time { return later })
	upd, err := svc.Update(context.Background(), b.ID, UpdateInput{Status: str("bogus"), Phone: str(" 555-9999 ")})
	require.NoError(t, err)
	require.Equal(t, booking.StatusPending, upd.Status)
	require.Equal(t, "555-9999", upd.Phone)
	require.Equal(t, later, upd.UpdatedAt)
	require.Equal(t, fixedNow, upd.CreatedAt)
}

func TestUpdate_StatusTransitionsNotEnforced(t *testing.T) {
	svc, _, _ := newService(t)
	b, _ := svc.Create(context.Background(), validInput())

	for _, st := range []string{"completed", "pending", "CANCELLED", "confirmed"} {
		upd, err := svc.Update(context.Background(), b.ID, UpdateInput{Status: str(st)})
		require.NoError(t, err)
		parsed, _ := booking.ParseStatus(st)
		require.Equal(t, parsed, upd.Status)
	}
}

func TestUpdate_NormalizesAndClears(t *testing.T) {
	svc, _, _ := newService(t)
	in := validInput()
	in.Message = str("first visit")
	b, _ := svc.Create(context.Background(), in)

	upd, err := svc.Update(context.Background(), b.ID, UpdateInput{
		Email:   str(" NEW@Example.COM "),
		Message: str(""),
	})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", upd.Email)
	require.Nil(t, upd.Message)
	require.Equal(t, "svc-1", *upd.ServiceID)

	_, err = svc.Update(context.Background(), b.ID, UpdateInput{Email: str("nope")})
	require.ErrorIs(t, err, apierr.ErrValidation)
	_, err = svc.Update(context.Background(), b.ID, UpdateInput{AppointmentDate: str("tomorrow")})
	require.ErrorIs(t, err, apierr.ErrValidation)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Update(context.Background(), "missing", UpdateInput{Phone: str("1")})
	require.ErrorIs(t, err, apierr.ErrNotFound)

	b, _ := svc.Create(context.Background(), validInput())
	require.NoError(t, svc.Delete(context.Background(), b.ID))
	_, err = svc.Update(context.Background(), b.ID, UpdateInput{Status: str("confirmed")})
	require.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestDelete_IdempotentKeepsFirstTimestamp(t *testing.T) {
	svc, repo, _ := newService(t)
	b, _ := svc.Create(context.Background(), validInput())

	first := fixedNow.Add(time.Minute)
	svc.WithClock(func() time.Time { return first })
	require.NoError(t, svc.Delete(context.Background(), b.ID))

	svc.WithClock(func() time.Time { return first.Add(time.Hour) })
	require.NoError(t, svc.Delete(context.Background(), b.ID))
	require.NoError(t, svc.Delete(context.Background(), "never-existed"))

	raw, ok := repo.Raw(b.ID)
	require.True(t, ok)
	require.Equal(t, first, *raw.DeletedAt)

	_, err := svc.Get(context.Background(), b.ID)
	require.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestList_Paging(t *testing.T) {
	svc, _, _ := newService(t)
	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), validInput())
		require.NoError(t, err)
	}
	res, err := svc.List(context.Background(), ListInput{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, res.Bookings, 2)
	require.EqualValues(t, 3, res.Total)

	res, err = svc.List(context.Background(), ListInput{Limit: 1000})
	require.NoError(t, err)
	require.Equal(t, MaxPageSize, res.Limit)
	require.Equal(t, 1, res.Page)

	_, err = svc.List(context.Background(), ListInput{Status: "bogus"})
	require.ErrorIs(t, err, apierr.ErrValidation)
}

func TestList_HugePageReturnsEmptyPage(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	var res *ListResult
	require.NotPanics(t, func() {
		res, err = svc.List(context.Background(), ListInput{Page: 922337203685477581, Limit: 20})
	})
	require.NoError(t, err)
	require.Empty(t, res.Bookings)
	require.EqualValues(t, 1, res.Total)
}
