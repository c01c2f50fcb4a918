package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/medbill/medbill-site/backend/api/internal/booking"
)

// MemoryRepo is an in-memory repository used for tests and for running the
// site without MongoDB.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*booking.Booking
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*booking.Booking)}
}

func (m *MemoryRepo) Create(ctx context.Context, b *booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[b.ID] = b.Clone()
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*booking.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.store[id]; ok && b.Active() {
		return b.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) List(ctx context.Context, f Filter) ([]*booking.Booking, int64, error) {
	m.mu.RLock()
	matched := make([]*booking.Booking, 0, len(m.store))
	for _, b := range m.store {
		if !b.Active() || (f.Status != "" && b.Status != f.Status) {
			continue
		}
		matched = append(matched, b.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Offset >= len(matched) {
		return []*booking.Booking{}, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (m *MemoryRepo) Update(ctx context.Context, id string, p booking.Patch, now time.Time) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok || !b.Active() {
		return nil, ErrNotFound
	}
	p.Apply(b, now)
	return b.Clone(), nil
}

func (m *MemoryRepo) SoftDelete(ctx context.Context, id string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok || !b.Active() {
		return false, nil
	}
	t := now
	b.DeletedAt = &t
	b.UpdatedAt = now
	return true, nil
}

// Raw returns the stored row including soft-deleted ones. Test helper.
func (m *MemoryRepo) Raw(id string) (*booking.Booking, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.store[id]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// Len counts all rows, deleted or not.
func (m *MemoryRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}
