package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/medbill/medbill-site/backend/api/internal/resume"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*resume.Application
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*resume.Application)}
}

func (m *MemoryRepo) Create(ctx context.Context, a *resume.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[a.ID] = a.Clone()
	return nil
}

func (m *MemoryRepo) List(ctx context.Context, careerID string) ([]*resume.Application, error) {
	m.mu.RLock()
	out := make([]*resume.Application, 0, len(m.store))
	for _, a := range m.store {
		if careerID == "" || a.CareerID == careerID {
			out = append(out, a.Clone())
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Len is the number of stored applications.
func (m *MemoryRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}
