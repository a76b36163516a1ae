package template

import (
	"context"
	"sync"

	"github.com/talentledger/talentledger/internal/apperr"
)

type memoryRepository struct {
	mu   sync.RWMutex
	byID map[string]Template
}

// NewMemoryRepository builds an in-memory template store for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{byID: make(map[string]Template)}
}

func (r *memoryRepository) Create(_ context.Context, t Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[t.ID]; exists {
		return apperr.ErrConflict
	}
	r.byID[t.ID] = t
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return Template{}, apperr.ErrNotFound
	}
	return t, nil
}

func (r *memoryRepository) Save(_ context.Context, t Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; !ok {
		return apperr.ErrNotFound
	}
	r.byID[t.ID] = t
	return nil
}
