package profile

import (
	"context"
	"sync"

	"github.com/talentledger/talentledger/internal/apperr"
)

type memoryKey struct {
	userID   string
	category Category
}

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[memoryKey][]Entry
}

// NewMemoryRepository constructs an in-memory repository for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{entries: make(map[memoryKey][]Entry)}
}

func (r *memoryRepository) Add(_ context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := memoryKey{e.UserID, e.Category}
	r.entries[k] = append(r.entries[k], e)
	return nil
}

func (r *memoryRepository) List(_ context.Context, userID string, category Category) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.entries[memoryKey{userID, category}]
	out := make([]Entry, len(src))
	copy(out, src)
	return out, nil
}

func (r *memoryRepository) Delete(_ context.Context, userID string, category Category, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := memoryKey{userID, category}
	for i, e := range r.entries[k] {
		if e.ID == id {
			r.entries[k] = append(r.entries[k][:i:i], r.entries[k][i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (r *memoryRepository) Count(_ context.Context, userID string, category Category) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries[memoryKey{userID, category}]), nil
}
