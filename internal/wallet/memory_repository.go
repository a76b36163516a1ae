package wallet

import (
	"context"
	"sync"

	"github.com/talentledger/talentledger/internal/apperr"
)

type memoryRepository struct {
	mu        sync.Mutex
	byOwner   map[string]Wallet
	max       int64
	allocated bool
}

// NewMemoryRepository constructs an in-memory store for tests and local runs.
func NewMemoryRepository() Store {
	return &memoryRepository{byOwner: make(map[string]Wallet)}
}

func (r *memoryRepository) FindByOwner(_ context.Context, ownerID string) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byOwner[ownerID]
	if !ok {
		return Wallet{}, apperr.ErrNotFound
	}
	return w, nil
}

func (r *memoryRepository) MaxPathIndex(_ context.Context) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.max, r.allocated, nil
}

func (r *memoryRepository) CreateNext(_ context.Context, ownerID string, build BuildFunc) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byOwner[ownerID]; exists {
		return Wallet{}, apperr.ErrConflict
	}
	next := int64(0)
	if r.allocated {
		next = r.max + 1
	}
	w, err := build(next)
	if err != nil {
		return Wallet{}, err
	}
	r.byOwner[ownerID] = w
	r.max, r.allocated = w.PathIndex, true
	return w, nil
}
