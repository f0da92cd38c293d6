package slot

import (
	"context"
	"sync"

	"restaurant-frontend/internal/domain"
)

type memoryRepo struct {
	mu    sync.RWMutex
	slots map[string]map[string]string
}

// NewMemory returns a process-local Repository.
func NewMemory() Repository {
	return &memoryRepo{slots: make(map[string]map[string]string)}
}

func (r *memoryRepo) Get(_ context.Context, profileID, slot string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.slots[profileID][slot]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (r *memoryRepo) Put(_ context.Context, profileID, slot, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots[profileID] == nil {
		r.slots[profileID] = make(map[string]string)
	}
	r.slots[profileID][slot] = value
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, profileID, slot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots[profileID], slot)
	if len(r.slots[profileID]) == 0 {
		delete(r.slots, profileID)
	}
	return nil
}

func (r *memoryRepo) Ping(context.Context) error { return nil }
