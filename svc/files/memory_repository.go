package files

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for tests. Entries keep
// insertion order.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []*Entry
	byID    map[string]*Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*Entry)}
}

func (r *MemoryRepository) Insert(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	clone := *entry
	r.entries = append(r.entries, &clone)
	r.byID[clone.ID] = &clone
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *MemoryRepository) FindByIDAndOwner(_ context.Context, id, userID string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok || e.UserID != userID {
		return nil, ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *MemoryRepository) List(_ context.Context, userID, parentID string, page int64) ([]*Entry, error) {
	if page < 0 {
		page = 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*Entry, 0)
	for _, e := range r.entries {
		if e.UserID == userID && e.ParentID == parentID {
			matched = append(matched, e)
		}
	}

	start := page * PageSize
	if start >= int64(len(matched)) {
		return []*Entry{}, nil
	}
	end := start + PageSize
	if end > int64(len(matched)) {
		end = int64(len(matched))
	}

	out := make([]*Entry, 0, end-start)
	for _, e := range matched[start:end] {
		clone := *e
		out = append(out, &clone)
	}
	return out, nil
}

func (r *MemoryRepository) SetVisibility(_ context.Context, id, userID string, public bool) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok || e.UserID != userID {
		return nil, ErrNotFound
	}
	e.IsPublic = public
	clone := *e
	return &clone, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.entries)), nil
}
