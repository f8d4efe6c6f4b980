package files

import "context"

// PageSize is the fixed number of entries per listing page.
const PageSize = 20

// Repository persists file tree entries.
type Repository interface {
	// Insert stores a new entry and assigns its ID.
	Insert(ctx context.Context, entry *Entry) error

	// FindByID loads an entry regardless of owner. Returns ErrNotFound
	// when no entry matches.
	FindByID(ctx context.Context, id string) (*Entry, error)

	// FindByIDAndOwner loads an entry only if userID owns it. Returns
	// ErrNotFound otherwise.
	FindByIDAndOwner(ctx context.Context, id, userID string) (*Entry, error)

	// List returns one page of userID's entries under parentID, in
	// insertion order. Pages are PageSize long; out-of-range pages
	// yield an empty slice.
	List(ctx context.Context, userID, parentID string, page int64) ([]*Entry, error)

	// SetVisibility atomically updates IsPublic on an entry owned by
	// userID and returns the updated entry. Returns ErrNotFound when
	// the entry does not exist or belongs to someone else.
	SetVisibility(ctx context.Context, id, userID string, public bool) (*Entry, error)

	// Count returns the total number of entries across all users.
	Count(ctx context.Context) (int64, error)
}
