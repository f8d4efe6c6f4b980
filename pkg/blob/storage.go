package blob

import (
	"context"
	"io"
)

// Storage is the byte storage backend for file content and derivatives.
// Paths are opaque keys generated by the upload pipeline; implementations must
// guarantee that a path never passes Exists until its Write fully succeeded.
type Storage interface {
	// Write stores data at path atomically, overwriting any previous content.
	Write(ctx context.Context, path string, data []byte) error
	// Open returns a reader over the content stored at path.
	// Returns ErrNotFound if nothing is stored there.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Exists reports whether content is stored at path.
	Exists(ctx context.Context, path string) bool
}
