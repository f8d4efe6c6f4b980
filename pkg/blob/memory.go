package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStorage implements Storage in memory for testing and local development.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStorage creates a new in-memory blob storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		blobs: make(map[string][]byte),
	}
}

// Write stores data at path, overwriting any previous content.
func (s *MemoryStorage) Write(ctx context.Context, path string, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Clone to prevent external modifications
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.blobs[path] = buf
	s.mu.Unlock()
	return nil
}

// Open returns a reader over the content stored at path.
func (s *MemoryStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	data, exists := s.blobs[path]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Exists reports whether content is stored at path.
func (s *MemoryStorage) Exists(ctx context.Context, path string) bool {
	s.mu.RLock()
	_, exists := s.blobs[path]
	s.mu.RUnlock()
	return exists
}
