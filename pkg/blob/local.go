package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalConfig holds local filesystem storage configuration.
type LocalConfig struct {
	FolderPath string `env:"FOLDER_PATH" envDefault:"/tmp/files_manager"` // FolderPath is the directory holding all stored blobs.
}

// LocalStorage implements Storage on the local filesystem.
// All operations are confined to baseDir to prevent path traversal attacks.
// Writes go through a temp file plus rename so a partially written blob never
// becomes visible to Exists or Open.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates a local filesystem storage rooted at baseDir.
// baseDir is resolved to an absolute path and created if it doesn't exist.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	// Must resolve to absolute path for security - prevents relative path confusion
	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}

	if err := os.MkdirAll(absBaseDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	return &LocalStorage{baseDir: absBaseDir}, nil
}

// Write stores data at path, overwriting any previous content.
// The bytes are written to a temp file in the same directory and renamed into
// place, so readers either see the full content or nothing.
func (s *LocalStorage) Write(ctx context.Context, path string, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	absPath, err := s.resolvePath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	tmpPath := absPath + ".tmp." + uuid.NewString()
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrFailedToWrite, err)
	}

	if err := os.Rename(tmpPath, absPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrFailedToWrite, err)
	}

	return nil
}

// Open returns a reader over the content stored at path.
func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	absPath, err := s.resolvePath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToRead, err)
	}

	return f, nil
}

// Exists reports whether a blob is stored at path.
func (s *LocalStorage) Exists(ctx context.Context, path string) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	absPath, err := s.resolvePath(path)
	if err != nil {
		return false
	}

	info, err := os.Stat(absPath)
	return err == nil && !info.IsDir()
}

// resolvePath validates and resolves a path within the base directory.
// Ensures all resolved paths stay within baseDir bounds.
func (s *LocalStorage) resolvePath(path string) (string, error) {
	path = filepath.Clean(path)
	absPath := filepath.Join(s.baseDir, path)

	absPath, err := filepath.Abs(absPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}

	if !strings.HasPrefix(absPath, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	return absPath, nil
}
