package files

import (
	"context"
	"io"
	"mime"
	"path/filepath"
)

// Content is the result of a content read: the blob stream plus the MIME
// type derived from the entry name.
type Content struct {
	Reader   io.ReadCloser
	MIMEType string
}

// OpenContent streams the content of an entry. userID is the requesting
// identity, empty for anonymous callers. Private entries are only readable
// by their owner; everyone else sees not found. size selects a thumbnail
// width (500, 250 or 100); any other value serves the original content.
func (s *Service) OpenContent(ctx context.Context, userID, id, size string) (*Content, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !entry.IsPublic && entry.UserID != userID {
		return nil, ErrNotFound
	}

	if entry.IsFolder() {
		return nil, ErrFolderNoContent
	}

	path := entry.LocalPath
	switch size {
	case "500", "250", "100":
		path = path + "_" + size
	}

	if !s.blobs.Exists(ctx, path) {
		return nil, ErrNotFound
	}

	reader, err := s.blobs.Open(ctx, path)
	if err != nil {
		return nil, ErrNotFound
	}

	mimeType := mime.TypeByExtension(filepath.Ext(entry.Name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &Content{Reader: reader, MIMEType: mimeType}, nil
}
