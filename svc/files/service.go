package files

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"filevault/pkg/blob"
	"filevault/pkg/logger"
	"filevault/pkg/queue"
)

// TaskEnqueuer dispatches background jobs. Satisfied by queue.Enqueuer.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) error
}

// Service implements the file tree: creation, lookup, listing, visibility,
// and content access. All reads and writes are scoped to a user identity
// resolved by the caller.
type Service struct {
	repo     Repository
	blobs    blob.Storage
	enqueuer TaskEnqueuer
	log      *slog.Logger
}

// NewService creates a files service. enqueuer may be nil, in which case
// thumbnail jobs are not dispatched.
func NewService(repo Repository, blobs blob.Storage, enqueuer TaskEnqueuer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:     repo,
		blobs:    blobs,
		enqueuer: enqueuer,
		log:      log,
	}
}

// CreateInput carries the fields of an entry creation request. Data holds
// the base64-encoded content for files and images.
type CreateInput struct {
	Name     string
	Kind     Kind
	ParentID string
	IsPublic bool
	Data     string
}

// Create validates input, stores content for files and images, and persists
// the new entry. Image creation schedules thumbnail generation as a
// background job; a dispatch failure is logged, never surfaced.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Entry, error) {
	if in.Name == "" {
		return nil, ErrMissingName
	}
	if !ValidKind(in.Kind) {
		return nil, ErrMissingType
	}
	if in.Kind != KindFolder && in.Data == "" {
		return nil, ErrMissingData
	}

	parentID := in.ParentID
	if parentID == "" {
		parentID = RootParentID
	}
	if parentID != RootParentID {
		parent, err := s.repo.FindByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if !parent.IsFolder() {
			return nil, ErrParentNotFolder
		}
	}

	entry := &Entry{
		UserID:   userID,
		Name:     in.Name,
		Kind:     in.Kind,
		ParentID: parentID,
		IsPublic: in.IsPublic,
	}

	if in.Kind != KindFolder {
		data, err := base64.StdEncoding.DecodeString(in.Data)
		if err != nil {
			return nil, ErrInvalidData
		}
		if in.Kind == KindImage && !mimetype.Detect(data).Is("image/jpeg") &&
			!mimetype.Detect(data).Is("image/png") && !mimetype.Detect(data).Is("image/gif") {
			s.log.WarnContext(ctx, "image content is not a recognized image format",
				logger.UserID(userID), slog.String("name", in.Name))
		}

		path := uuid.NewString()
		if err := s.blobs.Write(ctx, path, data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		entry.LocalPath = path
	}

	// Content is written before metadata so an entry never points at a
	// blob that does not exist.
	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, err
	}

	if entry.IsImage() && s.enqueuer != nil {
		job := ThumbnailTask{UserID: entry.UserID, FileID: entry.ID}
		if err := s.enqueuer.Enqueue(ctx, job); err != nil {
			s.log.ErrorContext(ctx, "failed to enqueue thumbnail job",
				logger.Error(err), logger.FileID(entry.ID))
		}
	}

	return entry, nil
}

// Get loads an entry owned by userID. Entries owned by other users are
// reported as not found.
func (s *Service) Get(ctx context.Context, userID, id string) (*Entry, error) {
	return s.repo.FindByIDAndOwner(ctx, id, userID)
}

// List returns one page of userID's entries under parentID. An unknown or
// foreign parent yields an empty page, not an error.
func (s *Service) List(ctx context.Context, userID, parentID string, page int64) ([]*Entry, error) {
	if parentID == "" {
		parentID = RootParentID
	}
	return s.repo.List(ctx, userID, parentID, page)
}

// Publish marks an entry owned by userID as public.
func (s *Service) Publish(ctx context.Context, userID, id string) (*Entry, error) {
	return s.repo.SetVisibility(ctx, id, userID, true)
}

// Unpublish marks an entry owned by userID as private.
func (s *Service) Unpublish(ctx context.Context, userID, id string) (*Entry, error) {
	return s.repo.SetVisibility(ctx, id, userID, false)
}

// CountEntries returns the total number of entries across all users.
func (s *Service) CountEntries(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
