package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"

	"golang.org/x/image/draw"

	"filevault/pkg/logger"
	"filevault/pkg/queue"
)

// ThumbnailTask is the payload of a thumbnail generation job.
type ThumbnailTask struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

// thumbnailWidths are the generated variants, widest first.
var thumbnailWidths = []int{500, 250, 100}

// ThumbnailHandler returns the queue handler that generates thumbnail
// variants for image entries. A missing or foreign entry fails the job; a
// non-decodable blob does too, so the retry policy decides its fate.
func (s *Service) ThumbnailHandler() queue.Handler {
	return queue.NewTaskHandler(s.generateThumbnails)
}

func (s *Service) generateThumbnails(ctx context.Context, task ThumbnailTask) error {
	if task.UserID == "" || task.FileID == "" {
		return errors.New("thumbnail task is missing userId or fileId")
	}

	entry, err := s.repo.FindByIDAndOwner(ctx, task.FileID, task.UserID)
	if err != nil {
		return fmt.Errorf("failed to load image entry %s: %w", task.FileID, err)
	}
	if !entry.IsImage() {
		return fmt.Errorf("entry %s is not an image", task.FileID)
	}

	reader, err := s.blobs.Open(ctx, entry.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to open image content: %w", err)
	}
	data, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		return fmt.Errorf("failed to read image content: %w", err)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	for _, width := range thumbnailWidths {
		thumb, err := encodeResized(src, format, width)
		if err != nil {
			return fmt.Errorf("failed to build %dpx thumbnail: %w", width, err)
		}

		path := fmt.Sprintf("%s_%d", entry.LocalPath, width)
		if err := s.blobs.Write(ctx, path, thumb); err != nil {
			return fmt.Errorf("failed to store %dpx thumbnail: %w", width, err)
		}

		s.log.InfoContext(ctx, "thumbnail generated",
			logger.FileID(entry.ID), slog.Int("width", width))
	}

	return nil
}

// encodeResized scales src down to the given width, keeping aspect ratio,
// and encodes it in its original format. Images narrower than the target
// are re-encoded at their original size.
func encodeResized(src image.Image, format string, width int) ([]byte, error) {
	bounds := src.Bounds()
	if bounds.Dx() > width {
		height := bounds.Dy() * width / bounds.Dx()
		if height < 1 {
			height = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, src); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, src, nil); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 90}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
