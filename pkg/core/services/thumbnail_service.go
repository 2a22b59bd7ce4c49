package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/ChoisMath/edutech/pkg/core/domain"
	"github.com/ChoisMath/edutech/pkg/ports"
)

var allowedThumbnailExt = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

type ThumbnailService struct {
	store    ports.ThumbnailStore
	maxBytes int64
}

func NewThumbnailService(store ports.ThumbnailStore, maxBytes int64) *ThumbnailService {
	return &ThumbnailService{store: store, maxBytes: maxBytes}
}

func (s *ThumbnailService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload checks the file type and size, then stores it under a fresh unique name.
func (s *ThumbnailService) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*domain.Thumbnail, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.ValidationError("No file selected")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	fallbackType, ok := allowedThumbnailExt[ext]
	if !ok {
		return nil, domain.ValidationError("Invalid file type. Only PNG, JPG, JPEG, GIF, WebP allowed")
	}

	// Read one byte past the ceiling so oversize files are detected without buffering them whole.
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read thumbnail: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.ValidationError("No file selected")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, domain.ValidationError(fmt.Sprintf("File size must be less than %s", FormatBytes(s.maxBytes)))
	}

	sniffed := http.DetectContentType(data)
	if !strings.HasPrefix(sniffed, "image/") {
		return nil, domain.ValidationError("Uploaded file is not an image")
	}
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = fallbackType
	}

	name := thumbnailName(filename, ext)
	publicURL, err := s.store.Put(ctx, name, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("store thumbnail %s: %w", name, err)
	}

	return &domain.Thumbnail{Filename: name, URL: publicURL}, nil
}

// thumbnailName builds "<slug-of-original>-<uuid>.<ext>", dropping the slug when
// the original name has no usable characters.
func thumbnailName(original, ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	stem := slug.Make(strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)))
	if len(stem) > 40 {
		stem = strings.Trim(stem[:40], "-")
	}
	if stem == "" {
		return id + "." + ext
	}
	return stem + "-" + id + "." + ext
}

// FormatBytes renders a byte ceiling the way upload errors mention it.
func FormatBytes(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// Ensure interface compliance
var _ ports.ThumbnailService = (*ThumbnailService)(nil)
