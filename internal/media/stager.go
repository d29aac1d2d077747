package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/videotube/backend/internal/logging"
)

var (
	// ErrUnsupportedType indicates the upload's media type is not on the allow-list.
	ErrUnsupportedType = errors.New("unsupported media type")
	// ErrTooLarge indicates the upload exceeds the configured size limit.
	ErrTooLarge = errors.New("file too large")
)

var allowedTypes = map[string]Category{
	"image/jpeg":       CategoryImages,
	"image/jpg":        CategoryImages,
	"image/png":        CategoryImages,
	"video/mp4":        CategoryVideos,
	"video/quicktime":  CategoryVideos,
	"video/x-msvideo":  CategoryVideos,
	"video/x-matroska": CategoryVideos,
}

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
}

// Stager copies multipart uploads to a local directory after checking their
// type and size, so they can be handed to a Store.
type Stager struct {
	dir      string
	maxBytes int64
}

// NewStager stages files under dir, rejecting anything larger than maxBytes.
func NewStager(dir string, maxBytes int64) *Stager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Stager{dir: dir, maxBytes: maxBytes}
}

// MaxBytes reports the per-file size limit.
func (s *Stager) MaxBytes() int64 {
	return s.maxBytes
}

// Stage writes the upload to a temporary file and returns its path. The file
// must resolve to a type in the allow-list belonging to want.
func (s *Stager) Stage(header *multipart.FileHeader, want Category) (string, error) {
	if header == nil {
		return "", errors.New("media: missing file")
	}
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return "", fmt.Errorf("%s: %w", header.Filename, ErrTooLarge)
	}

	mediaType, ext := detectType(header)
	if got, ok := allowedTypes[mediaType]; !ok || got != want {
		return "", fmt.Errorf("%s (%s): %w", header.Filename, mediaType, ErrUnsupportedType)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.dir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}

	limit := s.maxBytes
	if limit <= 0 {
		limit = header.Size
	}
	n, copyErr := io.Copy(dst, io.LimitReader(src, limit+1))
	closeErr := dst.Close()
	switch {
	case copyErr != nil:
		err = fmt.Errorf("stage upload: %w", copyErr)
	case closeErr != nil:
		err = fmt.Errorf("stage upload: %w", closeErr)
	case n > limit:
		err = fmt.Errorf("%s: %w", header.Filename, ErrTooLarge)
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

// detectType prefers the declared Content-Type and falls back to the file extension.
func detectType(header *multipart.FileHeader) (string, string) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if declared := header.Header.Get("Content-Type"); declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
			if _, ok := allowedTypes[mediaType]; ok {
				if ext == "" {
					ext = preferredExtension(mediaType)
				}
				return mediaType, ext
			}
		}
	}
	if mediaType, ok := extensionTypes[ext]; ok {
		return mediaType, ext
	}
	return header.Header.Get("Content-Type"), ext
}

func preferredExtension(mediaType string) string {
	for ext, t := range extensionTypes {
		if t == mediaType && ext != ".jpeg" {
			return ext
		}
	}
	return ""
}

// RemoveStaged deletes staged files, logging any that cannot be removed.
// Empty paths are skipped.
func RemoveStaged(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.FromContext(ctx).Warn("remove staged file", "path", p, "error", err)
		}
	}
}
