package media

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/models"
)

// Category groups uploaded objects under a common key prefix.
type Category string

const (
	CategoryImages Category = "images"
	CategoryVideos Category = "videos"
)

// ErrStorageUnavailable indicates the backing object store is not configured.
var ErrStorageUnavailable = errors.New("media storage unavailable")

// Store persists staged files to object storage and removes them again.
type Store interface {
	Store(ctx context.Context, localPath string, category Category) (models.MediaAsset, error)
	Delete(ctx context.Context, storageID string) error
}

// objectKey derives a collision-free key for a staged file, keeping its extension.
func objectKey(localPath string, category Category) (string, error) {
	if strings.TrimSpace(localPath) == "" {
		return "", errors.New("media: empty path")
	}
	switch category {
	case CategoryImages, CategoryVideos:
	default:
		return "", fmt.Errorf("media: unknown category %q", category)
	}
	ext := strings.ToLower(filepath.Ext(localPath))
	return string(category) + "/" + uuid.NewString() + ext, nil
}

func contentTypeOf(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func publicURL(baseURL, key string) string {
	if baseURL == "" {
		return key
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + key
}
