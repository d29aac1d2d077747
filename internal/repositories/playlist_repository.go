package repositories

import (
	"context"

	"github.com/videotube/backend/internal/models"
)

// PlaylistRepository exposes data access for user playlists.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	// ListByOwner returns the owner's playlists, newest first.
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]models.Playlist, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
}
