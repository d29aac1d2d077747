package repositories

import (
	"context"

	"github.com/videotube/backend/internal/models"
)

// LikeRepository exposes data access for like join records.
type LikeRepository interface {
	Exists(ctx context.Context, likedBy string, target models.LikeTarget) (bool, error)
	// Create returns ErrConflict when the user already likes the target.
	Create(ctx context.Context, like models.Like) error
	// Delete returns ErrNotFound when there was nothing to remove.
	Delete(ctx context.Context, likedBy string, target models.LikeTarget) error
	CountByTarget(ctx context.Context, target models.LikeTarget) (int, error)
}
