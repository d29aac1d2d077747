package repositories

import (
	"context"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/pagination"
)

// CommentSortFields lists the fields comment listings can be ordered by.
var CommentSortFields = []string{"createdAt", "updatedAt"}

// CommentRepository exposes data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListByVideo(ctx context.Context, videoID string, order pagination.Order, offset, limit int) ([]models.Comment, error)
	CountByVideo(ctx context.Context, videoID string) (int, error)
	Update(ctx context.Context, comment models.Comment) error
	// Delete removes the comment and the likes pointing at it.
	Delete(ctx context.Context, id string) error
}
