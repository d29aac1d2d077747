package repositories

import (
	"context"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/pagination"
)

// VideoFilter narrows video listings. Zero values match everything.
type VideoFilter struct {
	OwnerID string
	Query   string
}

// VideoSortFields lists the fields video listings can be ordered by.
var VideoSortFields = []string{"createdAt", "updatedAt", "views", "duration", "title"}

// VideoRepository exposes data access for uploaded videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindMany(ctx context.Context, ids []string) ([]models.Video, error)
	List(ctx context.Context, filter VideoFilter, order pagination.Order, offset, limit int) ([]models.Video, error)
	Count(ctx context.Context, filter VideoFilter) (int, error)
	// ListWatchHistory resolves the user's history in stored order, skipping deleted videos.
	ListWatchHistory(ctx context.Context, userID string, offset, limit int) ([]models.Video, error)
	CountWatchHistory(ctx context.Context, userID string) (int, error)
	// ListLikedBy returns videos liked by userID, most recently liked first.
	ListLikedBy(ctx context.Context, userID string, offset, limit int) ([]models.Video, error)
	CountLikedBy(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, video models.Video) error
	IncrementViews(ctx context.Context, id string) error
	// Delete removes the video along with its comments, likes and any history or playlist references.
	Delete(ctx context.Context, id string) error
}
