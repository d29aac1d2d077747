package repositories

import (
	"context"

	"github.com/videotube/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	// FindMany returns the users that exist among ids, in no particular order.
	FindMany(ctx context.Context, ids []string) ([]models.User, error)
	Update(ctx context.Context, user models.User) error
	SetRefreshTokenHash(ctx context.Context, userID, hash string) error
	// PushWatchHistory moves videoID to the front of the user's history, keeping at most limit entries.
	PushWatchHistory(ctx context.Context, userID, videoID string, limit int) error
}
