package repositories

import (
	"context"

	"github.com/videotube/backend/internal/models"
)

// SubscriptionRepository exposes data access for channel subscriptions.
type SubscriptionRepository interface {
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)
	// Create returns ErrConflict when the subscription already exists.
	Create(ctx context.Context, sub models.Subscription) error
	// Delete returns ErrNotFound when there was nothing to remove.
	Delete(ctx context.Context, subscriberID, channelID string) error
	CountByChannel(ctx context.Context, channelID string) (int, error)
	CountBySubscriber(ctx context.Context, subscriberID string) (int, error)
	// ListBySubscriber returns the subscriber's subscriptions, newest first.
	ListBySubscriber(ctx context.Context, subscriberID string, offset, limit int) ([]models.Subscription, error)
}
