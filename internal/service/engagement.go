package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/apperr"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

// ToggleResult reports what a toggle did.
type ToggleResult string

const (
	ToggleCreated ToggleResult = "created"
	ToggleRemoved ToggleResult = "removed"
)

// Active reports whether the relation exists after the toggle.
func (r ToggleResult) Active() bool { return r == ToggleCreated }

// EngagementService implements likes and subscriptions.
//
// Toggles read then write without a lock. Two concurrent creates collapse into
// one through the unique index and two concurrent deletes both report removal,
// so the last writer wins.
type EngagementService struct {
	Users         repositories.UserRepository
	Videos        repositories.VideoRepository
	Comments      repositories.CommentRepository
	Likes         repositories.LikeRepository
	Subscriptions repositories.SubscriptionRepository
	Now           Clock
}

// ToggleLike likes the target if actorID has not yet, otherwise removes the like.
// Video and comment targets must exist; tweets are accepted as opaque ids.
func (s *EngagementService) ToggleLike(ctx context.Context, actorID string, target models.LikeTarget) (ToggleResult, error) {
	if !target.Kind.Valid() || target.ID == "" {
		return "", apperr.Validation("invalid like target")
	}
	if err := s.ensureTarget(ctx, target); err != nil {
		return "", err
	}

	liked, err := s.Likes.Exists(ctx, actorID, target)
	if err != nil {
		return "", apperr.Upstream("find like", err)
	}

	if liked {
		err := s.Likes.Delete(ctx, actorID, target)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return "", apperr.Upstream("delete like", err)
		}
		return ToggleRemoved, nil
	}

	err = s.Likes.Create(ctx, models.Like{
		ID:        uuid.NewString(),
		LikedBy:   actorID,
		Target:    target,
		CreatedAt: s.Now.now(),
	})
	if err != nil && !errors.Is(err, repositories.ErrConflict) {
		return "", apperr.Upstream("create like", err)
	}
	if err != nil {
		logging.FromContext(ctx).Debug("concurrent like collapsed", slog.String("target", target.ID))
	}
	return ToggleCreated, nil
}

func (s *EngagementService) ensureTarget(ctx context.Context, target models.LikeTarget) error {
	switch target.Kind {
	case models.LikeKindVideo:
		if _, err := s.Videos.FindByID(ctx, target.ID); err != nil {
			return storeError(err, "video not found", "find video")
		}
	case models.LikeKindComment:
		if _, err := s.Comments.FindByID(ctx, target.ID); err != nil {
			return storeError(err, "comment not found", "find comment")
		}
	}
	return nil
}

// Subscribe makes subscriberID follow channelID. It is a Conflict to subscribe twice.
func (s *EngagementService) Subscribe(ctx context.Context, subscriberID, channelID string) error {
	if err := s.ensureChannel(ctx, channelID); err != nil {
		return err
	}
	exists, err := s.Subscriptions.Exists(ctx, subscriberID, channelID)
	if err != nil {
		return apperr.Upstream("find subscription", err)
	}
	if exists {
		return apperr.Conflict("already subscribed to this channel")
	}
	if err := s.createSubscription(ctx, subscriberID, channelID); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return apperr.Conflict("already subscribed to this channel")
		}
		return storeError(err, "channel not found", "create subscription")
	}
	return nil
}

// Unsubscribe removes the subscription. It is NotFound when none exists.
func (s *EngagementService) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	if err := s.Subscriptions.Delete(ctx, subscriberID, channelID); err != nil {
		return storeError(err, "not subscribed to this channel", "delete subscription")
	}
	return nil
}

// ToggleSubscription flips the subscription between present and absent.
func (s *EngagementService) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (ToggleResult, error) {
	if err := s.ensureChannel(ctx, channelID); err != nil {
		return "", err
	}
	exists, err := s.Subscriptions.Exists(ctx, subscriberID, channelID)
	if err != nil {
		return "", apperr.Upstream("find subscription", err)
	}

	if exists {
		err := s.Subscriptions.Delete(ctx, subscriberID, channelID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return "", apperr.Upstream("delete subscription", err)
		}
		return ToggleRemoved, nil
	}

	err = s.createSubscription(ctx, subscriberID, channelID)
	if err != nil && !errors.Is(err, repositories.ErrConflict) {
		return "", storeError(err, "channel not found", "create subscription")
	}
	return ToggleCreated, nil
}

func (s *EngagementService) createSubscription(ctx context.Context, subscriberID, channelID string) error {
	return s.Subscriptions.Create(ctx, models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    s.Now.now(),
	})
}

func (s *EngagementService) ensureChannel(ctx context.Context, channelID string) error {
	if channelID == "" {
		return apperr.Validation("channel id is required")
	}
	if _, err := s.Users.FindByID(ctx, channelID); err != nil {
		return storeError(err, "channel not found", "find channel")
	}
	return nil
}
