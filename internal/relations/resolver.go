// Package relations derives counts and viewer-relative flags from the
// subscription and like join records.
package relations

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/videotube/backend/internal/models"
)

// fanOutLimit bounds concurrent store calls for batch lookups.
const fanOutLimit = 8

// SubscriptionStore is the subset of subscription persistence the resolver reads.
type SubscriptionStore interface {
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)
	CountByChannel(ctx context.Context, channelID string) (int, error)
	CountBySubscriber(ctx context.Context, subscriberID string) (int, error)
}

// LikeStore is the subset of like persistence the resolver reads.
type LikeStore interface {
	Exists(ctx context.Context, likedBy string, target models.LikeTarget) (bool, error)
	CountByTarget(ctx context.Context, target models.LikeTarget) (int, error)
}

// ChannelStats are the relation facts shown alongside a channel.
type ChannelStats struct {
	Subscribers   int
	Subscriptions int
	IsSubscribed  bool
}

// LikeStats are the relation facts shown alongside a likeable entity.
type LikeStats struct {
	Likes   int
	IsLiked bool
}

// Resolver answers relation questions about a subject relative to an optional
// viewer. An empty viewer id is an anonymous viewer: relative flags are false.
type Resolver struct {
	subs  SubscriptionStore
	likes LikeStore
}

// NewResolver constructs a Resolver over the given join record stores.
func NewResolver(subs SubscriptionStore, likes LikeStore) *Resolver {
	return &Resolver{subs: subs, likes: likes}
}

// CountSubscribers returns how many users subscribe to channelID.
func (r *Resolver) CountSubscribers(ctx context.Context, channelID string) (int, error) {
	n, err := r.subs.CountByChannel(ctx, channelID)
	if err != nil {
		return 0, fmt.Errorf("count subscribers of %s: %w", channelID, err)
	}
	return n, nil
}

// CountSubscriptions returns how many channels subscriberID follows.
func (r *Resolver) CountSubscriptions(ctx context.Context, subscriberID string) (int, error) {
	n, err := r.subs.CountBySubscriber(ctx, subscriberID)
	if err != nil {
		return 0, fmt.Errorf("count subscriptions of %s: %w", subscriberID, err)
	}
	return n, nil
}

// IsSubscribed reports whether viewerID subscribes to channelID.
func (r *Resolver) IsSubscribed(ctx context.Context, channelID, viewerID string) (bool, error) {
	if viewerID == "" {
		return false, nil
	}
	ok, err := r.subs.Exists(ctx, viewerID, channelID)
	if err != nil {
		return false, fmt.Errorf("check subscription to %s: %w", channelID, err)
	}
	return ok, nil
}

// CountLikes returns how many users like target.
func (r *Resolver) CountLikes(ctx context.Context, target models.LikeTarget) (int, error) {
	n, err := r.likes.CountByTarget(ctx, target)
	if err != nil {
		return 0, fmt.Errorf("count likes of %s %s: %w", target.Kind, target.ID, err)
	}
	return n, nil
}

// IsLiked reports whether viewerID likes target.
func (r *Resolver) IsLiked(ctx context.Context, target models.LikeTarget, viewerID string) (bool, error) {
	if viewerID == "" {
		return false, nil
	}
	ok, err := r.likes.Exists(ctx, viewerID, target)
	if err != nil {
		return false, fmt.Errorf("check like of %s %s: %w", target.Kind, target.ID, err)
	}
	return ok, nil
}

// ChannelStats resolves all channel relation facts concurrently.
func (r *Resolver) ChannelStats(ctx context.Context, channelID, viewerID string) (ChannelStats, error) {
	var stats ChannelStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.Subscribers, err = r.CountSubscribers(gctx, channelID)
		return err
	})
	g.Go(func() (err error) {
		stats.Subscriptions, err = r.CountSubscriptions(gctx, channelID)
		return err
	})
	g.Go(func() (err error) {
		stats.IsSubscribed, err = r.IsSubscribed(gctx, channelID, viewerID)
		return err
	})

	if err := g.Wait(); err != nil {
		return ChannelStats{}, err
	}
	return stats, nil
}

// LikeStats resolves the like count and viewer flag for target concurrently.
func (r *Resolver) LikeStats(ctx context.Context, target models.LikeTarget, viewerID string) (LikeStats, error) {
	var stats LikeStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.Likes, err = r.CountLikes(gctx, target)
		return err
	})
	g.Go(func() (err error) {
		stats.IsLiked, err = r.IsLiked(gctx, target, viewerID)
		return err
	})

	if err := g.Wait(); err != nil {
		return LikeStats{}, err
	}
	return stats, nil
}

// LikeStatsFor resolves LikeStats for each target; results line up with targets.
func (r *Resolver) LikeStatsFor(ctx context.Context, targets []models.LikeTarget, viewerID string) ([]LikeStats, error) {
	results := make([]LikeStats, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)

	for i, target := range targets {
		g.Go(func() error {
			stats, err := r.LikeStats(gctx, target, viewerID)
			if err != nil {
				return err
			}
			results[i] = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SubscriberCounts resolves subscriber counts for each channel; results line up with channelIDs.
func (r *Resolver) SubscriberCounts(ctx context.Context, channelIDs []string) ([]int, error) {
	results := make([]int, len(channelIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)

	for i, id := range channelIDs {
		g.Go(func() error {
			n, err := r.CountSubscribers(gctx, id)
			if err != nil {
				return err
			}
			results[i] = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
