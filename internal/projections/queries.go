package projections

import (
	"context"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/pagination"
	"github.com/videotube/backend/internal/repositories"
)

// Orderings of listings whose order comes from the stored data rather than a column.
var (
	WatchHistoryOrder  = pagination.Order{Field: "watchedAt", Descending: true}
	LikedVideosOrder   = pagination.Order{Field: "likedAt", Descending: true}
	SubscriptionsOrder = pagination.Order{Field: "subscribedAt", Descending: true}
	PlaylistsOrder     = pagination.Order{Field: "createdAt", Descending: true}
)

// WatchHistoryQuery lists the user's watch history, most recent first.
func (b *Builder) WatchHistoryQuery(userID string) pagination.Spec[VideoSummary] {
	return pagination.Spec[VideoSummary]{
		Order: WatchHistoryOrder,
		Count: func(ctx context.Context) (int, error) {
			return b.stores.Videos.CountWatchHistory(ctx, userID)
		},
		Fetch: func(ctx context.Context, _ pagination.Order, offset, limit int) ([]VideoSummary, error) {
			videos, err := b.stores.Videos.ListWatchHistory(ctx, userID, offset, limit)
			if err != nil {
				return nil, err
			}
			return b.summarize(ctx, videos)
		},
	}
}

// LikedVideosQuery lists the videos the user liked, most recently liked first.
func (b *Builder) LikedVideosQuery(userID string) pagination.Spec[VideoSummary] {
	return pagination.Spec[VideoSummary]{
		Order: LikedVideosOrder,
		Count: func(ctx context.Context) (int, error) {
			return b.stores.Videos.CountLikedBy(ctx, userID)
		},
		Fetch: func(ctx context.Context, _ pagination.Order, offset, limit int) ([]VideoSummary, error) {
			videos, err := b.stores.Videos.ListLikedBy(ctx, userID, offset, limit)
			if err != nil {
				return nil, err
			}
			return b.summarize(ctx, videos)
		},
	}
}

// VideosQuery lists videos matching filter in the given order.
func (b *Builder) VideosQuery(filter repositories.VideoFilter, order pagination.Order) pagination.Spec[VideoSummary] {
	return pagination.Spec[VideoSummary]{
		Order: order,
		Count: func(ctx context.Context) (int, error) {
			return b.stores.Videos.Count(ctx, filter)
		},
		Fetch: func(ctx context.Context, order pagination.Order, offset, limit int) ([]VideoSummary, error) {
			videos, err := b.stores.Videos.List(ctx, filter, order, offset, limit)
			if err != nil {
				return nil, err
			}
			return b.summarize(ctx, videos)
		},
	}
}

// CommentsQuery lists a video's comments with authors and like facts relative to viewerID.
func (b *Builder) CommentsQuery(videoID, viewerID string, order pagination.Order) pagination.Spec[CommentView] {
	return pagination.Spec[CommentView]{
		Order: order,
		Count: func(ctx context.Context) (int, error) {
			return b.stores.Comments.CountByVideo(ctx, videoID)
		},
		Fetch: func(ctx context.Context, order pagination.Order, offset, limit int) ([]CommentView, error) {
			comments, err := b.stores.Comments.ListByVideo(ctx, videoID, order, offset, limit)
			if err != nil {
				return nil, err
			}
			return b.commentViews(ctx, comments, viewerID)
		},
	}
}

// SubscriptionsQuery lists the channels subscriberID follows, newest first.
func (b *Builder) SubscriptionsQuery(subscriberID string) pagination.Spec[SubscribedChannel] {
	return pagination.Spec[SubscribedChannel]{
		Order: SubscriptionsOrder,
		Count: func(ctx context.Context) (int, error) {
			return b.stores.Subscriptions.CountBySubscriber(ctx, subscriberID)
		},
		Fetch: func(ctx context.Context, _ pagination.Order, offset, limit int) ([]SubscribedChannel, error) {
			subs, err := b.stores.Subscriptions.ListBySubscriber(ctx, subscriberID, offset, limit)
			if err != nil {
				return nil, err
			}
			return b.subscribedChannels(ctx, subs)
		},
	}
}

// PlaylistsQuery lists the owner's playlists, newest first.
func (b *Builder) PlaylistsQuery(ownerID string) pagination.Spec[PlaylistSummary] {
	return pagination.Spec[PlaylistSummary]{
		Order: PlaylistsOrder,
		Count: func(ctx context.Context) (int, error) {
			return b.stores.Playlists.CountByOwner(ctx, ownerID)
		},
		Fetch: func(ctx context.Context, _ pagination.Order, offset, limit int) ([]PlaylistSummary, error) {
			playlists, err := b.stores.Playlists.ListByOwner(ctx, ownerID, offset, limit)
			if err != nil {
				return nil, err
			}
			views := make([]PlaylistSummary, 0, len(playlists))
			for _, p := range playlists {
				views = append(views, PlaylistView(p))
			}
			return views, nil
		},
	}
}

// CommentViewOf projects a single comment, used after writes.
func (b *Builder) CommentViewOf(ctx context.Context, comment models.Comment, viewerID string) (CommentView, error) {
	views, err := b.commentViews(ctx, []models.Comment{comment}, viewerID)
	if err != nil {
		return CommentView{}, err
	}
	return views[0], nil
}

func (b *Builder) commentViews(ctx context.Context, comments []models.Comment, viewerID string) ([]CommentView, error) {
	authorIDs := make([]string, 0, len(comments))
	targets := make([]models.LikeTarget, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.CreatedBy)
		targets = append(targets, models.CommentTarget(c.ID))
	}

	authors, err := b.usersByID(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	stats, err := b.relations.LikeStatsFor(ctx, targets, viewerID)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for i, c := range comments {
		author, ok := authors[c.CreatedBy]
		if !ok {
			author = OwnerSummary{ID: c.CreatedBy}
		}
		views = append(views, CommentView{
			ID:         c.ID,
			Content:    c.Content,
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
			Author:     author,
			LikesCount: stats[i].Likes,
			IsLiked:    stats[i].IsLiked,
		})
	}
	return views, nil
}

func (b *Builder) subscribedChannels(ctx context.Context, subs []models.Subscription) ([]SubscribedChannel, error) {
	channelIDs := make([]string, 0, len(subs))
	for _, s := range subs {
		channelIDs = append(channelIDs, s.ChannelID)
	}

	channels, err := b.usersByID(ctx, channelIDs)
	if err != nil {
		return nil, err
	}
	counts, err := b.relations.SubscriberCounts(ctx, channelIDs)
	if err != nil {
		return nil, err
	}

	views := make([]SubscribedChannel, 0, len(subs))
	for i, s := range subs {
		channel := channels[s.ChannelID]
		views = append(views, SubscribedChannel{
			ChannelID:        s.ChannelID,
			Username:         channel.Username,
			FullName:         channel.FullName,
			Avatar:           channel.Avatar,
			SubscribersCount: counts[i],
			SubscribedAt:     s.CreatedAt,
		})
	}
	return views, nil
}
