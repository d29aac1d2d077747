// Package projections composes stored entities and relation facts into
// response-shaped documents.
package projections

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/videotube/backend/internal/apperr"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/pagination"
	"github.com/videotube/backend/internal/relations"
	"github.com/videotube/backend/internal/repositories"
)

// Config controls what the builder embeds.
type Config struct {
	// ChannelVideoLimit caps the videos embedded in a channel profile.
	ChannelVideoLimit int
	// ChannelVideoOrder orders the videos embedded in a channel profile.
	ChannelVideoOrder pagination.Order
}

// DefaultConfig embeds the 50 newest videos in channel profiles.
func DefaultConfig() Config {
	return Config{
		ChannelVideoLimit: 50,
		ChannelVideoOrder: pagination.Order{Field: "createdAt", Descending: true},
	}
}

// Stores groups the entity repositories the builder reads from.
type Stores struct {
	Users         repositories.UserRepository
	Videos        repositories.VideoRepository
	Comments      repositories.CommentRepository
	Subscriptions repositories.SubscriptionRepository
	Playlists     repositories.PlaylistRepository
}

// Builder produces view documents. It never mutates the store.
type Builder struct {
	cfg       Config
	stores    Stores
	relations *relations.Resolver
}

// NewBuilder constructs a Builder.
func NewBuilder(cfg Config, stores Stores, resolver *relations.Resolver) *Builder {
	if cfg.ChannelVideoLimit <= 0 {
		cfg.ChannelVideoLimit = DefaultConfig().ChannelVideoLimit
	}
	if cfg.ChannelVideoOrder.IsZero() {
		cfg.ChannelVideoOrder = DefaultConfig().ChannelVideoOrder
	}
	return &Builder{cfg: cfg, stores: stores, relations: resolver}
}

func notFound(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

// BuildChannelProfile resolves the channel by username and embeds its relation facts and videos.
func (b *Builder) BuildChannelProfile(ctx context.Context, username, viewerID string) (ChannelProfile, error) {
	channel, err := b.stores.Users.FindByUsername(ctx, models.NormalizeHandle(username))
	if err != nil {
		return ChannelProfile{}, notFound(err, "channel does not exist")
	}

	var (
		stats  relations.ChannelStats
		videos []models.Video
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = b.relations.ChannelStats(gctx, channel.ID, viewerID)
		return err
	})
	g.Go(func() (err error) {
		videos, err = b.stores.Videos.List(gctx, repositories.VideoFilter{OwnerID: channel.ID},
			b.cfg.ChannelVideoOrder, 0, b.cfg.ChannelVideoLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return ChannelProfile{}, fmt.Errorf("build channel profile: %w", err)
	}

	owner := ownerSummary(channel)
	summaries := make([]VideoSummary, 0, len(videos))
	for _, v := range videos {
		summaries = append(summaries, videoSummary(v, owner))
	}

	return ChannelProfile{
		ID:                        channel.ID,
		Username:                  channel.Username,
		FullName:                  channel.FullName,
		Avatar:                    mediaView(channel.Avatar),
		CoverImage:                optionalMediaView(channel.CoverImage),
		SubscribersCount:          stats.Subscribers,
		ChannelsSubscribedToCount: stats.Subscriptions,
		IsSubscribed:              stats.IsSubscribed,
		Videos:                    summaries,
		CreatedAt:                 channel.CreatedAt,
	}, nil
}

// BuildVideoDetail resolves a video with its owner block and like facts.
func (b *Builder) BuildVideoDetail(ctx context.Context, videoID, viewerID string) (VideoDetail, error) {
	video, err := b.stores.Videos.FindByID(ctx, videoID)
	if err != nil {
		return VideoDetail{}, notFound(err, "video does not exist")
	}

	var (
		owner        models.User
		subscribers  int
		isSubscribed bool
		likes        relations.LikeStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		owner, err = b.stores.Users.FindByID(gctx, video.OwnerID)
		return notFound(err, "video does not exist")
	})
	g.Go(func() (err error) {
		subscribers, err = b.relations.CountSubscribers(gctx, video.OwnerID)
		return err
	})
	g.Go(func() (err error) {
		isSubscribed, err = b.relations.IsSubscribed(gctx, video.OwnerID, viewerID)
		return err
	})
	g.Go(func() (err error) {
		likes, err = b.relations.LikeStats(gctx, models.VideoTarget(video.ID), viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return VideoDetail{}, err
		}
		return VideoDetail{}, fmt.Errorf("build video detail: %w", err)
	}

	return VideoDetail{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		VideoFile:   mediaView(video.Video),
		Thumbnail:   mediaView(video.Thumbnail),
		Duration:    video.Duration,
		Views:       video.Views,
		CreatedAt:   video.CreatedAt,
		UpdatedAt:   video.UpdatedAt,
		Owner: VideoOwner{
			ID:               owner.ID,
			Username:         owner.Username,
			FullName:         owner.FullName,
			Avatar:           mediaView(owner.Avatar),
			SubscribersCount: subscribers,
			IsSubscribed:     isSubscribed,
		},
		LikesCount: likes.Likes,
		IsLiked:    likes.IsLiked,
	}, nil
}

// BuildAccount returns the user's own profile.
func (b *Builder) BuildAccount(ctx context.Context, userID string) (Account, error) {
	user, err := b.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return Account{}, notFound(err, "user does not exist")
	}
	return AccountView(user), nil
}

// BuildWatchHistory resolves the user's whole watch history, most recent first.
func (b *Builder) BuildWatchHistory(ctx context.Context, userID string) ([]VideoSummary, error) {
	if _, err := b.stores.Users.FindByID(ctx, userID); err != nil {
		return nil, notFound(err, "user does not exist")
	}
	return pagination.All(ctx, b.WatchHistoryQuery(userID))
}

// BuildLikedVideoFeed resolves every video the user liked, most recently liked first.
func (b *Builder) BuildLikedVideoFeed(ctx context.Context, userID string) ([]VideoSummary, error) {
	if _, err := b.stores.Users.FindByID(ctx, userID); err != nil {
		return nil, notFound(err, "user does not exist")
	}
	return pagination.All(ctx, b.LikedVideosQuery(userID))
}

// BuildPlaylist resolves a playlist with its videos in playlist order.
func (b *Builder) BuildPlaylist(ctx context.Context, playlistID string) (PlaylistDetail, error) {
	playlist, err := b.stores.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		return PlaylistDetail{}, notFound(err, "playlist does not exist")
	}

	owner, err := b.stores.Users.FindByID(ctx, playlist.CreatedBy)
	if err != nil {
		return PlaylistDetail{}, notFound(err, "playlist does not exist")
	}

	videos, err := b.stores.Videos.FindMany(ctx, playlist.VideoIDs)
	if err != nil {
		return PlaylistDetail{}, fmt.Errorf("load playlist videos: %w", err)
	}

	byID := make(map[string]models.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	ordered := make([]models.Video, 0, len(playlist.VideoIDs))
	for _, id := range playlist.VideoIDs {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}

	summaries, err := b.summarize(ctx, ordered)
	if err != nil {
		return PlaylistDetail{}, err
	}

	return PlaylistDetail{
		ID:          playlist.ID,
		Title:       playlist.Title,
		Description: playlist.Description,
		Owner:       ownerSummary(owner),
		Videos:      summaries,
		VideosCount: len(summaries),
		CreatedAt:   playlist.CreatedAt,
		UpdatedAt:   playlist.UpdatedAt,
	}, nil
}

// summarize embeds owners into videos, preserving order. Videos whose owner
// no longer exists keep only the owner id.
func (b *Builder) summarize(ctx context.Context, videos []models.Video) ([]VideoSummary, error) {
	owners, err := b.ownersOf(ctx, videos)
	if err != nil {
		return nil, err
	}

	summaries := make([]VideoSummary, 0, len(videos))
	for _, v := range videos {
		owner, ok := owners[v.OwnerID]
		if !ok {
			owner = OwnerSummary{ID: v.OwnerID}
		}
		summaries = append(summaries, videoSummary(v, owner))
	}
	return summaries, nil
}

func (b *Builder) ownersOf(ctx context.Context, videos []models.Video) (map[string]OwnerSummary, error) {
	seen := make(map[string]struct{}, len(videos))
	var ids []string
	for _, v := range videos {
		if _, ok := seen[v.OwnerID]; !ok {
			seen[v.OwnerID] = struct{}{}
			ids = append(ids, v.OwnerID)
		}
	}
	return b.usersByID(ctx, ids)
}

func (b *Builder) usersByID(ctx context.Context, ids []string) (map[string]OwnerSummary, error) {
	users, err := b.stores.Users.FindMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	byID := make(map[string]OwnerSummary, len(users))
	for _, u := range users {
		byID[u.ID] = ownerSummary(u)
	}
	return byID, nil
}
