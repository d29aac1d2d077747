package handlers

import (
	"context"
	"mime/multipart"

	"github.com/videotube/backend/internal/media"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/pagination"
	"github.com/videotube/backend/internal/projections"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/service"
)

// Accounts captures the account workflows used by the user handlers.
type Accounts interface {
	Register(ctx context.Context, in service.RegisterInput) (models.User, error)
	Login(ctx context.Context, in service.LoginInput) (models.User, models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	ChangePassword(ctx context.Context, userID string, in service.ChangePasswordInput) error
	UpdateProfile(ctx context.Context, userID string, in service.UpdateProfileInput) (models.User, error)
	ReplaceAvatar(ctx context.Context, userID, stagedPath string) (models.User, error)
	ReplaceCover(ctx context.Context, userID, stagedPath string) (models.User, error)
}

// Videos captures the video write workflows.
type Videos interface {
	Publish(ctx context.Context, ownerID string, in service.PublishVideoInput) (models.Video, error)
	Update(ctx context.Context, actorID, videoID string, in service.UpdateVideoInput) (models.Video, error)
	ReplaceThumbnail(ctx context.Context, actorID, videoID, stagedPath string) (models.Video, error)
	Delete(ctx context.Context, actorID, videoID string) error
	RecordView(ctx context.Context, videoID, viewerID string) error
}

// Comments captures comment authoring.
type Comments interface {
	RequireVideo(ctx context.Context, videoID string) error
	Add(ctx context.Context, actorID, videoID, content string) (models.Comment, error)
	Update(ctx context.Context, actorID, commentID, content string) (models.Comment, error)
	Delete(ctx context.Context, actorID, commentID string) error
}

// Playlists captures playlist curation.
type Playlists interface {
	Create(ctx context.Context, ownerID string, in service.PlaylistInput) (models.Playlist, error)
	Update(ctx context.Context, actorID, playlistID string, in service.PlaylistInput) (models.Playlist, error)
	Delete(ctx context.Context, actorID, playlistID string) error
	AddVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error)
	RemoveVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error)
}

// Engagement captures likes and subscriptions.
type Engagement interface {
	ToggleLike(ctx context.Context, actorID string, target models.LikeTarget) (service.ToggleResult, error)
	Subscribe(ctx context.Context, subscriberID, channelID string) error
	Unsubscribe(ctx context.Context, subscriberID, channelID string) error
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (service.ToggleResult, error)
}

// Views produces the read documents.
type Views interface {
	BuildChannelProfile(ctx context.Context, username, viewerID string) (projections.ChannelProfile, error)
	BuildVideoDetail(ctx context.Context, videoID, viewerID string) (projections.VideoDetail, error)
	BuildAccount(ctx context.Context, userID string) (projections.Account, error)
	BuildWatchHistory(ctx context.Context, userID string) ([]projections.VideoSummary, error)
	BuildLikedVideoFeed(ctx context.Context, userID string) ([]projections.VideoSummary, error)
	BuildPlaylist(ctx context.Context, playlistID string) (projections.PlaylistDetail, error)
	CommentViewOf(ctx context.Context, comment models.Comment, viewerID string) (projections.CommentView, error)
	WatchHistoryQuery(userID string) pagination.Spec[projections.VideoSummary]
	LikedVideosQuery(userID string) pagination.Spec[projections.VideoSummary]
	VideosQuery(filter repositories.VideoFilter, order pagination.Order) pagination.Spec[projections.VideoSummary]
	CommentsQuery(videoID, viewerID string, order pagination.Order) pagination.Spec[projections.CommentView]
	SubscriptionsQuery(subscriberID string) pagination.Spec[projections.SubscribedChannel]
	PlaylistsQuery(ownerID string) pagination.Spec[projections.PlaylistSummary]
}

// Stager copies an upload to local disk after checking its type and size.
type Stager interface {
	Stage(header *multipart.FileHeader, want media.Category) (string, error)
	MaxBytes() int64
}
