package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/apperr"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/media"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

// DefaultWatchHistoryLimit caps the entries kept in a user's watch history.
const DefaultWatchHistoryLimit = 100

// VideoService implements publishing and maintenance of uploaded videos.
type VideoService struct {
	Videos  repositories.VideoRepository
	Users   repositories.UserRepository
	Media   media.Store
	Janitor Discarder
	Prober  DurationProber
	Now     Clock
	// HistoryLimit caps watch history entries; zero means DefaultWatchHistoryLimit.
	HistoryLimit int
}

// Publish uploads the staged video and thumbnail and records the video.
func (s *VideoService) Publish(ctx context.Context, ownerID string, in PublishVideoInput) (video models.Video, err error) {
	defer media.RemoveStaged(ctx, in.VideoPath, in.ThumbnailPath)

	ctx, span := logging.StartSpan(ctx, "video.publish")
	defer func() { span.End(err) }()

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := in.Validate(); err != nil {
		return models.Video{}, err
	}

	duration := s.probe(ctx, in.VideoPath)

	file, err := s.Media.Store(ctx, in.VideoPath, media.CategoryVideos)
	if err != nil {
		return models.Video{}, apperr.Upstream("upload video file", err)
	}
	thumbnail, err := s.Media.Store(ctx, in.ThumbnailPath, media.CategoryImages)
	if err != nil {
		discardMedia(ctx, s.Janitor, file.StorageID)
		return models.Video{}, apperr.Upstream("upload thumbnail", err)
	}

	now := s.Now.now()
	video = models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Video:       file,
		Thumbnail:   thumbnail,
		Title:       in.Title,
		Description: in.Description,
		Duration:    duration,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Videos.Create(ctx, video); err != nil {
		discardMedia(ctx, s.Janitor, file.StorageID, thumbnail.StorageID)
		return models.Video{}, storeError(err, "owner not found", "create video")
	}

	logging.FromContext(ctx).Info("video published", slog.String("video_id", video.ID), slog.Float64("duration", duration))
	return video, nil
}

func (s *VideoService) probe(ctx context.Context, path string) float64 {
	if s.Prober == nil {
		return 0
	}
	seconds, err := s.Prober.Duration(ctx, path)
	if err != nil {
		logging.FromContext(ctx).Warn("probe video duration", slog.Any("error", err))
		return 0
	}
	return seconds
}

// Update edits title or description. Only the owner may edit.
func (s *VideoService) Update(ctx context.Context, actorID, videoID string, in UpdateVideoInput) (models.Video, error) {
	if in.Title != nil {
		v := strings.TrimSpace(*in.Title)
		in.Title = &v
	}
	if in.Description != nil {
		v := strings.TrimSpace(*in.Description)
		in.Description = &v
	}
	if err := in.Validate(); err != nil {
		return models.Video{}, err
	}

	video, err := s.owned(ctx, actorID, videoID)
	if err != nil {
		return models.Video{}, err
	}
	if in.Title != nil {
		video.Title = *in.Title
	}
	if in.Description != nil {
		video.Description = *in.Description
	}
	video.UpdatedAt = s.Now.now()
	if err := s.Videos.Update(ctx, video); err != nil {
		return models.Video{}, storeError(err, "video not found", "update video")
	}
	return video, nil
}

// ReplaceThumbnail uploads a new thumbnail and discards the previous one.
func (s *VideoService) ReplaceThumbnail(ctx context.Context, actorID, videoID, stagedPath string) (models.Video, error) {
	defer media.RemoveStaged(ctx, stagedPath)

	if stagedPath == "" {
		return models.Video{}, apperr.Validation("thumbnail file is missing", apperr.FieldError{Field: "thumbnail", Message: "file is required"})
	}
	video, err := s.owned(ctx, actorID, videoID)
	if err != nil {
		return models.Video{}, err
	}

	thumbnail, err := s.Media.Store(ctx, stagedPath, media.CategoryImages)
	if err != nil {
		return models.Video{}, apperr.Upstream("upload thumbnail", err)
	}

	previous := video.Thumbnail.StorageID
	video.Thumbnail = thumbnail
	video.UpdatedAt = s.Now.now()
	if err := s.Videos.Update(ctx, video); err != nil {
		discardMedia(ctx, s.Janitor, thumbnail.StorageID)
		return models.Video{}, storeError(err, "video not found", "update video")
	}
	discardMedia(ctx, s.Janitor, previous)
	return video, nil
}

// Delete removes the video with its comments and likes, then discards its media.
func (s *VideoService) Delete(ctx context.Context, actorID, videoID string) error {
	video, err := s.owned(ctx, actorID, videoID)
	if err != nil {
		return err
	}
	if err := s.Videos.Delete(ctx, videoID); err != nil {
		return storeError(err, "video not found", "delete video")
	}
	discardMedia(ctx, s.Janitor, video.Video.StorageID, video.Thumbnail.StorageID)
	return nil
}

// RecordView counts a view and, for signed-in viewers, moves the video to the
// front of their watch history.
func (s *VideoService) RecordView(ctx context.Context, videoID, viewerID string) error {
	if err := s.Videos.IncrementViews(ctx, videoID); err != nil {
		return storeError(err, "video not found", "record view")
	}
	if viewerID == "" {
		return nil
	}
	if err := s.Users.PushWatchHistory(ctx, viewerID, videoID, s.historyLimit()); err != nil {
		return storeError(err, "user not found", "update watch history")
	}
	return nil
}

func (s *VideoService) historyLimit() int {
	if s.HistoryLimit <= 0 {
		return DefaultWatchHistoryLimit
	}
	return s.HistoryLimit
}

func (s *VideoService) owned(ctx context.Context, actorID, videoID string) (models.Video, error) {
	video, err := s.Videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Video{}, storeError(err, "video not found", "find video")
	}
	if video.OwnerID != actorID {
		return models.Video{}, apperr.Forbidden("only the owner can modify this video")
	}
	return video, nil
}
