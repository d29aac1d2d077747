package service

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/apperr"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

// PlaylistService implements playlist curation. Every mutation is owner-only.
type PlaylistService struct {
	Playlists repositories.PlaylistRepository
	Videos    repositories.VideoRepository
	Now       Clock
}

// Create starts an empty playlist owned by ownerID.
func (s *PlaylistService) Create(ctx context.Context, ownerID string, in PlaylistInput) (models.Playlist, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := in.Validate(); err != nil {
		return models.Playlist{}, err
	}

	now := s.Now.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		Title:       in.Name,
		Description: in.Description,
		VideoIDs:    []string{},
		CreatedBy:   ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Playlists.Create(ctx, playlist); err != nil {
		return models.Playlist{}, storeError(err, "owner not found", "create playlist")
	}
	return playlist, nil
}

// Update renames the playlist or changes its description.
func (s *PlaylistService) Update(ctx context.Context, actorID, playlistID string, in PlaylistInput) (models.Playlist, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := in.Validate(); err != nil {
		return models.Playlist{}, err
	}
	playlist, err := s.owned(ctx, actorID, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	playlist.Title = in.Name
	playlist.Description = in.Description
	return s.save(ctx, playlist)
}

// Delete removes the playlist. The videos it referenced are untouched.
func (s *PlaylistService) Delete(ctx context.Context, actorID, playlistID string) error {
	if _, err := s.owned(ctx, actorID, playlistID); err != nil {
		return err
	}
	if err := s.Playlists.Delete(ctx, playlistID); err != nil {
		return storeError(err, "playlist not found", "delete playlist")
	}
	return nil
}

// AddVideo appends an existing video. Adding a video already present is a no-op.
func (s *PlaylistService) AddVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error) {
	playlist, err := s.owned(ctx, actorID, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	if _, err := s.Videos.FindByID(ctx, videoID); err != nil {
		return models.Playlist{}, storeError(err, "video not found", "find video")
	}
	if slices.Contains(playlist.VideoIDs, videoID) {
		return playlist, nil
	}
	playlist.VideoIDs = append(playlist.VideoIDs, videoID)
	return s.save(ctx, playlist)
}

// RemoveVideo drops a video from the playlist. Removing an absent video is a no-op.
func (s *PlaylistService) RemoveVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error) {
	playlist, err := s.owned(ctx, actorID, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	if !slices.Contains(playlist.VideoIDs, videoID) {
		return playlist, nil
	}
	playlist.VideoIDs = slices.DeleteFunc(playlist.VideoIDs, func(id string) bool { return id == videoID })
	return s.save(ctx, playlist)
}

func (s *PlaylistService) save(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	playlist.UpdatedAt = s.Now.now()
	if err := s.Playlists.Update(ctx, playlist); err != nil {
		return models.Playlist{}, storeError(err, "playlist not found", "update playlist")
	}
	return playlist, nil
}

func (s *PlaylistService) owned(ctx context.Context, actorID, playlistID string) (models.Playlist, error) {
	playlist, err := s.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		return models.Playlist{}, storeError(err, "playlist not found", "find playlist")
	}
	if playlist.CreatedBy != actorID {
		return models.Playlist{}, apperr.Forbidden("only the owner can modify this playlist")
	}
	return playlist, nil
}
