package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/service"
)

// PlaylistHandler implements the playlist endpoints.
type PlaylistHandler struct {
	Playlists Playlists
	Views     Views
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List handles GET /api/v1/playlists, listing the caller's playlists.
func (h PlaylistHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondPage(ctx, w, "playlists fetched successfully", h.Views.PlaylistsQuery(auth.UserIDFromContext(ctx)), pageParams(r))
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	playlist, err := h.Playlists.Create(ctx, auth.UserIDFromContext(ctx), service.PlaylistInput(req))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	h.respondDetail(w, r, http.StatusCreated, "playlist created successfully", playlist.ID)
}

// Get handles GET /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respondDetail(w, r, http.StatusOK, "playlist fetched successfully", r.PathValue("playlistId"))
}

// Update handles PATCH /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	playlist, err := h.Playlists.Update(ctx, auth.UserIDFromContext(ctx), r.PathValue("playlistId"), service.PlaylistInput(req))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	h.respondDetail(w, r, http.StatusOK, "playlist updated successfully", playlist.ID)
}

// Delete handles DELETE /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Playlists.Delete(ctx, auth.UserIDFromContext(ctx), r.PathValue("playlistId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusOK, "playlist deleted successfully", nil)
}

// AddVideo handles POST /api/v1/playlists/{playlistId}/videos/{videoId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, err := h.Playlists.AddVideo(ctx, auth.UserIDFromContext(ctx), r.PathValue("playlistId"), r.PathValue("videoId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	h.respondDetail(w, r, http.StatusOK, "video added to playlist", playlist.ID)
}

// RemoveVideo handles DELETE /api/v1/playlists/{playlistId}/videos/{videoId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, err := h.Playlists.RemoveVideo(ctx, auth.UserIDFromContext(ctx), r.PathValue("playlistId"), r.PathValue("videoId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	h.respondDetail(w, r, http.StatusOK, "video removed from playlist", playlist.ID)
}

func (h PlaylistHandler) respondDetail(w http.ResponseWriter, r *http.Request, status int, message, playlistID string) {
	ctx := r.Context()
	detail, err := h.Views.BuildPlaylist(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, status, message, detail)
}
