package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/media"
	"github.com/videotube/backend/internal/pagination"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/service"
)

var defaultVideoOrder = pagination.Order{Field: "createdAt", Descending: true}

// VideoHandler implements the video endpoints.
type VideoHandler struct {
	Videos Videos
	Views  Views
	Stager Stager
}

type updateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// List handles GET /api/v1/videos.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	owner := q.Get("owner")
	if owner == "" {
		owner = q.Get("userId")
	}
	filter := repositories.VideoFilter{OwnerID: owner, Query: q.Get("query")}
	order, err := sortOrder(r, defaultVideoOrder, repositories.VideoSortFields)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondPage(r.Context(), w, "videos fetched successfully", h.Views.VideosQuery(filter, order), pageParams(r))
}

// Publish handles POST /api/v1/videos.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	upload, err := parseUpload(w, r, h.Stager,
		fileField{name: "videoFile", category: media.CategoryVideos},
		fileField{name: "thumbnail", category: media.CategoryImages},
	)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	actorID := auth.UserIDFromContext(ctx)
	video, err := h.Videos.Publish(ctx, actorID, service.PublishVideoInput{
		Title:         upload.value("title"),
		Description:   upload.value("description"),
		VideoPath:     upload.path("videoFile"),
		ThumbnailPath: upload.path("thumbnail"),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	h.respondDetail(w, r, http.StatusCreated, "video published successfully", video.ID)
}

// Get handles GET /api/v1/videos/{videoId}. Each request counts as a view.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := r.PathValue("videoId")
	if err := h.Videos.RecordView(ctx, videoID, auth.UserIDFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}
	h.respondDetail(w, r, http.StatusOK, "video fetched successfully", videoID)
}

// Update handles PATCH /api/v1/videos/{videoId}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateVideoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	video, err := h.Videos.Update(ctx, auth.UserIDFromContext(ctx), r.PathValue("videoId"), service.UpdateVideoInput(req))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	h.respondDetail(w, r, http.StatusOK, "video updated successfully", video.ID)
}

// UpdateThumbnail handles PUT /api/v1/videos/{videoId}/thumbnail.
func (h VideoHandler) UpdateThumbnail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	upload, err := parseUpload(w, r, h.Stager, fileField{name: "thumbnail", category: media.CategoryImages})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	video, err := h.Videos.ReplaceThumbnail(ctx, auth.UserIDFromContext(ctx), r.PathValue("videoId"), upload.path("thumbnail"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	h.respondDetail(w, r, http.StatusOK, "thumbnail updated successfully", video.ID)
}

// Delete handles DELETE /api/v1/videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Videos.Delete(ctx, auth.UserIDFromContext(ctx), r.PathValue("videoId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusOK, "video deleted successfully", nil)
}

func (h VideoHandler) respondDetail(w http.ResponseWriter, r *http.Request, status int, message, videoID string) {
	ctx := r.Context()
	detail, err := h.Views.BuildVideoDetail(ctx, videoID, auth.UserIDFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, status, message, detail)
}
