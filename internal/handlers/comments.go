package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/pagination"
	"github.com/videotube/backend/internal/repositories"
)

var defaultCommentOrder = pagination.Order{Field: "createdAt", Descending: true}

// CommentHandler implements the comment endpoints.
type CommentHandler struct {
	Comments Comments
	Views    Views
}

type commentRequest struct {
	Content string `json:"content"`
}

// List handles GET /api/v1/comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	order, err := sortOrder(r, defaultCommentOrder, repositories.CommentSortFields)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	videoID := r.PathValue("videoId")
	if err := h.Comments.RequireVideo(ctx, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}
	spec := h.Views.CommentsQuery(videoID, auth.UserIDFromContext(ctx), order)
	respondPage(ctx, w, "comments fetched successfully", spec, pageParams(r))
}

// Add handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	comment, err := h.Comments.Add(ctx, auth.UserIDFromContext(ctx), r.PathValue("videoId"), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	h.respondComment(w, r, http.StatusCreated, "comment added successfully", comment)
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	comment, err := h.Comments.Update(ctx, auth.UserIDFromContext(ctx), r.PathValue("commentId"), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	h.respondComment(w, r, http.StatusOK, "comment updated successfully", comment)
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Comments.Delete(ctx, auth.UserIDFromContext(ctx), r.PathValue("commentId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusOK, "comment deleted successfully", nil)
}

func (h CommentHandler) respondComment(w http.ResponseWriter, r *http.Request, status int, message string, comment models.Comment) {
	ctx := r.Context()
	view, err := h.Views.CommentViewOf(ctx, comment, auth.UserIDFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, status, message, view)
}
