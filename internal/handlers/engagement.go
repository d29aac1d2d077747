package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/service"
)

// EngagementHandler implements the like and subscription endpoints.
type EngagementHandler struct {
	Engagement Engagement
	Views      Views
}

type likeResponse struct {
	Result  service.ToggleResult `json:"result"`
	IsLiked bool                 `json:"isLiked"`
}

type subscriptionResponse struct {
	Result       service.ToggleResult `json:"result"`
	IsSubscribed bool                 `json:"isSubscribed"`
}

// ToggleVideoLike handles POST /api/v1/likes/toggle/v/{videoId}.
func (h EngagementHandler) ToggleVideoLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, models.VideoTarget(r.PathValue("videoId")))
}

// ToggleCommentLike handles POST /api/v1/likes/toggle/c/{commentId}.
func (h EngagementHandler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, models.CommentTarget(r.PathValue("commentId")))
}

// ToggleTweetLike handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h EngagementHandler) ToggleTweetLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, models.TweetTarget(r.PathValue("tweetId")))
}

func (h EngagementHandler) toggleLike(w http.ResponseWriter, r *http.Request, target models.LikeTarget) {
	ctx := r.Context()
	result, err := h.Engagement.ToggleLike(ctx, auth.UserIDFromContext(ctx), target)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	message := "like added"
	if !result.Active() {
		message = "like removed"
	}
	respond(ctx, w, http.StatusOK, message, likeResponse{Result: result, IsLiked: result.Active()})
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h EngagementHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)
	if wantsPage(r) {
		respondPage(ctx, w, "liked videos fetched successfully", h.Views.LikedVideosQuery(userID), pageParams(r))
		return
	}
	feed, err := h.Views.BuildLikedVideoFeed(ctx, userID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusOK, "liked videos fetched successfully", feed)
}

// Subscribe handles POST /api/v1/subscriptions/subscribe/{channelId}.
func (h EngagementHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Engagement.Subscribe(ctx, auth.UserIDFromContext(ctx), r.PathValue("channelId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusCreated, "subscribed successfully", subscriptionResponse{Result: service.ToggleCreated, IsSubscribed: true})
}

// Unsubscribe handles POST /api/v1/subscriptions/unsubscribe/{channelId}.
func (h EngagementHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Engagement.Unsubscribe(ctx, auth.UserIDFromContext(ctx), r.PathValue("channelId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusOK, "unsubscribed successfully", subscriptionResponse{Result: service.ToggleRemoved})
}

// ToggleSubscription handles POST /api/v1/subscriptions/toggle/{channelId}.
func (h EngagementHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.Engagement.ToggleSubscription(ctx, auth.UserIDFromContext(ctx), r.PathValue("channelId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	message := "subscribed successfully"
	if !result.Active() {
		message = "unsubscribed successfully"
	}
	respond(ctx, w, http.StatusOK, message, subscriptionResponse{Result: result, IsSubscribed: result.Active()})
}

// Subscriptions handles GET /api/v1/subscriptions.
func (h EngagementHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondPage(ctx, w, "subscriptions fetched successfully", h.Views.SubscriptionsQuery(auth.UserIDFromContext(ctx)), pageParams(r))
}
