package handlers

import (
	"net/http"
	"time"

	"github.com/videotube/backend/internal/config"
	"github.com/videotube/backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{Accounts: deps.Accounts, Views: deps.Views, Stager: deps.Stager, Cookies: deps.Cookies}
	videos := VideoHandler{Videos: deps.Videos, Views: deps.Views, Stager: deps.Stager}
	comments := CommentHandler{Comments: deps.Comments, Views: deps.Views}
	engagement := EngagementHandler{Engagement: deps.Engagement, Views: deps.Views}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Views: deps.Views}

	private := func(h http.HandlerFunc) http.Handler { return deps.Auth.RequireUser(h) }
	public := func(h http.HandlerFunc) http.Handler { return deps.Auth.OptionalUser(h) }
	limited := func(scope string, h http.HandlerFunc) http.Handler {
		return middleware.RateLimit(deps.AuthLimiter, scope, deps.RateLimitWindow)(h)
	}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.Handle("POST /api/v1/users/register", limited("register", users.Register))
	mux.Handle("POST /api/v1/users/login", limited("login", users.Login))
	mux.Handle("POST /api/v1/users/refresh-token", limited("refresh", users.RefreshToken))
	mux.Handle("POST /api/v1/users/logout", private(users.Logout))
	mux.Handle("POST /api/v1/users/reset-password", private(users.ChangePassword))
	mux.Handle("GET /api/v1/users/me", private(users.Me))
	mux.Handle("PATCH /api/v1/users/update-profile", private(users.UpdateProfile))
	mux.Handle("PUT /api/v1/users/update-avatar", private(users.UpdateAvatar))
	mux.Handle("PUT /api/v1/users/update-cover", private(users.UpdateCover))
	mux.Handle("GET /api/v1/users/channel/{username}", public(users.Channel))
	mux.Handle("GET /api/v1/users/history", private(users.History))

	mux.Handle("GET /api/v1/videos", public(videos.List))
	mux.Handle("POST /api/v1/videos", private(videos.Publish))
	mux.Handle("GET /api/v1/videos/{videoId}", public(videos.Get))
	mux.Handle("PATCH /api/v1/videos/{videoId}", private(videos.Update))
	mux.Handle("PUT /api/v1/videos/{videoId}/thumbnail", private(videos.UpdateThumbnail))
	mux.Handle("DELETE /api/v1/videos/{videoId}", private(videos.Delete))

	mux.Handle("GET /api/v1/comments/{videoId}", public(comments.List))
	mux.Handle("POST /api/v1/comments/{videoId}", private(comments.Add))
	mux.Handle("PATCH /api/v1/comments/c/{commentId}", private(comments.Update))
	mux.Handle("DELETE /api/v1/comments/c/{commentId}", private(comments.Delete))

	mux.Handle("POST /api/v1/likes/toggle/v/{videoId}", private(engagement.ToggleVideoLike))
	mux.Handle("POST /api/v1/likes/toggle/c/{commentId}", private(engagement.ToggleCommentLike))
	mux.Handle("POST /api/v1/likes/toggle/t/{tweetId}", private(engagement.ToggleTweetLike))
	mux.Handle("GET /api/v1/likes/videos", private(engagement.LikedVideos))

	mux.Handle("GET /api/v1/subscriptions", private(engagement.Subscriptions))
	mux.Handle("POST /api/v1/subscriptions/subscribe/{channelId}", private(engagement.Subscribe))
	mux.Handle("POST /api/v1/subscriptions/unsubscribe/{channelId}", private(engagement.Unsubscribe))
	mux.Handle("POST /api/v1/subscriptions/toggle/{channelId}", private(engagement.ToggleSubscription))

	mux.Handle("GET /api/v1/playlists", private(playlists.List))
	mux.Handle("POST /api/v1/playlists", private(playlists.Create))
	mux.Handle("GET /api/v1/playlists/{playlistId}", public(playlists.Get))
	mux.Handle("PATCH /api/v1/playlists/{playlistId}", private(playlists.Update))
	mux.Handle("DELETE /api/v1/playlists/{playlistId}", private(playlists.Delete))
	mux.Handle("POST /api/v1/playlists/{playlistId}/videos/{videoId}", private(playlists.AddVideo))
	mux.Handle("DELETE /api/v1/playlists/{playlistId}/videos/{videoId}", private(playlists.RemoveVideo))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts   Accounts
	Videos     Videos
	Comments   Comments
	Playlists  Playlists
	Engagement Engagement
	Views      Views
	Stager     Stager
	Auth       middleware.Authenticator
	Cookies    config.CookieConfig

	// AuthLimiter guards register, login and refresh. Nil disables limiting.
	AuthLimiter     middleware.RateLimiter
	RateLimitWindow time.Duration
}
