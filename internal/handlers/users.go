package handlers

import (
	"context"
	"net/http"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/config"
	"github.com/videotube/backend/internal/media"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/projections"
	"github.com/videotube/backend/internal/service"
)

// UserHandler implements the account and channel endpoints.
type UserHandler struct {
	Accounts Accounts
	Views    Views
	Stager   Stager
	Cookies  config.CookieConfig
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User         *projections.Account `json:"user,omitempty"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	FullName *string `json:"fullName"`
}

// Register handles POST /api/v1/users/register.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	upload, err := parseUpload(w, r, h.Stager,
		fileField{name: "avatar", category: media.CategoryImages},
		fileField{name: "coverImage", category: media.CategoryImages},
	)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	user, err := h.Accounts.Register(ctx, service.RegisterInput{
		Username:   upload.value("username"),
		Email:      upload.value("email"),
		FullName:   upload.value("fullName"),
		Password:   upload.value("password"),
		AvatarPath: upload.path("avatar"),
		CoverPath:  upload.path("coverImage"),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusCreated, "user registered successfully", projections.AccountView(user))
}

// Login handles POST /api/v1/users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	user, tokens, err := h.Accounts.Login(ctx, service.LoginInput(req))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	account := projections.AccountView(user)
	setSessionCookies(w, h.Cookies, tokens)
	respond(ctx, w, http.StatusOK, "user logged in successfully", sessionResponse{
		User:         &account,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Logout handles POST /api/v1/users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Accounts.Logout(ctx, auth.UserIDFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}
	clearSessionCookies(w, h.Cookies)
	respond(ctx, w, http.StatusOK, "user logged out", nil)
}

// RefreshToken handles POST /api/v1/users/refresh-token. The token is read
// from the refresh cookie or, failing that, the JSON body.
func (h UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var token string
	if cookie, err := r.Cookie(refreshCookie); err == nil {
		token = cookie.Value
	}
	if token == "" && r.ContentLength != 0 {
		var req refreshRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(ctx, w, err)
			return
		}
		token = req.RefreshToken
	}

	tokens, err := h.Accounts.Refresh(ctx, token)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	setSessionCookies(w, h.Cookies, tokens)
	respond(ctx, w, http.StatusOK, "access token refreshed", sessionResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// ChangePassword handles POST /api/v1/users/reset-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.Accounts.ChangePassword(ctx, auth.UserIDFromContext(ctx), service.ChangePasswordInput(req)); err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusOK, "password changed successfully", nil)
}

// Me handles GET /api/v1/users/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, err := h.Views.BuildAccount(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusOK, "current user fetched successfully", account)
}

// UpdateProfile handles PATCH /api/v1/users/update-profile.
func (h UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	user, err := h.Accounts.UpdateProfile(ctx, auth.UserIDFromContext(ctx), service.UpdateProfileInput(req))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusOK, "account details updated successfully", projections.AccountView(user))
}

// UpdateAvatar handles PUT /api/v1/users/update-avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", "avatar updated successfully", Accounts.ReplaceAvatar)
}

// UpdateCover handles PUT /api/v1/users/update-cover.
func (h UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", "cover image updated successfully", Accounts.ReplaceCover)
}

type replaceFunc func(a Accounts, ctx context.Context, userID, stagedPath string) (models.User, error)

func (h UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field, message string, replace replaceFunc) {
	ctx := r.Context()
	upload, err := parseUpload(w, r, h.Stager, fileField{name: field, category: media.CategoryImages})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	user, err := replace(h.Accounts, ctx, auth.UserIDFromContext(ctx), upload.path(field))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusOK, message, projections.AccountView(user))
}

// Channel handles GET /api/v1/users/channel/{username}.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := h.Views.BuildChannelProfile(ctx, r.PathValue("username"), auth.UserIDFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusOK, "channel fetched successfully", profile)
}

// History handles GET /api/v1/users/history.
func (h UserHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)
	if wantsPage(r) {
		respondPage(ctx, w, "watch history fetched successfully", h.Views.WatchHistoryQuery(userID), pageParams(r))
		return
	}
	history, err := h.Views.BuildWatchHistory(ctx, userID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusOK, "watch history fetched successfully", history)
}
