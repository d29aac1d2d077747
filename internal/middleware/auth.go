package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/logging"
)

// AccessCookie is the cookie carrying the access token.
const AccessCookie = "accessToken"

// TokenVerifier resolves an access token to the user it was issued to.
type TokenVerifier interface {
	VerifyAccess(token string) (string, error)
}

// Authenticator attaches the caller's identity to the request context.
type Authenticator struct {
	Tokens TokenVerifier
}

// RequireUser rejects requests without a valid access token with 401.
func (a Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized request")
			return
		}
		userID, err := a.Tokens.VerifyAccess(token)
		if err != nil {
			message := "invalid access token"
			if errors.Is(err, auth.ErrAccessTokenExpired) {
				message = "access token expired"
			}
			writeError(w, http.StatusUnauthorized, message)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r, userID)))
	})
}

// OptionalUser identifies the caller when a valid token is present and
// otherwise treats the request as anonymous.
func (a Authenticator) OptionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := accessToken(r); token != "" {
			if userID, err := a.Tokens.VerifyAccess(token); err == nil {
				r = r.WithContext(withUser(r, userID))
			} else {
				logging.FromContext(r.Context()).Debug("ignoring invalid access token", "error", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func withUser(r *http.Request, userID string) context.Context {
	ctx := auth.WithUserID(r.Context(), userID)
	return logging.With(ctx, "user_id", userID)
}

func accessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(AccessCookie); err == nil {
		return cookie.Value
	}
	return ""
}
