package handlers

import (
	"net/http"
	"time"

	"github.com/videotube/backend/internal/config"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/models"
)

const refreshCookie = "refreshToken"

func setSessionCookies(w http.ResponseWriter, cfg config.CookieConfig, tokens models.SessionTokens) {
	http.SetCookie(w, sessionCookie(cfg, middleware.AccessCookie, tokens.AccessToken, cfg.MaxAge))
	http.SetCookie(w, sessionCookie(cfg, refreshCookie, tokens.RefreshToken, cfg.MaxAge))
}

func clearSessionCookies(w http.ResponseWriter, cfg config.CookieConfig) {
	http.SetCookie(w, sessionCookie(cfg, middleware.AccessCookie, "", -1))
	http.SetCookie(w, sessionCookie(cfg, refreshCookie, "", -1))
}

func sessionCookie(cfg config.CookieConfig, name, value string, maxAge time.Duration) *http.Cookie {
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: cfg.HTTPOnly,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	}
	if maxAge < 0 {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(maxAge.Seconds())
	}
	return c
}
