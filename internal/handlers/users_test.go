package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/projections"
)

func TestRegisterNormalizesAndHidesCredentials(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.register("  Alice ", "Alice@Example.com")
	expectStatus(t, rec, http.StatusCreated)

	var account projections.Account
	decodeData(t, rec, &account)
	if account.Username != "alice" || account.Email != "alice@example.com" {
		t.Fatalf("expected normalized handles, got %+v", account)
	}
	if account.CoverImage == nil || !strings.HasPrefix(account.Avatar.URL, "https://cdn.test/") {
		t.Fatalf("expected uploaded media, got %+v", account)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response leaked password: %s", rec.Body.String())
	}
	if got := len(srv.stagedFiles()); got != 0 {
		t.Fatalf("expected staged files to be removed, found %d", got)
	}
	if srv.objects.Len() != 2 {
		t.Fatalf("expected avatar and cover stored, got %d objects", srv.objects.Len())
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	srv := newTestServer(t)
	expectStatus(t, srv.register("alice", "alice@example.com"), http.StatusCreated)

	rec := srv.register("alicia", "ALICE@example.com")
	expectStatus(t, rec, http.StatusConflict)

	body := decodeBody(t, rec)
	if body.Success || body.StatusCode != http.StatusConflict || body.Errors == nil {
		t.Fatalf("unexpected error envelope: %+v", body)
	}
	if got := len(srv.stagedFiles()); got != 0 {
		t.Fatalf("expected staged files to be removed, found %d", got)
	}
	if srv.objects.Len() != 2 {
		t.Fatalf("expected no uploads for the rejected user, got %d objects", srv.objects.Len())
	}
}

func TestRegisterValidationReportsFields(t *testing.T) {
	srv := newTestServer(t)
	body, ctype := multipartBody(t, map[string]string{"username": "bob"}, nil)

	rec := srv.do(request{method: http.MethodPost, path: "/api/v1/users/register", body: body, ctype: ctype})
	expectStatus(t, rec, http.StatusBadRequest)

	resp := decodeBody(t, rec)
	fields := map[string]bool{}
	for _, e := range resp.Errors {
		fields[e["field"]] = true
	}
	for _, want := range []string{"email", "password", "avatar"} {
		if !fields[want] {
			t.Fatalf("expected field error for %s, got %+v", want, resp.Errors)
		}
	}
}

func TestRegisterRejectsUnsupportedAvatar(t *testing.T) {
	srv := newTestServer(t)
	body, ctype := multipartBody(t, map[string]string{
		"username": "carol",
		"email":    "carol@example.com",
		"fullName": "Carol C",
		"password": "secret123",
	}, map[string]string{"avatar": "carol.exe"})

	rec := srv.do(request{method: http.MethodPost, path: "/api/v1/users/register", body: body, ctype: ctype})
	expectStatus(t, rec, http.StatusBadRequest)
	if got := len(srv.stagedFiles()); got != 0 {
		t.Fatalf("expected nothing staged, found %d", got)
	}
}

func TestLoginSetsSessionCookies(t *testing.T) {
	srv := newTestServer(t)
	expectStatus(t, srv.register("dave", "dave@example.com"), http.StatusCreated)

	rec := srv.json(http.MethodPost, "/api/v1/users/login", "", map[string]string{"email": "dave@example.com", "password": "secret123"})
	expectStatus(t, rec, http.StatusOK)

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	for _, name := range []string{middleware.AccessCookie, refreshCookie} {
		c, ok := cookies[name]
		if !ok || c.Value == "" {
			t.Fatalf("expected %s cookie, got %+v", name, cookies)
		}
		if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode {
			t.Fatalf("unexpected cookie options for %s: %+v", name, c)
		}
	}

	wrong := srv.json(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "dave", "password": "nope1234"})
	expectStatus(t, wrong, http.StatusUnauthorized)

	missing := srv.json(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "nobody", "password": "secret123"})
	expectStatus(t, missing, http.StatusNotFound)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	srv := newTestServer(t)
	expectStatus(t, srv.register("erin", "erin@example.com"), http.StatusCreated)

	login := srv.json(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "erin", "password": "secret123"})
	expectStatus(t, login, http.StatusOK)
	var session sessionResponse
	decodeData(t, login, &session)

	refreshed := srv.json(http.MethodPost, "/api/v1/users/refresh-token", "", refreshRequest{RefreshToken: session.RefreshToken})
	expectStatus(t, refreshed, http.StatusOK)
	var rotated sessionResponse
	decodeData(t, refreshed, &rotated)
	if rotated.RefreshToken == "" || rotated.RefreshToken == session.RefreshToken {
		t.Fatalf("expected a rotated refresh token, got %q", rotated.RefreshToken)
	}

	reused := srv.json(http.MethodPost, "/api/v1/users/refresh-token", "", refreshRequest{RefreshToken: session.RefreshToken})
	expectStatus(t, reused, http.StatusUnauthorized)

	expectStatus(t, srv.json(http.MethodPost, "/api/v1/users/logout", rotated.AccessToken, nil), http.StatusOK)

	afterLogout := srv.json(http.MethodPost, "/api/v1/users/refresh-token", "", refreshRequest{RefreshToken: rotated.RefreshToken})
	expectStatus(t, afterLogout, http.StatusUnauthorized)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodGet, "/api/v1/users/history"},
		{http.MethodPost, "/api/v1/videos"},
		{http.MethodPost, "/api/v1/likes/toggle/v/some-video"},
		{http.MethodGet, "/api/v1/subscriptions"},
		{http.MethodPost, "/api/v1/playlists"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := srv.do(request{method: tc.method, path: tc.path})
			expectStatus(t, rec, http.StatusUnauthorized)
			body := decodeBody(t, rec)
			if body.Success || body.Message != "unauthorized request" {
				t.Fatalf("unexpected envelope: %+v", body)
			}
		})
	}

	rec := srv.do(request{method: http.MethodGet, path: "/api/v1/users/me", token: "garbage"})
	expectStatus(t, rec, http.StatusUnauthorized)
	if body := decodeBody(t, rec); body.Message != "invalid access token" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestChannelProfileIsRedactedAndViewerAware(t *testing.T) {
	srv := newTestServer(t)
	aliceID, _ := srv.signUp("alice")
	_, bobToken := srv.signUp("bob")
	srv.seedVideos(aliceID, 2)

	anon := srv.do(request{method: http.MethodGet, path: "/api/v1/users/channel/alice"})
	expectStatus(t, anon, http.StatusOK)
	raw := anon.Body.String()
	for _, forbidden := range []string{"password", "refreshToken", "watchHistory", "storageId", "email"} {
		if strings.Contains(raw, forbidden) {
			t.Fatalf("channel response leaked %s: %s", forbidden, raw)
		}
	}
	var profile projections.ChannelProfile
	decodeData(t, anon, &profile)
	if profile.IsSubscribed || profile.SubscribersCount != 0 || len(profile.Videos) != 2 {
		t.Fatalf("unexpected anonymous profile: %+v", profile)
	}

	expectStatus(t, srv.json(http.MethodPost, "/api/v1/subscriptions/subscribe/"+aliceID, bobToken, nil), http.StatusCreated)

	seen := srv.do(request{method: http.MethodGet, path: "/api/v1/users/channel/alice", token: bobToken})
	expectStatus(t, seen, http.StatusOK)
	decodeData(t, seen, &profile)
	if !profile.IsSubscribed || profile.SubscribersCount != 1 {
		t.Fatalf("expected bob subscribed, got %+v", profile)
	}

	expectStatus(t, srv.do(request{method: http.MethodGet, path: "/api/v1/users/channel/nobody"}), http.StatusNotFound)
}

func TestMeAndUpdateProfile(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.signUp("frank")

	rec := srv.json(http.MethodPatch, "/api/v1/users/update-profile", token, map[string]string{"fullName": "Frank Ocean"})
	expectStatus(t, rec, http.StatusOK)

	me := srv.do(request{method: http.MethodGet, path: "/api/v1/users/me", token: token})
	expectStatus(t, me, http.StatusOK)
	var account projections.Account
	decodeData(t, me, &account)
	if account.FullName != "Frank Ocean" || account.Username != "frank" {
		t.Fatalf("unexpected account: %+v", account)
	}

	unknown := srv.json(http.MethodPatch, "/api/v1/users/update-profile", token, map[string]string{"nickname": "x"})
	expectStatus(t, unknown, http.StatusBadRequest)
}

func TestChangePassword(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.signUp("gina")

	bad := srv.json(http.MethodPost, "/api/v1/users/reset-password", token, changePasswordRequest{OldPassword: "wrong123", NewPassword: "another123"})
	expectStatus(t, bad, http.StatusBadRequest)

	ok := srv.json(http.MethodPost, "/api/v1/users/reset-password", token, changePasswordRequest{OldPassword: "secret123", NewPassword: "another123"})
	expectStatus(t, ok, http.StatusOK)

	login := srv.json(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "gina", "password": "another123"})
	expectStatus(t, login, http.StatusOK)
}
