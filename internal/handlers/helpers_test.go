package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/config"
	"github.com/videotube/backend/internal/media"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/projections"
	"github.com/videotube/backend/internal/relations"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/service"
)

type nopJanitor struct{}

func (nopJanitor) Discard(context.Context, ...string) error { return nil }

type fixedProber struct{}

func (fixedProber) Duration(context.Context, string) (float64, error) { return 12.5, nil }

type testServer struct {
	t         *testing.T
	handler   http.Handler
	store     *repositories.MemoryStore
	objects   *media.MemoryStore
	stagedDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := repositories.NewMemoryStore()
	objects := media.NewMemoryStore("https://cdn.test")
	stagedDir := t.TempDir()
	sessions := auth.NewManager(auth.Options{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}, repositories.NewUserSessionStore(store.Users()))

	resolver := relations.NewResolver(store.Subscriptions(), store.Likes())
	views := projections.NewBuilder(projections.DefaultConfig(), projections.Stores{
		Users:         store.Users(),
		Videos:        store.Videos(),
		Comments:      store.Comments(),
		Subscriptions: store.Subscriptions(),
		Playlists:     store.Playlists(),
	}, resolver)

	mux := http.NewServeMux()
	RegisterRoutes(mux, Dependencies{
		Accounts: &service.AccountService{
			Users:    store.Users(),
			Sessions: sessions,
			Media:    objects,
			Janitor:  nopJanitor{},
			HashCost: bcrypt.MinCost,
		},
		Videos: &service.VideoService{
			Videos:  store.Videos(),
			Users:   store.Users(),
			Media:   objects,
			Janitor: nopJanitor{},
			Prober:  fixedProber{},
		},
		Comments:  &service.CommentService{Comments: store.Comments(), Videos: store.Videos()},
		Playlists: &service.PlaylistService{Playlists: store.Playlists(), Videos: store.Videos()},
		Engagement: &service.EngagementService{
			Users:         store.Users(),
			Videos:        store.Videos(),
			Comments:      store.Comments(),
			Likes:         store.Likes(),
			Subscriptions: store.Subscriptions(),
		},
		Views:   views,
		Stager:  media.NewStager(stagedDir, 1<<20),
		Auth:    middleware.Authenticator{Tokens: sessions},
		Cookies: config.CookieConfig{Path: "/", HTTPOnly: true, Secure: true, SameSite: http.SameSiteStrictMode, MaxAge: time.Hour},
	})

	return &testServer{t: t, handler: mux, store: store, objects: objects, stagedDir: stagedDir}
}

type request struct {
	method string
	path   string
	token  string
	body   io.Reader
	ctype  string
}

func (s *testServer) do(req request) *httptest.ResponseRecorder {
	s.t.Helper()
	r := httptest.NewRequest(req.method, req.path, req.body)
	if req.ctype != "" {
		r.Header.Set("Content-Type", req.ctype)
	}
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	return rec
}

func (s *testServer) json(method, path, token string, payload any) *httptest.ResponseRecorder {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	return s.do(request{method: method, path: path, token: token, body: body, ctype: "application/json"})
}

// multipartBody builds a form with text fields and files keyed by field name
// to file name.
func multipartBody(t *testing.T, fields, files map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for field, name := range files {
		part, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create file %s: %v", field, err)
		}
		fmt.Fprintf(part, "bytes of %s", name)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func (s *testServer) register(username, email string) *httptest.ResponseRecorder {
	s.t.Helper()
	body, ctype := multipartBody(s.t, map[string]string{
		"username": username,
		"email":    email,
		"fullName": "User " + username,
		"password": "secret123",
	}, map[string]string{"avatar": username + ".png", "coverImage": username + "-cover.jpg"})
	return s.do(request{method: http.MethodPost, path: "/api/v1/users/register", body: body, ctype: ctype})
}

// signUp registers and logs in username, returning the user id and access token.
func (s *testServer) signUp(username string) (string, string) {
	s.t.Helper()
	if rec := s.register(username, username+"@example.com"); rec.Code != http.StatusCreated {
		s.t.Fatalf("register %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	rec := s.json(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": username, "password": "secret123"})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var session sessionResponse
	decodeData(s.t, rec, &session)
	return session.User.ID, session.AccessToken
}

func (s *testServer) seedVideos(ownerID string, n int) []models.Video {
	s.t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Video, 0, n)
	for i := range n {
		video := models.Video{
			ID:        fmt.Sprintf("video-%02d", i),
			OwnerID:   ownerID,
			Title:     fmt.Sprintf("Video %02d", i),
			Video:     models.MediaAsset{URL: "https://cdn.test/v", StorageID: fmt.Sprintf("videos/%02d.mp4", i)},
			Thumbnail: models.MediaAsset{URL: "https://cdn.test/t", StorageID: fmt.Sprintf("images/%02d.jpg", i)},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.store.Videos().Create(context.Background(), video); err != nil {
			s.t.Fatalf("seed video: %v", err)
		}
		out = append(out, video)
	}
	return out
}

func (s *testServer) stagedFiles() []os.DirEntry {
	s.t.Helper()
	entries, err := os.ReadDir(s.stagedDir)
	if err != nil {
		s.t.Fatalf("read staged dir: %v", err)
	}
	return entries
}

type responseBody struct {
	StatusCode int                 `json:"statusCode"`
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       json.RawMessage     `json:"data"`
	Errors     []map[string]string `json:"errors"`
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) responseBody {
	t.Helper()
	var body responseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	body := decodeBody(t, rec)
	if err := json.Unmarshal(body.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", body.Data, err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d got %d: %s", want, rec.Code, rec.Body.String())
	}
}
