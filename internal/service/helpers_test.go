package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/media"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/relations"
	"github.com/videotube/backend/internal/repositories"
)

type recordingJanitor struct {
	mu        sync.Mutex
	discarded []string
}

func (j *recordingJanitor) Discard(_ context.Context, storageIDs ...string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, id := range storageIDs {
		if id != "" {
			j.discarded = append(j.discarded, id)
		}
	}
	return nil
}

func (j *recordingJanitor) ids() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.discarded...)
}

type stubProber struct {
	seconds float64
	err     error
}

func (p stubProber) Duration(context.Context, string) (float64, error) {
	return p.seconds, p.err
}

type env struct {
	store      *repositories.MemoryStore
	objects    *media.MemoryStore
	janitor    *recordingJanitor
	sessions   *auth.Manager
	resolver   *relations.Resolver
	accounts   *AccountService
	videos     *VideoService
	comments   *CommentService
	playlists  *PlaylistService
	engagement *EngagementService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := repositories.NewMemoryStore()
	objects := media.NewMemoryStore("https://cdn.test")
	janitor := &recordingJanitor{}
	sessions := auth.NewManager(auth.Options{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}, repositories.NewUserSessionStore(store.Users()))

	clock := Clock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) })

	return &env{
		store:    store,
		objects:  objects,
		janitor:  janitor,
		sessions: sessions,
		resolver: relations.NewResolver(store.Subscriptions(), store.Likes()),
		accounts: &AccountService{
			Users:    store.Users(),
			Sessions: sessions,
			Media:    objects,
			Janitor:  janitor,
			Now:      clock,
			HashCost: bcrypt.MinCost,
		},
		videos: &VideoService{
			Videos:       store.Videos(),
			Users:        store.Users(),
			Media:        objects,
			Janitor:      janitor,
			Prober:       stubProber{seconds: 61.5},
			Now:          clock,
			HistoryLimit: 3,
		},
		comments: &CommentService{Comments: store.Comments(), Videos: store.Videos(), Now: clock},
		playlists: &PlaylistService{
			Playlists: store.Playlists(),
			Videos:    store.Videos(),
			Now:       clock,
		},
		engagement: &EngagementService{
			Users:         store.Users(),
			Videos:        store.Videos(),
			Comments:      store.Comments(),
			Likes:         store.Likes(),
			Subscriptions: store.Subscriptions(),
			Now:           clock,
		},
	}
}

// stage writes a throwaway file the way the upload stager would.
func stage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("content of "+name), 0o600); err != nil {
		t.Fatalf("stage %s: %v", name, err)
	}
	return path
}

func assertRemoved(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("expected staged file %s to be removed (stat err = %v)", p, err)
		}
	}
}

func (e *env) register(t *testing.T, username string) models.User {
	t.Helper()
	user, err := e.accounts.Register(context.Background(), RegisterInput{
		Username:   username,
		Email:      username + "@example.com",
		FullName:   "User " + username,
		Password:   "secret123",
		AvatarPath: stage(t, username+".png"),
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func (e *env) publish(t *testing.T, ownerID, title string) models.Video {
	t.Helper()
	video, err := e.videos.Publish(context.Background(), ownerID, PublishVideoInput{
		Title:         title,
		VideoPath:     stage(t, "clip.mp4"),
		ThumbnailPath: stage(t, "thumb.jpg"),
	})
	if err != nil {
		t.Fatalf("publish %s: %v", title, err)
	}
	return video
}
