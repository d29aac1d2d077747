package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/backend/internal/config"
	"github.com/videotube/backend/internal/handlers"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func testConfig() config.Config {
	return config.Config{
		Store:          config.StoreMemory,
		FFProbePath:    "ffprobe",
		FFProbeTimeout: time.Second,
		ObjectStore:    config.ObjectStoreConfig{Driver: config.DriverMemory, PublicBaseURL: "https://cdn.test"},
		Auth:           config.AuthConfig{AccessTTL: time.Minute, RefreshTTL: time.Hour},
		Cookie:         config.CookieConfig{Path: "/", HTTPOnly: true},
		RateLimit:      config.RateLimitConfig{Requests: 2, Window: time.Minute, Burst: 2},
		Janitor:        config.JanitorConfig{Workers: 1, QueueSize: 4, DeleteTimeout: time.Second},
		Upload:         config.UploadConfig{MaxFileBytes: 1 << 20},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildDependencies(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.TempDir = t.TempDir()

	deps, cleanup, err := buildDependencies(context.Background(), nil, cfg, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := cleanup(ctx); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	}()

	if deps.Accounts == nil || deps.Videos == nil || deps.Comments == nil {
		t.Fatal("expected write services to be configured")
	}
	if deps.Playlists == nil || deps.Engagement == nil {
		t.Fatal("expected playlist and engagement services to be configured")
	}
	if deps.Views == nil || deps.Stager == nil || deps.Auth.Tokens == nil {
		t.Fatal("expected views, stager and token verifier to be configured")
	}
	if deps.AuthLimiter == nil {
		t.Fatal("expected rate limiter to be configured")
	}
}

func TestBuildDependenciesPostgresNeedsPool(t *testing.T) {
	cfg := testConfig()
	cfg.Store = config.StorePostgres

	if _, _, err := buildDependencies(context.Background(), nil, cfg, discardLogger()); err == nil {
		t.Fatal("expected error without a pool")
	}

	deps, cleanup, err := buildDependencies(context.Background(), fakePool{}, cfg, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = cleanup(context.Background()) }()
	if deps.Accounts == nil {
		t.Fatal("expected account service to be configured")
	}
}

func TestBuildDependenciesRejectsBadRedisURL(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "://not-a-url"

	if _, _, err := buildDependencies(context.Background(), nil, cfg, discardLogger()); err == nil {
		t.Fatal("expected redis url error")
	}
}

func TestAuthEndpointsAreRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.TempDir = t.TempDir()

	deps, cleanup, err := buildDependencies(context.Background(), nil, cfg, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = cleanup(context.Background()) }()

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	var last int
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected third login attempt to be limited, got %d", last)
	}
}

func TestShouldRetryMigration(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: fmt.Errorf("apply: %w", context.DeadlineExceeded), want: true},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, want: true},
		{name: "syntax", err: &pgconn.PgError{Code: "42601"}, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldRetryMigration(tc.err); got != tc.want {
				t.Fatalf("shouldRetryMigration(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestRunRequiresCommand(t *testing.T) {
	if err := Run(context.Background(), nil); err == nil {
		t.Fatal("expected error without command")
	}
	if err := Run(context.Background(), []string{"dance"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}
