package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/config"
	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/handlers"
	"github.com/videotube/backend/internal/media"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/projections"
	"github.com/videotube/backend/internal/relations"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/service"
	"github.com/videotube/backend/internal/videos"
)

const (
	devAccessSecret  = "videotube-dev-access-secret"
	devRefreshSecret = "videotube-dev-refresh-secret"

	visitorTTL = 10 * time.Minute
)

// stores groups one implementation of every repository.
type stores struct {
	users         repositories.UserRepository
	videos        repositories.VideoRepository
	comments      repositories.CommentRepository
	likes         repositories.LikeRepository
	subscriptions repositories.SubscriptionRepository
	playlists     repositories.PlaylistRepository
}

func buildStores(pool db.Pool, cfg config.Config) (stores, error) {
	switch cfg.Store {
	case config.StoreMemory:
		mem := repositories.NewMemoryStore()
		return stores{
			users:         mem.Users(),
			videos:        mem.Videos(),
			comments:      mem.Comments(),
			likes:         mem.Likes(),
			subscriptions: mem.Subscriptions(),
			playlists:     mem.Playlists(),
		}, nil
	case config.StorePostgres:
		if pool == nil {
			return stores{}, errors.New("postgres store requires a connection pool")
		}
		return stores{
			users:         repositories.NewPostgresUserRepository(pool),
			videos:        repositories.NewPostgresVideoRepository(pool),
			comments:      repositories.NewPostgresCommentRepository(pool),
			likes:         repositories.NewPostgresLikeRepository(pool),
			subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
			playlists:     repositories.NewPostgresPlaylistRepository(pool),
		}, nil
	default:
		return stores{}, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func buildMediaStore(ctx context.Context, cfg config.ObjectStoreConfig) (media.Store, error) {
	switch cfg.Driver {
	case config.DriverS3:
		return media.NewS3Store(ctx, cfg)
	case config.DriverMinio:
		return media.NewMinioStore(ctx, cfg)
	case config.DriverMemory:
		return media.NewMemoryStore(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// buildRateLimiter prefers a shared Redis window so limits hold across
// replicas, and falls back to per-process token buckets.
func buildRateLimiter(ctx context.Context, cfg config.Config) (middleware.RateLimiter, func() error, error) {
	if cfg.RedisURL == "" {
		limiter := middleware.NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst, visitorTTL)
		return limiter, func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return middleware.NewRedisRateLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window), client.Close, nil
}

func authOptions(cfg config.AuthConfig, logger *slog.Logger) auth.Options {
	opts := auth.Options{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
	if opts.AccessSecret == "" || opts.RefreshSecret == "" {
		logger.Warn("token secrets not configured, using development secrets")
		if opts.AccessSecret == "" {
			opts.AccessSecret = devAccessSecret
		}
		if opts.RefreshSecret == "" {
			opts.RefreshSecret = devRefreshSecret
		}
	}
	return opts
}

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains background work and releases clients.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	st, err := buildStores(pool, cfg)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	objects, err := buildMediaStore(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("configure media storage: %w", err)
	}

	limiter, closeLimiter, err := buildRateLimiter(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	janitor := media.NewJanitor(objects, media.JanitorConfig{
		Workers:       cfg.Janitor.Workers,
		QueueSize:     cfg.Janitor.QueueSize,
		DeleteTimeout: cfg.Janitor.DeleteTimeout,
	}, logger)

	sessions := auth.NewManager(authOptions(cfg.Auth, logger), repositories.NewUserSessionStore(st.users))
	resolver := relations.NewResolver(st.subscriptions, st.likes)

	viewCfg := projections.DefaultConfig()
	if cfg.Projection.ChannelVideoLimit > 0 {
		viewCfg.ChannelVideoLimit = cfg.Projection.ChannelVideoLimit
	}
	views := projections.NewBuilder(viewCfg, projections.Stores{
		Users:         st.users,
		Videos:        st.videos,
		Comments:      st.comments,
		Subscriptions: st.subscriptions,
		Playlists:     st.playlists,
	}, resolver)

	deps := handlers.Dependencies{
		Accounts: &service.AccountService{
			Users:    st.users,
			Sessions: sessions,
			Media:    objects,
			Janitor:  janitor,
		},
		Videos: &service.VideoService{
			Videos:       st.videos,
			Users:        st.users,
			Media:        objects,
			Janitor:      janitor,
			Prober:       videos.NewFFProbe(cfg.FFProbePath, cfg.FFProbeTimeout),
			HistoryLimit: cfg.Projection.WatchHistoryLimit,
		},
		Comments:  &service.CommentService{Comments: st.comments, Videos: st.videos},
		Playlists: &service.PlaylistService{Playlists: st.playlists, Videos: st.videos},
		Engagement: &service.EngagementService{
			Users:         st.users,
			Videos:        st.videos,
			Comments:      st.comments,
			Likes:         st.likes,
			Subscriptions: st.subscriptions,
		},
		Views:           views,
		Stager:          media.NewStager(cfg.Upload.TempDir, cfg.Upload.MaxFileBytes),
		Auth:            middleware.Authenticator{Tokens: sessions},
		Cookies:         cfg.Cookie,
		AuthLimiter:     limiter,
		RateLimitWindow: cfg.RateLimit.Window,
	}

	cleanup := func(ctx context.Context) error {
		return errors.Join(janitor.Shutdown(ctx), closeLimiter())
	}
	return deps, cleanup, nil
}
