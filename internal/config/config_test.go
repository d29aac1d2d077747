package config

import (
	"net/http"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AppPort != 8000 {
		t.Fatalf("expected default port 8000, got %d", cfg.AppPort)
	}
	if cfg.Store != StorePostgres || cfg.ObjectStore.Driver != DriverS3 {
		t.Fatalf("unexpected defaults: store=%q driver=%q", cfg.Store, cfg.ObjectStore.Driver)
	}
	if cfg.Auth.AccessTTL != 15*time.Minute || cfg.Auth.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("unexpected token lifetimes: %+v", cfg.Auth)
	}
	if !cfg.Cookie.HTTPOnly || !cfg.Cookie.Secure || cfg.Cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("unexpected cookie defaults: %+v", cfg.Cookie)
	}
	if cfg.Upload.MaxFileBytes != 30<<20 {
		t.Fatalf("expected 30MiB upload limit, got %d", cfg.Upload.MaxFileBytes)
	}
	if cfg.Projection.WatchHistoryLimit != 100 {
		t.Fatalf("expected watch history limit 100, got %d", cfg.Projection.WatchHistoryLimit)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VIDEOTUBE_PORT", "9090")
	t.Setenv("VIDEOTUBE_STORE", "MEMORY")
	t.Setenv("VIDEOTUBE_STORAGE_DRIVER", "minio")
	t.Setenv("VIDEOTUBE_STORAGE_ENDPOINT", "localhost:9000")
	t.Setenv("VIDEOTUBE_STORAGE_USE_SSL", "false")
	t.Setenv("VIDEOTUBE_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("VIDEOTUBE_JANITOR_WORKERS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AppPort != 9090 {
		t.Fatalf("expected port override, got %d", cfg.AppPort)
	}
	if cfg.Store != StoreMemory {
		t.Fatalf("expected memory store, got %q", cfg.Store)
	}
	if cfg.ObjectStore.Driver != DriverMinio || cfg.ObjectStore.UseSSL {
		t.Fatalf("unexpected object store: %+v", cfg.ObjectStore)
	}
	if cfg.Auth.AccessTTL != 5*time.Minute {
		t.Fatalf("expected access ttl override, got %s", cfg.Auth.AccessTTL)
	}
	if cfg.Janitor.Workers != 2 {
		t.Fatalf("expected malformed value to fall back, got %d", cfg.Janitor.Workers)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Store:       StoreMemory,
		ObjectStore: ObjectStoreConfig{Driver: DriverS3},
		Upload:      UploadConfig{MaxFileBytes: 1},
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "sqlite" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.ObjectStore.Driver = "gcs" }, wantErr: true},
		{name: "minio without endpoint", mutate: func(c *Config) { c.ObjectStore.Driver = DriverMinio }, wantErr: true},
		{name: "production without secrets", mutate: func(c *Config) { c.Env = "production" }, wantErr: true},
		{name: "production with secrets", mutate: func(c *Config) {
			c.Env = "production"
			c.Auth.AccessSecret = "a"
			c.Auth.RefreshSecret = "r"
		}},
		{name: "zero upload limit", mutate: func(c *Config) { c.Upload.MaxFileBytes = 0 }, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
