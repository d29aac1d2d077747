package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/videotube/backend/internal/models"
)

type recordingStore struct {
	mu      sync.Mutex
	deleted []string
	fail    bool
	block   chan struct{}
}

func (s *recordingStore) Store(context.Context, string, Category) (models.MediaAsset, error) {
	return models.MediaAsset{}, errors.New("not implemented")
}

func (s *recordingStore) Delete(ctx context.Context, storageID string) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, storageID)
	if s.fail {
		return errors.New("delete failed")
	}
	return nil
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deleted)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJanitorDrainsOnShutdown(t *testing.T) {
	store := &recordingStore{}
	janitor := NewJanitor(store, JanitorConfig{Workers: 2, QueueSize: 8}, quietLogger())

	if err := janitor.Discard(context.Background(), "images/a.png", "", "videos/b.mp4"); err != nil {
		t.Fatalf("Discard returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := janitor.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if store.count() != 2 {
		t.Fatalf("expected 2 deletes, got %d", store.count())
	}
}

func TestJanitorSwallowsDeleteFailures(t *testing.T) {
	store := &recordingStore{fail: true}
	janitor := NewJanitor(store, JanitorConfig{Workers: 1, QueueSize: 4}, quietLogger())

	if err := janitor.Discard(context.Background(), "images/a.png"); err != nil {
		t.Fatalf("Discard returned error: %v", err)
	}
	if err := janitor.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if store.count() != 1 {
		t.Fatalf("expected a single attempt, got %d", store.count())
	}
}

func TestJanitorRejectsWorkAfterShutdown(t *testing.T) {
	janitor := NewJanitor(&recordingStore{}, JanitorConfig{}, quietLogger())
	if err := janitor.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if err := janitor.Discard(context.Background(), "images/a.png"); !errors.Is(err, errJanitorClosed) {
		t.Fatalf("expected errJanitorClosed, got %v", err)
	}
	if err := janitor.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown returned error: %v", err)
	}
}

func TestJanitorShutdownHonoursDeadline(t *testing.T) {
	store := &recordingStore{block: make(chan struct{})}
	janitor := NewJanitor(store, JanitorConfig{Workers: 1, QueueSize: 4, DeleteTimeout: time.Minute}, quietLogger())

	if err := janitor.Discard(context.Background(), "videos/slow.mp4"); err != nil {
		t.Fatalf("Discard returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := janitor.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
