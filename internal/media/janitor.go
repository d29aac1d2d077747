package media

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// JanitorConfig controls the concurrency characteristics of the janitor.
type JanitorConfig struct {
	Workers       int
	QueueSize     int
	DeleteTimeout time.Duration
}

// Janitor deletes orphaned objects in the background. Deletes are best effort:
// failures and queue overflows are logged and never retried.
type Janitor struct {
	store   Store
	logger  *slog.Logger
	timeout time.Duration

	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

var errJanitorClosed = errors.New("media janitor closed")

// NewJanitor starts the worker pool.
func NewJanitor(store Store, cfg JanitorConfig, logger *slog.Logger) *Janitor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DeleteTimeout <= 0 {
		cfg.DeleteTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &Janitor{
		store:   store,
		logger:  logger,
		timeout: cfg.DeleteTimeout,
		jobs:    make(chan string, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	j.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go j.worker()
	}
	return j
}

// Discard schedules deletion of the given objects without waiting for it.
// Empty ids are ignored. It returns an error only once the janitor is shut down.
func (j *Janitor) Discard(ctx context.Context, storageIDs ...string) error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return errJanitorClosed
	}

	for _, id := range storageIDs {
		if id == "" {
			continue
		}
		select {
		case j.jobs <- id:
		default:
			j.logger.Warn("media janitor queue full, dropping delete", "storage_id", id)
		}
	}
	return nil
}

// Shutdown stops accepting work and waits for queued deletes to drain. Workers
// still running when ctx expires are cancelled.
func (j *Janitor) Shutdown(ctx context.Context) error {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.jobs)
	}
	j.mu.Unlock()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		j.cancel()
		return ctx.Err()
	case <-done:
		j.cancel()
		return nil
	}
}

func (j *Janitor) worker() {
	defer j.wg.Done()
	for id := range j.jobs {
		j.delete(id)
	}
}

func (j *Janitor) delete(storageID string) {
	if j.store == nil {
		j.logger.Error("media janitor missing store", "storage_id", storageID)
		return
	}
	ctx, cancel := context.WithTimeout(j.ctx, j.timeout)
	defer cancel()

	if err := j.store.Delete(ctx, storageID); err != nil {
		j.logger.Error("media cleanup failed", "storage_id", storageID, "error", err)
		return
	}
	j.logger.Debug("media object removed", "storage_id", storageID)
}
