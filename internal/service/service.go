// Package service implements the write workflows behind the HTTP surface:
// accounts, videos, comments, playlists and engagement toggles.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/videotube/backend/internal/apperr"
	"github.com/videotube/backend/internal/repositories"
)

// Discarder schedules best-effort deletion of stored media objects.
type Discarder interface {
	Discard(ctx context.Context, storageIDs ...string) error
}

// DurationProber reads the playback length of a staged video file.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// storeError classifies a repository failure. Missing records become NotFound
// with the supplied message and uniqueness violations become Conflict.
func storeError(err error, notFound, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repositories.ErrConflict):
		return apperr.Conflict(op + ": already exists")
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Upstream(op, err)
}
