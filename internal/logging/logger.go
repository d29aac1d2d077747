package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Options configures the root logger.
type Options struct {
	Level     string
	JSON      bool
	SentryDSN string
	Env       string
	Writer    io.Writer
}

// New builds the process logger. Records go to the writer as text or JSON, and
// error records are additionally forwarded to Sentry when a DSN is configured.
// The returned flush func drains buffered Sentry events and is safe to call always.
func New(opts Options) (*slog.Logger, func(time.Duration), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var base slog.Handler
	if opts.JSON {
		base = slog.NewJSONHandler(w, handlerOpts)
	} else {
		base = slog.NewTextHandler(w, handlerOpts)
	}

	flush := func(time.Duration) {}
	if opts.SentryDSN == "" {
		return slog.New(base), flush, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.SentryDSN,
		Environment: opts.Env,
	}); err != nil {
		return nil, nil, fmt.Errorf("init sentry: %w", err)
	}
	flush = func(timeout time.Duration) { sentry.Flush(timeout) }

	handler := slogmulti.Fanout(
		base,
		slogsentry.Option{Level: slog.LevelError}.NewSentryHandler(),
	)
	return slog.New(handler), flush, nil
}

// ParseLevel maps a configured level name onto a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}
