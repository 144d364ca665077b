// Package log configures the slog.Logger values used internally by rgbw. Loggers are discarding until To is called,
// so library consumers opt in to rgbw's diagnostics.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

const (
	ComponentKey = "component"
	ErrorKey     = "error"
)

// Error returns a slog.Attr for the provided error. The key will be ErrorKey.
func Error(e error) slog.Attr {
	return slog.Any(ErrorKey, e)
}

// swappable forwards records to whichever slog.Handler was most recently installed with To.
type swappable struct {
	current atomic.Pointer[slog.Handler]
}

func (s *swappable) load() slog.Handler {
	if h := s.current.Load(); h != nil {
		return *h
	}

	return nil
}

func (s *swappable) Enabled(ctx context.Context, level slog.Level) bool {
	h := s.load()
	return h != nil && h.Enabled(ctx, level)
}

func (s *swappable) Handle(ctx context.Context, record slog.Record) error {
	if h := s.load(); h != nil {
		return h.Handle(ctx, record)
	}

	return nil
}

// WithAttrs and WithGroup resolve lazily so loggers created before To is called still reach the new handler.
func (s *swappable) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &derived{root: s, apply: func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) }}
}

func (s *swappable) WithGroup(name string) slog.Handler {
	return &derived{root: s, apply: func(h slog.Handler) slog.Handler { return h.WithGroup(name) }}
}

type derived struct {
	root  *swappable
	apply func(slog.Handler) slog.Handler
}

func (d *derived) resolve() slog.Handler {
	h := d.root.load()
	if h == nil {
		return nil
	}

	return d.apply(h)
}

func (d *derived) Enabled(ctx context.Context, level slog.Level) bool {
	h := d.resolve()
	return h != nil && h.Enabled(ctx, level)
}

func (d *derived) Handle(ctx context.Context, record slog.Record) error {
	if h := d.resolve(); h != nil {
		return h.Handle(ctx, record)
	}

	return nil
}

func (d *derived) WithAttrs(attrs []slog.Attr) slog.Handler {
	parent := d.apply
	return &derived{root: d.root, apply: func(h slog.Handler) slog.Handler { return parent(h).WithAttrs(attrs) }}
}

func (d *derived) WithGroup(name string) slog.Handler {
	parent := d.apply
	return &derived{root: d.root, apply: func(h slog.Handler) slog.Handler { return parent(h).WithGroup(name) }}
}

var (
	_ slog.Handler = &swappable{}
	_ slog.Handler = &derived{}

	sink = &swappable{}
)

// To updates all slog.Logger objects used internally by rgbw to write logs to the provided slog.Handler, including
// loggers that were created before the call.
func To(h slog.Handler) {
	sink.current.Store(&h)
}

// ForComponent constructs a slog.Logger for the specified component (which is stored in an attribute with the key
// ComponentKey).
func ForComponent(component string) *slog.Logger {
	return slog.New(sink).With(slog.String(ComponentKey, component))
}

// ParseLevel parses one of debug, info, warn or error (case-insensitive). The empty string is treated as info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewHandler builds a slog.Handler writing to w in the specified format, either "text" (the default) or "json".
func NewHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
