package faultkit

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// EnvLogLevel names the environment variable read by LevelFromEnv.
const EnvLogLevel = "FAULTKIT_LOG_LEVEL"

// Logger wraps slog.Logger with faultkit-specific context.
// This provides structured logging with consistent field names.
//
// The destination handler is shared by every copy derived from the same
// Logger and can be swapped at runtime with SetHandler.
type Logger struct {
	*slog.Logger
	sink *sink
}

// sink holds the replaceable destination and the severity threshold.
type sink struct {
	handler atomic.Pointer[slog.Handler]
	level   *slog.LevelVar
	// fallback is installed when SetHandler(nil) is called.
	fallback slog.Handler
}

func newSink(h slog.Handler, level slog.Level) *sink {
	s := &sink{level: new(slog.LevelVar)}
	s.level.Set(level)
	s.fallback = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: s.level})
	if h == nil {
		h = s.fallback
	}
	s.handler.Store(&h)
	return s
}

func newLogger(h slog.Handler, level slog.Level) *Logger {
	s := newSink(h, level)
	return &Logger{
		Logger: slog.New(&swapHandler{sink: s}),
		sink:   s,
	}
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	return newLogger(handler, slog.LevelInfo)
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	l := newLogger(nil, level)
	l.SetHandler(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l.sink.level}))
	return l
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return newLogger(nil, level)
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return newLogger(slog.NewTextHandler(io.Discard, nil), slog.Level(1000))
}

// SetHandler replaces the destination of l and of every logger derived from
// it. The last call wins. A nil handler restores the default text handler
// on stderr.
func (l *Logger) SetHandler(h slog.Handler) {
	if h == nil {
		h = l.sink.fallback
	}
	l.sink.handler.Store(&h)
}

// SetLevel sets the minimum severity and returns the previous one.
func (l *Logger) SetLevel(level slog.Level) slog.Level {
	old := l.sink.level.Level()
	l.sink.level.Set(level)
	return old
}

// Level returns the current minimum severity.
func (l *Logger) Level() slog.Level {
	return l.sink.level.Level()
}

// LevelFromEnv parses FAULTKIT_LOG_LEVEL. Accepted values are those of
// slog.Level.UnmarshalText: debug, info, warn, error, optionally with an
// offset such as "warn+2". ok is false when the variable is unset or invalid.
func LevelFromEnv() (level slog.Level, ok bool) {
	v := strings.TrimSpace(os.Getenv(EnvLogLevel))
	if v == "" {
		return slog.LevelInfo, false
	}
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo, false
	}
	return level, true
}

// With returns a Logger that includes the given attributes and shares the
// destination of l.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), sink: l.sink}
}

// WithOp adds an op field to the logger.
func (l *Logger) WithOp(op string) *Logger {
	return l.With("op", op)
}

// LogCorruption logs a completed corruption operation.
func (l *Logger) LogCorruption(ctx context.Context, r *Report) {
	if r == nil {
		return
	}
	l.InfoContext(ctx, "corruption applied",
		"op", r.Op,
		"in", r.Input,
		"out", r.Output,
		"offset", r.Region.Offset,
		"count", r.Region.Count,
		"in_size", r.InputSize,
		"out_size", r.OutputSize,
	)
}

// LogAdvisory logs a non-fatal condition at warn level.
func (l *Logger) LogAdvisory(ctx context.Context, a *Advisory) {
	if a == nil {
		return
	}
	l.WarnContext(ctx, a.Message, "op", a.Op)
}

// LogFailure logs a failed operation at error level.
func (l *Logger) LogFailure(ctx context.Context, op string, err error) {
	l.ErrorContext(ctx, "operation failed", "op", op, "error", err)
}

// swapHandler forwards records to the handler currently installed in its
// sink. Attributes and groups added through slog are replayed on top of
// whichever handler is current when a record is handled.
type swapHandler struct {
	sink *sink
	ops  []func(slog.Handler) slog.Handler
}

func (h *swapHandler) current() slog.Handler {
	cur := *h.sink.handler.Load()
	for _, op := range h.ops {
		cur = op(cur)
	}
	return cur
}

func (h *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.sink.level.Level() {
		return false
	}
	return (*h.sink.handler.Load()).Enabled(ctx, level)
}

func (h *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.current().Handle(ctx, r)
}

func (h *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h *swapHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h *swapHandler) with(op func(slog.Handler) slog.Handler) *swapHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &swapHandler{sink: h.sink, ops: append(ops, op)}
}
