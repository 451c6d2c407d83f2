package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// SlogLogger is the log/slog backed Logger. Production writes JSON lines,
// every other environment the text format.
type SlogLogger struct {
	l *slog.Logger
}

// New builds a logger writing to w at the given level.
func New(w io.Writer, appEnv, level string) *SlogLogger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(appEnv, "production") {
		return &SlogLogger{l: slog.New(slog.NewJSONHandler(w, opts))}
	}
	return &SlogLogger{l: slog.New(slog.NewTextHandler(w, opts))}
}

// Discard returns a logger that drops everything.
func Discard() *SlogLogger {
	return New(io.Discard, "", "error")
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *SlogLogger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	s.l.Log(ctx, level, msg, args...)
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelDebug, msg, args)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelInfo, msg, args)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelWarn, msg, args)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelError, msg, args)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
