package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l. Messages are formatted before they reach slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// New builds a slog-backed Logger writing to w.
// Level is one of debug, info, warn, error; format is text or json.
func New(w io.Writer, level, format string) (*SlogLogger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
	return NewSlogLogger(slog.New(handler)), nil
}

// ParseLevel parses a log level name.
func ParseLevel(level string) (slog.Level, error) {
	var lvl slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q: %w", level, err)
	}
	return lvl, nil
}

// Debug logs a formatted message at debug level.
func (s *SlogLogger) Debug(format string, args ...any) {
	s.l.Debug(fmt.Sprintf(format, args...))
}

// Info logs a formatted message at info level.
func (s *SlogLogger) Info(format string, args ...any) {
	s.l.Info(fmt.Sprintf(format, args...))
}

// Warn logs a formatted message at warn level.
func (s *SlogLogger) Warn(format string, args ...any) {
	s.l.Warn(fmt.Sprintf(format, args...))
}

// Error logs a formatted message at error level.
func (s *SlogLogger) Error(format string, args ...any) {
	s.l.Error(fmt.Sprintf(format, args...))
}
