// Package logger defines the small logging interface the other packages accept,
// and a log/slog backed implementation for the CLI.
package logger

// Logger defines the interface for logging messages.
// Messages are printf-style format strings.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Noop returns a do-nothing Logger (null object pattern).
func Noop() Logger { return noopLogger{} }

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
