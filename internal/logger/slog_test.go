package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", "text")
	require.NoError(t, err)

	l.Info("synced %d words", 3)
	l.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, `msg="synced 3 words"`)
	assert.NotContains(t, out, "hidden")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "debug", "json")
	require.NoError(t, err)

	l.Warn("notepad %s", "vocab")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "notepad vocab", rec["msg"])
}

func TestNew_Invalid(t *testing.T) {
	tests := map[string]struct {
		level  string
		format string
	}{
		"bad level":  {level: "loud", format: "text"},
		"bad format": {level: "info", format: "xml"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(&bytes.Buffer{}, tc.level, tc.format)
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}

	for input, want := range tests {
		got, err := ParseLevel(input)
		require.NoError(t, err, "level %q", input)
		assert.Equal(t, want, got, "level %q", input)
	}
}

func TestSlogLogger_ImplementsLogger(t *testing.T) {
	var buf bytes.Buffer
	var l Logger = NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	l.Error("boom: %v", "x")
	assert.True(t, strings.Contains(buf.String(), "boom: x"))
}

func TestNoop(t *testing.T) {
	l := Noop()
	assert.NotPanics(t, func() {
		l.Info("x %d", 1)
		l.Warn("y")
		l.Error("z")
	})
}
