// Package logger writes gitid's diagnostic log. User-facing output does not
// go through here; commands print that directly.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Logger is a slog.Logger tagged with a per-process run id, so every line
// written during one hook invocation can be grouped.
type Logger struct {
	*slog.Logger
	RunID string
	file  *os.File
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		RunID:  uuid.NewString(),
	}
}

// New creates a Logger appending to path at the given level. When enabled
// is false the Logger discards everything.
func New(enabled bool, path, level string) (*Logger, error) {
	if !enabled {
		return Discard(), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) //nolint:gosec // G304: path from user config
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	l := NewWithWriter(f, ParseLevel(level))
	l.file = f
	return l, nil
}

// NewWithWriter creates a Logger writing text records to w.
func NewWithWriter(w io.Writer, level slog.Level) *Logger {
	runID := uuid.NewString()
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{
		Logger: slog.New(handler).With("run", runID),
		RunID:  runID,
	}
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
