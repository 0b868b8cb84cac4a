// Package logging builds the structured loggers used across lazytrim.
//
// The editor owns the terminal, so it logs to a file or nowhere. Headless
// commands log to stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultFile is used when debug logging is on and no file was given.
const DefaultFile = "lazytrim.log"

// ParseLevel maps debug, info, warn and error to a slog level. Anything else
// is info.
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

// NewLogger creates a text logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ToFile opens path for appending through bubbletea's log helper and returns
// a logger writing to it. The standard log package is redirected there too,
// so nothing reaches the terminal while the editor runs.
func ToFile(path, level string) (*slog.Logger, io.Closer, error) {
	f, err := tea.LogToFile(path, "lazytrim")
	if err != nil {
		return nil, nil, err
	}
	return NewLogger(level, f), f, nil
}

// ForEditor picks the editor's log destination: file when set, DefaultFile
// when debug is on, otherwise discarded. The closer is never nil.
func ForEditor(file, level string, debug bool) (*slog.Logger, io.Closer, error) {
	if file == "" && debug {
		file = DefaultFile
	}
	if file == "" {
		return Discard(), nopCloser{}, nil
	}
	if debug {
		level = "debug"
	}
	return ToFile(file, level)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ForCommand returns a stderr logger for headless commands.
func ForCommand(level string, debug bool) *slog.Logger {
	if debug {
		level = "debug"
	}
	return NewLogger(level, os.Stderr)
}

// WithComponent returns a logger with a component attribute.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// SanitizePath replaces the home directory with ~.
func SanitizePath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
