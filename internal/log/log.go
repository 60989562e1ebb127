// Package log builds the slog loggers used by the imagegrid commands.
//
// Both commands own the terminal (one prints progress, the other draws the
// grid), so logs go to a JSON file named by config.LoggingConfig.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/imagegrid/internal/config"
)

// Open creates the log file's directory, opens the file for appending and
// returns a JSON logger writing to it. A leading "~" in the path is the
// user's home directory. The returned close func releases the file.
func Open(cfg config.LoggingConfig) (*slog.Logger, func() error, error) {
	path := cfg.File
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve log path %q: %w", cfg.File, err)
		}
		path = filepath.Join(home, rest)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, cfg.Level), f.Close, nil
}

// New returns a JSON logger writing to w. Unknown levels mean INFO.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelOf(level)}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func levelOf(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
