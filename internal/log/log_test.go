package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/imagegrid/internal/config"
)

func TestLevelOf(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := levelOf(tt.input); got != tt.want {
				t.Errorf("levelOf(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown", "batch", "b-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "shown" || entry["batch"] != "b-1" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "imagegrid.log")

	logger, closeLog, err := Open(config.LoggingConfig{File: path, Level: "info"})
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	logger.Info("hello")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("log file content = %q", data)
	}
}

func TestOpen_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, closeLog, err := Open(config.LoggingConfig{File: "~/imagegrid/app.log"})
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	defer closeLog()

	if _, err := os.Stat(filepath.Join(home, "imagegrid", "app.log")); err != nil {
		t.Errorf("log file not created under HOME: %v", err)
	}
}
