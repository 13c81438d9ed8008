package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewFileDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tracker.log")

	logger, closer, err := New(Options{Level: "info", Path: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log := Component(logger, "test")
	log.Info("hello", "key", "value")

	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "component=test") || !strings.Contains(out, "hello") {
		t.Errorf("log line missing fields: %s", out)
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, _, err := New(Options{Level: "nope"}); err == nil {
		t.Fatal("expected error for bad level")
	}
}
