package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogHelpersAttachRunID(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger
	defer func() {
		Logger = prev
		SetLevel("INFO")
	}()

	SetLevel("DEBUG")
	Logger = New(&buf)

	ctx := WithRunID(context.Background(), "run-42")
	LogError(ctx, errors.New("boom"), "Write failed", "sku", "ONION")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["run_id"] != "run-42" {
		t.Errorf("Expected run_id run-42, got %v", entry["run_id"])
	}
	if entry["error"] != "boom" {
		t.Errorf("Expected error boom, got %v", entry["error"])
	}
	if entry["level"] != "ERROR" {
		t.Errorf("Expected level ERROR, got %v", entry["level"])
	}
	if _, ok := entry["source"]; !ok {
		t.Error("Expected source attribute")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger
	defer func() {
		Logger = prev
		SetLevel("INFO")
	}()

	SetLevel("WARN")
	Logger = New(&buf)

	LogInfo(context.Background(), "hidden")
	LogDuration(context.Background(), "load", time.Now())
	if buf.Len() != 0 {
		t.Errorf("INFO messages must be filtered at WARN, got %s", buf.String())
	}

	LogWarn(context.Background(), "shown")
	if buf.Len() == 0 {
		t.Error("WARN message must be written")
	}
}

func TestRunIDMissing(t *testing.T) {
	if id := RunID(context.Background()); id != "" {
		t.Errorf("Expected empty run id, got %q", id)
	}
	if FromContext(context.Background()) != Logger {
		t.Error("FromContext without run id should return the global logger")
	}
}
