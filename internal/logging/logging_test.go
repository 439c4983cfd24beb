package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytprogress/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelWarn},
		{"loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetup_TextFallback(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := Setup(config.LoggingConfig{Level: "INFO"}, &buf)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("shown", "video", "abc")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at INFO: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "video=abc") {
		t.Errorf("output = %q", out)
	}
}

func TestSetup_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ytprogress.log")
	var fallback bytes.Buffer

	logger, closeFn, err := Setup(config.LoggingConfig{File: path, Level: "DEBUG"}, &fallback)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	logger.Debug("loaded", "items", 3)
	if err := closeFn(); err != nil {
		t.Fatalf("close error = %v", err)
	}

	if fallback.Len() != 0 {
		t.Errorf("fallback got output: %q", fallback.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v: %q", err, data)
	}
	if rec["msg"] != "loaded" || rec["items"] != float64(3) {
		t.Errorf("record = %v", rec)
	}
}
