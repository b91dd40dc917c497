package logger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScope(t *testing.T) {
	attr := Scope("properties.repo")
	if attr.Key != "scope" {
		t.Errorf("key = %q, want %q", attr.Key, "scope")
	}
	if attr.Value.String() != "properties.repo" {
		t.Errorf("value = %q", attr.Value.String())
	}
}

func TestError(t *testing.T) {
	err := errors.New("something went wrong")
	attr := Error(err)
	if attr.Key != "error" {
		t.Errorf("key = %q, want %q", attr.Key, "error")
	}
	if attr.Value.Any() != err {
		t.Errorf("value = %v, want the error itself", attr.Value.Any())
	}

	// nil must be representable too, Warn paths log it on lock failures
	if got := Error(nil).Value.Any(); got != nil {
		t.Errorf("nil error value = %v", got)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level    string
		enabled  slog.Level
		disabled slog.Level
	}{
		{"", slog.LevelInfo, slog.LevelDebug},
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"warning", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"ERROR", slog.LevelError, slog.LevelWarn},
		{"  Info  ", slog.LevelInfo, slog.LevelDebug},
		{"garbage", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run("LOG_LEVEL="+tt.level, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.level)
			t.Setenv("GO_ENV", "")

			log := NewLogger()
			if !log.Enabled(nil, tt.enabled) {
				t.Errorf("level %v should be enabled", tt.enabled)
			}
			if log.Enabled(nil, tt.disabled) {
				t.Errorf("level %v should be disabled", tt.disabled)
			}
		})
	}
}

func TestHTTPLogger_NoopWithoutFile(t *testing.T) {
	t.Setenv("HTTP_LOG_FILE", "")

	h := NewHTTPLogger()
	// must not panic with no destination configured
	h.LogRequest("127.0.0.1", "GET", "/api/properties", 200, time.Millisecond, "curl", "req-1")
}

func TestHTTPLogger_WritesAccessLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	t.Setenv("HTTP_LOG_FILE", path)

	h := NewHTTPLogger()
	h.LogRequest("127.0.0.1", "POST", "/api/properties", 201, 5*time.Millisecond, "test-agent", "req-42")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read access log: %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(data, &line); err != nil {
		t.Fatalf("access line is not JSON: %v", err)
	}
	if line["method"] != "POST" || line["uri"] != "/api/properties" {
		t.Errorf("line = %v", line)
	}
	if line["status"] != 201.0 {
		t.Errorf("status = %v, want 201", line["status"])
	}
	if line["request_id"] != "req-42" {
		t.Errorf("request_id = %v", line["request_id"])
	}
}
