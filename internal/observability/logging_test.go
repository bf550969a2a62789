package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerRedactsAPIKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf})

	logger.Info(context.Background(), "planner configured",
		"key", "sk-ant-REDACTED")

	out := buf.String()
	if strings.Contains(out, "sk-ant-REDACTED") {
		t.Errorf("API key leaked into log output: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("expected [REDACTED] marker, got: %s", out)
	}
}

func TestLoggerIncludesTaskIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "debug", Format: "json", Output: &buf})

	ctx := WithTaskID(context.Background(), "task-123")
	ctx = WithStepID(ctx, "step-456")
	logger.Debug(ctx, "executing action", "tool", "navigate")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if record["task_id"] != "task-123" {
		t.Errorf("task_id = %v, want task-123", record["task_id"])
	}
	if record["step_id"] != "step-456" {
		t.Errorf("step_id = %v, want step-456", record["step_id"])
	}
	if record["tool"] != "navigate" {
		t.Errorf("tool = %v, want navigate", record["tool"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "text", Output: &buf})

	logger.Info(context.Background(), "should be filtered")
	if buf.Len() != 0 {
		t.Errorf("info record should be filtered at warn level, got: %s", buf.String())
	}

	logger.Warn(context.Background(), "should appear")
	if buf.Len() == 0 {
		t.Error("warn record should not be filtered at warn level")
	}
}

func TestLogLevelFromString(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := LogLevelFromString(tc.in); got != tc.want {
			t.Errorf("LogLevelFromString(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
