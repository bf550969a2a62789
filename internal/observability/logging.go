// Package observability provides structured logging, prometheus metrics, and
// OpenTelemetry tracing for the webpilot runtime.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// Logger provides structured logging with task correlation and sensitive data
// redaction.
//
// The logger is built on Go's slog package:
//   - Configurable log levels (debug, info, warn, error)
//   - JSON output for production, text for development
//   - Automatic task/step ID correlation from context
//   - Redaction of API keys in messages and string attributes
type Logger struct {
	logger  *slog.Logger
	redacts []*regexp.Regexp
}

// LogConfig configures the logging behavior.
type LogConfig struct {
	// Level sets the minimum log level: "debug", "info", "warn", "error".
	Level string

	// Format specifies output format: "json" or "text".
	Format string

	// Output is the writer for log output. Defaults to os.Stdout.
	Output io.Writer
}

// ContextKey is the type for context keys used in logging.
type ContextKey string

const (
	// TaskIDKey is the context key for task IDs.
	TaskIDKey ContextKey = "task_id"

	// StepIDKey is the context key for step IDs.
	StepIDKey ContextKey = "step_id"
)

// defaultRedactPatterns covers the credential formats the runtime handles.
var defaultRedactPatterns = []string{
	// Anthropic API keys
	`sk-ant-[a-zA-Z0-9_-]{16,}`,
	// OpenAI API keys
	`sk-[a-zA-Z0-9]{32,}`,
	// Google AI keys
	`AIza[a-zA-Z0-9_-]{32,}`,
	// Generic key/token assignments
	`(?i)(api[_-]?key|token|secret)[\s:=]+["']?([a-zA-Z0-9_\-\.]{16,})["']?`,
}

// NewLogger creates a structured logger with the given configuration.
// Empty level defaults to "info"; empty format defaults to "json".
func NewLogger(config LogConfig) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: LogLevelFromString(config.Level)}

	var handler slog.Handler
	if strings.EqualFold(config.Format, "text") {
		handler = slog.NewTextHandler(config.Output, opts)
	} else {
		handler = slog.NewJSONHandler(config.Output, opts)
	}

	redacts := make([]*regexp.Regexp, 0, len(defaultRedactPatterns))
	for _, pattern := range defaultRedactPatterns {
		if re, err := regexp.Compile(pattern); err == nil {
			redacts = append(redacts, re)
		}
	}

	return &Logger{
		logger:  slog.New(handler),
		redacts: redacts,
	}
}

// Debug logs a debug-level message with optional key-value pairs.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, args...)
}

// Info logs an info-level message with optional key-value pairs.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs a warning-level message with optional key-value pairs.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error-level message with optional key-value pairs.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, msg, args...)
}

// WithFields returns a logger with the given fields added to all records.
func (l *Logger) WithFields(args ...any) *Logger {
	return &Logger{
		logger:  l.logger.With(args...),
		redacts: l.redacts,
	}
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	attrs := make([]any, 0, len(args)+4)

	if taskID, ok := ctx.Value(TaskIDKey).(string); ok && taskID != "" {
		attrs = append(attrs, "task_id", taskID)
	}
	if stepID, ok := ctx.Value(StepIDKey).(string); ok && stepID != "" {
		attrs = append(attrs, "step_id", stepID)
	}

	for _, arg := range args {
		attrs = append(attrs, l.redactValue(arg))
	}

	l.logger.Log(ctx, level, l.redactString(msg), attrs...)
}

func (l *Logger) redactValue(v any) any {
	switch val := v.(type) {
	case string:
		return l.redactString(val)
	case error:
		return l.redactString(val.Error())
	default:
		return v
	}
}

func (l *Logger) redactString(s string) string {
	for _, re := range l.redacts {
		s = re.ReplaceAllString(s, "[REDACTED]")
	}
	return s
}

// WithTaskID adds a task ID to the context for log correlation.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, TaskIDKey, taskID)
}

// WithStepID adds a step ID to the context for log correlation.
func WithStepID(ctx context.Context, stepID string) context.Context {
	return context.WithValue(ctx, StepIDKey, stepID)
}

// LogLevelFromString converts a string to a slog.Level.
// Returns LevelInfo if the string is not recognized.
func LogLevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
