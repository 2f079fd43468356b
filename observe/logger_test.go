package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_IncludesOperationFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	opLogger := logger.WithOperation(OperationMeta{
		Operation: "resume_rewrite",
		Key:       "resume_rewrite_123",
		Model:     "gemini-2.5-flash",
	})
	opLogger.Info(context.Background(), "test message")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]

	if entry["msg"] != "test message" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["operation"] != "resume_rewrite" {
		t.Errorf("operation = %v", entry["operation"])
	}
	if entry["cache_key"] != "resume_rewrite_123" {
		t.Errorf("cache_key = %v", entry["cache_key"])
	}
	if entry["model"] != "gemini-2.5-flash" {
		t.Errorf("model = %v", entry["model"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("expected timestamp field")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries at warn level, got %d", len(entries))
	}
	if entries[0]["msg"] != "warn" || entries[1]["msg"] != "error" {
		t.Errorf("unexpected entries: %v", entries)
	}
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	logger.Info(context.Background(), "call",
		Field{Key: "prompt", Value: "rewrite my resume"},
		Field{Key: "api_key", Value: "sk-123"},
		Field{Key: "attempt", Value: 2},
	)

	entry := decodeLines(t, &buf)[0]
	if entry["prompt"] != "[REDACTED]" {
		t.Errorf("prompt should be redacted, got %v", entry["prompt"])
	}
	if entry["api_key"] != "[REDACTED]" {
		t.Errorf("api_key should be redacted, got %v", entry["api_key"])
	}
	if entry["attempt"] != float64(2) {
		t.Errorf("attempt = %v, want 2", entry["attempt"])
	}
}

func TestLogger_ErrorValuesAreStrings(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Warn(context.Background(), "store failed", Field{Key: "error", Value: errors.New("connection refused")})

	entry := decodeLines(t, &buf)[0]
	if entry["error"] != "connection refused" {
		t.Errorf("error = %v", entry["error"])
	}
}

func TestLogger_WithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf).With(Field{Key: "component", Value: "scheduler"})

	logger.Info(context.Background(), "hello")

	entry := decodeLines(t, &buf)[0]
	if entry["component"] != "scheduler" {
		t.Errorf("component = %v", entry["component"])
	}
}

func TestLogger_TraceCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	logger.Info(ctx, "inside span")
	span.End()

	entry := decodeLines(t, &buf)[0]
	if entry["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("trace_id = %v, want %s", entry["trace_id"], span.SpanContext().TraceID())
	}
}

func TestLogger_NopAndZapAdapters(t *testing.T) {
	ctx := context.Background()

	nop := NewNopLogger()
	nop.Info(ctx, "discarded")
	if nop.WithOperation(OperationMeta{Operation: "noop"}) == nil {
		t.Fatal("WithOperation should return non-nil logger")
	}

	NewZapLogger(nil).Error(ctx, "discarded")
	NewZapLogger(zap.NewNop()).With(Field{Key: "k", Value: "v"}).Debug(ctx, "discarded")
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"error":   LevelError,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
