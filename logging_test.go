package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLoggerWithTrace(t *testing.T) {
	newSpanRecorder(t)

	ctx, span := Start(context.Background(), "logged_work")
	defer span.End()

	var buf bytes.Buffer
	logger := LoggerWithTrace(ctx, slog.New(slog.NewJSONHandler(&buf, nil)))
	logger.Info("working")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if record["trace_id"] != TraceID(ctx) {
		t.Errorf("trace_id = %v, want %v", record["trace_id"], TraceID(ctx))
	}
	if record["span_id"] != SpanID(ctx) {
		t.Errorf("span_id = %v, want %v", record["span_id"], SpanID(ctx))
	}
	if record["trace_sampled"] != true {
		t.Error("sampled span should mark trace_sampled")
	}
}

func TestLoggerWithTraceNoSpan(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	logger := LoggerWithTrace(context.Background(), base)
	if logger != base {
		t.Error("logger should pass through unchanged without an active span")
	}
}

func TestTraceArgs(t *testing.T) {
	newSpanRecorder(t)

	ctx, span := Start(context.Background(), "logged_work")
	defer span.End()

	args := TraceArgs(ctx)
	if len(args) != 4 {
		t.Fatalf("TraceArgs() len = %d, want 4", len(args))
	}
	if args[0] != "trace_id" || args[2] != "span_id" {
		t.Errorf("TraceArgs() keys = %v, %v", args[0], args[2])
	}

	if got := TraceArgs(context.Background()); got != nil {
		t.Errorf("TraceArgs() without span = %v, want nil", got)
	}
}
