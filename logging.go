package insight

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// LoggerWithTrace returns a logger carrying the trace context of ctx as
// structured fields, enabling log/trace correlation. With no active span
// the logger is returned unchanged.
//
//	logger := insight.LoggerWithTrace(ctx, slog.Default())
//	logger.Info("processing request") // includes trace_id and span_id
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return nil
	}

	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return logger
	}

	args := make([]any, 0, 6)
	if sc.HasTraceID() {
		args = append(args, "trace_id", sc.TraceID().String())
	}
	if sc.HasSpanID() {
		args = append(args, "span_id", sc.SpanID().String())
	}
	if sc.IsSampled() {
		args = append(args, "trace_sampled", true)
	}
	if len(args) == 0 {
		return logger
	}

	return logger.With(args...)
}

// TraceArgs returns trace context as slog key-value pairs, for adding to a
// single log call rather than a whole logger.
//
//	logger.InfoContext(ctx, "processing", insight.TraceArgs(ctx)...)
func TraceArgs(ctx context.Context) []any {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}

	var args []any
	if sc.HasTraceID() {
		args = append(args, "trace_id", sc.TraceID().String())
	}
	if sc.HasSpanID() {
		args = append(args, "span_id", sc.SpanID().String())
	}
	return args
}
