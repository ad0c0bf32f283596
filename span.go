package insight

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// The helpers in this file implement the traced-call protocol used by the
// HTTP middleware, the database wrapper and the CLI alike:
//
//	ctx, span := insight.Start(ctx, "name", ...)
//	defer span.End()
//	// attributes during execution, error status on failure
//
// The current span travels in the context, never in a process-wide
// variable, so concurrent units of work cannot observe each other's spans.
// When no tracer is configured the global tracer is a no-op and every call
// below silently succeeds; callers never need nil checks.

// Start creates a new span with the given name and returns the updated
// context and the span. Call span.End() exactly once when the operation is
// complete, on every exit path.
func Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer("").Start(ctx, name, opts...)
}

// StartWithTracer creates a new span using the specified tracer.
func StartWithTracer(ctx context.Context, tracer trace.Tracer, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, opts...)
}

// SpanFromContext returns the current span from the context, or a no-op
// span if none is present.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// SetName renames the current span. Span names may be assigned lazily, any
// time before End — the HTTP middleware uses this once routing has resolved
// the route pattern.
func SetName(ctx context.Context, name string) {
	trace.SpanFromContext(ctx).SetName(name)
}

// SetAttributes sets attributes on the current span. Attributes are legal
// only while the span is open; per key, last write wins.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records err on the current span and marks the span status as
// Error with the error's message. A nil error is ignored.
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceID returns the current trace ID as a hex string, or "" when no
// trace is active.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the current span ID as a hex string, or "" when no span
// is active.
func SpanID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

// WithSpan runs fn inside a new span. The span is ended exactly once,
// whether fn returns normally or with an error. An error from fn is
// recorded as the span status and returned unchanged; the wrapper is
// transparent to failures of the wrapped operation.
func WithSpan(ctx context.Context, name string, fn func(context.Context) error, opts ...trace.SpanStartOption) error {
	ctx, span := otel.Tracer("").Start(ctx, name, opts...)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// WithSpanResult runs fn inside a new span and returns its result along
// with its error. Same bracketing guarantees as WithSpan.
func WithSpanResult[T any](ctx context.Context, name string, fn func(context.Context) (T, error), opts ...trace.SpanStartOption) (T, error) {
	ctx, span := otel.Tracer("").Start(ctx, name, opts...)
	defer span.End()

	result, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

// Attribute constructors, re-exported for callers that do not want to
// import the otel attribute package directly.
var (
	String  = attribute.String
	Int     = attribute.Int
	Int64   = attribute.Int64
	Float64 = attribute.Float64
	Bool    = attribute.Bool
)
