package insight

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int64
	headerWritten bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.headerWritten {
		rw.statusCode = code
		rw.headerWritten = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Unwrap returns the underlying ResponseWriter for compatibility with
// http.ResponseController and other wrappers.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns an HTTP middleware that traces requests. It extracts
// incoming trace context, opens a SERVER span for the request, and closes
// it on every exit path. Once routing has resolved, the span is renamed to
// the route pattern; until then it carries the method and raw path.
//
// Requests whose path matches an IgnorePaths prefix pass through untraced.
func (p *Provider) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !p.IsEnabled() || p.ignored(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := p.Propagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			// Route is unknown until the router has run; name lazily.
			spanName := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
			ctx, span := p.Tracer().Start(ctx, spanName,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(httpServerAttributes(r)...),
			)
			defer span.End()

			rw := newResponseWriter(w)

			// Expose the trace ID for client-side correlation
			if span.SpanContext().HasTraceID() {
				rw.Header().Set("X-Trace-ID", span.SpanContext().TraceID().String())
			}

			start := time.Now()
			next.ServeHTTP(rw, r.WithContext(ctx))
			duration := time.Since(start)

			if route := routePattern(r); route != "" {
				span.SetName(fmt.Sprintf("%s %s", r.Method, route))
				span.SetAttributes(semconv.HTTPRoute(route))
			}

			span.SetAttributes(
				semconv.HTTPStatusCode(rw.statusCode),
				attribute.Int64("http.response.size", rw.bytesWritten),
				attribute.Float64("http.duration_ms", float64(duration.Milliseconds())),
			)

			// Server errors mark the span failed; client errors do not.
			if rw.statusCode >= 500 {
				span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
			} else if rw.statusCode < 400 {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}

// ignored reports whether the path matches a configured ignore prefix.
func (p *Provider) ignored(path string) bool {
	for _, prefix := range p.config.IgnorePaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// routePattern returns the resolved chi route pattern, if the middleware is
// mounted on a chi router.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}

// httpServerAttributes returns standard HTTP server span attributes.
func httpServerAttributes(r *http.Request) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.HTTPMethod(r.Method),
		semconv.HTTPURL(sanitizeURL(r)),
		semconv.HTTPScheme(scheme(r)),
		semconv.NetHostName(r.Host),
		semconv.HTTPTarget(r.URL.Path),
	}

	if userAgent := r.UserAgent(); userAgent != "" {
		attrs = append(attrs, semconv.HTTPUserAgent(userAgent))
	}

	if r.ContentLength > 0 {
		attrs = append(attrs, semconv.HTTPRequestContentLength(int(r.ContentLength)))
	}

	if clientIP := clientIP(r); clientIP != "" {
		attrs = append(attrs, semconv.NetSockPeerAddr(clientIP))
	}

	return attrs
}

// sanitizeURL returns a URL string safe for recording (no query or fragment).
func sanitizeURL(r *http.Request) string {
	u := *r.URL
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}

// clientIP extracts the client IP address from the request.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return xff[:i]
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		return addr[:i]
	}
	return addr
}

// Middleware is a convenience for tracing with the global tracer when no
// Provider is at hand, e.g. in tests or single-file programs.
func Middleware(serviceName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer(serviceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(ctx, fmt.Sprintf("%s %s", r.Method, r.URL.Path),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(httpServerAttributes(r)...),
			)
			defer span.End()

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			span.SetAttributes(semconv.HTTPStatusCode(rw.statusCode))
			if rw.statusCode >= 500 {
				span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
			}
		})
	}
}
