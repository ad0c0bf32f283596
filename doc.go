// Package insight resolves Application-Insights-style connection
// configuration and wraps units of work — HTTP requests, SQL statements,
// cache operations, CLI commands — in OpenTelemetry spans.
//
// # Connection configuration
//
// Options are resolved from explicit values and the environment, with a
// fixed precedence for the instrumentation key (explicit connection string,
// explicit key, environment connection string, environment key):
//
//	opts, err := insight.NewOptions(
//	    insight.WithConnectionString("InstrumentationKey=...;EndpointSuffix=example.com"),
//	)
//	if err != nil {
//	    log.Fatal(err) // missing or malformed keys are fatal, never defaulted
//	}
//
// # Tracing
//
// A Provider owns the tracer, exporter, sampler and propagator for one
// service. Exporters and samplers are picked by registry name and resolved
// once at startup:
//
//	provider, err := insight.New(insight.Config{
//	    ServiceName: "my-app",
//	    Endpoint:    "localhost:4317",
//	    Connection:  opts,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Shutdown(context.Background())
//
//	router.Use(provider.Middleware())
//
// # Traced calls
//
// Everything follows the same bracket: start a span, tag attributes while
// the work runs, record an error status on failure, end the span exactly
// once on every exit path. WithSpan packages the bracket:
//
//	err := insight.WithSpan(ctx, "process_order", func(ctx context.Context) error {
//	    return doWork(ctx)
//	})
//
// The current span travels in the context; concurrent requests never see
// each other's spans. With no tracer configured every operation is a
// silent no-op, so instrumented code needs no nil checks. Failures inside
// the tracing machinery are logged out-of-band and never reach the wrapped
// operation.
package insight
