package insight

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// ExporterFactory builds a span exporter from a validated Config.
type ExporterFactory func(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error)

// SamplerFactory builds a sampler from a validated Config.
type SamplerFactory func(cfg *Config) sdktrace.Sampler

var (
	registryMu       sync.RWMutex
	exporterRegistry = map[ExporterType]ExporterFactory{
		ExporterOTLP:   newOTLPExporter,
		ExporterZipkin: newZipkinExporter,
		ExporterNone:   func(context.Context, *Config) (sdktrace.SpanExporter, error) { return nil, nil },
	}
	samplerRegistry = map[SamplerType]SamplerFactory{
		SamplerAlways: func(*Config) sdktrace.Sampler { return sdktrace.AlwaysSample() },
		SamplerNever:  func(*Config) sdktrace.Sampler { return sdktrace.NeverSample() },
		SamplerRatio:  func(cfg *Config) sdktrace.Sampler { return sdktrace.TraceIDRatioBased(cfg.SampleRatio) },
		SamplerParentBased: func(*Config) sdktrace.Sampler {
			return sdktrace.ParentBased(sdktrace.AlwaysSample())
		},
	}
)

// RegisterExporter adds a named exporter factory to the registry. Names are
// resolved once, when New runs; runtime dispatch never happens by string.
func RegisterExporter(name ExporterType, factory ExporterFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	exporterRegistry[name] = factory
}

// RegisterSampler adds a named sampler factory to the registry.
func RegisterSampler(name SamplerType, factory SamplerFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	samplerRegistry[name] = factory
}

func exporterRegistered(name ExporterType) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := exporterRegistry[name]
	return ok
}

func samplerRegistered(name SamplerType) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := samplerRegistry[name]
	return ok
}

// Provider manages the tracer, exporter, sampler and propagator for one
// service. It is safe for concurrent use by multiple requests.
type Provider struct {
	config         Config
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	propagator     propagation.TextMapPropagator
	logger         *slog.Logger
	shutdownOnce   sync.Once
	shutdown       bool
	mu             sync.RWMutex
}

// New creates a new tracing provider with the given configuration.
func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		config: cfg,
		logger: slog.Default().With("component", "insight"),
	}

	if err := p.initTracing(); err != nil {
		return nil, WrapError("provider.new", err, ErrExporter)
	}

	return p, nil
}

// initTracing resolves the factories and builds the tracer provider.
func (p *Provider) initTracing() error {
	ctx := context.Background()

	registryMu.RLock()
	newExporter := exporterRegistry[p.config.Exporter]
	newSampler := samplerRegistry[p.config.Sampler]
	registryMu.RUnlock()

	exporter, err := newExporter(ctx, &p.config)
	if err != nil {
		return err
	}

	res := p.createResource()

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(&p.config)),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	p.tracerProvider = sdktrace.NewTracerProvider(opts...)

	// Register as global provider
	otel.SetTracerProvider(p.tracerProvider)

	p.setupPropagation()

	p.tracer = p.tracerProvider.Tracer(
		p.config.ServiceName,
		trace.WithInstrumentationVersion(p.config.ServiceVersion),
	)

	return nil
}

// newOTLPExporter creates an OTLP gRPC exporter.
func newOTLPExporter(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}

	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	if cfg.Connection != nil {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.Connection.Timeout))
	}

	client := otlptracegrpc.NewClient(opts...)
	return otlptrace.New(ctx, client)
}

// newZipkinExporter creates a Zipkin exporter. The endpoint is expected to
// be a full HTTP URL like http://localhost:9411/api/v2/spans.
func newZipkinExporter(_ context.Context, cfg *Config) (sdktrace.SpanExporter, error) {
	return zipkin.New(cfg.Endpoint)
}

// createResource describes this service for all exported spans.
func (p *Provider) createResource() *resource.Resource {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(p.config.ServiceName),
	}

	if p.config.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(p.config.ServiceVersion))
	}

	if p.config.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(p.config.Environment))
	}

	if p.config.Connection != nil {
		attrs = append(attrs, attribute.String("ai.instrumentation.key", p.config.Connection.InstrumentationKey))
	}

	for k, v := range p.config.ResourceAttributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}

// setupPropagation configures W3C TraceContext plus Baggage propagation.
func (p *Provider) setupPropagation() {
	p.propagator = propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(p.propagator)
}

// Tracer returns the tracer for creating spans.
func (p *Provider) Tracer() trace.Tracer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracer
}

// TracerProvider returns the underlying tracer provider.
func (p *Provider) TracerProvider() *sdktrace.TracerProvider {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracerProvider
}

// Propagator returns the text map propagator for context injection/extraction.
func (p *Provider) Propagator() propagation.TextMapPropagator {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.propagator
}

// Config returns the provider configuration.
func (p *Provider) Config() Config {
	return p.config
}

// SetLogger replaces the logger used for out-of-band tracing warnings.
func (p *Provider) SetLogger(logger *slog.Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if logger != nil {
		p.logger = logger
	}
}

// Logger returns the logger used for out-of-band tracing warnings.
func (p *Provider) Logger() *slog.Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logger
}

// IsEnabled returns true if the provider is active.
func (p *Provider) IsEnabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.shutdown && p.tracer != nil
}

// Shutdown gracefully shuts down the provider, flushing any pending spans.
// It should be called when the application exits. The connection grace
// period bounds the flush.
func (p *Provider) Shutdown(ctx context.Context) error {
	var err error
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.shutdown = true
		p.mu.Unlock()

		if p.tracerProvider != nil {
			grace := 5 * time.Second
			if p.config.Connection != nil && p.config.Connection.GracePeriod > 0 {
				grace = p.config.Connection.GracePeriod
			}
			shutdownCtx, cancel := context.WithTimeout(ctx, grace)
			defer cancel()
			err = p.tracerProvider.Shutdown(shutdownCtx)
		}
	})
	return err
}

// ForceFlush immediately exports all pending spans.
func (p *Provider) ForceFlush(ctx context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.tracerProvider == nil {
		return nil
	}
	return p.tracerProvider.ForceFlush(ctx)
}
