package insight

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func newNoneProvider(t *testing.T) *Provider {
	t.Helper()
	provider, err := New(Config{
		ServiceName: "test-service",
		Exporter:    ExporterNone,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

func TestNewProvider(t *testing.T) {
	provider := newNoneProvider(t)

	if provider.Tracer() == nil {
		t.Error("Tracer() should not be nil")
	}
	if provider.TracerProvider() == nil {
		t.Error("TracerProvider() should not be nil")
	}
	if provider.Propagator() == nil {
		t.Error("Propagator() should not be nil")
	}
	if !provider.IsEnabled() {
		t.Error("IsEnabled() should be true before shutdown")
	}
}

func TestNewProviderInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("New() expected error for empty config")
	}
	if !IsCode(err, ErrConfiguration) {
		t.Errorf("error code = %v, want ErrConfiguration", GetCode(err))
	}
}

func TestProviderShutdown(t *testing.T) {
	provider, err := New(Config{
		ServiceName: "test-service",
		Exporter:    ExporterNone,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if provider.IsEnabled() {
		t.Error("IsEnabled() should be false after shutdown")
	}

	// second shutdown is a no-op
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("repeated Shutdown() error = %v", err)
	}
}

func TestProviderForceFlush(t *testing.T) {
	provider := newNoneProvider(t)

	if err := provider.ForceFlush(context.Background()); err != nil {
		t.Errorf("ForceFlush() error = %v", err)
	}
}

func TestRegisterSampler(t *testing.T) {
	const name SamplerType = "test-only-sampler"
	RegisterSampler(name, func(*Config) sdktrace.Sampler {
		return sdktrace.NeverSample()
	})

	cfg := Config{
		ServiceName: "test-service",
		Exporter:    ExporterNone,
		Sampler:     name,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error after registration = %v", err)
	}

	provider, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer provider.Shutdown(context.Background())
}

func TestRegisterExporter(t *testing.T) {
	const name ExporterType = "test-only-exporter"
	if exporterRegistered(name) {
		t.Fatal("exporter should not be registered yet")
	}
	RegisterExporter(name, func(context.Context, *Config) (sdktrace.SpanExporter, error) {
		return nil, nil
	})
	if !exporterRegistered(name) {
		t.Error("exporter should be registered")
	}
}

func TestProviderConnectionResource(t *testing.T) {
	t.Setenv(EnvConnectionString, "")
	t.Setenv(EnvInstrumentationKey, "")

	opts, err := NewOptions(WithInstrumentationKey(csKey))
	if err != nil {
		t.Fatalf("NewOptions() error = %v", err)
	}

	provider, err := New(Config{
		ServiceName: "test-service",
		Exporter:    ExporterNone,
		Connection:  opts,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer provider.Shutdown(context.Background())

	found := false
	for _, attr := range provider.createResource().Attributes() {
		if string(attr.Key) == "ai.instrumentation.key" && attr.Value.AsString() == csKey {
			found = true
		}
	}
	if !found {
		t.Error("resource should carry the instrumentation key attribute")
	}
}
