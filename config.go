package insight

import (
	"strings"
)

// ExporterType defines the telemetry exporter to use.
type ExporterType string

const (
	// ExporterOTLP exports to an OTLP-compatible collector (recommended).
	ExporterOTLP ExporterType = "otlp"
	// ExporterZipkin exports directly to Zipkin.
	ExporterZipkin ExporterType = "zipkin"
	// ExporterNone disables exporting (useful for testing).
	ExporterNone ExporterType = "none"
)

// SamplerType defines the sampling strategy.
type SamplerType string

const (
	// SamplerAlways samples all traces.
	SamplerAlways SamplerType = "always"
	// SamplerNever samples no traces.
	SamplerNever SamplerType = "never"
	// SamplerRatio samples a percentage of traces.
	SamplerRatio SamplerType = "ratio"
	// SamplerParentBased respects the parent span's sampling decision.
	SamplerParentBased SamplerType = "parent"
)

// Config holds tracing configuration for a Provider.
type Config struct {
	// ServiceName identifies this service in traces. Required.
	ServiceName string

	// ServiceVersion is the version of this service (optional).
	ServiceVersion string

	// Environment identifies the deployment environment (e.g., "production").
	Environment string

	// Endpoint is the collector endpoint (e.g., "localhost:4317" for OTLP).
	// Required unless Exporter is ExporterNone.
	Endpoint string

	// Exporter selects the telemetry exporter by registry name.
	// Defaults to OTLP.
	Exporter ExporterType

	// Insecure disables TLS for the exporter connection.
	// Set to true for local development.
	Insecure bool

	// Sampler selects the sampling strategy by registry name.
	// Defaults to SamplerAlways.
	Sampler SamplerType

	// SampleRatio is the sampling ratio when Sampler is SamplerRatio.
	// Value between 0.0 and 1.0. Defaults to 1.0.
	SampleRatio float64

	// Headers are additional headers to send with exports (e.g., authentication).
	Headers map[string]string

	// ResourceAttributes are additional attributes to add to all spans.
	ResourceAttributes map[string]string

	// Connection carries the resolved connection configuration, when the
	// telemetry destination is identified by an instrumentation key. The
	// key is attached to all spans as a resource attribute.
	Connection *Options

	// IgnorePaths lists URL path prefixes the HTTP middleware will not trace.
	IgnorePaths []string
}

// Validate checks that the configuration is valid and fills in defaults.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return NewError("config.validate", "ServiceName is required", ErrConfiguration)
	}

	if c.Exporter == "" {
		c.Exporter = ExporterOTLP
	}
	if !exporterRegistered(c.Exporter) {
		return NewError("config.validate", "unknown Exporter type: "+string(c.Exporter), ErrConfiguration)
	}

	if c.Exporter != ExporterNone && c.Endpoint == "" {
		return NewError("config.validate", "Endpoint is required when exporter is enabled", ErrConfiguration)
	}

	if c.Sampler == "" {
		c.Sampler = SamplerAlways
	}
	if !samplerRegistered(c.Sampler) {
		return NewError("config.validate", "unknown Sampler type: "+string(c.Sampler), ErrConfiguration)
	}

	if c.SampleRatio == 0 {
		c.SampleRatio = 1.0
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return NewError("config.validate", "SampleRatio must be between 0.0 and 1.0", ErrConfiguration)
	}

	return nil
}

// String returns a human-readable representation of the config.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("insight.Config{")
	b.WriteString("ServiceName: " + c.ServiceName)
	if c.ServiceVersion != "" {
		b.WriteString(", Version: " + c.ServiceVersion)
	}
	if c.Environment != "" {
		b.WriteString(", Env: " + c.Environment)
	}
	b.WriteString(", Exporter: " + string(c.Exporter))
	if c.Endpoint != "" {
		b.WriteString(", Endpoint: " + c.Endpoint)
	}
	b.WriteString(", Sampler: " + string(c.Sampler))
	b.WriteString("}")
	return b.String()
}
