package insight

import (
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid minimal config",
			config: Config{
				ServiceName: "test-service",
				Endpoint:    "localhost:4317",
			},
			wantErr: false,
		},
		{
			name: "valid full config",
			config: Config{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Environment:    "test",
				Endpoint:       "localhost:4317",
				Exporter:       ExporterOTLP,
				Insecure:       true,
				Sampler:        SamplerRatio,
				SampleRatio:    0.5,
			},
			wantErr: false,
		},
		{
			name:    "missing service name",
			config:  Config{},
			wantErr: true,
			errMsg:  "ServiceName is required",
		},
		{
			name: "missing endpoint with exporter enabled",
			config: Config{
				ServiceName: "test-service",
				Exporter:    ExporterOTLP,
			},
			wantErr: true,
			errMsg:  "Endpoint is required",
		},
		{
			name: "no endpoint required for none exporter",
			config: Config{
				ServiceName: "test-service",
				Exporter:    ExporterNone,
			},
			wantErr: false,
		},
		{
			name: "unregistered exporter type",
			config: Config{
				ServiceName: "test-service",
				Endpoint:    "localhost:4317",
				Exporter:    "no-such-exporter",
			},
			wantErr: true,
			errMsg:  "unknown Exporter type",
		},
		{
			name: "unregistered sampler type",
			config: Config{
				ServiceName: "test-service",
				Endpoint:    "localhost:4317",
				Sampler:     "no-such-sampler",
			},
			wantErr: true,
			errMsg:  "unknown Sampler type",
		},
		{
			name: "sample ratio too low",
			config: Config{
				ServiceName: "test-service",
				Endpoint:    "localhost:4317",
				SampleRatio: -0.1,
			},
			wantErr: true,
			errMsg:  "SampleRatio must be between",
		},
		{
			name: "sample ratio too high",
			config: Config{
				ServiceName: "test-service",
				Endpoint:    "localhost:4317",
				SampleRatio: 1.5,
			},
			wantErr: true,
			errMsg:  "SampleRatio must be between",
		},
		{
			name: "valid zipkin exporter",
			config: Config{
				ServiceName: "test-service",
				Endpoint:    "http://localhost:9411/api/v2/spans",
				Exporter:    ExporterZipkin,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %v, want containing %q", err, tt.errMsg)
				}
				if !IsCode(err, ErrConfiguration) {
					t.Errorf("error code = %v, want ErrConfiguration", GetCode(err))
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestConfigValidateDefaults(t *testing.T) {
	cfg := Config{
		ServiceName: "test-service",
		Endpoint:    "localhost:4317",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Exporter != ExporterOTLP {
		t.Errorf("Exporter defaulted to %v, want otlp", cfg.Exporter)
	}
	if cfg.Sampler != SamplerAlways {
		t.Errorf("Sampler defaulted to %v, want always", cfg.Sampler)
	}
	if cfg.SampleRatio != 1.0 {
		t.Errorf("SampleRatio defaulted to %v, want 1.0", cfg.SampleRatio)
	}
}

func TestConfigString(t *testing.T) {
	cfg := Config{
		ServiceName: "test-service",
		Environment: "staging",
		Exporter:    ExporterOTLP,
		Endpoint:    "localhost:4317",
		Sampler:     SamplerAlways,
	}
	s := cfg.String()
	for _, want := range []string{"test-service", "staging", "otlp", "localhost:4317", "always"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %v, want containing %q", s, want)
		}
	}
}
