package insight

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Environment variables consulted during options resolution. Both are
// optional and are read once, when NewOptions runs.
const (
	EnvConnectionString   = "APPLICATIONINSIGHTS_CONNECTION_STRING"
	EnvInstrumentationKey = "APPINSIGHTS_INSTRUMENTATIONKEY"
)

// DefaultIngestionEndpoint is used when neither connection string supplies one.
const DefaultIngestionEndpoint = "https://dc.services.visualstudio.com"

// trackPath is appended to the resolved ingestion endpoint to form the
// final submission URL.
const trackPath = "/v2/track"

// tempDirPrefix prefixes the default on-disk telemetry buffer directory.
const tempDirPrefix = "insight-go-"

// Options is the resolved connection configuration. Build it with
// NewOptions; a returned Options has passed validation and is not meant to
// be mutated afterwards.
type Options struct {
	// ConnectionString is the raw connection string, if one was supplied.
	ConnectionString string

	// InstrumentationKey identifies the telemetry destination. After
	// resolution it is always a valid UUID.
	InstrumentationKey string

	// Endpoint is the final telemetry submission URL, including the
	// /v2/track path.
	Endpoint string

	// StoragePath is the directory used to buffer telemetry on disk.
	StoragePath string

	// ExportInterval is the delay between telemetry exports.
	ExportInterval time.Duration

	// GracePeriod is how long shutdown waits for pending exports.
	GracePeriod time.Duration

	// LoggingSampleRate is the sampling rate applied to trace telemetry,
	// between 0.0 and 1.0.
	LoggingSampleRate float64

	// MaxBatchSize caps the number of items per export batch.
	MaxBatchSize int

	// MinRetryInterval is the minimum delay before a failed export is retried.
	MinRetryInterval time.Duration

	// StorageMaintenancePeriod is the interval between storage sweeps.
	StorageMaintenancePeriod time.Duration

	// StorageMaxSize caps the on-disk buffer size in bytes.
	StorageMaxSize int64

	// StorageRetention is how long buffered telemetry is kept.
	StorageRetention time.Duration

	// Timeout is the network timeout for export calls.
	Timeout time.Duration
}

// Option configures Options before resolution.
type Option func(*Options)

// WithConnectionString sets the explicit connection string.
func WithConnectionString(cs string) Option {
	return func(o *Options) {
		o.ConnectionString = cs
	}
}

// WithInstrumentationKey sets the explicit instrumentation key.
func WithInstrumentationKey(key string) Option {
	return func(o *Options) {
		o.InstrumentationKey = key
	}
}

// WithStoragePath sets the on-disk telemetry buffer directory.
func WithStoragePath(path string) Option {
	return func(o *Options) {
		o.StoragePath = path
	}
}

// WithExportInterval sets the delay between telemetry exports.
func WithExportInterval(d time.Duration) Option {
	return func(o *Options) {
		o.ExportInterval = d
	}
}

// WithMaxBatchSize caps the number of items per export batch.
func WithMaxBatchSize(n int) Option {
	return func(o *Options) {
		o.MaxBatchSize = n
	}
}

// WithTimeout sets the network timeout for export calls.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithLoggingSampleRate sets the trace telemetry sampling rate.
func WithLoggingSampleRate(rate float64) Option {
	return func(o *Options) {
		o.LoggingSampleRate = rate
	}
}

// LoadEnv loads environment variables from a .env file at the given root
// path, if one exists. Call it before NewOptions when configuration lives
// in a dotenv file.
func LoadEnv(rootPath string) error {
	return godotenv.Load(filepath.Join(rootPath, ".env"))
}

// NewOptions builds and resolves the connection configuration.
//
// The instrumentation key is taken from the first non-empty source of:
//
//  1. the key embedded in the explicitly supplied connection string
//  2. the explicitly supplied instrumentation key
//  3. the key embedded in APPLICATIONINSIGHTS_CONNECTION_STRING
//  4. APPINSIGHTS_INSTRUMENTATIONKEY
//
// The ingestion endpoint is taken from the explicit connection string, then
// the environment connection string, then DefaultIngestionEndpoint. A
// missing or malformed instrumentation key is a hard failure; it is never
// silently defaulted.
func NewOptions(opts ...Option) (*Options, error) {
	o := &Options{
		ExportInterval:           15 * time.Second,
		GracePeriod:              5 * time.Second,
		LoggingSampleRate:        1.0,
		MaxBatchSize:             100,
		MinRetryInterval:         60 * time.Second,
		StorageMaintenancePeriod: 60 * time.Second,
		StorageMaxSize:           50 * 1024 * 1024,
		StorageRetention:         7 * 24 * time.Hour,
		Timeout:                  10 * time.Second,
	}

	for _, opt := range opts {
		opt(o)
	}

	if err := o.resolve(); err != nil {
		return nil, err
	}
	return o, nil
}

// resolve applies the key and endpoint precedence chains and validates the
// result.
func (o *Options) resolve() error {
	codeCS, err := ParseConnectionString(o.ConnectionString)
	if err != nil {
		return err
	}
	envCS, err := ParseConnectionString(os.Getenv(EnvConnectionString))
	if err != nil {
		return err
	}

	key := firstNonEmpty(
		codeCS[KeyInstrumentationKey],
		o.InstrumentationKey,
		envCS[KeyInstrumentationKey],
		os.Getenv(EnvInstrumentationKey),
	)
	if err := ValidateInstrumentationKey(key); err != nil {
		return err
	}
	o.InstrumentationKey = key

	endpoint := firstNonEmpty(
		codeCS[KeyIngestionEndpoint],
		envCS[KeyIngestionEndpoint],
		DefaultIngestionEndpoint,
	)
	o.Endpoint = endpoint + trackPath

	if o.StoragePath == "" {
		o.StoragePath = filepath.Join(os.TempDir(), tempDirPrefix+o.InstrumentationKey)
	}

	return nil
}

// ValidateInstrumentationKey checks that the key is present and is a valid
// RFC 4122 UUID, version 1 through 5.
func ValidateInstrumentationKey(key string) error {
	if key == "" {
		return NewError("options.validate", "instrumentation key cannot be empty", ErrMissingInstrumentationKey)
	}
	// uuid.Parse also accepts URN and braced forms; only the canonical
	// 36-character form is a valid instrumentation key.
	if len(key) != 36 {
		return NewError("options.validate", "invalid instrumentation key", ErrInvalidInstrumentationKey)
	}
	u, err := uuid.Parse(key)
	if err != nil {
		return NewError("options.validate", "invalid instrumentation key", ErrInvalidInstrumentationKey)
	}
	if u.Variant() != uuid.RFC4122 || u.Version() < 1 || u.Version() > 5 {
		return NewError("options.validate", "invalid instrumentation key", ErrInvalidInstrumentationKey)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
