package insight

import (
	"errors"
	"fmt"
)

// ErrorCode represents categories of errors for classification and handling
type ErrorCode int

const (
	// ErrInternal represents internal library errors
	ErrInternal ErrorCode = iota
	// ErrInvalidConnectionString represents a malformed connection string
	ErrInvalidConnectionString
	// ErrInvalidAuthorization represents an unsupported authorization mechanism
	ErrInvalidAuthorization
	// ErrMissingInstrumentationKey represents a missing instrumentation key
	ErrMissingInstrumentationKey
	// ErrInvalidInstrumentationKey represents an instrumentation key that is not a valid UUID
	ErrInvalidInstrumentationKey
	// ErrConfiguration represents other configuration errors
	ErrConfiguration
	// ErrExporter represents exporter setup failures
	ErrExporter
	// ErrStorage represents local storage failures
	ErrStorage
)

// String returns the string representation of an ErrorCode
func (c ErrorCode) String() string {
	switch c {
	case ErrInternal:
		return "internal"
	case ErrInvalidConnectionString:
		return "invalid_connection_string"
	case ErrInvalidAuthorization:
		return "invalid_authorization"
	case ErrMissingInstrumentationKey:
		return "missing_instrumentation_key"
	case ErrInvalidInstrumentationKey:
		return "invalid_instrumentation_key"
	case ErrConfiguration:
		return "configuration"
	case ErrExporter:
		return "exporter"
	case ErrStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is the standard error type for the library.
// It provides structured error information including operation context,
// error classification, and optional additional context.
//
// All configuration-resolution failures are fatal to startup and are
// surfaced immediately; they are never retried and never silently defaulted.
type Error struct {
	// Op is the operation that failed (e.g., "options.resolve", "provider.new")
	Op string
	// Err is the underlying error
	Err error
	// Code categorizes the error for handling
	Code ErrorCode
	// Context provides additional error context as key-value pairs
	Context map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithContext adds context to the error and returns it for chaining
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WrapError wraps an error with operation context and classification.
// Use this when catching errors from lower-level operations.
func WrapError(op string, err error, code ErrorCode) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Op:   op,
		Err:  err,
		Code: code,
	}
}

// NewError creates a new Error with a message
func NewError(op string, message string, code ErrorCode) *Error {
	return &Error{
		Op:   op,
		Err:  errors.New(message),
		Code: code,
	}
}

// IsCode checks if an error is an insight Error with a specific code
func IsCode(err error, code ErrorCode) bool {
	var iErr *Error
	if errors.As(err, &iErr) {
		return iErr.Code == code
	}
	return false
}

// GetCode returns the ErrorCode from an error, or ErrInternal if not an insight Error
func GetCode(err error) ErrorCode {
	var iErr *Error
	if errors.As(err, &iErr) {
		return iErr.Code
	}
	return ErrInternal
}
