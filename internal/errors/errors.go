// Package errors defines the typed error taxonomy for the indexing
// subsystem. Failures at the engine boundary are converted to empty results
// before they reach callers (the engine being unavailable is a normal
// state); these types exist for debug logging and the transport layer.
package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies errors for logging and filtering.
type ErrorType string

const (
	ErrorTypeEngine     ErrorType = "engine"
	ErrorTypeIndexing   ErrorType = "indexing"
	ErrorTypeResolve    ErrorType = "resolve"
	ErrorTypeBulkStream ErrorType = "bulk_stream"
	ErrorTypeConfig     ErrorType = "config"
)

// EngineError represents a failed call into the MATLAB engine collaborator.
type EngineError struct {
	Type       ErrorType
	Method     string
	Underlying error
	Timestamp  time.Time
}

// NewEngineError creates an engine error for the given request method.
func NewEngineError(method string, err error) *EngineError {
	return &EngineError{
		Type:       ErrorTypeEngine,
		Method:     method,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine request %s failed: %v", e.Method, e.Underlying)
}

func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// IndexingError represents a failure while indexing one file.
type IndexingError struct {
	Type       ErrorType
	FilePath   string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewIndexingError creates an indexing error with operation context.
func NewIndexingError(op string, err error) *IndexingError {
	return &IndexingError{
		Type:       ErrorTypeIndexing,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds the file path to the error.
func (e *IndexingError) WithFile(path string) *IndexingError {
	e.FilePath = path
	return e
}

func (e *IndexingError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("indexing %s failed for %s: %v", e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("indexing %s failed: %v", e.Operation, e.Underlying)
}

func (e *IndexingError) Unwrap() error {
	return e.Underlying
}

// ResolveError represents a failed path-resolution attempt. A plain "not
// found" is not an error and is never wrapped in one of these.
type ResolveError struct {
	Type       ErrorType
	Name       string
	Context    string
	Underlying error
	Timestamp  time.Time
}

// NewResolveError creates a resolve error for name looked up from context.
func NewResolveError(name, contextFile string, err error) *ResolveError {
	return &ResolveError{
		Type:       ErrorTypeResolve,
		Name:       name,
		Context:    contextFile,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolving %q from %s failed: %v", e.Name, e.Context, e.Underlying)
}

func (e *ResolveError) Unwrap() error {
	return e.Underlying
}

// BulkStreamError represents a malformed message on a bulk result stream.
// The offending message is skipped; remaining files in the batch are
// unaffected.
type BulkStreamError struct {
	Type      ErrorType
	Raw       string
	Reason    string
	Timestamp time.Time
}

// NewBulkStreamError creates a bulk stream error carrying the raw message.
func NewBulkStreamError(raw, reason string) *BulkStreamError {
	return &BulkStreamError{
		Type:      ErrorTypeBulkStream,
		Raw:       raw,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (e *BulkStreamError) Error() string {
	return fmt.Sprintf("malformed bulk stream message (%s): %s", e.Reason, e.Raw)
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a config error for the given field and value.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error {
	return e.Underlying
}
