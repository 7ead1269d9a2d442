// Package errors provides the tagged error taxonomy shared by the engine,
// the configuration store and the API.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeInvalidInput indicates a malformed or out-of-range request field
	TypeInvalidInput Type = "INVALID_INPUT"

	// TypeConfiguration indicates invalid pricing configuration, either
	// rejected at write time or discovered while quoting
	TypeConfiguration Type = "CONFIGURATION_ERROR"

	// TypeUnsupportedCategory indicates a service category outside the closed set
	TypeUnsupportedCategory Type = "UNSUPPORTED_CATEGORY"

	// TypeUnknownExtra indicates a maintenance extra that is not configured
	TypeUnknownExtra Type = "UNKNOWN_EXTRA"

	// TypeNotFound indicates a resource not found error
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict indicates a write that collides with existing state
	TypeConflict Type = "CONFLICT"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// As returns the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsType checks if any error in the chain is of a specific type
func IsType(err error, t Type) bool {
	if e, ok := As(err); ok {
		return e.Type == t
	}
	return false
}

// TypeOf returns the tag of err, or TypeInternal for untagged errors
func TypeOf(err error) Type {
	if e, ok := As(err); ok {
		return e.Type
	}
	return TypeInternal
}

// InvalidInput creates an input error
func InvalidInput(format string, args ...interface{}) *Error {
	return Newf(TypeInvalidInput, format, args...)
}

// Configuration creates a configuration error
func Configuration(format string, args ...interface{}) *Error {
	return Newf(TypeConfiguration, format, args...)
}

// UnsupportedCategory creates an unsupported category error
func UnsupportedCategory(category string) *Error {
	return Newf(TypeUnsupportedCategory, "unsupported service category: %q", category).
		WithContext("service_category", category)
}

// UnknownExtra creates an unknown extra error
func UnknownExtra(name string) *Error {
	return Newf(TypeUnknownExtra, "unknown maintenance extra: %q", name).
		WithContext("extra", name)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

// Conflict creates a conflict error
func Conflict(format string, args ...interface{}) *Error {
	return Newf(TypeConflict, format, args...)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
