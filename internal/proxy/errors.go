package proxy

import (
	"errors"
	"fmt"
)

// Error categories. Typed errors below match these through errors.Is.
var (
	// ErrConfiguration indicates a required declared field is missing or empty.
	ErrConfiguration = errors.New("action configuration error")

	// ErrResolution indicates the implementation class cannot be found.
	ErrResolution = errors.New("action class resolution error")

	// ErrArgument indicates an invalid value passed to a setter.
	ErrArgument = errors.New("invalid argument")

	// ErrCacheFormat indicates a cache record that cannot be decoded.
	ErrCacheFormat = errors.New("malformed cache record")
)

// ConfigurationError is returned when an action declaration is invalid.
type ConfigurationError struct {
	// Key identifies the action, when known.
	Key string
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Key, e.Message)
}

// Is implements error matching for ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ResolutionError is returned when an action class cannot be resolved or
// instantiated.
type ResolutionError struct {
	// Class is the class name being resolved.
	Class string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot resolve class %q", e.Class)
	}
	return fmt.Sprintf("cannot resolve class %q: %v", e.Class, e.Err)
}

// Is implements error matching for ResolutionError.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ArgumentError is returned by setters for rejected values.
type ArgumentError struct {
	// Arg is the argument name.
	Arg string
	// Message describes the problem.
	Message string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %q: %s", e.Arg, e.Message)
}

// Is implements error matching for ArgumentError.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrArgument
}

// Unwrap returns the underlying error.
func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// CacheError is returned when a cache record field cannot be decoded.
type CacheError struct {
	// Field names the record field.
	Field string
	// Value is the offending token.
	Value string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cache field %s: bad value %q", e.Field, e.Value)
	}
	return fmt.Sprintf("cache field %s: bad value %q: %v", e.Field, e.Value, e.Err)
}

// Is implements error matching for CacheError.
func (e *CacheError) Is(target error) bool {
	return target == ErrCacheFormat
}

// Unwrap returns the underlying error.
func (e *CacheError) Unwrap() error {
	return e.Err
}

var errTruncated = errors.New("record is truncated")
