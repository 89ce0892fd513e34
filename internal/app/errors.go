package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrClosed indicates the application was shut down.
	ErrClosed = errors.New("application is shut down")

	// ErrUnknownAction indicates no action has the given key.
	ErrUnknownAction = errors.New("unknown action")

	// ErrUnsupportedSetting indicates the action kind has no such setting.
	ErrUnsupportedSetting = errors.New("unsupported setting")
)

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ModuleError is a module that failed to load. Loading continues with the
// other modules.
type ModuleError struct {
	Path string
	Err  error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %s: %v", e.Path, e.Err)
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}
