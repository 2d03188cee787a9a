package engine

import (
	"errors"
	"fmt"
)

// Contract violations, reported by New before any loading starts.
var (
	ErrNoLoader          = errors.New("engine: loader is required")
	ErrNoStore           = errors.New("engine: store is required")
	ErrNegativeLookAhead = errors.New("engine: look-ahead must not be negative")
)

// ErrClosed is returned by blocking calls on a closed engine.
var ErrClosed = errors.New("engine: closed")

// LoadError records a failed increment.
//
// It is the sticky error an engine reports through Err and ErrorObservers
// until the next wake clears it. Already loaded elements are untouched.
type LoadError struct {
	// Engine is the id of the engine whose loader failed.
	Engine string

	// Gen is the generation of the background task that ran the load.
	Gen int64

	// Err is the error returned by the loader.
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load failed (engine=%s, gen=%d): %v", e.Engine, e.Gen, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err is, or wraps, a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
