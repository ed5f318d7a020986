package controls

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingControl indicates a state lacks a value for a declared control.
	// It is a configuration error, not a data error.
	ErrMissingControl = errors.New("controls: missing control value")

	// ErrUnknownControl indicates a value for a control nobody declared.
	ErrUnknownControl = errors.New("controls: unknown control")

	// ErrInvalidValue indicates a value of the wrong shape or outside the
	// declared options.
	ErrInvalidValue = errors.New("controls: invalid value")
)

// StateError ties an error to the control it concerns.
type StateError struct {
	Control string
	Err     error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Control)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

func invalid(id, format string, args ...any) error {
	return &StateError{Control: id, Err: fmt.Errorf("%w: "+format, append([]any{ErrInvalidValue}, args...)...)}
}
