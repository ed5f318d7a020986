package dashboard

import (
	"errors"

	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/derive"
	"github.com/san-kum/vizdash/internal/frame"
)

var (
	ErrUnknownDashboard = errors.New("dashboard: unknown dashboard")
	ErrUnknownOutput    = errors.New("dashboard: unknown output")

	// ErrNotClickable is returned for a click on an output that does not
	// feed the selection.
	ErrNotClickable = errors.New("dashboard: output does not accept clicks")

	// ErrUnknownLocation is returned for a click on a location the dataset
	// does not contain.
	ErrUnknownLocation = errors.New("dashboard: unknown location")
)

// Code classifies a per-output failure for front ends.
type Code string

const (
	CodeMissingColumn  Code = "missing_column"
	CodeWrongKind      Code = "wrong_kind"
	CodeEmptySelection Code = "empty_selection"
	CodeInvalidControl Code = "invalid_control"
	CodeMalformedInput Code = "malformed_input"
	CodeInternal       Code = "internal"
)

// CodeOf maps an error to its Code. Nil maps to "".
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, frame.ErrMissingColumn):
		return CodeMissingColumn
	case errors.Is(err, frame.ErrWrongKind):
		return CodeWrongKind
	case errors.Is(err, derive.ErrEmptySelection):
		return CodeEmptySelection
	case errors.Is(err, frame.ErrMalformedInput):
		return CodeMalformedInput
	case errors.Is(err, controls.ErrInvalidValue),
		errors.Is(err, controls.ErrMissingControl),
		errors.Is(err, controls.ErrUnknownControl):
		return CodeInvalidControl
	default:
		return CodeInternal
	}
}
