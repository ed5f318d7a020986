package frame

import (
	"errors"
	"fmt"
)

// Domain errors for dataset loading and column access.
var (
	// ErrMissingColumn indicates a referenced column is absent from the schema.
	ErrMissingColumn = errors.New("frame: missing column")

	// ErrWrongKind indicates a column exists but holds a different kind of value.
	ErrWrongKind = errors.New("frame: column has wrong kind")

	// ErrMalformedInput indicates a value that cannot be parsed as its column's kind.
	ErrMalformedInput = errors.New("frame: malformed input")

	// ErrDuplicateColumn indicates two columns share a name.
	ErrDuplicateColumn = errors.New("frame: duplicate column")
)

// ColumnError wraps an error with the column it concerns.
type ColumnError struct {
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Column)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}

// ParseError reports a value that failed to parse at load time.
// Line is 1-based and counts the header line.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Kind   Kind
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("frame: line %d: column %q: cannot parse %q as %s", e.Line, e.Column, e.Value, e.Kind)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedInput
}

func missing(column string) error {
	return &ColumnError{Column: column, Err: ErrMissingColumn}
}
