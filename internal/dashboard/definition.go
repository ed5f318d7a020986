package dashboard

import (
	"github.com/san-kum/vizdash/internal/chart"
	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/derive"
	"github.com/san-kum/vizdash/internal/frame"
)

// Definition is the static description of a dashboard. Everything that
// depends on loaded data (control options, palettes) is computed by New.
type Definition struct {
	Name        string
	Title       string
	Description string

	// Dataset is the builtin dataset loaded when no source override is
	// configured. Columns lists every column the outputs read.
	Dataset string
	Columns []frame.Column

	// Declare builds the control declarations from the loaded data. Nil
	// means the dashboard has no controls.
	Declare func(ds *frame.Dataset) ([]controls.Declaration, error)

	// Filters produce the filtered view shared by outputs, applied in order.
	Filters []FilterDecl

	// Outputs are recomputed in this order on every change.
	Outputs []OutputDecl

	Selection *SelectionDecl
}

// Match is how a filter compares a control value with a column.
type Match int

const (
	MatchMembership Match = iota
	MatchEquals
)

func (m Match) String() string {
	if m == MatchEquals {
		return "equals"
	}
	return "in"
}

// FilterDecl ties a control to a column.
type FilterDecl struct {
	Control string
	Column  string
	Match   Match
	// Policy applies to membership filters only.
	Policy derive.EmptyPolicy
}

func (f FilterDecl) build(s controls.State) derive.Filter {
	v, _ := s.Get(f.Control)
	if f.Match == MatchEquals {
		return derive.Equals{Column: f.Column, Value: v.String()}
	}
	return derive.Membership{Column: f.Column, Values: v.Items(), Policy: f.Policy}
}

// OutputDecl declares one visual output.
type OutputDecl struct {
	ID    string
	Title string
	Kind  chart.Kind
	Build func(r *Request) (chart.Spec, error)
}

// SelectionDecl declares click selection: clicks on Output store a value
// of Column. Fallback describes what dependent outputs show when nothing is
// selected.
type SelectionDecl struct {
	Output   string
	Column   string
	Fallback string
}
