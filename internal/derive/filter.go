package derive

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/san-kum/vizdash/internal/frame"
)

// ErrEmptySelection is returned by a membership filter whose policy is
// EmptyIsError when nothing is selected.
var ErrEmptySelection = errors.New("derive: empty selection")

// EmptyPolicy states what a membership filter does with an empty selection.
// Every dashboard declares one per list-valued filter.
type EmptyPolicy int

const (
	EmptyMeansNone EmptyPolicy = iota
	EmptyMeansAll
	EmptyIsError
)

func (p EmptyPolicy) String() string {
	switch p {
	case EmptyMeansNone:
		return "empty means none"
	case EmptyMeansAll:
		return "empty means all"
	case EmptyIsError:
		return "empty is an error"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

func (p EmptyPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Filter narrows a view.
type Filter interface {
	Apply(v frame.View) (frame.View, error)
}

// Membership keeps rows whose Column value is in Values. A null selection is
// treated like an empty one.
type Membership struct {
	Column string
	Values []string
	Policy EmptyPolicy
}

func (m Membership) Apply(v frame.View) (frame.View, error) {
	ds := v.Dataset()
	if _, err := ds.Schema().Require(m.Column); err != nil {
		return frame.View{}, err
	}
	if len(m.Values) == 0 {
		switch m.Policy {
		case EmptyMeansAll:
			return v, nil
		case EmptyIsError:
			return frame.View{}, fmt.Errorf("%w: %s", ErrEmptySelection, m.Column)
		default:
			return v.Select(func(int) bool { return false }), nil
		}
	}
	set := make(map[string]bool, len(m.Values))
	for _, val := range m.Values {
		set[val] = true
	}
	return v.Select(func(row int) bool {
		return set[ds.Text(m.Column, row)]
	}), nil
}

// Equals keeps rows whose Column equals Value. Numeric columns compare as
// numbers, so "2007" matches 2007.0.
type Equals struct {
	Column string
	Value  string
}

func (e Equals) Apply(v frame.View) (frame.View, error) {
	ds := v.Dataset()
	c, err := ds.Schema().Require(e.Column)
	if err != nil {
		return frame.View{}, err
	}
	if c.Kind == frame.Numeric {
		want, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			return v.Select(func(int) bool { return false }), nil
		}
		return v.Select(func(row int) bool {
			got := ds.Float(e.Column, row)
			return got == want || (math.IsNaN(got) && math.IsNaN(want))
		}), nil
	}
	return v.Select(func(row int) bool {
		return ds.Text(e.Column, row) == e.Value
	}), nil
}

// Apply runs filters in order. The first failing filter aborts.
func Apply(v frame.View, filters ...Filter) (frame.View, error) {
	var err error
	for _, f := range filters {
		if v, err = f.Apply(v); err != nil {
			return frame.View{}, err
		}
	}
	return v, nil
}
