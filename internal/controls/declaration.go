package controls

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind is the widget type of a control.
type Kind int

const (
	Dropdown Kind = iota
	MultiDropdown
	Slider
)

func (k Kind) String() string {
	switch k {
	case Dropdown:
		return "dropdown"
	case MultiDropdown:
		return "multi-dropdown"
	case Slider:
		return "slider"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(text []byte) error {
	for _, c := range []Kind{Dropdown, MultiDropdown, Slider} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("controls: unknown kind %q", text)
}

type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Options builds options whose label equals their value.
func Options(values ...string) []Option {
	opts := make([]Option, len(values))
	for i, v := range values {
		opts[i] = Option{Label: v, Value: v}
	}
	return opts
}

// Declaration describes one control: its id, widget kind, allowed values and
// default. For sliders the options are the marks, in ascending order.
type Declaration struct {
	ID        string   `json:"id" yaml:"id"`
	Label     string   `json:"label" yaml:"label"`
	Kind      Kind     `json:"kind" yaml:"kind"`
	Options   []Option `json:"options" yaml:"options"`
	Default   Value    `json:"default" yaml:"default"`
	Clearable bool     `json:"clearable" yaml:"clearable"`
}

func (d Declaration) Values() []string {
	vals := make([]string, len(d.Options))
	for i, o := range d.Options {
		vals[i] = o.Value
	}
	return vals
}

// LabelOf returns the label of an option value, or the value itself.
func (d Declaration) LabelOf(value string) string {
	for _, o := range d.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func (d Declaration) index(value string) int {
	for i, o := range d.Options {
		if o.Value == value {
			return i
		}
	}
	return -1
}

// Normalize checks v against the declaration and returns its canonical form:
// slider values snap to the nearest mark, multi-select lists are deduplicated
// and put in option order. Values outside the options fail with
// ErrInvalidValue.
func (d Declaration) Normalize(v Value) (Value, error) {
	if err := d.checkShape(v); err != nil {
		return Value{}, err
	}
	if v.IsNull() {
		return v, nil
	}

	switch d.Kind {
	case MultiDropdown:
		seen := make(map[string]bool)
		for _, item := range v.Items() {
			if d.index(item) < 0 {
				return Value{}, invalid(d.ID, "%q is not an option", item)
			}
			seen[item] = true
		}
		var items []string
		for _, o := range d.Options {
			if seen[o.Value] {
				items = append(items, o.Value)
			}
		}
		return List(items...), nil
	case Slider:
		f, ok := v.Float()
		if !ok {
			return Value{}, invalid(d.ID, "%q is not a number", v.String())
		}
		return d.snap(f)
	default:
		if d.index(v.String()) < 0 {
			return Value{}, invalid(d.ID, "%q is not an option", v.String())
		}
		return v, nil
	}
}

func (d Declaration) snap(f float64) (Value, error) {
	best, bestDist := "", math.Inf(1)
	for _, o := range d.Options {
		m, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		if dist := math.Abs(m - f); dist < bestDist {
			best, bestDist = o.Value, dist
		}
	}
	if best == "" {
		return Value{}, invalid(d.ID, "slider has no numeric marks")
	}
	return Scalar(best), nil
}

// checkShape verifies v has the form the widget produces, without looking
// at the options.
func (d Declaration) checkShape(v Value) error {
	switch {
	case v.IsNull():
		if d.Kind != MultiDropdown && !d.Clearable {
			return invalid(d.ID, "%s cannot be cleared", d.Kind)
		}
	case d.Kind == MultiDropdown:
		if !v.IsList() {
			return invalid(d.ID, "expected a list")
		}
	case v.IsList():
		return invalid(d.ID, "expected a single value")
	}
	return nil
}

// Step moves a dropdown or slider by delta options. Dropdowns wrap around,
// sliders stop at either end. Multi-select values are returned unchanged.
func (d Declaration) Step(v Value, delta int) Value {
	n := len(d.Options)
	if n == 0 || d.Kind == MultiDropdown {
		return v
	}
	i := d.index(v.String())
	if i < 0 {
		i = 0
		if delta > 0 {
			delta--
		}
	}
	switch d.Kind {
	case Slider:
		i = min(max(i+delta, 0), n-1)
	default:
		i = ((i+delta)%n + n) % n
	}
	return Scalar(d.Options[i].Value)
}

// Toggle adds or removes item from a multi-select value, keeping option order.
func (d Declaration) Toggle(v Value, item string) Value {
	items := v.Items()
	if i := slices.Index(items, item); i >= 0 {
		items = slices.Delete(items, i, i+1)
	} else {
		items = append(items, item)
	}
	out, err := d.Normalize(List(items...))
	if err != nil {
		return v
	}
	return out
}

// All returns the multi-select value with every option selected.
func (d Declaration) All() Value {
	return List(d.Values()...)
}

// Parse reads a value from its command-line or query-string form. Multi
// selects take a comma separated list; an empty string clears a clearable
// control and empties a multi select.
func (d Declaration) Parse(raw string) Value {
	raw = strings.TrimSpace(raw)
	switch {
	case d.Kind == MultiDropdown:
		if raw == "" {
			return List()
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return List(parts...)
	case raw == "" && d.Clearable:
		return Null()
	default:
		return Scalar(raw)
	}
}
