package controls

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// State maps control ids to values. It is immutable: With returns a new
// State and leaves the receiver untouched, so snapshots can be shared with
// renderers freely.
type State struct {
	vals map[string]Value
}

// NewState builds a state from a map. The map is copied.
func NewState(vals map[string]Value) State {
	return State{vals: maps.Clone(vals)}
}

// Defaults returns the state holding every declaration's default.
func Defaults(decls []Declaration) State {
	vals := make(map[string]Value, len(decls))
	for _, d := range decls {
		vals[d.ID] = d.Default
	}
	return State{vals: vals}
}

func (s State) Get(id string) (Value, bool) {
	v, ok := s.vals[id]
	return v, ok
}

func (s State) With(id string, v Value) State {
	vals := make(map[string]Value, len(s.vals)+1)
	maps.Copy(vals, s.vals)
	vals[id] = v
	return State{vals: vals}
}

func (s State) Without(id string) State {
	vals := maps.Clone(s.vals)
	delete(vals, id)
	return State{vals: vals}
}

// IDs returns the control ids present, sorted.
func (s State) IDs() []string {
	return slices.Sorted(maps.Keys(s.vals))
}

func (s State) Len() int { return len(s.vals) }

func (s State) Equal(o State) bool {
	return maps.EqualFunc(s.vals, o.vals, Value.Equal)
}

// Fill returns s with every declared control it lacks set to its default.
func (s State) Fill(decls []Declaration) State {
	vals := maps.Clone(s.vals)
	if vals == nil {
		vals = make(map[string]Value, len(decls))
	}
	for _, d := range decls {
		if _, ok := vals[d.ID]; !ok {
			vals[d.ID] = d.Default
		}
	}
	return State{vals: vals}
}

// Merge overlays o on s.
func (s State) Merge(o State) State {
	vals := maps.Clone(s.vals)
	if vals == nil {
		vals = make(map[string]Value, len(o.vals))
	}
	maps.Copy(vals, o.vals)
	return State{vals: vals}
}

func (s State) String() string {
	var b strings.Builder
	for i, id := range s.IDs() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(id)
		b.WriteByte('=')
		b.WriteString(s.vals[id].Format())
	}
	return b.String()
}

func (s State) MarshalJSON() ([]byte, error) {
	if s.vals == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.vals)
}

func (s *State) UnmarshalJSON(data []byte) error {
	var vals map[string]Value
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	*s = State{vals: vals}
	return nil
}

func (s State) MarshalYAML() (any, error) {
	if s.vals == nil {
		return map[string]Value{}, nil
	}
	return s.vals, nil
}

// UnmarshalYAML decodes each entry through Value.UnmarshalYAML. yaml.v3
// skips custom unmarshalers for null map values, so those are decoded by
// hand.
func (s *State) UnmarshalYAML(node *yaml.Node) error {
	var nodes map[string]yaml.Node
	if err := node.Decode(&nodes); err != nil {
		return err
	}
	vals := make(map[string]Value, len(nodes))
	for id, n := range nodes {
		var v Value
		if err := v.UnmarshalYAML(&n); err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		vals[id] = v
	}
	*s = State{vals: vals}
	return nil
}

// Validate checks that s holds a value for every declaration, nothing else,
// and that each value has the shape its widget produces. Option membership
// is not checked here; see Declaration.Normalize.
func Validate(s State, decls []Declaration) error {
	declared := make(map[string]bool, len(decls))
	for _, d := range decls {
		declared[d.ID] = true
		v, ok := s.vals[d.ID]
		if !ok {
			return &StateError{Control: d.ID, Err: ErrMissingControl}
		}
		if err := d.checkShape(v); err != nil {
			return err
		}
	}
	for _, id := range s.IDs() {
		if !declared[id] {
			return &StateError{Control: id, Err: ErrUnknownControl}
		}
	}
	return nil
}

// Find returns the declaration with the given id.
func Find(decls []Declaration, id string) (Declaration, bool) {
	for _, d := range decls {
		if d.ID == id {
			return d, true
		}
	}
	return Declaration{}, false
}
