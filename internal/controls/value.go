package controls

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is the current value of one control: null, a scalar, or a list of
// scalars. Scalars are kept as strings; numeric controls parse on read.
type Value struct {
	list   bool
	null   bool
	scalar string
	items  []string
}

// Null returns the null value.
func Null() Value { return Value{null: true} }

func Scalar(s string) Value { return Value{scalar: s} }

func Number(f float64) Value { return Value{scalar: strconv.FormatFloat(f, 'f', -1, 64)} }

// List returns a list value. A nil or empty items yields the empty list,
// which is distinct from Null.
func List(items ...string) Value {
	return Value{list: true, items: slices.Clone(items)}
}

func (v Value) IsNull() bool { return v.null }
func (v Value) IsList() bool { return v.list }

// String returns the scalar, or "" for null and list values.
func (v Value) String() string {
	if v.null || v.list {
		return ""
	}
	return v.scalar
}

// Float parses the scalar as a number.
func (v Value) Float() (float64, bool) {
	if v.null || v.list {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.scalar, 64)
	return f, err == nil
}

// Items returns a copy of the list items. A scalar yields a one-item list
// and null yields nil.
func (v Value) Items() []string {
	switch {
	case v.null:
		return nil
	case v.list:
		return slices.Clone(v.items)
	default:
		return []string{v.scalar}
	}
}

func (v Value) Equal(o Value) bool {
	if v.null || o.null {
		return v.null == o.null
	}
	if v.list != o.list {
		return false
	}
	if v.list {
		return slices.Equal(v.items, o.items)
	}
	return v.scalar == o.scalar
}

// Format renders the value for logs and CLI output.
func (v Value) Format() string {
	switch {
	case v.null:
		return "null"
	case v.list:
		return fmt.Sprintf("%v", v.items)
	default:
		return v.scalar
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.null:
		return []byte("null"), nil
	case v.list:
		items := v.items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	default:
		if f, err := strconv.ParseFloat(v.scalar, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == v.scalar {
			return []byte(v.scalar), nil
		}
		return json.Marshal(v.scalar)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Null()
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, len(raw))
		for i, r := range raw {
			s, err := jsonScalar(r)
			if err != nil {
				return err
			}
			items[i] = s
		}
		*v = List(items...)
		return nil
	}
	s, err := jsonScalar(data)
	if err != nil {
		return err
	}
	*v = Scalar(s)
	return nil
}

func jsonScalar(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return strconv.FormatBool(b), nil
	}
	return "", fmt.Errorf("controls: unsupported value %s", data)
}

func (v Value) MarshalYAML() (any, error) {
	switch {
	case v.null:
		return nil, nil
	case v.list:
		items := v.items
		if items == nil {
			items = []string{}
		}
		return items, nil
	default:
		return v.scalar, nil
	}
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*v = Null()
			return nil
		}
		*v = Scalar(node.Value)
		return nil
	case yaml.SequenceNode:
		items := make([]string, len(node.Content))
		for i, n := range node.Content {
			if n.Kind != yaml.ScalarNode {
				return fmt.Errorf("controls: line %d: list items must be scalars", n.Line)
			}
			items[i] = n.Value
		}
		*v = List(items...)
		return nil
	default:
		return fmt.Errorf("controls: line %d: value must be a scalar or a list", node.Line)
	}
}
