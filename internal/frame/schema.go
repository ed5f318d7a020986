package frame

import "fmt"

// Kind is the value type held by a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
	Date
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Date:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column names one column and its kind.
type Column struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// Schema is the ordered column list of a dataset.
type Schema struct {
	cols  []Column
	index map[string]int
}

func NewSchema(cols ...Column) (Schema, error) {
	s := Schema{
		cols:  make([]Column, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if _, dup := s.index[c.Name]; dup {
			return Schema{}, &ColumnError{Column: c.Name, Err: ErrDuplicateColumn}
		}
		s.cols[i] = c
		s.index[c.Name] = i
	}
	return s, nil
}

// Columns returns a copy of the column list.
func (s Schema) Columns() []Column {
	out := make([]Column, len(s.cols))
	copy(out, s.cols)
	return out
}

func (s Schema) Len() int { return len(s.cols) }

func (s Schema) Lookup(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.cols[i], true
}

// Require returns the named column, failing with ErrMissingColumn when it is
// absent and ErrWrongKind when it is not one of kinds. An empty kinds list
// accepts any kind.
func (s Schema) Require(name string, kinds ...Kind) (Column, error) {
	c, ok := s.Lookup(name)
	if !ok {
		return Column{}, missing(name)
	}
	if len(kinds) == 0 {
		return c, nil
	}
	for _, k := range kinds {
		if c.Kind == k {
			return c, nil
		}
	}
	return Column{}, &ColumnError{Column: name, Err: fmt.Errorf("%w: %s", ErrWrongKind, c.Kind)}
}

// Names returns column names of the given kind in schema order.
func (s Schema) Names(kind Kind) []string {
	var names []string
	for _, c := range s.cols {
		if c.Kind == kind {
			names = append(names, c.Name)
		}
	}
	return names
}
