package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{time.DateOnly, time.RFC3339, "1/2/2006"}

// Builder accumulates rows and produces a Dataset. A Builder is not safe for
// concurrent use.
type Builder struct {
	name   string
	schema Schema
	rows   int
	nums   map[string][]float64
	texts  map[string][]string
	dates  map[string][]time.Time
	err    error
}

func NewBuilder(name string, cols ...Column) *Builder {
	b := &Builder{
		name:  name,
		nums:  make(map[string][]float64),
		texts: make(map[string][]string),
		dates: make(map[string][]time.Time),
	}
	b.schema, b.err = NewSchema(cols...)
	return b
}

// Append parses one row of raw values, one per schema column. Blank numeric
// cells load as NaN. The first error sticks and is returned by Build.
func (b *Builder) Append(values ...string) error {
	if b.err != nil {
		return b.err
	}
	line := b.rows + 2
	if len(values) != b.schema.Len() {
		b.err = fmt.Errorf("%w: line %d: got %d fields, want %d", ErrMalformedInput, line, len(values), b.schema.Len())
		return b.err
	}
	parsed := make([]any, len(values))
	for i, c := range b.schema.cols {
		v, err := parseValue(c.Kind, values[i])
		if err != nil {
			b.err = &ParseError{Line: line, Column: c.Name, Value: values[i], Kind: c.Kind}
			return b.err
		}
		parsed[i] = v
	}
	for i, c := range b.schema.cols {
		switch v := parsed[i].(type) {
		case float64:
			b.nums[c.Name] = append(b.nums[c.Name], v)
		case time.Time:
			b.dates[c.Name] = append(b.dates[c.Name], v)
		case string:
			b.texts[c.Name] = append(b.texts[c.Name], v)
		}
	}
	b.rows++
	return nil
}

func (b *Builder) Build() (*Dataset, error) {
	if b.err != nil {
		return nil, b.err
	}
	ds := &Dataset{
		name:   b.name,
		schema: b.schema,
		rows:   b.rows,
		nums:   make(map[string][]float64),
		texts:  make(map[string][]string),
		dates:  make(map[string][]time.Time),
	}
	for _, c := range b.schema.cols {
		switch c.Kind {
		case Numeric:
			ds.nums[c.Name] = append(make([]float64, 0, b.rows), b.nums[c.Name]...)
		case Date:
			ds.dates[c.Name] = append(make([]time.Time, 0, b.rows), b.dates[c.Name]...)
		default:
			ds.texts[c.Name] = append(make([]string, 0, b.rows), b.texts[c.Name]...)
		}
	}
	return ds, nil
}

func parseValue(kind Kind, raw string) (any, error) {
	s := strings.TrimSpace(raw)
	switch kind {
	case Numeric:
		if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "na") {
			return math.NaN(), nil
		}
		return strconv.ParseFloat(s, 64)
	case Date:
		return parseDate(s)
	default:
		return s, nil
	}
}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// inferKind picks the narrowest kind that parses every non-blank sample.
func inferKind(samples []string) Kind {
	numeric, date, seen := true, true, false
	for _, s := range samples {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		seen = true
		if numeric {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				numeric = false
			}
		}
		if date {
			if _, err := parseDate(s); err != nil {
				date = false
			}
		}
		if !numeric && !date {
			return Categorical
		}
	}
	switch {
	case !seen:
		return Categorical
	case numeric:
		return Numeric
	case date:
		return Date
	default:
		return Categorical
	}
}
