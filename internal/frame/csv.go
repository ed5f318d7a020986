package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadCSV loads a dataset from CSV with a header row. When cols is empty,
// every header column is loaded and its kind inferred from the data;
// otherwise only the named columns are loaded and each must appear in the
// header.
func ReadCSV(name string, r io.Reader, cols ...Column) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: empty input", ErrMalformedInput, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, name, err)
	}

	return FromRecords(name, header, records, cols...)
}

// FromRecords builds a dataset from a header and raw string records, with the
// same column selection and kind inference rules as ReadCSV.
func FromRecords(name string, header []string, records [][]string, cols ...Column) (*Dataset, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}

	if len(cols) == 0 {
		cols = make([]Column, len(header))
		for i, h := range header {
			samples := make([]string, len(records))
			for j, rec := range records {
				if i < len(rec) {
					samples[j] = rec[i]
				}
			}
			cols[i] = Column{Name: h, Kind: inferKind(samples)}
		}
	}

	fields := make([]int, len(cols))
	for i, c := range cols {
		p, ok := pos[c.Name]
		if !ok {
			return nil, missing(c.Name)
		}
		fields[i] = p
	}

	b := NewBuilder(name, cols...)
	row := make([]string, len(cols))
	for n, rec := range records {
		for i, p := range fields {
			if p >= len(rec) {
				return nil, fmt.Errorf("%w: %s: line %d: short record", ErrMalformedInput, name, n+2)
			}
			row[i] = rec[p]
		}
		if err := b.Append(row...); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// WriteCSV writes the view's rows for the given columns, header first.
func WriteCSV(w io.Writer, v View, cols ...string) error {
	if len(cols) == 0 {
		for _, c := range v.ds.schema.cols {
			cols = append(cols, c.Name)
		}
	}
	for _, c := range cols {
		if _, err := v.ds.schema.Require(c); err != nil {
			return err
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	rec := make([]string, len(cols))
	for i := 0; i < v.Len(); i++ {
		for j, c := range cols {
			rec[j] = v.Text(c, i)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
