package frame

import "time"

// View is an ordered subset of a dataset's rows. It holds indices into the
// parent dataset, so creating views never copies column data.
type View struct {
	ds  *Dataset
	idx []int
}

func (v View) Dataset() *Dataset { return v.ds }
func (v View) Len() int          { return len(v.idx) }

// Row maps a view position to the dataset row index.
func (v View) Row(i int) int { return v.idx[i] }

// Rows returns a copy of the dataset row indices in view order.
func (v View) Rows() []int {
	out := make([]int, len(v.idx))
	copy(out, v.idx)
	return out
}

func (v View) Float(col string, i int) float64 { return v.ds.Float(col, v.idx[i]) }
func (v View) Text(col string, i int) string    { return v.ds.Text(col, v.idx[i]) }
func (v View) Time(col string, i int) time.Time { return v.ds.Time(col, v.idx[i]) }

// Select keeps the rows for which keep returns true, preserving order.
// keep receives the dataset row index.
func (v View) Select(keep func(row int) bool) View {
	idx := make([]int, 0, len(v.idx))
	for _, row := range v.idx {
		if keep(row) {
			idx = append(idx, row)
		}
	}
	return View{ds: v.ds, idx: idx}
}

// Take returns a view over the given view positions, in the order given.
func (v View) Take(positions []int) View {
	idx := make([]int, len(positions))
	for i, p := range positions {
		idx[i] = v.idx[p]
	}
	return View{ds: v.ds, idx: idx}
}

// Head returns the first n rows (or all rows when n exceeds the length).
func (v View) Head(n int) View {
	if n > len(v.idx) {
		n = len(v.idx)
	}
	if n < 0 {
		n = 0
	}
	return View{ds: v.ds, idx: v.idx[:n:n]}
}

// Floats returns the values of a numeric column in view order.
func (v View) Floats(col string) ([]float64, error) {
	if _, err := v.ds.schema.Require(col, Numeric); err != nil {
		return nil, err
	}
	out := make([]float64, len(v.idx))
	for i, row := range v.idx {
		out[i] = v.ds.nums[col][row]
	}
	return out, nil
}

// Texts returns the values of any column formatted as strings, in view order.
func (v View) Texts(col string) ([]string, error) {
	if _, err := v.ds.schema.Require(col); err != nil {
		return nil, err
	}
	out := make([]string, len(v.idx))
	for i, row := range v.idx {
		out[i] = v.ds.Text(col, row)
	}
	return out, nil
}

// Distinct returns the sorted distinct values of col present in the view.
func (v View) Distinct(col string) ([]string, error) {
	c, err := v.ds.schema.Require(col)
	if err != nil {
		return nil, err
	}
	return v.distinct(c), nil
}

func (v View) distinct(c Column) []string {
	seen := make(map[string]bool)
	var vals []string
	for _, row := range v.idx {
		s := v.ds.Text(c.Name, row)
		if !seen[s] {
			seen[s] = true
			vals = append(vals, s)
		}
	}
	sortDistinct(c.Kind, vals)
	return vals
}
