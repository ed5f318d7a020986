package frame

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Dataset is an immutable in-memory table. Values are stored per column
// according to the column's kind.
type Dataset struct {
	name   string
	schema Schema
	rows   int
	nums   map[string][]float64
	texts  map[string][]string
	dates  map[string][]time.Time
}

func (d *Dataset) Name() string   { return d.name }
func (d *Dataset) Len() int       { return d.rows }
func (d *Dataset) Schema() Schema { return d.schema }

// All returns a view over every row in load order.
func (d *Dataset) All() View {
	idx := make([]int, d.rows)
	for i := range idx {
		idx[i] = i
	}
	return View{ds: d, idx: idx}
}

// Float returns the numeric value at row. Non-numeric columns yield NaN.
func (d *Dataset) Float(col string, row int) float64 {
	vals, ok := d.nums[col]
	if !ok || row < 0 || row >= len(vals) {
		return math.NaN()
	}
	return vals[row]
}

// Text returns the categorical value at row. Numeric and date columns are
// formatted so that any column can act as a grouping key.
func (d *Dataset) Text(col string, row int) string {
	if row < 0 || row >= d.rows {
		return ""
	}
	if vals, ok := d.texts[col]; ok {
		return vals[row]
	}
	if vals, ok := d.nums[col]; ok {
		return FormatFloat(vals[row])
	}
	if vals, ok := d.dates[col]; ok {
		return vals[row].Format(time.DateOnly)
	}
	return ""
}

// Time returns the date value at row, or the zero time.
func (d *Dataset) Time(col string, row int) time.Time {
	vals, ok := d.dates[col]
	if !ok || row < 0 || row >= len(vals) {
		return time.Time{}
	}
	return vals[row]
}

// Distinct returns the sorted distinct values of a column. Numeric columns
// sort numerically, everything else lexically.
func (d *Dataset) Distinct(col string) ([]string, error) {
	c, err := d.schema.Require(col)
	if err != nil {
		return nil, err
	}
	return d.All().distinct(c), nil
}

// FormatFloat renders a float without trailing zeros ("2007", "5.1").
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortDistinct(kind Kind, vals []string) {
	if kind != Numeric {
		sort.Strings(vals)
		return
	}
	sort.SliceStable(vals, func(i, j int) bool {
		a, errA := strconv.ParseFloat(vals[i], 64)
		b, errB := strconv.ParseFloat(vals[j], 64)
		if errA != nil || errB != nil {
			return strings.Compare(vals[i], vals[j]) < 0
		}
		return a < b
	})
}
