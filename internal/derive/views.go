package derive

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/san-kum/vizdash/internal/frame"
)

// TopN returns the n rows with the highest values of col, highest first.
// Ties keep their input order. Rows whose value is NaN are never ranked, so
// fewer than n rows come back when the view has fewer than n numbers.
func TopN(v frame.View, col string, n int) (frame.View, error) {
	if _, err := v.Dataset().Schema().Require(col, frame.Numeric); err != nil {
		return frame.View{}, err
	}
	ds := v.Dataset()
	finite := v.Select(func(row int) bool { return !math.IsNaN(ds.Float(col, row)) })
	sorted, err := SortBy(finite, col, false)
	if err != nil {
		return frame.View{}, err
	}
	return sorted.Head(n), nil
}

// SortBy orders the view by a numeric column with a stable sort. NaN sorts
// last in either direction.
func SortBy(v frame.View, col string, ascending bool) (frame.View, error) {
	vals, err := v.Floats(col)
	if err != nil {
		return frame.View{}, err
	}
	pos := make([]int, len(vals))
	for i := range pos {
		pos[i] = i
	}
	sort.SliceStable(pos, func(i, j int) bool {
		a, b := vals[pos[i]], vals[pos[j]]
		switch {
		case math.IsNaN(a):
			return false
		case math.IsNaN(b):
			return true
		case ascending:
			return a < b
		default:
			return a > b
		}
	})
	return v.Take(pos), nil
}

// Group is one key of a group-by aggregation. Mean is NaN when every value
// in the group is NaN; it encodes as JSON null.
type Group struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

func (g Group) MarshalJSON() ([]byte, error) {
	var mean *float64
	if !math.IsNaN(g.Mean) && !math.IsInf(g.Mean, 0) {
		mean = &g.Mean
	}
	return json.Marshal(struct {
		Key   string   `json:"key"`
		Count int      `json:"count"`
		Mean  *float64 `json:"mean"`
	}{g.Key, g.Count, mean})
}

// GroupMean averages val per distinct value of key. Every key present in the
// view yields exactly one group, in sorted key order. Count includes rows
// whose value is NaN; Mean skips them.
func GroupMean(v frame.View, key, val string) ([]Group, error) {
	if _, err := v.Dataset().Schema().Require(val, frame.Numeric); err != nil {
		return nil, err
	}
	parts, err := Split(v, key)
	if err != nil {
		return nil, err
	}
	groups := make([]Group, len(parts))
	for i, p := range parts {
		vals, _ := p.View.Floats(val)
		groups[i] = Group{Key: p.Key, Count: p.View.Len(), Mean: mean(vals)}
	}
	return groups, nil
}

// Part is the slice of a view sharing one key value.
type Part struct {
	Key  string
	View frame.View
}

// Split partitions the view by key, in sorted key order. Rows keep their
// relative order within each part.
func Split(v frame.View, key string) ([]Part, error) {
	keys, err := v.Distinct(key)
	if err != nil {
		return nil, err
	}
	ds := v.Dataset()
	byKey := make(map[string][]int, len(keys))
	for i := 0; i < v.Len(); i++ {
		k := ds.Text(key, v.Row(i))
		byKey[k] = append(byKey[k], i)
	}
	parts := make([]Part, len(keys))
	for i, k := range keys {
		parts[i] = Part{Key: k, View: v.Take(byKey[k])}
	}
	return parts, nil
}

// Histogram holds counts per part over shared bin edges.
type Histogram struct {
	Edges  []float64   `json:"edges"`
	Keys   []string    `json:"keys"`
	Counts [][]float64 `json:"counts"`
}

// HistogramBy bins col into bins equal-width bins spanning the whole view,
// counting separately per value of by. An empty by counts the view as one
// part keyed "all".
func HistogramBy(v frame.View, col, by string, bins int) (Histogram, error) {
	if bins < 1 {
		return Histogram{}, fmt.Errorf("derive: bins must be positive, got %d", bins)
	}
	all, err := v.Floats(col)
	if err != nil {
		return Histogram{}, err
	}
	parts := []Part{{Key: "all", View: v}}
	if by != "" {
		if parts, err = Split(v, by); err != nil {
			return Histogram{}, err
		}
	}

	lo, hi := bounds(all)
	if hi == lo {
		hi = lo + 1
	}
	width := (hi - lo) / float64(bins)
	h := Histogram{Edges: make([]float64, bins+1)}
	for i := range h.Edges {
		h.Edges[i] = lo + float64(i)*width
	}
	h.Edges[bins] = hi

	for _, p := range parts {
		counts := make([]float64, bins)
		vals, _ := p.View.Floats(col)
		for _, x := range vals {
			if math.IsNaN(x) {
				continue
			}
			b := int((x - lo) / width)
			counts[min(max(b, 0), bins-1)]++
		}
		h.Keys = append(h.Keys, p.Key)
		h.Counts = append(h.Counts, counts)
	}
	return h, nil
}

// Box is the five-number summary of one part.
type Box struct {
	Key    string    `json:"key"`
	N      int       `json:"n"`
	Min    float64   `json:"min"`
	Q1     float64   `json:"q1"`
	Median float64   `json:"median"`
	Q3     float64   `json:"q3"`
	Max    float64   `json:"max"`
	Points []float64 `json:"points"`
}

// BoxBy summarizes col per value of by. Quartiles interpolate linearly
// between order statistics.
func BoxBy(v frame.View, col, by string) ([]Box, error) {
	if _, err := v.Floats(col); err != nil {
		return nil, err
	}
	parts, err := Split(v, by)
	if err != nil {
		return nil, err
	}
	boxes := make([]Box, 0, len(parts))
	for _, p := range parts {
		vals, _ := p.View.Floats(col)
		sorted := slices.DeleteFunc(slices.Clone(vals), math.IsNaN)
		slices.Sort(sorted)
		b := Box{Key: p.Key, N: len(sorted), Points: vals}
		if len(sorted) > 0 {
			b.Min = sorted[0]
			b.Q1 = Quantile(sorted, 0.25)
			b.Median = Quantile(sorted, 0.5)
			b.Q3 = Quantile(sorted, 0.75)
			b.Max = sorted[len(sorted)-1]
		}
		boxes = append(boxes, b)
	}
	return boxes, nil
}

// Quantile returns the q-th quantile of sorted values with linear
// interpolation.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func mean(vals []float64) float64 {
	sum, n := 0.0, 0
	for _, x := range vals {
		if !math.IsNaN(x) {
			sum += x
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func bounds(vals []float64) (lo, hi float64) {
	finite := slices.DeleteFunc(slices.Clone(vals), math.IsNaN)
	if len(finite) == 0 {
		return 0, 1
	}
	return slices.Min(finite), slices.Max(finite)
}

// Extent returns the min and max of col over the view, ignoring NaN.
func Extent(v frame.View, col string) (lo, hi float64, err error) {
	vals, err := v.Floats(col)
	if err != nil {
		return 0, 0, err
	}
	lo, hi = bounds(vals)
	return lo, hi, nil
}
