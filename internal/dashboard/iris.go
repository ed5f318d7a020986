package dashboard

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/vizdash/internal/chart"
	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/datasets"
	"github.com/san-kum/vizdash/internal/derive"
	"github.com/san-kum/vizdash/internal/frame"
)

var irisNumeric = []string{"sepal_length", "sepal_width", "petal_length", "petal_width"}

const irisBins = 25

// Iris explores the iris sample: a scatter of two chosen measurements, a
// histogram, a box plot and a scatter matrix, all limited to the selected
// species. No species selected shows every species.
func Iris() Definition {
	return Definition{
		Name:        "iris",
		Title:       "Iris Dashboard",
		Description: "Pick two measurements and a set of species.",
		Dataset:     "iris",
		Columns:     datasets.IrisColumns[:5],
		Declare:     declareIris,
		Filters: []FilterDecl{
			{Control: "species", Column: "species", Match: MatchMembership, Policy: derive.EmptyMeansAll},
		},
		Outputs: []OutputDecl{
			{ID: "scatter", Title: "Scatter", Kind: chart.Scatter, Build: irisScatter},
			{ID: "hist", Title: "Histogram", Kind: chart.Histogram, Build: irisHistogram},
			{ID: "box", Title: "Box", Kind: chart.Box, Build: irisBox},
			{ID: "pair", Title: "Scatter Matrix", Kind: chart.Matrix, Build: irisPair},
		},
	}
}

func declareIris(ds *frame.Dataset) ([]controls.Declaration, error) {
	species, err := ds.Distinct("species")
	if err != nil {
		return nil, err
	}
	return []controls.Declaration{
		{ID: "x-col", Label: "X-axis", Kind: controls.Dropdown, Options: controls.Options(irisNumeric...), Default: controls.Scalar("sepal_length")},
		{ID: "y-col", Label: "Y-axis", Kind: controls.Dropdown, Options: controls.Options(irisNumeric...), Default: controls.Scalar("sepal_width")},
		{ID: "species", Label: "Species", Kind: controls.MultiDropdown, Options: controls.Options(species...), Default: controls.List(species...)},
	}, nil
}

func irisScatter(r *Request) (chart.Spec, error) {
	v, err := r.Filtered()
	if err != nil {
		return chart.Spec{}, err
	}
	x, y := r.Scalar("x-col"), r.Scalar("y-col")
	spec, err := scatterBy(v, x, y, "species", r.Palette("species"))
	if err != nil {
		return chart.Spec{}, err
	}
	spec.Title = fmt.Sprintf("Scatter: %s vs %s", x, y)
	spec.Layout.Height = 420
	return spec, nil
}

func irisHistogram(r *Request) (chart.Spec, error) {
	v, err := r.Filtered()
	if err != nil {
		return chart.Spec{}, err
	}
	x := r.Scalar("x-col")
	h, err := derive.HistogramBy(v, x, "species", irisBins)
	if err != nil {
		return chart.Spec{}, err
	}
	pal := r.Palette("species")
	spec := chart.Spec{
		Kind:   chart.Histogram,
		Title:  "Histogram: " + x,
		X:      chart.Axis{Title: x},
		Y:      chart.Axis{Title: "count"},
		Edges:  h.Edges,
		Layout: chart.Layout{BarMode: "overlay", ShowLegend: true, Height: 420},
	}
	for i, key := range h.Keys {
		spec.Series = append(spec.Series, chart.Series{Name: key, Color: pal.Color(key), Values: h.Counts[i]})
	}
	return spec, nil
}

func irisBox(r *Request) (chart.Spec, error) {
	v, err := r.Filtered()
	if err != nil {
		return chart.Spec{}, err
	}
	y := r.Scalar("y-col")
	boxes, err := derive.BoxBy(v, y, "species")
	if err != nil {
		return chart.Spec{}, err
	}
	pal := r.Palette("species")
	spec := chart.Spec{
		Kind:   chart.Box,
		Title:  fmt.Sprintf("Box: %s by species", y),
		X:      chart.Axis{Title: "species"},
		Y:      chart.Axis{Title: y},
		Layout: chart.Layout{Height: 420},
	}
	for _, b := range boxes {
		spec.X.Categories = append(spec.X.Categories, b.Key)
		s := chart.Series{Name: b.Key, Color: pal.Color(b.Key), Values: dropNaN(b.Points)}
		if b.N > 0 {
			s.Stats = &chart.BoxStats{Min: b.Min, Q1: b.Q1, Median: b.Median, Q3: b.Q3, Max: b.Max}
		}
		spec.Series = append(spec.Series, s)
	}
	return spec, nil
}

func irisPair(r *Request) (chart.Spec, error) {
	v, err := r.Filtered()
	if err != nil {
		return chart.Spec{}, err
	}
	parts, err := derive.Split(v, "species")
	if err != nil {
		return chart.Spec{}, err
	}
	pal := r.Palette("species")
	spec := chart.Spec{
		Kind:       chart.Matrix,
		Title:      "Scatter Matrix",
		Dimensions: slices.Clone(irisNumeric),
		Layout:     chart.Layout{ShowLegend: true, Height: 420},
	}
	for _, p := range parts {
		cols := make([][]float64, len(irisNumeric))
		for i, dim := range irisNumeric {
			if cols[i], err = p.View.Floats(dim); err != nil {
				return chart.Spec{}, err
			}
		}
		s := chart.Series{Name: p.Key, Color: pal.Color(p.Key), Dims: make([][]float64, len(cols))}
	rows:
		for row := 0; row < p.View.Len(); row++ {
			for _, col := range cols {
				if math.IsNaN(col[row]) {
					continue rows
				}
			}
			for i, col := range cols {
				s.Dims[i] = append(s.Dims[i], col[row])
			}
		}
		spec.Series = append(spec.Series, s)
	}
	return spec, nil
}
