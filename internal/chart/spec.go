// Package chart defines Spec, the renderer-neutral description of one
// chart. Specs are plain data: they marshal to JSON and compare with
// cmp.Equal, which is how recomputation results are checked for purity.
package chart

// Kind selects how a Spec is drawn.
type Kind string

const (
	Scatter    Kind = "scatter"
	Histogram  Kind = "histogram"
	Box        Kind = "box"
	Matrix     Kind = "matrix"
	Choropleth Kind = "choropleth"
	Bar        Kind = "bar"
	Line       Kind = "line"
)

type Orientation string

const (
	Vertical   Orientation = "v"
	Horizontal Orientation = "h"
)

type Axis struct {
	Title string `json:"title,omitempty"`
	// Categories is set for categorical axes, in display order.
	Categories []string `json:"categories,omitempty"`
}

// Series is one colored trace. Which fields are set depends on the Kind:
//
//	Scatter, Line   X, Y (Hover optional)
//	Bar             Labels, Values
//	Histogram       Values holds counts over Spec.Edges
//	Box             Stats, Values holds the raw points
//	Matrix          Dims holds one column per Spec.Dimensions entry
//	Choropleth      Labels holds locations, Values the measure, Hover the names
type Series struct {
	Name   string      `json:"name"`
	Color  string      `json:"color"`
	X      []float64   `json:"x,omitempty"`
	Y      []float64   `json:"y,omitempty"`
	Labels []string    `json:"labels,omitempty"`
	Values []float64   `json:"values,omitempty"`
	Hover  []string    `json:"hover,omitempty"`
	Stats  *BoxStats   `json:"stats,omitempty"`
	Dims   [][]float64 `json:"dims,omitempty"`
}

type BoxStats struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

type Layout struct {
	BarMode    string `json:"bar_mode,omitempty"`
	ShowLegend bool   `json:"show_legend"`
	Height     int    `json:"height,omitempty"`
}

// Spec fully describes one chart.
type Spec struct {
	Kind        Kind        `json:"kind"`
	Title       string      `json:"title"`
	X           Axis        `json:"x"`
	Y           Axis        `json:"y"`
	Orientation Orientation `json:"orientation,omitempty"`
	Series      []Series    `json:"series"`
	Layout      Layout      `json:"layout"`

	// Edges are the shared bin edges of a histogram.
	Edges []float64 `json:"edges,omitempty"`
	// Dimensions are the column names of a scatter matrix.
	Dimensions []string `json:"dimensions,omitempty"`
	// Locations names the location scheme of a choropleth ("ISO-3").
	Locations string `json:"locations,omitempty"`
	// ValueLabel names the measure a choropleth colors by.
	ValueLabel string `json:"value_label,omitempty"`
}

// Points returns the total number of data points across series.
func (s Spec) Points() int {
	n := 0
	for _, sr := range s.Series {
		switch {
		case len(sr.X) > 0:
			n += len(sr.X)
		case len(sr.Dims) > 0:
			n += len(sr.Dims[0])
		default:
			n += len(sr.Values)
		}
	}
	return n
}
