package render

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/san-kum/vizdash/internal/chart"
	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/dashboard"
	"github.com/san-kum/vizdash/internal/datasets"
	"github.com/san-kum/vizdash/internal/dispatch"
)

func scatterSpec() chart.Spec {
	return chart.Spec{
		Kind:   chart.Scatter,
		Title:  "Scatter: a vs b",
		X:      chart.Axis{Title: "a"},
		Y:      chart.Axis{Title: "b"},
		Layout: chart.Layout{ShowLegend: true},
		Series: []chart.Series{
			{Name: "one", Color: chart.ColorAt(0), X: []float64{1, 2, 3}, Y: []float64{1, 4, 9}},
			{Name: "two", Color: chart.ColorAt(1), X: []float64{1, 2}, Y: []float64{2, 3}},
		},
	}
}

func specs() []chart.Spec {
	return []chart.Spec{
		scatterSpec(),
		{
			Kind:   chart.Line,
			Title:  "Line",
			X:      chart.Axis{Title: "year"},
			Series: []chart.Series{{Name: "avg", Color: chart.ColorAt(0), X: []float64{1990, 2000, 2010}, Y: []float64{50, 60, 65}}},
		},
		{
			Kind:   chart.Histogram,
			Title:  "Histogram",
			X:      chart.Axis{Title: "v"},
			Edges:  []float64{0, 1, 2, 3},
			Series: []chart.Series{{Name: "all", Color: chart.ColorAt(2), Values: []float64{1, 3, 2}}},
		},
		{
			Kind:   chart.Box,
			Title:  "Box",
			Y:      chart.Axis{Title: "v"},
			Series: []chart.Series{{Name: "g", Color: chart.ColorAt(3), Values: []float64{1, 2, 3, 4, 5}, Stats: &chart.BoxStats{Min: 1, Q1: 2, Median: 3, Q3: 4, Max: 5}}},
		},
		{
			Kind:        chart.Bar,
			Title:       "Bars",
			Orientation: chart.Horizontal,
			Y:           chart.Axis{Categories: []string{"low", "high"}},
			Series:      []chart.Series{{Name: "s", Color: chart.ColorAt(4), Labels: []string{"high", "low"}, Values: []float64{10, 2}}},
		},
		{
			Kind:       chart.Choropleth,
			Title:      "Map",
			Locations:  "ISO-3",
			ValueLabel: "v",
			Series:     []chart.Series{{Name: "v", Color: chart.ColorAt(0), Labels: []string{"JPN", "FRA"}, Values: []float64{82.6, 80.7}, Hover: []string{"Japan: 82.6", "France: 80.7"}}},
		},
		{
			Kind:       chart.Matrix,
			Title:      "Matrix",
			Dimensions: []string{"a", "b"},
			Series:     []chart.Series{{Name: "s", Color: chart.ColorAt(0), Dims: [][]float64{{1, 2, 3}, {3, 1, 2}}}},
		},
	}
}

func TestTerminal_Chart(t *testing.T) {
	term := NewTerminal(ThemeMinimal, 60, 10)
	for _, s := range specs() {
		out := term.Chart(s)
		if !strings.Contains(out, s.Title) {
			t.Errorf("%s: title missing from output", s.Kind)
		}
		if strings.Contains(out, "no data") {
			t.Errorf("%s: unexpected empty rendering", s.Kind)
		}
	}
}

func TestTerminal_Details(t *testing.T) {
	term := NewTerminal(ThemeMinimal, 60, 10)

	if out := term.Chart(scatterSpec()); !strings.Contains(out, "one") || !strings.Contains(out, "two") {
		t.Error("scatter legend should name both series")
	}

	ss := specs()
	bars := term.Chart(ss[4])
	if strings.Index(bars, "high") > strings.Index(bars, "low") {
		t.Error("horizontal bars should list the last category first")
	}
	choro := term.Chart(ss[5])
	if strings.Index(choro, "JPN") > strings.Index(choro, "FRA") {
		t.Error("choropleth table should be ordered by value")
	}

	empty := chart.Spec{Kind: chart.Scatter, Title: "Empty"}
	if out := term.Chart(empty); !strings.Contains(out, "no data") {
		t.Errorf("empty chart should say so, got %q", out)
	}
}

func TestTerminal_OutputError(t *testing.T) {
	term := NewTerminal(ThemeMinimal, 60, 10)
	o := dashboard.Output{
		ID:      "hist",
		Code:    dashboard.CodeMissingColumn,
		Message: `column "nope" not found`,
		Err:     errors.New("x"),
	}
	out := term.Output(o)
	if !strings.Contains(out, "hist") || !strings.Contains(out, string(dashboard.CodeMissingColumn)) {
		t.Errorf("error panel should name output and code, got %q", out)
	}
}

func TestImage_SVG(t *testing.T) {
	im := NewImage(SVG)
	for _, s := range specs() {
		var buf bytes.Buffer
		if err := im.Render(&buf, s); err != nil {
			t.Errorf("%s: %v", s.Kind, err)
			continue
		}
		if !strings.Contains(buf.String(), "<svg") {
			t.Errorf("%s: output is not svg", s.Kind)
		}
	}
}

func TestImage_SingleBox(t *testing.T) {
	tests := []struct {
		name  string
		stats chart.BoxStats
	}{
		{"spread", chart.BoxStats{Min: 1, Q1: 2, Median: 3, Q3: 4, Max: 5}},
		{"constant", chart.BoxStats{Min: 3, Q1: 3, Median: 3, Q3: 3, Max: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := tt.stats
			s := chart.Spec{
				Kind:   chart.Box,
				Title:  "Box: v by species",
				X:      chart.Axis{Title: "species", Categories: []string{"setosa"}},
				Series: []chart.Series{{Name: "setosa", Color: chart.ColorAt(0), Values: []float64{st.Min, st.Max}, Stats: &st}},
			}
			for _, f := range []Format{SVG, PNG} {
				var buf bytes.Buffer
				if err := NewImage(f).Render(&buf, s); err != nil {
					t.Errorf("%s: %v", f, err)
				}
			}
		})
	}
}

func TestImage_FilteredIrisBox(t *testing.T) {
	ds, err := datasets.Iris()
	if err != nil {
		t.Fatal(err)
	}
	c, err := dashboard.New(dashboard.Iris(), ds)
	if err != nil {
		t.Fatal(err)
	}
	o, err := c.RecomputeOne(c.Defaults().With("species", controls.List("setosa")), "", "box")
	if err != nil || !o.OK() {
		t.Fatalf("box: %v %v", err, o.Err)
	}
	var buf bytes.Buffer
	if err := NewImage(SVG).Render(&buf, *o.Spec); err != nil {
		t.Errorf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "setosa") {
		t.Error("tick label missing")
	}
}

func TestImage_PNG(t *testing.T) {
	im := NewImage(PNG)
	for _, s := range []chart.Spec{scatterSpec(), specs()[6]} {
		var buf bytes.Buffer
		if err := im.Render(&buf, s); err != nil {
			t.Fatalf("%s: %v", s.Kind, err)
		}
		if _, err := png.Decode(&buf); err != nil {
			t.Errorf("%s: invalid png: %v", s.Kind, err)
		}
	}
}

func TestImage_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := NewImage(SVG).Render(&buf, chart.Spec{Kind: chart.Scatter})
	if !errors.Is(err, ErrEmptyChart) {
		t.Errorf("expected ErrEmptyChart, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"svg", SVG, true},
		{".PNG", PNG, true},
		{"gif", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriter_Update(t *testing.T) {
	def, err := dashboard.NewRegistry().Get("iris")
	if err != nil {
		t.Fatal(err)
	}
	ds, err := datasets.Iris()
	if err != nil {
		t.Fatal(err)
	}
	c, err := dashboard.New(def, ds)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	w := Writer{W: &buf, Term: NewTerminal(ThemeOcean, 60, 8)}
	s, err := dispatch.NewSession(c, dispatch.WithRenderer(w))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Start(); err != nil {
		t.Fatal(err)
	}
	for _, id := range c.OutputIDs() {
		o, _ := c.Output(id)
		if !strings.Contains(buf.String(), strings.SplitN(o.Title, ":", 2)[0]) {
			t.Errorf("output %s missing from terminal update", id)
		}
	}
}
