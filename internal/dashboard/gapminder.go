package dashboard

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/san-kum/vizdash/internal/chart"
	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/datasets"
	"github.com/san-kum/vizdash/internal/derive"
	"github.com/san-kum/vizdash/internal/frame"
)

const (
	gapminderTopN        = 10
	gapminderDefaultYear = 2007
)

var gapminderMetrics = []controls.Option{
	{Label: "Life Expectancy", Value: "lifeExp"},
	{Label: "GDP per Capita", Value: "gdpPercap"},
	{Label: "Population", Value: "pop"},
}

// Gapminder shows one indicator per country for a chosen year on a map, the
// ten highest countries, and the indicator over time for the clicked
// country. Without a click the time series is the mean over all countries.
func Gapminder() Definition {
	return Definition{
		Name:        "gapminder",
		Title:       "Global Indicators Dashboard",
		Description: "Choropleth, top ten and time series of a gapminder indicator.",
		Dataset:     "gapminder",
		Columns:     datasets.GapminderColumns[:7],
		Declare:     declareGapminder,
		Filters: []FilterDecl{
			{Control: "year", Column: "year", Match: MatchEquals},
			{Control: "continents", Column: "continent", Match: MatchMembership, Policy: derive.EmptyMeansAll},
		},
		Outputs: []OutputDecl{
			{ID: "choropleth", Title: "Map", Kind: chart.Choropleth, Build: gapChoropleth},
			{ID: "top10", Title: "Top 10", Kind: chart.Bar, Build: gapTop10},
			{ID: "timeseries", Title: "Over Time", Kind: chart.Line, Build: gapTimeseries},
		},
		Selection: &SelectionDecl{
			Output:   "choropleth",
			Column:   "iso_alpha",
			Fallback: "global average per year",
		},
	}
}

func declareGapminder(ds *frame.Dataset) ([]controls.Declaration, error) {
	continents, err := ds.Distinct("continent")
	if err != nil {
		return nil, err
	}
	years, err := ds.Distinct("year")
	if err != nil {
		return nil, err
	}
	year := controls.Number(gapminderDefaultYear)
	if !slices.Contains(years, year.String()) && len(years) > 0 {
		year = controls.Scalar(years[len(years)-1])
	}
	return []controls.Declaration{
		{ID: "metric", Label: "Metric", Kind: controls.Dropdown, Options: slices.Clone(gapminderMetrics), Default: controls.Scalar("lifeExp")},
		{ID: "continents", Label: "Continents", Kind: controls.MultiDropdown, Options: controls.Options(continents...), Default: controls.List(continents...)},
		{ID: "year", Label: "Year", Kind: controls.Slider, Options: controls.Options(years...), Default: year},
	}, nil
}

// metric resolves the metric control to a numeric column and its label.
func metric(r *Request) (col, label string, err error) {
	col = r.Scalar("metric")
	if _, err := r.Data().Schema().Require(col, frame.Numeric); err != nil {
		return "", "", err
	}
	label, err = r.Label("metric")
	if err != nil {
		return "", "", err
	}
	return col, label, nil
}

func gapChoropleth(r *Request) (chart.Spec, error) {
	col, label, err := metric(r)
	if err != nil {
		return chart.Spec{}, err
	}
	v, err := r.Filtered()
	if err != nil {
		return chart.Spec{}, err
	}

	s := chart.Series{Name: label}
	for i := 0; i < v.Len(); i++ {
		val := v.Float(col, i)
		if math.IsNaN(val) {
			continue
		}
		s.Labels = append(s.Labels, v.Text("iso_alpha", i))
		s.Values = append(s.Values, val)
		s.Hover = append(s.Hover, fmt.Sprintf("%s (%s): %s", v.Text("country", i), v.Text("continent", i), formatMetric(col, val)))
	}
	return chart.Spec{
		Kind:       chart.Choropleth,
		Title:      fmt.Sprintf("%s (%s)", label, r.Scalar("year")),
		Locations:  "ISO-3",
		ValueLabel: col,
		Series:     []chart.Series{s},
		Layout:     chart.Layout{Height: 520},
	}, nil
}

func gapTop10(r *Request) (chart.Spec, error) {
	col, label, err := metric(r)
	if err != nil {
		return chart.Spec{}, err
	}
	v, err := r.Filtered()
	if err != nil {
		return chart.Spec{}, err
	}
	top, err := derive.TopN(v, col, gapminderTopN)
	if err != nil {
		return chart.Spec{}, err
	}
	// highest last, so the longest bar is drawn at the top
	top, err = derive.SortBy(top, col, true)
	if err != nil {
		return chart.Spec{}, err
	}

	spec := chart.Spec{
		Kind:        chart.Bar,
		Title:       fmt.Sprintf("Top %d by %s (%s)", gapminderTopN, label, r.Scalar("year")),
		Orientation: chart.Horizontal,
		X:           chart.Axis{Title: col},
		Y:           chart.Axis{Title: "country"},
		Layout:      chart.Layout{ShowLegend: true, Height: 520},
	}
	for i := 0; i < top.Len(); i++ {
		spec.Y.Categories = append(spec.Y.Categories, top.Text("country", i))
	}
	parts, err := derive.Split(top, "continent")
	if err != nil {
		return chart.Spec{}, err
	}
	pal := r.Palette("continent")
	for _, p := range parts {
		s := chart.Series{Name: p.Key, Color: pal.Color(p.Key)}
		for i := 0; i < p.View.Len(); i++ {
			s.Labels = append(s.Labels, p.View.Text("country", i))
			s.Values = append(s.Values, p.View.Float(col, i))
		}
		spec.Series = append(spec.Series, s)
	}
	return spec, nil
}

// gapTimeseries ignores the year and continent filters: it always spans the
// whole dataset.
func gapTimeseries(r *Request) (chart.Spec, error) {
	col, label, err := metric(r)
	if err != nil {
		return chart.Spec{}, err
	}
	spec := chart.Spec{
		Kind:   chart.Line,
		X:      chart.Axis{Title: "year"},
		Y:      chart.Axis{Title: col},
		Layout: chart.Layout{Height: 360},
	}

	all := r.Data().All()
	if r.Selection == "" {
		groups, err := derive.GroupMean(all, "year", col)
		if err != nil {
			return chart.Spec{}, err
		}
		s := chart.Series{Name: "Global Average", Color: chart.ColorAt(0)}
		for _, g := range groups {
			year, err := strconv.ParseFloat(g.Key, 64)
			if err != nil || math.IsNaN(g.Mean) {
				continue
			}
			s.X = append(s.X, year)
			s.Y = append(s.Y, g.Mean)
		}
		spec.Title = fmt.Sprintf("Global Average %s Over Time", label)
		spec.Series = []chart.Series{s}
		return spec, nil
	}

	rows, err := derive.Apply(all, derive.Equals{Column: "iso_alpha", Value: r.Selection})
	if err != nil {
		return chart.Spec{}, err
	}
	if rows, err = derive.SortBy(rows, "year", true); err != nil {
		return chart.Spec{}, err
	}
	name := r.Selection
	if rows.Len() > 0 {
		name = rows.Text("country", 0)
	}
	s := chart.Series{Name: name, Color: chart.ColorAt(0)}
	for i := 0; i < rows.Len(); i++ {
		y := rows.Float(col, i)
		if math.IsNaN(y) {
			continue
		}
		s.X = append(s.X, rows.Float("year", i))
		s.Y = append(s.Y, y)
	}
	spec.Title = fmt.Sprintf("%s: %s Over Time", name, label)
	spec.Series = []chart.Series{s}
	return spec, nil
}

var printer = message.NewPrinter(language.English)

// formatMetric renders life expectancy with one decimal and everything else
// as a grouped integer.
func formatMetric(col string, v float64) string {
	if col == "lifeExp" {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return printer.Sprintf("%d", int64(math.Round(v)))
}
