package dashboard

import (
	"math"

	"github.com/san-kum/vizdash/internal/chart"
	"github.com/san-kum/vizdash/internal/derive"
	"github.com/san-kum/vizdash/internal/frame"
)

// scatterBy builds an x/y scatter with one series per value of by. Rows
// with a NaN coordinate are left out.
func scatterBy(v frame.View, x, y, by string, pal chart.Palette) (chart.Spec, error) {
	if _, err := v.Floats(x); err != nil {
		return chart.Spec{}, err
	}
	if _, err := v.Floats(y); err != nil {
		return chart.Spec{}, err
	}
	parts, err := derive.Split(v, by)
	if err != nil {
		return chart.Spec{}, err
	}

	spec := chart.Spec{
		Kind:   chart.Scatter,
		X:      chart.Axis{Title: x},
		Y:      chart.Axis{Title: y},
		Layout: chart.Layout{ShowLegend: true},
		Series: make([]chart.Series, 0, len(parts)),
	}
	for _, p := range parts {
		xs, _ := p.View.Floats(x)
		ys, _ := p.View.Floats(y)
		s := chart.Series{Name: p.Key, Color: pal.Color(p.Key)}
		for i := range xs {
			if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
				continue
			}
			s.X = append(s.X, xs[i])
			s.Y = append(s.Y, ys[i])
		}
		spec.Series = append(spec.Series, s)
	}
	return spec, nil
}

func dropNaN(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
