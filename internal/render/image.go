package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sort"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/vizdash/internal/chart"
)

var ErrEmptyChart = errors.New("render: nothing to draw")

// Format is an image encoding.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case SVG, PNG:
		return f, nil
	}
	return "", fmt.Errorf("render: unknown image format %q", s)
}

func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() gochart.RendererProvider {
	if f == PNG {
		return gochart.PNG
	}
	return gochart.SVG
}

// Image renders specs with go-chart.
type Image struct {
	Width  int
	Height int
	Format Format
	// MaxBars caps the locations drawn for a choropleth.
	MaxBars int
}

func NewImage(format Format) Image {
	return Image{Width: 800, Height: 450, Format: format, MaxBars: 25}
}

// Render writes s to w. Specs without points return ErrEmptyChart.
func (im Image) Render(w io.Writer, s chart.Spec) error {
	if s.Points() == 0 {
		return ErrEmptyChart
	}
	height := im.Height
	if s.Layout.Height > 0 {
		height = s.Layout.Height
	}
	switch s.Kind {
	case chart.Scatter, chart.Line:
		return im.xy(w, s, height)
	case chart.Histogram:
		return im.histogram(w, s, height)
	case chart.Box:
		return im.box(w, s, height)
	case chart.Bar:
		return im.bars(w, s, height)
	case chart.Choropleth:
		return im.choropleth(w, s, height)
	case chart.Matrix:
		return im.matrix(w, s)
	}
	return fmt.Errorf("render: unsupported chart kind %q", s.Kind)
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func pointStyle(col drawing.Color, dot float64) gochart.Style {
	return gochart.Style{
		StrokeWidth: 0,
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    dot,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) gochart.Style {
	return gochart.Style{StrokeWidth: 2, StrokeColor: col}
}

// padded widens [lo, hi] by 5% each side so edge points are not clipped.
func padded(lo, hi float64) *gochart.ContinuousRange {
	if hi <= lo {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.05
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func (im Image) frame(s chart.Spec, height int, series []gochart.Series) gochart.Chart {
	c := gochart.Chart{
		Title:      s.Title,
		Width:      im.Width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: s.X.Title},
		YAxis:      gochart.YAxis{Name: s.Y.Title},
		Series:     series,
	}
	if s.Layout.ShowLegend && len(series) > 1 {
		c.Elements = []gochart.Renderable{gochart.Legend(&c)}
	}
	return c
}

func (im Image) xy(w io.Writer, s chart.Spec, height int) error {
	var series []gochart.Series
	for _, sr := range s.Series {
		if len(sr.X) == 0 {
			continue
		}
		st := pointStyle(hexColor(sr.Color), 4)
		if s.Kind == chart.Line {
			st = lineStyle(hexColor(sr.Color))
		}
		series = append(series, gochart.ContinuousSeries{Name: sr.Name, XValues: sr.X, YValues: sr.Y, Style: st})
	}
	xmin, xmax, ymin, ymax := extent(s.Series)
	c := im.frame(s, height, series)
	c.XAxis.Range = padded(xmin, xmax)
	c.YAxis.Range = padded(ymin, ymax)
	return c.Render(im.Format.provider(), w)
}

// histogram draws each series as a step outline over the shared edges.
func (im Image) histogram(w io.Writer, s chart.Spec, height int) error {
	var series []gochart.Series
	top := 0.0
	for _, sr := range s.Series {
		xs := make([]float64, 0, 2*len(sr.Values)+2)
		ys := make([]float64, 0, 2*len(sr.Values)+2)
		xs, ys = append(xs, s.Edges[0]), append(ys, 0)
		for i, n := range sr.Values {
			xs = append(xs, s.Edges[i], s.Edges[i+1])
			ys = append(ys, n, n)
			top = math.Max(top, n)
		}
		xs, ys = append(xs, s.Edges[len(s.Edges)-1]), append(ys, 0)
		col := hexColor(sr.Color)
		series = append(series, gochart.ContinuousSeries{
			Name:    sr.Name,
			XValues: xs,
			YValues: ys,
			Style:   gochart.Style{StrokeWidth: 1.5, StrokeColor: col, FillColor: col.WithAlpha(64)},
		})
	}
	c := im.frame(s, height, series)
	c.XAxis.Range = &gochart.ContinuousRange{Min: s.Edges[0], Max: s.Edges[len(s.Edges)-1]}
	c.YAxis.Range = &gochart.ContinuousRange{Min: 0, Max: math.Max(top*1.1, 1)}
	return c.Render(im.Format.provider(), w)
}

// box draws one box per series at x = 1..n from line segments.
func (im Image) box(w io.Writer, s chart.Spec, height int) error {
	var series []gochart.Series
	var ticks []gochart.Tick
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, sr := range s.Series {
		x := float64(i + 1)
		ticks = append(ticks, gochart.Tick{Value: x, Label: sr.Name})
		if sr.Stats == nil {
			continue
		}
		st := sr.Stats
		lo, hi = math.Min(lo, st.Min), math.Max(hi, st.Max)
		style := lineStyle(hexColor(sr.Color))
		seg := func(xs, ys []float64) {
			series = append(series, gochart.ContinuousSeries{XValues: xs, YValues: ys, Style: style})
		}
		seg([]float64{x, x}, []float64{st.Min, st.Q1})
		seg([]float64{x, x}, []float64{st.Q3, st.Max})
		seg([]float64{x - 0.3, x + 0.3, x + 0.3, x - 0.3, x - 0.3}, []float64{st.Q1, st.Q1, st.Q3, st.Q3, st.Q1})
		seg([]float64{x - 0.3, x + 0.3}, []float64{st.Median, st.Median})
		seg([]float64{x - 0.15, x + 0.15}, []float64{st.Min, st.Min})
		seg([]float64{x - 0.15, x + 0.15}, []float64{st.Max, st.Max})
	}
	if len(series) == 0 {
		return ErrEmptyChart
	}
	c := im.frame(s, height, series)
	c.Elements = nil
	// go-chart takes the x range from the ticks, so unlabeled end ticks keep
	// a single box from collapsing the range to zero width.
	xmin, xmax := 0.4, float64(len(s.Series))+0.6
	ticks = append([]gochart.Tick{{Value: xmin}}, append(ticks, gochart.Tick{Value: xmax})...)
	c.XAxis.Ticks = ticks
	c.XAxis.Range = &gochart.ContinuousRange{Min: xmin, Max: xmax}
	c.YAxis.Range = padded(lo, hi)
	return c.Render(im.Format.provider(), w)
}

func (im Image) barChart(title string, bars []gochart.Value, height int) gochart.BarChart {
	width := max(im.Width/max(len(bars), 1)-8, 4)
	return gochart.BarChart{
		Title:      title,
		Width:      im.Width,
		Height:     height,
		BarWidth:   min(width, 60),
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Bottom: 16}},
		XAxis:      gochart.Style{TextRotationDegrees: 45},
		YAxis:      gochart.YAxis{},
		Bars:       bars,
	}
}

// bars draws categories left to right in axis order, largest first for a
// horizontal spec.
func (im Image) bars(w io.Writer, s chart.Spec, height int) error {
	var bars []gochart.Value
	for _, sr := range s.Series {
		col := hexColor(sr.Color)
		for i, l := range sr.Labels {
			bars = append(bars, gochart.Value{
				Label: l,
				Value: sr.Values[i],
				Style: gochart.Style{FillColor: col, StrokeColor: col},
			})
		}
	}
	axis := s.X.Categories
	if s.Orientation == chart.Horizontal {
		axis = s.Y.Categories
	}
	if len(axis) > 0 {
		pos := make(map[string]int, len(axis))
		for i, c := range axis {
			pos[c] = i
		}
		sort.SliceStable(bars, func(i, j int) bool { return pos[bars[i].Label] < pos[bars[j].Label] })
		if s.Orientation == chart.Horizontal {
			for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
				bars[i], bars[j] = bars[j], bars[i]
			}
		}
	}
	return im.barChart(s.Title, bars, height).Render(im.Format.provider(), w)
}

// choropleth draws the highest valued locations as bars, shaded by value.
func (im Image) choropleth(w io.Writer, s chart.Spec, height int) error {
	var bars []gochart.Value
	for _, sr := range s.Series {
		for i, code := range sr.Labels {
			bars = append(bars, gochart.Value{Label: code, Value: sr.Values[i]})
		}
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Value > bars[j].Value })
	if im.MaxBars > 0 && len(bars) > im.MaxBars {
		bars = bars[:im.MaxBars]
	}
	lo, hi := bars[len(bars)-1].Value, bars[0].Value
	base := hexColor(chart.ColorAt(0))
	for i := range bars {
		frac := 1.0
		if hi > lo {
			frac = (bars[i].Value - lo) / (hi - lo)
		}
		col := base.WithAlpha(uint8(64 + frac*191))
		bars[i].Style = gochart.Style{FillColor: col, StrokeColor: base}
	}
	return im.barChart(s.Title, bars, height).Render(im.Format.provider(), w)
}

// matrix renders every off-diagonal cell as its own chart and tiles them.
func (im Image) matrix(w io.Writer, s chart.Spec) error {
	n := len(s.Dimensions)
	cell := max(im.Width/n, 120)
	render := func(i, j int) ([]byte, error) {
		cs := chart.Spec{Kind: chart.Scatter, X: chart.Axis{Title: s.Dimensions[j]}, Y: chart.Axis{Title: s.Dimensions[i]}}
		if i == j {
			cs.Title = s.Dimensions[i]
		}
		for _, sr := range s.Series {
			cs.Series = append(cs.Series, chart.Series{Name: sr.Name, Color: sr.Color, X: sr.Dims[j], Y: sr.Dims[i]})
		}
		var buf bytes.Buffer
		xmin, xmax, ymin, ymax := extent(cs.Series)
		var series []gochart.Series
		for _, sr := range cs.Series {
			series = append(series, gochart.ContinuousSeries{XValues: sr.X, YValues: sr.Y, Style: pointStyle(hexColor(sr.Color), 1.5)})
		}
		c := gochart.Chart{
			Title:  cs.Title,
			Width:  cell,
			Height: cell,
			XAxis:  gochart.XAxis{Range: padded(xmin, xmax)},
			YAxis:  gochart.YAxis{Range: padded(ymin, ymax)},
			Series: series,
		}
		if err := c.Render(im.Format.provider(), &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	if im.Format == PNG {
		out := image.NewRGBA(image.Rect(0, 0, cell*n, cell*n))
		draw.Draw(out, out.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				b, err := render(i, j)
				if err != nil {
					return err
				}
				img, err := png.Decode(bytes.NewReader(b))
				if err != nil {
					return err
				}
				r := image.Rect(j*cell, i*cell, (j+1)*cell, (i+1)*cell)
				draw.Draw(out, r, img, img.Bounds().Min, draw.Over)
			}
		}
		return png.Encode(w, out)
	}

	var sb strings.Builder
	const header = 40
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, cell*n, cell*n+header)
	fmt.Fprintf(&sb, `<text x="%d" y="24" font-family="sans-serif" font-size="16" text-anchor="middle">%s</text>`, cell*n/2, escape(s.Title))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			b, err := render(i, j)
			if err != nil {
				return err
			}
			inner := string(b)
			if k := strings.Index(inner, "<svg"); k > 0 {
				inner = inner[k:]
			}
			inner = strings.Replace(inner, "<svg", fmt.Sprintf(`<svg x="%d" y="%d"`, j*cell, header+i*cell), 1)
			sb.WriteString(inner)
		}
	}
	sb.WriteString("</svg>")
	_, err := io.WriteString(w, sb.String())
	return err
}

var svgEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return svgEscaper.Replace(s) }
