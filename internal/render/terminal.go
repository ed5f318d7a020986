package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/vizdash/internal/chart"
	"github.com/san-kum/vizdash/internal/dashboard"
	"github.com/san-kum/vizdash/internal/dispatch"
)

var ansiPalette = []asciigraph.AnsiColor{
	asciigraph.Blue, asciigraph.Green, asciigraph.Yellow, asciigraph.Red, asciigraph.Magenta,
	asciigraph.Cyan, asciigraph.Pink, asciigraph.Lime, asciigraph.Orange, asciigraph.SlateBlue,
}

// Terminal draws chart specs as text. Width and Height size the plot area
// of one chart, in cells.
type Terminal struct {
	Width  int
	Height int
	Styles Styles
}

func NewTerminal(theme Theme, width, height int) Terminal {
	return Terminal{Width: max(width, 20), Height: max(height, 4), Styles: NewStyles(theme)}
}

// Update renders every output of an update, one panel each.
func (t Terminal) Update(u dispatch.Update) string {
	parts := []string{t.Styles.Header.Render(fmt.Sprintf("%s #%d  %s", u.Dashboard, u.Seq, u.Trigger))}
	for _, o := range u.Outputs {
		parts = append(parts, t.Output(o))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Output renders one output: its chart in a panel, or an error panel.
func (t Terminal) Output(o dashboard.Output) string {
	if !o.OK() {
		body := t.Styles.Error.Render("✗ "+o.ID+": "+string(o.Code)) + "\n" + wrap(o.Message, t.Width)
		return t.Styles.ErrBox.Width(t.Width + 4).Render(body)
	}
	return t.Styles.Panel.Render(t.Chart(*o.Spec))
}

// Chart renders a spec: title, plot and legend.
func (t Terminal) Chart(s chart.Spec) string {
	var body string
	switch s.Kind {
	case chart.Scatter:
		body = t.scatter(s)
	case chart.Line:
		body = t.line(s)
	case chart.Histogram:
		body = t.histogram(s)
	case chart.Bar:
		body = t.bars(s)
	case chart.Box:
		body = t.box(s)
	case chart.Matrix:
		body = t.matrix(s)
	case chart.Choropleth:
		body = t.choropleth(s)
	default:
		body = t.Styles.Muted.Render("unsupported chart kind " + string(s.Kind))
	}
	if s.Points() == 0 {
		body = t.Styles.Muted.Render("no data")
	}
	parts := []string{t.Styles.Title.Render(s.Title), body}
	if s.Layout.ShowLegend && len(s.Series) > 1 {
		parts = append(parts, t.legend(s))
	}
	return strings.Join(parts, "\n")
}

func (t Terminal) legend(s chart.Spec) string {
	items := make([]string, len(s.Series))
	for i, sr := range s.Series {
		items[i] = Swatch(sr.Color, sr.Name)
	}
	return strings.Join(items, "  ")
}

func (t Terminal) scatter(s chart.Spec) string {
	const gutter = 8
	xmin, xmax, ymin, ymax := extent(s.Series)
	c := NewCanvas(t.Width-gutter, t.Height)
	for _, sr := range s.Series {
		for i := range sr.X {
			c.Plot(sr.X[i], sr.Y[i], xmin, xmax, ymin, ymax, sr.Color)
		}
	}
	rows := c.Rows()
	for i := range rows {
		label := ""
		switch i {
		case 0:
			label = short(ymax)
		case len(rows) - 1:
			label = short(ymin)
		}
		rows[i] = fmt.Sprintf("%*s ┤", gutter-2, label) + rows[i]
	}
	axis := fmt.Sprintf("%*s └%s", gutter-2, "", strings.Repeat("─", c.Width))
	lo, hi := short(xmin), short(xmax)
	pad := max(c.Width-len(lo)-len(hi), 1)
	ticks := fmt.Sprintf("%*s  %s%s%s", gutter-2, "", lo, strings.Repeat(" ", pad), hi)
	caption := t.Styles.Muted.Render(fmt.Sprintf("%*s  x: %s  y: %s", gutter-2, "", s.X.Title, s.Y.Title))
	return strings.Join(append(rows, axis, ticks, caption), "\n")
}

func (t Terminal) line(s chart.Spec) string {
	var data [][]float64
	var colors []asciigraph.AnsiColor
	for i, sr := range s.Series {
		if len(sr.Y) == 0 {
			continue
		}
		data = append(data, sr.Y)
		colors = append(colors, ansiColor(sr.Color, i))
	}
	if len(data) == 0 {
		return ""
	}
	xmin, xmax, _, _ := extent(s.Series)
	return asciigraph.PlotMany(data,
		asciigraph.Height(t.Height),
		asciigraph.Width(t.Width-10),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(fmt.Sprintf("%s: %s to %s", s.X.Title, short(xmin), short(xmax))),
	)
}

func (t Terminal) histogram(s chart.Spec) string {
	var data [][]float64
	var colors []asciigraph.AnsiColor
	for i, sr := range s.Series {
		data = append(data, sr.Values)
		colors = append(colors, ansiColor(sr.Color, i))
	}
	if len(data) == 0 || len(s.Edges) < 2 {
		return ""
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(t.Height),
		asciigraph.Width(t.Width-10),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(fmt.Sprintf("%s: %s to %s, %d bins", s.X.Title, short(s.Edges[0]), short(s.Edges[len(s.Edges)-1]), len(s.Edges)-1)),
	)
}

// bars draws horizontal bars, the last category on top.
func (t Terminal) bars(s chart.Spec) string {
	type bar struct {
		label, color string
		value        float64
	}
	var bars []bar
	for _, sr := range s.Series {
		for i, l := range sr.Labels {
			bars = append(bars, bar{label: l, color: sr.Color, value: sr.Values[i]})
		}
	}
	if order := s.Y.Categories; len(order) > 0 {
		pos := make(map[string]int, len(order))
		for i, c := range order {
			pos[c] = i
		}
		sort.SliceStable(bars, func(i, j int) bool { return pos[bars[i].label] > pos[bars[j].label] })
	}

	labelW, top := 0, 0.0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.label))
		top = math.Max(top, b.value)
	}
	labelW = min(labelW, t.Width/3)
	barW := max(t.Width-labelW-12, 4)

	lines := make([]string, len(bars))
	for i, b := range bars {
		n := 0
		if top > 0 {
			n = int(b.value / top * float64(barW))
		}
		fill := lipgloss.NewStyle().Foreground(lipgloss.Color(b.color)).Render(strings.Repeat("█", max(n, 1)))
		lines[i] = fmt.Sprintf("%-*s %s %s", labelW, truncate(b.label, labelW), fill, short(b.value))
	}
	return strings.Join(lines, "\n")
}

func (t Terminal) box(s chart.Spec) string {
	lo, hi := math.Inf(1), math.Inf(-1)
	nameW := 0
	for _, sr := range s.Series {
		if sr.Stats == nil {
			continue
		}
		lo, hi = math.Min(lo, sr.Stats.Min), math.Max(hi, sr.Stats.Max)
		nameW = max(nameW, len(sr.Name))
	}
	width := max(t.Width-nameW-2, 10)

	var lines []string
	for _, sr := range s.Series {
		if sr.Stats == nil {
			lines = append(lines, fmt.Sprintf("%-*s %s", nameW, sr.Name, t.Styles.Muted.Render("no data")))
			continue
		}
		st := sr.Stats
		row := []rune(strings.Repeat(" ", width))
		at := func(v float64) int { return min(scale(v, lo, hi, width-1), width-1) }
		for i := at(st.Min); i <= at(st.Max); i++ {
			row[i] = '─'
		}
		for i := at(st.Q1); i <= at(st.Q3); i++ {
			row[i] = '█'
		}
		row[at(st.Min)], row[at(st.Max)] = '├', '┤'
		row[at(st.Median)] = '┃'
		drawn := lipgloss.NewStyle().Foreground(lipgloss.Color(sr.Color)).Render(string(row))
		lines = append(lines, fmt.Sprintf("%-*s %s", nameW, sr.Name, drawn))
		lines = append(lines, t.Styles.Muted.Render(fmt.Sprintf("%-*s min %s  q1 %s  med %s  q3 %s  max %s",
			nameW, "", short(st.Min), short(st.Q1), short(st.Median), short(st.Q3), short(st.Max))))
	}
	lines = append(lines, t.Styles.Muted.Render(fmt.Sprintf("%-*s %s: %s to %s", nameW, "", s.Y.Title, short(lo), short(hi))))
	return strings.Join(lines, "\n")
}

// matrix draws an n by n grid of small scatters, names on the diagonal.
func (t Terminal) matrix(s chart.Spec) string {
	n := len(s.Dimensions)
	if n == 0 {
		return ""
	}
	cw := max((t.Width-n)/n, 4)
	ch := max(t.Height/n, 2)

	lo := make([]float64, n)
	hi := make([]float64, n)
	for d := 0; d < n; d++ {
		lo[d], hi[d] = math.Inf(1), math.Inf(-1)
		for _, sr := range s.Series {
			for _, v := range sr.Dims[d] {
				lo[d], hi[d] = math.Min(lo[d], v), math.Max(hi[d], v)
			}
		}
	}

	rows := make([]string, n)
	for i := 0; i < n; i++ {
		cells := make([]string, n)
		for j := 0; j < n; j++ {
			if i == j {
				cells[j] = lipgloss.Place(cw, ch, lipgloss.Center, lipgloss.Center, truncate(s.Dimensions[i], cw))
				continue
			}
			c := NewCanvas(cw, ch)
			for _, sr := range s.Series {
				for k := range sr.Dims[j] {
					c.Plot(sr.Dims[j][k], sr.Dims[i][k], lo[j], hi[j], lo[i], hi[i], sr.Color)
				}
			}
			cells[j] = c.String()
		}
		rows[i] = lipgloss.JoinHorizontal(lipgloss.Top, intersperse(cells, " ")...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// choropleth has no map geometry in a terminal: locations are listed by
// value, highest first, with a meter.
func (t Terminal) choropleth(s chart.Spec) string {
	type loc struct {
		code, hover string
		value       float64
	}
	var locs []loc
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, sr := range s.Series {
		for i, code := range sr.Labels {
			l := loc{code: code, value: sr.Values[i]}
			if i < len(sr.Hover) {
				l.hover = sr.Hover[i]
			}
			locs = append(locs, l)
			lo, hi = math.Min(lo, l.value), math.Max(hi, l.value)
		}
	}
	sort.SliceStable(locs, func(i, j int) bool { return locs[i].value > locs[j].value })

	shown := min(len(locs), max(t.Height, 4))
	hoverW := max(t.Width-3-4-12-2, 10)
	lines := make([]string, 0, shown+1)
	for _, l := range locs[:shown] {
		frac := 1.0
		if hi > lo {
			frac = (l.value - lo) / (hi - lo)
		}
		lines = append(lines, fmt.Sprintf("%-3s %s %s", l.code, t.Styles.Meter(frac, 12), truncate(l.hover, hoverW)))
	}
	if rest := len(locs) - shown; rest > 0 {
		lines = append(lines, t.Styles.Muted.Render(fmt.Sprintf("… %d more locations", rest)))
	}
	return strings.Join(lines, "\n")
}

func extent(series []chart.Series) (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, sr := range series {
		for i := range sr.X {
			xmin, xmax = math.Min(xmin, sr.X[i]), math.Max(xmax, sr.X[i])
		}
		for i := range sr.Y {
			ymin, ymax = math.Min(ymin, sr.Y[i]), math.Max(ymax, sr.Y[i])
		}
	}
	if math.IsInf(xmin, 1) {
		return 0, 1, 0, 1
	}
	return xmin, xmax, ymin, ymax
}

func ansiColor(hex string, i int) asciigraph.AnsiColor {
	if p := chart.PaletteIndex(hex); p >= 0 {
		return ansiPalette[p%len(ansiPalette)]
	}
	return ansiPalette[i%len(ansiPalette)]
}

// short formats a number compactly for axis labels.
func short(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= 1e9:
		return strconv.FormatFloat(v/1e9, 'f', 1, 64) + "B"
	case a >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case a >= 1e4:
		return strconv.FormatFloat(v/1e3, 'f', 1, 64) + "k"
	case a == math.Trunc(a):
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func intersperse(items []string, sep string) []string {
	out := make([]string, 0, 2*len(items))
	for i, it := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, it)
	}
	return out
}
