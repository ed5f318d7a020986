package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille dot grid. Each terminal cell holds 2x4 dots and the
// color of the last dot drawn into it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]string
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]string, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]string, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (w, h int) {
	return c.Width * 2, c.Height * 4
}

// Set sets the dot at (x, y), counted from the top left.
func (c *Canvas) Set(x, y int, color string) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if color != "" {
		c.Colors[row][col] = color
	}
}

// Plot maps a data point into the canvas given the data bounds. Y grows
// upwards.
func (c *Canvas) Plot(x, y, xmin, xmax, ymin, ymax float64, color string) {
	w, h := c.Dots()
	px := scale(x, xmin, xmax, w-1)
	py := h - 1 - scale(y, ymin, ymax, h-1)
	c.Set(px, py, color)
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, color string) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Rows renders each cell row, colored where a color was set.
func (c *Canvas) Rows() []string {
	rows := make([]string, c.Height)
	for i, row := range c.Grid {
		var b strings.Builder
		for j, r := range row {
			if col := c.Colors[i][j]; col != "" && r != blank {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(col)).Render(string(r)))
				continue
			}
			b.WriteRune(r)
		}
		rows[i] = b.String()
	}
	return rows
}

func (c *Canvas) String() string {
	return strings.Join(c.Rows(), "\n")
}

func scale(v, lo, hi float64, n int) int {
	if hi <= lo {
		return n / 2
	}
	return int((v - lo) / (hi - lo) * float64(n))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
