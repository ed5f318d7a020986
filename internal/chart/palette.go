package chart

var palette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Palette assigns colors to a fixed key list so a key keeps its color when
// filters hide other keys.
type Palette struct {
	index map[string]int
}

func NewPalette(keys ...string) Palette {
	p := Palette{index: make(map[string]int, len(keys))}
	for i, k := range keys {
		p.index[k] = i
	}
	return p
}

// Color returns the key's color. Unknown keys get the first color.
func (p Palette) Color(key string) string {
	return palette[p.index[key]%len(palette)]
}

// ColorAt returns the i-th palette color.
func ColorAt(i int) string {
	return palette[i%len(palette)]
}

// PaletteIndex returns the position of color in the palette, or -1.
func PaletteIndex(color string) int {
	for i, c := range palette {
		if c == color {
			return i
		}
	}
	return -1
}
