package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the color scheme of terminal output.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
	High      lipgloss.Color
	Mid       lipgloss.Color
	Low       lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666688"),
		Border:    lipgloss.Color("#444466"),
		High:      lipgloss.Color("#00ff88"),
		Mid:       lipgloss.Color("#ffcc00"),
		Low:       lipgloss.Color("#ff4444"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Border:    lipgloss.Color("#555555"),
		High:      lipgloss.Color("#00ff00"),
		Mid:       lipgloss.Color("#ffaa00"),
		Low:       lipgloss.Color("#ff5555"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"),
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Border:    lipgloss.Color("#23527a"),
		High:      lipgloss.Color("#00ff88"),
		Mid:       lipgloss.Color("#ffcc00"),
		Low:       lipgloss.Color("#ff7777"),
		Error:     lipgloss.Color("#ff4444"),
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Primary:   lipgloss.Color("#ff6b6b"),
		Secondary: lipgloss.Color("#feca57"),
		Accent:    lipgloss.Color("#ff9ff3"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Border:    lipgloss.Color("#5b3b5c"),
		High:      lipgloss.Color("#5fd068"),
		Mid:       lipgloss.Color("#ffc048"),
		Low:       lipgloss.Color("#ff4757"),
		Error:     lipgloss.Color("#ff4757"),
	}

	Themes = []Theme{ThemeCyberpunk, ThemeMinimal, ThemeOcean, ThemeSunset}
)

// GetTheme returns a theme by name, falling back to cyberpunk.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Theme   Theme
	Panel   lipgloss.Style
	Title   lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Error   lipgloss.Style
	ErrBox  lipgloss.Style
	KeyHint lipgloss.Style
	Focused lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Theme: t,
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		Muted:  lipgloss.NewStyle().Foreground(t.Muted),
		Accent: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Error:  lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		ErrBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Error).
			Padding(0, 1),
		KeyHint: lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Focused: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
	}
}

// Meter renders frac (0..1) as a bar of width cells, colored high, mid or
// low by value.
func (s Styles) Meter(frac float64, width int) string {
	filled := int(frac * float64(width))
	filled = min(max(filled, 0), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case frac > 0.7:
		return lipgloss.NewStyle().Foreground(s.Theme.High).Render(bar)
	case frac > 0.3:
		return lipgloss.NewStyle().Foreground(s.Theme.Mid).Render(bar)
	default:
		return lipgloss.NewStyle().Foreground(s.Theme.Low).Render(bar)
	}
}

// Swatch renders a colored legend marker followed by name.
func Swatch(color, name string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●") + " " + name
}
