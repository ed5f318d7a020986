package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/dispatch"
	"github.com/san-kum/vizdash/internal/render"
)

// Options configure the terminal front end.
type Options struct {
	Theme   render.Theme
	Presets []string
	// Preset resolves a name from Presets to control values.
	Preset func(name string) (controls.State, bool)
}

type updateMsg struct {
	update dispatch.Update
	err    error
}

// Model is the bubbletea model of one dashboard session. Every change is
// sent through the session, so the screen only ever shows complete updates.
type Model struct {
	sess   *dispatch.Session
	decls  []controls.Declaration
	locs   []string
	opts   Options
	styles render.Styles
	help   help.Model

	focus  int
	member map[string]int
	loc    int
	preset int
	scroll int

	last   dispatch.Update
	status string
	err    error

	width  int
	height int
}

func New(sess *dispatch.Session, opts Options) Model {
	if opts.Theme.Name == "" {
		opts.Theme = render.ThemeCyberpunk
	}
	m := Model{
		sess:   sess,
		decls:  sess.Context().Controls(),
		locs:   sess.Context().Locations(),
		opts:   opts,
		styles: render.NewStyles(opts.Theme),
		help:   help.New(),
		member: make(map[string]int),
		preset: -1,
		width:  100,
		height: 40,
	}
	return m
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(sess *dispatch.Session, opts Options) error {
	_, err := tea.NewProgram(New(sess, opts), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		u, err := sess.Start()
		return updateMsg{u, err}
	}
}

func (m Model) send(ev dispatch.Event) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		u, err := sess.Handle(ev)
		return updateMsg{u, err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case updateMsg:
		if msg.err != nil {
			m.err = msg.err
			if errors.Is(msg.err, dispatch.ErrBusy) {
				m.status = "busy, try again"
			}
			return m, nil
		}
		m.err = nil
		m.last = msg.update
		m.status = fmt.Sprintf("#%d %s (%s)", msg.update.Seq, msg.update.Trigger, msg.update.Duration.Round(time.Microsecond))
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// focusables is the controls plus, when the dashboard has a clickable
// output, the location picker.
func (m Model) focusables() int {
	if len(m.locs) > 0 {
		return len(m.decls) + 1
	}
	return len(m.decls)
}

func (m Model) focused() (controls.Declaration, bool) {
	if m.focus < len(m.decls) {
		return m.decls[m.focus], true
	}
	return controls.Declaration{}, false
}

func (m Model) current(id string) controls.Value {
	v, _ := m.sess.State().Get(id)
	return v
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.focusables()
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Next):
		if n > 0 {
			m.focus = (m.focus + 1) % n
		}
		return m, nil
	case key.Matches(msg, keys.Prev):
		if n > 0 {
			m.focus = (m.focus - 1 + n) % n
		}
		return m, nil
	case key.Matches(msg, keys.Up):
		m.scroll = max(m.scroll-3, 0)
		return m, nil
	case key.Matches(msg, keys.Down):
		m.scroll += 3
		return m, nil
	case key.Matches(msg, keys.Clear):
		return m, m.send(dispatch.SelectionCleared{})
	case key.Matches(msg, keys.Reset):
		return m, m.send(dispatch.Reset{})
	case key.Matches(msg, keys.Preset):
		if len(m.opts.Presets) == 0 || m.opts.Preset == nil {
			return m, nil
		}
		m.preset = (m.preset + 1) % len(m.opts.Presets)
		name := m.opts.Presets[m.preset]
		st, ok := m.opts.Preset(name)
		if !ok {
			return m, nil
		}
		return m, m.send(dispatch.Applied{Name: name, State: st})
	}

	d, ok := m.focused()
	if !ok {
		return m.locationKey(msg)
	}

	switch d.Kind {
	case controls.MultiDropdown:
		cur := m.member[d.ID]
		switch {
		case key.Matches(msg, keys.Left):
			m.member[d.ID] = max(cur-1, 0)
		case key.Matches(msg, keys.Right):
			m.member[d.ID] = min(cur+1, len(d.Options)-1)
		case key.Matches(msg, keys.Toggle):
			if cur < len(d.Options) {
				v := d.Toggle(m.current(d.ID), d.Options[cur].Value)
				return m, m.send(dispatch.ControlChanged{Control: d.ID, Value: v})
			}
		case key.Matches(msg, keys.All):
			return m, m.send(dispatch.ControlChanged{Control: d.ID, Value: d.All()})
		case key.Matches(msg, keys.None):
			return m, m.send(dispatch.ControlChanged{Control: d.ID, Value: controls.List()})
		}
	default:
		switch {
		case key.Matches(msg, keys.Left):
			return m, m.send(dispatch.ControlChanged{Control: d.ID, Value: d.Step(m.current(d.ID), -1)})
		case key.Matches(msg, keys.Right):
			return m, m.send(dispatch.ControlChanged{Control: d.ID, Value: d.Step(m.current(d.ID), 1)})
		}
	}
	return m, nil
}

func (m Model) locationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.sess.Context().Definition().Selection
	switch {
	case key.Matches(msg, keys.Left):
		m.loc = (m.loc - 1 + len(m.locs)) % len(m.locs)
	case key.Matches(msg, keys.Right):
		m.loc = (m.loc + 1) % len(m.locs)
	case key.Matches(msg, keys.Click):
		if sel != nil {
			return m, m.send(dispatch.Clicked{Output: sel.Output, Location: m.locs[m.loc]})
		}
	}
	return m, nil
}

func (m Model) View() string {
	def := m.sess.Context().Definition()
	header := m.styles.Header.Render(def.Title)
	if def.Description != "" {
		header += "\n" + m.styles.Muted.Render(def.Description)
	}

	side := m.viewControls()
	sideW := lipgloss.Width(side)
	chartW := max(m.width-sideW-8, 30)
	term := render.Terminal{Width: chartW, Height: max(m.height/4, 8), Styles: m.styles}

	var panels []string
	for _, o := range m.last.Outputs {
		panels = append(panels, term.Output(o))
	}
	charts := strings.Join(panels, "\n")
	if len(panels) == 0 {
		charts = m.styles.Muted.Render("computing…")
	}
	charts = window(charts, m.scroll, max(m.height-8, 10))

	body := lipgloss.JoinHorizontal(lipgloss.Top, side, "  ", charts)

	status := m.styles.Muted.Render(m.status)
	if m.err != nil {
		status = m.styles.Error.Render("✗ " + m.err.Error())
	}
	return strings.Join([]string{header, body, status, m.help.View(keys)}, "\n")
}

func (m Model) viewControls() string {
	var b strings.Builder
	for i, d := range m.decls {
		label := fmt.Sprintf("%-12s", d.Label)
		if i == m.focus {
			b.WriteString(m.styles.Focused.Render("▸ "+label) + "\n")
		} else {
			b.WriteString("  " + m.styles.Muted.Render(label) + "\n")
		}
		v := m.current(d.ID)
		switch d.Kind {
		case controls.MultiDropdown:
			chosen := make(map[string]bool)
			for _, it := range v.Items() {
				chosen[it] = true
			}
			for j, o := range d.Options {
				mark := "[ ]"
				if chosen[o.Value] {
					mark = "[x]"
				}
				line := fmt.Sprintf("    %s %s", mark, o.Label)
				if i == m.focus && j == m.member[d.ID] {
					line = m.styles.Accent.Render(line)
				}
				b.WriteString(line + "\n")
			}
			if len(v.Items()) == 0 {
				b.WriteString(m.styles.Muted.Render("    (none selected)") + "\n")
			}
		case controls.Slider:
			pos := 0
			for j, o := range d.Options {
				if o.Value == v.String() {
					pos = j
				}
			}
			frac := 0.0
			if len(d.Options) > 1 {
				frac = float64(pos) / float64(len(d.Options)-1)
			}
			b.WriteString(fmt.Sprintf("    %s %s\n", m.styles.Meter(frac, 12), v.String()))
		default:
			b.WriteString(fmt.Sprintf("    ‹ %s ›\n", d.LabelOf(v.String())))
		}
	}

	if len(m.locs) > 0 {
		label := fmt.Sprintf("%-12s", "Click")
		if m.focus == len(m.decls) {
			b.WriteString(m.styles.Focused.Render("▸ "+label) + "\n")
		} else {
			b.WriteString("  " + m.styles.Muted.Render(label) + "\n")
		}
		b.WriteString(fmt.Sprintf("    ‹ %s › %s\n", m.locs[m.loc], m.styles.Muted.Render(m.hover(m.locs[m.loc]))))
		sel := m.sess.Selection()
		if sel == "" {
			sel = "none"
		}
		b.WriteString(m.styles.Muted.Render("    selected: "+sel) + "\n")
	}
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// hover finds the hover text of a location in the clickable output.
func (m Model) hover(loc string) string {
	sel := m.sess.Context().Definition().Selection
	if sel == nil {
		return ""
	}
	for _, o := range m.last.Outputs {
		if o.ID != sel.Output || o.Spec == nil {
			continue
		}
		for _, sr := range o.Spec.Series {
			for i, l := range sr.Labels {
				if l == loc && i < len(sr.Hover) {
					return sr.Hover[i]
				}
			}
		}
	}
	return ""
}

func window(s string, offset, height int) string {
	lines := strings.Split(s, "\n")
	offset = min(offset, max(len(lines)-height, 0))
	end := min(offset+height, len(lines))
	return strings.Join(lines[offset:end], "\n")
}
