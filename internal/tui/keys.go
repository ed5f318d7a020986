package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	All    key.Binding
	None   key.Binding
	Click  key.Binding
	Clear  key.Binding
	Reset  key.Binding
	Preset key.Binding
	Up     key.Binding
	Down   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next control")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous control")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous value")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next value")),
	Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle member")),
	All:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
	None:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "select none")),
	Click:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "click location")),
	Clear:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear selection")),
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Preset: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next preset")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Left, k.Right, k.Toggle, k.Click, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Left, k.Right},
		{k.Toggle, k.All, k.None, k.Click},
		{k.Clear, k.Reset, k.Preset},
		{k.Up, k.Down, k.Help, k.Quit},
	}
}
