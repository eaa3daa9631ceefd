package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Scan     key.Binding
	Deploy   key.Binding
	Analyze  key.Binding
	Gather   key.Binding
	Cancel   key.Binding
	Reset    key.Binding
	Target   key.Binding
	Tab      key.Binding
	ShiftTab key.Binding
	Up       key.Binding
	Down     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Scan: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "scan network"),
	),
	Deploy: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "deploy mimic"),
	),
	Analyze: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "analyze"),
	),
	Gather: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "gather intel"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("x", "esc"),
		key.WithHelp("x", "abort"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Target: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "next target"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "scroll up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "scroll down"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Scan, k.Deploy, k.Analyze, k.Gather, k.Cancel, k.Tab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Scan, k.Deploy, k.Analyze, k.Gather},
		{k.Cancel, k.Reset, k.Target},
		{k.Tab, k.ShiftTab, k.Up, k.Down},
		{k.Help, k.Quit},
	}
}
