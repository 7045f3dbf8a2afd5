package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	PanLeft   key.Binding
	PanRight  key.Binding
	Prev      key.Binding
	Next      key.Binding
	NextEvent key.Binding
	PrevEvent key.Binding
	Toggle    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		PanLeft:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan back")),
		PanRight:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan forward")),
		Prev:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev timeline")),
		Next:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next timeline")),
		NextEvent: key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "next event")),
		PrevEvent: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-Tab", "prev event")),
		Toggle:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand/collapse")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.PanLeft, k.PanRight, k.NextEvent, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.PanLeft, k.PanRight},
		{k.Prev, k.Next, k.NextEvent, k.PrevEvent},
		{k.Toggle, k.Help, k.Quit},
	}
}
