package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Next     key.Binding
	Previous key.Binding
	Refresh  key.Binding
	Theme    key.Binding
	Switcher key.Binding
	Help     key.Binding
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Escape   key.Binding
	Quit     key.Binding
}

// DefaultKeyMap provides the default set of key bindings.
var DefaultKeyMap = KeyMap{
	Next:     key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("right/l/tab", "next dashboard")),
	Previous: key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("left/h/shift+tab", "previous dashboard")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "next theme")),
	Switcher: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboards")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "down")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
