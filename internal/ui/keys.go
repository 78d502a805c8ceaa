package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Down     key.Binding
	Up       key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Picker   key.Binding
	Select   key.Binding
	Route    key.Binding
	Reload   key.Binding
	Debug    key.Binding
	Cancel   key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "move")),
	Up:       key.NewBinding(key.WithKeys("k", "up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d", " "), key.WithHelp("pgdn", "page")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u")),
	Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end")),
	Picker:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "feeds")),
	Select:   key.NewBinding(key.WithKeys("enter")),
	Route:    key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "route")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Debug:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "debug")),
	Cancel:   key.NewBinding(key.WithKeys("esc")),
}

// statusHints lists the bindings shown in the status bar.
func statusHints() []key.Binding {
	return []key.Binding{keys.Down, keys.Top, keys.Picker, keys.Route, keys.Reload, keys.Debug, keys.Quit}
}
