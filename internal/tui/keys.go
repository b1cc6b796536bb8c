package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the review key bindings.
type KeyMap struct {
	Keep   key.Binding
	Delete key.Binding
	Undo   key.Binding
	Open   key.Binding
	Trash  key.Binding
	Clear  key.Binding
	Purge  key.Binding
	Export key.Binding
	Help   key.Binding
	Quit   key.Binding

	// Confirmations
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Keep: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "keep"),
		),
		Delete: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "delete"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u", "ctrl+z"),
			key.WithHelp("u", "undo"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open folder"),
		),
		Trash: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "trash"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear trash"),
		),
		Purge: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "purge trash"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export trash"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Delete, k.Keep, k.Undo, k.Trash, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Delete, k.Keep, k.Undo},
		{k.Open, k.Trash, k.Clear},
		{k.Purge, k.Export, k.Quit},
	}
}
