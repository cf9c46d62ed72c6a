package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the evaluation form.
type KeyMap struct {
	Next key.Binding
	Prev key.Binding

	// Left and Right move the provisional star highlight on a rating
	// row and cycle the options of a choice row.
	Left  key.Binding
	Right key.Binding

	// Commit fixes the highlighted rating.
	Commit key.Binding

	Submit key.Binding
	Retry  key.Binding
	Back   key.Binding
	Quit   key.Binding
}

var DefaultKeyMap = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "less"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "more"),
	),
	Commit: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "rate"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "submit"),
	),
	Retry: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "retry"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "leave"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

func (k KeyMap) formHelp() []key.Binding {
	return []key.Binding{k.Next, k.Left, k.Right, k.Commit, k.Submit, k.Quit}
}
