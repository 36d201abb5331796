package view

import "github.com/charmbracelet/bubbles/key"

type keymap struct {
	work       key.Binding
	rest       key.Binding
	togglePlay key.Binding
	cancel     key.Binding
	complete   key.Binding
	retry      key.Binding
	refresh    key.Binding
	quit       key.Binding
}

var defaultKeymap = keymap{
	work: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "start focus"),
	),
	rest: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "start break"),
	),
	togglePlay: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space", "pause/resume"),
	),
	cancel: key.NewBinding(
		key.WithKeys("c", "esc"),
		key.WithHelp("c", "cancel block"),
	),
	complete: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mark session complete"),
	),
	retry: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "retry"),
	),
	refresh: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "refresh"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
