package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard bindings for the TUI.
type KeyMap struct {
	Cells [9]key.Binding
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Play  key.Binding
	Leave key.Binding
	Quit  key.Binding
}

// DefaultKeyMap returns the default key bindings. Digits follow the numeric keypad
// reading order: 1 is the top-left cell, 9 the bottom-right.
func DefaultKeyMap() KeyMap {
	var cells [9]key.Binding

	for i := range cells {
		digit := string(rune('1' + i))
		cells[i] = key.NewBinding(
			key.WithKeys(digit),
			key.WithHelp(digit, "play cell"),
		)
	}

	return KeyMap{
		Cells: cells,
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "cursor up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "cursor down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "cursor left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "cursor right"),
		),
		Play: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "play cursor cell"),
		),
		Leave: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "leave tournament"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
