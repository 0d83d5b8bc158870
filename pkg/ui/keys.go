package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the diagram view.
type KeyMap struct {
	Quit       key.Binding
	NextNode   key.Binding
	PrevNode   key.Binding
	Category   key.Binding // 1-9 toggles the nth category
	Level      key.Binding // shifted digits !@#$ toggle depths 1-4
	ShowAll    key.Binding
	HideAll    key.Binding
	ToggleHelp key.Binding
	ToggleVals key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		NextNode: key.NewBinding(
			key.WithKeys("tab", "j", "right"),
			key.WithHelp("tab", "next node"),
		),
		PrevNode: key.NewBinding(
			key.WithKeys("shift+tab", "k", "left"),
			key.WithHelp("shift+tab", "prev node"),
		),
		Category: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "toggle category"),
		),
		Level: key.NewBinding(
			key.WithKeys("!", "@", "#", "$"),
			key.WithHelp("shift+1-4", "toggle level"),
		),
		ShowAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "show all"),
		),
		HideAll: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "hide all"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		ToggleVals: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "values"),
		),
	}
}

// levelForKey maps shifted digit keys to depth levels.
func levelForKey(k string) int {
	switch k {
	case "!":
		return 1
	case "@":
		return 2
	case "#":
		return 3
	case "$":
		return 4
	default:
		return 0
	}
}
