// Package ui provides the Bubble Tea TUI for the StableSwap simulator.
package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Quit      key.Binding
	Swap      key.Binding
	Direction key.Binding
	Curve     key.Binding
	Clear     key.Binding
	Errors    key.Binding
	Focus     key.Binding
	Blur      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Swap: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "swap"),
		),
		Direction: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "direction"),
		),
		Curve: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "curve"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear history"),
		),
		Errors: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "clear errors"),
		),
		Focus: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "amount"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "done"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Swap, k.Direction, k.Curve, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Swap, k.Direction, k.Curve},
		{k.Clear, k.Errors, k.Focus, k.Quit},
	}
}
