package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	play       key.Binding
	favorite   key.Binding
	remove     key.Binding
	more       key.Binding
	visibility key.Binding
	open       key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		play:       key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "play/pause")),
		favorite:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		remove:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		more:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load more")),
		visibility: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "public/private")),
		open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in spotify")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.play, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.play},
		{k.favorite, k.remove, k.more},
		{k.visibility, k.open, k.quit},
	}
}

// songKeys are the bindings shown on a post's song list.
func (k keyMap) songKeys() []key.Binding {
	return []key.Binding{k.play, k.favorite, k.more, k.open, k.quit}
}

// favoriteKeys are the bindings shown on a favorites list.
func (k keyMap) favoriteKeys(owner bool) []key.Binding {
	if owner {
		return []key.Binding{k.play, k.favorite, k.remove, k.visibility, k.open, k.quit}
	}
	return []key.Binding{k.play, k.favorite, k.open, k.quit}
}
