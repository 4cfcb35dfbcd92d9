package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	toggle    key.Binding
	like      key.Binding
	dislike   key.Binding
	perfect   key.Binding
	notForMe  key.Binding
	save      key.Binding
	remove    key.Binding
	move      key.Binding
	gallery   key.Binding
	profile   key.Binding
	watchlist key.Binding
	signIn    key.Binding
	signOut   key.Binding
	restart   key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		like:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		dislike:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dislike")),
		perfect:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "perfect")),
		notForMe:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "not for me")),
		save:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "watchlist +/-")),
		remove:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		move:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		gallery:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "gallery")),
		profile:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
		watchlist: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watchlist")),
		signIn:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sign in")),
		signOut:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sign out")),
		restart:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "start over")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.toggle, k.like, k.dislike, k.save},
		{k.perfect, k.notForMe, k.restart},
		{k.gallery, k.profile, k.watchlist, k.signIn, k.signOut, k.quit},
	}
}
