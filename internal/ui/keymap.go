package ui

import "github.com/charmbracelet/bubbles/key"

// keymap defines the player-view bindings. The browser and track lists
// carry their own bindings through the list component.
type keymap struct {
	toggle     key.Binding
	next       key.Binding
	prev       key.Binding
	seekBack   key.Binding
	seekFwd    key.Binding
	rateDown   key.Binding
	rateUp     key.Binding
	volDown    key.Binding
	volUp      key.Binding
	subtitles  key.Binding
	sleepTimer key.Binding
	back       key.Binding
	quit       key.Binding
}

func newKeymap() keymap {
	return keymap{
		toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next track")),
		prev:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		seekBack:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "seek -10s")),
		seekFwd:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "seek +10s")),
		rateDown:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "slower")),
		rateUp:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "faster")),
		volDown:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "quieter")),
		volUp:      key.NewBinding(key.WithKeys("=", "+"), key.WithHelp("+", "louder")),
		subtitles:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "subtitles")),
		sleepTimer: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "sleep timer")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.next, k.prev, k.seekBack, k.seekFwd, k.back, k.quit}
}

// FullHelp implements help.KeyMap.
func (k keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.next, k.prev, k.seekBack, k.seekFwd},
		{k.rateDown, k.rateUp, k.volDown, k.volUp},
		{k.subtitles, k.sleepTimer, k.back, k.quit},
	}
}
