package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Tab       key.Binding
	Decks     key.Binding
	Study     key.Binding
	Stats     key.Binding
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Flip      key.Binding
	RateAgain key.Binding
	RateHard  key.Binding
	RateGood  key.Binding
	RateEasy  key.Binding
	Export    key.Binding
	Reset     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	Decks: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "decks"),
	),
	Study: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "study"),
	),
	Stats: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "stats"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "start deck"),
	),
	Flip: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "flip card"),
	),
	RateAgain: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "again"),
	),
	RateHard: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "hard"),
	),
	RateGood: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "good"),
	),
	RateEasy: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "easy"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset progress"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Flip, k.RateGood, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Decks, k.Study, k.Stats, k.Tab},
		{k.Up, k.Down, k.Enter, k.Flip},
		{k.RateAgain, k.RateHard, k.RateGood, k.RateEasy},
		{k.Export, k.Reset, k.Quit},
	}
}
