package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emclaughlin/flashdeck/internal/catalog"
)

// deckRow is one selectable line in the deck list.
type deckRow struct {
	id          string
	name        string
	description string
	cardCount   int
	mastery     int
}

type decksModel struct {
	catalog *catalog.Catalog
	decks   []deckRow
	cursor  int
	err     error
	width   int
	height  int
}

func newDecksModel(c *catalog.Catalog) decksModel {
	return decksModel{catalog: c}
}

func (d *decksModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d decksModel) refresh() tea.Cmd {
	c := d.catalog
	return func() tea.Msg {
		summaries, err := c.ListDecks()
		if err != nil {
			return decksLoadedMsg{err: err}
		}
		rows := make([]deckRow, len(summaries))
		for i, s := range summaries {
			rows[i] = deckRow{
				id:          s.ID,
				name:        s.Name,
				description: s.Description,
				cardCount:   s.CardCount,
				mastery:     s.MasteryPercent,
			}
		}
		return decksLoadedMsg{decks: rows}
	}
}

func (d decksModel) update(msg tea.Msg) (decksModel, tea.Cmd) {
	switch msg := msg.(type) {
	case decksLoadedMsg:
		d.decks = msg.decks
		d.err = msg.err
		if d.cursor >= len(d.decks) {
			d.cursor = 0
		}
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.decks)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if len(d.decks) == 0 {
				return d, nil
			}
			id := d.decks[d.cursor].id
			return d, func() tea.Msg { return deckChosenMsg{deckID: id} }
		}
	}
	return d, nil
}

func (d decksModel) view() string {
	if d.err != nil {
		return errorStyle.Render("could not load decks: " + d.err.Error())
	}
	if len(d.decks) == 0 {
		return mutedStyle.Render("No decks yet. Run `flashdeck sync` to pull some in.")
	}

	rows := []string{titleStyle.Render("Pick a deck"), ""}
	for i, deck := range d.decks {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := fmt.Sprintf("%s%-28s %3d cards  %3d%% mastered", cursor, deck.name, deck.cardCount, deck.mastery)
		rows = append(rows, style.Render(line))
		if i == d.cursor && deck.description != "" {
			rows = append(rows, mutedStyle.Render("    "+deck.description))
		}
	}
	rows = append(rows, "", mutedStyle.Render("enter: start studying"))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
