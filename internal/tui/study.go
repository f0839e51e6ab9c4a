package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emclaughlin/flashdeck/internal/domain"
	"github.com/emclaughlin/flashdeck/internal/session"
)

type studyModel struct {
	runner *session.Runner
	err    error
	width  int
	height int
}

func newStudyModel(r *session.Runner) studyModel {
	return studyModel{runner: r}
}

func (s *studyModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s studyModel) start(deckID string) (studyModel, error) {
	s.err = nil
	if err := s.runner.Start(deckID); err != nil {
		s.err = err
		return s, err
	}
	return s, nil
}

func (s studyModel) update(msg tea.Msg) (studyModel, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch s.runner.State() {
	case session.InProgress:
		switch {
		case key.Matches(msgKey, keys.Flip):
			s.err = s.runner.Flip()
		case key.Matches(msgKey, keys.RateAgain):
			s.err = s.runner.Rate(domain.Again)
		case key.Matches(msgKey, keys.RateHard):
			s.err = s.runner.Rate(domain.Hard)
		case key.Matches(msgKey, keys.RateGood):
			s.err = s.runner.Rate(domain.Good)
		case key.Matches(msgKey, keys.RateEasy):
			s.err = s.runner.Rate(domain.Easy)
		}
	case session.Complete:
		if key.Matches(msgKey, keys.Enter) {
			s.runner.Restart()
			return s, func() tea.Msg { return sessionDoneMsg{} }
		}
	}
	return s, nil
}

func (s studyModel) view() string {
	switch s.runner.State() {
	case session.Idle:
		return mutedStyle.Render("No session running. Pick a deck first.")
	case session.Complete:
		return s.summaryView()
	}

	card, pos, total := s.runner.Current()
	rows := []string{
		mutedStyle.Render(fmt.Sprintf("Card %d of %d · %s", pos, total, s.runner.DeckID())),
		"",
	}

	w := s.width - 8
	if w < 24 {
		w = 24
	}

	if s.runner.AnswerShown() {
		rows = append(rows,
			mutedStyle.Render("ANSWER"),
			answerPanelStyle.Width(w).Render(card.Answer),
		)
	} else {
		rows = append(rows,
			mutedStyle.Render("QUESTION"),
			questionPanelStyle.Width(w).Render(card.Question),
		)
	}

	meta := []string{string(card.Difficulty)}
	if card.Frequency != "" {
		meta = append(meta, card.Frequency)
	}
	meta = append(meta, card.Tags...)
	rows = append(rows, "", mutedStyle.Render(strings.Join(meta, " · ")))

	rows = append(rows, "",
		lipgloss.JoinHorizontal(lipgloss.Top,
			mutedStyle.Render("space: flip   "),
			errorStyle.Render("1 again  "),
			warningStyle.Render("2 hard  "),
			successStyle.Render("3 good  "),
			selectedItemStyle.Render("4 easy"),
		),
	)

	if s.err != nil {
		rows = append(rows, "", errorStyle.Render(s.err.Error()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (s studyModel) summaryView() string {
	sum := s.runner.Summary()
	rows := []string{
		titleStyle.Render("Session complete"),
		"",
		fmt.Sprintf("%s cards reviewed", successStyle.Render(fmt.Sprintf("%d", sum.Reviewed))),
		fmt.Sprintf("%s accuracy", successStyle.Render(fmt.Sprintf("%d%%", sum.Accuracy))),
		fmt.Sprintf("%s minutes", successStyle.Render(fmt.Sprintf("%d", sum.Minutes))),
		"",
		mutedStyle.Render("enter: back to decks"),
	}
	w := s.width - 8
	if w < 24 {
		w = 24
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
