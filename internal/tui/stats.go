package tui

import (
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/emclaughlin/flashdeck/internal/export"
	"github.com/emclaughlin/flashdeck/internal/progress"
)

const dueHorizonDays = 7

type statsModel struct {
	store     *progress.Store
	exportDir string

	snap    progress.Snapshot
	chart   barchart.Model
	hasDue  bool
	width   int
	height  int

	form       *huh.Form
	formActive bool
	confirmed  bool
}

func newStatsModel(store *progress.Store, exportDir string) statsModel {
	return statsModel{store: store, exportDir: exportDir}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s *statsModel) refresh() {
	s.snap = s.store.Snapshot()
	s.buildChart()
}

func (s *statsModel) buildChart() {
	chartWidth := s.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 8

	s.chart = barchart.New(chartWidth, chartHeight)

	buckets := s.store.DueByDay(time.Now(), dueHorizonDays)
	s.hasDue = false

	var bars []barchart.BarData
	for i, n := range buckets {
		label := "+" + fmt.Sprint(i) + "d"
		if i == 0 {
			label = "now"
		}
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if i == 0 {
			style = lipgloss.NewStyle().Foreground(colorWarning)
		}
		if n > 0 {
			s.hasDue = true
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: "due", Value: float64(n), Style: style},
			},
		})
	}

	s.chart.PushAll(bars)
	s.chart.Draw()
}

func (s statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	if s.formActive {
		return s.updateForm(msg)
	}

	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch {
	case key.Matches(msgKey, keys.Export):
		return s, s.exportCmd()
	case key.Matches(msgKey, keys.Reset):
		s.confirmed = false
		s.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Reset all progress?").
					Description("This wipes every counter and card schedule.").
					Affirmative("Reset").
					Negative("Keep").
					Value(&s.confirmed),
			),
		).WithShowHelp(true).WithShowErrors(true)
		s.formActive = true
		return s, s.form.Init()
	}
	return s, nil
}

func (s statsModel) updateForm(msg tea.Msg) (statsModel, tea.Cmd) {
	if msgKey, ok := msg.(tea.KeyMsg); ok && msgKey.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if err := s.store.Reset(s.confirmed); err != nil {
			return s, func() tea.Msg { return statusMsg{text: err.Error(), isError: true} }
		}
		s.refresh()
		if s.confirmed {
			return s, func() tea.Msg { return statusMsg{text: "Progress reset"} }
		}
		return s, nil
	}
	return s, cmd
}

func (s statsModel) exportCmd() tea.Cmd {
	store, dir := s.store, s.exportDir
	return func() tea.Msg {
		path, err := export.WriteSnapshot(store.Snapshot(), dir, time.Now())
		if err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func (s statsModel) view() string {
	if s.formActive && s.form != nil {
		return s.form.View()
	}

	rows := []string{
		titleStyle.Render("Study stats"),
		"",
		fmt.Sprintf("%s cards studied", successStyle.Render(fmt.Sprint(s.snap.TotalStudied))),
		fmt.Sprintf("%s day streak", successStyle.Render(fmt.Sprint(s.snap.CurrentStreak))),
		fmt.Sprintf("%s mastered", successStyle.Render(fmt.Sprint(s.snap.MasteredCards))),
		fmt.Sprintf("%s sessions", successStyle.Render(fmt.Sprint(s.snap.Sessions))),
		fmt.Sprintf("%s cards tracked", successStyle.Render(fmt.Sprint(len(s.snap.Cards)))),
		"",
	}

	if s.hasDue {
		rows = append(rows, mutedStyle.Render("Reviews due over the next week"), s.chart.View())
	} else {
		rows = append(rows, mutedStyle.Render("Nothing scheduled yet. Rate some cards first."))
	}

	rows = append(rows, "", mutedStyle.Render("e: export   r: reset progress"))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
