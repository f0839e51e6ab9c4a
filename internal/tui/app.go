// Package tui is the terminal front end: the same deck, study, and stats
// flows the web server exposes, rendered with Bubble Tea.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emclaughlin/flashdeck/internal/catalog"
	"github.com/emclaughlin/flashdeck/internal/progress"
	"github.com/emclaughlin/flashdeck/internal/session"
)

// App is the root Bubble Tea model.
type App struct {
	width  int
	height int

	activeView viewState
	showHelp   bool

	decks decksModel
	study studyModel
	stats statsModel

	help   help.Model
	status string
}

// NewApp wires the three views over the shared catalog, runner, and
// progress store.
func NewApp(c *catalog.Catalog, store *progress.Store, runner *session.Runner, exportDir string) App {
	h := help.New()
	h.ShowAll = false

	return App{
		activeView: viewDecks,
		decks:      newDecksModel(c),
		study:      newStudyModel(runner),
		stats:      newStatsModel(store, exportDir),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return a.decks.refresh()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4
		a.decks.setSize(a.width, contentHeight)
		a.study.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.stats.refresh()
		return a, nil

	case tea.KeyMsg:
		if a.activeView == viewStats && a.stats.formActive {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Decks):
			a.activeView = viewDecks
			return a, a.decks.refresh()
		case key.Matches(msg, keys.Study):
			a.activeView = viewStudy
			return a, nil
		case key.Matches(msg, keys.Stats):
			a.activeView = viewStats
			a.stats.refresh()
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 3
			return a, a.refreshCurrentView()
		}

	case decksLoadedMsg:
		a.decks, _ = a.decks.update(msg)
		return a, nil

	case deckChosenMsg:
		study, err := a.study.start(msg.deckID)
		a.study = study
		if err != nil {
			a.status = err.Error()
			return a, nil
		}
		a.activeView = viewStudy
		a.status = ""
		return a, nil

	case sessionDoneMsg:
		a.activeView = viewDecks
		return a, a.decks.refresh()

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDecks:
		a.decks, cmd = a.decks.update(msg)
	case viewStudy:
		a.study, cmd = a.study.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	}
	return a, cmd
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDecks:
		return a.decks.refresh()
	case viewStats:
		a.stats.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDecks:
		content = a.decks.view()
	case viewStudy:
		content = a.study.view()
	case viewStats:
		content = a.stats.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("flashdeck")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	left := footerStyle.Render(a.help.View(keys))

	right := ""
	if a.status != "" {
		right = mutedStyle.Render(a.status + " ")
	}

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}
