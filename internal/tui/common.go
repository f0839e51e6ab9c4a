package tui

// viewState represents the currently active view.
type viewState int

const (
	viewDecks viewState = iota
	viewStudy
	viewStats
)

var viewNames = []string{"Decks", "Study", "Stats"}

// --- Messages ---

type decksLoadedMsg struct {
	decks []deckRow
	err   error
}

type deckChosenMsg struct {
	deckID string
}

type sessionDoneMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}
