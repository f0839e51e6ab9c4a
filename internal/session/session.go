// Package session drives one study run through a shuffled deck: pick a
// deck, flip and rate each card in turn, end on a summary. All mutation
// happens synchronously in response to user input, so the runner needs no
// locking.
package session

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/emclaughlin/flashdeck/internal/domain"
	"github.com/emclaughlin/flashdeck/internal/progress"
)

// CardSource supplies the cards for a chosen deck. It must return a
// non-empty ordered sequence for any deck the catalog lists.
type CardSource interface {
	GetCards(deckID string) ([]domain.Card, error)
}

// State enumerates the runner's lifecycle.
type State int

const (
	Idle State = iota
	InProgress
	Complete
)

var (
	// ErrNoDeck is the validation failure for starting without a deck.
	ErrNoDeck = errors.New("no deck selected")
	// ErrNoSession is returned when flip or rate arrive outside a session.
	ErrNoSession = errors.New("no session in progress")
)

// Summary is computed once on completion and never recomputed.
type Summary struct {
	Reviewed int
	Accuracy int
	Minutes  int
}

// Runner walks the user through a shuffled deck. The random source is
// injected so tests can assert exact permutations.
type Runner struct {
	source   CardSource
	progress *progress.Store
	rng      *rand.Rand
	now      func() time.Time

	state       State
	deckID      string
	cards       []domain.Card
	index       int
	answerShown bool
	record      []domain.ReviewEntry
	startedAt   time.Time
	summary     Summary
}

// NewRunner wires a runner to its card source and progress store.
func NewRunner(source CardSource, store *progress.Store, rng *rand.Rand) *Runner {
	return &Runner{
		source:   source,
		progress: store,
		rng:      rng,
		now:      time.Now,
	}
}

// SetClock overrides the runner's time source. Tests only.
func (r *Runner) SetClock(now func() time.Time) { r.now = now }

// State reports where the runner is in its lifecycle.
func (r *Runner) State() State { return r.state }

// DeckID is the deck of the active or just-completed session.
func (r *Runner) DeckID() string { return r.deckID }

// Start begins a session over the given deck. An empty deck id is a user
// validation failure; the runner stays Idle.
func (r *Runner) Start(deckID string) error {
	if deckID == "" {
		return ErrNoDeck
	}

	cards, err := r.source.GetCards(deckID)
	if err != nil {
		return fmt.Errorf("load deck %s: %w", deckID, err)
	}
	if len(cards) == 0 {
		return fmt.Errorf("deck %s has no cards", deckID)
	}

	shuffled := make([]domain.Card, len(cards))
	copy(shuffled, cards)
	shuffle(shuffled, r.rng)

	r.state = InProgress
	r.deckID = deckID
	r.cards = shuffled
	r.index = 0
	r.answerShown = false
	r.record = nil
	r.startedAt = r.now()
	r.summary = Summary{}
	return nil
}

// shuffle is an unbiased Fisher-Yates permutation.
func shuffle(cards []domain.Card, rng *rand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Current returns the card being shown, its 1-based position, and the deck
// size.
func (r *Runner) Current() (domain.Card, int, int) {
	if r.state != InProgress {
		return domain.Card{}, 0, len(r.cards)
	}
	return r.cards[r.index], r.index + 1, len(r.cards)
}

// AnswerShown reports which side of the current card is visible.
func (r *Runner) AnswerShown() bool { return r.answerShown }

// Flip toggles between question and answer for the current card. Flipping
// twice returns to the original side.
func (r *Runner) Flip() error {
	if r.state != InProgress {
		return ErrNoSession
	}
	r.answerShown = !r.answerShown
	return nil
}

// Rate records the rating for the current card, persists the scheduling
// update, and advances. The last card's rating completes the session.
func (r *Runner) Rate(rating domain.Rating) error {
	if r.state != InProgress {
		return ErrNoSession
	}

	now := r.now()
	card := r.cards[r.index]
	r.record = append(r.record, domain.ReviewEntry{CardID: card.ID, Rating: rating, Timestamp: now})

	if _, err := r.progress.RecordRating(card.ID, rating, now); err != nil {
		return fmt.Errorf("record rating for %s: %w", card.ID, err)
	}

	r.index++
	r.answerShown = false
	if r.index >= len(r.cards) {
		return r.complete(now)
	}
	return nil
}

func (r *Runner) complete(now time.Time) error {
	r.state = Complete
	r.summary = Summary{
		Reviewed: len(r.record),
		Accuracy: accuracy(r.record),
		Minutes:  int(now.Sub(r.startedAt) / time.Minute),
	}
	if err := r.progress.RecordSessionCompletion(now); err != nil {
		return fmt.Errorf("record session completion: %w", err)
	}
	return nil
}

func accuracy(record []domain.ReviewEntry) int {
	if len(record) == 0 {
		return 0
	}
	correct := 0
	for _, e := range record {
		if e.Rating.Correct() {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(record))))
}

// Summary returns the completion figures. Valid once state is Complete.
func (r *Runner) Summary() Summary { return r.summary }

// Record exposes the in-session rating log, ordered as submitted. It is
// discarded on restart; only its aggregate effects outlive the session.
func (r *Runner) Record() []domain.ReviewEntry { return r.record }

// Restart clears the deck selection and returns to the catalog.
func (r *Runner) Restart() {
	r.state = Idle
	r.deckID = ""
	r.cards = nil
	r.index = 0
	r.answerShown = false
	r.record = nil
	r.summary = Summary{}
}
