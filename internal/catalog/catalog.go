// Package catalog presents the static deck list and supplies cards to the
// session runner. When no content sources have been synced yet it falls
// back to a built-in set of seed decks embedded in the binary.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/emclaughlin/flashdeck/internal/domain"
	"github.com/emclaughlin/flashdeck/internal/parser"
	"github.com/emclaughlin/flashdeck/internal/progress"
	"github.com/emclaughlin/flashdeck/internal/storage"
)

//go:embed seed/*.md
var seedFiles embed.FS

// Catalog reads decks and cards from the sqlite store and pairs them with
// mastery figures from the progress store.
type Catalog struct {
	db       *storage.DB
	progress *progress.Store
}

// New builds a catalog over the given stores.
func New(db *storage.DB, store *progress.Store) *Catalog {
	return &Catalog{db: db, progress: store}
}

// DeckSummary is one tile in the deck grid.
type DeckSummary struct {
	domain.Deck
	MasteryPercent int
}

// ListDecks returns every deck with its mastery estimate: the share of its
// cards that have been reviewed at least once.
func (c *Catalog) ListDecks() ([]DeckSummary, error) {
	decks, err := c.db.GetDecks()
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	summaries := make([]DeckSummary, 0, len(decks))
	for _, d := range decks {
		s := DeckSummary{Deck: d}
		if d.CardCount > 0 {
			cards, err := c.db.GetCardsByDeck(d.ID)
			if err != nil {
				return nil, fmt.Errorf("list decks: %w", err)
			}
			ids := make([]string, len(cards))
			for i, card := range cards {
				ids[i] = card.ID
			}
			s.MasteryPercent = 100 * c.progress.ReviewedCount(ids) / d.CardCount
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// GetCards supplies the ordered card set for a deck. A deck the catalog
// does not know is an error; a known deck is never empty.
func (c *Catalog) GetCards(deckID string) ([]domain.Card, error) {
	deck, err := c.db.FindDeck(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, fmt.Errorf("deck %s not found", deckID)
	}
	return c.db.GetCardsByDeck(deckID)
}

// SeedIfEmpty loads the embedded starter decks into an empty catalog so a
// fresh install has something to study before any sources are configured.
func (c *Catalog) SeedIfEmpty() error {
	n, err := c.db.CountCards()
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if n > 0 {
		return nil
	}

	entries, err := fs.ReadDir(seedFiles, "seed")
	if err != nil {
		return fmt.Errorf("read seed decks: %w", err)
	}

	for _, entry := range entries {
		f, err := seedFiles.Open("seed/" + entry.Name())
		if err != nil {
			return fmt.Errorf("open seed deck %s: %w", entry.Name(), err)
		}
		deck, cards, err := parser.Parse(f, entry.Name())
		f.Close()
		if err != nil {
			return fmt.Errorf("parse seed deck %s: %w", entry.Name(), err)
		}

		if err := c.db.UpsertDeck(deck); err != nil {
			return err
		}
		for _, card := range cards {
			if err := c.db.InsertCard(card, 0); err != nil {
				return err
			}
		}
		slog.Info("seeded deck", "deck", deck.ID, "cards", len(cards))
	}
	return nil
}
