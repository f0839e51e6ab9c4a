package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/emclaughlin/flashdeck/internal/domain"
)

// DB wraps the SQL connection holding the card catalog.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to
// date.
func Open(dsn string) (*DB, error) {
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// NewMemory creates an in-memory catalog for testing.
func NewMemory() (*DB, error) {
	return Open(":memory:")
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// UpsertDeck inserts the deck or refreshes its name and description.
func (db *DB) UpsertDeck(d domain.Deck) error {
	_, err := db.conn.Exec(`
		INSERT INTO decks (id, name, description) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description
	`, d.ID, d.Name, d.Description)
	if err != nil {
		return fmt.Errorf("failed to upsert deck %s: %w", d.ID, err)
	}
	return nil
}

// GetDecks returns all decks ordered by name, with live card counts.
func (db *DB) GetDecks() ([]domain.Deck, error) {
	rows, err := db.conn.Query(`
		SELECT d.id, d.name, d.description,
		       (SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id)
		FROM decks d
		ORDER BY d.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get decks: %w", err)
	}
	defer rows.Close()

	var decks []domain.Deck
	for rows.Next() {
		var d domain.Deck
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CardCount); err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// FindDeck retrieves one deck by id, or nil when absent.
func (db *DB) FindDeck(id string) (*domain.Deck, error) {
	var d domain.Deck
	row := db.conn.QueryRow(`
		SELECT d.id, d.name, d.description,
		       (SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id)
		FROM decks d WHERE d.id = ?
	`, id)
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &d.CardCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find deck %s: %w", id, err)
	}
	return &d, nil
}

// InsertCard inserts a new card. sourceID is zero for built-in seed cards.
func (db *DB) InsertCard(card domain.Card, sourceID int64) error {
	var src sql.NullInt64
	if sourceID != 0 {
		src = sql.NullInt64{Int64: sourceID, Valid: true}
	}
	_, err := db.conn.Exec(`
		INSERT INTO cards (id, deck_id, question, answer, difficulty, frequency, tags, source_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		card.ID,
		card.DeckID,
		card.Question,
		card.Answer,
		string(card.Difficulty),
		card.Frequency,
		strings.Join(card.Tags, ","),
		src,
	)
	if err != nil {
		return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
	}
	return nil
}

func scanCard(scan func(...any) error) (domain.Card, error) {
	var c domain.Card
	var difficulty, tags string
	if err := scan(&c.ID, &c.DeckID, &c.Question, &c.Answer, &difficulty, &c.Frequency, &tags); err != nil {
		return c, err
	}
	c.Difficulty = domain.Difficulty(difficulty)
	if tags != "" {
		c.Tags = strings.Split(tags, ",")
	}
	return c, nil
}

const cardColumns = "id, deck_id, question, answer, difficulty, frequency, tags"

// FindCardByID retrieves a card by its content hash, or nil when absent.
func (db *DB) FindCardByID(id string) (*domain.Card, error) {
	row := db.conn.QueryRow(`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find card %s: %w", id, err)
	}
	return &c, nil
}

// GetCardsByDeck returns all cards in a deck, in stable insertion order.
func (db *DB) GetCardsByDeck(deckID string) ([]domain.Card, error) {
	rows, err := db.conn.Query(`SELECT `+cardColumns+` FROM cards WHERE deck_id = ? ORDER BY rowid`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row for deck %s: %w", deckID, err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// GetCardIDsBySource returns the ids of all cards that came from a source.
func (db *DB) GetCardIDsBySource(sourceID int64) ([]string, error) {
	rows, err := db.conn.Query(`SELECT id FROM cards WHERE source_id = ?`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for source %d: %w", sourceID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan card id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteCardByID removes a card from the catalog.
func (db *DB) DeleteCardByID(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	return nil
}

// CountCards reports the total catalog size, used to decide whether the
// built-in seed decks are needed.
func (db *DB) CountCards() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return n, nil
}

// Source is a deck-file origin, either a local path or a git URL.
type Source struct {
	ID          int64
	Path        string
	Kind        string
	LastScanned sql.NullTime
}

// InsertSource registers a new source and returns its ID.
func (db *DB) InsertSource(path, kind string) (int64, error) {
	res, err := db.conn.Exec(`INSERT INTO sources (path, kind) VALUES (?, ?)`, path, kind)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for source %s: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath retrieves a source by its path, or nil when absent.
func (db *DB) FindSourceByPath(path string) (*Source, error) {
	var s Source
	row := db.conn.QueryRow(`SELECT id, path, kind, last_scanned FROM sources WHERE path = ?`, path)
	if err := row.Scan(&s.ID, &s.Path, &s.Kind, &s.LastScanned); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find source by path %s: %w", path, err)
	}
	return &s, nil
}

// GetAllSources retrieves all registered sources.
func (db *DB) GetAllSources() ([]Source, error) {
	rows, err := db.conn.Query(`SELECT id, path, kind, last_scanned FROM sources`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Path, &s.Kind, &s.LastScanned); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// UpdateSourceLastScanned stamps a source after a successful reconcile.
func (db *DB) UpdateSourceLastScanned(sourceID int64) error {
	_, err := db.conn.Exec(`UPDATE sources SET last_scanned = ? WHERE id = ?`, time.Now(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for source %d: %w", sourceID, err)
	}
	return nil
}

// DeleteSource removes a source registration. Its cards are detached, not
// deleted; the next sync of another source with the same files re-adopts
// them.
func (db *DB) DeleteSource(id int64) error {
	if _, err := db.conn.Exec(`UPDATE cards SET source_id = NULL WHERE source_id = ?`, id); err != nil {
		return fmt.Errorf("failed to detach cards for source %d: %w", id, err)
	}
	if _, err := db.conn.Exec(`DELETE FROM sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete source %d: %w", id, err)
	}
	return nil
}
