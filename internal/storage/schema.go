package storage

const schema = `
-- The 'decks' table holds the static deck catalog.
CREATE TABLE IF NOT EXISTS decks (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

-- The 'cards' table stores card content keyed by content hash.
CREATE TABLE IF NOT EXISTS cards (
    id         TEXT PRIMARY KEY,
    deck_id    TEXT NOT NULL,
    question   TEXT NOT NULL,
    answer     TEXT NOT NULL DEFAULT '',
    difficulty TEXT NOT NULL DEFAULT 'medium',
    frequency  TEXT NOT NULL DEFAULT '',
    tags       TEXT NOT NULL DEFAULT '',
    source_id  INTEGER,

    FOREIGN KEY(deck_id) REFERENCES decks(id),
    FOREIGN KEY(source_id) REFERENCES sources(id)
);

CREATE INDEX IF NOT EXISTS idx_cards_deck ON cards(deck_id);

-- The 'sources' table tracks where deck files come from, either a local
-- directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    path         TEXT NOT NULL UNIQUE,
    kind         TEXT NOT NULL DEFAULT 'local',
    last_scanned DATETIME
);
`
