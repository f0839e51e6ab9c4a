package syncer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emclaughlin/flashdeck/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.NewMemory()
	if err != nil {
		t.Fatalf("new memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeDeckFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEnsureSources(t *testing.T) {
	db := newTestDB(t)

	paths := []string{"/decks/local", "https://example.com/decks.git"}
	if err := EnsureSources(db, paths); err != nil {
		t.Fatal(err)
	}
	// Registering again must not duplicate.
	if err := EnsureSources(db, paths); err != nil {
		t.Fatal(err)
	}

	sources, err := db.GetAllSources()
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}

	kinds := map[string]string{}
	for _, s := range sources {
		kinds[s.Path] = s.Kind
	}
	if kinds["/decks/local"] != "local" {
		t.Errorf("local path classified as %q", kinds["/decks/local"])
	}
	if kinds["https://example.com/decks.git"] != "git" {
		t.Errorf("git url classified as %q", kinds["https://example.com/decks.git"])
	}
}

func TestRunReconcilesLocalSource(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	writeDeckFile(t, dir, "ts.md", "# deck: TypeScript\nQ: q1\nA: a1\n---\nQ: q2\nA: a2\n")
	if err := EnsureSources(db, []string{dir}); err != nil {
		t.Fatal(err)
	}

	if err := Run(db, t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cards, err := db.GetCardsByDeck("typescript")
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards after sync, got %d", len(cards))
	}

	src, _ := db.FindSourceByPath(dir)
	if !src.LastScanned.Valid {
		t.Error("source should be stamped after sync")
	}
}

func TestRunDeletesOrphans(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	writeDeckFile(t, dir, "ts.md", "# deck: TypeScript\nQ: keep\nA: kept\n---\nQ: drop\nA: dropped\n")
	if err := EnsureSources(db, []string{dir}); err != nil {
		t.Fatal(err)
	}
	if err := Run(db, t.TempDir()); err != nil {
		t.Fatal(err)
	}

	// The second card disappears from the file; sync should remove it.
	writeDeckFile(t, dir, "ts.md", "# deck: TypeScript\nQ: keep\nA: kept\n")
	if err := Run(db, t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cards, err := db.GetCardsByDeck("typescript")
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card after orphan cleanup, got %d", len(cards))
	}
	if cards[0].Question != "keep" {
		t.Errorf("surviving card = %q", cards[0].Question)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	writeDeckFile(t, dir, "ts.md", "# deck: TypeScript\nQ: q1\nA: a1\n")
	if err := EnsureSources(db, []string{dir}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := Run(db, t.TempDir()); err != nil {
			t.Fatal(err)
		}
	}

	n, err := db.CountCards()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 card after repeated sync, got %d", n)
	}
}

func TestGitURLToLocalPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/decks.git", filepath.Join("repos", "github.com", "acme", "decks")},
		{"git@github.com:acme/decks.git", filepath.Join("repos", "github.com", "acme/decks")},
	}
	for _, tt := range tests {
		got, err := gitURLToLocalPath("repos", tt.url)
		if err != nil {
			t.Errorf("gitURLToLocalPath(%q): %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("gitURLToLocalPath(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
