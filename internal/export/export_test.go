package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emclaughlin/flashdeck/internal/domain"
	"github.com/emclaughlin/flashdeck/internal/progress"
)

func sampleStore(t *testing.T) *progress.Store {
	t.Helper()
	s := progress.Load(filepath.Join(t.TempDir(), "progress.json"))
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if _, err := s.RecordRating("card-b", domain.Good, now); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordRating("card-a", domain.Again, now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSnapshotFilename(t *testing.T) {
	now := time.UnixMilli(1767600000000)
	got := SnapshotFilename(now)
	want := "flashcard-progress-1767600000000.json"
	if got != want {
		t.Errorf("SnapshotFilename = %q, want %q", got, want)
	}
}

func TestWriteSnapshot(t *testing.T) {
	s := sampleStore(t)
	dir := t.TempDir()
	now := time.Now()

	path, err := WriteSnapshot(s.Snapshot(), dir, now)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("snapshot written to %q, want inside %q", path, dir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var snap progress.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("exported snapshot is not valid JSON: %v", err)
	}
	if snap.TotalStudied != 2 {
		t.Errorf("TotalStudied = %d, want 2", snap.TotalStudied)
	}
	if len(snap.Cards) != 2 {
		t.Errorf("Cards = %d, want 2", len(snap.Cards))
	}

	// Pretty-printed for humans.
	if !strings.Contains(string(data), "\n  ") {
		t.Error("export should be indented")
	}
}

func TestWriteSnapshotBadDir(t *testing.T) {
	s := sampleStore(t)
	if _, err := WriteSnapshot(s.Snapshot(), "/nonexistent/dir", time.Now()); err == nil {
		t.Fatal("expected error for bad directory")
	}
}

func TestWriteCardsCSV(t *testing.T) {
	s := sampleStore(t)
	path := filepath.Join(t.TempDir(), "cards.csv")

	if err := WriteCardsCSV(s.Snapshot(), path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}

	header := records[0]
	if header[0] != "Card ID" || header[2] != "Last Rating" {
		t.Errorf("header = %v", header)
	}

	// Rows are sorted by card id.
	if records[1][0] != "card-a" || records[2][0] != "card-b" {
		t.Errorf("rows out of order: %v, %v", records[1][0], records[2][0])
	}
	if records[1][2] != "again" {
		t.Errorf("card-a rating = %q, want again", records[1][2])
	}
	if records[1][1] != "1" {
		t.Errorf("card-a reviews = %q, want 1", records[1][1])
	}

	if _, err := time.Parse(time.RFC3339, records[1][3]); err != nil {
		t.Errorf("last review timestamp not RFC3339: %q", records[1][3])
	}
}

func TestWriteCardsCSVEmpty(t *testing.T) {
	s := progress.Load(filepath.Join(t.TempDir(), "progress.json"))
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := WriteCardsCSV(s.Snapshot(), path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, _ := csv.NewReader(f).ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d rows", len(records))
	}
}
