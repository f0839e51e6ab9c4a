// Package export writes user-facing copies of the progress snapshot: the
// JSON download with its timestamped filename, and a per-card CSV table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/emclaughlin/flashdeck/internal/progress"
)

// SnapshotFilename names a snapshot export with its generation time.
func SnapshotFilename(now time.Time) string {
	return fmt.Sprintf("flashcard-progress-%d.json", now.UnixMilli())
}

// SnapshotJSON renders the snapshot as pretty-printed JSON, the same
// representation the web download serves.
func SnapshotJSON(snap progress.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// WriteSnapshot writes the snapshot into dir and returns the full path.
func WriteSnapshot(snap progress.Snapshot, dir string, now time.Time) (string, error) {
	data, err := SnapshotJSON(snap)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, SnapshotFilename(now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot file: %w", err)
	}
	return path, nil
}

// WriteCardsCSV writes one row per tracked card, ordered by card id so the
// output is stable across runs.
func WriteCardsCSV(snap progress.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Card ID", "Reviews", "Last Rating", "Last Review", "Next Review", "Ease Factor"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	ids := make([]string, 0, len(snap.Cards))
	for id := range snap.Cards {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		cp := snap.Cards[id]
		row := []string{
			id,
			strconv.Itoa(cp.Reviews),
			cp.LastRating.String(),
			time.UnixMilli(cp.LastReview).UTC().Format(time.RFC3339),
			time.UnixMilli(cp.NextReview).UTC().Format(time.RFC3339),
			strconv.FormatFloat(cp.EaseFactor, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
