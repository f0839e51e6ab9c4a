// Package progress owns the durable study-progress snapshot: aggregate
// counters plus per-card scheduling state, persisted as a single JSON
// document. The document layout is a compatibility contract and must
// round-trip without drift.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/emclaughlin/flashdeck/internal/domain"
	"github.com/emclaughlin/flashdeck/internal/scheduler"
)

const millisPerDay = 86_400_000

// Snapshot is the persisted representation of all study progress.
// MasteredCards is a stored-but-never-derived counter kept for layout
// compatibility; no code path increments it.
type Snapshot struct {
	TotalStudied  int                               `json:"totalStudied" validate:"min=0"`
	CurrentStreak int                               `json:"currentStreak" validate:"min=0"`
	MasteredCards int                               `json:"masteredCards" validate:"min=0"`
	Sessions      int                               `json:"sessions" validate:"min=0"`
	LastStudy     *int64                            `json:"lastStudy"`
	Cards         map[string]scheduler.CardProgress `json:"cards" validate:"dive"`
}

func zeroSnapshot() Snapshot {
	return Snapshot{Cards: map[string]scheduler.CardProgress{}}
}

var validate = validator.New()

// check verifies both the struct constraints and the cross-field invariant
// that a card never comes due before it was last reviewed.
func (s *Snapshot) check() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	for id, cp := range s.Cards {
		if cp.NextReview < cp.LastReview {
			return fmt.Errorf("card %s: nextReview precedes lastReview", id)
		}
		if _, err := domain.ParseRating(cp.LastRating.String()); err != nil {
			return fmt.Errorf("card %s: %w", id, err)
		}
	}
	return nil
}

// Store is the single source of truth for study statistics. It is owned by
// the application root and handed to the session runner and the views by
// reference; there is one user and one goroutine touching it, so every
// mutation saves immediately and last-write-wins is correct.
type Store struct {
	path string
	snap Snapshot
}

// Load reads the snapshot at path. A missing or corrupt file is treated as
// "no prior progress" and yields a zeroed store; it is never an error.
func Load(path string) *Store {
	s := &Store{path: path, snap: zeroSnapshot()}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("progress snapshot unreadable, starting fresh", "path", path, "error", err)
		}
		return s
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("progress snapshot corrupt, starting fresh", "path", path, "error", err)
		return s
	}
	if snap.Cards == nil {
		snap.Cards = map[string]scheduler.CardProgress{}
	}
	if err := snap.check(); err != nil {
		slog.Warn("progress snapshot invalid, starting fresh", "path", path, "error", err)
		return s
	}

	s.snap = snap
	return s
}

// Save writes the whole snapshot atomically: marshal, write a sibling temp
// file, rename over the target.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create progress directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write progress temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}

// RecordRating folds one rating into the per-card state and the aggregate
// counters, then persists. Returns the updated card entry.
func (s *Store) RecordRating(cardID string, r domain.Rating, now time.Time) (scheduler.CardProgress, error) {
	cp := scheduler.Apply(s.snap.Cards[cardID], r, now)
	s.snap.Cards[cardID] = cp
	s.snap.TotalStudied++
	millis := now.UnixMilli()
	s.snap.LastStudy = &millis

	if err := s.Save(); err != nil {
		return cp, err
	}
	return cp, nil
}

// RecordSessionCompletion bumps the session counter and recomputes the
// streak. A gap of more than one day resets the streak to 1; anything
// closer extends it. This deliberately increments once per session, not
// once per calendar day.
func (s *Store) RecordSessionCompletion(now time.Time) error {
	s.snap.Sessions++

	if s.snap.LastStudy == nil {
		s.snap.CurrentStreak = 1
	} else {
		days := (now.UnixMilli() - *s.snap.LastStudy) / millisPerDay
		if days <= 1 {
			s.snap.CurrentStreak++
		} else {
			s.snap.CurrentStreak = 1
		}
	}

	return s.Save()
}

// Snapshot returns a deep copy for rendering or export. Callers cannot
// mutate the store through it.
func (s *Store) Snapshot() Snapshot {
	out := s.snap
	out.Cards = make(map[string]scheduler.CardProgress, len(s.snap.Cards))
	for id, cp := range s.snap.Cards {
		out.Cards[id] = cp
	}
	if s.snap.LastStudy != nil {
		millis := *s.snap.LastStudy
		out.LastStudy = &millis
	}
	return out
}

// Card looks up the scheduling state for one card.
func (s *Store) Card(id string) (scheduler.CardProgress, bool) {
	cp, ok := s.snap.Cards[id]
	return cp, ok
}

// ReviewedCount reports how many of the given cards have been rated at
// least once. The deck catalog derives mastery percentages from it.
func (s *Store) ReviewedCount(cardIDs []string) int {
	n := 0
	for _, id := range cardIDs {
		if cp, ok := s.snap.Cards[id]; ok && cp.Reviews > 0 {
			n++
		}
	}
	return n
}

// DueByDay buckets cards by how many days until their next review, for
// days offsets [0, days). Overdue cards land in bucket 0.
func (s *Store) DueByDay(now time.Time, days int) []int {
	buckets := make([]int, days)
	nowMillis := now.UnixMilli()
	for _, cp := range s.snap.Cards {
		d := (cp.NextReview - nowMillis) / millisPerDay
		if d < 0 {
			d = 0
		}
		if d < int64(days) {
			buckets[d]++
		}
	}
	return buckets
}

// Reset irreversibly clears all progress. The confirmed guard is supplied
// by the caller's confirmation UI; declining is a no-op.
func (s *Store) Reset(confirmed bool) error {
	if !confirmed {
		return nil
	}
	s.snap = zeroSnapshot()
	return s.Save()
}
