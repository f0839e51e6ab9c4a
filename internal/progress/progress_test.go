package progress

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/emclaughlin/flashdeck/internal/domain"
	"github.com/emclaughlin/flashdeck/internal/scheduler"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return Load(filepath.Join(t.TempDir(), "progress.json"))
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t)
	snap := s.Snapshot()

	if snap.TotalStudied != 0 || snap.Sessions != 0 || snap.CurrentStreak != 0 {
		t.Fatalf("fresh store should be zeroed, got %+v", snap)
	}
	if snap.LastStudy != nil {
		t.Fatal("fresh store should have no lastStudy")
	}
	if len(snap.Cards) != 0 {
		t.Fatal("fresh store should have no cards")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Load(path)
	if s.Snapshot().TotalStudied != 0 {
		t.Fatal("corrupt file should yield a zeroed store")
	}
}

func TestLoadRejectsUnknownRating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	doc := `{"totalStudied":3,"currentStreak":1,"masteredCards":0,"sessions":1,
		"lastStudy":1000,"cards":{"c1":{"reviews":1,"lastReview":1000,"nextReview":2000,
		"easeFactor":2.5,"interval":0,"lastRating":"brilliant"}}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Load(path)
	if s.Snapshot().TotalStudied != 0 {
		t.Fatal("snapshot with unknown rating should be treated as corrupt")
	}
}

func TestLoadRejectsInvertedReviewTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	doc := `{"totalStudied":1,"currentStreak":1,"masteredCards":0,"sessions":1,
		"lastStudy":5000,"cards":{"c1":{"reviews":1,"lastReview":5000,"nextReview":100,
		"easeFactor":2.5,"interval":0,"lastRating":"good"}}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Load(path)
	if s.Snapshot().TotalStudied != 0 {
		t.Fatal("nextReview < lastReview should be treated as corrupt")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	s := Load(path)
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	if _, err := s.RecordRating("card-a", domain.Good, now); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordRating("card-b", domain.Again, now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordSessionCompletion(now.Add(2 * time.Minute)); err != nil {
		t.Fatal(err)
	}

	reloaded := Load(path)
	if !reflect.DeepEqual(s.Snapshot(), reloaded.Snapshot()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", reloaded.Snapshot(), s.Snapshot())
	}
}

func TestSaveWritesContractLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	s := Load(path)
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	if _, err := s.RecordRating("card-a", domain.Easy, now); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"totalStudied", "currentStreak", "masteredCards", "sessions", "lastStudy", "cards"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("persisted document missing key %q", key)
		}
	}

	var cards map[string]map[string]json.RawMessage
	if err := json.Unmarshal(doc["cards"], &cards); err != nil {
		t.Fatal(err)
	}
	entry := cards["card-a"]
	for _, key := range []string{"reviews", "lastReview", "nextReview", "easeFactor", "interval", "lastRating"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("card entry missing key %q", key)
		}
	}
	if string(entry["lastRating"]) != `"easy"` {
		t.Errorf("lastRating = %s, want \"easy\"", entry["lastRating"])
	}
}

func TestRecordRatingAggregates(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := s.RecordRating("card-a", domain.Hard, now.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}

	snap := s.Snapshot()
	if snap.TotalStudied != 3 {
		t.Errorf("TotalStudied = %d, want 3", snap.TotalStudied)
	}
	if snap.Cards["card-a"].Reviews != 3 {
		t.Errorf("Reviews = %d, want 3", snap.Cards["card-a"].Reviews)
	}
	if snap.LastStudy == nil || *snap.LastStudy != now.Add(2*time.Minute).UnixMilli() {
		t.Error("LastStudy should track the most recent rating")
	}
}

func TestStreakExtendsWithinADay(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	// Two sessions on the same day both bump the streak. Known quirk,
	// reproduced on purpose.
	for i := 0; i < 2; i++ {
		if _, err := s.RecordRating("c", domain.Good, now); err != nil {
			t.Fatal(err)
		}
		if err := s.RecordSessionCompletion(now); err != nil {
			t.Fatal(err)
		}
	}

	snap := s.Snapshot()
	if snap.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", snap.CurrentStreak)
	}
	if snap.Sessions != 2 {
		t.Errorf("Sessions = %d, want 2", snap.Sessions)
	}
}

func TestStreakResetsAfterGap(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	stale := now.Add(-49 * time.Hour).UnixMilli()
	s.snap.CurrentStreak = 7
	s.snap.LastStudy = &stale

	if err := s.RecordSessionCompletion(now); err != nil {
		t.Fatal(err)
	}
	if got := s.Snapshot().CurrentStreak; got != 1 {
		t.Errorf("CurrentStreak = %d, want 1 after >1 day gap", got)
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	s := Load(path)
	now := time.Now()
	if _, err := s.RecordRating("c", domain.Good, now); err != nil {
		t.Fatal(err)
	}

	if err := s.Reset(false); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().TotalStudied != 1 {
		t.Fatal("declined reset must be a no-op")
	}

	if err := s.Reset(true); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(Load(path).Snapshot(), zeroSnapshot()) {
		t.Fatal("confirmed reset should persist the zeroed store")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.RecordRating("c", domain.Good, time.Now()); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	snap.Cards["c"] = scheduler.CardProgress{Reviews: 99}
	snap.TotalStudied = 99

	if s.Snapshot().Cards["c"].Reviews == 99 || s.Snapshot().TotalStudied == 99 {
		t.Fatal("mutating a snapshot must not affect the store")
	}
}

func TestReviewedCount(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.RecordRating("a", domain.Good, now)
	s.RecordRating("b", domain.Again, now)

	if got := s.ReviewedCount([]string{"a", "b", "c"}); got != 2 {
		t.Errorf("ReviewedCount = %d, want 2", got)
	}
}

func TestDueByDay(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	s.RecordRating("overdue", domain.Again, now.Add(-time.Hour)) // due 10m later, already past
	s.RecordRating("soon", domain.Hard, now)                     // due in 3 days
	s.RecordRating("later", domain.Good, now)                    // due in 7 days
	s.RecordRating("far", domain.Easy, now)                      // due in 14 days, outside window

	buckets := s.DueByDay(now, 8)
	if buckets[0] != 1 {
		t.Errorf("bucket 0 = %d, want 1 (overdue)", buckets[0])
	}
	if buckets[3] != 1 {
		t.Errorf("bucket 3 = %d, want 1 (hard)", buckets[3])
	}
	if buckets[7] != 1 {
		t.Errorf("bucket 7 = %d, want 1 (good)", buckets[7])
	}
}
