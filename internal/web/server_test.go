package web

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emclaughlin/flashdeck/internal/catalog"
	"github.com/emclaughlin/flashdeck/internal/domain"
	"github.com/emclaughlin/flashdeck/internal/progress"
	"github.com/emclaughlin/flashdeck/internal/session"
	"github.com/emclaughlin/flashdeck/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *progress.Store) {
	t.Helper()

	db, err := storage.NewMemory()
	if err != nil {
		t.Fatalf("new memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.UpsertDeck(domain.Deck{ID: "react", Name: "React", Description: "hooks"}); err != nil {
		t.Fatal(err)
	}
	cards := []domain.Card{
		{ID: "c1", DeckID: "react", Question: "What are hooks?", Answer: "Stateful functions.", Difficulty: domain.DifficultyEasy},
		{ID: "c2", DeckID: "react", Question: "What are keys for?", Answer: "List identity.", Difficulty: domain.DifficultyMedium},
	}
	for _, c := range cards {
		if err := db.InsertCard(c, 0); err != nil {
			t.Fatal(err)
		}
	}

	store := progress.Load(filepath.Join(t.TempDir(), "progress.json"))
	cat := catalog.New(db, store)
	runner := session.NewRunner(cat, store, rand.New(rand.NewSource(1)))
	return NewServer(cat, store, runner), store
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func post(t *testing.T, s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestIndexListsDecks(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "React") {
		t.Error("index should list the deck")
	}
	if !strings.Contains(rec.Body.String(), "2 cards") {
		t.Error("index should show the card count")
	}
}

func TestStartWithoutDeckShowsValidationMessage(t *testing.T) {
	s, _ := newTestServer(t)
	rec := post(t, s, "/study/start", url.Values{})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, validation should not be an error page", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Pick a deck") {
		t.Error("expected validation message")
	}
}

func TestFullStudyFlow(t *testing.T) {
	s, store := newTestServer(t)

	rec := post(t, s, "/study/start", url.Values{"deck": {"react"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Card 1 of 2") {
		t.Error("study view should show position")
	}
	if !strings.Contains(rec.Body.String(), "Question") {
		t.Error("card should start question-side up")
	}

	rec = post(t, s, "/study/flip", nil)
	if !strings.Contains(rec.Body.String(), "Answer") {
		t.Error("flip should reveal the answer")
	}

	rec = post(t, s, "/study/rate", url.Values{"rating": {"good"}})
	if !strings.Contains(rec.Body.String(), "Card 2 of 2") {
		t.Error("rating should advance to the next card")
	}
	if strings.Contains(rec.Body.String(), ">Answer<") {
		t.Error("next card should be question-side up")
	}

	rec = post(t, s, "/study/rate", url.Values{"rating": {"easy"}})
	body := rec.Body.String()
	if !strings.Contains(body, "Session complete") {
		t.Fatal("final rating should show the summary")
	}
	if !strings.Contains(body, "100%") {
		t.Error("summary should show 100% accuracy for good+easy")
	}

	snap := store.Snapshot()
	if snap.TotalStudied != 2 || snap.Sessions != 1 {
		t.Errorf("aggregates = %+v", snap)
	}

	rec = post(t, s, "/study/restart", nil)
	if !strings.Contains(rec.Body.String(), "React") {
		t.Error("restart should return to the deck grid")
	}
}

func TestRateRejectsUnknownRating(t *testing.T) {
	s, _ := newTestServer(t)
	post(t, s, "/study/start", url.Values{"deck": {"react"}})

	rec := post(t, s, "/study/rate", url.Values{"rating": {"perfect"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRateOutsideSession(t *testing.T) {
	s, _ := newTestServer(t)
	rec := post(t, s, "/study/rate", url.Values{"rating": {"good"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStatsPage(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cards studied") {
		t.Error("stats page should show the counters")
	}
}

func TestExportDownload(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/stats/export")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "flashcard-progress-") || !strings.Contains(cd, ".json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "totalStudied") {
		t.Error("export body should be the snapshot document")
	}
}

func TestResetRequiresConfirmField(t *testing.T) {
	s, store := newTestServer(t)
	post(t, s, "/study/start", url.Values{"deck": {"react"}})
	post(t, s, "/study/rate", url.Values{"rating": {"good"}})

	post(t, s, "/stats/reset", url.Values{})
	if store.Snapshot().TotalStudied != 1 {
		t.Fatal("reset without confirmation must be a no-op")
	}

	post(t, s, "/stats/reset", url.Values{"confirm": {"yes"}})
	if store.Snapshot().TotalStudied != 0 {
		t.Fatal("confirmed reset should clear progress")
	}
}
