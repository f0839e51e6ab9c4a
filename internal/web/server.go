// Package web serves the HTMX review UI: deck grid, study view with flip
// and rating buttons, completion summary, and the stats page with export
// and reset actions.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/emclaughlin/flashdeck/internal/catalog"
	"github.com/emclaughlin/flashdeck/internal/domain"
	"github.com/emclaughlin/flashdeck/internal/export"
	"github.com/emclaughlin/flashdeck/internal/progress"
	"github.com/emclaughlin/flashdeck/internal/session"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Server holds the dependencies for the HTTP server. It drives a single
// in-process session runner; the app is single-user by construction.
type Server struct {
	catalog   *catalog.Catalog
	progress  *progress.Store
	runner    *session.Runner
	router    *http.ServeMux
	templates *template.Template
}

// NewServer creates and configures a new server.
func NewServer(cat *catalog.Catalog, store *progress.Store, runner *session.Runner) *Server {
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	s := &Server{
		catalog:   cat,
		progress:  store,
		runner:    runner,
		router:    http.NewServeMux(),
		templates: tpl,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatalf("Failed to create sub-filesystem for static assets: %v", err)
	}
	s.router.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.HandleFunc("/", s.handleIndex())
	s.router.HandleFunc("/study/start", s.handleStart())
	s.router.HandleFunc("/study/flip", s.handleFlip())
	s.router.HandleFunc("/study/rate", s.handleRate())
	s.router.HandleFunc("/study/restart", s.handleRestart())
	s.router.HandleFunc("/stats", s.handleStats())
	s.router.HandleFunc("/stats/export", s.handleExport())
	s.router.HandleFunc("/stats/reset", s.handleReset())
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("render failed", "template", name, "error", err)
	}
}

func (s *Server) renderDeckGrid(w http.ResponseWriter, message string) {
	decks, err := s.catalog.ListDecks()
	if err != nil {
		slog.Error("listing decks", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.render(w, "deck_grid", map[string]any{
		"Decks":   decks,
		"Message": message,
	})
}

// handleIndex renders the full page with the deck picker.
func (s *Server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		decks, err := s.catalog.ListDecks()
		if err != nil {
			slog.Error("listing decks", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.render(w, "index", map[string]any{"Decks": decks})
	}
}

type cardView struct {
	Card        domain.Card
	Position    int
	Total       int
	AnswerShown bool
	DeckID      string
}

func (s *Server) renderCurrentCard(w http.ResponseWriter) {
	card, pos, total := s.runner.Current()
	s.render(w, "card", cardView{
		Card:        card,
		Position:    pos,
		Total:       total,
		AnswerShown: s.runner.AnswerShown(),
		DeckID:      s.runner.DeckID(),
	})
}

// handleStart begins a session. Starting without a deck is a validation
// message, not an error page.
func (s *Server) handleStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		deckID := r.PostFormValue("deck")
		if err := s.runner.Start(deckID); err != nil {
			if err == session.ErrNoDeck {
				s.renderDeckGrid(w, "Pick a deck to start studying.")
				return
			}
			slog.Error("starting session", "deck", deckID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.renderCurrentCard(w)
	}
}

// handleFlip toggles between question and answer.
func (s *Server) handleFlip() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := s.runner.Flip(); err != nil {
			http.Error(w, "No session in progress", http.StatusBadRequest)
			return
		}
		s.renderCurrentCard(w)
	}
}

// handleRate records a rating and shows the next card or the summary.
func (s *Server) handleRate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		rating, err := domain.ParseRating(r.PostFormValue("rating"))
		if err != nil {
			http.Error(w, "Invalid rating", http.StatusBadRequest)
			return
		}
		if err := s.runner.Rate(rating); err != nil {
			if err == session.ErrNoSession {
				http.Error(w, "No session in progress", http.StatusBadRequest)
				return
			}
			slog.Error("recording rating", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		if s.runner.State() == session.Complete {
			s.render(w, "summary", s.runner.Summary())
			return
		}
		s.renderCurrentCard(w)
	}
}

// handleRestart returns to the deck picker.
func (s *Server) handleRestart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.runner.Restart()
		s.renderDeckGrid(w, "")
	}
}

type statsView struct {
	progress.Snapshot
	TrackedCards int
}

// handleStats renders the aggregate counters page.
func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.progress.Snapshot()
		s.render(w, "stats", statsView{Snapshot: snap, TrackedCards: len(snap.Cards)})
	}
}

// handleExport serves the snapshot as a timestamped JSON download.
func (s *Server) handleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := export.SnapshotJSON(s.progress.Snapshot())
		if err != nil {
			slog.Error("exporting snapshot", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		name := export.SnapshotFilename(time.Now())
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Write(data)
	}
}

// handleReset clears all progress. The confirm field carries the user's
// explicit confirmation from the UI dialog; without it the request is a
// no-op.
func (s *Server) handleReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		confirmed := r.PostFormValue("confirm") == "yes"
		if err := s.progress.Reset(confirmed); err != nil {
			slog.Error("resetting progress", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		snap := s.progress.Snapshot()
		s.render(w, "stats_panel", statsView{Snapshot: snap, TrackedCards: len(snap.Cards)})
	}
}
