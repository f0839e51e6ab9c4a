// Package syncer reconciles configured deck sources into the card catalog:
// new cards are inserted, cards that disappeared from their source are
// removed, deck metadata is refreshed.
package syncer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/emclaughlin/flashdeck/internal/gitsource"
	"github.com/emclaughlin/flashdeck/internal/parser"
	"github.com/emclaughlin/flashdeck/internal/storage"
)

// EnsureSources registers any configured source paths that the catalog
// does not know yet.
func EnsureSources(db *storage.DB, paths []string) error {
	for _, path := range paths {
		existing, err := db.FindSourceByPath(path)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		kind := "local"
		if gitsource.IsGitURL(path) {
			kind = "git"
		}
		if _, err := db.InsertSource(path, kind); err != nil {
			return err
		}
		slog.Info("registered source", "path", path, "kind", kind)
	}
	return nil
}

// Run reconciles every registered source. Git sources are cloned or pulled
// into reposDir first, then walked like local directories. Per-source
// failures are logged and skipped so one bad source cannot block the rest.
func Run(db *storage.DB, reposDir string) error {
	sources, err := db.GetAllSources()
	if err != nil {
		return fmt.Errorf("get sources: %w", err)
	}
	if len(sources) == 0 {
		slog.Info("no sources configured, catalog left as is")
		return nil
	}

	for _, source := range sources {
		slog.Info("syncing source", "id", source.ID, "kind", source.Kind, "path", source.Path)

		dir := source.Path
		if source.Kind == "git" {
			localPath, err := gitURLToLocalPath(reposDir, source.Path)
			if err != nil {
				slog.Error("cannot derive local path for git source", "url", source.Path, "error", err)
				continue
			}
			if err := gitsource.Sync(source.Path, localPath); err != nil {
				slog.Error("git sync failed", "url", source.Path, "error", err)
				continue
			}
			dir = localPath
		}

		if err := reconcileDir(db, source.ID, dir); err != nil {
			slog.Error("reconcile failed", "path", dir, "error", err)
			continue
		}
		if err := db.UpdateSourceLastScanned(source.ID); err != nil {
			slog.Warn("failed to stamp source", "source_id", source.ID, "error", err)
		}
	}
	return nil
}

func reconcileDir(db *storage.DB, sourceID int64, dir string) error {
	found := make(map[string]bool)
	var parsed, inserted int
	var parseErrors []error

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		deck, cards, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			parseErrors = append(parseErrors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		if len(cards) == 0 {
			return nil
		}

		if err := db.UpsertDeck(deck); err != nil {
			return err
		}
		for _, card := range cards {
			parsed++
			found[card.ID] = true

			existing, findErr := db.FindCardByID(card.ID)
			if findErr != nil {
				parseErrors = append(parseErrors, fmt.Errorf("db check for %s: %w", card.ID, findErr))
				continue
			}
			if existing == nil {
				if insertErr := db.InsertCard(card, sourceID); insertErr != nil {
					parseErrors = append(parseErrors, fmt.Errorf("db insert for %s: %w", card.ID, insertErr))
					continue
				}
				inserted++
			}
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walking %s: %w", dir, walkErr)
	}

	dbCards, err := db.GetCardIDsBySource(sourceID)
	if err != nil {
		return fmt.Errorf("cards for source %d: %w", sourceID, err)
	}

	orphaned := 0
	for _, id := range dbCards {
		if found[id] {
			continue
		}
		orphaned++
		if err := db.DeleteCardByID(id); err != nil {
			slog.Warn("failed to delete orphaned card", "card", id, "error", err)
		}
	}

	slog.Info("reconciliation complete",
		"path", dir,
		"parsed_cards", parsed,
		"new_cards", inserted,
		"orphaned_deleted", orphaned,
		"errors", len(parseErrors),
	)
	return nil
}

// gitURLToLocalPath maps a git remote onto a stable cache path under
// baseDir, handling both https and scp-like ssh forms.
func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitized := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitized), nil
}
