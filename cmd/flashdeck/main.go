// Command flashdeck is a flashcard study tool: it keeps a card catalog in
// sqlite, schedules reviews at fixed intervals, and fronts the whole thing
// with a web UI and a terminal UI.
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/emclaughlin/flashdeck/internal/catalog"
	"github.com/emclaughlin/flashdeck/internal/config"
	"github.com/emclaughlin/flashdeck/internal/export"
	"github.com/emclaughlin/flashdeck/internal/progress"
	"github.com/emclaughlin/flashdeck/internal/session"
	"github.com/emclaughlin/flashdeck/internal/storage"
	"github.com/emclaughlin/flashdeck/internal/syncer"
	"github.com/emclaughlin/flashdeck/internal/tui"
	"github.com/emclaughlin/flashdeck/internal/web"
)

const usage = `Usage: flashdeck <command> [flags]

Commands:
  serve    run the web UI
  study    run a study session in the terminal
  sync     pull decks from the configured sources
  stats    print study statistics
  export   write a progress snapshot to the export directory
  reset    wipe all study progress

Run 'flashdeck <command> --help' for command flags.
`

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "study":
		err = runStudy(args)
	case "sync":
		err = runSync(args)
	case "stats":
		err = runStats(args)
	case "export":
		err = runExport(args)
	case "reset":
		err = runReset(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		slog.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// loadConfig parses the command's flags and merges the configuration
// layers behind them.
func loadConfig(name string, args []string) (*config.Config, error) {
	baseDir, err := config.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}

	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	config.RegisterFlags(fs, baseDir)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return config.Load(fs)
}

// openStores opens the catalog database and the progress snapshot and
// seeds the starter decks when the catalog is empty.
func openStores(cfg *config.Config) (*storage.DB, *catalog.Catalog, *progress.Store, error) {
	db, err := storage.Open(cfg.DB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open catalog database: %w", err)
	}

	store := progress.Load(cfg.Progress)
	cat := catalog.New(db, store)

	if cfg.Seed {
		if err := cat.SeedIfEmpty(); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
	}
	return db, cat, store, nil
}

func runServe(args []string) error {
	cfg, err := loadConfig("serve", args)
	if err != nil {
		return err
	}
	db, cat, store, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runner := session.NewRunner(cat, store, rand.New(rand.NewSource(time.Now().UnixNano())))
	srv := web.NewServer(cat, store, runner)

	slog.Info("serving web UI", "addr", cfg.Listen)
	return http.ListenAndServe(cfg.Listen, srv)
}

func runStudy(args []string) error {
	cfg, err := loadConfig("study", args)
	if err != nil {
		return err
	}
	db, cat, store, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runner := session.NewRunner(cat, store, rand.New(rand.NewSource(time.Now().UnixNano())))
	app := tui.NewApp(cat, store, runner, cfg.Export)

	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

func runSync(args []string) error {
	cfg, err := loadConfig("sync", args)
	if err != nil {
		return err
	}
	if len(cfg.Sources) == 0 {
		slog.Info("no sources configured, nothing to sync")
		return nil
	}

	db, err := storage.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open catalog database: %w", err)
	}
	defer db.Close()

	if err := syncer.EnsureSources(db, cfg.Sources); err != nil {
		return err
	}
	return syncer.Run(db, cfg.Repos)
}

func runStats(args []string) error {
	cfg, err := loadConfig("stats", args)
	if err != nil {
		return err
	}

	snap := progress.Load(cfg.Progress).Snapshot()
	fmt.Printf("Cards studied:  %d\n", snap.TotalStudied)
	fmt.Printf("Current streak: %d\n", snap.CurrentStreak)
	fmt.Printf("Mastered:       %d\n", snap.MasteredCards)
	fmt.Printf("Sessions:       %d\n", snap.Sessions)
	fmt.Printf("Cards tracked:  %d\n", len(snap.Cards))
	if snap.LastStudy != nil {
		fmt.Printf("Last study:     %s\n", time.UnixMilli(*snap.LastStudy).Local().Format(time.RFC1123))
	}
	return nil
}

func runExport(args []string) error {
	baseDir, err := config.DefaultDir()
	if err != nil {
		return fmt.Errorf("resolve config directory: %w", err)
	}

	fs := pflag.NewFlagSet("export", pflag.ExitOnError)
	config.RegisterFlags(fs, baseDir)
	csvOut := fs.Bool("csv", false, "also write a per-card CSV table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	snap := progress.Load(cfg.Progress).Snapshot()
	now := time.Now()

	path, err := export.WriteSnapshot(snap, cfg.Export, now)
	if err != nil {
		return err
	}
	slog.Info("wrote progress snapshot", "path", path)

	if *csvOut {
		csvPath := filepath.Join(cfg.Export, fmt.Sprintf("flashcard-cards-%d.csv", now.UnixMilli()))
		if err := export.WriteCardsCSV(snap, csvPath); err != nil {
			return err
		}
		slog.Info("wrote card table", "path", csvPath)
	}
	return nil
}

func runReset(args []string) error {
	baseDir, err := config.DefaultDir()
	if err != nil {
		return fmt.Errorf("resolve config directory: %w", err)
	}

	fs := pflag.NewFlagSet("reset", pflag.ExitOnError)
	config.RegisterFlags(fs, baseDir)
	yes := fs.Bool("yes", false, "confirm wiping all study progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	if !*yes {
		fmt.Fprintln(os.Stderr, "refusing to reset without --yes")
		return nil
	}

	store := progress.Load(cfg.Progress)
	if err := store.Reset(true); err != nil {
		return err
	}
	slog.Info("progress reset", "path", cfg.Progress)
	return nil
}
