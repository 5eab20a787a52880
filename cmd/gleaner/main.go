package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/use-agent/gleaner/browser"
	"github.com/use-agent/gleaner/cleaner"
	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/export"
	"github.com/use-agent/gleaner/harvest"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("gleaner starting",
		"queries", len(cfg.Harvest.Queries),
		"daysBack", cfg.Harvest.DaysBack,
		"maxSteps", cfg.Harvest.MaxSteps,
	)

	// ── 3. Interruption: one signal cancels every wait in the run ───
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 4. Acquire the browser session ──────────────────────────────
	sess, err := browser.NewSession(cfg.Browser)
	if err != nil {
		slog.Error("failed to start browser session", "error", err)
		os.Exit(1)
	}
	// Scoped release: the session is closed on every exit path below,
	// including interruption.
	defer sess.Close()

	// ── 5. Manual login precondition ────────────────────────────────
	if err := sess.EnsureAuthenticated(ctx); err != nil {
		slog.Error("authentication precondition not met", "error", err)
		return
	}

	// ── 6. Harvest ──────────────────────────────────────────────────
	ctrl := harvest.NewController(sess.Renderer(), cfg.Harvest)
	sched := harvest.NewScheduler(ctrl, cfg.Harvest)

	summary, items := sched.RunAll(ctx)

	slog.Info("collection finished",
		"totalItems", summary.TotalItems,
		"queries", len(cfg.Harvest.Queries),
		"failedQueries", summary.FailedQueries,
	)
	if len(items) == 0 {
		slog.Warn("no items collected; nothing to export")
		return
	}

	// ── 7. Clean ────────────────────────────────────────────────────
	cleaned := cleaner.Clean(items)
	slog.Info("records cleaned", "before", len(items), "after", len(cleaned))

	// ── 8. Export ───────────────────────────────────────────────────
	for _, format := range cfg.Export.Formats {
		var (
			path string
			err  error
		)
		switch format {
		case "jsonl":
			path = filepath.Join(cfg.Export.Dir, "items.jsonl")
			err = export.WriteJSONL(path, cleaned)
		case "csv":
			path = filepath.Join(cfg.Export.Dir, "items.csv")
			err = export.WriteCSV(path, cleaned)
		default:
			slog.Warn("unknown export format, skipping", "format", format)
			continue
		}
		if err != nil {
			slog.Error("export failed", "format", format, "path", path, "error", err)
			continue
		}
		slog.Info("export written", "format", format, "path", path, "records", len(cleaned))
	}

	slog.Info("gleaner finished")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
