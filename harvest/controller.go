package harvest

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/renderer"
)

// Controller drives the scroll/extract loop for one query at a time until
// convergence or the step ceiling. It owns the per-query fingerprint set;
// nothing about it is shared between queries.
type Controller struct {
	r   renderer.Renderer
	ex  *Extractor
	cfg config.HarvestConfig
	now func() time.Time
}

// NewController binds a controller to a renderer. Zero-valued counters and
// a zero readiness budget fall back to the documented defaults; the grace,
// settle, and cooldown delays stay as given, a zero delay means no waiting.
func NewController(r renderer.Renderer, cfg config.HarvestConfig) *Controller {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 50
	}
	if cfg.NoProgressLimit <= 0 {
		cfg.NoProgressLimit = 4
	}
	if cfg.DaysBack <= 0 {
		cfg.DaysBack = 3
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 10 * time.Second
	}
	return &Controller{
		r:   r,
		ex:  NewExtractor(cfg.MinContentLength),
		cfg: cfg,
		now: time.Now,
	}
}

// Run harvests one query. An empty, unsuccessful result is the normal
// outcome for a query with no recent activity; errors are reserved for
// faults (navigation failure, interruption) the scheduler must isolate.
func (c *Controller) Run(ctx context.Context, query string) (models.QueryRunResult, error) {
	result := models.QueryRunResult{Query: query, Items: []models.ItemRecord{}}

	// ── 1. Dispatch ─────────────────────────────────────────────────
	target := SearchURL(query, c.cfg.DaysBack, c.now())
	slog.Info("dispatching query", "query", query, "url", target)

	if err := c.r.Navigate(ctx, target); err != nil {
		return result, models.NewHarvestError(
			models.ErrCodeNavigation,
			"failed to open search results",
			err,
		)
	}
	if err := sleepCtx(ctx, c.cfg.InitialGrace); err != nil {
		return result, err
	}

	if !c.r.WaitReady(ctx, readySelectors, c.cfg.ReadyTimeout) {
		// No matching content is expected when a query has no recent
		// activity: log and end the run, don't error.
		slog.Warn("no content became ready", "query", query)
		return result, nil
	}

	// ── 2. Step loop ────────────────────────────────────────────────
	seen := newFingerprintSet()
	noProgress := 0

	for step := 0; step < c.cfg.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		added := 0
		for _, h := range c.visibleItems() {
			rec := c.ex.Extract(h, query)
			if rec == nil {
				continue
			}
			fp := Fingerprint(rec.Content)
			if seen.Seen(fp) {
				continue
			}
			seen.Record(fp)
			result.Items = append(result.Items, *rec)
			added++
		}

		if added == 0 {
			noProgress++
			if noProgress >= c.cfg.NoProgressLimit {
				slog.Info("query converged",
					"query", query,
					"steps", step+1,
					"items", len(result.Items),
				)
				break
			}
		} else {
			noProgress = 0
			slog.Debug("step progress",
				"query", query,
				"step", step+1,
				"added", added,
				"total", len(result.Items),
			)
		}

		if err := c.r.LoadMore(ctx); err != nil {
			return result, models.NewHarvestError(
				models.ErrCodeQueryFault,
				"failed to trigger next content load",
				err,
			)
		}
		if err := sleepCtx(ctx, c.cfg.SettleDelay); err != nil {
			return result, err
		}
	}

	// ── 3. Done ─────────────────────────────────────────────────────
	// Convergence and step-ceiling exhaustion are equivalent here.
	result.Succeeded = len(result.Items) > 0
	return result, nil
}

// visibleItems tries the item locator strategies in priority order and
// returns the first non-empty enumeration.
func (c *Controller) visibleItems() []renderer.Handle {
	for _, sel := range itemSelectors {
		handles, err := c.r.Elements(sel)
		if err == nil && len(handles) > 0 {
			return handles
		}
	}
	return nil
}

// sleepCtx is a context-aware sleep; cancellation during any wait aborts
// with the context's error.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
