package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/models"
)

// QueryRunner runs one query's harvest session.
type QueryRunner interface {
	Run(ctx context.Context, query string) (models.QueryRunResult, error)
}

// Scheduler sequences queries over the single shared rendering session:
// strictly one at a time, in input order, with an inter-query cooldown and
// per-query failure isolation.
type Scheduler struct {
	runner  QueryRunner
	cfg     config.HarvestConfig
	limiter *rate.Limiter

	// Progress, when set, is called after each query finishes with the
	// number of queries processed so far.
	Progress func(completed int)
}

// NewScheduler wires a runner to the scheduling policy. On top of the
// cooldowns, a token-bucket limiter serializes dispatches against the
// upstream service so two queries can never start back to back even with
// a zero cooldown.
func NewScheduler(runner QueryRunner, cfg config.HarvestConfig) *Scheduler {
	return &Scheduler{
		runner:  runner,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// RunAll harvests every configured query and aggregates the results. The
// cooldowns are a deliberate throttle against upstream rate limiting, not
// a performance knob. Cancellation short-circuits the remaining queries;
// everything collected so far is still returned.
func (s *Scheduler) RunAll(ctx context.Context) (models.CollectionSummary, []models.ItemRecord) {
	summary := models.CollectionSummary{PerQuery: make(map[string]int)}
	var items []models.ItemRecord

	queries := s.cfg.Queries
	for i, query := range queries {
		if ctx.Err() != nil {
			slog.Warn("run interrupted, skipping remaining queries",
				"remaining", len(queries)-i,
			)
			break
		}
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}

		slog.Info("processing query",
			"query", query,
			"position", fmt.Sprintf("%d/%d", i+1, len(queries)),
		)

		res, err := s.runQuery(ctx, query)
		faulted := false
		switch {
		case err != nil && ctx.Err() != nil:
			// Run-level interruption, not a query fault: stop here.
			slog.Warn("run interrupted during query", "query", query)
			return summary, items
		case err != nil:
			slog.Error("query failed", "query", query, "error", err)
			summary.FailedQueries = append(summary.FailedQueries, query)
			summary.PerQuery[query] = 0
			faulted = true
		case !res.Succeeded:
			slog.Warn("query produced no items", "query", query)
			summary.FailedQueries = append(summary.FailedQueries, query)
			summary.PerQuery[query] = 0
		default:
			items = append(items, res.Items...)
			summary.PerQuery[query] = len(res.Items)
			summary.TotalItems += len(res.Items)
			slog.Info("query collected",
				"query", query,
				"items", len(res.Items),
				"total", summary.TotalItems,
			)
		}

		if s.Progress != nil {
			s.Progress(i + 1)
		}

		if i < len(queries)-1 {
			cooldown := s.cfg.Cooldown
			if faulted {
				cooldown = s.cfg.FaultCooldown
			}
			if err := sleepCtx(ctx, cooldown); err != nil {
				break
			}
		}
	}

	return summary, items
}

// runQuery isolates a single query run, converting panics into errors so
// one bad query cannot abort the whole harvest.
func (s *Scheduler) runQuery(ctx context.Context, query string) (res models.QueryRunResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = models.NewHarvestError(
				models.ErrCodeQueryFault,
				fmt.Sprintf("panic during query run: %v", r),
				nil,
			)
		}
	}()
	return s.runner.Run(ctx, query)
}
