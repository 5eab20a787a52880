package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/gleaner/browser"
	"github.com/use-agent/gleaner/cleaner"
	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/harvest"
	"github.com/use-agent/gleaner/models"
)

// harvestStore holds all in-flight and completed harvest jobs.
var harvestStore sync.Map

// running guards the single browser session: only one harvest at a time.
var running atomic.Bool

func init() {
	// Background goroutine to expire harvest jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			harvestStore.Range(func(key, value any) bool {
				job := value.(*models.HarvestJob)
				if job.CreatedAt < cutoff {
					harvestStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// PostHarvest returns a handler for POST /api/v1/harvest.
//
// Harvests run asynchronously; the shared browser session admits exactly
// one run at a time, so a second request while one is in flight gets 409.
func PostHarvest(sess *browser.Session, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.HarvestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.HarvestResponse{
				Status: "failed",
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		if !sess.Authenticated() {
			c.JSON(http.StatusConflict, models.HarvestResponse{
				Status: "failed",
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeUnauthorized,
					Message: "browser session is not authenticated yet",
				},
			})
			return
		}

		if !running.CompareAndSwap(false, true) {
			c.JSON(http.StatusConflict, models.HarvestResponse{
				Status: "failed",
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "a harvest run is already in progress",
				},
			})
			return
		}

		jobID := "harvest-" + randomID()
		job := models.NewHarvestJob(jobID, len(req.Queries))
		harvestStore.Store(jobID, job)

		go runHarvest(sess, cfg, job, req)

		c.JSON(http.StatusOK, models.HarvestResponse{
			ID:     jobID,
			Status: "processing",
		})
	}
}

// GetHarvest returns a handler for GET /api/v1/harvest/:id.
func GetHarvest() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := harvestStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "harvest job not found",
				},
			})
			return
		}

		job := val.(*models.HarvestJob)
		c.JSON(http.StatusOK, job.Snapshot())
	}
}

// runHarvest executes the sequential harvest over the shared session and
// records the outcome on the job.
func runHarvest(sess *browser.Session, cfg *config.Config, job *models.HarvestJob, req models.HarvestRequest) {
	defer running.Store(false)

	hcfg := cfg.Harvest
	hcfg.Queries = req.Queries
	hcfg.DaysBack = req.DaysBack
	hcfg.MaxSteps = req.MaxSteps
	hcfg.Cooldown = time.Duration(req.CooldownSeconds) * time.Second

	ctrl := harvest.NewController(sess.Renderer(), hcfg)
	sched := harvest.NewScheduler(ctrl, hcfg)
	sched.Progress = job.SetProgress

	summary, items := sched.RunAll(context.Background())
	items = cleaner.Clean(items)

	var status string
	switch {
	case len(summary.FailedQueries) == len(req.Queries):
		status = "failed"
	case len(summary.FailedQueries) > 0:
		status = "partial"
	default:
		status = "completed"
	}
	job.Finish(status, &summary, items)

	slog.Info("harvest job finished",
		"id", job.ID,
		"status", status,
		"items", len(items),
		"failedQueries", len(summary.FailedQueries),
	)
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
