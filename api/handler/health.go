package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/gleaner/browser"
	"github.com/use-agent/gleaner/models"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports "busy" while a harvest run holds the browser session.
func Health(sess *browser.Session, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		if running.Load() {
			status = "busy"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        status,
			Uptime:        time.Since(startTime).Round(time.Second).String(),
			Authenticated: sess.Authenticated(),
			Version:       "0.1.0",
		})
	}
}
