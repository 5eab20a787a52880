package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/gleaner/api/handler"
	"github.com/use-agent/gleaner/api/middleware"
	"github.com/use-agent/gleaner/browser"
	"github.com/use-agent/gleaner/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(sess *browser.Session, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(sess, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/harvest", handler.PostHarvest(sess, cfg))
	protected.GET("/harvest/:id", handler.GetHarvest())

	return r
}
