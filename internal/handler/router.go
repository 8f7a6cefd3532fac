package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stemgharbiya/siteapi/internal/config"
	"stemgharbiya/siteapi/internal/handler/middleware"
	"stemgharbiya/siteapi/internal/monitoring"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	metrics *monitoring.Metrics,
	joinHandler *JoinHandler,
	contactHandler *ContactHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.SecurityHeaders())
	if metrics != nil {
		r.Use(metrics.Middleware())
	}

	// Health check and scrape endpoint
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if metrics != nil {
		r.GET("/metrics", metrics.Handler())
	}

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Welcome to the STEM Gharbiya site API!")
	})

	// Form endpoints
	forms := r.Group("/")
	if cfg.Server.IPRateLimit.Enabled {
		forms.Use(middleware.IPRateLimit(cfg.Server.IPRateLimit))
	}
	{
		forms.POST("/join", joinHandler.Submit)
		forms.POST("/contact", contactHandler.Submit)
	}

	return r
}
