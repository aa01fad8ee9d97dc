package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/auth"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewRouter wires every route of the service.
func NewRouter(h *Handler, stream *ReportStream, limiter *RateLimiter, checks []ReadinessCheck, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))

	// Health checks MUST be at the root for the WebService standard
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				logger.Warn("Readiness check failed", zap.String("check", check.Name), zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "not ready",
					"error":  check.Name + " unavailable",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")

	// Public routes; the chat backend is limited per client IP
	api.POST("/sessions", h.CreateSession)
	api.POST("/chat", limiter.ClientMiddleware(), h.Chat)

	protected := api.Group("")
	protected.Use(auth.RequireSession(h.jwtManager, logger))
	limited := limiter.Middleware()

	protected.POST("/sessions/refresh", h.RefreshSession)

	protected.GET("/wizard", h.GetWizard)
	protected.POST("/wizard/answers", limited, h.SubmitAnswer)
	protected.POST("/wizard/reset", h.ResetWizard)

	protected.POST("/report", limited, h.SubmitReport)
	protected.GET("/report", h.GetReport)
	protected.DELETE("/report", h.DeleteReport)
	protected.GET("/report/cards", h.ReportCards)
	protected.POST("/report/stages/:stage", limited, h.StageReport)
	protected.POST("/report/maturity/:level", limited, h.MaturityInsights)

	protected.GET("/summary", h.SummaryPage)
	protected.POST("/summary/narrative", limited, h.Narrative)
	protected.GET("/summary/export", h.ExportSummary)

	protected.GET("/ws/report", limited, stream.StreamReport)

	return router
}
