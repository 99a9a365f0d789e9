package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/assetflow/assetflow/internal/metrics"
	"github.com/assetflow/assetflow/internal/server/handlers"
)

// Handlers groups the HTTP adapters served by the router.
type Handlers struct {
	Imports *handlers.ImportHandler
	Review  *handlers.ReviewHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, m *metrics.Metrics, maxUploadBytes int64, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.MaxMultipartMemory = maxUploadBytes
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	if m != nil {
		r.Use(metrics.Middleware(m))
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	imports := api.Group("/imports")
	imports.POST("", limitBody(maxUploadBytes), h.Imports.Upload)
	imports.POST("/google-sheet", h.Imports.ImportGoogleSheet)
	imports.GET("/template", h.Imports.Template)
	imports.GET("", h.Imports.List)
	imports.GET("/:id", h.Imports.Get)
	imports.GET("/:id/report", h.Imports.Report)
	imports.DELETE("/:id", h.Imports.Delete)

	api.POST("/costings/:id/approve", h.Review.ApproveCosting)
	api.POST("/costings/:id/reject", h.Review.RejectCosting)
	api.PATCH("/movements/:id/status", h.Review.UpdateMovementStatus)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// limitBody caps a request body, leaving room for the multipart envelope
// around the file itself.
func limitBody(maxUploadBytes int64) gin.HandlerFunc {
	const envelope = 1 << 20
	return func(c *gin.Context) {
		if maxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+envelope)
		}
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
