package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. webhook
// may be nil when WhatsApp is not configured.
func New(ledger *handlers.LedgerHandler, webhook *handlers.WebhookHandler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", webhook.Receive)
		r.POST("/digest", webhook.SendDigest)
	}

	api := r.Group("/api/v1")

	api.POST("/varieties", ledger.CreateVariety)
	api.GET("/varieties", ledger.ListVarieties)
	api.GET("/varieties/:code", ledger.GetVariety)

	api.POST("/loadings", ledger.CreateLoading)
	api.GET("/loadings", ledger.ListLoadings)
	api.POST("/loadings/clamp-preview", ledger.PreviewClamp)
	api.GET("/loadings/:id", ledger.GetLoading)

	lines := api.Group("/loadings/:id/lines/:lineID")
	lines.DELETE("", ledger.DeleteLine)
	lines.POST("/edit", ledger.BeginLineEdit)
	lines.PATCH("/edit", ledger.UpdateLineEdit)
	lines.POST("/edit/save", ledger.SaveLineEdit)
	lines.DELETE("/edit", ledger.CancelLineEdit)

	api.GET("/stock", ledger.Positions)
	api.GET("/stock/:variety", ledger.NetStock)

	api.POST("/payments", ledger.RecordPayment)
	api.GET("/payments", ledger.ListPayments)
	api.GET("/dues", ledger.Account)
	api.GET("/dues/pending", ledger.PendingAccounts)

	api.POST("/snapshots", ledger.TakeSnapshot)

	logger.Info("router initialized", zap.Bool("webhook", webhook != nil))

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
