package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/scheduler"
	service "github.com/mamadbah2/fishledger/internal/service/whatsapp"
)

// DigestSender pushes the weekly dues digest to the manager.
type DigestSender interface {
	SendDigest(ctx context.Context) error
}

// WebhookHandler answers operator queries arriving from WhatsApp and lets
// the manager pull the weekly digest on demand.
type WebhookHandler struct {
	svc    service.MessagingService
	digest DigestSender
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter. digest may be nil.
func NewWebhookHandler(svc service.MessagingService, digest DigestSender, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, digest: digest, logger: logger}
}

// Verify responds to Meta's webhook verification challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	resp, err := h.svc.VerifyWebhookToken(c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"))
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}
	c.String(http.StatusOK, resp)
}

// Receive answers operator commands. It acknowledges every delivery,
// processing failures included.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("unreadable webhook payload", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}

	// Meta redelivers on any non-2xx, which would answer the same query twice.
	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("failed answering operator query", zap.Error(err))
	}
	c.Status(http.StatusOK)
}

// SendDigest sends the weekly dues digest to the manager now.
func (h *WebhookHandler) SendDigest(c *gin.Context) {
	if h.digest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": scheduler.ErrDigestDisabled.Error()})
		return
	}

	err := h.digest.SendDigest(c.Request.Context())
	switch {
	case errors.Is(err, scheduler.ErrDigestDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Error("manual digest failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send digest"})
	default:
		c.Status(http.StatusAccepted)
	}
}
