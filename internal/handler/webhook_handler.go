package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/sanjay-gangishetty/VideoGen/config"
	"github.com/sanjay-gangishetty/VideoGen/internal/service"
	"github.com/sanjay-gangishetty/VideoGen/pkg/payment"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	cfg       *config.Config
	svc       *service.SettlementService
	providers *payment.Factory
}

func NewWebhookHandler(cfg *config.Config, svc *service.SettlementService, providers *payment.Factory) *WebhookHandler {
	return &WebhookHandler{cfg: cfg, svc: svc, providers: providers}
}

// Handle verifies and applies one gateway webhook delivery. The signature
// is checked against the exact raw bytes; a bad signature is rejected with
// no state change. Settlement failures return non-2xx so the gateway
// redelivers.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": "unreadable body"})
		return
	}
	gateway, err := h.providers.New(h.cfg.Payment.Gateway)
	if err != nil {
		respondError(c, err)
		return
	}
	ev, err := gateway.VerifyWebhook(body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Printf("[webhook] verification failed: %v", err)
		respondError(c, err)
		return
	}
	if ev.Type == payment.EventIgnored {
		respondMessage(c, http.StatusOK, "event ignored")
		return
	}
	outcome, err := h.svc.HandleEvent(c.Request.Context(), ev)
	if err != nil {
		log.Printf("[webhook] settlement failed type=%s session=%s: %v", ev.Type, ev.SessionID, err)
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, outcome)
}
