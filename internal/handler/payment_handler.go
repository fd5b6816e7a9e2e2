package handler

import (
	"net/http"

	"github.com/sanjay-gangishetty/VideoGen/internal/middleware"
	"github.com/sanjay-gangishetty/VideoGen/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	svc *service.SettlementService
}

func NewPaymentHandler(svc *service.SettlementService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type CheckoutRequest struct {
	Credits int64 `json:"credits" binding:"required,gt=0"`
}

// Checkout opens a gateway checkout session for a credit purchase.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": err.Error()})
		return
	}
	result, err := h.svc.InitiateCheckout(c.Request.Context(), userID, req.Credits)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result)
}

// Success is the buyer's landing page after the gateway redirect. It
// reports the payment's current state; the wallet is credited by the
// webhook, not here.
func (h *PaymentHandler) Success(c *gin.Context) {
	userID := middleware.GetUserID(c)
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": "session_id is required"})
		return
	}
	p, err := h.svc.ConfirmSuccess(userID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, p)
}

// Cancel acknowledges the buyer backing out; the payment stays PENDING
// until the gateway expires the session.
func (h *PaymentHandler) Cancel(c *gin.Context) {
	respondMessage(c, http.StatusOK, "checkout cancelled")
}

// History lists the user's payments with completed-payment stats.
func (h *PaymentHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	status := c.Query("status")
	payments, stats, err := h.svc.History(userID, status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"payments": payments,
		"stats":    stats,
		"limit":    limit,
		"offset":   offset,
	})
}
