package handler

import (
	"net/http"

	"github.com/sanjay-gangishetty/VideoGen/internal/middleware"
	"github.com/sanjay-gangishetty/VideoGen/internal/service"

	"github.com/gin-gonic/gin"
)

type CreditsHandler struct {
	svc *service.CreditsService
}

func NewCreditsHandler(svc *service.CreditsService) *CreditsHandler {
	return &CreditsHandler{svc: svc}
}

type AdjustmentRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

func (h *CreditsHandler) Balance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	w, err := h.svc.Balance(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, w)
}

func (h *CreditsHandler) Deduct(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": err.Error()})
		return
	}
	change, err := h.svc.Deduct(userID, req.Amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, change)
}

func (h *CreditsHandler) Add(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": err.Error()})
		return
	}
	change, err := h.svc.Add(userID, req.Amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, change)
}

// Reset restores the caller's wallet to the signup default.
func (h *CreditsHandler) Reset(c *gin.Context) {
	userID := middleware.GetUserID(c)
	w, err := h.svc.Reset(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, w)
}

// Ledger returns the wallet's audit trail, newest first.
func (h *CreditsHandler) Ledger(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	entries, err := h.svc.Ledger(userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}
