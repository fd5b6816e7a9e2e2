package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/sanjay-gangishetty/VideoGen/internal/middleware"
	"github.com/sanjay-gangishetty/VideoGen/internal/service"
	"github.com/sanjay-gangishetty/VideoGen/pkg/videogen"

	"github.com/gin-gonic/gin"
)

type VideoHandler struct {
	svc *service.VideoService
}

func NewVideoHandler(svc *service.VideoService) *VideoHandler {
	return &VideoHandler{svc: svc}
}

type GenerateRequest struct {
	Service    string            `json:"service" binding:"required"`
	Prompt     string            `json:"prompt"`
	ImageURL   string            `json:"image_url"`
	AvatarID   string            `json:"avatar_id"`
	VoiceID    string            `json:"voice_id"`
	Duration   int               `json:"duration"`
	Resolution string            `json:"resolution"`
	Extra      map[string]string `json:"extra"`
}

func (h *VideoHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": err.Error()})
		return
	}
	params := videogen.GenerateParams{
		Prompt:     req.Prompt,
		ImageURL:   req.ImageURL,
		AvatarID:   req.AvatarID,
		VoiceID:    req.VoiceID,
		Duration:   req.Duration,
		Resolution: req.Resolution,
		Extra:      req.Extra,
	}
	v, err := h.svc.Create(c.Request.Context(), userID, strings.ToUpper(req.Service), params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, v)
}

func (h *VideoHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	videos, err := h.svc.List(userID, c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"videos": videos,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *VideoHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := videoID(c)
	if !ok {
		return
	}
	v, err := h.svc.Get(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, v)
}

// Refresh polls the provider for the latest job status.
func (h *VideoHandler) Refresh(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := videoID(c)
	if !ok {
		return
	}
	v, err := h.svc.Refresh(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, v)
}

// Download redirects to the stored video URL for COMPLETED jobs.
func (h *VideoHandler) Download(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := videoID(c)
	if !ok {
		return
	}
	url, err := h.svc.DownloadURL(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *VideoHandler) Cancel(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := videoID(c)
	if !ok {
		return
	}
	v, err := h.svc.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, v)
}

func (h *VideoHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := videoID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(userID, id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "video deleted")
}

func videoID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_error", "message": "invalid video id"})
		return 0, false
	}
	return uint(id), true
}
