package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forge/internal/auth"
)

type AuthHandler struct {
	Provider auth.Provider
	JWT      auth.JWT
	Logger   *zap.Logger
}

func (h *AuthHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/auth/login", h.login)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary Admin sign-in
// @Tags auth
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	if err := h.Provider.Authenticate(c.Request.Context(), req.Email, req.Password); err != nil {
		// One message for unknown accounts and wrong passwords alike.
		Error(c, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}
	token, expiresAt, err := h.JWT.Sign(auth.Claims{Email: req.Email, Role: "admin"})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("token sign failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, "sign-in unavailable", nil)
		return
	}
	Ok(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	}, nil)
}
