package admin

import (
	"errors"

	"github.com/glotree/pbb-ledger/internal/http/response"
	"github.com/glotree/pbb-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 店员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 店员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	token, err := h.AuthService.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoginRateLimited):
			respondError(c, response.CodeTooManyRequests, "error.login.rate_limited", nil)
		case errors.Is(err, service.ErrLoginInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "error.login.invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	response.Success(c, gin.H{"token": token})
}
