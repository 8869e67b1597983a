package admin

import (
	"errors"
	"strings"

	"github.com/scanpesa/internal/http/response"
	"github.com/scanpesa/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest admin credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login issues an admin JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			requestLog(c).Warnw("admin_login_rejected",
				"username", strings.TrimSpace(req.Username),
				"client_ip", c.ClientIP(),
			)
			respondError(c, response.CodeUnauthorized, "error.login_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.login_failed", err)
		return
	}

	requestLog(c).Infow("admin_login_succeeded", "admin_id", admin.ID, "client_ip", c.ClientIP())
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"admin":      admin,
	})
}

// GetProfile current admin
func (h *Handler) GetProfile(c *gin.Context) {
	identity, ok := currentAdmin(c)
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(identity.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return
	}
	response.Success(c, admin)
}
