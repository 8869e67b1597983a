package public

import (
	"strings"

	"github.com/scanpesa/internal/http/response"

	"github.com/gin-gonic/gin"
)

// VerifyQRRequest standalone scan validation
type VerifyQRRequest struct {
	Token    string           `json:"token"`
	QRID     string           `json:"qr_id"`
	Location *LocationRequest `json:"location"`
}

// VerifyQR consumes a code outside the feedback flow; is_valid is true for exactly one caller
func (h *Handler) VerifyQR(c *gin.Context) {
	var req VerifyQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	identifier := strings.TrimSpace(req.Token)
	if identifier == "" {
		identifier = strings.TrimSpace(req.QRID)
	}
	if identifier == "" {
		respondError(c, response.CodeBadRequest, "error.feedback_missing_fields", nil)
		return
	}

	valid, err := h.QRService.Verify(c.Request.Context(), identifier, req.Location.toModel())
	if err != nil {
		respondError(c, response.CodeInternal, "error.qr_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"is_valid": valid})
}
