package admin

import (
	"errors"

	"github.com/scanpesa/internal/http/response"
	"github.com/scanpesa/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAnalytics feedback and reward figures, optionally for one campaign
func (h *Handler) GetAnalytics(c *gin.Context) {
	summary, err := h.AnalyticsService.Summary(c.Query("campaign_id"))
	if err != nil {
		if errors.Is(err, service.ErrAnalyticsFailed) {
			respondError(c, response.CodeInternal, "error.analytics_failed", err)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, summary)
}
