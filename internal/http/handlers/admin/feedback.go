package admin

import (
	"errors"
	"strings"
	"time"

	handlershared "github.com/scanpesa/internal/http/handlers/shared"
	"github.com/scanpesa/internal/http/response"
	"github.com/scanpesa/internal/service"

	"github.com/gin-gonic/gin"
)

// ListFeedback feedback of a campaign, newest first
func (h *Handler) ListFeedback(c *gin.Context) {
	page, pageSize := normalizePagination(handlershared.QueryInt(c, "page", 1), handlershared.QueryInt(c, "page_size", 20))
	createdFrom, ok := parseDateQuery(c, "created_from")
	if !ok {
		return
	}
	createdTo, ok := parseDateQuery(c, "created_to")
	if !ok {
		return
	}

	items, total, err := h.FeedbackService.List(service.FeedbackListInput{
		CampaignID:  strings.TrimSpace(c.Query("campaign_id")),
		SKUID:       strings.TrimSpace(c.Query("sku_id")),
		Sentiment:   c.Query("sentiment"),
		Search:      strings.TrimSpace(c.Query("search")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.feedback_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetFeedback single feedback with its reward
func (h *Handler) GetFeedback(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	item, err := h.FeedbackService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.feedback_fetch_failed", err)
		return
	}
	response.Success(c, item)
}

// parseDateQuery accepts RFC3339 or YYYY-MM-DD
func parseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, true
		}
	}
	respondError(c, response.CodeBadRequest, "error.bad_request", nil)
	return nil, false
}
