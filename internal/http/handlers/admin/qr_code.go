package admin

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	handlershared "github.com/scanpesa/internal/http/handlers/shared"
	"github.com/scanpesa/internal/http/response"
	"github.com/scanpesa/internal/service"

	"github.com/gin-gonic/gin"
)

// GenerateQRCodesRequest batch generation for every variant of a campaign
type GenerateQRCodesRequest struct {
	CampaignID string `json:"campaign_id" binding:"required"`
	BaseURL    string `json:"base_url"`
}

// BulkDeleteQRCodesRequest ids to delete
type BulkDeleteQRCodesRequest struct {
	IDs []string `json:"ids"`
}

// GenerateQRCodes mints and stores the campaign's codes.
// Partial failures are reported inside the per-variant results.
func (h *Handler) GenerateQRCodes(c *gin.Context) {
	var req GenerateQRCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	results, err := h.QRService.GenerateForCampaign(c.Request.Context(), req.CampaignID, req.BaseURL)
	if err != nil {
		respondQRError(c, err)
		return
	}
	requestLog(c).Infow("admin_qr_generate", append(auditFields(c), "campaign_id", req.CampaignID)...)
	response.Success(c, results)
}

// PreviewQRCodes one code per variant with its rendered image
func (h *Handler) PreviewQRCodes(c *gin.Context) {
	var req GenerateQRCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	previews, err := h.QRService.Preview(c.Request.Context(), req.CampaignID, req.BaseURL)
	if err != nil {
		respondQRError(c, err)
		return
	}
	response.Success(c, previews)
}

// ListQRCodes paginated ledger of a campaign
func (h *Handler) ListQRCodes(c *gin.Context) {
	tokens, total, page, pageSize, err := h.QRService.List(service.QRListInput{
		CampaignID: strings.TrimSpace(c.Query("campaign_id")),
		SKUID:      strings.TrimSpace(c.Query("sku_id")),
		IsUsed:     handlershared.QueryBool(c, "is_used"),
		Page:       handlershared.QueryInt(c, "page", 1),
		PageSize:   handlershared.QueryInt(c, "page_size", 0),
	})
	if err != nil {
		respondQRError(c, err)
		return
	}
	response.SuccessWithPage(c, tokens, response.BuildPagination(page, pageSize, total))
}

// GetQRCode single code with its image as a data URL
func (h *Handler) GetQRCode(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	detail, err := h.QRService.Get(id)
	if err != nil {
		respondQRError(c, err)
		return
	}
	response.Success(c, detail)
}

// GetQRCodeImage PNG rendered on demand from the stored URL
func (h *Handler) GetQRCodeImage(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	token, err := h.QRService.GetToken(id)
	if err != nil {
		respondQRError(c, err)
		return
	}
	png, err := h.QRService.RenderImage(token.URL)
	if err != nil {
		respondQRError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"qr_%s.png\"", token.ID))
	c.Data(http.StatusOK, "image/png", png)
}

// GetQRStats usage counters for a campaign, all campaigns when campaign_id is empty
func (h *Handler) GetQRStats(c *gin.Context) {
	stats, err := h.QRService.Stats(c.Request.Context(), strings.TrimSpace(c.Query("campaign_id")))
	if err != nil {
		respondQRError(c, err)
		return
	}
	response.Success(c, stats)
}

// ExportQRCodes campaign ledger as csv or json
func (h *Handler) ExportQRCodes(c *gin.Context) {
	campaignID := strings.TrimSpace(c.Query("campaign_id"))
	if campaignID == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	content, contentType, err := h.QRService.Export(campaignID, format)
	if err != nil {
		respondQRError(c, err)
		return
	}
	filename := fmt.Sprintf("qr_codes_%s_%s.%s", campaignID, time.Now().Format("20060102_150405"), format)
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, contentType, content)
}

// BulkDeleteQRCodes removes unused codes; redeemed codes stay in the ledger
func (h *Handler) BulkDeleteQRCodes(c *gin.Context) {
	var req BulkDeleteQRCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	deleted, err := h.QRService.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		respondQRError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted, "requested": len(req.IDs)})
}
