package public

import (
	"github.com/scanpesa/internal/http/response"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/service"

	"github.com/gin-gonic/gin"
)

// LocationRequest scan location reported by the browser
type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Region    string  `json:"region"`
}

func (r *LocationRequest) toModel() *models.Location {
	if r == nil {
		return nil
	}
	return &models.Location{Latitude: r.Latitude, Longitude: r.Longitude, Region: r.Region}
}

// SubmitFeedbackRequest feedback form posted after scanning a code
type SubmitFeedbackRequest struct {
	CampaignID    string                 `json:"campaign_id"`
	SKUID         string                 `json:"sku_id"`
	CustomerPhone string                 `json:"customer_phone"`
	Token         string                 `json:"token"`
	QRID          string                 `json:"qr_id"`
	Location      *LocationRequest       `json:"location"`
	Rating        *float64               `json:"rating"`
	CustomerName  *string                `json:"customer_name"`
	Comment       *string                `json:"comment"`
	CustomAnswers map[string]interface{} `json:"custom_answers"`
}

// RewardSummary payout promised to the customer
type RewardSummary struct {
	ID     string       `json:"id"`
	Amount models.Money `json:"amount"`
	Name   string       `json:"name"`
	Status string       `json:"status"`
}

// SubmitFeedbackResponse created feedback with its pending reward
type SubmitFeedbackResponse struct {
	Feedback *models.Feedback `json:"feedback"`
	Reward   *RewardSummary   `json:"reward"`
}

// SubmitFeedback redeems a scanned code and records the customer's feedback
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	result, err := h.RedemptionService.Submit(c.Request.Context(), service.FeedbackSubmission{
		CampaignID:    req.CampaignID,
		SKUID:         req.SKUID,
		CustomerPhone: req.CustomerPhone,
		Token:         req.Token,
		QRID:          req.QRID,
		Location:      req.Location.toModel(),
		Rating:        req.Rating,
		CustomerName:  req.CustomerName,
		Comment:       req.Comment,
		CustomAnswers: req.CustomAnswers,
	})
	if err != nil {
		respondFeedbackSubmitError(c, err)
		return
	}

	resp := SubmitFeedbackResponse{Feedback: result.Feedback}
	if result.Reward != nil {
		resp.Reward = &RewardSummary{
			ID:     result.Reward.ID,
			Amount: result.Reward.Amount,
			Name:   result.Reward.RewardName,
			Status: result.Reward.Status,
		}
	}
	response.Success(c, resp)
}
