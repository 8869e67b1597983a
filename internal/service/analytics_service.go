package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/scanpesa/internal/constants"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/repository"

	"github.com/shopspring/decimal"
)

// AnalyticsService read-only dashboard figures over feedback and rewards
type AnalyticsService struct {
	feedbackRepo repository.FeedbackRepository
	rewardRepo   repository.RewardRepository
}

// AnalyticsSummary campaign dashboard figures
type AnalyticsSummary struct {
	CampaignID    string           `json:"campaign_id,omitempty"`
	TotalFeedback int64            `json:"total_feedback"`
	AverageRating float64          `json:"average_rating"`
	Sentiment     map[string]int64 `json:"sentiment"`
	Rewards       RewardAnalytics  `json:"rewards"`
}

// RewardAnalytics reward counts per status; PaidAmount covers sent and verified rewards
type RewardAnalytics struct {
	Total      int64                          `json:"total"`
	Pending    int64                          `json:"pending"`
	Sent       int64                          `json:"sent"`
	Failed     int64                          `json:"failed"`
	Verified   int64                          `json:"verified"`
	PaidAmount models.Money                   `json:"paid_amount"`
	ByStatus   []repository.RewardStatusTotal `json:"by_status"`
}

// NewAnalyticsService creates the analytics service
func NewAnalyticsService(feedbackRepo repository.FeedbackRepository, rewardRepo repository.RewardRepository) *AnalyticsService {
	return &AnalyticsService{feedbackRepo: feedbackRepo, rewardRepo: rewardRepo}
}

// Summary figures for one campaign, or every campaign when campaignID is empty
func (s *AnalyticsService) Summary(campaignID string) (*AnalyticsSummary, error) {
	campaignID = strings.TrimSpace(campaignID)
	feedback, err := s.feedbackRepo.Summary(campaignID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyticsFailed, err)
	}
	totals, err := s.rewardRepo.SummaryByStatus(campaignID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyticsFailed, err)
	}

	summary := &AnalyticsSummary{
		CampaignID:    campaignID,
		TotalFeedback: feedback.Total,
		AverageRating: math.Round(feedback.AverageRating*10) / 10,
		Sentiment: map[string]int64{
			models.SentimentPositive: 0,
			models.SentimentNeutral:  0,
			models.SentimentNegative: 0,
		},
		Rewards: RewardAnalytics{ByStatus: totals},
	}
	for _, item := range feedback.BySentiment {
		summary.Sentiment[item.Sentiment] += item.Count
	}

	paid := decimal.Zero
	for _, item := range totals {
		summary.Rewards.Total += item.Count
		switch item.Status {
		case constants.RewardStatusPending:
			summary.Rewards.Pending = item.Count
		case constants.RewardStatusSent:
			summary.Rewards.Sent = item.Count
			paid = paid.Add(item.Amount.Decimal)
		case constants.RewardStatusFailed:
			summary.Rewards.Failed = item.Count
		case constants.RewardStatusVerified:
			summary.Rewards.Verified = item.Count
			paid = paid.Add(item.Amount.Decimal)
		}
	}
	summary.Rewards.PaidAmount = models.NewMoneyFromDecimal(paid)
	return summary, nil
}
