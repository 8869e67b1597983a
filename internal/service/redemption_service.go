package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scanpesa/internal/cache"
	"github.com/scanpesa/internal/constants"
	"github.com/scanpesa/internal/logger"
	"github.com/scanpesa/internal/metrics"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/repository"

	"gorm.io/gorm"
)

// RedemptionService consumes a scanned code and records its feedback and reward in one transaction
type RedemptionService struct {
	validator    *FeedbackValidator
	tokenRepo    repository.RedemptionTokenRepository
	campaignRepo repository.CampaignRepository
	productRepo  repository.ProductRepository
	feedbackRepo repository.FeedbackRepository
	rewardRepo   repository.RewardRepository
	now          func() time.Time
}

// RedemptionResult records created by a successful redemption
type RedemptionResult struct {
	Feedback *models.Feedback `json:"feedback"`
	Reward   *models.Reward   `json:"reward"`
}

// NewRedemptionService creates the redemption service
func NewRedemptionService(
	validator *FeedbackValidator,
	tokenRepo repository.RedemptionTokenRepository,
	campaignRepo repository.CampaignRepository,
	productRepo repository.ProductRepository,
	feedbackRepo repository.FeedbackRepository,
	rewardRepo repository.RewardRepository,
) *RedemptionService {
	return &RedemptionService{
		validator:    validator,
		tokenRepo:    tokenRepo,
		campaignRepo: campaignRepo,
		productRepo:  productRepo,
		feedbackRepo: feedbackRepo,
		rewardRepo:   rewardRepo,
		now:          time.Now,
	}
}

// Submit validates a feedback submission and redeems its code.
// Either the token flips to used with exactly one feedback and one pending reward, or nothing changes.
func (s *RedemptionService) Submit(ctx context.Context, sub FeedbackSubmission) (*RedemptionResult, error) {
	if s == nil || s.validator == nil {
		return nil, ErrRedemptionFailed
	}
	input, err := s.validator.Validate(sub)
	if err != nil {
		s.observe(err)
		return nil, err
	}

	// read-only precheck; the transaction below repeats every check
	token, err := resolveToken(s.tokenRepo, input.Identifier)
	if err != nil {
		s.observe(ErrRedemptionFailed)
		return nil, ErrRedemptionFailed
	}
	if token == nil {
		s.observe(ErrTokenNotFound)
		return nil, ErrTokenNotFound
	}
	if err := s.validator.CheckNotDuplicate(token, s.feedbackRepo, input.CampaignID, input.Phone); err != nil {
		s.observe(err)
		return nil, err
	}

	var result *RedemptionResult
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.redeemInTx(tx, input)
		return txErr
	})
	if err != nil {
		err = s.translate(err)
		s.observe(err)
		if errors.Is(err, ErrRedemptionFailed) {
			logger.Errorw("redemption_failed",
				"campaign_id", input.CampaignID,
				"sku_id", input.SKUID,
				"phone", logger.MaskPhone(input.Phone),
				"error", err,
			)
		}
		return nil, err
	}

	s.observe(nil)
	if err := cache.InvalidateQRStats(ctx, input.CampaignID); err != nil {
		logger.Warnw("qr_stats_cache_invalidate_failed", "campaign_id", input.CampaignID, "error", err)
	}
	logger.Infow("redemption_token_claimed",
		"campaign_id", input.CampaignID,
		"sku_id", input.SKUID,
		"qr_id", result.Feedback.TokenID,
		"feedback_id", result.Feedback.ID,
		"reward_id", result.Reward.ID,
		"phone", logger.MaskPhone(input.Phone),
	)
	return result, nil
}

func (s *RedemptionService) redeemInTx(tx *gorm.DB, input *ValidatedFeedback) (*RedemptionResult, error) {
	tokenRepo := s.tokenRepo.WithTx(tx)
	campaignRepo := s.campaignRepo.WithTx(tx)
	productRepo := s.productRepo.WithTx(tx)
	feedbackRepo := s.feedbackRepo.WithTx(tx)
	rewardRepo := s.rewardRepo.WithTx(tx)

	token, err := resolveToken(tokenRepo, input.Identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve token: %v", ErrRedemptionFailed, err)
	}
	if token == nil {
		return nil, ErrTokenNotFound
	}
	if token.CampaignID != input.CampaignID || token.SKUID != input.SKUID {
		return nil, ErrTokenMismatch
	}
	if token.IsUsed {
		return nil, ErrTokenAlreadyUsed
	}

	now := s.now()
	campaign, err := campaignRepo.GetByID(input.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("%w: load campaign: %v", ErrRedemptionFailed, err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if !campaignOpen(campaign, now) {
		return nil, ErrCampaignInactive
	}
	if err := s.validator.CheckLocation(input.Location); err != nil {
		return nil, err
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrRatingInvalid
	}
	if err := s.validator.CheckNotDuplicate(nil, feedbackRepo, input.CampaignID, input.Phone); err != nil {
		return nil, err
	}
	sku, err := productRepo.GetSKUByID(input.SKUID)
	if err != nil {
		return nil, fmt.Errorf("%w: load sku: %v", ErrRedemptionFailed, err)
	}
	if sku == nil {
		return nil, ErrSKUNotFound
	}

	location := input.Location
	claimed, err := tokenRepo.Claim(token.ID, input.Phone, &location, now)
	if err != nil {
		return nil, fmt.Errorf("%w: claim token: %v", ErrRedemptionFailed, err)
	}
	if !claimed {
		return nil, ErrTokenAlreadyUsed
	}

	feedback := &models.Feedback{
		CampaignID:    input.CampaignID,
		SKUID:         input.SKUID,
		TokenID:       token.ID,
		CustomerPhone: input.Phone,
		CustomerName:  input.CustomerName,
		Rating:        input.Rating,
		Comment:       input.Comment,
		Sentiment:     models.SentimentForRating(input.Rating),
		CustomAnswers: input.CustomAnswers,
		Location:      input.Location,
		Verified:      true,
		CreatedAt:     now,
	}
	if err := feedbackRepo.Create(feedback); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("%w: create feedback: %v", ErrRedemptionFailed, err)
	}

	reward := &models.Reward{
		FeedbackID:    feedback.ID,
		CustomerPhone: input.Phone,
		Amount:        sku.RewardAmount,
		RewardName:    rewardName(sku),
		Status:        constants.RewardStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := rewardRepo.Create(reward); err != nil {
		return nil, fmt.Errorf("%w: create reward: %v", ErrRedemptionFailed, err)
	}
	feedback.Reward = reward
	return &RedemptionResult{Feedback: feedback, Reward: reward}, nil
}

func (s *RedemptionService) translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSubmission
	}
	if errors.Is(err, ErrRedemptionFailed) || isRedemptionSentinel(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrRedemptionFailed, err)
}

func isRedemptionSentinel(err error) bool {
	for _, target := range []error{
		ErrTokenNotFound,
		ErrTokenMismatch,
		ErrTokenAlreadyUsed,
		ErrCampaignNotFound,
		ErrCampaignInactive,
		ErrSKUNotFound,
		ErrDuplicateSubmission,
		ErrLocationInvalid,
		ErrRatingInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *RedemptionService) observe(err error) {
	metrics.RedemptionsTotal.WithLabelValues(redemptionOutcome(err)).Inc()
}

func redemptionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTokenAlreadyUsed), errors.Is(err, ErrDuplicateSubmission):
		return "conflict"
	case errors.Is(err, ErrTokenNotFound), errors.Is(err, ErrCampaignNotFound), errors.Is(err, ErrSKUNotFound):
		return "not_found"
	case errors.Is(err, ErrRedemptionFailed):
		return "error"
	default:
		return "invalid"
	}
}

func campaignOpen(campaign *models.Campaign, now time.Time) bool {
	if campaign == nil || !campaign.Active {
		return false
	}
	if !campaign.StartDate.IsZero() && now.Before(campaign.StartDate) {
		return false
	}
	if !campaign.EndDate.IsZero() && now.After(campaign.EndDate) {
		return false
	}
	return true
}

func rewardName(sku *models.ProductSKU) string {
	if sku.RewardDescription != "" {
		return sku.RewardDescription
	}
	return fmt.Sprintf("%s %s reward", constants.CurrencyDefault, sku.RewardAmount.String())
}
