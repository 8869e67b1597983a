package repository

import (
	"errors"
	"strings"

	"github.com/scanpesa/internal/models"

	"gorm.io/gorm"
)

// FeedbackRepository feedback data access
type FeedbackRepository interface {
	Create(feedback *models.Feedback) error
	GetByID(id string) (*models.Feedback, error)
	ExistsForPhone(campaignID, phone string) (bool, error)
	List(filter FeedbackListFilter) ([]models.Feedback, int64, error)
	Summary(campaignID string) (*FeedbackSummary, error)
	WithTx(tx *gorm.DB) *GormFeedbackRepository
}

// GormFeedbackRepository GORM implementation
type GormFeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates the feedback repository
func NewFeedbackRepository(db *gorm.DB) *GormFeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

// WithTx binds a transaction
func (r *GormFeedbackRepository) WithTx(tx *gorm.DB) *GormFeedbackRepository {
	if tx == nil {
		return r
	}
	return &GormFeedbackRepository{db: tx}
}

// Create inserts a feedback row
func (r *GormFeedbackRepository) Create(feedback *models.Feedback) error {
	if feedback == nil {
		return errors.New("invalid feedback")
	}
	return r.db.Omit("Reward").Create(feedback).Error
}

// GetByID returns the feedback with its reward, nil when missing
func (r *GormFeedbackRepository) GetByID(id string) (*models.Feedback, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var feedback models.Feedback
	if err := r.db.Preload("Reward").Where("id = ?", id).First(&feedback).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &feedback, nil
}

// ExistsForPhone reports whether the phone already submitted for the campaign
func (r *GormFeedbackRepository) ExistsForPhone(campaignID, phone string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Feedback{}).
		Where("campaign_id = ? AND customer_phone = ?", campaignID, phone).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List paginated listing, newest first, rewards preloaded
func (r *GormFeedbackRepository) List(filter FeedbackListFilter) ([]models.Feedback, int64, error) {
	query := r.db.Model(&models.Feedback{})
	if campaignID := strings.TrimSpace(filter.CampaignID); campaignID != "" {
		query = query.Where("campaign_id = ?", campaignID)
	}
	if skuID := strings.TrimSpace(filter.SKUID); skuID != "" {
		query = query.Where("sku_id = ?", skuID)
	}
	if sentiment := strings.TrimSpace(filter.Sentiment); sentiment != "" {
		query = query.Where("sentiment = ?", sentiment)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, count := buildLikeCondition(r.db, []string{"customer_phone", "customer_name", "comment"})
		query = query.Where("("+condition+")", repeatLikeArgs("%"+search+"%", count)...)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return listPage[models.Feedback](query, Page{Number: filter.Page, Size: filter.PageSize}, "created_at DESC, id DESC", "Reward")
}

// Summary totals for one campaign, or all campaigns when campaignID is empty
func (r *GormFeedbackRepository) Summary(campaignID string) (*FeedbackSummary, error) {
	scope := func() *gorm.DB {
		query := r.db.Model(&models.Feedback{})
		if id := strings.TrimSpace(campaignID); id != "" {
			query = query.Where("campaign_id = ?", id)
		}
		return query
	}
	summary := &FeedbackSummary{BySentiment: []SentimentCount{}}
	if err := scope().
		Select("COUNT(*) AS total, COALESCE(AVG(rating), 0) AS average_rating").
		Scan(summary).Error; err != nil {
		return nil, err
	}
	if err := scope().
		Select("sentiment, COUNT(*) AS count").
		Group("sentiment").
		Order("sentiment ASC").
		Scan(&summary.BySentiment).Error; err != nil {
		return nil, err
	}
	return summary, nil
}
