package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/scanpesa/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RewardRepository reward data access
type RewardRepository interface {
	Create(reward *models.Reward) error
	GetByID(id string) (*models.Reward, error)
	GetByIDForUpdate(id string) (*models.Reward, error)
	UpdateStatus(id string, status string, sentAt *time.Time) error
	List(filter RewardListFilter) ([]models.Reward, int64, error)
	SummaryByStatus(campaignID string) ([]RewardStatusTotal, error)
	WithTx(tx *gorm.DB) *GormRewardRepository
}

// GormRewardRepository GORM implementation
type GormRewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository creates the reward repository
func NewRewardRepository(db *gorm.DB) *GormRewardRepository {
	return &GormRewardRepository{db: db}
}

// WithTx binds a transaction
func (r *GormRewardRepository) WithTx(tx *gorm.DB) *GormRewardRepository {
	if tx == nil {
		return r
	}
	return &GormRewardRepository{db: tx}
}

// Create inserts a reward
func (r *GormRewardRepository) Create(reward *models.Reward) error {
	if reward == nil {
		return errors.New("invalid reward")
	}
	return r.db.Create(reward).Error
}

// GetByID returns nil when missing
func (r *GormRewardRepository) GetByID(id string) (*models.Reward, error) {
	return r.get(r.db, id)
}

// GetByIDForUpdate row-locks the reward on databases that support it
func (r *GormRewardRepository) GetByIDForUpdate(id string) (*models.Reward, error) {
	return r.get(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormRewardRepository) get(query *gorm.DB, id string) (*models.Reward, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var reward models.Reward
	if err := query.Where("id = ?", id).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reward, nil
}

// UpdateStatus sets status and, when given, sent_at
func (r *GormRewardRepository) UpdateStatus(id string, status string, sentAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if sentAt != nil {
		updates["sent_at"] = *sentAt
	}
	return r.db.Model(&models.Reward{}).Where("id = ?", id).Updates(updates).Error
}

// List paginated listing, newest first
func (r *GormRewardRepository) List(filter RewardListFilter) ([]models.Reward, int64, error) {
	query := r.db.Model(&models.Reward{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if phone := strings.TrimSpace(filter.Phone); phone != "" {
		query = query.Where("customer_phone = ?", phone)
	}
	return listPage[models.Reward](query, Page{Number: filter.Page, Size: filter.PageSize}, "created_at DESC, id DESC")
}

// SummaryByStatus reward count and amount per status, scoped to a campaign through its feedback
func (r *GormRewardRepository) SummaryByStatus(campaignID string) ([]RewardStatusTotal, error) {
	query := r.db.Model(&models.Reward{})
	if id := strings.TrimSpace(campaignID); id != "" {
		query = query.Joins("JOIN feedback ON feedback.id = rewards.feedback_id").
			Where("feedback.campaign_id = ?", id)
	}
	totals := make([]RewardStatusTotal, 0)
	if err := query.
		Select("rewards.status AS status, COUNT(*) AS count, COALESCE(SUM(rewards.amount), 0) AS amount").
		Group("rewards.status").
		Order("rewards.status ASC").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	return totals, nil
}
