package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/scanpesa/internal/models"

	"gorm.io/gorm"
)

const tokenInsertBatchSize = 100

// RedemptionTokenRepository QR token data access
type RedemptionTokenRepository interface {
	CreateBatch(tokens []models.RedemptionToken) error
	GetByID(id string) (*models.RedemptionToken, error)
	GetByHash(hash string) (*models.RedemptionToken, error)
	Claim(id string, phone string, location *models.Location, usedAt time.Time) (bool, error)
	List(filter RedemptionTokenListFilter) ([]models.RedemptionToken, int64, error)
	ListAll(filter RedemptionTokenListFilter) ([]models.RedemptionToken, error)
	Stats(campaignID string) (*RedemptionTokenStats, error)
	DeleteUnusedByIDs(ids []string) (int64, error)
	MaxBatchNumber(campaignID, skuID string) (int, error)
	WithTx(tx *gorm.DB) *GormRedemptionTokenRepository
}

// GormRedemptionTokenRepository GORM implementation
type GormRedemptionTokenRepository struct {
	db *gorm.DB
}

// NewRedemptionTokenRepository creates the token repository
func NewRedemptionTokenRepository(db *gorm.DB) *GormRedemptionTokenRepository {
	return &GormRedemptionTokenRepository{db: db}
}

// WithTx binds a transaction
func (r *GormRedemptionTokenRepository) WithTx(tx *gorm.DB) *GormRedemptionTokenRepository {
	if tx == nil {
		return r
	}
	return &GormRedemptionTokenRepository{db: tx}
}

// CreateBatch inserts tokens in chunks of 100
func (r *GormRedemptionTokenRepository) CreateBatch(tokens []models.RedemptionToken) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&tokens, tokenInsertBatchSize).Error
}

// GetByID returns nil when missing
func (r *GormRedemptionTokenRepository) GetByID(id string) (*models.RedemptionToken, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	return r.first(r.db.Where("id = ?", id))
}

// GetByHash looks a token up by its sha256 hash
func (r *GormRedemptionTokenRepository) GetByHash(hash string) (*models.RedemptionToken, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, nil
	}
	return r.first(r.db.Where("token_hash = ?", hash))
}

func (r *GormRedemptionTokenRepository) first(query *gorm.DB) (*models.RedemptionToken, error) {
	var token models.RedemptionToken
	if err := query.First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

// Claim flips is_used only if still unused; false means another claim won.
// An empty phone or nil location leaves the column NULL.
func (r *GormRedemptionTokenRepository) Claim(id string, phone string, location *models.Location, usedAt time.Time) (bool, error) {
	if usedAt.IsZero() {
		usedAt = time.Now()
	}
	updates := map[string]interface{}{
		"is_used":    true,
		"used_at":    usedAt,
		"updated_at": usedAt,
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		updates["used_by"] = phone
	}
	if location != nil {
		updates["location"] = *location
	}
	result := r.db.Model(&models.RedemptionToken{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormRedemptionTokenRepository) filtered(filter RedemptionTokenListFilter) *gorm.DB {
	query := r.db.Model(&models.RedemptionToken{})
	if campaignID := strings.TrimSpace(filter.CampaignID); campaignID != "" {
		query = query.Where("campaign_id = ?", campaignID)
	}
	if skuID := strings.TrimSpace(filter.SKUID); skuID != "" {
		query = query.Where("sku_id = ?", skuID)
	}
	if filter.IsUsed != nil {
		query = query.Where("is_used = ?", *filter.IsUsed)
	}
	if filter.BatchNumber != nil {
		query = query.Where("batch_number = ?", *filter.BatchNumber)
	}
	return query
}

// List paginated listing, newest first
func (r *GormRedemptionTokenRepository) List(filter RedemptionTokenListFilter) ([]models.RedemptionToken, int64, error) {
	return listPage[models.RedemptionToken](r.filtered(filter), Page{Number: filter.Page, Size: filter.PageSize}, "created_at DESC, id DESC")
}

// ListAll unpaginated listing for exports
func (r *GormRedemptionTokenRepository) ListAll(filter RedemptionTokenListFilter) ([]models.RedemptionToken, error) {
	tokens := make([]models.RedemptionToken, 0)
	if err := r.filtered(filter).Order("created_at ASC, id ASC").Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// Stats counts codes overall, by region of redemption and by variant
func (r *GormRedemptionTokenRepository) Stats(campaignID string) (*RedemptionTokenStats, error) {
	scope := func() *gorm.DB {
		query := r.db.Model(&models.RedemptionToken{})
		if campaignID = strings.TrimSpace(campaignID); campaignID != "" {
			query = query.Where("campaign_id = ?", campaignID)
		}
		return query
	}

	stats := &RedemptionTokenStats{ByRegion: []RegionCount{}, BySKU: []SKUCount{}}
	if err := scope().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := scope().Where("is_used = ?", true).Count(&stats.Used).Error; err != nil {
		return nil, err
	}
	stats.Unused = stats.Total - stats.Used

	regionExpr := "COALESCE(" + jsonTextExpr(r.db, "location", "region") + ", '')"
	if err := scope().
		Select(regionExpr+" AS region, COUNT(*) AS count").
		Where("is_used = ?", true).
		Group(regionExpr).
		Order("count DESC").
		Scan(&stats.ByRegion).Error; err != nil {
		return nil, err
	}
	if err := scope().
		Select("sku_id, COUNT(*) AS total, SUM(CASE WHEN is_used THEN 1 ELSE 0 END) AS used").
		Group("sku_id").
		Order("sku_id ASC").
		Scan(&stats.BySKU).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// DeleteUnusedByIDs deletes the listed codes, silently keeping redeemed ones
func (r *GormRedemptionTokenRepository) DeleteUnusedByIDs(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ? AND is_used = ?", ids, false).Delete(&models.RedemptionToken{})
	return result.RowsAffected, result.Error
}

// MaxBatchNumber highest batch number issued for a variant, 0 when none
func (r *GormRedemptionTokenRepository) MaxBatchNumber(campaignID, skuID string) (int, error) {
	var max *int
	err := r.db.Model(&models.RedemptionToken{}).
		Where("campaign_id = ? AND sku_id = ?", campaignID, skuID).
		Select("MAX(batch_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
