package repository

import (
	"errors"
	"strings"

	"github.com/scanpesa/internal/models"

	"gorm.io/gorm"
)

// CampaignRepository campaign data access
type CampaignRepository interface {
	GetByID(id string) (*models.Campaign, error)
	Create(campaign *models.Campaign) error
	LinkProduct(campaignID, productID string) error
	ListProductsWithSKUs(campaignID string) ([]models.Product, error)
	WithTx(tx *gorm.DB) *GormCampaignRepository
}

// GormCampaignRepository GORM implementation
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository creates the campaign repository
func NewCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// WithTx binds a transaction
func (r *GormCampaignRepository) WithTx(tx *gorm.DB) *GormCampaignRepository {
	if tx == nil {
		return r
	}
	return &GormCampaignRepository{db: tx}
}

// GetByID returns nil when the campaign does not exist
func (r *GormCampaignRepository) GetByID(id string) (*models.Campaign, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var campaign models.Campaign
	if err := r.db.Where("id = ?", id).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// Create inserts a campaign
func (r *GormCampaignRepository) Create(campaign *models.Campaign) error {
	if campaign == nil {
		return errors.New("invalid campaign")
	}
	return r.db.Create(campaign).Error
}

// LinkProduct attaches a product to a campaign, ignoring existing links
func (r *GormCampaignRepository) LinkProduct(campaignID, productID string) error {
	link := models.CampaignProduct{CampaignID: campaignID, ProductID: productID}
	return r.db.Where(&link).FirstOrCreate(&link).Error
}

// ListProductsWithSKUs products linked to the campaign, with their variants in creation order
func (r *GormCampaignRepository) ListProductsWithSKUs(campaignID string) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := r.db.Model(&models.Product{}).
		Joins("JOIN campaign_products ON campaign_products.product_id = products.id").
		Where("campaign_products.campaign_id = ?", campaignID).
		Preload("SKUs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Order("products.created_at ASC, products.id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
