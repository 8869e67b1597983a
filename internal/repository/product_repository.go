package repository

import (
	"errors"
	"strings"

	"github.com/scanpesa/internal/models"

	"gorm.io/gorm"
)

// ProductRepository product and variant data access
type ProductRepository interface {
	Create(product *models.Product) error
	CreateSKU(sku *models.ProductSKU) error
	GetSKUByID(id string) (*models.ProductSKU, error)
	WithTx(tx *gorm.DB) *GormProductRepository
}

// GormProductRepository GORM implementation
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates the product repository
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx binds a transaction
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Create inserts a product
func (r *GormProductRepository) Create(product *models.Product) error {
	if product == nil {
		return errors.New("invalid product")
	}
	return r.db.Create(product).Error
}

// CreateSKU inserts a variant
func (r *GormProductRepository) CreateSKU(sku *models.ProductSKU) error {
	if sku == nil {
		return errors.New("invalid product sku")
	}
	return r.db.Create(sku).Error
}

// GetSKUByID returns the variant with its product, nil when missing
func (r *GormProductRepository) GetSKUByID(id string) (*models.ProductSKU, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var sku models.ProductSKU
	if err := r.db.Preload("Product").Where("id = ?", id).First(&sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sku, nil
}
