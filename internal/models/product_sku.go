package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductSKU sellable variant (size/packaging) with its own reward
type ProductSKU struct {
	ID                string    `gorm:"type:varchar(36);primaryKey" json:"id"`                      // primary key
	ProductID         string    `gorm:"type:varchar(36);not null;index" json:"product_id"`          // owning product
	Weight            string    `gorm:"type:varchar(32);not null" json:"weight"`                    // size label, e.g. 500g
	Price             Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`         // shelf price
	RewardAmount      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"reward_amount"` // payout per verified feedback
	RewardDescription string    `gorm:"type:varchar(200)" json:"reward_description"`                // payout label
	CreatedAt         time.Time `gorm:"index" json:"created_at"`                                    // created at
	UpdatedAt         time.Time `gorm:"index" json:"updated_at"`                                    // updated at

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName table name
func (ProductSKU) TableName() string {
	return "product_skus"
}

// BeforeCreate assigns the opaque id
func (s *ProductSKU) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
