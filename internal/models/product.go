package models

import (
	"time"

	"gorm.io/gorm"
)

// Product product a QR code is printed on
type Product struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`      // primary key
	Name        string       `gorm:"type:varchar(200);not null" json:"name"`     // product name
	Description string       `gorm:"type:text" json:"description"`               // description
	Category    string       `gorm:"type:varchar(100);index" json:"category"`    // category
	Active      bool         `gorm:"not null;default:true;index" json:"active"`  // active
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`                    // created at
	UpdatedAt   time.Time    `gorm:"index" json:"updated_at"`                    // updated at
	SKUs        []ProductSKU `gorm:"foreignKey:ProductID" json:"skus,omitempty"` // variants
}

// TableName table name
func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns the opaque id
func (p *Product) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
