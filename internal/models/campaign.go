package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign feedback campaign that QR batches are issued under
type Campaign struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`                  // primary key
	Name            string    `gorm:"type:varchar(200);not null" json:"name"`                 // campaign name
	Description     string    `gorm:"type:text" json:"description"`                           // description
	StartDate       time.Time `gorm:"index" json:"start_date"`                                // start date
	EndDate         time.Time `gorm:"index" json:"end_date"`                                  // end date
	TargetResponses int       `gorm:"not null;default:0" json:"target_responses"`             // response goal
	Active          bool      `gorm:"not null;default:true;index" json:"active"`              // accepting feedback
	Meta            JSON      `gorm:"type:json" json:"meta"`                                  // free-form settings
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                                // created at
	UpdatedAt       time.Time `gorm:"index" json:"updated_at"`                                // updated at
	Products        []Product `gorm:"many2many:campaign_products;" json:"products,omitempty"` // linked products
}

// TableName table name
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate assigns the opaque id
func (c *Campaign) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// CampaignProduct join row between a campaign and a product
type CampaignProduct struct {
	CampaignID string `gorm:"type:varchar(36);primaryKey" json:"campaign_id"` // campaign id
	ProductID  string `gorm:"type:varchar(36);primaryKey" json:"product_id"`  // product id
}

// TableName table name
func (CampaignProduct) TableName() string {
	return "campaign_products"
}
