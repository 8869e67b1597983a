package models

import (
	"time"

	"gorm.io/gorm"
)

// PreviewBatchNumber batch tag reserved for admin preview codes
const PreviewBatchNumber = 0

// RedemptionToken one row per printed QR code; only the token hash is stored
type RedemptionToken struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`                       // primary key
	SKUID       string     `gorm:"column:sku_id;type:varchar(36);not null;index" json:"sku_id"` // bound variant
	CampaignID  string     `gorm:"type:varchar(36);not null;index" json:"campaign_id"`          // issuing campaign
	TokenHash   string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`              // sha256 of the raw token
	URL         string     `gorm:"type:text;not null" json:"url"`                               // scan target encoded in the image
	BatchNumber int        `gorm:"not null;default:0;index" json:"batch_number"`                // generation batch
	IsUsed      bool       `gorm:"not null;default:false;index" json:"is_used"`                 // flips once
	UsedAt      *time.Time `gorm:"index" json:"used_at,omitempty"`                              // redemption time
	UsedBy      *string    `gorm:"type:varchar(20)" json:"used_by,omitempty"`                   // redeeming phone
	Location    *Location  `gorm:"type:json" json:"location,omitempty"`                         // redemption location
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                                     // created at
	UpdatedAt   time.Time  `json:"updated_at"`                                                  // updated at
}

// TableName table name
func (RedemptionToken) TableName() string {
	return "redemption_tokens"
}

// BeforeCreate assigns the opaque id
func (t *RedemptionToken) BeforeCreate(_ *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
