package models

import (
	"time"

	"gorm.io/gorm"
)

// Reward payout owed for a verified feedback
type Reward struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`                    // primary key
	FeedbackID    string     `gorm:"type:varchar(36);not null;uniqueIndex" json:"feedback_id"` // owning feedback
	CustomerPhone string     `gorm:"type:varchar(20);not null;index" json:"customer_phone"`    // payee
	Amount        Money      `gorm:"type:decimal(20,2);not null" json:"amount"`                // payout amount
	RewardName    string     `gorm:"type:varchar(200)" json:"reward_name"`                     // payout label
	Status        string     `gorm:"type:varchar(16);not null;index" json:"status"`            // pending/sent/failed/verified
	SentAt        *time.Time `gorm:"index" json:"sent_at,omitempty"`                           // gateway accepted at
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`                                  // created at
	UpdatedAt     time.Time  `json:"updated_at"`                                               // updated at
}

// TableName table name
func (Reward) TableName() string {
	return "rewards"
}

// BeforeCreate assigns the opaque id
func (r *Reward) BeforeCreate(_ *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
