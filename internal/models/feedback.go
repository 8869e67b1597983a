package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Feedback verified customer submission, created once per redemption
type Feedback struct {
	ID            string        `gorm:"type:varchar(36);primaryKey" json:"id"`                                                   // primary key
	CampaignID    string        `gorm:"type:varchar(36);not null;uniqueIndex:idx_feedback_campaign_phone" json:"campaign_id"`    // campaign
	SKUID         string        `gorm:"column:sku_id;type:varchar(36);not null;index" json:"sku_id"`                             // variant
	TokenID       string        `gorm:"type:varchar(36);not null;uniqueIndex" json:"token_id"`                                   // consumed redemption token
	CustomerPhone string        `gorm:"type:varchar(20);not null;uniqueIndex:idx_feedback_campaign_phone" json:"customer_phone"` // normalised phone
	CustomerName  *string       `gorm:"type:varchar(100)" json:"customer_name,omitempty"`                                        // optional name
	Rating        int           `gorm:"not null" json:"rating"`                                                                  // 1..5
	Comment       *string       `gorm:"type:text" json:"comment,omitempty"`                                                      // optional comment
	Sentiment     string        `gorm:"type:varchar(16);not null;index" json:"sentiment"`                                        // derived from rating
	CustomAnswers CustomAnswers `gorm:"type:json" json:"custom_answers"`                                                         // extra question answers
	Location      Location      `gorm:"type:json" json:"location"`                                                               // scan location
	Verified      bool          `gorm:"not null;default:false" json:"verified"`                                                  // created through redemption
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`                                                                 // created at

	Reward *Reward `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE" json:"reward,omitempty"`
}

// TableName table name
func (Feedback) TableName() string {
	return "feedback"
}

// BeforeCreate assigns the opaque id
func (f *Feedback) BeforeCreate(_ *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

// SentimentForRating rating>=4 positive, 3 neutral, otherwise negative
func SentimentForRating(rating int) string {
	switch {
	case rating >= 4:
		return SentimentPositive
	case rating == 3:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}
