package repository

import (
	"time"

	"github.com/scanpesa/internal/models"
)

// RedemptionTokenListFilter filter for QR code listings and exports
type RedemptionTokenListFilter struct {
	Page        int
	PageSize    int
	CampaignID  string
	SKUID       string
	IsUsed      *bool
	BatchNumber *int
}

// FeedbackListFilter filter for feedback listings
type FeedbackListFilter struct {
	Page        int
	PageSize    int
	CampaignID  string
	SKUID       string
	Sentiment   string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// RewardListFilter filter for reward listings
type RewardListFilter struct {
	Page     int
	PageSize int
	Status   string
	Phone    string
}

// RegionCount used codes per region
type RegionCount struct {
	Region string `json:"region"`
	Count  int64  `json:"count"`
}

// SKUCount issued and used codes per variant
type SKUCount struct {
	SKUID string `gorm:"column:sku_id" json:"sku_id"`
	Total int64  `json:"total"`
	Used  int64  `json:"used"`
}

// RedemptionTokenStats aggregate usage counters
type RedemptionTokenStats struct {
	Total    int64         `json:"total"`
	Used     int64         `json:"used"`
	Unused   int64         `json:"unused"`
	ByRegion []RegionCount `json:"by_region"`
	BySKU    []SKUCount    `json:"by_sku"`
}

// PaymentOutcome terminal verdict for a payment transaction
type PaymentOutcome struct {
	Status        string
	ErrorMessage  string
	ReceiptNumber string
}

// SentimentCount feedback per sentiment
type SentimentCount struct {
	Sentiment string `gorm:"column:sentiment" json:"sentiment"`
	Count     int64  `gorm:"column:count" json:"count"`
}

// FeedbackSummary feedback volume and rating
type FeedbackSummary struct {
	Total         int64            `gorm:"column:total" json:"total"`
	AverageRating float64          `gorm:"column:average_rating" json:"average_rating"`
	BySentiment   []SentimentCount `gorm:"-" json:"by_sentiment"`
}

// RewardStatusTotal rewards and their amount per status
type RewardStatusTotal struct {
	Status string       `gorm:"column:status" json:"status"`
	Count  int64        `gorm:"column:count" json:"count"`
	Amount models.Money `gorm:"column:amount" json:"amount"`
}
