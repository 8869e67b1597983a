package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentTransaction audit row for one dispatch attempt of a reward
type PaymentTransaction struct {
	ID                       string     `gorm:"type:varchar(36);primaryKey" json:"id"`                     // primary key
	RewardID                 string     `gorm:"type:varchar(36);not null;index" json:"reward_id"`          // dispatched reward
	PhoneNumber              string     `gorm:"type:varchar(20);not null" json:"phone_number"`             // payee
	Amount                   Money      `gorm:"type:decimal(20,2);not null" json:"amount"`                 // amount
	Status                   string     `gorm:"type:varchar(16);not null;index" json:"status"`             // pending/initiated/completed/failed
	TransactionID            string     `gorm:"type:varchar(100);index" json:"transaction_id"`             // gateway ConversationID
	OriginatorConversationID string     `gorm:"type:varchar(100);index" json:"originator_conversation_id"` // gateway originator id
	ReceiptNumber            string     `gorm:"type:varchar(40);index" json:"receipt_number"`              // M-Pesa receipt from the result
	StatusQueryID            string     `gorm:"type:varchar(100);index" json:"status_query_id"`            // ConversationID of the last status query
	StatusQueriedAt          *time.Time `json:"status_queried_at,omitempty"`                               // last status query
	ErrorMessage             string     `gorm:"type:text" json:"error_message"`                            // last failure reason
	Attempts                 int        `gorm:"not null;default:0" json:"attempts"`                        // gateway calls made
	LastAttemptAt            *time.Time `json:"last_attempt_at,omitempty"`                                 // last gateway call
	CreatedAt                time.Time  `gorm:"index" json:"created_at"`                                   // created at
	UpdatedAt                time.Time  `json:"updated_at"`                                                // updated at
}

// TableName table name
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

// BeforeCreate assigns the opaque id
func (p *PaymentTransaction) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
