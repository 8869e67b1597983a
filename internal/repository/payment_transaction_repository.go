package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/scanpesa/internal/constants"
	"github.com/scanpesa/internal/models"

	"gorm.io/gorm"
)

// PaymentTransactionRepository payout audit data access
type PaymentTransactionRepository interface {
	Create(txn *models.PaymentTransaction) error
	GetByID(id string) (*models.PaymentTransaction, error)
	GetByExternalID(externalID string) (*models.PaymentTransaction, error)
	ListByReward(rewardID string) ([]models.PaymentTransaction, error)
	MarkInitiated(id, transactionID, originatorID string, at time.Time) (bool, error)
	MarkAttemptFailed(id, errorMessage string, at time.Time) (bool, error)
	MarkStatusQueried(id, queryID string, at time.Time) (bool, error)
	GetByStatusQueryID(queryID string) (*models.PaymentTransaction, error)
	GetByReceipt(receipt string) (*models.PaymentTransaction, error)
	Finalize(id string, outcome PaymentOutcome, at time.Time) (bool, error)
	WithTx(tx *gorm.DB) *GormPaymentTransactionRepository
}

// GormPaymentTransactionRepository GORM implementation
type GormPaymentTransactionRepository struct {
	db *gorm.DB
}

// NewPaymentTransactionRepository creates the payment transaction repository
func NewPaymentTransactionRepository(db *gorm.DB) *GormPaymentTransactionRepository {
	return &GormPaymentTransactionRepository{db: db}
}

// WithTx binds a transaction
func (r *GormPaymentTransactionRepository) WithTx(tx *gorm.DB) *GormPaymentTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentTransactionRepository{db: tx}
}

// Create inserts a transaction row
func (r *GormPaymentTransactionRepository) Create(txn *models.PaymentTransaction) error {
	if txn == nil {
		return errors.New("invalid payment transaction")
	}
	return r.db.Create(txn).Error
}

// GetByID returns nil when missing
func (r *GormPaymentTransactionRepository) GetByID(id string) (*models.PaymentTransaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	return r.first(r.db.Where("id = ?", id))
}

// GetByExternalID matches the gateway ConversationID or OriginatorConversationID
func (r *GormPaymentTransactionRepository) GetByExternalID(externalID string) (*models.PaymentTransaction, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, nil
	}
	return r.first(r.db.
		Where("transaction_id = ? OR originator_conversation_id = ?", externalID, externalID).
		Order("created_at DESC"))
}

func (r *GormPaymentTransactionRepository) first(query *gorm.DB) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := query.First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListByReward dispatch attempts of a reward, oldest first
func (r *GormPaymentTransactionRepository) ListByReward(rewardID string) ([]models.PaymentTransaction, error) {
	txns := make([]models.PaymentTransaction, 0)
	if err := r.db.Where("reward_id = ?", rewardID).Order("created_at ASC, id ASC").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// MarkInitiated records gateway acceptance while the row is still pending
func (r *GormPaymentTransactionRepository) MarkInitiated(id, transactionID, originatorID string, at time.Time) (bool, error) {
	result := r.db.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", id, constants.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":                     constants.PaymentStatusInitiated,
			"transaction_id":             transactionID,
			"originator_conversation_id": originatorID,
			"attempts":                   gorm.Expr("attempts + 1"),
			"last_attempt_at":            at,
			"updated_at":                 at,
		})
	return result.RowsAffected == 1, result.Error
}

// MarkAttemptFailed records a rejected gateway call while the row is still pending
func (r *GormPaymentTransactionRepository) MarkAttemptFailed(id, errorMessage string, at time.Time) (bool, error) {
	result := r.db.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", id, constants.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":          constants.PaymentStatusFailed,
			"error_message":   errorMessage,
			"attempts":        gorm.Expr("attempts + 1"),
			"last_attempt_at": at,
			"updated_at":      at,
		})
	return result.RowsAffected == 1, result.Error
}

// MarkStatusQueried records a status query sent for a payment still waiting on the gateway
func (r *GormPaymentTransactionRepository) MarkStatusQueried(id, queryID string, at time.Time) (bool, error) {
	result := r.db.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", id, constants.PaymentStatusInitiated).
		Updates(map[string]interface{}{
			"status_query_id":   queryID,
			"status_queried_at": at,
			"updated_at":        at,
		})
	return result.RowsAffected == 1, result.Error
}

// GetByStatusQueryID matches the ConversationID a status query was acknowledged with
func (r *GormPaymentTransactionRepository) GetByStatusQueryID(queryID string) (*models.PaymentTransaction, error) {
	queryID = strings.TrimSpace(queryID)
	if queryID == "" {
		return nil, nil
	}
	return r.first(r.db.Where("status_query_id = ?", queryID))
}

// GetByReceipt matches the M-Pesa receipt number
func (r *GormPaymentTransactionRepository) GetByReceipt(receipt string) (*models.PaymentTransaction, error) {
	receipt = strings.TrimSpace(receipt)
	if receipt == "" {
		return nil, nil
	}
	return r.first(r.db.Where("receipt_number = ?", receipt))
}

// Finalize writes a terminal status unless one was already written
func (r *GormPaymentTransactionRepository) Finalize(id string, outcome PaymentOutcome, at time.Time) (bool, error) {
	if outcome.Status != constants.PaymentStatusCompleted && outcome.Status != constants.PaymentStatusFailed {
		return false, errors.New("invalid terminal payment status")
	}
	updates := map[string]interface{}{
		"status":     outcome.Status,
		"updated_at": at,
	}
	if outcome.ErrorMessage != "" {
		updates["error_message"] = outcome.ErrorMessage
	}
	if receipt := strings.TrimSpace(outcome.ReceiptNumber); receipt != "" {
		updates["receipt_number"] = receipt
	}
	result := r.db.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status IN ?", id, []string{constants.PaymentStatusPending, constants.PaymentStatusInitiated}).
		Updates(updates)
	return result.RowsAffected == 1, result.Error
}
