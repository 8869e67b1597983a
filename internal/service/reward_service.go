package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/scanpesa/internal/constants"
	"github.com/scanpesa/internal/logger"
	"github.com/scanpesa/internal/metrics"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/payment/mpesa"
	"github.com/scanpesa/internal/queue"
	"github.com/scanpesa/internal/repository"

	"gorm.io/gorm"
)

// Per-reward dispatch outcomes
const (
	DispatchStatusSuccess = "success"
	DispatchStatusFailed  = "failed"
	DispatchStatusSkipped = "skipped"
)

const (
	paymentTimeoutMessage     = "payment timed out"
	statusQueryTimeoutMessage = "status query timed out"
)

// PaymentGateway collaborator that pays a reward out
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, req mpesa.PaymentRequest) (*mpesa.PaymentResult, error)
}

// StatusQuerier gateway that can look up the outcome of an earlier payout
type StatusQuerier interface {
	QueryStatus(ctx context.Context, query mpesa.StatusQuery) (*mpesa.PaymentResult, error)
}

// RewardService dispatches rewards and applies the gateway's asynchronous verdicts
type RewardService struct {
	rewardRepo     repository.RewardRepository
	txnRepo        repository.PaymentTransactionRepository
	feedbackRepo   repository.FeedbackRepository
	gateway        PaymentGateway
	queueClient    *queue.Client
	paymentTimeout time.Duration
	now            func() time.Time
}

// DispatchResult outcome for one reward
type DispatchResult struct {
	RewardID      string `json:"reward_id"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
	Message       string `json:"message,omitempty"`
}

// RewardListInput admin listing input
type RewardListInput struct {
	Status   string
	Phone    string
	Page     int
	PageSize int
}

// NewRewardService creates the reward service; gateway may be nil when payouts are disabled
func NewRewardService(
	rewardRepo repository.RewardRepository,
	txnRepo repository.PaymentTransactionRepository,
	feedbackRepo repository.FeedbackRepository,
	gateway PaymentGateway,
	queueClient *queue.Client,
	paymentTimeout time.Duration,
) *RewardService {
	return &RewardService{
		rewardRepo:     rewardRepo,
		txnRepo:        txnRepo,
		feedbackRepo:   feedbackRepo,
		gateway:        gateway,
		queueClient:    queueClient,
		paymentTimeout: paymentTimeout,
		now:            time.Now,
	}
}

// Dispatch pays out the selected rewards, one gateway call per reward.
// A failure on one reward never aborts the others.
func (s *RewardService) Dispatch(ctx context.Context, rewardIDs []string) ([]DispatchResult, error) {
	ids := normalizeIDs(rewardIDs)
	if len(ids) == 0 {
		return nil, ErrRewardIDsRequired
	}
	if s.gateway == nil {
		return nil, ErrGatewayUnavailable
	}
	results := make([]DispatchResult, 0, len(ids))
	for _, id := range ids {
		result := s.dispatchOne(ctx, id)
		metrics.RewardDispatchTotal.WithLabelValues(result.Status).Inc()
		results = append(results, result)
	}
	return results, nil
}

func (s *RewardService) dispatchOne(ctx context.Context, rewardID string) DispatchResult {
	result := DispatchResult{RewardID: rewardID}
	reward, err := s.rewardRepo.GetByID(rewardID)
	if err != nil {
		logger.Errorw("reward_dispatch_fetch_failed", "reward_id", rewardID, "error", err)
		result.Status, result.Message = DispatchStatusFailed, "fetch failed"
		return result
	}
	if reward == nil {
		result.Status, result.Message = DispatchStatusFailed, "not found"
		return result
	}
	if isRewardSettled(reward.Status) {
		result.Status, result.Message = DispatchStatusSkipped, "already "+reward.Status
		return result
	}

	txn, skipReason, err := s.openTransaction(rewardID)
	if err != nil {
		logger.Errorw("reward_dispatch_prepare_failed", "reward_id", rewardID, "error", err)
		result.Status, result.Message = DispatchStatusFailed, "prepare failed"
		return result
	}
	if skipReason != "" {
		result.Status, result.Message = DispatchStatusSkipped, skipReason
		return result
	}
	if err := s.scheduleGuard(txn.ID, false); err != nil && !errors.Is(err, ErrQueueUnavailable) {
		logger.Warnw("payment_timeout_guard_enqueue_failed", "transaction_id", txn.ID, "error", err)
	}

	customerName := ""
	if s.feedbackRepo != nil {
		if feedback, err := s.feedbackRepo.GetByID(reward.FeedbackID); err == nil && feedback != nil && feedback.CustomerName != nil {
			customerName = *feedback.CustomerName
		}
	}

	started := time.Now()
	payment, callErr := s.gateway.InitiatePayment(ctx, mpesa.PaymentRequest{
		Phone:        txn.PhoneNumber,
		Amount:       txn.Amount.Decimal.Round(0).IntPart(),
		RewardID:     rewardID,
		CustomerName: customerName,
	})
	metrics.ExternalAPIDuration.WithLabelValues(constants.PaymentProviderMpesa, "b2c_payment").Observe(time.Since(started).Seconds())

	if callErr != nil || payment == nil || !payment.Success {
		message := gatewayFailureMessage(payment, callErr)
		if err := s.recordAttemptFailed(txn, message); err != nil {
			logger.Errorw("reward_dispatch_record_failed", "reward_id", rewardID, "transaction_id", txn.ID, "error", err)
		}
		logger.Warnw("reward_dispatch_failed",
			"reward_id", rewardID,
			"transaction_id", txn.ID,
			"phone", logger.MaskPhone(txn.PhoneNumber),
			"reason", message,
		)
		result.Status, result.Message = DispatchStatusFailed, message
		return result
	}

	if err := s.recordInitiated(txn, payment); err != nil {
		// the row stays pending; the timeout guard or the next dispatch fails it
		logger.Errorw("reward_dispatch_record_failed",
			"reward_id", rewardID,
			"transaction_id", txn.ID,
			"conversation_id", payment.TransactionID,
			"originator_conversation_id", payment.OriginatorConversationID,
			"error", err,
		)
	}
	logger.Infow("reward_dispatch_initiated",
		"reward_id", rewardID,
		"transaction_id", txn.ID,
		"conversation_id", payment.TransactionID,
		"phone", logger.MaskPhone(txn.PhoneNumber),
	)
	result.Status = DispatchStatusSuccess
	result.TransactionID = payment.TransactionID
	result.Message = payment.Message
	return result
}

// openTransaction writes the pending audit row before the gateway is called.
// A reward with a payment still in flight is skipped; an open payment older
// than the payment timeout is failed first so the reward can be paid again.
func (s *RewardService) openTransaction(rewardID string) (*models.PaymentTransaction, string, error) {
	var (
		txn        *models.PaymentTransaction
		skipReason string
	)
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		rewardRepo := s.rewardRepo.WithTx(tx)
		txnRepo := s.txnRepo.WithTx(tx)

		reward, err := rewardRepo.GetByIDForUpdate(rewardID)
		if err != nil {
			return err
		}
		if reward == nil {
			skipReason = "not found"
			return nil
		}
		if isRewardSettled(reward.Status) {
			skipReason = "already " + reward.Status
			return nil
		}
		existing, err := txnRepo.ListByReward(rewardID)
		if err != nil {
			return err
		}
		now := s.now()
		for _, item := range existing {
			if !isPaymentOpen(item.Status) {
				continue
			}
			if !s.isStale(&item, now) {
				skipReason = "payment in progress"
				return nil
			}
			swept, err := txnRepo.Finalize(item.ID, repository.PaymentOutcome{
				Status:       constants.PaymentStatusFailed,
				ErrorMessage: paymentTimeoutMessage,
			}, now)
			if err != nil {
				return err
			}
			if swept {
				logger.Warnw("payment_stale_transaction_swept", "transaction_id", item.ID, "reward_id", rewardID, "status", item.Status)
			}
		}
		txn = &models.PaymentTransaction{
			RewardID:    reward.ID,
			PhoneNumber: reward.CustomerPhone,
			Amount:      reward.Amount,
			Status:      constants.PaymentStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return txnRepo.Create(txn)
	})
	if err != nil {
		return nil, "", err
	}
	return txn, skipReason, nil
}

func (s *RewardService) isStale(txn *models.PaymentTransaction, now time.Time) bool {
	if s.paymentTimeout <= 0 {
		return false
	}
	return !txn.CreatedAt.After(now.Add(-s.paymentTimeout))
}

func (s *RewardService) scheduleGuard(transactionID string, followUp bool) error {
	if !s.queueClient.Enabled() {
		return ErrQueueUnavailable
	}
	payload := queue.PaymentTimeoutGuardPayload{TransactionID: transactionID, FollowUp: followUp}
	return s.queueClient.EnqueuePaymentTimeoutGuard(payload, s.paymentTimeout)
}

func (s *RewardService) recordAttemptFailed(txn *models.PaymentTransaction, message string) error {
	now := s.now()
	return models.DB.Transaction(func(tx *gorm.DB) error {
		applied, err := s.txnRepo.WithTx(tx).MarkAttemptFailed(txn.ID, message, now)
		if err != nil {
			return err
		}
		if !applied {
			return nil
		}
		return s.rewardRepo.WithTx(tx).UpdateStatus(txn.RewardID, constants.RewardStatusFailed, nil)
	})
}

func (s *RewardService) recordInitiated(txn *models.PaymentTransaction, payment *mpesa.PaymentResult) error {
	now := s.now()
	return models.DB.Transaction(func(tx *gorm.DB) error {
		applied, err := s.txnRepo.WithTx(tx).MarkInitiated(txn.ID, payment.TransactionID, payment.OriginatorConversationID, now)
		if err != nil {
			return err
		}
		if !applied {
			return nil
		}
		return s.rewardRepo.WithTx(tx).UpdateStatus(txn.RewardID, constants.RewardStatusSent, &now)
	})
}

// EnqueueDispatch queues one dispatch task per reward
func (s *RewardService) EnqueueDispatch(rewardIDs []string) (int, error) {
	ids := normalizeIDs(rewardIDs)
	if len(ids) == 0 {
		return 0, ErrRewardIDsRequired
	}
	if !s.queueClient.Enabled() {
		return 0, ErrQueueUnavailable
	}
	queued := 0
	for _, id := range ids {
		if err := s.queueClient.EnqueueRewardDispatch(queue.RewardDispatchPayload{RewardID: id}); err != nil {
			logger.Warnw("reward_dispatch_enqueue_failed", "reward_id", id, "error", err)
			continue
		}
		queued++
	}
	if queued == 0 {
		return 0, ErrQueueUnavailable
	}
	return queued, nil
}

// HandlePaymentResult applies a result callback. False means nothing changed:
// the id is unknown or a terminal status was already written.
func (s *RewardService) HandlePaymentResult(ctx context.Context, callback *mpesa.ResultCallback) (bool, error) {
	if callback == nil {
		return false, nil
	}
	txn, err := s.findByExternalIDs(callback.ExternalIDs())
	if err != nil {
		return false, err
	}
	if txn == nil {
		metrics.PaymentCallbacksTotal.WithLabelValues("result", "unknown").Inc()
		logger.Warnw("payment_callback_unmatched", "kind", "result", "external_ids", callback.ExternalIDs())
		return false, nil
	}
	outcome := repository.PaymentOutcome{Status: constants.PaymentStatusCompleted, ReceiptNumber: callback.ReceiptNumber()}
	if !callback.Succeeded() {
		outcome = repository.PaymentOutcome{
			Status:       constants.PaymentStatusFailed,
			ErrorMessage: resultMessage(callback.Result.ResultDesc, callback.Result.ResultCode.String()),
		}
	}
	applied, err := s.finalize(txn, outcome)
	if err != nil {
		return false, err
	}
	metrics.PaymentCallbacksTotal.WithLabelValues("result", callbackOutcome(outcome.Status, applied)).Inc()
	logger.Infow("payment_result_applied",
		"transaction_id", txn.ID,
		"reward_id", txn.RewardID,
		"status", outcome.Status,
		"applied", applied,
	)
	return applied, nil
}

// HandlePaymentTimeout applies a gateway timeout notification
func (s *RewardService) HandlePaymentTimeout(ctx context.Context, callback *mpesa.TimeoutCallback) (bool, error) {
	if callback == nil {
		return false, nil
	}
	txn, err := s.findByExternalIDs(callback.ExternalIDs())
	if err != nil {
		return false, err
	}
	if txn == nil {
		metrics.PaymentCallbacksTotal.WithLabelValues("timeout", "unknown").Inc()
		logger.Warnw("payment_callback_unmatched", "kind", "timeout", "external_ids", callback.ExternalIDs())
		return false, nil
	}
	applied, err := s.finalize(txn, repository.PaymentOutcome{Status: constants.PaymentStatusFailed, ErrorMessage: paymentTimeoutMessage})
	if err != nil {
		return false, err
	}
	metrics.PaymentCallbacksTotal.WithLabelValues("timeout", callbackOutcome(constants.PaymentStatusFailed, applied)).Inc()
	logger.Infow("payment_timeout_applied", "transaction_id", txn.ID, "reward_id", txn.RewardID, "applied", applied)
	return applied, nil
}

// ResolveStaleTransaction runs when a payment's guard fires. A pending row never
// got a gateway verdict recorded and is failed. An initiated row is first given
// one status query and another guard window; when the query cannot be sent or
// was already sent, it is failed.
func (s *RewardService) ResolveStaleTransaction(ctx context.Context, transactionID string) (bool, error) {
	txn, err := s.txnRepo.GetByID(strings.TrimSpace(transactionID))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRewardFetchFailed, err)
	}
	if txn == nil || !isPaymentOpen(txn.Status) {
		return false, nil
	}
	if txn.Status == constants.PaymentStatusInitiated && txn.StatusQueriedAt == nil && s.queueClient.Enabled() {
		err := s.requestStatus(ctx, txn)
		if err == nil {
			if err := s.scheduleGuard(txn.ID, true); err == nil {
				logger.Infow("payment_timeout_guard_deferred", "transaction_id", txn.ID, "reward_id", txn.RewardID)
				return false, nil
			}
		} else if !errors.Is(err, ErrStatusQueryUnavailable) {
			logger.Warnw("payment_status_query_failed", "transaction_id", txn.ID, "error", err)
		}
	}
	applied, err := s.finalize(txn, repository.PaymentOutcome{Status: constants.PaymentStatusFailed, ErrorMessage: paymentTimeoutMessage})
	if err != nil {
		return false, err
	}
	if applied {
		logger.Warnw("payment_timeout_guard_fired", "transaction_id", txn.ID, "reward_id", txn.RewardID, "status", txn.Status)
	}
	return applied, nil
}

// QueryRewardStatus asks the gateway for the outcome of the reward's payment
// still awaiting a verdict; the answer arrives on the status callbacks.
func (s *RewardService) QueryRewardStatus(ctx context.Context, rewardID string) (*models.PaymentTransaction, error) {
	reward, txns, err := s.Get(rewardID)
	if err != nil {
		return nil, err
	}
	var open *models.PaymentTransaction
	for i := range txns {
		if txns[i].Status == constants.PaymentStatusInitiated {
			open = &txns[i]
		}
	}
	if open == nil {
		return nil, ErrPaymentNotQueryable
	}
	if err := s.requestStatus(ctx, open); err != nil {
		return nil, err
	}
	logger.Infow("payment_status_query_sent", "transaction_id", open.ID, "reward_id", reward.ID)
	refreshed, err := s.txnRepo.GetByID(open.ID)
	if err != nil || refreshed == nil {
		return open, nil
	}
	return refreshed, nil
}

func (s *RewardService) requestStatus(ctx context.Context, txn *models.PaymentTransaction) error {
	querier, ok := s.gateway.(StatusQuerier)
	if !ok {
		return ErrStatusQueryUnavailable
	}
	if txn.Status != constants.PaymentStatusInitiated {
		return ErrPaymentNotQueryable
	}
	started := time.Now()
	ack, err := querier.QueryStatus(ctx, mpesa.StatusQuery{
		ReceiptNumber:            txn.ReceiptNumber,
		OriginatorConversationID: txn.OriginatorConversationID,
		Reference:                txn.ID,
	})
	metrics.ExternalAPIDuration.WithLabelValues(constants.PaymentProviderMpesa, "transaction_status").Observe(time.Since(started).Seconds())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStatusQueryFailed, err)
	}
	if ack == nil || !ack.Success {
		return fmt.Errorf("%w: %s", ErrStatusQueryFailed, gatewayFailureMessage(ack, nil))
	}
	applied, err := s.txnRepo.MarkStatusQueried(txn.ID, ack.TransactionID, s.now())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRewardUpdateFailed, err)
	}
	if !applied {
		return ErrPaymentNotQueryable
	}
	return nil
}

// HandleStatusResult applies the answer to a status query. An in-flight answer changes nothing.
func (s *RewardService) HandleStatusResult(ctx context.Context, callback *mpesa.StatusResultCallback) (bool, error) {
	if callback == nil {
		return false, nil
	}
	txn, err := s.findForStatus(callback.QueryIDs(), callback.PaymentIDs(), callback.ReceiptNumber())
	if err != nil {
		return false, err
	}
	if txn == nil {
		metrics.PaymentCallbacksTotal.WithLabelValues("status_result", "unknown").Inc()
		logger.Warnw("payment_callback_unmatched", "kind", "status_result", "query_ids", callback.QueryIDs(), "payment_ids", callback.PaymentIDs())
		return false, nil
	}
	outcome := repository.PaymentOutcome{Status: callback.PaymentStatus(), ReceiptNumber: callback.ReceiptNumber()}
	switch outcome.Status {
	case "":
		metrics.PaymentCallbacksTotal.WithLabelValues("status_result", "in_flight").Inc()
		logger.Infow("payment_status_in_flight", "transaction_id", txn.ID, "status", callback.Parameter("TransactionStatus"))
		return false, nil
	case mpesa.StatusFailed:
		outcome.ReceiptNumber = ""
		outcome.ErrorMessage = resultMessage(callback.Result.ResultDesc, callback.Result.ResultCode.String())
		if status := callback.Parameter("TransactionStatus"); status != "" {
			outcome.ErrorMessage = "transaction " + strings.ToLower(status)
		}
	}
	applied, err := s.finalize(txn, outcome)
	if err != nil {
		return false, err
	}
	metrics.PaymentCallbacksTotal.WithLabelValues("status_result", callbackOutcome(outcome.Status, applied)).Inc()
	logger.Infow("payment_status_result_applied",
		"transaction_id", txn.ID,
		"reward_id", txn.RewardID,
		"status", outcome.Status,
		"applied", applied,
	)
	return applied, nil
}

// HandleStatusTimeout fails the payment whose status query timed out
func (s *RewardService) HandleStatusTimeout(ctx context.Context, callback *mpesa.TimeoutCallback) (bool, error) {
	if callback == nil {
		return false, nil
	}
	txn, err := s.findForStatus(callback.ExternalIDs(), nil, "")
	if err != nil {
		return false, err
	}
	if txn == nil {
		metrics.PaymentCallbacksTotal.WithLabelValues("status_timeout", "unknown").Inc()
		logger.Warnw("payment_callback_unmatched", "kind", "status_timeout", "external_ids", callback.ExternalIDs())
		return false, nil
	}
	applied, err := s.finalize(txn, repository.PaymentOutcome{Status: constants.PaymentStatusFailed, ErrorMessage: statusQueryTimeoutMessage})
	if err != nil {
		return false, err
	}
	metrics.PaymentCallbacksTotal.WithLabelValues("status_timeout", callbackOutcome(constants.PaymentStatusFailed, applied)).Inc()
	logger.Infow("payment_status_timeout_applied", "transaction_id", txn.ID, "reward_id", txn.RewardID, "applied", applied)
	return applied, nil
}

func (s *RewardService) findByExternalIDs(ids []string) (*models.PaymentTransaction, error) {
	for _, id := range ids {
		txn, err := s.txnRepo.GetByExternalID(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRewardFetchFailed, err)
		}
		if txn != nil {
			return txn, nil
		}
	}
	return nil, nil
}

// findForStatus matches the status query id first, then the payout ids, then the receipt
func (s *RewardService) findForStatus(queryIDs, paymentIDs []string, receipt string) (*models.PaymentTransaction, error) {
	for _, id := range queryIDs {
		txn, err := s.txnRepo.GetByStatusQueryID(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRewardFetchFailed, err)
		}
		if txn != nil {
			return txn, nil
		}
	}
	txn, err := s.findByExternalIDs(paymentIDs)
	if err != nil || txn != nil {
		return txn, err
	}
	txn, err = s.txnRepo.GetByReceipt(receipt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRewardFetchFailed, err)
	}
	return txn, nil
}

// finalize writes the terminal status and carries it to the reward; the first terminal write wins
func (s *RewardService) finalize(txn *models.PaymentTransaction, outcome repository.PaymentOutcome) (bool, error) {
	now := s.now()
	applied := false
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := s.txnRepo.WithTx(tx).Finalize(txn.ID, outcome, now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		applied = true
		rewardRepo := s.rewardRepo.WithTx(tx)
		if outcome.Status == constants.PaymentStatusCompleted {
			return rewardRepo.UpdateStatus(txn.RewardID, constants.RewardStatusSent, &now)
		}
		return rewardRepo.UpdateStatus(txn.RewardID, constants.RewardStatusFailed, nil)
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRewardUpdateFailed, err)
	}
	return applied, nil
}

// List paginated rewards, filtered by status
func (s *RewardService) List(input RewardListInput) ([]models.Reward, int64, error) {
	status := strings.TrimSpace(strings.ToLower(input.Status))
	if status != "" && !isKnownRewardStatus(status) {
		return nil, 0, ErrRewardStatusInvalid
	}
	phone := strings.TrimSpace(input.Phone)
	if phone != "" {
		phone = CanonicalPhone(phone)
	}
	rewards, total, err := s.rewardRepo.List(repository.RewardListFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
		Status:   status,
		Phone:    phone,
	})
	if err != nil {
		return nil, 0, ErrRewardFetchFailed
	}
	return rewards, total, nil
}

// Get reward with its payment attempts
func (s *RewardService) Get(id string) (*models.Reward, []models.PaymentTransaction, error) {
	reward, err := s.rewardRepo.GetByID(strings.TrimSpace(id))
	if err != nil {
		return nil, nil, ErrRewardFetchFailed
	}
	if reward == nil {
		return nil, nil, ErrRewardNotFound
	}
	txns, err := s.txnRepo.ListByReward(reward.ID)
	if err != nil {
		return nil, nil, ErrRewardFetchFailed
	}
	return reward, txns, nil
}

func isRewardSettled(status string) bool {
	return status == constants.RewardStatusSent || status == constants.RewardStatusVerified
}

func isPaymentOpen(status string) bool {
	return status == constants.PaymentStatusPending || status == constants.PaymentStatusInitiated
}

func callbackOutcome(status string, applied bool) string {
	if !applied {
		return "ignored"
	}
	return status
}

func resultMessage(desc, code string) string {
	if message := strings.TrimSpace(desc); message != "" {
		return message
	}
	return "result code " + code
}

func isKnownRewardStatus(status string) bool {
	for _, item := range constants.RewardStatuses {
		if item == status {
			return true
		}
	}
	return false
}

func gatewayFailureMessage(payment *mpesa.PaymentResult, err error) string {
	switch {
	case err != nil && errors.Is(err, mpesa.ErrPhoneInvalid):
		return "invalid phone number"
	case err != nil && errors.Is(err, mpesa.ErrAmountInvalid):
		return "amount out of range"
	case err != nil:
		return err.Error()
	case payment == nil:
		return "empty gateway response"
	case payment.ErrorCode != "":
		return strings.TrimSpace(payment.Message + " (" + payment.ErrorCode + ")")
	default:
		return payment.Message
	}
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
