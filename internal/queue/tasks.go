package queue

import (
	"encoding/json"

	"github.com/scanpesa/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskRewardDispatch pays out one reward
	TaskRewardDispatch = constants.TaskRewardDispatch
	// TaskPaymentTimeoutGuard fails a payment the gateway never resolved
	TaskPaymentTimeoutGuard = constants.TaskPaymentTimeoutGuard
)

// RewardDispatchPayload reward dispatch task payload
type RewardDispatchPayload struct {
	RewardID string `json:"reward_id"`
}

// PaymentTimeoutGuardPayload timeout guard task payload. FollowUp marks the
// second guard scheduled after a status query was sent.
type PaymentTimeoutGuardPayload struct {
	TransactionID string `json:"transaction_id"`
	FollowUp      bool   `json:"follow_up,omitempty"`
}

// GuardTaskID unique task id per transaction and guard stage
func GuardTaskID(payload PaymentTimeoutGuardPayload) string {
	id := TaskPaymentTimeoutGuard + ":" + payload.TransactionID
	if payload.FollowUp {
		id += ":status"
	}
	return id
}

// NewRewardDispatchTask builds a reward dispatch task
func NewRewardDispatchTask(payload RewardDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRewardDispatch, body), nil
}

// NewPaymentTimeoutGuardTask builds a timeout guard task
func NewPaymentTimeoutGuardTask(payload PaymentTimeoutGuardPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentTimeoutGuard, body), nil
}
