package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/scanpesa/internal/logger"
	"github.com/scanpesa/internal/provider"
	"github.com/scanpesa/internal/queue"
	"github.com/scanpesa/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer async task consumer
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register binds task handlers
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskRewardDispatch, c.handleRewardDispatch)
	mux.HandleFunc(queue.TaskPaymentTimeoutGuard, c.handlePaymentTimeoutGuard)
}

func (c *Consumer) handleRewardDispatch(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_reward_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.RewardDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_reward_dispatch_unmarshal_failed", "error", err)
		return err
	}
	rewardID := strings.TrimSpace(payload.RewardID)
	if rewardID == "" {
		logger.Debugw("worker_reward_dispatch_skip_invalid_payload")
		return nil
	}
	if c.RewardService == nil {
		logger.Warnw("worker_reward_dispatch_skip_service_nil", "reward_id", rewardID)
		return nil
	}
	results, err := c.RewardService.Dispatch(ctx, []string{rewardID})
	if err != nil {
		if errors.Is(err, service.ErrGatewayUnavailable) {
			logger.Warnw("worker_reward_dispatch_gateway_unavailable", "reward_id", rewardID)
			return nil
		}
		logger.Warnw("worker_reward_dispatch_failed", "reward_id", rewardID, "error", err)
		return err
	}
	for _, result := range results {
		logger.Infow("worker_reward_dispatch_done",
			"reward_id", result.RewardID,
			"status", result.Status,
			"message", result.Message,
		)
	}
	return nil
}

func (c *Consumer) handlePaymentTimeoutGuard(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_payment_timeout_guard_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PaymentTimeoutGuardPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_timeout_guard_unmarshal_failed", "error", err)
		return err
	}
	transactionID := strings.TrimSpace(payload.TransactionID)
	if transactionID == "" {
		logger.Debugw("worker_payment_timeout_guard_skip_invalid_payload")
		return nil
	}
	if c.RewardService == nil {
		logger.Warnw("worker_payment_timeout_guard_skip_service_nil", "transaction_id", transactionID)
		return nil
	}
	applied, err := c.RewardService.ResolveStaleTransaction(ctx, transactionID)
	if err != nil {
		logger.Warnw("worker_payment_timeout_guard_failed", "transaction_id", transactionID, "follow_up", payload.FollowUp, "error", err)
		return err
	}
	if !applied {
		logger.Debugw("worker_payment_timeout_guard_skip_resolved", "transaction_id", transactionID, "follow_up", payload.FollowUp)
	}
	return nil
}
