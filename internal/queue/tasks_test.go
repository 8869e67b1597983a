package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/scanpesa/internal/config"
)

func TestNewRewardDispatchTask(t *testing.T) {
	task, err := NewRewardDispatchTask(RewardDispatchPayload{RewardID: "r-1"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskRewardDispatch {
		t.Fatalf("unexpected type %s", task.Type())
	}
	var payload RewardDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.RewardID != "r-1" {
		t.Fatalf("unexpected payload %s err=%v", task.Payload(), err)
	}
}

func TestGuardTaskIDSeparatesStages(t *testing.T) {
	first := GuardTaskID(PaymentTimeoutGuardPayload{TransactionID: "txn-1"})
	followUp := GuardTaskID(PaymentTimeoutGuardPayload{TransactionID: "txn-1", FollowUp: true})
	if first != "payment:timeout_guard:txn-1" {
		t.Fatalf("unexpected first guard id %s", first)
	}
	if followUp == first {
		t.Fatalf("follow-up guard must not collide with the first guard")
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueRewardDispatch(RewardDispatchPayload{RewardID: "r"}); err != nil {
		t.Fatalf("disabled enqueue should be nil: %v", err)
	}
	if err := client.EnqueuePaymentTimeoutGuard(PaymentTimeoutGuardPayload{TransactionID: "t"}, time.Minute); err != nil {
		t.Fatalf("disabled enqueue should be nil: %v", err)
	}
	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("nil client should be disabled")
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected addr %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[CriticalQueue] != 2 {
		t.Fatalf("unexpected server config %+v", cfg)
	}
}
