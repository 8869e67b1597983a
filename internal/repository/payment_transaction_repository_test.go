package repository

import (
	"testing"
	"time"

	"github.com/scanpesa/internal/constants"
	"github.com/scanpesa/internal/models"
)

func TestPaymentTransactionFinalizeFirstWriteWins(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPaymentTransactionRepository(db)
	txn := &models.PaymentTransaction{
		RewardID:    "reward-1",
		PhoneNumber: "254712345678",
		Amount:      models.NewMoneyFromInt(30),
		Status:      constants.PaymentStatusPending,
	}
	if err := repo.Create(txn); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	now := time.Now()
	ok, err := repo.MarkInitiated(txn.ID, "AG_1", "ORIG_1", now)
	if err != nil || !ok {
		t.Fatalf("mark initiated failed: ok=%v err=%v", ok, err)
	}
	ok, err = repo.MarkInitiated(txn.ID, "AG_2", "ORIG_2", now)
	if err != nil || ok {
		t.Fatalf("second mark initiated should not apply: ok=%v err=%v", ok, err)
	}

	byExternal, err := repo.GetByExternalID("AG_1")
	if err != nil || byExternal == nil || byExternal.ID != txn.ID {
		t.Fatalf("lookup by conversation id failed: %+v err=%v", byExternal, err)
	}
	byOriginator, err := repo.GetByExternalID("ORIG_1")
	if err != nil || byOriginator == nil || byOriginator.ID != txn.ID {
		t.Fatalf("lookup by originator id failed: %+v err=%v", byOriginator, err)
	}

	ok, err = repo.Finalize(txn.ID, PaymentOutcome{Status: constants.PaymentStatusCompleted, ReceiptNumber: "SBK7XH2QPL"}, now)
	if err != nil || !ok {
		t.Fatalf("finalize completed failed: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Finalize(txn.ID, PaymentOutcome{Status: constants.PaymentStatusFailed, ErrorMessage: "timeout"}, now)
	if err != nil {
		t.Fatalf("late finalize err: %v", err)
	}
	if ok {
		t.Fatalf("late finalize must not apply")
	}

	got, err := repo.GetByID(txn.ID)
	if err != nil || got == nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != constants.PaymentStatusCompleted || got.ErrorMessage != "" || got.Attempts != 1 || got.LastAttemptAt == nil {
		t.Fatalf("unexpected final state: %+v", got)
	}
	byReceipt, err := repo.GetByReceipt("SBK7XH2QPL")
	if err != nil || byReceipt == nil || byReceipt.ID != txn.ID {
		t.Fatalf("lookup by receipt failed: %+v err=%v", byReceipt, err)
	}
}

func TestPaymentTransactionMarkAttemptFailed(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPaymentTransactionRepository(db)
	txn := &models.PaymentTransaction{
		RewardID:    "reward-2",
		PhoneNumber: "254712345678",
		Amount:      models.NewMoneyFromInt(20),
		Status:      constants.PaymentStatusPending,
	}
	if err := repo.Create(txn); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	ok, err := repo.MarkAttemptFailed(txn.ID, "insufficient balance", time.Now())
	if err != nil || !ok {
		t.Fatalf("mark failed: ok=%v err=%v", ok, err)
	}
	got, err := repo.GetByID(txn.ID)
	if err != nil || got == nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != constants.PaymentStatusFailed || got.Attempts != 1 || got.ErrorMessage != "insufficient balance" {
		t.Fatalf("unexpected state: %+v", got)
	}
	if ok, _ := repo.MarkInitiated(txn.ID, "AG_X", "", time.Now()); ok {
		t.Fatalf("failed row must not become initiated")
	}
}

func TestPaymentTransactionStatusQueryBookkeeping(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPaymentTransactionRepository(db)
	txn := &models.PaymentTransaction{
		RewardID:    "reward-3",
		PhoneNumber: "254712345678",
		Amount:      models.NewMoneyFromInt(30),
		Status:      constants.PaymentStatusPending,
	}
	if err := repo.Create(txn); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	now := time.Now()
	if ok, _ := repo.MarkStatusQueried(txn.ID, "AG_Q_0", now); ok {
		t.Fatalf("pending row has nothing to query")
	}
	if ok, err := repo.MarkInitiated(txn.ID, "AG_3", "ORIG_3", now); !ok || err != nil {
		t.Fatalf("mark initiated failed: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.MarkStatusQueried(txn.ID, "AG_Q_1", now); !ok || err != nil {
		t.Fatalf("mark status queried failed: ok=%v err=%v", ok, err)
	}
	got, err := repo.GetByStatusQueryID("AG_Q_1")
	if err != nil || got == nil || got.ID != txn.ID || got.StatusQueriedAt == nil {
		t.Fatalf("lookup by status query id failed: %+v err=%v", got, err)
	}
	if _, err := repo.Finalize(txn.ID, PaymentOutcome{Status: constants.PaymentStatusInitiated}, now); err == nil {
		t.Fatalf("non-terminal status must be rejected")
	}
}
