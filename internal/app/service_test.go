package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scanpesa/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *stubService) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllWhenOneExits(t *testing.T) {
	failing := &stubService{name: apiServiceName, startErr: errors.New("bind failed")}
	blocking := &stubService{name: "payout-worker", block: true}

	err := NewRunner(failing, blocking).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "bind failed" {
		t.Fatalf("expected start error, got %v", err)
	}
	if !failing.stopped.Load() || !blocking.stopped.Load() {
		t.Fatalf("every service must be stopped")
	}
}

func TestRunnerCancelledContextIsCleanExit(t *testing.T) {
	blocking := &stubService{name: "payout-worker", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewRunner(blocking).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
}

func TestBuildRunnerRejectsNilConfig(t *testing.T) {
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	_, err := BuildRunner(&config.Config{}, "cron")
	if err == nil || !strings.Contains(err.Error(), "unknown run mode") {
		t.Fatalf("expected unknown mode error, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, " API ": ModeAPI, "worker": ModeWorker, "all": ModeAll}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) want %s got %s err=%v", raw, want, got, err)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

type readyService struct {
	stubService
	readyAfter int32
	calls      atomic.Int32
}

func (s *readyService) Ready(context.Context) error {
	if s.calls.Add(1) < s.readyAfter {
		return errors.New("warming up")
	}
	return nil
}

func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core).Sugar(), logs
}

func waitForLog(t *testing.T, logs *observer.ObservedLogs, message string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if logs.FilterMessage(message).Len() > 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("log %q never written", message)
}

func TestRunnerLogsReadyAfterPolling(t *testing.T) {
	svc := &readyService{stubService: stubService{name: apiServiceName, block: true}, readyAfter: 3}
	log, logs := observedLogger()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewRunner(svc).Run(ctx, time.Second, log) }()

	waitForLog(t, logs, "service_ready")
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
	if svc.calls.Load() < 3 {
		t.Fatalf("ready should be polled until it passes, got %d calls", svc.calls.Load())
	}
}

func TestRunnerLogsNotReadyAfterTimeout(t *testing.T) {
	svc := &readyService{stubService: stubService{name: "payout-worker", block: true}, readyAfter: 1 << 30}
	runner := NewRunner(svc)
	runner.readyTimeout = 300 * time.Millisecond
	log, logs := observedLogger()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, time.Second, log) }()

	waitForLog(t, logs, "service_not_ready")
	cancel()
	<-done
	if logs.FilterMessage("service_ready").Len() != 0 {
		t.Fatalf("service should never be reported ready")
	}
}

func TestHTTPServiceReadyOnceListening(t *testing.T) {
	pingErr := errors.New("database down")
	var failPing atomic.Bool
	failPing.Store(true)
	svc := NewHTTPService("127.0.0.1:0", http.NotFoundHandler(), func(context.Context) error {
		if failPing.Load() {
			return pingErr
		}
		return nil
	})
	if err := svc.Ready(context.Background()); err == nil {
		t.Fatalf("unbound service should not be ready")
	}

	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()
	deadline := time.Now().Add(3 * time.Second)
	for !errors.Is(svc.Ready(context.Background()), pingErr) {
		if time.Now().After(deadline) {
			t.Fatalf("listener never bound")
		}
		time.Sleep(10 * time.Millisecond)
	}
	failPing.Store(false)
	if err := svc.Ready(context.Background()); err != nil {
		t.Fatalf("expected ready, got %v", err)
	}

	resp, err := http.Get("http://" + svc.Addr() + "/anything")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("start should return cleanly after stop, got %v", err)
	}
}
