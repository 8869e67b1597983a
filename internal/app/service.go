package app

import (
	"context"
	"errors"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

// Service a long running component
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ReadinessChecker implemented by services that can report when they accept work
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

const readyPollInterval = 200 * time.Millisecond

// Runner runs services side by side
type Runner struct {
	services     []Service
	readyTimeout time.Duration
}

// NewRunner creates a runner
func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// RunWithOptions runs services and handles signals
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}

	runner.readyTimeout = opts.ReadyTimeout
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

// Run starts every service and stops all of them when one exits
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, logger *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(r.services))
	for _, svc := range r.services {
		service := svc
		go func() {
			name := "unknown"
			if service != nil {
				name = service.Name()
			}
			if logger != nil {
				logger.Infow("service_start", "service", name)
			}
			if service == nil {
				errCh <- errors.New("service is nil")
				return
			}
			errCh <- service.Start(ctx)
			if logger != nil {
				logger.Infow("service_exit", "service", name)
			}
		}()
		if checker, ok := svc.(ReadinessChecker); ok {
			go r.awaitReady(ctx, svc.Name(), checker, logger)
		}
	}

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case err := <-errCh:
		runErr = err
	}

	cancel()
	if stopTimeout <= 0 {
		stopTimeout = 10 * time.Second
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	for _, svc := range r.services {
		if svc == nil {
			continue
		}
		if err := svc.Stop(stopCtx); err != nil {
			if logger != nil {
				logger.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
			}
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// awaitReady polls checker until it reports ready or the ready timeout passes
func (r *Runner) awaitReady(ctx context.Context, name string, checker ReadinessChecker, logger *zap.SugaredLogger) {
	timeout := r.readyTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = checker.Ready(ctx); lastErr == nil {
			if logger != nil {
				logger.Infow("service_ready", "service", name)
			}
			return
		}
		select {
		case <-ctx.Done():
			if logger != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				logger.Warnw("service_not_ready", "service", name, "timeout", timeout.String(), "error", lastErr)
			}
			return
		case <-ticker.C:
		}
	}
}
