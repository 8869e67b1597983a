package app

import (
	"errors"

	"github.com/scanpesa/internal/config"
	"github.com/scanpesa/internal/logger"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/provider"
	"github.com/scanpesa/internal/router"
	"github.com/scanpesa/internal/worker"
)

// BuildRunner builds the service runner for a mode
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	mode, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	container := provider.NewContainer(cfg)

	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		httpService := NewHTTPService(addr, engine, models.Ping)
		services = append(services, httpService)
	}

	switch {
	case mode == ModeWorker || (mode == ModeAll && cfg.Queue.Enabled):
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	case mode == ModeAll:
		logger.Warnw("app_worker_skipped_queue_disabled", "mode", mode)
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run application entry point
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
