package worker

import (
	"context"
	"errors"

	"github.com/scanpesa/internal/config"
	"github.com/scanpesa/internal/queue"

	"github.com/hibiken/asynq"
)

const workerServiceName = "payout-worker"

// Service asynq worker running reward dispatch and payment guards
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the worker service
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     workerServiceName,
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name service name
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return workerServiceName
	}
	return s.name
}

// Start runs the worker until Stop
func (s *Service) Start(_ context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	return s.server.Run(s.mux)
}

// Ready the queue broker answers
func (s *Service) Ready(_ context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("worker not initialized")
	}
	return s.server.Ping()
}

// Stop shuts the worker down
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}
