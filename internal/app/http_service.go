package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"
)

const apiServiceName = "scanpesa-api"

// HTTPService serves the public and admin API
type HTTPService struct {
	addr   string
	server *http.Server
	ping   func(ctx context.Context) error

	mu       sync.RWMutex
	listener net.Listener
}

// NewHTTPService creates the API service; ping reports whether its backing store answers
func NewHTTPService(addr string, handler http.Handler, ping func(ctx context.Context) error) *HTTPService {
	return &HTTPService{
		addr: addr,
		ping: ping,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Name service name
func (s *HTTPService) Name() string {
	return apiServiceName
}

// Addr bound address once listening, otherwise the configured one
func (s *HTTPService) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start binds the listener and serves until Stop
func (s *HTTPService) Start(_ context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Ready listener bound and database reachable
func (s *HTTPService) Ready(ctx context.Context) error {
	s.mu.RLock()
	bound := s.listener != nil
	s.mu.RUnlock()
	if !bound {
		return errors.New("listener not bound")
	}
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Stop graceful shutdown
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
