package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/scanpesa/internal/config"
	"github.com/scanpesa/internal/logger"

	"go.uber.org/zap"
)

// Run modes: the API with its worker, the API alone, or the payout worker alone
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options application start options
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	ReadyTimeout    time.Duration
	Mode            string
}

// ParseMode normalises a -mode flag value; empty means ModeAll
func ParseMode(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case "":
		return ModeAll, nil
	case ModeAll, ModeAPI, ModeWorker:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown run mode %q (want all, api or worker)", raw)
	}
}

// normalizeOptions fills defaults
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = 15 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
