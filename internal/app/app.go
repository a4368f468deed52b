package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/vk/scopbatch/internal/config"
	"github.com/vk/scopbatch/internal/ctxlog"
)

// App encapsulates the harness dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	model  *config.Model

	httpServer *http.Server
	progress   progress
}

// progress is updated by runner workers and read by the health handler.
type progress struct {
	total  atomic.Int64
	done   atomic.Int64
	failed atomic.Int64
}

// NewApp builds an App. The report goes to outW and logs to logW. When
// cfg.ConfigPath is set, loader reads it on top of config.Default().
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model := config.Default()
	if cfg.ConfigPath != "" {
		loaded, err := loader.Load(ctx, cfg.ConfigPath, model)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		model = loaded
		logger.Debug("Harness file loaded.", "path", cfg.ConfigPath)
	}

	model = cfg.overlay(model)
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		model:  model,
	}, nil
}

// Model returns the effective harness configuration. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
