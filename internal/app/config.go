package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/vk/scopbatch/internal/config"
)

// Config holds the command-line level settings for a run. Zero values mean
// "not set" and leave the harness file or the defaults in charge.
type Config struct {
	Root       string // test-case tree
	ConfigPath string // optional HCL harness file

	Workers      int
	Timeout      time.Duration
	BuildTimeout time.Duration

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Root == "" {
		return nil, errors.New("Root is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.Timeout < 0 || cfg.BuildTimeout < 0 {
		return nil, errors.New("timeouts must not be negative")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck-port out of range: %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}

// overlay applies the command-line settings on top of the harness model.
func (c *Config) overlay(m *config.Model) *config.Model {
	out := m.Clone()
	if c.Workers > 0 {
		out.Generate.Workers = c.Workers
	}
	if c.Timeout > 0 {
		out.Generate.Timeout = c.Timeout
	}
	if c.BuildTimeout > 0 {
		out.Build.Timeout = c.BuildTimeout
	}
	return out
}
