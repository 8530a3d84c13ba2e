package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tgifai/chrono/internal/consts"
)

type (
	Config struct {
		Logging   LoggingConfig   `yaml:"logging"`
		Scheduler SchedulerConfig `yaml:"scheduler"`
	}

	LoggingConfig struct {
		Level      string `yaml:"level"`  // debug, info, warn, error
		Format     string `yaml:"format"` // json, text
		Output     string `yaml:"output"` // stdout, file, both
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"` // MB
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"` // days
	}

	SchedulerConfig struct {
		Store                 string          `yaml:"store"`
		Outbox                string          `yaml:"outbox"`
		MaxConcurrentDispatch int             `yaml:"max_concurrent_dispatch"`
		DispatchTimeoutSec    int             `yaml:"dispatch_timeout_sec"`
		MetricsBind           string          `yaml:"metrics_bind"` // empty disables the endpoint
		Heartbeat             HeartbeatConfig `yaml:"heartbeat"`
	}

	HeartbeatConfig struct {
		Enabled   bool   `yaml:"enabled"`
		Interval  string `yaml:"interval"` // Go duration, e.g. "30m"
		Workspace string `yaml:"workspace"`
	}
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Scheduler: SchedulerConfig{
			Store:                 consts.DefaultStorePath(),
			Outbox:                consts.DefaultOutboxPath(),
			MaxConcurrentDispatch: 4,
			DispatchTimeoutSec:    300,
			Heartbeat: HeartbeatConfig{
				Interval:  "30m",
				Workspace: consts.DefaultWorkspaceDir(),
			},
		},
	}
}

// Load reads the YAML config at path, layered over defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the runtime cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Scheduler.Store) == "" {
		return fmt.Errorf("scheduler.store must not be empty")
	}
	if c.Scheduler.MaxConcurrentDispatch < 0 {
		return fmt.Errorf("scheduler.max_concurrent_dispatch must be >= 0")
	}
	if c.Scheduler.DispatchTimeoutSec < 0 {
		return fmt.Errorf("scheduler.dispatch_timeout_sec must be >= 0")
	}
	if c.Scheduler.Heartbeat.Interval != "" {
		if _, err := time.ParseDuration(c.Scheduler.Heartbeat.Interval); err != nil {
			return fmt.Errorf("scheduler.heartbeat.interval: %w", err)
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Output)) {
	case "", "stdout":
	case "file", "both":
		if strings.TrimSpace(c.Logging.File) == "" {
			return fmt.Errorf("logging.file is required when output is %q", c.Logging.Output)
		}
	default:
		return fmt.Errorf("logging.output must be stdout, file, or both")
	}
	return nil
}

// HeartbeatInterval returns the parsed heartbeat period, or zero for the
// scheduler default.
func (c *Config) HeartbeatInterval() time.Duration {
	d, err := time.ParseDuration(c.Scheduler.Heartbeat.Interval)
	if err != nil {
		return 0
	}
	return d
}
