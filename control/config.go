// File: control/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Run configuration for both pipeline bindings. Values are immutable per
// run; the core assumes a validated configuration and does not re-check.

package control

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/momentics/hioload-pipe/api"
)

// Config holds parameters for one simulation run.
type Config struct {
	Capacity  int `yaml:"capacity"`  // Bounded buffer capacity (in-process binding)
	Producers int `yaml:"producers"` // Number of producer actors
	Consumers int `yaml:"consumers"` // Number of consumer actors

	ProduceRate float64 `yaml:"produce_rate"` // Items per second, per producer
	ConsumeRate float64 `yaml:"consume_rate"` // Items per second, per consumer

	Host             string `yaml:"host"`               // Stream binding: listener host
	BasePort         int    `yaml:"base_port"`          // Consumer i listens on BasePort+i
	ItemsPerProducer int    `yaml:"items_per_producer"` // Stream binding: sequence length
}

// DefaultConfig returns defaults matching a small interactive run.
func DefaultConfig() *Config {
	return &Config{
		Capacity:         5,
		Producers:        1,
		Consumers:        1,
		ProduceRate:      1.0,
		ConsumeRate:      1.0,
		Host:             "localhost",
		BasePort:         5000,
		ItemsPerProducer: 5,
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects non-positive counts, rates, and ports before any actor
// starts.
func (c *Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be positive, got %d", api.ErrInvalidConfig, c.Capacity)
	}
	if c.Producers < 1 {
		return fmt.Errorf("%w: producers must be positive, got %d", api.ErrInvalidConfig, c.Producers)
	}
	if c.Consumers < 1 {
		return fmt.Errorf("%w: consumers must be positive, got %d", api.ErrInvalidConfig, c.Consumers)
	}
	if c.ProduceRate <= 0 {
		return fmt.Errorf("%w: produce_rate must be positive, got %v", api.ErrInvalidConfig, c.ProduceRate)
	}
	if c.ConsumeRate <= 0 {
		return fmt.Errorf("%w: consume_rate must be positive, got %v", api.ErrInvalidConfig, c.ConsumeRate)
	}
	if c.BasePort < 1 || c.BasePort > 65535 {
		return fmt.Errorf("%w: base_port out of range, got %d", api.ErrInvalidConfig, c.BasePort)
	}
	if c.ItemsPerProducer < 1 {
		return fmt.Errorf("%w: items_per_producer must be positive, got %d", api.ErrInvalidConfig, c.ItemsPerProducer)
	}
	return nil
}

// ProduceInterval converts the production rate into the pacing delay
// (1000/rate milliseconds).
func (c *Config) ProduceInterval() time.Duration {
	return rateInterval(c.ProduceRate)
}

// ConsumeInterval converts the consumption rate into the pacing delay.
func (c *Config) ConsumeInterval() time.Duration {
	return rateInterval(c.ConsumeRate)
}

func rateInterval(perSecond float64) time.Duration {
	return time.Duration(1000/perSecond) * time.Millisecond
}
