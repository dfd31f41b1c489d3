// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

package control

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/momentics/hioload-pipe/api"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Capacity = 0 },
		func(c *Config) { c.Producers = 0 },
		func(c *Config) { c.Consumers = -1 },
		func(c *Config) { c.ProduceRate = 0 },
		func(c *Config) { c.ConsumeRate = -2.5 },
		func(c *Config) { c.BasePort = 0 },
		func(c *Config) { c.BasePort = 70000 },
		func(c *Config) { c.ItemsPerProducer = 0 },
	}
	for i, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("case %d: expected validation error", i)
			continue
		}
		if !errors.Is(err, api.ErrInvalidConfig) {
			t.Errorf("case %d: error not ErrInvalidConfig: %v", i, err)
		}
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("capacity: 8\nproducers: 3\nconsume_rate: 4.0\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Capacity != 8 || cfg.Producers != 3 {
		t.Fatalf("Overrides not applied: %+v", cfg)
	}
	if cfg.Consumers != 1 {
		t.Fatalf("Default lost: consumers=%d", cfg.Consumers)
	}
	if got := cfg.ConsumeInterval(); got != 250*time.Millisecond {
		t.Fatalf("ConsumeInterval: want 250ms, got %v", got)
	}
}

func TestRateIntervalMatchesSpeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProduceRate = 2.0
	if got := cfg.ProduceInterval(); got != 500*time.Millisecond {
		t.Fatalf("ProduceInterval: want 500ms, got %v", got)
	}
}

func TestMetricsSnapshotIncludesProbes(t *testing.T) {
	m := NewMetrics()
	m.Produced.Add(3)
	m.RegisterProbe("occupancy", func() any { return 2 })
	snap := m.Snapshot()
	if snap["produced"].(int64) != 3 {
		t.Fatalf("produced counter missing: %v", snap)
	}
	if snap["occupancy"].(int) != 2 {
		t.Fatalf("probe missing: %v", snap)
	}
}
