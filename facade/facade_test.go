// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// facade_test.go — lifecycle tests for both simulation facades.

package facade

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-pipe/api"
	"github.com/momentics/hioload-pipe/control"
)

// eventLog collects every published event.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) sink(msg string) {
	l.mu.Lock()
	l.events = append(l.events, msg)
	l.mu.Unlock()
}

func (l *eventLog) count(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

func TestNewBufferSimRejectsBadConfig(t *testing.T) {
	cfg := control.DefaultConfig()
	cfg.Capacity = 0
	if _, err := NewBufferSim(cfg, nil); !errors.Is(err, api.ErrInvalidConfig) {
		t.Fatalf("want ErrInvalidConfig, got %v", err)
	}
}

func TestBufferSimLifecycle(t *testing.T) {
	cfg := control.DefaultConfig()
	cfg.Capacity = 5
	cfg.Producers = 3
	cfg.Consumers = 2
	cfg.ProduceRate = 1000
	cfg.ConsumeRate = 1000

	log := &eventLog{}
	s, err := NewBufferSim(cfg, log.sink)
	if err != nil {
		t.Fatalf("NewBufferSim failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		if err := s.Shutdown(); err != nil {
			t.Errorf("Shutdown failed: %v", err)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout: Shutdown did not drain actors")
	}
	if err := s.Shutdown(); err != nil {
		t.Fatalf("repeated Shutdown failed: %v", err)
	}

	m := s.Metrics()
	produced, consumed := m.Produced.Load(), m.Consumed.Load()
	if produced == 0 {
		t.Fatal("Nothing produced during the run")
	}
	if consumed > produced {
		t.Fatalf("Consumed %d exceeds produced %d", consumed, produced)
	}
	occ := m.Snapshot()["occupancy"].(int)
	if occ < 0 || occ > cfg.Capacity {
		t.Fatalf("Final occupancy out of bounds: %d", occ)
	}
	if log.count("produced: ") == 0 || log.count("consumed: ") == 0 {
		t.Fatal("Expected produced and consumed log events")
	}
}

func TestStreamSimEndToEnd(t *testing.T) {
	cfg := control.DefaultConfig()
	cfg.Producers = 1
	cfg.Consumers = 1
	cfg.ItemsPerProducer = 3
	cfg.Host = "127.0.0.1"
	cfg.BasePort = 46311
	cfg.ProduceRate = 200
	cfg.ConsumeRate = 200

	log := &eventLog{}
	s, err := NewStreamSim(cfg, log.sink)
	if err != nil {
		t.Fatalf("NewStreamSim failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitDone := make(chan error, 1)
	go func() { waitDone <- s.Wait() }()
	select {
	case err := <-waitDone:
		if err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Timeout: stream run did not complete")
	}
	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	m := s.Metrics()
	if got := m.Consumed.Load(); got != 3 {
		t.Fatalf("Consumed %d items, want 3", got)
	}
	if got := m.Produced.Load(); got != 3 {
		t.Fatalf("Produced %d items, want 3", got)
	}
	if log.count("consumed: Item ") != 3 {
		t.Fatalf("Expected 3 consumed events, log: %v", log.events)
	}
}

func TestStreamSimRoundRobinTwoProducersOneConsumer(t *testing.T) {
	cfg := control.DefaultConfig()
	cfg.Producers = 2
	cfg.Consumers = 1
	cfg.ItemsPerProducer = 2
	cfg.Host = "127.0.0.1"
	cfg.BasePort = 46337
	cfg.ProduceRate = 200
	cfg.ConsumeRate = 200

	s, err := NewStreamSim(cfg, nil)
	if err != nil {
		t.Fatalf("NewStreamSim failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitDone := make(chan error, 1)
	go func() { waitDone <- s.Wait() }()
	select {
	case err := <-waitDone:
		if err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Timeout: round-robin run did not complete")
	}
	defer s.Shutdown()

	if got := s.Metrics().Consumed.Load(); got != 4 {
		t.Fatalf("Consumed %d items, want union of both producers (4)", got)
	}
}

func TestStreamSimMoreConsumersThanProducers(t *testing.T) {
	cfg := control.DefaultConfig()
	cfg.Producers = 1
	cfg.Consumers = 2 // second consumer gets no producer and must not hang the run
	cfg.ItemsPerProducer = 2
	cfg.Host = "127.0.0.1"
	cfg.BasePort = 46361
	cfg.ProduceRate = 200
	cfg.ConsumeRate = 200

	s, err := NewStreamSim(cfg, nil)
	if err != nil {
		t.Fatalf("NewStreamSim failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitDone := make(chan error, 1)
	go func() { waitDone <- s.Wait() }()
	select {
	case err := <-waitDone:
		if err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Timeout: unpaired consumer blocked the run")
	}
	s.Shutdown()

	if got := s.Metrics().Consumed.Load(); got != 2 {
		t.Fatalf("Consumed %d items, want 2", got)
	}
}
