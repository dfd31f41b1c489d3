// File: facade/buffersim.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BufferSim aggregates the in-process binding behind a single facade:
// one bounded buffer, N producer and M consumer goroutines, the log hub,
// and run metrics. Start spawns the actors; Shutdown stops the buffer,
// wakes every blocked actor, waits for them to drain, and flushes the
// log hub.

package facade

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/momentics/hioload-pipe/api"
	"github.com/momentics/hioload-pipe/control"
	"github.com/momentics/hioload-pipe/core/buffer"
	"github.com/momentics/hioload-pipe/internal/logbus"
	"github.com/momentics/hioload-pipe/sim"
)

// BufferSim is the in-process simulation facade.
type BufferSim struct {
	cfg     *control.Config
	bus     *logbus.Bus
	metrics *control.Metrics
	buf     *buffer.BoundedBuffer[api.Item]
	runID   string

	seq    atomic.Uint64
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	done    bool
}

// Ensure compliance with api.GracefulShutdown.
var _ api.GracefulShutdown = (*BufferSim)(nil)

// NewBufferSim validates the configuration and builds all components.
// The sink receives every log event of the run.
func NewBufferSim(cfg *control.Config, sink api.LogSink) (*BufferSim, error) {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &BufferSim{
		cfg:     cfg,
		bus:     logbus.New(sink),
		metrics: control.NewMetrics(),
		runID:   uuid.NewString(),
		stopCh:  make(chan struct{}),
	}
	s.buf = buffer.New[api.Item](cfg.Capacity, s.bus.Publish)
	s.metrics.RegisterProbe("occupancy", func() any { return s.buf.Len() })
	return s, nil
}

// RunID identifies this run in log events and snapshots.
func (s *BufferSim) RunID() string { return s.runID }

// Metrics exposes the run counters and probes.
func (s *BufferSim) Metrics() *control.Metrics { return s.metrics }

// Start spawns the configured producer and consumer goroutines.
// Subsequent calls have no effect.
func (s *BufferSim) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.bus.Publish(fmt.Sprintf("run %s: %d producers, %d consumers, capacity %d",
		s.runID, s.cfg.Producers, s.cfg.Consumers, s.cfg.Capacity))

	for i := 0; i < s.cfg.Producers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			sim.RunProducer(s.buf, &s.seq, s.cfg.ProduceInterval(), s.stopCh, s.bus.Publish, s.metrics)
		}()
	}
	for i := 0; i < s.cfg.Consumers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			sim.RunConsumer(s.buf, s.cfg.ConsumeInterval(), s.stopCh, s.metrics)
		}()
	}
	s.started = true
	return nil
}

// Shutdown stops the buffer, unblocks every waiting actor, waits for all
// actor goroutines to exit, and flushes the log hub. Idempotent.
func (s *BufferSim) Shutdown() error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	s.mu.Unlock()

	s.buf.Stop()
	close(s.stopCh)
	s.wg.Wait()
	s.bus.Publish(fmt.Sprintf("run %s: complete", s.runID))
	s.bus.Close()
	return nil
}
