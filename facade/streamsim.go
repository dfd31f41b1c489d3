// File: facade/streamsim.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// StreamSim aggregates the networked binding: one listener per consumer
// on basePort+index, producers assigned round-robin to consumer ports.
// All listeners are bound before any producer dials, replacing the
// fixed startup delay with an explicit ready point: NewStreamSim's Start
// returns only after every Listen has succeeded.

package facade

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/momentics/hioload-pipe/api"
	"github.com/momentics/hioload-pipe/control"
	"github.com/momentics/hioload-pipe/internal/logbus"
	"github.com/momentics/hioload-pipe/transport/tcp"
)

// StreamSim is the networked simulation facade.
type StreamSim struct {
	cfg     *control.Config
	bus     *logbus.Bus
	metrics *control.Metrics
	runID   string

	consumers []*tcp.Consumer
	wg        sync.WaitGroup

	errMu    sync.Mutex
	firstErr error

	mu      sync.Mutex
	started bool
	done    bool
}

// Ensure compliance with api.GracefulShutdown.
var _ api.GracefulShutdown = (*StreamSim)(nil)

// NewStreamSim validates the configuration and builds all components.
func NewStreamSim(cfg *control.Config, sink api.LogSink) (*StreamSim, error) {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &StreamSim{
		cfg:     cfg,
		bus:     logbus.New(sink),
		metrics: control.NewMetrics(),
		runID:   uuid.NewString(),
	}, nil
}

// RunID identifies this run in log events and snapshots.
func (s *StreamSim) RunID() string { return s.runID }

// Metrics exposes the run counters and probes.
func (s *StreamSim) Metrics() *control.Metrics { return s.metrics }

// pairings returns how many producers dial consumer index i under
// round-robin assignment basePort + (producerIndex mod consumerCount).
func (s *StreamSim) pairings(i int) int {
	n := s.cfg.Producers / s.cfg.Consumers
	if i < s.cfg.Producers%s.cfg.Consumers {
		n++
	}
	return n
}

// Start binds every consumer listener, then launches all receive loops
// and producer senders. It returns once all actors are running; Wait
// blocks until the run completes.
func (s *StreamSim) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.bus.Publish(fmt.Sprintf("run %s: %d producers, %d consumers, base port %d",
		s.runID, s.cfg.Producers, s.cfg.Consumers, s.cfg.BasePort))

	// Bind all listeners first so no producer can dial a cold port.
	for i := 0; i < s.cfg.Consumers; i++ {
		c := tcp.NewConsumer(tcp.ConsumerConfig{
			Host:     s.cfg.Host,
			Port:     s.cfg.BasePort + i,
			Pairings: s.pairings(i),
			Interval: s.cfg.ConsumeInterval(),
			Sink:     s.bus.Publish,
			Metrics:  s.metrics,
		})
		if err := c.Listen(); err != nil {
			for _, prev := range s.consumers {
				prev.Close()
			}
			s.bus.Close()
			return err
		}
		s.consumers = append(s.consumers, c)
	}

	for i, c := range s.consumers {
		// Consumers with no assigned producer never see a connection;
		// release their port instead of parking Serve in Accept forever.
		if s.pairings(i) == 0 {
			c.Close()
			continue
		}
		s.wg.Add(1)
		go func(c *tcp.Consumer) {
			defer s.wg.Done()
			s.record(c.Serve())
		}(c)
	}

	for i := 0; i < s.cfg.Producers; i++ {
		port := s.cfg.BasePort + i%s.cfg.Consumers
		s.wg.Add(1)
		go func(port int) {
			defer s.wg.Done()
			p := tcp.NewProducer(tcp.ProducerConfig{
				Host:     s.cfg.Host,
				Port:     port,
				Count:    s.cfg.ItemsPerProducer,
				Interval: s.cfg.ProduceInterval(),
				Sink:     s.bus.Publish,
				Metrics:  s.metrics,
			})
			if err := p.Connect(); err != nil {
				s.record(err)
				return
			}
			s.record(p.SendSequence())
		}(port)
	}

	s.started = true
	return nil
}

// Wait blocks until every producer sequence is exhausted and every
// consumer observed end-of-stream, then reports the first actor error.
func (s *StreamSim) Wait() error {
	s.wg.Wait()
	s.bus.Publish(fmt.Sprintf("run %s: complete", s.runID))
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.firstErr
}

// Shutdown force-closes every listener and live connection, waits for
// actors to exit, and flushes the log hub. Idempotent.
func (s *StreamSim) Shutdown() error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	s.mu.Unlock()

	for _, c := range s.consumers {
		c.Close()
	}
	s.wg.Wait()
	s.bus.Close()
	return nil
}

func (s *StreamSim) record(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	if s.firstErr == nil {
		s.firstErr = err
	}
	s.errMu.Unlock()
}
