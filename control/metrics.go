// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime counters and probes for pipeline runs. Counters are updated
// by actors on the hot path; probes are registered by facades to expose
// derived state (buffer occupancy, open connections) on demand.

package control

import (
	"sync"
	"sync/atomic"
)

// Metrics aggregates per-run counters.
type Metrics struct {
	Produced   atomic.Int64 // items successfully inserted or sent
	Consumed   atomic.Int64 // items successfully removed or received
	Rejected   atomic.Int64 // operations rejected after stop
	SendErrors atomic.Int64 // stream write/connect failures
	RecvErrors atomic.Int64 // stream read/accept failures

	mu     sync.RWMutex
	probes map[string]func() any
}

// NewMetrics creates an empty registry.
func NewMetrics() *Metrics {
	return &Metrics{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named hook evaluated at snapshot time.
func (m *Metrics) RegisterProbe(name string, fn func() any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes[name] = fn
}

// Snapshot returns counters plus the output of all probes.
func (m *Metrics) Snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[string]any{
		"produced":    m.Produced.Load(),
		"consumed":    m.Consumed.Load(),
		"rejected":    m.Rejected.Load(),
		"send_errors": m.SendErrors.Load(),
		"recv_errors": m.RecvErrors.Load(),
	}
	for k, fn := range m.probes {
		out[k] = fn()
	}
	return out
}
