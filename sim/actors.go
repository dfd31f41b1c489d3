// File: sim/actors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Actor loops for the in-process binding: thin producer and consumer
// goroutines over one shared bounded buffer. Both loops exit promptly on
// the stop signal, including while paused between operations, and treat a
// rejected buffer operation as the end of the run rather than as data.

package sim

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/valyala/fastrand"

	"github.com/momentics/hioload-pipe/api"
	"github.com/momentics/hioload-pipe/control"
	"github.com/momentics/hioload-pipe/core/buffer"
)

// itemValueBound caps produced payload values, matching the production
// model of bounded random integers.
const itemValueBound = 100

// RunProducer inserts randomly valued items until the buffer is stopped
// or the stop channel closes. seq is shared across producers so sequence
// numbers stay globally monotonic.
func RunProducer(
	b *buffer.BoundedBuffer[api.Item],
	seq *atomic.Uint64,
	interval time.Duration,
	stop <-chan struct{},
	sink api.LogSink,
	m *control.Metrics,
) {
	if sink == nil {
		sink = api.Discard
	}
	for {
		item := api.Item{
			Seq:   seq.Add(1),
			Value: int(fastrand.Uint32n(itemValueBound)),
		}
		sink(fmt.Sprintf("producing: %v", item))
		if err := b.Insert(item); err != nil {
			if m != nil {
				m.Rejected.Add(1)
			}
			return
		}
		if m != nil {
			m.Produced.Add(1)
		}
		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
	}
}

// RunConsumer removes items until the buffer is stopped or the stop
// channel closes. A rejection is a loop exit, never a valid item.
func RunConsumer(
	b *buffer.BoundedBuffer[api.Item],
	interval time.Duration,
	stop <-chan struct{},
	m *control.Metrics,
) {
	for {
		if _, err := b.Remove(); err != nil {
			if m != nil {
				m.Rejected.Add(1)
			}
			return
		}
		if m != nil {
			m.Consumed.Add(1)
		}
		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
	}
}
