// File: transport/tcp/sender.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Producer side of the stream binding: dials one consumer endpoint and
// streams a fixed item sequence to it, one text line per item.

package tcp

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/momentics/hioload-pipe/api"
	"github.com/momentics/hioload-pipe/control"
)

// ProducerConfig holds per-sender parameters.
type ProducerConfig struct {
	Host     string           // Consumer host
	Port     int              // Consumer port
	Count    int              // Number of items in the sequence
	Interval time.Duration    // Pacing delay applied before each sent item
	Sink     api.LogSink      // Log event callback (nil drops events)
	Metrics  *control.Metrics // Optional run counters
}

// Producer streams "Item 1".."Item N" to exactly one consumer.
type Producer struct {
	cfg  ProducerConfig
	conn net.Conn
}

// NewProducer prepares a sender; Connect dials the endpoint.
func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.Sink == nil {
		cfg.Sink = api.Discard
	}
	return &Producer{cfg: cfg}
}

// Connect opens the connection. No retry is attempted: the caller must
// ensure the listener is ready before producers start.
func (p *Producer) Connect() error {
	addr := net.JoinHostPort(p.cfg.Host, fmt.Sprintf("%d", p.cfg.Port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		if p.cfg.Metrics != nil {
			p.cfg.Metrics.SendErrors.Add(1)
		}
		p.cfg.Sink(fmt.Sprintf("producer error: %v", err))
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	p.conn = conn
	p.cfg.Sink(fmt.Sprintf("producer -> %s: connected", addr))
	return nil
}

// SendSequence writes the configured number of items, pacing each by the
// interval, then closes the connection so the consumer observes a clean
// end-of-stream. A write failure terminates the sequence; the connection
// is not reused afterwards.
func (p *Producer) SendSequence() error {
	if p.conn == nil {
		return api.ErrConnClosed
	}
	defer p.conn.Close()

	w := bufio.NewWriter(p.conn)
	for i := 1; i <= p.cfg.Count; i++ {
		time.Sleep(p.cfg.Interval)
		item := fmt.Sprintf("Item %d", i)
		if _, err := fmt.Fprintln(w, item); err != nil {
			return p.sendFailed(err)
		}
		// Flush per item so pacing is visible on the wire.
		if err := w.Flush(); err != nil {
			return p.sendFailed(err)
		}
		p.cfg.Sink(fmt.Sprintf("produced: %s", item))
		if p.cfg.Metrics != nil {
			p.cfg.Metrics.Produced.Add(1)
		}
	}
	return nil
}

func (p *Producer) sendFailed(err error) error {
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.SendErrors.Add(1)
	}
	p.cfg.Sink(fmt.Sprintf("producer error: %v", err))
	return fmt.Errorf("%w: %v", api.ErrConnClosed, err)
}
