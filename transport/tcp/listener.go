// File: transport/tcp/listener.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Consumer side of the stream binding. A listener accepts a fixed number
// of producer pairings (one by default), then stops accepting. Each
// pairing is drained independently: newline-delimited items, one pacing
// delay per item. Items from one producer arrive in send order;
// interleaving between producers is unspecified.

package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/momentics/hioload-pipe/api"
	"github.com/momentics/hioload-pipe/control"
)

// ConsumerConfig holds per-listener parameters.
type ConsumerConfig struct {
	Host     string           // Interface to bind, e.g. "localhost"
	Port     int              // Listening port; 0 picks an ephemeral port
	Pairings int              // Producer connections to accept; 0 means 1
	Interval time.Duration    // Pacing delay applied before each consumed item
	Sink     api.LogSink      // Log event callback (nil drops events)
	Metrics  *control.Metrics // Optional run counters
}

// Consumer is a stream listener with a fixed connection budget.
type Consumer struct {
	cfg ConsumerConfig

	mu    sync.Mutex
	ln    net.Listener
	conns []net.Conn
}

// NewConsumer prepares a listener; Listen binds it.
func NewConsumer(cfg ConsumerConfig) *Consumer {
	if cfg.Sink == nil {
		cfg.Sink = api.Discard
	}
	if cfg.Pairings < 1 {
		cfg.Pairings = 1
	}
	return &Consumer{cfg: cfg}
}

// Listen binds the endpoint and logs readiness. Once Listen returns, a
// producer may connect; there is no fixed startup delay to race against.
func (c *Consumer) Listen() error {
	lc := net.ListenConfig{Control: reuseAddr}
	addr := net.JoinHostPort(c.cfg.Host, fmt.Sprintf("%d", c.cfg.Port))
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		if c.cfg.Metrics != nil {
			c.cfg.Metrics.RecvErrors.Add(1)
		}
		c.cfg.Sink(fmt.Sprintf("consumer error: %v", err))
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	c.mu.Lock()
	c.ln = ln
	c.mu.Unlock()
	c.cfg.Sink(fmt.Sprintf("consumer %s: waiting for connection", ln.Addr()))
	return nil
}

// Addr returns the bound address; nil before Listen.
func (c *Consumer) Addr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ln == nil {
		return nil
	}
	return c.ln.Addr()
}

// Serve accepts the configured number of producer connections and drains
// each until end-of-stream, then returns. A clean peer close counts as
// success for that pairing; a reset connection is logged as an error
// event. The first pairing error is returned after all pairings finish.
func (c *Consumer) Serve() error {
	c.mu.Lock()
	ln := c.ln
	c.mu.Unlock()
	if ln == nil {
		return api.ErrListenerClosed
	}

	var wg sync.WaitGroup
	errCh := make(chan error, c.cfg.Pairings)
	for i := 0; i < c.cfg.Pairings; i++ {
		conn, err := ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				if c.cfg.Metrics != nil {
					c.cfg.Metrics.RecvErrors.Add(1)
				}
				c.cfg.Sink(fmt.Sprintf("consumer error: %v", err))
				errCh <- fmt.Errorf("accept: %w", err)
			} else {
				errCh <- api.ErrListenerClosed
			}
			break
		}
		c.mu.Lock()
		c.conns = append(c.conns, conn)
		c.mu.Unlock()
		c.cfg.Sink(fmt.Sprintf("consumer %s: connection established", ln.Addr()))
		wg.Add(1)
		go func(conn net.Conn) {
			defer wg.Done()
			errCh <- c.drain(conn)
		}(conn)
	}
	// Connection budget reached: no reuse of the listening endpoint.
	ln.Close()
	wg.Wait()

	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// drain consumes one stream until end-of-stream or failure.
func (c *Consumer) drain(conn net.Conn) error {
	defer conn.Close()
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		// Consumption cost model: pause first, then report the item.
		time.Sleep(c.cfg.Interval)
		c.cfg.Sink(fmt.Sprintf("consumed: %s", sc.Text()))
		if c.cfg.Metrics != nil {
			c.cfg.Metrics.Consumed.Add(1)
		}
	}
	if err := sc.Err(); err != nil {
		if c.cfg.Metrics != nil {
			c.cfg.Metrics.RecvErrors.Add(1)
		}
		c.cfg.Sink(fmt.Sprintf("consumer error: %v", err))
		return fmt.Errorf("%w: %v", api.ErrConnClosed, err)
	}
	c.cfg.Sink("consumer: stream ended")
	return nil
}

// Close tears down the listener and all live connections, unblocking
// Serve. Terminal for every pairing; no reconnect is attempted.
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	if c.ln != nil {
		first = c.ln.Close()
	}
	for _, conn := range c.conns {
		if err := conn.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
