// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp implements the networked pipeline binding: one-shot listeners
// on the consumer side and dialing senders on the producer side, moving
// newline-delimited text items over a dedicated connection per pairing.
// Backpressure is implicit; flow control is the pacing delay plus the
// transport's own buffering.
package tcp
