// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error values shared across hioload-pipe components.

package api

import "errors"

var (
	// ErrStopped indicates the bounded buffer was stopped while the caller
	// was waiting for a permit. The operation is rejected; no buffer state
	// was mutated on behalf of the caller.
	ErrStopped = errors.New("buffer stopped")

	// ErrListenerClosed indicates the one-shot listener was closed before
	// a peer connected.
	ErrListenerClosed = errors.New("listener closed")

	// ErrConnClosed indicates the stream connection was reset or closed
	// unexpectedly by the peer.
	ErrConnClosed = errors.New("connection closed")

	// ErrInvalidConfig indicates malformed run configuration. Surfaced by
	// the bootstrap layer before any actor starts.
	ErrInvalidConfig = errors.New("invalid configuration")
)
