// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown unifies teardown across components. Shutdown must be
// idempotent and must not leave any actor permanently blocked.
type GracefulShutdown interface {
	Shutdown() error
}
