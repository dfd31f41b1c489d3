// File: api/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "fmt"

// Item is the opaque unit of work moved from producer to consumer.
// Seq is a monotonically increasing production sequence number used only
// for logging and verification; Value carries the payload.
type Item struct {
	Seq   uint64
	Value int
}

// String renders the item for log events.
func (i Item) String() string {
	return fmt.Sprintf("item %d (seq %d)", i.Value, i.Seq)
}

// LogSink receives one log event per call. Implementations must be safe
// for concurrent use from any actor; fire-and-forget, no error surface.
// Ordering across actors is best-effort.
type LogSink func(message string)

// Discard is a LogSink that drops every event.
func Discard(string) {}
