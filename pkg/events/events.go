// Package events provides the append-only event log backing the rate limit
// gate. The gate's logic is stateless given this store; the concrete backend
// (SQL table, in-memory slice) owns durability and its own consistency
// guarantees.
package events

import (
	"context"
	"time"
)

// Event is one timestamped occurrence of an action by an identifier.
type Event struct {
	ID         int64     `json:"id"`
	Identifier string    `json:"identifier"`
	Action     string    `json:"action"`
	At         time.Time `json:"at"`
}

// EventStore is an append-only log with time-bounded counting.
// PurgeBefore is best-effort, global housekeeping: it may remove expired
// events for any key, and must never under-purge in a way that lets the log
// grow without bound.
type EventStore interface {
	Append(ctx context.Context, e Event) error
	CountSince(ctx context.Context, identifier, action string, since time.Time) (int, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) error
}
