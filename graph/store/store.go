// Package store provides durable backends for the debug/event pipeline's
// transactional outbox.
package store

import (
	"context"

	"github.com/flowgraph/flowgraph/graph/emit"
)

// EventStore is the transactional-outbox contract a debug backend needs:
// durably queue an event, list what's still pending delivery, and retire
// delivered events. It backs EventLogEmitter (graph/store/emitter.go),
// which adapts any EventStore into an emit.Emitter for DebugConfig.Backend.
//
// Graph execution state itself is never persisted here — §1's non-goal
// excludes resuming a run from a prior checkpoint, so EventStore carries
// only the debug/event log, not node outputs or execution frontiers.
type EventStore interface {
	// EnqueueEvent durably queues event and returns an id a later
	// MarkEventsEmitted call can use to retire it.
	EnqueueEvent(ctx context.Context, event emit.Event) (string, error)

	// PendingEvents returns up to limit events that haven't been marked
	// emitted yet, ordered by insertion order.
	PendingEvents(ctx context.Context, limit int) ([]emit.Event, error)

	// MarkEventsEmitted retires the given event ids so PendingEvents
	// stops returning them. Unknown ids are silently ignored.
	MarkEventsEmitted(ctx context.Context, eventIDs []string) error
}
