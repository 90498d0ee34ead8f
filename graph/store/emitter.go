package store

import (
	"context"

	"github.com/flowgraph/flowgraph/graph/emit"
)

// EventLogEmitter adapts an EventStore's transactional outbox
// (SQLiteStore, MySQLStore, or MemStore) into an emit.Emitter, so debug
// events can be durably queued to a database instead of only reaching
// the caller's stream and an in-process log. It is a backend for
// DebugConfig.Backend — the graph engine itself persists no execution
// state (§1's non-goal); this is purely the debug/event log.
type EventLogEmitter struct {
	store EventStore
}

// NewEventLogEmitter wraps any EventStore implementation as an emit.Emitter.
func NewEventLogEmitter(store EventStore) *EventLogEmitter {
	return &EventLogEmitter{store: store}
}

// Emit enqueues a single event, best-effort: EnqueueEvent failures are
// swallowed since the debug pipeline must never perturb graph execution.
func (e *EventLogEmitter) Emit(event emit.Event) {
	_, _ = e.store.EnqueueEvent(context.Background(), event)
}

// EmitBatch enqueues each event in turn, returning the first error
// encountered (if any) after attempting every event.
func (e *EventLogEmitter) EmitBatch(ctx context.Context, events []emit.Event) error {
	var firstErr error
	for _, ev := range events {
		if _, err := e.store.EnqueueEvent(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Flush is a no-op: each EnqueueEvent call has already handed its event
// to the store by the time it returns.
func (e *EventLogEmitter) Flush(_ context.Context) error { return nil }
