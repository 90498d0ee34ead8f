package store

import (
	"context"
	"sync"

	"github.com/flowgraph/flowgraph/graph/emit"
	"github.com/google/uuid"
)

// MemStore is an in-memory EventStore. It queues debug events in a
// process-local slice, making it useful for tests and single-process
// development — anywhere a durable outbox isn't worth the operational
// cost of SQLite or MySQL.
//
// MemStore is thread-safe. Data is lost when the process exits.
type MemStore struct {
	mu            sync.RWMutex
	pendingEvents []emit.Event
	eventIDSet    map[string]int
}

// NewMemStore creates a new in-memory event outbox.
func NewMemStore() *MemStore {
	return &MemStore{
		pendingEvents: make([]emit.Event, 0),
		eventIDSet:    make(map[string]int),
	}
}

// EnqueueEvent appends event to the pending outbox, stamping a fresh
// event_id into its Meta so a later MarkEventsEmitted call can retire
// it. It adapts MemStore into an emit.Emitter backend for the debug
// pipeline (see graph/store/emitter.go).
func (m *MemStore) EnqueueEvent(_ context.Context, event emit.Event) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	meta := make(map[string]interface{}, len(event.Meta)+1)
	for k, v := range event.Meta {
		meta[k] = v
	}
	meta["event_id"] = id
	event.Meta = meta

	m.eventIDSet[id] = len(m.pendingEvents)
	m.pendingEvents = append(m.pendingEvents, event)
	return id, nil
}

// PendingEvents returns up to limit events that haven't been marked emitted.
func (m *MemStore) PendingEvents(_ context.Context, limit int) ([]emit.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := len(m.pendingEvents)
	if limit > 0 && limit < count {
		count = limit
	}

	result := make([]emit.Event, count)
	copy(result, m.pendingEvents[:count])
	return result, nil
}

// MarkEventsEmitted removes the named events from the pending queue.
// Event ids are read from each event's Meta["event_id"]. Unknown ids
// are silently ignored (idempotent).
func (m *MemStore) MarkEventsEmitted(_ context.Context, eventIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(eventIDs) == 0 {
		return nil
	}

	toRemove := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		toRemove[id] = true
	}

	filtered := make([]emit.Event, 0, len(m.pendingEvents))
	newEventIDSet := make(map[string]int)
	for _, event := range m.pendingEvents {
		eventID := ""
		if event.Meta != nil {
			if id, ok := event.Meta["event_id"].(string); ok {
				eventID = id
			}
		}
		if !toRemove[eventID] {
			newEventIDSet[eventID] = len(filtered)
			filtered = append(filtered, event)
		}
	}

	m.pendingEvents = filtered
	m.eventIDSet = newEventIDSet
	return nil
}
