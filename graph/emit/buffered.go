package emit

import (
	"context"
	"sync"
)

// BufferedEmitter stores events in memory, keyed by RunID, and exposes
// query methods over the buffered history. Useful in tests and for
// development dashboards; unbounded, so production deployments with
// long-running or high-volume graphs should prefer a durable backend
// (graph/store's EventLogEmitter) or add rotation on top.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // RunID -> events
}

// HistoryFilter narrows GetHistoryWithFilter's results. All set fields are
// ANDed together; the zero value matches everything.
type HistoryFilter struct {
	NodeID  string
	Msg     string
	MinStep *int
	MaxStep *int
}

// NewBufferedEmitter returns an empty, concurrency-safe BufferedEmitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{
		events: make(map[string][]Event),
	}
}

// Emit appends event to its run's history.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.RunID] = append(b.events[event.RunID], event)
}

// EmitBatch appends each event in order.
func (b *BufferedEmitter) EmitBatch(_ context.Context, events []Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, event := range events {
		b.events[event.RunID] = append(b.events[event.RunID], event)
	}
	return nil
}

// Flush is a no-op: Emit/EmitBatch writes are already visible to GetHistory.
func (b *BufferedEmitter) Flush(_ context.Context) error { return nil }

// GetHistory returns a copy of every event recorded for runID, in emission
// order (empty, not nil, if none exist).
func (b *BufferedEmitter) GetHistory(runID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[runID]
	result := make([]Event, len(events))
	copy(result, events)
	return result
}

// GetHistoryWithFilter returns a copy of runID's events matching filter, in
// emission order.
func (b *BufferedEmitter) GetHistoryWithFilter(runID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[runID]
	if filter.NodeID == "" && filter.Msg == "" && filter.MinStep == nil && filter.MaxStep == nil {
		result := make([]Event, len(events))
		copy(result, events)
		return result
	}

	result := make([]Event, 0, len(events))
	for _, event := range events {
		if b.matchesFilter(event, filter) {
			result = append(result, event)
		}
	}
	return result
}

func (b *BufferedEmitter) matchesFilter(event Event, filter HistoryFilter) bool {
	if filter.NodeID != "" && event.NodeID != filter.NodeID {
		return false
	}
	if filter.Msg != "" && event.Msg != filter.Msg {
		return false
	}
	if filter.MinStep != nil && event.Step < *filter.MinStep {
		return false
	}
	if filter.MaxStep != nil && event.Step > *filter.MaxStep {
		return false
	}
	return true
}

// Clear removes runID's history, or every run's history if runID is empty.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if runID == "" {
		b.events = make(map[string][]Event)
	} else {
		delete(b.events, runID)
	}
}
