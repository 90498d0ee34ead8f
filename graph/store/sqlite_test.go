package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/flowgraph/flowgraph/graph/emit"
)

// newTestSQLiteStore creates an in-memory SQLite event outbox for testing.
func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return store
}

func TestSQLiteStoreOutboxEmptyReturnsNoEvents(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	defer store.Close()

	events, err := store.PendingEvents(ctx, 10)
	if err != nil {
		t.Fatalf("PendingEvents failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected 0 pending events, got %d", len(events))
	}
}

func TestSQLiteStoreEnqueuePendingMarkCycle(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	defer store.Close()

	id1, err := store.EnqueueEvent(ctx, emitEvent("run-001", "step_start"))
	if err != nil {
		t.Fatalf("EnqueueEvent: %v", err)
	}
	id2, err := store.EnqueueEvent(ctx, emitEvent("run-001", "step_end"))
	if err != nil {
		t.Fatalf("EnqueueEvent: %v", err)
	}
	id3, err := store.EnqueueEvent(ctx, emitEvent("run-002", "checkpoint"))
	if err != nil {
		t.Fatalf("EnqueueEvent: %v", err)
	}

	events, err := store.PendingEvents(ctx, 10)
	if err != nil {
		t.Fatalf("PendingEvents failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 pending events, got %d", len(events))
	}

	limited, err := store.PendingEvents(ctx, 2)
	if err != nil {
		t.Fatalf("PendingEvents (limit=2) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 events with limit=2, got %d", len(limited))
	}

	if err := store.MarkEventsEmitted(ctx, []string{id1, id2}); err != nil {
		t.Fatalf("MarkEventsEmitted failed: %v", err)
	}

	events, err = store.PendingEvents(ctx, 10)
	if err != nil {
		t.Fatalf("PendingEvents (after marking) failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 pending event after marking 2 as emitted, got %d", len(events))
	}

	// Idempotent re-mark of an already-emitted id is a no-op.
	if err := store.MarkEventsEmitted(ctx, []string{id1}); err != nil {
		t.Fatalf("MarkEventsEmitted (idempotent) failed: %v", err)
	}
	if err := store.MarkEventsEmitted(ctx, []string{}); err != nil {
		t.Fatalf("MarkEventsEmitted (empty) failed: %v", err)
	}
	if err := store.MarkEventsEmitted(ctx, []string{id3}); err != nil {
		t.Fatalf("MarkEventsEmitted (id3) failed: %v", err)
	}

	events, err = store.PendingEvents(ctx, 10)
	if err != nil {
		t.Fatalf("PendingEvents (final) failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected 0 pending events after marking all, got %d", len(events))
	}
}

func TestSQLiteStoreConcurrentEnqueue(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	defer store.Close()

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := store.EnqueueEvent(ctx, emitEvent(fmt.Sprintf("run-%03d", n), "step_start")); err != nil {
				errs <- fmt.Errorf("writer %d: EnqueueEvent failed: %w", n, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	events, err := store.PendingEvents(ctx, writers+1)
	if err != nil {
		t.Fatalf("PendingEvents: %v", err)
	}
	if len(events) != writers {
		t.Errorf("expected %d events from concurrent writers, got %d", writers, len(events))
	}
}

func TestSQLiteStoreCloseAndReopenPersistsOutbox(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store1, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if _, err := store1.EnqueueEvent(ctx, emitEvent("run-001", "step_start")); err != nil {
		t.Fatalf("EnqueueEvent failed: %v", err)
	}
	if err := store1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store2, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore (reopen) failed: %v", err)
	}
	defer store2.Close()

	events, err := store2.PendingEvents(ctx, 10)
	if err != nil {
		t.Fatalf("PendingEvents after reopen failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected the enqueued event to survive reopen, got %d", len(events))
	}
}

func TestSQLiteStoreClosedStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := store.EnqueueEvent(ctx, emitEvent("run-001", "step_start")); err == nil {
		t.Error("expected EnqueueEvent to fail on closed store")
	}
	if _, err := store.PendingEvents(ctx, 10); err == nil {
		t.Error("expected PendingEvents to fail on closed store")
	}
	if err := store.MarkEventsEmitted(ctx, []string{"x"}); err == nil {
		t.Error("expected MarkEventsEmitted to fail on closed store")
	}
	if err := store.Ping(ctx); err == nil {
		t.Error("expected Ping to fail on closed store")
	}

	// Close is idempotent.
	if err := store.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestSQLiteStorePath(t *testing.T) {
	store := newTestSQLiteStore(t)
	defer store.Close()

	if store.Path() != ":memory:" {
		t.Errorf("expected Path() to report the store's dsn, got %q", store.Path())
	}
}

func TestSQLiteStoreInterfaceCompliance(t *testing.T) {
	var _ EventStore = (*SQLiteStore)(nil)
}

func emitEvent(runID, msg string) emit.Event {
	return emit.Event{RunID: runID, Step: 1, NodeID: "n", Msg: msg, Meta: map[string]interface{}{}}
}
