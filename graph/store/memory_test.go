package store

import (
	"context"
	"testing"

	"github.com/flowgraph/flowgraph/graph/emit"
)

func TestMemStoreConstruction(t *testing.T) {
	ms := NewMemStore()
	if ms == nil {
		t.Fatal("NewMemStore returned nil")
	}
}

func TestMemStoreEnqueueAssignsDistinctIDs(t *testing.T) {
	ms := NewMemStore()
	ctx := context.Background()

	id1, err := ms.EnqueueEvent(ctx, emit.Event{NodeID: "a", Msg: "node_start"})
	if err != nil {
		t.Fatalf("EnqueueEvent: %v", err)
	}
	id2, err := ms.EnqueueEvent(ctx, emit.Event{NodeID: "b", Msg: "node_end"})
	if err != nil {
		t.Fatalf("EnqueueEvent: %v", err)
	}
	if id1 == "" || id2 == "" || id1 == id2 {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", id1, id2)
	}
}

func TestMemStorePendingEventsRespectsLimit(t *testing.T) {
	ms := NewMemStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := ms.EnqueueEvent(ctx, emit.Event{NodeID: "n", Msg: "node_start"}); err != nil {
			t.Fatalf("EnqueueEvent: %v", err)
		}
	}

	pending, err := ms.PendingEvents(ctx, 3)
	if err != nil {
		t.Fatalf("PendingEvents: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 events under limit, got %d", len(pending))
	}

	all, err := ms.PendingEvents(ctx, 0)
	if err != nil {
		t.Fatalf("PendingEvents: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected all 5 events with limit=0, got %d", len(all))
	}
}

func TestMemStoreMarkEventsEmittedRetiresOnlyNamedEvents(t *testing.T) {
	ms := NewMemStore()
	ctx := context.Background()

	id1, _ := ms.EnqueueEvent(ctx, emit.Event{NodeID: "a", Msg: "node_start"})
	id2, _ := ms.EnqueueEvent(ctx, emit.Event{NodeID: "b", Msg: "node_end"})

	if err := ms.MarkEventsEmitted(ctx, []string{id1}); err != nil {
		t.Fatalf("MarkEventsEmitted: %v", err)
	}

	pending, err := ms.PendingEvents(ctx, 10)
	if err != nil {
		t.Fatalf("PendingEvents: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 remaining pending event, got %d", len(pending))
	}
	if got, _ := pending[0].Meta["event_id"].(string); got != id2 {
		t.Fatalf("expected remaining event to be %q, got %q", id2, got)
	}
}

func TestMemStoreMarkEventsEmittedUnknownIDIsNoop(t *testing.T) {
	ms := NewMemStore()
	ctx := context.Background()

	_, _ = ms.EnqueueEvent(ctx, emit.Event{NodeID: "a", Msg: "node_start"})
	if err := ms.MarkEventsEmitted(ctx, []string{"does-not-exist"}); err != nil {
		t.Fatalf("MarkEventsEmitted with unknown id should be a no-op, got err: %v", err)
	}

	pending, _ := ms.PendingEvents(ctx, 10)
	if len(pending) != 1 {
		t.Fatalf("expected the original event to survive an unknown-id retire, got %d pending", len(pending))
	}
}

func TestMemStoreMarkEventsEmittedEmptyListIsNoop(t *testing.T) {
	ms := NewMemStore()
	if err := ms.MarkEventsEmitted(context.Background(), nil); err != nil {
		t.Fatalf("expected empty id list to be a no-op, got %v", err)
	}
}
