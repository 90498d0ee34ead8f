package emit

import "context"

// NullEmitter discards every event. Useful for disabling the debug pipeline
// without threading a nil check through call sites, or for benchmarks that
// want to isolate graph execution cost from emission cost.
type NullEmitter struct{}

// NewNullEmitter returns an Emitter that discards all events.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards event.
func (n *NullEmitter) Emit(event Event) {}

// EmitBatch discards events and always succeeds.
func (n *NullEmitter) EmitBatch(ctx context.Context, events []Event) error {
	return nil
}

// Flush is a no-op.
func (n *NullEmitter) Flush(ctx context.Context) error {
	return nil
}
