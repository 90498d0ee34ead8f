// Package emit provides event emission and observability for graph execution.
package emit

import "context"

// Emitter receives observability events produced during graph execution and
// forwards them to a backend (stdout, OpenTelemetry, Prometheus, a durable
// outbox, ...). Implementations must not block or panic: a slow or failing
// backend should buffer, drop-with-log, or go async rather than stall the
// graph that's feeding it.
type Emitter interface {
	// Emit sends a single event. Must not block or panic.
	Emit(event Event)

	// EmitBatch sends events in order, amortizing per-event overhead.
	// Returns an error only on catastrophic failure (e.g. misconfiguration);
	// individual event failures should be logged, not returned.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush blocks until buffered events are sent or ctx is done. Safe to
	// call more than once.
	Flush(ctx context.Context) error
}
