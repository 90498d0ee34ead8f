package emit

// Event represents an observability event emitted during workflow execution.
//
// Events provide detailed insight into workflow behavior:
//   - Node execution start/complete
//   - State changes and transitions
//   - Errors and warnings
//   - Performance metrics
//
// Events are emitted to an Emitter which can:
//   - Log to stdout/stderr
//   - Send to OpenTelemetry
//   - Store in time-series databases
//   - Trigger alerts
type Event struct {
	// RunID identifies the workflow execution that emitted this event.
	RunID string

	// Step is the sequential step number in the workflow (1-indexed).
	// graph.DebugCapture numbers every event it records, workflow-level
	// ones included.
	Step int

	// NodeID identifies which node emitted this event.
	// Empty string for workflow-level events.
	NodeID string

	// Msg is a human-readable description of the event.
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "duration_ms": Execution duration in milliseconds
	//   - "error": Error details
	//   - "tokens": Token count for LLM calls
	//   - "was_bypassed": Whether the node was auto-bypassed
	Meta map[string]interface{}
}

// Lifecycle message tags used as Event.Msg. These are the debug-pipeline
// event types a graph invocation produces: two graph-wide bookends and
// three per-node events.
const (
	MsgGraphStart = "graph_start"
	MsgGraphEnd   = "graph_end"
	MsgNodeStart  = "node_start"
	MsgNodeEnd    = "node_end"
	MsgNodeError  = "node_error"
)
