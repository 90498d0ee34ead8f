package graph

import "fmt"

// ErrorKind classifies the structured errors the engine can surface. Every
// error produced anywhere in the engine is captured into a debug record
// rather than returned up the call stack — no exception escapes the
// executor (see EngineError).
type ErrorKind string

const (
	// KindSpecError marks a build-time validation failure (missing entry,
	// duplicate edges, nested-spec errors). Surfaced at graph start;
	// execution still proceeds.
	KindSpecError ErrorKind = "spec_error"

	// KindConfigError marks a malformed node configuration.
	KindConfigError ErrorKind = "config_error"

	// KindInputError marks a required input missing at execution time.
	KindInputError ErrorKind = "input_error"

	// KindTemplateError marks a template render failure.
	KindTemplateError ErrorKind = "template_error"

	// KindTransportError marks an HTTP/LLM call failure.
	KindTransportError ErrorKind = "transport_error"

	// KindDataError marks a JSON parse or type-check failure.
	KindDataError ErrorKind = "data_error"

	// KindRoutingError marks a conditional selecting a handle with no
	// matching outgoing edge.
	KindRoutingError ErrorKind = "routing_error"

	// KindDeadlock marks a scheduler that made no progress with edges
	// still pending.
	KindDeadlock ErrorKind = "deadlock"
)

// EngineError is the structured error record captured for every failure
// the engine observes. It never escapes the executor as a Go error
// returned from Executor.Run — it is instead folded into a debug event and
// yielded on the output stream.
type EngineError struct {
	Kind    ErrorKind
	NodeID  string
	Message string

	// Context carries contextual snapshot data: available input keys,
	// the offending template, configuration excerpts, and so on.
	Context map[string]any

	// Cause is the underlying error, if any.
	Cause error
}

func (e *EngineError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s: node %s: %s", e.Kind, e.NodeID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *EngineError) Unwrap() error { return e.Cause }

// NewEngineError constructs an EngineError with optional context.
func NewEngineError(kind ErrorKind, nodeID, message string, cause error, context map[string]any) *EngineError {
	return &EngineError{
		Kind:    kind,
		NodeID:  nodeID,
		Message: message,
		Context: context,
		Cause:   cause,
	}
}
