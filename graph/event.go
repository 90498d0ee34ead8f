package graph

// EndSourceType is the canonical terminal source_type produced by a node.
// DefaultSourceType is its alias; the two are interchangeable everywhere
// an event's source_type is matched.
const (
	EndSourceType     = "end"
	DefaultSourceType = "default"

	// ContentSourceType tags user-visible streaming chunks and
	// per-loop-iteration items — the loop node's "item" output uses
	// this same source_type, so its edges are content edges like any
	// other streamed chunk.
	ContentSourceType = "content"

	// VoidTargetKey is the reserved input key on the sink node.
	VoidTargetKey = "void"
)

// isTerminal reports whether sourceType names the canonical final event,
// treating "end" and "default" as aliases.
func isTerminal(sourceType string) bool {
	return sourceType == EndSourceType || sourceType == DefaultSourceType
}

// Payload is the value carried by an Event: which node produced it, and
// the data itself.
type Payload struct {
	ProducerID string
	Value      any
}

// Event is the typed envelope a node emits while it runs. A node produces
// a finite, ordered sequence of Events and then stops; exactly one Event
// per invocation should carry a terminal source_type ("end"/"default"),
// unless the node is designed to emit multiple distinct typed outputs
// (the entry user_input node, or a conditional's branch selection).
type Event struct {
	SourceType string
	Payload    Payload
}

// NewEvent builds an Event carrying value produced by producerID under sourceType.
func NewEvent(sourceType, producerID string, value any) Event {
	return Event{
		SourceType: sourceType,
		Payload:    Payload{ProducerID: producerID, Value: value},
	}
}
