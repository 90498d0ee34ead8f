package nodes

import (
	"context"

	"github.com/flowgraph/flowgraph/graph"
)

func init() {
	graph.RegisterNodeType(graph.TypeSendMessage, func() graph.Runtime { return &sendMessageRuntime{} })
}

// sendMessageRuntime publishes its bound message as a content event
// (so it streams to the caller immediately, like any other node's
// content) and folds any bound handle_send_extra payload into the
// terminal event's value, so a downstream `inner` host can recover it
// as part of handle_execution_extras.
type sendMessageRuntime struct{}

func (sendMessageRuntime) Configure(string, map[string]any) error { return nil }
func (sendMessageRuntime) Iterate() bool                          { return false }

func (sendMessageRuntime) Run(_ context.Context, rc *graph.RunContext) <-chan graph.Event {
	out := make(chan graph.Event, 2)
	defer close(out)

	message, _ := rc.Input(graph.HandleUserMessage)
	if s, ok := message.(string); ok && s != "" {
		out <- graph.NewEvent(graph.ContentSourceType, rc.NodeID, s)
	}

	extra, _ := rc.Input(graph.HandleSendExtra)
	out <- graph.NewEvent(graph.EndSourceType, rc.NodeID, map[string]any{
		"message": message,
		"extra":   extra,
	})
	return out
}
