package graph

import "context"

func init() {
	RegisterNodeType(TypeInner, func() Runtime { return &innerRuntime{} })
}

// innerRuntime drives the sub-graph Build already compiled for this
// node (see compile.go's recursion into NodeSpec.MagicFlow) against a
// message rewritten from this node's own bound inputs, then folds the
// nested run's streamed content into one aggregated string and the
// `handle_send_extra` payload each send_message node of the sub-graph
// ended with into an extras map keyed by node id, emitting both on this
// node's own handles per §4.7. Every node and edge of the sub-graph is
// reset before each invocation, so the one compiled sub-graph reruns.
type innerRuntime struct {
	messageKey string
}

func (i *innerRuntime) Configure(_ string, data map[string]any) error {
	i.messageKey = HandleUserMessage
	if v, ok := data["message_key"].(string); ok && v != "" {
		i.messageKey = v
	}
	return nil
}

func (i *innerRuntime) Iterate() bool { return false }

func (i *innerRuntime) Run(ctx context.Context, rc *RunContext) <-chan Event {
	out := make(chan Event, 1)
	go func() {
		defer close(out)

		host := rc.Graph.Nodes[rc.NodeID]
		sub := host.Inner()
		if sub == nil {
			out <- NewEvent(EndSourceType, rc.NodeID, nil)
			return
		}

		for _, n := range sub.Nodes {
			n.ResetForIteration()
		}
		for _, e := range sub.Edges {
			e.bypassed.Store(false)
		}

		message, _ := rc.Input(i.messageKey)
		if s, ok := message.(string); ok {
			if master, ok := sub.Nodes[sub.Master]; ok {
				master.BindInput(HandleUserMessage, s)
			}
		}

		var content string
		extras := make(map[string]any)
		inner := RunGraph(ctx, sub, false, nil)
		for msg := range inner {
			if msg.Type != OutputTypeContent {
				continue
			}
			chunk, ok := msg.Content.(ChatCompletionChunk)
			if !ok {
				continue
			}
			for _, choice := range chunk.Choices {
				content += choice.Delta.Content
			}
			for k, v := range chunk.Extras {
				extras[k] = v
			}
		}
		for _, n := range sub.Nodes {
			if n.Type != TypeSendMessage {
				continue
			}
			if p, ok := n.Outputs[EndSourceType]; ok {
				if m, ok := p.Value.(map[string]any); ok && m["extra"] != nil {
					extras[n.ID] = m["extra"]
				}
			}
		}

		out <- NewEvent(HandleExecutionContent, rc.NodeID, content)
		out <- NewEvent(HandleExecutionExtras, rc.NodeID, extras)
	}()
	return out
}
