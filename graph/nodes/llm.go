package nodes

import (
	"context"

	"github.com/flowgraph/flowgraph/graph"
	"github.com/flowgraph/flowgraph/graph/model"
)

func init() {
	factory := func() graph.Runtime { return &llmRuntime{} }
	graph.RegisterNodeType(graph.TypeLLM, factory)
	graph.RegisterNodeType(graph.TypeChat, factory)
}

// llmRuntime backs both the `llm` and `chat` node types: render a
// prompt template against bound inputs, call the client bound on
// HandleClientProvider, and stream its response. When the bound
// model.ChatModel also implements model.StreamingChatModel, each
// incremental chunk is emitted immediately as a ContentSourceType
// event (the streaming passthrough §4.3 requires); otherwise the node
// falls back to one blocking Chat call and emits its full text as a
// single content event before its terminal event.
type llmRuntime struct {
	promptTemplate string
	systemTemplate string
	modelHint      string
}

func (l *llmRuntime) Configure(_ string, data map[string]any) error {
	if v, ok := data["prompt"].(string); ok {
		l.promptTemplate = v
	}
	if v, ok := data["system"].(string); ok {
		l.systemTemplate = v
	}
	if v, ok := data["model"].(string); ok {
		l.modelHint = v
	}
	return nil
}

func (l *llmRuntime) Iterate() bool { return false }

func (l *llmRuntime) Run(ctx context.Context, rc *graph.RunContext) <-chan graph.Event {
	out := make(chan graph.Event, 4)

	go func() {
		defer close(out)

		cmAny, ok := rc.Input(graph.HandleClientProvider)
		if !ok {
			rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{
				"kind": "input_error", "message": "no client bound on handle-client-provider",
			})
			return
		}
		cm, ok := cmAny.(model.ChatModel)
		if !ok {
			rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{
				"kind": "config_error", "message": "bound client does not implement ChatModel",
			})
			return
		}

		prompt, err := l.render(rc, l.promptTemplate)
		if err != nil {
			return
		}
		messages := []model.Message{}
		if l.systemTemplate != "" {
			sys, err := l.render(rc, l.systemTemplate)
			if err != nil {
				return
			}
			messages = append(messages, model.Message{Role: model.RoleSystem, Content: sys})
		}
		messages = append(messages, model.Message{Role: model.RoleUser, Content: prompt})

		text, err := l.dispatch(ctx, cm, messages, out, rc.NodeID)
		if err != nil {
			rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{
				"kind": "transport_error", "message": err.Error(),
			})
			return
		}

		if rc.Cost != nil {
			// model.ChatOut carries no usage data, so cost is estimated
			// from byte lengths (~4 bytes/token) rather than billed tokens.
			inTokens := 0
			for _, m := range messages {
				inTokens += len(m.Content) / 4
			}
			_ = rc.Cost.RecordLLMCall(l.modelHint, inTokens, len(text)/4, rc.NodeID)
		}

		out <- graph.NewEvent(graph.EndSourceType, rc.NodeID, text)
	}()

	return out
}

func (l *llmRuntime) render(rc *graph.RunContext, tpl string) (string, error) {
	if tpl == "" {
		if v, ok := rc.Input(graph.HandleUserMessage); ok {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
		return "", nil
	}
	rendered, err := rc.Template.Render(tpl, rc.Inputs)
	if err != nil {
		rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{
			"kind": "template_error", "message": err.Error(),
		})
		return "", err
	}
	return rendered, nil
}

// dispatch streams the response through out when cm supports
// streaming, accumulating and returning the full text; otherwise it
// makes one blocking call and emits the whole response as a single
// content chunk.
func (l *llmRuntime) dispatch(ctx context.Context, cm model.ChatModel, messages []model.Message, out chan<- graph.Event, nodeID string) (string, error) {
	if streamer, ok := cm.(model.StreamingChatModel); ok {
		chunks, errc := streamer.ChatStream(ctx, messages, nil)
		var full string
		for chunk := range chunks {
			if chunk.Text != "" {
				full += chunk.Text
				out <- graph.NewEvent(graph.ContentSourceType, nodeID, chunk.Text)
			}
		}
		if err := <-errc; err != nil {
			return "", err
		}
		return full, nil
	}

	res, err := cm.Chat(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	if res.Text != "" {
		out <- graph.NewEvent(graph.ContentSourceType, nodeID, res.Text)
	}
	return res.Text, nil
}
