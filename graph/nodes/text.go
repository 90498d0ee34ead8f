package nodes

import (
	"context"

	"github.com/flowgraph/flowgraph/graph"
)

func init() {
	graph.RegisterNodeType(graph.TypeText, func() graph.Runtime { return &textRuntime{} })
}

// textRuntime renders a static template against its bound inputs and
// emits the result as its single terminal event. It is the simplest
// built-in: no external dependency, just the template engine.
type textRuntime struct {
	template string
}

func (t *textRuntime) Configure(_ string, data map[string]any) error {
	if v, ok := data["template"].(string); ok {
		t.template = v
	}
	return nil
}

func (t *textRuntime) Iterate() bool { return false }

func (t *textRuntime) Run(_ context.Context, rc *graph.RunContext) <-chan graph.Event {
	out := make(chan graph.Event, 1)
	rendered, err := rc.Template.Render(t.template, rc.Inputs)
	if err != nil {
		rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{
			"kind": "template_error", "message": err.Error(),
		})
		close(out)
		return out
	}
	out <- graph.NewEvent(graph.DefaultSourceType, rc.NodeID, rendered)
	close(out)
	return out
}
