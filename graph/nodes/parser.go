package nodes

import (
	"context"
	"fmt"

	"github.com/flowgraph/flowgraph/graph"
	"github.com/tidwall/gjson"
)

func init() {
	graph.RegisterNodeType(graph.TypeParser, func() graph.Runtime { return &parserRuntime{} })
}

// parserRuntime extracts a field from a JSON-shaped string input using
// a gjson path, so downstream nodes can consume a sub-field of a
// `fetch` or `llm` node's raw output without writing a custom node.
// An input that is not valid JSON, or a path with no match, reports a
// DataError and emits nothing.
type parserRuntime struct {
	path string
}

func (p *parserRuntime) Configure(_ string, data map[string]any) error {
	if v, ok := data["path"].(string); ok {
		p.path = v
	}
	return nil
}

func (p *parserRuntime) Iterate() bool { return false }

func (p *parserRuntime) Run(_ context.Context, rc *graph.RunContext) <-chan graph.Event {
	out := make(chan graph.Event, 1)
	defer close(out)

	raw, ok := rc.Input(graph.HandleParserInput)
	if !ok {
		rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{
			"kind": "input_error", "message": "parser node has no bound input",
		})
		return out
	}

	s, ok := raw.(string)
	if !ok {
		s = fmt.Sprintf("%v", raw)
	}
	if !gjson.Valid(s) {
		rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{
			"kind": "data_error", "message": "parser input is not valid JSON",
		})
		return out
	}

	result := gjson.Get(s, p.path)
	if !result.Exists() {
		rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{
			"kind": "data_error", "message": fmt.Sprintf("path %q not found", p.path),
		})
		return out
	}

	out <- graph.NewEvent(graph.DefaultSourceType, rc.NodeID, result.Value())
	return out
}
