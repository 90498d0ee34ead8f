package nodes

import (
	"context"

	"github.com/flowgraph/flowgraph/graph"
	"github.com/flowgraph/flowgraph/graph/tool"
	"github.com/tidwall/sjson"
)

func init() {
	graph.RegisterNodeType(graph.TypeFetch, func() graph.Runtime { return &fetchRuntime{} })
}

// fetchRuntime is the built-in HTTP transport node: it templates its
// configured method/url/headers/body against bound inputs (the
// external HTTP transport interface's contract: method/url/headers/
// body -> JSON, URL templated) and executes the request through the
// shared tool.HTTPTool. A request that errors at the transport layer
// reports a TransportError and the node emits nothing, which leaves
// its outgoing edges unresolved for deadlock detection rather than
// silently producing an empty result.
type fetchRuntime struct {
	method     string
	url        string
	headers    map[string]string
	body       string
	bodyFields map[string]string
	client     *tool.HTTPTool
}

func (f *fetchRuntime) Configure(_ string, data map[string]any) error {
	f.method = "GET"
	if v, ok := data["method"].(string); ok && v != "" {
		f.method = v
	}
	if v, ok := data["url"].(string); ok {
		f.url = v
	}
	if v, ok := data["body"].(string); ok {
		f.body = v
	}
	f.headers = map[string]string{}
	if raw, ok := data["headers"].(map[string]any); ok {
		for k, v := range raw {
			if s, ok := v.(string); ok {
				f.headers[k] = s
			}
		}
	}
	f.bodyFields = map[string]string{}
	if raw, ok := data["body_fields"].(map[string]any); ok {
		for k, v := range raw {
			if s, ok := v.(string); ok {
				f.bodyFields[k] = s
			}
		}
	}
	f.client = tool.NewHTTPTool()
	return nil
}

func (f *fetchRuntime) Iterate() bool { return false }

func (f *fetchRuntime) Run(ctx context.Context, rc *graph.RunContext) <-chan graph.Event {
	out := make(chan graph.Event, 1)
	defer close(out)

	url, err := rc.Template.Render(f.url, rc.Inputs)
	if err != nil {
		rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{"kind": "template_error", "message": err.Error()})
		return out
	}

	headers := make(map[string]interface{}, len(f.headers))
	for k, v := range f.headers {
		rendered, err := rc.Template.Render(v, rc.Inputs)
		if err != nil {
			rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{"kind": "template_error", "message": err.Error()})
			return out
		}
		headers[k] = rendered
	}

	body := f.body
	if body != "" {
		rendered, err := rc.Template.Render(body, rc.Inputs)
		if err != nil {
			rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{"kind": "template_error", "message": err.Error()})
			return out
		}
		body = rendered
	}

	// body_fields lets a spec assemble a JSON body from rendered
	// key/value pairs instead of a single literal template, one sjson.Set
	// per field so each value is independently escaped into the object.
	if len(f.bodyFields) > 0 {
		for key, tpl := range f.bodyFields {
			rendered, err := rc.Template.Render(tpl, rc.Inputs)
			if err != nil {
				rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{"kind": "template_error", "message": err.Error()})
				return out
			}
			body, err = sjson.Set(body, key, rendered)
			if err != nil {
				rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{"kind": "data_error", "message": err.Error()})
				return out
			}
		}
	}

	result, err := f.client.Call(ctx, map[string]interface{}{
		"method":  f.method,
		"url":     url,
		"headers": headers,
		"body":    body,
	})
	if err != nil {
		rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{"kind": "transport_error", "message": err.Error()})
		return out
	}

	out <- graph.NewEvent(graph.DefaultSourceType, rc.NodeID, result)
	return out
}
