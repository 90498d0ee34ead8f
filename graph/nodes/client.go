package nodes

import (
	"context"
	"fmt"

	"github.com/flowgraph/flowgraph/graph"
	"github.com/flowgraph/flowgraph/graph/model"
	"github.com/flowgraph/flowgraph/graph/model/anthropic"
	"github.com/flowgraph/flowgraph/graph/model/google"
	"github.com/flowgraph/flowgraph/graph/model/openai"
)

func init() {
	graph.RegisterNodeType(graph.TypeClient, func() graph.Runtime { return &clientRuntime{} })
}

// clientRuntime instantiates a provider-specific model.ChatModel from
// its spec configuration (provider/api_key/model) and publishes it as
// its own output, so one `client` node can feed its configured model
// into any number of downstream `llm`/`chat` nodes via
// HandleClientProvider, exactly as a real client connection handle is
// threaded through a conversation in §6.
type clientRuntime struct {
	provider  string
	apiKey    string
	modelName string
}

func (c *clientRuntime) Configure(_ string, data map[string]any) error {
	if v, ok := data["provider"].(string); ok {
		c.provider = v
	}
	if v, ok := data["api_key"].(string); ok {
		c.apiKey = v
	}
	if v, ok := data["model"].(string); ok {
		c.modelName = v
	}
	return nil
}

func (c *clientRuntime) Iterate() bool { return false }

func (c *clientRuntime) Run(_ context.Context, rc *graph.RunContext) <-chan graph.Event {
	out := make(chan graph.Event, 1)
	defer close(out)

	cm, err := c.build()
	if err != nil {
		rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{"kind": "config_error", "message": err.Error()})
		return out
	}

	out <- graph.NewEvent(graph.DefaultSourceType, rc.NodeID, cm)
	return out
}

func (c *clientRuntime) build() (model.ChatModel, error) {
	switch c.provider {
	case "anthropic", "":
		return anthropic.NewChatModel(c.apiKey, c.modelName), nil
	case "openai":
		return openai.NewChatModel(c.apiKey, c.modelName), nil
	case "google":
		return google.NewChatModel(c.apiKey, c.modelName), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", c.provider)
	}
}
