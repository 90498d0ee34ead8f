package nodes

import (
	"context"
	"testing"

	"github.com/flowgraph/flowgraph/graph"
	"github.com/flowgraph/flowgraph/graph/model"
	"github.com/flowgraph/flowgraph/graph/model/anthropic"
	"github.com/flowgraph/flowgraph/graph/model/google"
	"github.com/flowgraph/flowgraph/graph/model/openai"
)

func runClient(t *testing.T, rt *clientRuntime) graph.Event {
	t.Helper()
	rc := &graph.RunContext{NodeID: "c1", Debug: graph.NewDebugCapture("r", nil, nil)}
	ch := rt.Run(context.Background(), rc)
	ev, ok := <-ch
	if !ok {
		t.Fatalf("expected a published client event")
	}
	return ev
}

func TestClientRuntimeDefaultsToAnthropic(t *testing.T) {
	rt := &clientRuntime{}
	_ = rt.Configure("c1", map[string]any{"api_key": "k"})

	ev := runClient(t, rt)
	if _, ok := ev.Payload.Value.(*anthropic.ChatModel); !ok {
		t.Fatalf("expected an anthropic.ChatModel published by default, got %T", ev.Payload.Value)
	}
}

func TestClientRuntimeBuildsOpenAI(t *testing.T) {
	rt := &clientRuntime{}
	_ = rt.Configure("c1", map[string]any{"provider": "openai", "api_key": "k", "model": "gpt-4o-mini"})

	ev := runClient(t, rt)
	if _, ok := ev.Payload.Value.(*openai.ChatModel); !ok {
		t.Fatalf("expected an openai.ChatModel, got %T", ev.Payload.Value)
	}
}

func TestClientRuntimeBuildsGoogle(t *testing.T) {
	rt := &clientRuntime{}
	_ = rt.Configure("c1", map[string]any{"provider": "google", "api_key": "k"})

	ev := runClient(t, rt)
	if _, ok := ev.Payload.Value.(*google.ChatModel); !ok {
		t.Fatalf("expected a google.ChatModel, got %T", ev.Payload.Value)
	}
}

func TestClientRuntimePublishedModelImplementsChatModel(t *testing.T) {
	rt := &clientRuntime{}
	_ = rt.Configure("c1", map[string]any{"provider": "anthropic", "api_key": "k"})

	ev := runClient(t, rt)
	if _, ok := ev.Payload.Value.(model.ChatModel); !ok {
		t.Fatalf("expected the published value to implement model.ChatModel, got %T", ev.Payload.Value)
	}
}

func TestClientRuntimeUnknownProviderEmitsNothing(t *testing.T) {
	rt := &clientRuntime{}
	_ = rt.Configure("c1", map[string]any{"provider": "unknown_provider"})

	rc := &graph.RunContext{NodeID: "c1", Debug: graph.NewDebugCapture("r", nil, nil)}
	ch := rt.Run(context.Background(), rc)

	count := 0
	for range ch {
		count++
	}
	if count != 0 {
		t.Fatalf("expected zero events for an unknown provider, got %d", count)
	}
}
