package nodes

import (
	"context"
	"testing"

	"github.com/flowgraph/flowgraph/graph"
	"github.com/flowgraph/flowgraph/graph/model"
)

func TestLLMRuntimeMissingClientEmitsNothing(t *testing.T) {
	rt := &llmRuntime{}
	_ = rt.Configure("l1", map[string]any{"prompt": "hi {{ name }}"})

	rc := &graph.RunContext{
		NodeID:   "l1",
		Inputs:   map[string]any{"name": "Ada"},
		Template: graph.NewTemplateEngine(),
		Debug:    graph.NewDebugCapture("r", nil, nil),
	}
	ch := rt.Run(context.Background(), rc)

	count := 0
	for range ch {
		count++
	}
	if count != 0 {
		t.Fatalf("expected zero events when no client is bound, got %d", count)
	}
}

func TestLLMRuntimeWrongClientTypeEmitsNothing(t *testing.T) {
	rt := &llmRuntime{}
	_ = rt.Configure("l1", nil)

	rc := &graph.RunContext{
		NodeID:   "l1",
		Inputs:   map[string]any{graph.HandleClientProvider: "not a chat model"},
		Template: graph.NewTemplateEngine(),
		Debug:    graph.NewDebugCapture("r", nil, nil),
	}
	ch := rt.Run(context.Background(), rc)

	count := 0
	for range ch {
		count++
	}
	if count != 0 {
		t.Fatalf("expected zero events when the bound client does not implement ChatModel, got %d", count)
	}
}

func TestLLMRuntimeBlockingDispatchEmitsContentThenEnd(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "hello there"}}}
	rt := &llmRuntime{}
	_ = rt.Configure("l1", map[string]any{"prompt": "hi {{ name }}"})

	rc := &graph.RunContext{
		NodeID: "l1",
		Inputs: map[string]any{
			"name":                     "Ada",
			graph.HandleClientProvider: mock,
		},
		Template: graph.NewTemplateEngine(),
		Debug:    graph.NewDebugCapture("r", nil, nil),
	}
	ch := rt.Run(context.Background(), rc)

	var events []graph.Event
	for ev := range ch {
		events = append(events, ev)
	}
	if len(events) != 2 {
		t.Fatalf("expected a content event followed by a terminal event, got %d events", len(events))
	}
	if events[0].SourceType != graph.ContentSourceType || events[0].Payload.Value != "hello there" {
		t.Fatalf("expected content event with full response text, got %#v", events[0])
	}
	if events[1].SourceType != graph.EndSourceType || events[1].Payload.Value != "hello there" {
		t.Fatalf("expected terminal event with full response text, got %#v", events[1])
	}

	if len(mock.Calls) != 1 {
		t.Fatalf("expected exactly one Chat call, got %d", len(mock.Calls))
	}
	if mock.Calls[0].Messages[len(mock.Calls[0].Messages)-1].Content != "hi Ada" {
		t.Fatalf("expected rendered prompt sent as the user message, got %#v", mock.Calls[0].Messages)
	}
}

func TestLLMRuntimeStreamingDispatchEmitsChunks(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "hi"}}}
	rt := &llmRuntime{}
	_ = rt.Configure("l1", nil)

	rc := &graph.RunContext{
		NodeID: "l1",
		Inputs: map[string]any{
			graph.HandleUserMessage:    "hello",
			graph.HandleClientProvider: mock,
		},
		Template: graph.NewTemplateEngine(),
		Debug:    graph.NewDebugCapture("r", nil, nil),
	}
	ch := rt.Run(context.Background(), rc)

	var events []graph.Event
	for ev := range ch {
		events = append(events, ev)
	}
	// "hi" streams as two one-rune content chunks, then a terminal event.
	if len(events) != 3 {
		t.Fatalf("expected two content chunks plus a terminal event, got %d: %#v", len(events), events)
	}
	if events[0].Payload.Value != "h" || events[1].Payload.Value != "i" {
		t.Fatalf("expected rune-at-a-time streamed chunks, got %#v, %#v", events[0], events[1])
	}
	if events[2].SourceType != graph.EndSourceType || events[2].Payload.Value != "hi" {
		t.Fatalf("expected terminal event with accumulated text, got %#v", events[2])
	}
}

func TestLLMRuntimeSystemTemplateRendersAsSystemMessage(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "ok"}}}
	rt := &llmRuntime{}
	_ = rt.Configure("l1", map[string]any{
		"prompt": "hi",
		"system": "be {{ tone }}",
	})

	rc := &graph.RunContext{
		NodeID: "l1",
		Inputs: map[string]any{
			"tone":                     "terse",
			graph.HandleClientProvider: mock,
		},
		Template: graph.NewTemplateEngine(),
		Debug:    graph.NewDebugCapture("r", nil, nil),
	}
	<-rt.Run(context.Background(), rc)

	if len(mock.Calls) != 1 || len(mock.Calls[0].Messages) != 2 {
		t.Fatalf("expected a system message followed by the user message, got %#v", mock.Calls)
	}
	sys := mock.Calls[0].Messages[0]
	if sys.Role != model.RoleSystem || sys.Content != "be terse" {
		t.Fatalf("expected rendered system message, got %#v", sys)
	}
}

func TestLLMRuntimeRecordsCostWhenTrackerPresent(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "four tok"}}}
	rt := &llmRuntime{}
	_ = rt.Configure("l1", map[string]any{"prompt": "hi", "model": "gpt-4o-mini"})

	tracker := graph.NewCostTracker("run-1", "USD")
	rc := &graph.RunContext{
		NodeID: "l1",
		Inputs: map[string]any{
			graph.HandleClientProvider: mock,
		},
		Template: graph.NewTemplateEngine(),
		Debug:    graph.NewDebugCapture("r", nil, nil),
		Cost:     tracker,
	}
	<-rt.Run(context.Background(), rc)

	history := tracker.GetCallHistory()
	if len(history) != 1 {
		t.Fatalf("expected one recorded LLM call, got %d", len(history))
	}
	if history[0].Model != "gpt-4o-mini" {
		t.Fatalf("expected model hint recorded, got %q", history[0].Model)
	}
	if history[0].OutputTokens != len("four tok")/4 {
		t.Fatalf("expected output tokens estimated from byte length, got %d", history[0].OutputTokens)
	}
}
