package graph

import "context"

func init() {
	RegisterNodeType(TypeUserInput, func() Runtime { return &userInputRuntime{} })
	RegisterNodeType(TypeEnd, func() Runtime { return &passthroughRuntime{} })
	RegisterNodeType(TypeVoid, func() Runtime { return &sinkRuntime{} })
}

// userInputRuntime is the canonical entry-point node: Build seeds its
// handle_user_message input directly (see compile.go's seedEntry). Per
// §4.4's event yielding contract, it is one of the nodes that
// intentionally emits multiple typed outputs instead of a single
// terminal event: one event per bound handle (message, files, images),
// each tagged with that handle's own source_type, so a downstream edge
// declared against any of the three can match it directly.
type userInputRuntime struct{}

func (userInputRuntime) Configure(string, map[string]any) error { return nil }
func (userInputRuntime) Iterate() bool                          { return false }

func (userInputRuntime) Run(_ context.Context, rc *RunContext) <-chan Event {
	out := make(chan Event, 3)
	for _, key := range []string{HandleUserMessage, HandleUserFiles, HandleUserImages} {
		if v, ok := rc.Input(key); ok {
			out <- NewEvent(key, rc.NodeID, v)
		}
	}
	close(out)
	return out
}

// passthroughRuntime backs the `end` node type: it republishes its
// bound inputs unchanged as its own terminal event, letting a spec
// mark an explicit graph exit point without any transformation.
type passthroughRuntime struct{}

func (passthroughRuntime) Configure(string, map[string]any) error { return nil }
func (passthroughRuntime) Iterate() bool                          { return false }

func (passthroughRuntime) Run(_ context.Context, rc *RunContext) <-chan Event {
	out := make(chan Event, 1)
	out <- NewEvent(DefaultSourceType, rc.NodeID, rc.Inputs)
	close(out)
	return out
}

// sinkRuntime backs both the injected sink node and any node whose
// only purpose is to absorb a value with no further routing. It emits
// nothing: every edge targeting it lands on the reserved VoidTargetKey
// input and is never forwarded anywhere.
type sinkRuntime struct{}

func (sinkRuntime) Configure(string, map[string]any) error { return nil }
func (sinkRuntime) Iterate() bool                          { return false }

func (sinkRuntime) Run(_ context.Context, _ *RunContext) <-chan Event {
	out := make(chan Event)
	close(out)
	return out
}
