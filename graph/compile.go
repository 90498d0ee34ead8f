package graph

// Build compiles a declarative Spec (plus the user message that seeds
// the invocation) into an executable Graph. Build never fails outright
// on a malformed Spec: structural problems are accumulated as
// BuildErrors on the returned Graph and surfaced by the executor as
// graph_start debug records, so a partially-broken spec still runs as
// much of itself as it safely can.
func Build(spec *Spec, userMessage string) *Graph {
	return build(spec, userMessage, nil)
}

// build is the recursive worker; host is nil for the top-level graph
// and set to the owning `inner` node when compiling a nested spec.
func build(spec *Spec, userMessage string, host *Node) *Graph {
	g := NewGraph()
	g.Host = host
	g.ChatLog = NewChatLog()

	Validate(spec, &g.BuildErrors)

	for _, ns := range spec.Nodes {
		node := instantiate(ns)
		if err := node.Runtime.Configure(ns.ID, ns.Data); err != nil {
			g.BuildErrors = append(g.BuildErrors, NewEngineError(KindConfigError, ns.ID, err.Error(), err, nil))
		}
		g.AddNode(node)

		if ns.Type == TypeInner && ns.MagicFlow != nil {
			sub := build(ns.MagicFlow, userMessage, node)
			node.inner = sub
		}
	}

	sink := NewNode(SinkNodeID, TypeVoid, sinkRuntime{})
	g.AddNode(sink)

	for _, es := range spec.Edges {
		target := es.Target
		targetKey := es.TargetHandle
		if targetKey == "" {
			target = SinkNodeID
			targetKey = VoidTargetKey
		}
		if _, ok := g.Nodes[es.Source]; !ok {
			g.BuildErrors = append(g.BuildErrors, NewEngineError(KindSpecError, es.Source, "edge references unknown source node", nil, nil))
			continue
		}
		if _, ok := g.Nodes[target]; !ok {
			g.BuildErrors = append(g.BuildErrors, NewEngineError(KindSpecError, target, "edge references unknown target node", nil, nil))
			continue
		}
		g.AddEdge(&Edge{Source: es.Source, SourceType: es.SourceHandle, Target: target, TargetKey: targetKey})
	}

	g.Master = spec.Master
	seedEntry(g, userMessage)

	return g
}

// instantiate looks up the registered factory for ns.Type, falling
// back to stubRuntime for any unrecognized type tag. Per I4 and §4.5,
// any node — regardless of its concrete type — can be flagged
// `iterate: true` in its spec data; instantiate honors that uniformly
// via iterateOverride rather than requiring each built-in Runtime to
// implement the flag itself.
func instantiate(ns NodeSpec) *Node {
	factory, ok := lookupNodeType(ns.Type)
	var rt Runtime
	if ok {
		rt = factory()
	} else {
		rt = stubRuntime{}
	}
	if specIterateFlag(ns.Data) {
		rt = iterateOverride{rt}
	}
	return NewNode(ns.ID, ns.Type, rt)
}

// specIterateFlag reports whether a NodeSpec's free-form data declares
// `iterate: true`, the spec-level mechanism for forcing a node to
// re-execute on every pass of a loop's iteration subgraph instead of
// replaying its cached result.
func specIterateFlag(data map[string]any) bool {
	v, ok := data["iterate"]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// iterateOverride wraps any Runtime to force Iterate() to true
// regardless of the wrapped type's own implementation, so a spec
// author can flag an ordinary built-in node (a `text` or `parser` node
// inside a loop body, for instance) as re-executing per iteration
// without that node type needing its own awareness of looping.
type iterateOverride struct {
	Runtime
}

func (iterateOverride) Iterate() bool { return true }

// seedEntry writes the initiating user message into the master node's
// conventional input handle, and, for any chat-capable node
// (type == "chat" or "llm"), seeds the shared chat log handle so every
// participant in the conversation sees the same chat/thread identity.
func seedEntry(g *Graph, userMessage string) {
	if master, ok := g.Nodes[g.Master]; ok {
		master.BindInput(HandleUserMessage, userMessage)
	}
	for _, n := range g.Nodes {
		if n.Type == TypeChat || n.Type == TypeLLM {
			n.BindInput(HandleChat, g.ChatLog)
		}
	}
}
