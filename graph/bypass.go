package graph

// bypassEngine propagates edge-level bypass decisions (made by a
// conditional node selecting one branch) into node-level auto-bypass:
// a node all of whose incoming edges are bypassed, and none of whose
// incoming edges is still live, is itself bypassed, and the bypass
// propagates recursively to its own outgoing edges. Grounded on the
// OR-semantics "should this node run" check a wave-based DAG executor
// performs before each wave: a node executes if any parent edge is
// live, not only if every parent edge is live.
type bypassEngine struct {
	g *Graph
	// visited guards against revisiting a node already folded into this
	// bypass pass within one scheduler step.
	visited map[string]bool
}

func newBypassEngine(g *Graph) *bypassEngine {
	return &bypassEngine{g: g, visited: make(map[string]bool)}
}

// BypassEdge marks edge bypassed and recursively bypasses its target
// node (and that node's own outgoing edges) if the target has no
// remaining live incoming edge.
func (b *bypassEngine) BypassEdge(e *Edge) {
	if e.Bypassed() {
		return
	}
	e.MarkBypassed()
	b.dfs(e.Target)
}

// dfs implements §4.6's recursive auto-bypass: if every incoming edge
// of n is bypassed, n itself is bypassed (unless it already executed
// or was already bypassed), and its outgoing edges are bypassed in
// turn, continuing the propagation to n's descendants.
func (b *bypassEngine) dfs(nodeID string) {
	if b.visited[nodeID] {
		return
	}
	node, ok := b.g.Nodes[nodeID]
	if !ok {
		return
	}
	if node.State == StateExecuted {
		// A node that already ran cannot be retroactively bypassed;
		// its outgoing edges keep whatever bypass state they have.
		return
	}

	incoming := b.g.EdgesTo(nodeID)
	if len(incoming) == 0 {
		// Entry-style nodes (no parents) are never auto-bypassed by
		// this pass; only an explicit conditional decision can bypass
		// them, via BypassEdge on one of their own outgoing edges.
		return
	}
	for _, in := range incoming {
		if !in.Bypassed() {
			// At least one parent edge is still live: n may yet run.
			return
		}
	}

	b.visited[nodeID] = true
	node.MarkBypassed()

	for _, out := range b.g.EdgesFrom(nodeID) {
		if out.Bypassed() {
			continue
		}
		out.MarkBypassed()
		b.dfs(out.Target)
	}
}

// isMergeCandidate reports whether n has at least one non-bypassed
// incoming edge (or no incoming edges at all), i.e. it remains eligible
// to run even though some of
// its parents were bypassed — the merge-convergence case of §4.6: a
// node downstream of a conditional branch still fires once any live
// edge satisfies it, and reads the bypassed branch's input as absent.
func isMergeCandidate(g *Graph, nodeID string) bool {
	for _, in := range g.EdgesTo(nodeID) {
		if !in.Bypassed() {
			return true
		}
	}
	return len(g.EdgesTo(nodeID)) == 0
}
