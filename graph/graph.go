package graph

// SinkNodeID is the id of the process-wide sink node the compiler injects
// into every built graph to absorb unwired outputs.
const SinkNodeID = "__sink__"

// Graph is an ordered node set plus an edge list plus a designated
// master entry node. A nested graph additionally records the host node
// (an `inner`-type node in the enclosing graph) that owns it.
type Graph struct {
	// Order preserves the node-insertion order, which is the spec's
	// declaration order (the compiler does not re-sort); nothing
	// downstream depends on it for correctness.
	Order []string
	Nodes map[string]*Node
	Edges []*Edge

	Master string

	// Host is non-nil for a nested graph: the `inner` node in the
	// enclosing graph that owns this sub-graph.
	Host *Node

	ChatLog *ChatLog

	// BuildErrors accumulates SpecError and ConfigError records produced during Build;
	// the executor surfaces them as debug events at graph_start instead
	// of aborting compilation.
	BuildErrors []*EngineError
}

// NewGraph allocates an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// AddNode registers a compiled node and appends it to Order.
func (g *Graph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	g.Order = append(g.Order, n.ID)
}

// AddEdge appends an edge to the graph's edge list.
func (g *Graph) AddEdge(e *Edge) {
	g.Edges = append(g.Edges, e)
}

// EdgesFrom returns every edge whose Source is nodeID, in insertion order.
func (g *Graph) EdgesFrom(nodeID string) []*Edge {
	var out []*Edge
	for _, e := range g.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns every edge whose Target is nodeID, in insertion order.
func (g *Graph) EdgesTo(nodeID string) []*Edge {
	var out []*Edge
	for _, e := range g.Edges {
		if e.Target == nodeID {
			out = append(out, e)
		}
	}
	return out
}
