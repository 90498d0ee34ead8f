package graph

import (
	"context"
	"encoding/json"
	"reflect"
)

func init() {
	RegisterNodeType(TypeLoop, func() Runtime { return &loopRuntime{} })
}

// loopRuntime implements the §4.5 loop executor as an ordinary Runtime:
// from the outer scheduler's point of view a loop node is a node like
// any other, but internally it drives its own downstream subgraph to a
// fixed point once per list element before emitting a single terminal
// event carrying the per-element results.
//
// The loop's outgoing "item" edges mark the entry to the iteration
// subgraph (reset and re-run once per element); per §4.5 the item
// output's source_type is "content" (the loop's per-element emissions
// are themselves streamed to the caller like any other content chunk),
// so those edges are identified by ContentSourceType, not a distinct
// "item" tag. Its "end"/"default" edges mark the entry to the
// aggregation subgraph (run once, after every element has been
// processed, seeded with the collected results).
type loopRuntime struct {
	listKey string
}

func (l *loopRuntime) Configure(_ string, data map[string]any) error {
	l.listKey = HandleList
	if v, ok := data["list_key"].(string); ok && v != "" {
		l.listKey = v
	}
	return nil
}

func (l *loopRuntime) Iterate() bool { return false }

func (l *loopRuntime) Run(ctx context.Context, rc *RunContext) <-chan Event {
	out := make(chan Event, 1)
	go func() {
		defer close(out)

		listVal, ok := rc.Input(l.listKey)
		if !ok {
			listVal, ok = rc.Input(HandleList)
		}
		if !ok {
			rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{
				"kind": string(KindInputError), "message": "loop node has no bound list input",
			})
			out <- NewEvent(EndSourceType, rc.NodeID, nil)
			return
		}
		items, err := asSlice(listVal)
		if err != nil {
			rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{
				"kind": string(KindDataError), "message": err.Error(),
			})
			out <- NewEvent(EndSourceType, rc.NodeID, nil)
			return
		}

		ex := rc.ex
		g := rc.Graph
		loopNode := g.Nodes[rc.NodeID]

		var itemEdges, endEdges []*Edge
		for _, e := range g.EdgesFrom(rc.NodeID) {
			switch e.SourceType {
			case ContentSourceType:
				itemEdges = append(itemEdges, e)
			case EndSourceType, DefaultSourceType:
				endEdges = append(endEdges, e)
			}
		}

		endSeeds := edgeTargets(endEdges)
		aggregationSet := ex.reachableFrom(endSeeds, nil)

		itemSeeds := edgeTargets(itemEdges)
		iterationSet := ex.reachableFrom(itemSeeds, aggregationSet)

		collected := make([]any, 0, len(items))
		for _, item := range items {
			select {
			case <-ctx.Done():
				break
			default:
			}
			ex.resetSubset(iterationSet)
			// Route through handleEvent (not bindAndDeliver) so each
			// per-element item also streams onto the caller's content
			// bus, per §4.5's item output carrying source_type = "content".
			ex.handleEvent(loopNode, NewEvent(ContentSourceType, rc.NodeID, item))
			ex.runSubset(ctx, iterationSet)
			collected = append(collected, collectIterationResult(g, iterationSet))
		}

		if len(endEdges) > 0 {
			ex.resetSubset(aggregationSet)
			for _, e := range endEdges {
				ex.bindAndDeliver(e, collected)
			}
			ex.runSubset(ctx, aggregationSet)
		}

		out <- NewEvent(EndSourceType, rc.NodeID, collected)
	}()
	return out
}

func edgeTargets(edges []*Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.Target
	}
	return out
}

// collectIterationResult reports the value produced by the iteration
// subgraph's own exit point: the node within the set whose output
// feeds an edge leaving the set entirely. When several such nodes
// exist, the first found (in graph edge order) is used — a loop body
// is expected to converge to one reported result per element.
func collectIterationResult(g *Graph, iterationSet map[string]bool) any {
	for _, e := range g.Edges {
		if !iterationSet[e.Source] || iterationSet[e.Target] {
			continue
		}
		if node, ok := g.Nodes[e.Source]; ok {
			if p, ok := node.Outputs[e.SourceType]; ok {
				return p.Value
			}
		}
	}
	return nil
}

// asSlice normalizes a bound list input (already a []any, a concrete
// slice type, a string holding a JSON array, or any other value treated
// as a one-element list) into []any for uniform iteration.
func asSlice(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.([]any); ok {
		return s, nil
	}
	if s, ok := v.(string); ok {
		var parsed []any
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			return parsed, nil
		}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return []any{v}, nil
}
