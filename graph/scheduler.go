package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/flowgraph/flowgraph/graph/emit"
)

// Executor drives one compiled Graph to completion: a linear,
// dependency-ordered ready-queue scheduler (§4.3). It is single-use —
// construct a fresh Executor per invocation. A loop node's iteration
// and aggregation passes run on the Executor driving the loop node; a
// nested-graph call gets its own Executor through RunGraph.
type Executor struct {
	g         *Graph
	debug     *DebugCapture
	out       *outputBus
	tmpl      *TemplateEngine
	bypass    *bypassEngine
	delivered map[*Edge]bool
	cost      *CostTracker
	metrics   *PrometheusMetrics
}

// NewExecutor wires an Executor for g, recording debug events through
// debug and streaming content through out. tmpl is shared across every
// node invocation in this graph (a nested inner graph gets its own
// Executor and its own TemplateEngine through RunGraph). cost
// and metrics may be nil; every call site nil-checks before use.
func NewExecutor(g *Graph, debug *DebugCapture, out *outputBus, tmpl *TemplateEngine, cost *CostTracker, metrics *PrometheusMetrics) *Executor {
	return &Executor{
		g:         g,
		debug:     debug,
		out:       out,
		tmpl:      tmpl,
		bypass:    newBypassEngine(g),
		delivered: make(map[*Edge]bool),
		cost:      cost,
		metrics:   metrics,
	}
}

// Run drives the graph to completion. It never returns an error: every
// failure becomes a structured debug record, per §7's "no exception
// escapes the executor" guarantee.
func (ex *Executor) Run(ctx context.Context) {
	ex.recordBuildErrors()
	ex.debug.Record("", emit.MsgGraphStart, map[string]interface{}{"master": ex.g.Master})

	ex.drain(ctx, ex.g.Order)

	for _, id := range ex.g.Order {
		if node := ex.g.Nodes[id]; node.State == StateBypassed {
			node.Debug = NodeDebugInfo{NodeID: id, Type: node.Type, WasBypassed: true}
			ex.debug.RecordNode(node.Debug)
		}
	}

	ex.detectDeadlock()

	ex.debug.Record("", emit.MsgGraphEnd, nil)
	ex.out.send(OutputMessage{Type: OutputTypeDebugSummary, Content: ex.debug.Summary()})
}

// drain runs the ready-queue fixed point starting from seeds. Once a
// seed node runs, propagation is unrestricted: any node anywhere in
// the graph that becomes ready as a result is enqueued and run too.
// This lets a scoped call (runSubset, from the loop runtime) flow
// naturally into whatever comes after the scoped subgraph, without the
// caller needing to track where its subgraph's exit edges lead.
func (ex *Executor) drain(ctx context.Context, seeds []string) {
	queue := make([]string, 0, len(seeds))
	queued := make(map[string]bool, len(seeds))
	enqueue := func(id string) {
		if queued[id] {
			return
		}
		if ex.isReady(id) {
			queue = append(queue, id)
			queued[id] = true
		}
	}
	for _, id := range seeds {
		enqueue(id)
	}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return
		default:
		}

		id := queue[0]
		queue = queue[1:]
		delete(queued, id)

		if ex.metrics != nil {
			ex.metrics.UpdateQueueDepth(len(queue))
		}

		if ex.g.Nodes[id].State != StateUnset {
			continue
		}
		ex.runNode(ctx, id)

		for _, e := range ex.g.EdgesFrom(id) {
			enqueue(e.Target)
		}
	}
}

func (ex *Executor) recordBuildErrors() {
	for _, e := range ex.g.BuildErrors {
		ex.debug.Record(e.NodeID, emit.MsgNodeError, map[string]interface{}{
			"kind":    string(e.Kind),
			"message": e.Message,
		})
	}
}

// isReady reports whether every non-bypassed incoming edge of nodeID
// has delivered its payload. A node with zero incoming edges (the
// master, or an orphaned node) is ready immediately. A node that is no
// longer StateUnset (already executed or auto-bypassed) is never
// re-queued.
func (ex *Executor) isReady(nodeID string) bool {
	node, ok := ex.g.Nodes[nodeID]
	if !ok || node.State != StateUnset {
		return false
	}
	for _, e := range ex.g.EdgesTo(nodeID) {
		if e.Bypassed() {
			continue
		}
		if !ex.delivered[e] {
			return false
		}
	}
	return true
}

func (ex *Executor) runNode(ctx context.Context, id string) {
	node := ex.g.Nodes[id]
	start := time.Now()

	rc := &RunContext{
		NodeID:   id,
		Inputs:   node.inputsSnapshot(),
		ChatLog:  ex.g.ChatLog,
		Template: ex.tmpl,
		Debug:    ex.debug,
		Graph:    ex.g,
		Cost:     ex.cost,
		ex:       ex,
	}
	ex.debug.Record(id, emit.MsgNodeStart, nil)

	status := "success"
	var events []Event
	if node.hasRun {
		events = node.cachedEvents
	} else {
		ch := node.Runtime.Run(ctx, rc)
		for ev := range ch {
			events = append(events, ev)
			ex.handleEvent(node, ev)
		}
		if !node.Runtime.Iterate() {
			node.cachedEvents = events
			node.hasRun = true
		}
	}

	ex.bypassUnfiredBranches(node, events)

	if node.State == StateUnset {
		node.State = StateExecuted
	}

	node.Debug = NodeDebugInfo{
		NodeID:      id,
		Type:        node.Type,
		Inputs:      rc.Inputs,
		Outputs:     outputsToMap(node.Outputs),
		WasExecuted: node.State == StateExecuted,
		WasBypassed: node.State == StateBypassed,
		DurationMS:  timeSince(start),
	}
	ex.debug.RecordNode(node.Debug)

	if ex.metrics != nil {
		ex.metrics.RecordStepLatency(ex.debug.RunID, id, time.Since(start), status)
	}
}

// handleEvent routes one produced Event: streaming passthrough for
// content events, writing the payload into every matching outgoing
// edge's target input, and marking those edges delivered.
func (ex *Executor) handleEvent(node *Node, ev Event) {
	node.recordOutput(ev.SourceType, ev.Payload)

	if ev.SourceType == ContentSourceType {
		ex.out.sendContent(node.ID, ChatCompletionChunk{
			ID:    node.ID,
			Model: node.Type,
			Choices: []ChatCompletionChoice{
				{Index: 0, Delta: ChatCompletionDelta{Content: toText(ev.Payload.Value)}},
			},
		})
	}

	for _, e := range ex.g.EdgesFrom(node.ID) {
		if e.SourceType != ev.SourceType {
			continue
		}
		if e.Bypassed() {
			continue
		}
		target, ok := ex.g.Nodes[e.Target]
		if !ok {
			continue
		}
		target.BindInput(e.TargetKey, ev.Payload.Value)
		ex.delivered[e] = true
	}
}

// bypassUnfiredBranches bypasses every non-terminal outgoing edge whose
// source_type was never produced by this invocation — the mechanism
// that both implements conditional branch exclusion (only the selected
// handle's edges survive) and lets the auto-bypass DFS continue
// downstream. Terminal ("end"/"default") edges are left alone: if a
// node fails to produce its terminal event, dependents stall and
// surface as a deadlock rather than being silently skipped.
func (ex *Executor) bypassUnfiredBranches(node *Node, events []Event) {
	fired := make(map[string]bool, len(events))
	for _, ev := range events {
		fired[ev.SourceType] = true
	}
	for _, e := range ex.g.EdgesFrom(node.ID) {
		if fired[e.SourceType] || isTerminal(e.SourceType) || e.Bypassed() {
			continue
		}
		ex.bypass.BypassEdge(e)
	}
}

// detectDeadlock records a KindDeadlock error for every node that
// never reached StateExecuted or StateBypassed once the ready queue
// has run dry — a live incoming edge that was never satisfied.
func (ex *Executor) detectDeadlock() {
	for _, id := range ex.g.Order {
		node := ex.g.Nodes[id]
		if node.State != StateUnset {
			continue
		}
		waiting := make([]string, 0)
		for _, e := range ex.g.EdgesTo(id) {
			if !e.Bypassed() && !ex.delivered[e] {
				waiting = append(waiting, e.Source)
			}
		}
		ex.debug.Record(id, emit.MsgNodeError, map[string]interface{}{
			"kind":    string(KindDeadlock),
			"message": "node never became ready: dependencies unresolved",
			"waiting": waiting,
		})
	}
}

// reachableFrom computes the set of node ids reachable by following
// outgoing edges from seeds, stopping (not expanding past) any node in
// stopAt. Used by the loop runtime to partition its downstream
// subgraph into an iteration half and an aggregation half.
func (ex *Executor) reachableFrom(seeds []string, stopAt map[string]bool) map[string]bool {
	visited := make(map[string]bool)
	queue := append([]string{}, seeds...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] || stopAt[id] {
			continue
		}
		visited[id] = true
		for _, e := range ex.g.EdgesFrom(id) {
			if !visited[e.Target] {
				queue = append(queue, e.Target)
			}
		}
	}
	return visited
}

// resetSubset calls ResetForIteration on every node in ids whose
// Runtime reports Iterate() == true, and clears delivery tracking for
// every edge whose source lies in ids — so a repeated pass over the
// same subgraph redelivers fresh payloads instead of seeing edges as
// already satisfied from a prior iteration.
func (ex *Executor) resetSubset(ids map[string]bool) {
	for id := range ids {
		node, ok := ex.g.Nodes[id]
		if !ok {
			continue
		}
		for _, e := range ex.g.EdgesFrom(id) {
			delete(ex.delivered, e)
		}
		if node.Runtime.Iterate() {
			node.ResetForIteration()
			continue
		}
		// Non-iterate node: it keeps its one cached result for the
		// whole loop, but that result still has to be redelivered into
		// this iteration's freshly-reset downstream nodes.
		if node.hasRun {
			for _, ev := range node.cachedEvents {
				ex.handleEvent(node, ev)
			}
		}
	}
}

// bindAndDeliver writes value into e's target input and marks e
// delivered, exactly as handleEvent would for a normal produced event.
// Used by the loop runtime to deliver the collected per-element results
// onto its end edges before the aggregation pass.
func (ex *Executor) bindAndDeliver(e *Edge, value any) {
	if target, ok := ex.g.Nodes[e.Target]; ok {
		target.BindInput(e.TargetKey, value)
	}
	ex.delivered[e] = true
}

// runSubset drives the ready-queue scheduler seeded with the given node
// ids, so the loop runtime can make repeated passes over its iteration
// subgraph. Only the seeds are restricted: as in drain, any node outside
// the set that becomes ready during the pass runs too.
func (ex *Executor) runSubset(ctx context.Context, ids map[string]bool) {
	seeds := make([]string, 0, len(ids))
	for id := range ids {
		seeds = append(seeds, id)
	}
	ex.drain(ctx, seeds)
}

func outputsToMap(outputs map[string]Payload) map[string]any {
	m := make(map[string]any, len(outputs))
	for k, p := range outputs {
		m[k] = p.Value
	}
	return m
}

func toText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
