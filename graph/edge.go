package graph

import "sync/atomic"

// Edge is a directed, handle-routed connection between two compiled
// nodes. SourceType is matched against an Event's source_type as the
// source node runs; TargetKey names the input slot the payload lands
// in on the target. Edges carry a runtime bypass bit, initially false.
type Edge struct {
	Source     string
	SourceType string
	Target     string
	TargetKey  string

	bypassed atomic.Bool
}

// Key returns the tuple validation and deduplication key for this edge.
func (e *Edge) Key() edgeKey {
	return edgeKey{Source: e.Source, Target: e.Target, SourceType: e.SourceType, TargetKey: e.TargetKey}
}

type edgeKey struct {
	Source, Target, SourceType, TargetKey string
}

// Bypassed reports whether this edge is currently marked bypassed.
func (e *Edge) Bypassed() bool { return e.bypassed.Load() }

// MarkBypassed flips the edge's bypass bit. It is idempotent.
func (e *Edge) MarkBypassed() { e.bypassed.Store(true) }
