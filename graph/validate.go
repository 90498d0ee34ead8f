package graph

import "fmt"

// Validate checks the structural invariants Build relies on:
//
//   - V1: exactly one user_input node exists; it becomes the master
//     when none is declared.
//   - V2: no two edges share the same (source, sourceType, target,
//     targetKey) tuple — a duplicate would double-write the same input.
//   - V3: every nested `inner` node's embedded spec validates
//     recursively, with failures attributed to the host node's id.
//
// Failures are appended to errs rather than returned, matching Build's
// accumulate-and-continue compilation strategy: a malformed nested
// graph does not prevent the rest of the graph from compiling.
func Validate(spec *Spec, errs *[]*EngineError) {
	validateEntry(spec, errs)
	validateDuplicateEdges(spec, errs)
	validateNested(spec, errs)
}

func validateEntry(spec *Spec, errs *[]*EngineError) {
	count := 0
	var ids []string
	for _, n := range spec.Nodes {
		if n.Type == TypeUserInput {
			count++
			ids = append(ids, n.ID)
		}
	}
	switch {
	case count == 0:
		*errs = append(*errs, NewEngineError(KindSpecError, "", "no user_input node present", nil, nil))
	case count > 1:
		*errs = append(*errs, NewEngineError(KindSpecError, "", fmt.Sprintf("ambiguous entry: %d user_input nodes", count), nil, map[string]any{"candidates": ids}))
	case spec.Master == "":
		spec.Master = ids[0]
	}
}

func validateDuplicateEdges(spec *Spec, errs *[]*EngineError) {
	seen := make(map[edgeKey]bool, len(spec.Edges))
	for _, e := range spec.Edges {
		target := e.TargetHandle
		if target == "" {
			target = VoidTargetKey
		}
		k := edgeKey{Source: e.Source, Target: e.Target, SourceType: e.SourceHandle, TargetKey: target}
		if seen[k] {
			*errs = append(*errs, NewEngineError(KindSpecError, e.Target, fmt.Sprintf("duplicate edge %s:%s -> %s:%s", e.Source, e.SourceHandle, e.Target, target), nil, nil))
			continue
		}
		seen[k] = true
	}
}

func validateNested(spec *Spec, errs *[]*EngineError) {
	for _, n := range spec.Nodes {
		if n.Type != TypeInner {
			continue
		}
		if n.MagicFlow == nil {
			*errs = append(*errs, NewEngineError(KindSpecError, n.ID, "inner node missing magic_flow", nil, nil))
			continue
		}
		var nested []*EngineError
		Validate(n.MagicFlow, &nested)
		for _, e := range nested {
			e.NodeID = n.ID + "/" + e.NodeID
			*errs = append(*errs, e)
		}
	}
}
