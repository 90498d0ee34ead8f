package graph

import (
	"context"
	"fmt"
)

func init() {
	RegisterNodeType(TypeConditional, func() Runtime { return &conditionalRuntime{} })
}

// conditionalBranch pairs a candidate template expression with the
// source_type (outgoing handle) to fire when it renders truthy.
type conditionalBranch struct {
	Handle    string `json:"handle"`
	When      string `json:"when"`
	IsDefault bool   `json:"default"`
}

// conditionalRuntime implements §4.6's branch selection: render each
// branch's `when` template against the bound inputs in declaration
// order, fire the first one that renders truthy (isTruthy: anything but
// "", "false", "False", "0", "null" or "nil"), and
// leave every other outgoing edge to be auto-bypassed by
// the scheduler's bypassUnfiredBranches step (the conditional itself
// only ever emits the one selected source_type). The selected branch
// event is followed by the usual terminal event, carrying the selected
// handle as metadata; per §4.6 the terminal edge does not participate
// in bypass, so a downstream node wired to it runs whenever a branch is
// selected. No branch matching and no declared default is a
// RoutingError and emits nothing, not even the terminal event.
type conditionalRuntime struct {
	branches []conditionalBranch
}

func (c *conditionalRuntime) Configure(_ string, data map[string]any) error {
	raw, ok := data["branches"].([]any)
	if !ok {
		return nil
	}
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		b := conditionalBranch{}
		if h, ok := m["handle"].(string); ok {
			b.Handle = h
		}
		if w, ok := m["when"].(string); ok {
			b.When = w
		}
		if d, ok := m["default"].(bool); ok {
			b.IsDefault = d
		}
		c.branches = append(c.branches, b)
	}
	return nil
}

func (c *conditionalRuntime) Iterate() bool { return false }

func (c *conditionalRuntime) Run(ctx context.Context, rc *RunContext) <-chan Event {
	out := make(chan Event, 2)
	go func() {
		defer close(out)

		var fallback *conditionalBranch
		for i := range c.branches {
			b := c.branches[i]
			if b.IsDefault {
				fallback = &b
				continue
			}
			rendered, err := rc.Template.Render(b.When, rc.Inputs)
			if err != nil {
				rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{
					"kind": string(KindTemplateError), "message": err.Error(), "branch": b.Handle,
				})
				continue
			}
			if isTruthy(rendered) {
				out <- NewEvent(b.Handle, rc.NodeID, rc.Inputs)
				out <- NewEvent(EndSourceType, rc.NodeID, map[string]any{"selected": b.Handle})
				return
			}
		}
		if fallback != nil {
			out <- NewEvent(fallback.Handle, rc.NodeID, rc.Inputs)
			out <- NewEvent(EndSourceType, rc.NodeID, map[string]any{"selected": fallback.Handle})
			return
		}
		rc.Debug.Record(rc.NodeID, "node_error", map[string]interface{}{
			"kind":    string(KindRoutingError),
			"message": fmt.Sprintf("no branch matched and no default declared on node %s", rc.NodeID),
		})
	}()
	return out
}

func isTruthy(s string) bool {
	switch s {
	case "", "false", "False", "0", "null", "nil":
		return false
	default:
		return true
	}
}
