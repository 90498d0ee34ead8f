package graph

import (
	"context"
	"sync"
)

// RuntimeFactory constructs a fresh, unconfigured Runtime for one node.
type RuntimeFactory func() Runtime

var (
	registryMu sync.RWMutex
	registry   = make(map[string]RuntimeFactory)
)

// RegisterNodeType registers factory under typ, so Build can
// instantiate a Runtime for every NodeSpec whose Type == typ. Intended
// to be called from an implementing package's init(), e.g. the
// built-in nodes package — keeping graph itself free of a dependency
// on any concrete node implementation.
func RegisterNodeType(typ string, factory RuntimeFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[typ] = factory
}

// lookupNodeType returns the registered factory for typ, if any.
func lookupNodeType(typ string) (RuntimeFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[typ]
	return f, ok
}

// stubRuntime is substituted for any NodeSpec whose Type has no
// registered factory, per §4.1 guarantee #4: an unknown node type
// never aborts compilation, it becomes an inert node that emits no
// events at all: no debug record and no "end" event. The scheduler
// marks it executed, but edges on its terminal handle never deliver.
type stubRuntime struct{}

func (stubRuntime) Configure(string, map[string]any) error { return nil }

func (stubRuntime) Run(_ context.Context, _ *RunContext) <-chan Event {
	out := make(chan Event, 1)
	close(out)
	return out
}

func (stubRuntime) Iterate() bool { return false }
