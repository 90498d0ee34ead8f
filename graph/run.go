package graph

import (
	"context"

	"github.com/google/uuid"
)

// Run compiles spec against userMessage and drives it to completion,
// returning a channel of OutputMessage the caller ranges over until it
// closes. This is the single public entry point most callers need —
// the CLI/embedding shell referenced by §6 is expected to sit directly
// on top of it.
func Run(ctx context.Context, spec *Spec, userMessage string) <-chan OutputMessage {
	g := Build(spec, userMessage)
	return RunGraph(ctx, g, spec.Debug, spec.DebugConfig)
}

// RunGraph drives an already-compiled Graph, letting a caller that
// wants to inspect or mutate the compiled structure (tests, the
// nested-graph runtime) bypass Build.
func RunGraph(ctx context.Context, g *Graph, debugEnabled bool, cfg *DebugConfig) <-chan OutputMessage {
	bus := newOutputBus(64)

	var capture *DebugCapture
	var cost *CostTracker
	var metrics *PrometheusMetrics
	runID := uuid.NewString()
	if debugEnabled {
		if cfg == nil {
			cfg = &DebugConfig{}
		}
		capture = NewDebugCapture(runID, cfg, bus.ch)
		if cfg.EnableCost {
			cost = NewCostTracker(runID, "USD")
		}
		metrics = cfg.Metrics
	} else {
		capture = NewDebugCapture(runID, nil, nil)
	}

	tmpl := NewTemplateEngine()
	ex := NewExecutor(g, capture, bus, tmpl, cost, metrics)

	go func() {
		defer bus.close()
		ex.Run(ctx)
		_ = capture.Flush(ctx)
	}()

	return bus.ch
}
