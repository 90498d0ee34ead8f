package graph

import (
	"context"
	"time"

	"github.com/flowgraph/flowgraph/graph/emit"
)

// DebugConfig controls the debug pipeline: what gets captured, how it
// is transformed before leaving the process, and where it is sent. A
// nil *DebugConfig on a Spec with Debug == true falls back to
// PresetDefault with no additional filters and a log backend.
type DebugConfig struct {
	// Preset names one of emit.PresetDefault/Minimal/Verbose/Production/ErrorsOnly.
	Preset string `json:"preset,omitempty"`

	// Include, if non-empty, keeps only events whose Msg is listed.
	Include []string `json:"include,omitempty"`
	// Exclude drops events whose Msg is listed, applied after Include.
	Exclude []string `json:"exclude,omitempty"`
	// RedactKeys marks Meta keys (substring match) for redaction.
	RedactKeys []string `json:"redact_keys,omitempty"`
	// TruncateAt caps string Meta values to this many runes; 0 disables.
	TruncateAt int `json:"truncate_at,omitempty"`
	// SampleRate keeps each event with this probability; 0 disables sampling.
	SampleRate float64 `json:"sample_rate,omitempty"`

	// Callback, when set, receives every surviving debug event in
	// addition to whatever Backend does. Errors from Callback are
	// swallowed — the debug pipeline never perturbs graph execution.
	Callback func(emit.Event)

	// Backend is the Emitter events are forwarded to after filtering.
	// A nil Backend defaults to emit.NewLogEmitter at text level.
	Backend emit.Emitter

	// EnableCost turns on per-run LLM cost tracking, surfaced through
	// RunContext.Cost to every llm/chat node. The debug_summary carries
	// no token or cost totals.
	EnableCost bool

	// Metrics, when set, receives Prometheus instrumentation for queue
	// depth and per-node step latency as the scheduler runs.
	Metrics *PrometheusMetrics
}

// buildPipeline assembles the filter chain for cfg: preset filters
// first, then explicit include/exclude/redact/truncate/sample
// overrides, matching the order Pipeline applies them.
func (cfg *DebugConfig) buildPipeline(sink emit.Emitter) *emit.Pipeline {
	var filters []Filter
	preset := cfg.Preset
	if preset == "" {
		preset = emit.PresetDefault
	}
	filters = append(filters, emit.BuildPreset(preset)...)
	if len(cfg.Include) > 0 {
		filters = append(filters, emit.IncludeTypes(cfg.Include...))
	}
	if len(cfg.Exclude) > 0 {
		filters = append(filters, emit.ExcludeTypes(cfg.Exclude...))
	}
	if len(cfg.RedactKeys) > 0 {
		filters = append(filters, emit.RedactKeys(cfg.RedactKeys...))
	}
	if cfg.TruncateAt > 0 {
		filters = append(filters, emit.TruncateStrings(cfg.TruncateAt))
	}
	if cfg.SampleRate > 0 && cfg.SampleRate < 1 {
		filters = append(filters, emit.Sample(cfg.SampleRate))
	}
	return emit.NewPipeline(sink, filters...)
}

// Filter is an alias so DebugConfig's builder reads naturally without
// importing emit at every call site in this file.
type Filter = emit.Filter

// DebugCapture is the per-invocation handle nodes and the executor use
// to record debug events. It owns a RunID, a monotonically increasing
// Step counter, and the filtered Pipeline events flow through before
// reaching the configured backend and optional callback.
type DebugCapture struct {
	RunID    string
	step     int
	pipeline *emit.Pipeline
	callback func(emit.Event)
	enabled  bool

	// outbound, when non-nil, receives a streamable copy of every
	// surviving event as an OutputMessage for the caller's output
	// channel — the bridge between the debug pipeline and §5 of the
	// output protocol.
	outbound chan<- OutputMessage

	summary []NodeDebugInfo
}

// NewDebugCapture builds a DebugCapture for one graph invocation. If
// cfg is nil, debug capture is disabled: Record becomes a no-op and no
// events are ever produced, regardless of Spec.Debug.
func NewDebugCapture(runID string, cfg *DebugConfig, outbound chan<- OutputMessage) *DebugCapture {
	if cfg == nil {
		return &DebugCapture{RunID: runID, enabled: false}
	}
	backend := cfg.Backend
	if backend == nil {
		backend = emit.NewLogEmitter(nil, false)
	}
	return &DebugCapture{
		RunID:    runID,
		pipeline: cfg.buildPipeline(backend),
		callback: cfg.Callback,
		enabled:  true,
		outbound: outbound,
	}
}

// Enabled reports whether this capture actually records anything.
func (d *DebugCapture) Enabled() bool {
	return d != nil && d.enabled
}

// Record emits one debug event: incrementing Step, running it through
// the filter pipeline and, if it survives, handing it to the backend,
// invoking Callback, and — when an outbound channel is attached —
// publishing it as a "debug" OutputMessage.
func (d *DebugCapture) Record(nodeID, msg string, meta map[string]interface{}) {
	if d == nil || !d.enabled {
		return
	}
	d.step++
	ev := emit.Event{
		RunID:  d.RunID,
		Step:   d.step,
		NodeID: nodeID,
		Msg:    msg,
		Meta:   meta,
	}
	for _, f := range d.pipeline.Filters {
		var ok bool
		if ev, ok = f(ev); !ok {
			return
		}
	}
	d.pipeline.Sink.Emit(ev)
	if d.callback != nil {
		d.callback(ev)
	}
	if d.outbound != nil {
		select {
		case d.outbound <- OutputMessage{Type: OutputTypeDebug, Content: ev}:
		default:
		}
	}
}

// RecordNode folds a NodeDebugInfo snapshot into both the event stream
// (as a node_end/node_error event) and the accumulated summary emitted
// at graph_end as a debug_summary OutputMessage.
func (d *DebugCapture) RecordNode(info NodeDebugInfo) {
	if d == nil {
		return
	}
	msg := emit.MsgNodeEnd
	if !info.WasExecuted && !info.WasBypassed {
		msg = emit.MsgNodeError
	}
	if d.enabled {
		d.summary = append(d.summary, info)
		d.Record(info.NodeID, msg, map[string]interface{}{
			"type":         info.Type,
			"was_executed": info.WasExecuted,
			"was_bypassed": info.WasBypassed,
			"duration_ms":  info.DurationMS,
		})
	}
}

// Flush flushes the backing Emitter, bounding on ctx.
func (d *DebugCapture) Flush(ctx context.Context) error {
	if d == nil || !d.enabled {
		return nil
	}
	return d.pipeline.Flush(ctx)
}

// Summary returns the accumulated per-node debug snapshots, in the
// order nodes finished, for the graph_end debug_summary message.
func (d *DebugCapture) Summary() []NodeDebugInfo {
	if d == nil {
		return nil
	}
	return d.summary
}

// timeSince reports the whole milliseconds elapsed since start, read
// from the real clock.
func timeSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
