package graph

import (
	"context"
	"testing"

	"github.com/flowgraph/flowgraph/graph/emit"
)

func TestDebugCaptureDisabledIsNoOp(t *testing.T) {
	d := NewDebugCapture("run", nil, nil)
	if d.Enabled() {
		t.Fatalf("expected a nil-config capture to be disabled")
	}
	d.Record("n1", "node_start", nil)
	if len(d.Summary()) != 0 {
		t.Fatalf("expected no summary entries from a disabled capture")
	}
}

func TestDebugCaptureRecordsAndSummarizes(t *testing.T) {
	var seen []emit.Event
	cfg := &DebugConfig{Callback: func(ev emit.Event) { seen = append(seen, ev) }}
	d := NewDebugCapture("run", cfg, nil)

	d.Record("n1", emit.MsgNodeStart, map[string]interface{}{"x": 1})
	d.RecordNode(NodeDebugInfo{NodeID: "n1", Type: TypeText, WasExecuted: true})

	if len(seen) != 2 {
		t.Fatalf("expected callback invoked for both Record and RecordNode, got %d", len(seen))
	}
	if len(d.Summary()) != 1 || d.Summary()[0].NodeID != "n1" {
		t.Fatalf("expected one summary entry for n1, got %v", d.Summary())
	}
}

func TestDebugCapturePresetMinimalDropsNodeStart(t *testing.T) {
	backend := emit.NewBufferedEmitter()
	cfg := &DebugConfig{Preset: emit.PresetMinimal, Backend: backend}
	d := NewDebugCapture("run", cfg, nil)

	d.Record("n1", emit.MsgNodeStart, nil)
	d.Record("n1", emit.MsgGraphEnd, nil)

	seen := backend.GetHistory("run")
	if len(seen) != 1 || seen[0].Msg != emit.MsgGraphEnd {
		t.Fatalf("expected minimal preset to keep only graph_end, got %v", seen)
	}
}

func TestDebugCaptureFlushIsSafeWhenDisabled(t *testing.T) {
	d := NewDebugCapture("run", nil, nil)
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("expected Flush on a disabled capture to be a no-op, got %v", err)
	}
}
