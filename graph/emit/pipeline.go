package emit

import "context"

// Pipeline runs every captured Event through an ordered chain of Filters
// before handing surviving events to a backing Emitter. It implements
// Emitter itself, so a Pipeline can be used anywhere an Emitter is
// expected — including as one leg of a fan-out via Tee.
type Pipeline struct {
	Filters []Filter
	Sink    Emitter
}

// NewPipeline builds a Pipeline that applies filters in order, then
// forwards to sink.
func NewPipeline(sink Emitter, filters ...Filter) *Pipeline {
	return &Pipeline{Filters: filters, Sink: sink}
}

// Emit applies the filter chain and forwards to Sink if the event
// survives. A dropped event is silently discarded, matching the
// Emitter contract: Emit never blocks or panics on a filtered event.
func (p *Pipeline) Emit(e Event) {
	ok := true
	for _, f := range p.Filters {
		e, ok = f(e)
		if !ok {
			return
		}
	}
	p.Sink.Emit(e)
}

// EmitBatch filters events and forwards the survivors to Sink in one call.
func (p *Pipeline) EmitBatch(ctx context.Context, events []Event) error {
	kept := make([]Event, 0, len(events))
	for _, e := range events {
		ok := true
		for _, f := range p.Filters {
			e, ok = f(e)
			if !ok {
				break
			}
		}
		if ok {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return p.Sink.EmitBatch(ctx, kept)
}

// Flush forwards to Sink's Flush.
func (p *Pipeline) Flush(ctx context.Context) error {
	return p.Sink.Flush(ctx)
}

// Tee fans a single Emit/EmitBatch/Flush call out to every given
// Emitter, collecting the first error encountered (if any) but still
// attempting every sink.
type Tee struct {
	Sinks []Emitter
}

// NewTee constructs a Tee over the given sinks.
func NewTee(sinks ...Emitter) *Tee {
	return &Tee{Sinks: sinks}
}

func (t *Tee) Emit(e Event) {
	for _, s := range t.Sinks {
		s.Emit(e)
	}
}

func (t *Tee) EmitBatch(ctx context.Context, events []Event) error {
	var first error
	for _, s := range t.Sinks {
		if err := s.EmitBatch(ctx, events); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t *Tee) Flush(ctx context.Context) error {
	var first error
	for _, s := range t.Sinks {
		if err := s.Flush(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
