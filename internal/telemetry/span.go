package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Span is an operation in progress.
type Span struct {
	ctx      context.Context
	span     trace.Span
	recorder *Recorder
}

// StartSpan starts a span named name and counts it in the "operations" and
// "operations.in_flight" metrics. The returned context carries the span.
func (r *Recorder) StartSpan(
	ctx context.Context,
	name string,
	attrs ...Attr,
) (context.Context, *Span) {
	ctx, span := r.tracer.Start(ctx, name, trace.WithAttributes(spanAttrs(attrs)...))

	r.operations(ctx, 1)
	r.inFlight(ctx, 1)

	return ctx, &Span{ctx, span, r}
}

// SetAttributes adds attributes to the span.
func (s *Span) SetAttributes(attrs ...Attr) {
	s.span.SetAttributes(spanAttrs(attrs)...)
}

// End completes the span.
func (s *Span) End() {
	s.recorder.inFlight(s.ctx, -1)
	s.span.End()
}
