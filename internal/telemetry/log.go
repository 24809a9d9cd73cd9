package telemetry

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
)

// Info records an informational event, both as a log record and as an event
// on the span in ctx.
func (r *Recorder) Info(
	ctx context.Context,
	event, message string,
	attrs ...Attr,
) {
	r.emit(ctx, log.SeverityInfo, event, message, attrs)
}

// Error records err in the same way as [Recorder.Info], marks the span in ctx
// as failed and increments the "errors" counter.
func (r *Recorder) Error(
	ctx context.Context,
	event string,
	err error,
	attrs ...Attr,
) {
	r.errors(ctx, 1)

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	attrs = append(slices.Clip(attrs), String("error", err.Error()))
	r.emit(ctx, log.SeverityError, event, err.Error(), attrs)
}

func (r *Recorder) emit(
	ctx context.Context,
	severity log.Severity,
	event, message string,
	attrs []Attr,
) {
	trace.SpanFromContext(ctx).AddEvent(
		event,
		trace.WithAttributes(attribute.String("message", message)),
		trace.WithAttributes(spanAttrs(attrs)...),
	)

	if !r.logger.Enabled(ctx, log.EnabledParameters{Severity: severity}) {
		return
	}

	var rec log.Record
	rec.SetEventName(event)
	rec.SetSeverity(severity)
	rec.SetBody(log.StringValue(message))
	rec.AddAttributes(logAttrs(attrs)...)

	r.logger.Emit(ctx, rec)
}
