package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Instrument records a measurement.
type Instrument[T int64 | float64] func(ctx context.Context, v T, attrs ...Attr)

var (
	// ReadDirection marks a measurement of data read from a store.
	ReadDirection = String("io.direction", "read")

	// WriteDirection marks a measurement of data sent to a store.
	WriteDirection = String("io.direction", "write")
)

// Counter returns a monotonic counter.
func (r *Recorder) Counter(name, unit, desc string) Instrument[int64] {
	c, err := r.meter.Int64Counter(name, metric.WithUnit(unit), metric.WithDescription(desc))
	must(err)

	return func(ctx context.Context, v int64, attrs ...Attr) {
		c.Add(ctx, v, measurement(attrs))
	}
}

// UpDownCounter returns a counter that may also be decremented.
func (r *Recorder) UpDownCounter(name, unit, desc string) Instrument[int64] {
	c, err := r.meter.Int64UpDownCounter(name, metric.WithUnit(unit), metric.WithDescription(desc))
	must(err)

	return func(ctx context.Context, v int64, attrs ...Attr) {
		c.Add(ctx, v, measurement(attrs))
	}
}

// Histogram returns a histogram.
func (r *Recorder) Histogram(name, unit, desc string) Instrument[int64] {
	h, err := r.meter.Int64Histogram(name, metric.WithUnit(unit), metric.WithDescription(desc))
	must(err)

	return func(ctx context.Context, v int64, attrs ...Attr) {
		h.Record(ctx, v, measurement(attrs))
	}
}

func measurement(attrs []Attr) metric.MeasurementOption {
	return metric.WithAttributes(spanAttrs(attrs)...)
}

// must panics if an instrument could not be created. That only happens when
// an instrument name is invalid.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
