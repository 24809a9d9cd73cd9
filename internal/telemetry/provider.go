package telemetry

import (
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Provider builds [Recorder] values from a set of OpenTelemetry providers.
type Provider struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	LoggerProvider log.LoggerProvider
}

// Recorder emits spans, measurements and log records on behalf of a single
// package.
type Recorder struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger log.Logger

	errors     Instrument[int64]
	operations Instrument[int64]
	inFlight   Instrument[int64]
}

// Recorder returns a [Recorder] for the package with the import path pkg.
//
// attrs are attached to the instrumentation scope, and so to everything the
// recorder emits.
func (p *Provider) Recorder(pkg string, attrs ...Attr) *Recorder {
	version := moduleVersion()
	scope := spanAttrs(attrs)

	r := &Recorder{
		tracer: p.TracerProvider.Tracer(
			pkg,
			trace.WithInstrumentationVersion(version),
			trace.WithInstrumentationAttributes(scope...),
		),
		meter: p.MeterProvider.Meter(
			pkg,
			metric.WithInstrumentationVersion(version),
			metric.WithInstrumentationAttributes(scope...),
		),
		logger: p.LoggerProvider.Logger(
			pkg,
			log.WithInstrumentationVersion(version),
			log.WithInstrumentationAttributes(scope...),
		),
	}

	r.errors = r.Counter("errors", "{error}", "The number of errors reported.")
	r.operations = r.Counter("operations", "{operation}", "The number of operations started.")
	r.inFlight = r.UpDownCounter("operations.in_flight", "{operation}", "The number of operations in progress.")

	return r
}

const modulePath = "github.com/dogmatiq/encstrset"

// moduleVersion returns the version of this module recorded in the running
// binary's build information.
var moduleVersion = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	if info.Main.Path == modulePath {
		return info.Main.Version
	}

	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			return dep.Version
		}
	}

	return "unknown"
})
