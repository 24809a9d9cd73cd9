package encstrset

import (
	"io"
	"os"

	"github.com/dogmatiq/encstrset/driver/memory/memoryset"
	"github.com/dogmatiq/encstrset/internal/telemetry"
	"github.com/dogmatiq/encstrset/set"
	"go.opentelemetry.io/otel/log"
	lognoop "go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// DefaultNamePrefix is the prefix added to the names of the sets that a
// [Registry] opens in its underlying store.
const DefaultNamePrefix = "encstrset/"

// Option is a function that changes the behavior of a [Registry].
type Option func(*config)

// WithStore is an [Option] that sets the store that holds the members of each
// collection.
//
// Every collection is held in its own set within s. The store is shared
// with the registry, but not owned by it. Closing the registry does not
// close the store.
func WithStore(s set.Store) Option {
	return func(c *config) {
		c.store = s
	}
}

// WithTrace is an [Option] that sets the writer to which the diagnostic
// trace is written. A nil writer disables the trace.
func WithTrace(w io.Writer) Option {
	return func(c *config) {
		c.trace = w
	}
}

// WithoutTrace is an [Option] that disables the diagnostic trace.
func WithoutTrace() Option {
	return WithTrace(nil)
}

// WithTelemetry is an [Option] that records traces, metrics and logs about
// the registry and its underlying store using the given providers.
func WithTelemetry(
	p trace.TracerProvider,
	m metric.MeterProvider,
	l log.LoggerProvider,
) Option {
	return func(c *config) {
		c.telemetry = telemetry.Provider{
			TracerProvider: p,
			MeterProvider:  m,
			LoggerProvider: l,
		}
		c.instrumentStore = true
	}
}

// WithNamePrefix is an [Option] that replaces [DefaultNamePrefix].
func WithNamePrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
	}
}

type config struct {
	store           set.Store
	trace           io.Writer
	prefix          string
	telemetry       telemetry.Provider
	instrumentStore bool
}

func newConfig(options []Option) config {
	c := config{
		prefix: DefaultNamePrefix,
		telemetry: telemetry.Provider{
			TracerProvider: tracenoop.NewTracerProvider(),
			MeterProvider:  metricnoop.NewMeterProvider(),
			LoggerProvider: lognoop.NewLoggerProvider(),
		},
	}

	if traceByDefault {
		c.trace = os.Stderr
	}

	for _, opt := range options {
		opt(&c)
	}

	if c.store == nil {
		c.store = &memoryset.Store{}
	}

	return c
}

// buildStore returns the store used by the registry, decorated according to
// the configuration.
func (c config) buildStore() set.Store {
	s := set.WithNamePrefix(c.store, c.prefix)

	if c.instrumentStore {
		s = set.WithTelemetry(
			s,
			c.telemetry.TracerProvider,
			c.telemetry.MeterProvider,
			c.telemetry.LoggerProvider,
		)
	}

	return s
}
