package set

import (
	"context"

	"github.com/dogmatiq/encstrset/internal/telemetry"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// WithTelemetry returns a [Store] that records traces, metrics and logs about
// the operations performed on s and its sets.
func WithTelemetry(
	s Store,
	p trace.TracerProvider,
	m metric.MeterProvider,
	l log.LoggerProvider,
) Store {
	return &instrumentedStore{
		next: s,
		provider: telemetry.Provider{
			TracerProvider: p,
			MeterProvider:  m,
			LoggerProvider: l,
		},
	}
}

type instrumentedStore struct {
	next     Store
	provider telemetry.Provider
}

func (s *instrumentedStore) Open(ctx context.Context, name string) (Set, error) {
	telem := s.provider.Recorder(
		"github.com/dogmatiq/encstrset/set",
		telemetry.Type("set.store", s.next),
		telemetry.String("set.name", name),
		telemetry.String("set.handle", telemetry.HandleID()),
	)

	ctx, span := telem.StartSpan(ctx, "set.open")
	defer span.End()

	next, err := s.next.Open(ctx, name)
	if err != nil {
		telem.Error(ctx, "set.open.error", err)
		return nil, err
	}

	set := &instrumentedSet{
		next:       next,
		telem:      telem,
		openSets:   telem.UpDownCounter("open_sets", "{set}", "The number of sets currently open."),
		memberIO:   telem.Counter("member.io", "By", "The cumulative size of the members operated upon."),
		memberSize: telem.Histogram("member.size", "By", "The sizes of the members operated upon."),
	}

	set.openSets(ctx, 1)
	telem.Info(ctx, "set.open.ok", "opened set")

	return set, nil
}

type instrumentedSet struct {
	next  Set
	telem *telemetry.Recorder

	openSets   telemetry.Instrument[int64]
	memberIO   telemetry.Instrument[int64]
	memberSize telemetry.Instrument[int64]
}

func (s *instrumentedSet) Name() string {
	return s.next.Name()
}

func (s *instrumentedSet) Has(ctx context.Context, v []byte) (bool, error) {
	return s.member(
		ctx, "has", v, telemetry.ReadDirection, s.next.Has,
		"member is present", "member is not present",
	)
}

func (s *instrumentedSet) TryAdd(ctx context.Context, v []byte) (bool, error) {
	return s.member(
		ctx, "try_add", v, telemetry.WriteDirection, s.next.TryAdd,
		"member was added", "member was already present",
	)
}

func (s *instrumentedSet) TryRemove(ctx context.Context, v []byte) (bool, error) {
	return s.member(
		ctx, "try_remove", v, telemetry.WriteDirection, s.next.TryRemove,
		"member was removed", "member was not present",
	)
}

// member instruments an operation that concerns the single member v.
func (s *instrumentedSet) member(
	ctx context.Context,
	op string,
	v []byte,
	direction telemetry.Attr,
	fn func(context.Context, []byte) (bool, error),
	yes, no string,
) (bool, error) {
	size := int64(len(v))

	ctx, span := s.telem.StartSpan(
		ctx,
		"set."+op,
		telemetry.Cypher("member", v),
		telemetry.Int("member_size", size),
	)
	defer span.End()

	s.memberIO(ctx, size, direction)
	s.memberSize(ctx, size, direction)

	ok, err := fn(ctx, v)
	if err != nil {
		s.telem.Error(ctx, "set."+op+".error", err)
		return false, err
	}

	span.SetAttributes(telemetry.Bool("result", ok))

	message := no
	if ok {
		message = yes
	}
	s.telem.Info(ctx, "set."+op+".ok", message)

	return ok, nil
}

func (s *instrumentedSet) Len(ctx context.Context) (int, error) {
	ctx, span := s.telem.StartSpan(ctx, "set.len")
	defer span.End()

	n, err := s.next.Len(ctx)
	if err != nil {
		s.telem.Error(ctx, "set.len.error", err)
		return 0, err
	}

	span.SetAttributes(telemetry.Int("member_count", n))
	s.telem.Info(ctx, "set.len.ok", "counted members")

	return n, nil
}

func (s *instrumentedSet) Clear(ctx context.Context) error {
	ctx, span := s.telem.StartSpan(ctx, "set.clear")
	defer span.End()

	if err := s.next.Clear(ctx); err != nil {
		s.telem.Error(ctx, "set.clear.error", err)
		return err
	}

	s.telem.Info(ctx, "set.clear.ok", "removed every member")

	return nil
}

func (s *instrumentedSet) Range(ctx context.Context, fn RangeFunc) error {
	ctx, span := s.telem.StartSpan(ctx, "set.range")
	defer span.End()

	visited := 0

	err := s.next.Range(
		ctx,
		func(ctx context.Context, v []byte) (bool, error) {
			visited++

			size := int64(len(v))
			s.memberIO(ctx, size, telemetry.ReadDirection)
			s.memberSize(ctx, size, telemetry.ReadDirection)

			return fn(ctx, v)
		},
	)

	span.SetAttributes(telemetry.Int("visited_count", visited))

	if err != nil {
		s.telem.Error(ctx, "set.range.error", err)
		return err
	}

	s.telem.Info(ctx, "set.range.ok", "ranged over members")

	return nil
}

// Close closes the underlying set. Closing an already closed set is a no-op.
func (s *instrumentedSet) Close() error {
	if s.next == nil {
		return nil
	}

	next := s.next
	s.next = nil

	ctx, span := s.telem.StartSpan(context.Background(), "set.close")
	defer span.End()

	s.openSets(ctx, -1)

	if err := next.Close(); err != nil {
		s.telem.Error(ctx, "set.close.error", err)
		return err
	}

	s.telem.Info(ctx, "set.close.ok", "closed set")

	return nil
}
