package encstrset

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dogmatiq/encstrset/internal/telemetry"
	"github.com/dogmatiq/encstrset/set"
	"github.com/google/uuid"
)

// Handle identifies a collection within a [Registry].
//
// Handles are allocated sequentially from zero and are never reused, even
// after the collection they identify has been deleted.
type Handle uint64

// Registry is a set of independent collections of obfuscated strings.
//
// It is safe for concurrent use. Operations are serialized, so the observable
// behavior is that of a single-threaded registry.
type Registry struct {
	m      sync.Mutex
	id     string
	store  set.Store
	trace  *tracer
	telem  *telemetry.Recorder
	next   Handle
	live   map[Handle]set.Set
	closed bool
}

var errClosed = errors.New("registry is closed")

// New returns a new, empty registry.
//
// By default, collections are kept in memory. Use [WithStore] to keep them
// elsewhere.
func New(options ...Option) *Registry {
	cfg := newConfig(options)
	id := uuid.NewString()

	return &Registry{
		id:    id,
		store: cfg.buildStore(),
		trace: &tracer{cfg.trace},
		telem: cfg.telemetry.Recorder(
			"github.com/dogmatiq/encstrset",
			telemetry.String("registry.id", id),
		),
		live: map[Handle]set.Set{},
	}
}

// Create allocates a new handle and binds it to a new, empty collection.
//
// Create does not fail. If the underlying store cannot open the collection,
// the handle is still consumed, but it is never bound to a collection and
// all operations report it as nonexistent. The in-memory store never fails to
// open a collection, even if ctx has been cancelled.
func (r *Registry) Create(ctx context.Context) Handle {
	r.m.Lock()
	defer r.m.Unlock()

	const op = "encstrset_new"
	ctx, span := r.begin(ctx, op)
	defer span.End()

	h := r.next
	r.next++

	if r.closed {
		r.storageFailure(ctx, op, errClosed)
		return h
	}

	s, err := r.store.Open(ctx, r.collectionName(h))
	if err != nil {
		r.storageFailure(ctx, op, err)
		return h
	}

	r.live[h] = s
	span.SetAttributes(telemetry.Int("handle", h))

	r.trace.outcome(op, "set #%d created", h)
	r.telem.Info(
		ctx,
		"encstrset.create.ok",
		"created collection",
		telemetry.Int("handle", h),
	)

	return h
}

// Exists returns true if h identifies a live collection.
func (r *Registry) Exists(h Handle) bool {
	r.m.Lock()
	defer r.m.Unlock()

	_, ok := r.live[h]
	return ok
}

// Delete discards the collection identified by h.
//
// h is never valid again. It is a no-op if h does not exist.
func (r *Registry) Delete(ctx context.Context, h Handle) {
	r.m.Lock()
	defer r.m.Unlock()

	const op = "encstrset_delete"
	ctx, span := r.begin(ctx, op, handleArg(h))
	defer span.End()

	s, ok := r.lookup(op, h)
	if !ok {
		return
	}

	delete(r.live, h)

	// The handle is unbound regardless of the outcome, so the members are
	// discarded even if the caller's context has been cancelled.
	if err := s.Clear(context.WithoutCancel(ctx)); err != nil {
		r.storageFailure(ctx, op, err)
	}

	if err := s.Close(); err != nil {
		r.storageFailure(ctx, op, err)
	}

	r.trace.outcome(op, "set #%d deleted", h)
	r.telem.Info(
		ctx,
		"encstrset.delete.ok",
		"deleted collection",
		telemetry.Int("handle", h),
	)
}

// Clear removes all members from the collection identified by h without
// deleting it. It is a no-op if h does not exist.
func (r *Registry) Clear(ctx context.Context, h Handle) {
	r.m.Lock()
	defer r.m.Unlock()

	const op = "encstrset_clear"
	ctx, span := r.begin(ctx, op, handleArg(h))
	defer span.End()

	s, ok := r.lookup(op, h)
	if !ok {
		return
	}

	if err := s.Clear(ctx); err != nil {
		r.storageFailure(ctx, op, err)
		return
	}

	r.trace.outcome(op, "set #%d cleared", h)
}

// Close discards every live collection.
//
// After Close returns, every handle is reported as nonexistent and handles
// returned by subsequent calls to [Registry.Create] are never bound.
func (r *Registry) Close() error {
	r.m.Lock()
	defer r.m.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true

	var errs []error
	ctx := context.Background()

	for h, s := range r.live {
		if err := s.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("unable to clear set #%d: %w", h, err))
		}

		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("unable to close set #%d: %w", h, err))
		}
	}

	clear(r.live)

	return errors.Join(errs...)
}

// begin reports the start of an operation on the trace and starts a span
// that represents it.
func (r *Registry) begin(
	ctx context.Context,
	op string,
	args ...string,
) (context.Context, *telemetry.Span) {
	r.trace.call(op, args...)
	return r.telem.StartSpan(
		ctx,
		strings.Replace(op, "_", ".", 1),
		telemetry.String("operation", op),
	)
}

// lookup returns the collection identified by h, reporting it on the trace if
// it does not exist.
func (r *Registry) lookup(op string, h Handle) (set.Set, bool) {
	s, ok := r.live[h]
	if !ok {
		r.trace.notExist(op, h)
	}
	return s, ok
}

// collectionName returns the name of the set in the underlying store that
// holds the members of the collection identified by h.
//
// The registry ID keeps the collections of distinct registries apart when
// they share a store.
func (r *Registry) collectionName(h Handle) string {
	return fmt.Sprintf("%s/%d", r.id, h)
}

// storageFailure reports an error returned by the underlying store.
func (r *Registry) storageFailure(ctx context.Context, op string, err error) {
	r.trace.outcome(op, "storage failure: %s", err)
	r.telem.Error(
		ctx,
		"encstrset.storage.error",
		err,
		telemetry.String("operation", op),
	)
}
