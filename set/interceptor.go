package set

import (
	"context"
	"sync/atomic"
)

// Operation identifies a [Set] or [Store] operation that an [Interceptor] can
// hook into.
type Operation int

const (
	// OpenOperation is [Store.Open].
	OpenOperation Operation = iota
	// HasOperation is [Set.Has].
	HasOperation
	// AddOperation is [Set.TryAdd].
	AddOperation
	// RemoveOperation is [Set.TryRemove].
	RemoveOperation
	// LenOperation is [Set.Len].
	LenOperation
	// ClearOperation is [Set.Clear].
	ClearOperation
	// RangeOperation is [Set.Range].
	RangeOperation

	operationCount
)

// Hook is called before an intercepted operation is performed.
//
// set is the name of the set. v is the member the operation concerns, or nil
// for operations that do not concern a single member. If the hook returns an
// error the operation is not performed and the error is returned in its place.
type Hook func(set string, v []byte) error

// Interceptor holds the hooks installed in front of the sets opened through
// [WithInterceptor]. Hooks may be changed while those sets are in use.
type Interceptor struct {
	hooks [operationCount]atomic.Pointer[Hook]
}

// Before installs fn as the hook for op, replacing any existing hook. A nil fn
// removes the hook.
func (i *Interceptor) Before(op Operation, fn Hook) {
	if fn == nil {
		i.hooks[op].Store(nil)
	} else {
		i.hooks[op].Store(&fn)
	}
}

func (i *Interceptor) call(op Operation, set string, v []byte) error {
	if fn := i.hooks[op].Load(); fn != nil {
		return (*fn)(set, v)
	}
	return nil
}

// WithInterceptor returns a [Store] that calls the hooks of in before each
// operation on s or on the sets it opens.
func WithInterceptor(s Store, in *Interceptor) Store {
	if in == nil {
		return s
	}
	return interceptedStore{s, in}
}

type interceptedStore struct {
	next Store
	in   *Interceptor
}

func (s interceptedStore) Open(ctx context.Context, name string) (Set, error) {
	if err := s.in.call(OpenOperation, name, nil); err != nil {
		return nil, err
	}

	next, err := s.next.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	return interceptedSet{next, s.in}, nil
}

type interceptedSet struct {
	Set
	in *Interceptor
}

func (s interceptedSet) Has(ctx context.Context, v []byte) (bool, error) {
	if err := s.in.call(HasOperation, s.Name(), v); err != nil {
		return false, err
	}
	return s.Set.Has(ctx, v)
}

func (s interceptedSet) TryAdd(ctx context.Context, v []byte) (bool, error) {
	if err := s.in.call(AddOperation, s.Name(), v); err != nil {
		return false, err
	}
	return s.Set.TryAdd(ctx, v)
}

func (s interceptedSet) TryRemove(ctx context.Context, v []byte) (bool, error) {
	if err := s.in.call(RemoveOperation, s.Name(), v); err != nil {
		return false, err
	}
	return s.Set.TryRemove(ctx, v)
}

func (s interceptedSet) Len(ctx context.Context) (int, error) {
	if err := s.in.call(LenOperation, s.Name(), nil); err != nil {
		return 0, err
	}
	return s.Set.Len(ctx)
}

func (s interceptedSet) Clear(ctx context.Context) error {
	if err := s.in.call(ClearOperation, s.Name(), nil); err != nil {
		return err
	}
	return s.Set.Clear(ctx)
}

func (s interceptedSet) Range(ctx context.Context, fn RangeFunc) error {
	if err := s.in.call(RangeOperation, s.Name(), nil); err != nil {
		return err
	}
	return s.Set.Range(ctx, fn)
}
