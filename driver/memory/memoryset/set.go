package memoryset

import (
	"context"
	"errors"
	"maps"

	"github.com/dogmatiq/encstrset/set"
)

// setimpl is an implementation of [set.Set] that manipulates the in-memory
// state shared by every instance of the set with the same name.
//
// The context is checked before the state is read or modified, so an operation
// that returns an error has no effect.
type setimpl struct {
	store *Store
	name  string
	state *members
}

func (s *setimpl) Name() string {
	return s.name
}

func (s *setimpl) Has(ctx context.Context, v []byte) (bool, error) {
	st := s.open()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	st.m.RLock()
	defer st.m.RUnlock()

	_, ok := st.values[string(v)]
	return ok, nil
}

func (s *setimpl) TryAdd(ctx context.Context, v []byte) (bool, error) {
	st := s.open()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	st.m.Lock()
	defer st.m.Unlock()

	if _, ok := st.values[string(v)]; ok {
		return false, nil
	}

	st.values[string(v)] = struct{}{}
	return true, nil
}

func (s *setimpl) TryRemove(ctx context.Context, v []byte) (bool, error) {
	st := s.open()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	st.m.Lock()
	defer st.m.Unlock()

	if _, ok := st.values[string(v)]; !ok {
		return false, nil
	}

	delete(st.values, string(v))
	return true, nil
}

func (s *setimpl) Len(ctx context.Context) (int, error) {
	st := s.open()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	st.m.RLock()
	defer st.m.RUnlock()

	return len(st.values), nil
}

func (s *setimpl) Clear(ctx context.Context) error {
	st := s.open()

	if err := ctx.Err(); err != nil {
		return err
	}

	st.m.Lock()
	defer st.m.Unlock()

	clear(st.values)
	return nil
}

func (s *setimpl) Range(ctx context.Context, fn set.RangeFunc) error {
	st := s.open()

	st.m.RLock()
	values := maps.Clone(st.values)
	st.m.RUnlock()

	for v := range values {
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, err := fn(ctx, []byte(v))
		if !ok || err != nil {
			return err
		}
	}

	return ctx.Err()
}

func (s *setimpl) Close() error {
	if s.state == nil {
		return errors.New("set is already closed")
	}

	s.store.release(s.name, s.state)
	s.state = nil

	return nil
}

func (s *setimpl) open() *members {
	if s.state == nil {
		panic("set is closed")
	}
	return s.state
}
