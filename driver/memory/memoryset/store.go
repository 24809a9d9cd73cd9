package memoryset

import (
	"context"
	"sync"

	"github.com/dogmatiq/encstrset/set"
)

// Store is an implementation of [set.Store] that keeps sets in memory.
//
// The members of a set are retained for as long as the set is open or not
// empty. Once every instance of a set is closed and the set has no members its
// state is discarded.
type Store struct {
	m    sync.Mutex
	sets map[string]*members
}

// members is the shared in-memory state of a set.
type members struct {
	m      sync.RWMutex
	refs   int
	values map[string]struct{}
}

// Open returns the set with the given name.
//
// It never fails. The context is accepted to satisfy [set.Store] and is not
// consulted, such that opening a set has no partial outcome.
func (s *Store) Open(_ context.Context, name string) (set.Set, error) {
	s.m.Lock()
	defer s.m.Unlock()

	st, ok := s.sets[name]
	if !ok {
		if s.sets == nil {
			s.sets = map[string]*members{}
		}
		st = &members{values: map[string]struct{}{}}
		s.sets[name] = st
	}

	st.refs++

	return &setimpl{
		store: s,
		name:  name,
		state: st,
	}, nil
}

// release drops a reference to the state of the named set, discarding it if
// nothing else refers to it and it has no members.
func (s *Store) release(name string, st *members) {
	s.m.Lock()
	defer s.m.Unlock()

	st.refs--
	if st.refs > 0 {
		return
	}

	st.m.RLock()
	empty := len(st.values) == 0
	st.m.RUnlock()

	if empty {
		delete(s.sets, name)
	}
}

// retained returns the number of sets whose state is held in memory.
func (s *Store) retained() int {
	s.m.Lock()
	defer s.m.Unlock()
	return len(s.sets)
}
