package set

import "context"

// WithNamePrefix returns a [Store] that opens each set of s under prefix+name.
//
// The sets it returns still report the name they were opened with.
func WithNamePrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return prefixedStore{s, prefix}
}

type prefixedStore struct {
	next   Store
	prefix string
}

func (s prefixedStore) Open(ctx context.Context, name string) (Set, error) {
	next, err := s.next.Open(ctx, s.prefix+name)
	if err != nil {
		return nil, err
	}
	return renamedSet{next, name}, nil
}

// renamedSet hides the prefix from [Set.Name].
type renamedSet struct {
	Set
	name string
}

func (s renamedSet) Name() string {
	return s.name
}
