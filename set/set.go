package set

import "context"

// Set is a named collection of unique binary members.
//
// Members are compared byte for byte. The empty slice is a valid member, and
// members may be of any length. Implementations must not retain the slices
// passed to them.
type Set interface {
	// Name returns the name the set was opened with.
	Name() string

	// Has returns true if v is a member of the set.
	Has(ctx context.Context, v []byte) (bool, error)

	// TryAdd makes v a member of the set. It returns false if v was already a
	// member.
	TryAdd(ctx context.Context, v []byte) (bool, error)

	// TryRemove removes v from the set. It returns false if v was not a member.
	TryRemove(ctx context.Context, v []byte) (bool, error)

	// Len returns the number of members in the set.
	Len(ctx context.Context) (int, error)

	// Clear removes every member from the set.
	Clear(ctx context.Context) error

	// Range calls fn for each member of the set, in no particular order.
	//
	// fn must not modify the set being ranged over.
	Range(ctx context.Context, fn RangeFunc) error

	// Close releases the set. It must not be used afterwards.
	Close() error
}

// RangeFunc is called by [Set.Range] for each member of a set.
//
// Ranging stops early if fn returns false or a non-nil error. The error, if
// any, is returned by [Set.Range].
type RangeFunc func(ctx context.Context, v []byte) (ok bool, err error)
