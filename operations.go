package encstrset

import (
	"context"

	"github.com/dogmatiq/encstrset/cipher"
	"github.com/dogmatiq/encstrset/internal/telemetry"
	"github.com/dogmatiq/encstrset/set"
)

// Size returns the number of members in the collection identified by h.
//
// It returns 0 if h does not exist.
func (r *Registry) Size(ctx context.Context, h Handle) uint64 {
	r.m.Lock()
	defer r.m.Unlock()

	const op = "encstrset_size"
	ctx, span := r.begin(ctx, op, handleArg(h))
	defer span.End()

	s, ok := r.lookup(op, h)
	if !ok {
		return 0
	}

	n, err := s.Len(ctx)
	if err != nil {
		r.storageFailure(ctx, op, err)
		return 0
	}

	span.SetAttributes(telemetry.Int("size", n))
	r.trace.outcome(op, "set #%d contains %d element(s)", h, n)

	return uint64(n)
}

// Insert adds value, obfuscated with key, to the collection identified by h.
//
// It returns true if the obfuscated value was added, or false if value is
// nil, h does not exist, or the obfuscated value is already a member.
func (r *Registry) Insert(ctx context.Context, h Handle, value, key []byte) bool {
	return r.member(
		ctx,
		"encstrset_insert",
		h, value, key,
		set.Set.TryAdd,
		"inserted",
		"was already present",
	)
}

// Remove removes value, obfuscated with key, from the collection identified
// by h.
//
// It returns true if the obfuscated value was removed, or false if value is
// nil, h does not exist, or the obfuscated value is not a member.
func (r *Registry) Remove(ctx context.Context, h Handle, value, key []byte) bool {
	return r.member(
		ctx,
		"encstrset_remove",
		h, value, key,
		set.Set.TryRemove,
		"removed",
		"was not present",
	)
}

// Test returns true if value, obfuscated with key, is a member of the
// collection identified by h.
//
// It returns false if value is nil or h does not exist.
func (r *Registry) Test(ctx context.Context, h Handle, value, key []byte) bool {
	return r.member(
		ctx,
		"encstrset_test",
		h, value, key,
		set.Set.Has,
		"is present",
		"is not present",
	)
}

// member performs an operation that concerns a single obfuscated value.
func (r *Registry) member(
	ctx context.Context,
	op string,
	h Handle,
	value, key []byte,
	fn func(set.Set, context.Context, []byte) (bool, error),
	yes, no string,
) bool {
	r.m.Lock()
	defer r.m.Unlock()

	ctx, span := r.begin(ctx, op, handleArg(h), stringArg(value), stringArg(key))
	defer span.End()

	if value == nil {
		r.trace.invalidValue(op)
		return false
	}

	s, ok := r.lookup(op, h)
	if !ok {
		return false
	}

	v := cipher.Encode(value, key)

	ok, err := fn(s, ctx, v)
	if err != nil {
		r.storageFailure(ctx, op, err)
		return false
	}

	span.SetAttributes(telemetry.Bool("result", ok))

	outcome := no
	if ok {
		outcome = yes
	}

	r.trace.outcome(op, "set #%d, cypher %q %s", h, cypherText(v), outcome)

	return ok
}

// Copy adds every member of the collection identified by src to the
// collection identified by dst.
//
// Members of src that are already members of dst are left as they are. It is
// a no-op if either handle does not exist.
func (r *Registry) Copy(ctx context.Context, src, dst Handle) {
	r.m.Lock()
	defer r.m.Unlock()

	const op = "encstrset_copy"
	ctx, span := r.begin(ctx, op, handleArg(src), handleArg(dst))
	defer span.End()

	from, srcOK := r.lookup(op, src)
	to, dstOK := r.lookup(op, dst)
	if !srcOK || !dstOK {
		return
	}

	copied := 0

	if err := from.Range(
		ctx,
		func(ctx context.Context, v []byte) (bool, error) {
			// When src and dst are the same collection every member is
			// already present, and the collection must not be modified
			// while ranging over it.
			added := false

			if src != dst {
				var err error
				added, err = to.TryAdd(ctx, v)
				if err != nil {
					return false, err
				}
			}

			if added {
				copied++
				r.trace.outcome(op, "cypher %q copied from set #%d to set #%d", cypherText(v), src, dst)
			} else {
				r.trace.outcome(op, "copied cypher %q was already present in set #%d", cypherText(v), dst)
			}

			return true, nil
		},
	); err != nil {
		r.storageFailure(ctx, op, err)
	}

	span.SetAttributes(telemetry.Int("copied", copied))
}
