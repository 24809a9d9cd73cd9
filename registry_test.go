package encstrset_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/dogmatiq/encstrset"
	"github.com/dogmatiq/encstrset/driver/memory/memoryset"
	"github.com/dogmatiq/encstrset/set"
	lognoop "go.opentelemetry.io/otel/log/noop"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func newRegistry(t *testing.T, options ...Option) (*Registry, *bytes.Buffer) {
	t.Helper()

	trace := &bytes.Buffer{}
	r := New(append([]Option{WithTrace(trace)}, options...)...)

	t.Cleanup(func() {
		if err := r.Close(); err != nil {
			t.Error(err)
		}
	})

	return r, trace
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("it allocates sequential handles starting at zero", func(t *testing.T) {
		t.Parallel()

		r, _ := newRegistry(t)

		for want := Handle(0); want < 3; want++ {
			if got := r.Create(t.Context()); got != want {
				t.Fatalf("unexpected handle: got %d, want %d", got, want)
			}
		}
	})

	t.Run("it never reuses a deleted handle", func(t *testing.T) {
		t.Parallel()

		r, _ := newRegistry(t)

		h := r.Create(t.Context())
		r.Delete(t.Context(), h)

		if r.Exists(h) {
			t.Fatal("expected deleted handle to not exist")
		}

		if got := r.Create(t.Context()); got == h {
			t.Fatalf("expected a new handle, got %d again", got)
		}

		if r.Exists(h) {
			t.Fatal("expected deleted handle to not exist after a subsequent create")
		}
	})

	t.Run("it follows the documented example", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, _ := newRegistry(t)
		cat, k := []byte("cat"), []byte("k")

		h1 := r.Create(ctx)

		if !r.Insert(ctx, h1, cat, k) {
			t.Fatal("expected first insert to succeed")
		}

		if r.Insert(ctx, h1, cat, k) {
			t.Fatal("expected second insert to report the value as already present")
		}

		if got := r.Size(ctx, h1); got != 1 {
			t.Fatalf("unexpected size: got %d, want 1", got)
		}

		h2 := r.Create(ctx)
		r.Copy(ctx, h1, h2)

		if got := r.Size(ctx, h2); got != 1 {
			t.Fatalf("unexpected size after copy: got %d, want 1", got)
		}

		if !r.Remove(ctx, h1, cat, k) {
			t.Fatal("expected remove to succeed")
		}

		if r.Test(ctx, h1, cat, k) {
			t.Fatal("expected value to be absent from the source collection")
		}

		if !r.Test(ctx, h2, cat, k) {
			t.Fatal("expected value to remain in the destination collection")
		}
	})

	t.Run("it stores the plaintext when no key is given", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, _ := newRegistry(t)
		dog := []byte("dog")

		h := r.Create(ctx)

		if !r.Insert(ctx, h, dog, nil) {
			t.Fatal("expected insert to succeed")
		}

		if !r.Test(ctx, h, dog, nil) {
			t.Fatal("expected value to be present under the nil key")
		}

		if !r.Test(ctx, h, dog, []byte{}) {
			t.Fatal("expected the empty key to behave like the nil key")
		}

		if r.Test(ctx, h, dog, []byte("x")) {
			t.Fatal("expected value to be absent under a different key")
		}
	})

	t.Run("it treats the same plaintext under different keys as distinct members", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, _ := newRegistry(t)
		v := []byte("value")

		h := r.Create(ctx)
		r.Insert(ctx, h, v, []byte("a"))
		r.Insert(ctx, h, v, []byte("b"))

		if got := r.Size(ctx, h); got != 2 {
			t.Fatalf("unexpected size: got %d, want 2", got)
		}
	})

	t.Run("it accepts the empty value", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, _ := newRegistry(t)

		h := r.Create(ctx)

		if !r.Insert(ctx, h, []byte{}, []byte("k")) {
			t.Fatal("expected insert to succeed")
		}

		if !r.Test(ctx, h, []byte{}, nil) {
			t.Fatal("expected the empty value to be present regardless of key")
		}
	})

	t.Run("it rejects nil values", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, trace := newRegistry(t)

		h := r.Create(ctx)

		if r.Insert(ctx, h, nil, []byte("k")) {
			t.Fatal("expected insert to fail")
		}

		if r.Remove(ctx, h, nil, nil) {
			t.Fatal("expected remove to fail")
		}

		if r.Test(ctx, h, nil, nil) {
			t.Fatal("expected test to fail")
		}

		if got := r.Size(ctx, h); got != 0 {
			t.Fatalf("unexpected size: got %d, want 0", got)
		}

		if got, want := strings.Count(trace.String(), "invalid value (NULL)"), 3; got != want {
			t.Fatalf("unexpected number of invalid value reports: got %d, want %d", got, want)
		}
	})

	t.Run("it ignores operations on nonexistent handles", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, _ := newRegistry(t)
		v := []byte("value")

		h := r.Create(ctx)
		r.Insert(ctx, h, v, nil)

		const missing = Handle(100)

		if r.Exists(missing) {
			t.Fatal("expected handle to not exist")
		}

		if r.Insert(ctx, missing, v, nil) {
			t.Fatal("expected insert to fail")
		}

		if r.Remove(ctx, missing, v, nil) {
			t.Fatal("expected remove to fail")
		}

		if r.Test(ctx, missing, v, nil) {
			t.Fatal("expected test to fail")
		}

		if got := r.Size(ctx, missing); got != 0 {
			t.Fatalf("unexpected size: got %d, want 0", got)
		}

		r.Clear(ctx, missing)
		r.Delete(ctx, missing)
		r.Copy(ctx, missing, h)
		r.Copy(ctx, h, missing)

		if got := r.Size(ctx, h); got != 1 {
			t.Fatalf("unexpected size: got %d, want 1", got)
		}
	})

	t.Run("it clears a collection without deleting it", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, _ := newRegistry(t)

		h := r.Create(ctx)
		r.Insert(ctx, h, []byte("a"), nil)
		r.Insert(ctx, h, []byte("b"), nil)
		r.Clear(ctx, h)

		if !r.Exists(h) {
			t.Fatal("expected handle to exist after clear")
		}

		if got := r.Size(ctx, h); got != 0 {
			t.Fatalf("unexpected size: got %d, want 0", got)
		}

		if !r.Insert(ctx, h, []byte("a"), nil) {
			t.Fatal("expected insert after clear to succeed")
		}
	})

	t.Run("it does not share members between collections", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, _ := newRegistry(t)
		v := []byte("value")

		h1 := r.Create(ctx)
		h2 := r.Create(ctx)
		r.Insert(ctx, h1, v, nil)

		if r.Test(ctx, h2, v, nil) {
			t.Fatal("expected value to be absent from the other collection")
		}
	})

	t.Run("it does not share collections between registries with the same store", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		store := &memoryset.Store{}
		a, _ := newRegistry(t, WithStore(store))
		b, _ := newRegistry(t, WithStore(store))
		v := []byte("value")

		ha := a.Create(ctx)
		hb := b.Create(ctx)

		if ha != hb {
			t.Fatalf("expected both registries to allocate the same handle, got %d and %d", ha, hb)
		}

		a.Insert(ctx, ha, v, nil)

		if b.Test(ctx, hb, v, nil) {
			t.Fatal("expected value to be absent from the other registry")
		}
	})

	t.Run("copy", func(t *testing.T) {
		t.Parallel()

		t.Run("it does not modify the source collection", func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			r, _ := newRegistry(t)

			src := r.Create(ctx)
			dst := r.Create(ctx)
			r.Insert(ctx, src, []byte("a"), nil)
			r.Insert(ctx, dst, []byte("b"), nil)
			r.Copy(ctx, src, dst)

			if got := r.Size(ctx, src); got != 1 {
				t.Fatalf("unexpected source size: got %d, want 1", got)
			}

			if got := r.Size(ctx, dst); got != 2 {
				t.Fatalf("unexpected destination size: got %d, want 2", got)
			}
		})

		t.Run("it is idempotent", func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			r, _ := newRegistry(t)

			src := r.Create(ctx)
			dst := r.Create(ctx)
			r.Insert(ctx, src, []byte("a"), nil)
			r.Insert(ctx, src, []byte("b"), nil)
			r.Copy(ctx, src, dst)
			r.Copy(ctx, src, dst)

			if got := r.Size(ctx, dst); got != 2 {
				t.Fatalf("unexpected destination size: got %d, want 2", got)
			}
		})

		t.Run("it leaves a collection unchanged when copied onto itself", func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			r, _ := newRegistry(t)

			h := r.Create(ctx)
			r.Insert(ctx, h, []byte("a"), nil)
			r.Copy(ctx, h, h)

			if got := r.Size(ctx, h); got != 1 {
				t.Fatalf("unexpected size: got %d, want 1", got)
			}
		})
	})

	t.Run("close", func(t *testing.T) {
		t.Parallel()

		t.Run("it discards all collections", func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			store := &memoryset.Store{}
			in := &set.Interceptor{}

			var names []string
			in.Before(set.OpenOperation, func(name string, _ []byte) error {
				names = append(names, name)
				return nil
			})

			r := New(
				WithoutTrace(),
				WithStore(set.WithInterceptor(store, in)),
			)

			h := r.Create(ctx)
			r.Insert(ctx, h, []byte("value"), nil)

			if err := r.Close(); err != nil {
				t.Fatal(err)
			}

			if r.Exists(h) {
				t.Fatal("expected handle to not exist after close")
			}

			if len(names) != 1 {
				t.Fatalf("unexpected number of opened sets: got %d, want 1", len(names))
			}

			s, err := store.Open(ctx, names[0])
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()

			n, err := s.Len(ctx)
			if err != nil {
				t.Fatal(err)
			}

			if n != 0 {
				t.Fatalf("unexpected number of members left in the store: got %d, want 0", n)
			}
		})

		t.Run("it does not bind handles created after close", func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			r, trace := newRegistry(t)

			if err := r.Close(); err != nil {
				t.Fatal(err)
			}

			h := r.Create(ctx)

			if r.Exists(h) {
				t.Fatal("expected handle created after close to not exist")
			}

			if !strings.Contains(trace.String(), "storage failure: registry is closed") {
				t.Fatalf("expected a storage failure on the trace, got:\n%s", trace.String())
			}
		})

		t.Run("it can be called more than once", func(t *testing.T) {
			t.Parallel()

			r := New(WithoutTrace())

			if err := r.Close(); err != nil {
				t.Fatal(err)
			}

			if err := r.Close(); err != nil {
				t.Fatal(err)
			}
		})
	})
}

func TestRegistry_storageFailure(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*Registry, *bytes.Buffer, *set.Interceptor) {
		in := &set.Interceptor{}
		r, trace := newRegistry(
			t,
			WithStore(set.WithInterceptor(&memoryset.Store{}, in)),
		)
		return r, trace, in
	}

	failure := errors.New("<error>")

	t.Run("it does not bind a handle when the collection cannot be opened", func(t *testing.T) {
		t.Parallel()

		r, trace, in := setup(t)
		in.Before(set.OpenOperation, func(string, []byte) error { return failure })

		h := r.Create(t.Context())

		if r.Exists(h) {
			t.Fatal("expected handle to not exist")
		}

		if got, want := trace.String(), "encstrset_new()\nencstrset_new: storage failure: <error>\n"; got != want {
			t.Fatalf("unexpected trace: got %q, want %q", got, want)
		}

		in.Before(set.OpenOperation, nil)

		if got := r.Create(t.Context()); got != h+1 {
			t.Fatalf("expected the failed handle to be consumed: got %d, want %d", got, h+1)
		}
	})

	t.Run("it reports insert failures as not inserted", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, trace, in := setup(t)
		h := r.Create(ctx)

		in.Before(set.AddOperation, func(string, []byte) error { return failure })

		if r.Insert(ctx, h, []byte("value"), nil) {
			t.Fatal("expected insert to fail")
		}

		in.Before(set.AddOperation, nil)

		if got := r.Size(ctx, h); got != 0 {
			t.Fatalf("unexpected size: got %d, want 0", got)
		}

		if !strings.Contains(trace.String(), "encstrset_insert: storage failure: <error>\n") {
			t.Fatalf("expected a storage failure on the trace, got:\n%s", trace.String())
		}
	})

	t.Run("it reports test failures as not present", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, _, in := setup(t)
		h := r.Create(ctx)
		r.Insert(ctx, h, []byte("value"), nil)

		in.Before(set.HasOperation, func(string, []byte) error { return failure })

		if r.Test(ctx, h, []byte("value"), nil) {
			t.Fatal("expected test to fail")
		}
	})

	t.Run("it reports remove failures as not removed", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, _, in := setup(t)
		h := r.Create(ctx)
		r.Insert(ctx, h, []byte("value"), nil)

		in.Before(set.RemoveOperation, func(string, []byte) error { return failure })

		if r.Remove(ctx, h, []byte("value"), nil) {
			t.Fatal("expected remove to fail")
		}

		in.Before(set.RemoveOperation, nil)

		if got := r.Size(ctx, h); got != 1 {
			t.Fatalf("unexpected size: got %d, want 1", got)
		}
	})

	t.Run("it unbinds a deleted handle even if its collection cannot be cleared", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, trace, in := setup(t)
		h := r.Create(ctx)

		in.Before(set.ClearOperation, func(string, []byte) error { return failure })
		r.Delete(ctx, h)
		in.Before(set.ClearOperation, nil)

		if r.Exists(h) {
			t.Fatal("expected handle to not exist")
		}

		want := "encstrset_delete: storage failure: <error>\nencstrset_delete: set #0 deleted\n"
		if !strings.HasSuffix(trace.String(), want) {
			t.Fatalf("unexpected trace: got %q, want suffix %q", trace.String(), want)
		}
	})

	t.Run("it stops copying at the first failure", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		r, _, in := setup(t)

		src := r.Create(ctx)
		dst := r.Create(ctx)
		r.Insert(ctx, src, []byte("a"), nil)
		r.Insert(ctx, src, []byte("b"), nil)

		in.Before(set.AddOperation, func(string, []byte) error { return failure })
		r.Copy(ctx, src, dst)
		in.Before(set.AddOperation, nil)

		if got := r.Size(ctx, dst); got != 0 {
			t.Fatalf("unexpected destination size: got %d, want 0", got)
		}
	})

}

func TestRegistry_cancelledContext(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*Registry, *bytes.Buffer, Handle, context.Context) {
		r, trace := newRegistry(t)
		h := r.Create(t.Context())

		if !r.Insert(t.Context(), h, []byte("present"), []byte("key")) {
			t.Fatal("expected insert to succeed")
		}

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		return r, trace, h, ctx
	}

	// expectUnchanged asserts that h still holds only the member inserted by
	// setup, using a context that has not been cancelled.
	expectUnchanged := func(t *testing.T, r *Registry, h Handle) {
		t.Helper()

		ctx := t.Context()

		if got := r.Size(ctx, h); got != 1 {
			t.Fatalf("unexpected size: got %d, want 1", got)
		}

		if !r.Test(ctx, h, []byte("present"), []byte("key")) {
			t.Fatal("expected existing member to be present")
		}

		if r.Test(ctx, h, []byte("absent"), []byte("key")) {
			t.Fatal("expected new member to be absent")
		}
	}

	t.Run("it binds the handle on create", func(t *testing.T) {
		t.Parallel()

		r, _ := newRegistry(t)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		h := r.Create(ctx)

		if !r.Exists(h) {
			t.Fatal("expected handle to exist")
		}

		if !r.Insert(t.Context(), h, []byte("value"), nil) {
			t.Fatal("expected insert into the new collection to succeed")
		}
	})

	t.Run("it does not insert", func(t *testing.T) {
		t.Parallel()

		r, trace, h, ctx := setup(t)

		if r.Insert(ctx, h, []byte("absent"), []byte("key")) {
			t.Fatal("expected insert to report false")
		}

		if !strings.Contains(trace.String(), "encstrset_insert: storage failure: context canceled\n") {
			t.Fatalf("expected a storage failure on the trace, got:\n%s", trace.String())
		}

		expectUnchanged(t, r, h)
	})

	t.Run("it does not remove", func(t *testing.T) {
		t.Parallel()

		r, _, h, ctx := setup(t)

		if r.Remove(ctx, h, []byte("present"), []byte("key")) {
			t.Fatal("expected remove to report false")
		}

		expectUnchanged(t, r, h)
	})

	t.Run("it does not clear", func(t *testing.T) {
		t.Parallel()

		r, _, h, ctx := setup(t)
		r.Clear(ctx, h)

		expectUnchanged(t, r, h)
	})

	t.Run("it does not copy", func(t *testing.T) {
		t.Parallel()

		r, _, h, ctx := setup(t)

		src := r.Create(t.Context())
		if !r.Insert(t.Context(), src, []byte("absent"), []byte("key")) {
			t.Fatal("expected insert to succeed")
		}

		r.Copy(ctx, src, h)

		expectUnchanged(t, r, h)
	})

	t.Run("it reports the size as zero", func(t *testing.T) {
		t.Parallel()

		r, _, h, ctx := setup(t)

		if got := r.Size(ctx, h); got != 0 {
			t.Fatalf("unexpected size: got %d, want 0", got)
		}

		expectUnchanged(t, r, h)
	})

	t.Run("it deletes the collection", func(t *testing.T) {
		t.Parallel()

		r, _, h, ctx := setup(t)
		r.Delete(ctx, h)

		if r.Exists(h) {
			t.Fatal("expected handle to not exist")
		}
	})
}

func TestWithTelemetry(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	r, _ := newRegistry(
		t,
		WithTelemetry(
			tracenoop.NewTracerProvider(),
			metricnoop.NewMeterProvider(),
			lognoop.NewLoggerProvider(),
		),
	)

	h := r.Create(ctx)

	if !r.Insert(ctx, h, []byte("value"), []byte("key")) {
		t.Fatal("expected insert to succeed")
	}

	if got := r.Size(ctx, h); got != 1 {
		t.Fatalf("unexpected size: got %d, want 1", got)
	}
}
