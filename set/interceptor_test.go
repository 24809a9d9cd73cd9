package set_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dogmatiq/encstrset/cipher"
	"github.com/dogmatiq/encstrset/driver/memory/memoryset"
	. "github.com/dogmatiq/encstrset/set"
)

func TestWithInterceptor(t *testing.T) {
	t.Parallel()

	RunTests(
		t,
		WithInterceptor(&memoryset.Store{}, &Interceptor{}),
	)

	t.Run("it returns the given store if no interceptor is provided", func(t *testing.T) {
		t.Parallel()

		underlying := &memoryset.Store{}
		store := WithInterceptor(underlying, nil)

		if store != underlying {
			t.Fatalf("unexpected store: got %T, want %T", store, underlying)
		}
	})

	t.Run("it invokes the hook before opening a set", func(t *testing.T) {
		t.Parallel()

		var in Interceptor
		store := WithInterceptor(&memoryset.Store{}, &in)

		want := errors.New("<error>")
		var name string

		in.Before(OpenOperation, func(set string, v []byte) error {
			name = set
			if v != nil {
				t.Errorf("unexpected member: got % X, want nil", v)
			}
			return want
		})

		if _, got := store.Open(t.Context(), "<set>"); got != want {
			t.Fatalf("unexpected error: got %v, want %v", got, want)
		}

		if name != "<set>" {
			t.Fatalf("unexpected set name: got %q, want %q", name, "<set>")
		}
	})

	member := cipher.Encode([]byte("<member>"), []byte("key"))
	seeded := cipher.Encode([]byte("<seeded>"), []byte("key"))

	cases := []struct {
		Name      string
		Operation Operation
		Member    []byte
		Call      func(context.Context, Set) error
	}{
		{
			"Has",
			HasOperation,
			member,
			func(ctx context.Context, s Set) error {
				_, err := s.Has(ctx, member)
				return err
			},
		},
		{
			"TryAdd",
			AddOperation,
			member,
			func(ctx context.Context, s Set) error {
				_, err := s.TryAdd(ctx, member)
				return err
			},
		},
		{
			"TryRemove",
			RemoveOperation,
			seeded,
			func(ctx context.Context, s Set) error {
				_, err := s.TryRemove(ctx, seeded)
				return err
			},
		},
		{
			"Len",
			LenOperation,
			nil,
			func(ctx context.Context, s Set) error {
				_, err := s.Len(ctx)
				return err
			},
		},
		{
			"Clear",
			ClearOperation,
			nil,
			func(ctx context.Context, s Set) error {
				return s.Clear(ctx)
			},
		},
		{
			"Range",
			RangeOperation,
			nil,
			func(ctx context.Context, s Set) error {
				return s.Range(
					ctx,
					func(context.Context, []byte) (bool, error) {
						return false, nil
					},
				)
			},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			t.Parallel()

			setup := func(t *testing.T) (Set, Set, *Interceptor) {
				underlying := &memoryset.Store{}

				var in Interceptor
				intercepted, err := WithInterceptor(underlying, &in).Open(t.Context(), "<set>")
				if err != nil {
					t.Fatal(err)
				}
				t.Cleanup(func() { intercepted.Close() })

				direct, err := underlying.Open(t.Context(), "<set>")
				if err != nil {
					t.Fatal(err)
				}
				t.Cleanup(func() { direct.Close() })

				if _, err := direct.TryAdd(t.Context(), seeded); err != nil {
					t.Fatal(err)
				}

				return intercepted, direct, &in
			}

			t.Run("it passes the set name and member to the hook", func(t *testing.T) {
				t.Parallel()

				s, _, in := setup(t)

				called := false
				in.Before(c.Operation, func(set string, v []byte) error {
					called = true

					if set != "<set>" {
						t.Errorf("unexpected set name: got %q, want %q", set, "<set>")
					}

					if string(v) != string(c.Member) || (v == nil) != (c.Member == nil) {
						t.Errorf("unexpected member: got % X, want % X", v, c.Member)
					}

					return nil
				})

				if err := c.Call(t.Context(), s); err != nil {
					t.Fatal(err)
				}

				if !called {
					t.Fatal("expected hook to be called")
				}
			})

			t.Run("it does not perform the operation if the hook fails", func(t *testing.T) {
				t.Parallel()

				s, direct, in := setup(t)

				want := errors.New("<error>")
				in.Before(c.Operation, func(string, []byte) error {
					return want
				})

				if got := c.Call(t.Context(), s); got != want {
					t.Fatalf("unexpected error: got %v, want %v", got, want)
				}

				expectContents(t, direct, seeded)
			})

			t.Run("it stops calling the hook once it is removed", func(t *testing.T) {
				t.Parallel()

				s, _, in := setup(t)

				in.Before(c.Operation, func(string, []byte) error {
					return errors.New("<error>")
				})
				in.Before(c.Operation, nil)

				if err := c.Call(t.Context(), s); err != nil {
					t.Fatal(err)
				}
			})

			t.Run("it does not call hooks for other operations", func(t *testing.T) {
				t.Parallel()

				s, _, in := setup(t)

				for op := range RangeOperation + 1 {
					if op == c.Operation {
						continue
					}
					in.Before(op, func(string, []byte) error {
						t.Errorf("unexpected call to hook for operation %d", op)
						return nil
					})
				}

				if err := c.Call(t.Context(), s); err != nil {
					t.Fatal(err)
				}
			})
		})
	}
}

// expectContents asserts that s contains exactly the given members.
func expectContents(t *testing.T, s Set, want ...[]byte) {
	t.Helper()

	n, err := s.Len(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	if n != len(want) {
		t.Fatalf("unexpected length: got %d, want %d", n, len(want))
	}

	for _, v := range want {
		ok, err := s.Has(t.Context(), v)
		if err != nil {
			t.Fatal(err)
		}

		if !ok {
			t.Fatalf("expected set to contain % X", v)
		}
	}
}
