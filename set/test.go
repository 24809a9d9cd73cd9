package set

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dogmatiq/encstrset/cipher"
	"github.com/dogmatiq/encstrset/internal/x/xtesting"
	"pgregory.net/rapid"
)

// RunTests runs tests that confirm a [Store] implementation behaves correctly.
func RunTests(t *testing.T, store Store) {
	open := func(t *testing.T, name string) Set {
		t.Helper()

		s, err := store.Open(t.Context(), name)
		if err != nil {
			t.Fatal(err)
		}

		t.Cleanup(func() {
			if err := s.Close(); err != nil {
				t.Error(err)
			}
		})

		if s.Name() != name {
			t.Fatalf("unexpected set name: got %q, want %q", s.Name(), name)
		}

		return s
	}

	setup := func(t *testing.T) Set {
		t.Helper()
		return open(t, xtesting.SequentialName("set"))
	}

	t.Run("Store", func(t *testing.T) {
		t.Parallel()

		t.Run("it shares members between sets opened with the same name", func(t *testing.T) {
			t.Parallel()

			name := xtesting.SequentialName("set")
			a := open(t, name)
			b := open(t, name)
			v := cipher.Encode([]byte("cat"), []byte("k"))

			expectAdd(t, a, v, true)
			expectHas(t, b, v, true)
			expectLen(t, b, 1)
		})

		t.Run("it isolates sets with different names", func(t *testing.T) {
			t.Parallel()

			a := setup(t)
			b := setup(t)
			v := cipher.Encode([]byte("cat"), []byte("k"))

			expectAdd(t, a, v, true)
			expectHas(t, b, v, false)
			expectAdd(t, b, v, true)
		})
	})

	t.Run("Set", func(t *testing.T) {
		t.Parallel()

		t.Run("it reports membership changes", func(t *testing.T) {
			t.Parallel()

			s := setup(t)

			for _, v := range conformanceMembers {
				expectHas(t, s, v, false)
				expectAdd(t, s, v, true)
				expectAdd(t, s, v, false)
				expectHas(t, s, v, true)
			}

			expectLen(t, s, len(conformanceMembers))
			expectMembers(t, s, conformanceMembers)

			for _, v := range conformanceMembers {
				expectRemove(t, s, v, true)
				expectRemove(t, s, v, false)
				expectHas(t, s, v, false)
			}

			expectLen(t, s, 0)
		})

		t.Run("it compares members byte for byte", func(t *testing.T) {
			t.Parallel()

			s := setup(t)

			expectAdd(t, s, []byte{}, true)
			expectHas(t, s, []byte{0}, false)
			expectAdd(t, s, []byte{0}, true)
			expectHas(t, s, []byte{0, 0}, false)
			expectRemove(t, s, []byte{}, true)
			expectHas(t, s, []byte{0}, true)
		})

		t.Run("it does not retain the caller's slice", func(t *testing.T) {
			t.Parallel()

			s := setup(t)
			v := cipher.Encode([]byte("dog"), []byte("x"))
			original := bytes.Clone(v)

			expectAdd(t, s, v, true)
			v[0] ^= 0xff

			expectHas(t, s, original, true)
			expectHas(t, s, v, false)
		})

		t.Run("it leaves other members in place when one is removed", func(t *testing.T) {
			t.Parallel()

			s := setup(t)
			a := cipher.Encode([]byte("cat"), []byte("a"))
			b := cipher.Encode([]byte("cat"), []byte("b"))

			expectAdd(t, s, a, true)
			expectAdd(t, s, b, true)
			expectRemove(t, s, a, true)
			expectHas(t, s, b, true)
			expectMembers(t, s, [][]byte{b})
		})

		t.Run("it removes every member when cleared", func(t *testing.T) {
			t.Parallel()

			s := setup(t)
			other := setup(t)

			for _, v := range conformanceMembers {
				expectAdd(t, s, v, true)
				expectAdd(t, other, v, true)
			}

			if err := s.Clear(t.Context()); err != nil {
				t.Fatal(err)
			}

			expectLen(t, s, 0)
			expectMembers(t, s, nil)
			expectLen(t, other, len(conformanceMembers))

			// The set remains usable after it has been cleared.
			expectAdd(t, s, conformanceMembers[0], true)
			expectLen(t, s, 1)
		})

		t.Run("it can clear an empty set", func(t *testing.T) {
			t.Parallel()

			s := setup(t)

			if err := s.Clear(t.Context()); err != nil {
				t.Fatal(err)
			}

			expectLen(t, s, 0)
		})

		t.Run("it stops ranging when fn returns false", func(t *testing.T) {
			t.Parallel()

			s := setup(t)
			for _, v := range conformanceMembers {
				expectAdd(t, s, v, true)
			}

			calls := 0
			if err := s.Range(
				t.Context(),
				func(context.Context, []byte) (bool, error) {
					calls++
					return false, nil
				},
			); err != nil {
				t.Fatal(err)
			}

			if calls != 1 {
				t.Fatalf("unexpected number of calls: got %d, want 1", calls)
			}
		})

		t.Run("it returns the error from fn when ranging", func(t *testing.T) {
			t.Parallel()

			s := setup(t)
			expectAdd(t, s, conformanceMembers[0], true)

			want := errors.New("<error>")
			got := s.Range(
				t.Context(),
				func(context.Context, []byte) (bool, error) {
					return true, want
				},
			)

			if !errors.Is(got, want) {
				t.Fatalf("unexpected error: got %v, want %v", got, want)
			}
		})

		t.Run("it behaves like a set of byte strings", func(t *testing.T) {
			t.Parallel()

			rapid.Check(t, func(t *rapid.T) {
				s, err := store.Open(t.Context(), xtesting.SequentialName("set"))
				if err != nil {
					t.Fatal(err)
				}
				defer s.Close()

				model := map[string]struct{}{}

				anyMember := rapid.Custom(func(t *rapid.T) []byte {
					return cipher.Encode(
						rapid.SliceOfN(rapid.ByteRange('a', 'd'), 0, 4).Draw(t, "plaintext"),
						rapid.SampledFrom(conformanceKeys).Draw(t, "key"),
					)
				})

				presentMember := func(t *rapid.T) []byte {
					if len(model) == 0 {
						t.Skip("set is empty")
					}

					var present []string
					for v := range model {
						present = append(present, v)
					}

					return []byte(rapid.SampledFrom(present).Draw(t, "member"))
				}

				t.Repeat(map[string]func(*rapid.T){
					"Has": func(t *rapid.T) {
						v := anyMember.Draw(t, "member")
						_, want := model[string(v)]
						expectHas(t, s, v, want)
					},
					"TryAdd": func(t *rapid.T) {
						v := anyMember.Draw(t, "member")
						_, present := model[string(v)]
						expectAdd(t, s, v, !present)
						model[string(v)] = struct{}{}
					},
					"TryRemove": func(t *rapid.T) {
						v := anyMember.Draw(t, "member")
						_, present := model[string(v)]
						expectRemove(t, s, v, present)
						delete(model, string(v))
					},
					"TryRemove (present)": func(t *rapid.T) {
						v := presentMember(t)
						expectRemove(t, s, v, true)
						delete(model, string(v))
					},
					"Clear": func(t *rapid.T) {
						if err := s.Clear(t.Context()); err != nil {
							t.Fatal(err)
						}
						clear(model)
					},
					"": func(t *rapid.T) {
						expectLen(t, s, len(model))

						want := make([][]byte, 0, len(model))
						for v := range model {
							want = append(want, []byte(v))
						}
						expectMembers(t, s, want)
					},
				})
			})
		})
	})
}

// conformanceKeys are the keys used to obfuscate members in the conformance
// tests. They include the nil and empty keys, which leave plaintext as is.
var conformanceKeys = [][]byte{
	nil,
	{},
	[]byte("k"),
	[]byte("key"),
}

// conformanceMembers are distinct members that exercise the edge cases a store
// must support.
var conformanceMembers = [][]byte{
	// the same plaintext under different keys
	cipher.Encode([]byte("cat"), []byte("k")),
	cipher.Encode([]byte("cat"), []byte("key")),
	cipher.Encode([]byte("cat"), nil),

	// the empty plaintext
	{},

	// octets that are awkward in text encodings
	{0x00},
	{0x00, 0xff, '/', '%', '"'},

	// longer than the key limits of common storage systems
	cipher.Encode(bytes.Repeat([]byte("long"), 4096), []byte("k")),
}

// testingT is the subset of [testing.T] and [rapid.T] used by the assertions.
type testingT interface {
	Helper()
	Context() context.Context
	Fatal(...any)
	Fatalf(string, ...any)
}

func expectHas(t testingT, s Set, v []byte, want bool) {
	t.Helper()

	got, err := s.Has(t.Context(), v)
	if err != nil {
		t.Fatal(err)
	}

	if got != want {
		t.Fatalf("unexpected result of Has(% X): got %t, want %t", abbreviate(v), got, want)
	}
}

func expectAdd(t testingT, s Set, v []byte, want bool) {
	t.Helper()

	got, err := s.TryAdd(t.Context(), v)
	if err != nil {
		t.Fatal(err)
	}

	if got != want {
		t.Fatalf("unexpected result of TryAdd(% X): got %t, want %t", abbreviate(v), got, want)
	}
}

func expectRemove(t testingT, s Set, v []byte, want bool) {
	t.Helper()

	got, err := s.TryRemove(t.Context(), v)
	if err != nil {
		t.Fatal(err)
	}

	if got != want {
		t.Fatalf("unexpected result of TryRemove(% X): got %t, want %t", abbreviate(v), got, want)
	}
}

func expectLen(t testingT, s Set, want int) {
	t.Helper()

	got, err := s.Len(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	if got != want {
		t.Fatalf("unexpected length: got %d, want %d", got, want)
	}
}

// expectMembers asserts that ranging over s visits exactly the members in
// want, each once.
func expectMembers(t testingT, s Set, want [][]byte) {
	t.Helper()

	visited := map[string]int{}

	if err := s.Range(
		t.Context(),
		func(_ context.Context, v []byte) (bool, error) {
			visited[string(v)]++
			return true, nil
		},
	); err != nil {
		t.Fatal(err)
	}

	if len(visited) != len(want) {
		t.Fatalf("unexpected number of members visited: got %d, want %d", len(visited), len(want))
	}

	for _, v := range want {
		if n := visited[string(v)]; n != 1 {
			t.Fatalf("member % X visited %d time(s), want 1", abbreviate(v), n)
		}
	}
}

func abbreviate(v []byte) []byte {
	if len(v) > 16 {
		return v[:16]
	}
	return v
}
