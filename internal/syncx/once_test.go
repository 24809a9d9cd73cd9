package syncx_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/dogmatiq/encstrset/internal/syncx"
)

func TestSucceedOnce(t *testing.T) {
	t.Parallel()

	t.Run("it does not call the function again after it succeeds", func(t *testing.T) {
		t.Parallel()

		var (
			once  SucceedOnce
			calls int
		)

		for range 3 {
			if err := once.Do(
				t.Context(),
				func(context.Context) error {
					calls++
					return nil
				},
			); err != nil {
				t.Fatal(err)
			}
		}

		if calls != 1 {
			t.Fatalf("unexpected number of calls: got %d, want 1", calls)
		}
	})

	t.Run("it calls the function again after it fails", func(t *testing.T) {
		t.Parallel()

		var (
			once  SucceedOnce
			calls int
		)

		want := errors.New("<error>")

		err := once.Do(
			t.Context(),
			func(context.Context) error {
				calls++
				return want
			},
		)
		if err != want {
			t.Fatalf("unexpected error: got %v, want %v", err, want)
		}

		if err := once.Do(
			t.Context(),
			func(context.Context) error {
				calls++
				return nil
			},
		); err != nil {
			t.Fatal(err)
		}

		if calls != 2 {
			t.Fatalf("unexpected number of calls: got %d, want 2", calls)
		}
	})
}
