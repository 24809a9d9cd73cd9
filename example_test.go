package encstrset_test

import (
	"context"
	"fmt"
	"os"

	"github.com/dogmatiq/encstrset"
)

func Example() {
	ctx := context.Background()

	r := encstrset.New(encstrset.WithTrace(os.Stdout))
	defer r.Close()

	h := r.Create(ctx)
	r.Insert(ctx, h, []byte("cat"), []byte("k"))

	fmt.Println(r.Test(ctx, h, []byte("cat"), []byte("k")))

	// Output:
	// encstrset_new()
	// encstrset_new: set #0 created
	// encstrset_insert(0, "cat", "k")
	// encstrset_insert: set #0, cypher "08 0A 1F" inserted
	// encstrset_test(0, "cat", "k")
	// encstrset_test: set #0, cypher "08 0A 1F" is present
	// true
}

func ExampleRegistry_Copy() {
	ctx := context.Background()

	r := encstrset.New(encstrset.WithoutTrace())
	defer r.Close()

	src := r.Create(ctx)
	dst := r.Create(ctx)

	r.Insert(ctx, src, []byte("dog"), nil)
	r.Copy(ctx, src, dst)
	r.Remove(ctx, src, []byte("dog"), nil)

	fmt.Println(r.Size(ctx, src), r.Size(ctx, dst))

	// Output:
	// 0 1
}
