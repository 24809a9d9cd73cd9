package set

import "context"

// Store is a namespace of [Set] values.
//
// Opening the same name more than once yields views of the same members.
type Store interface {
	Open(ctx context.Context, name string) (Set, error)
}
