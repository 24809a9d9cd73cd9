package xtesting

import (
	"context"
	"testing"
	"time"
)

// cleanupTimeout bounds the time spent removing external resources, such as
// tables and buckets, after a test.
const cleanupTimeout = 10 * time.Second

// ContextForCleanup returns a context for use within a test's cleanup
// functions.
//
// Unlike [testing.T.Context], it is not cancelled when the test ends. It is
// cancelled after [cleanupTimeout], or once the cleanup function that called
// it returns.
func ContextForCleanup(t testing.TB) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(
		context.WithoutCancel(t.Context()),
		cleanupTimeout,
	)
	t.Cleanup(cancel)

	return ctx
}
