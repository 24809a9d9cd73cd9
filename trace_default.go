//go:build !release

package encstrset

// traceByDefault is true if the diagnostic trace is written to [os.Stderr]
// unless configured otherwise.
const traceByDefault = true
