//go:build release

package encstrset

const traceByDefault = false
