package encstrset

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// tracer writes the diagnostic trace.
//
// Each operation writes one line describing its literal arguments, followed
// by zero or more lines describing its outcome. Outcome lines only ever refer
// to obfuscated values.
type tracer struct {
	w io.Writer
}

// call writes the line that describes an operation and its arguments.
func (t *tracer) call(op string, args ...string) {
	t.printf("%s(%s)", op, strings.Join(args, ", "))
}

// outcome writes a line that describes the outcome of an operation.
func (t *tracer) outcome(op, format string, args ...any) {
	t.printf(op+": "+format, args...)
}

func (t *tracer) notExist(op string, h Handle) {
	t.outcome(op, "set #%d does not exist", h)
}

func (t *tracer) invalidValue(op string) {
	t.outcome(op, "invalid value (NULL)")
}

func (t *tracer) printf(format string, args ...any) {
	if t.w == nil {
		return
	}

	// Write errors are ignored.
	fmt.Fprintf(t.w, format+"\n", args...)
}

// handleArg renders a handle as an argument in a call line.
func handleArg(h Handle) string {
	return strconv.FormatUint(uint64(h), 10)
}

// stringArg renders a string argument in a call line. A nil argument is
// rendered as NULL.
func stringArg(v []byte) string {
	if v == nil {
		return "NULL"
	}
	return strconv.Quote(string(v))
}

// cypherText renders obfuscated bytes as space-separated pairs of uppercase
// hexadecimal digits.
func cypherText(v []byte) string {
	return fmt.Sprintf("% X", v)
}
