package telemetry

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

var handles atomic.Uint64

// HandleID returns an identifier for one open instance of a set.
//
// The sequence number is easy for people to follow in logs. The UUID makes
// the identifier unique across processes.
func HandleID() string {
	return "#" + strconv.FormatUint(handles.Add(1), 10) + " " + uuid.NewString()
}
