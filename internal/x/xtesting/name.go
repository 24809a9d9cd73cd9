package xtesting

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// UniqueName returns prefix followed by a random UUID, for resources that may
// outlive the process, such as tables and buckets.
func UniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

var (
	sequenceM sync.Mutex
	sequence  = map[string]uint64{}
)

// SequentialName returns prefix followed by a number that is unique within the
// process for that prefix.
func SequentialName(prefix string) string {
	sequenceM.Lock()
	defer sequenceM.Unlock()

	sequence[prefix]++
	return prefix + "-" + strconv.FormatUint(sequence[prefix], 10)
}
