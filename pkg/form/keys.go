package form

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// KeyGenerator produces identity keys for field array entries. Keys must
// be unique for the lifetime of the controller.
type KeyGenerator func() string

// UUIDKeys returns random UUIDv4 keys.
func UUIDKeys() KeyGenerator {
	return uuid.NewString
}

// SequentialKeys returns a monotonic counter: "1", "2", ...
func SequentialKeys() KeyGenerator {
	var n atomic.Uint64
	return func() string {
		return strconv.FormatUint(n.Add(1), 10)
	}
}
