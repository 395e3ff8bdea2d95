package toast

import "sync/atomic"

// globalIDCounter is the process-wide toast ID source.
var globalIDCounter uint64

// nextID returns a unique monotonically increasing ID.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
