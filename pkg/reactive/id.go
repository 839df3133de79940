package reactive

import "sync/atomic"

// Deps and watchers draw from separate counters. Watcher ids double as the
// flush order, so they must only ever grow.
var (
	depIDCounter     uint64
	watcherIDCounter uint64
)

func nextDepID() uint64 {
	return atomic.AddUint64(&depIDCounter, 1)
}

func nextWatcherID() uint64 {
	return atomic.AddUint64(&watcherIDCounter, 1)
}

var ownerIDCounter uint64

func nextOwnerID() uint64 {
	return atomic.AddUint64(&ownerIDCounter, 1)
}
