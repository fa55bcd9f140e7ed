package smrender

import "sync"

// IDAllocator hands out synthetic, monotonically-decreasing negative ids
// for objects fabricated during rule execution (e.g. an action that
// splits a way or synthesizes a label node), one counter per object
// type; ids of different types live in separate trie slots, so equal
// values across types do not clash. The counters are not checked against
// negative ids that already occur in the loaded input.
type IDAllocator struct {
	mu   sync.Mutex
	next [3]int64 // indexed by ObjType-1
}

// NewIDAllocator returns an allocator whose first id for each type is -1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: [3]int64{-1, -1, -1}}
}

// Next returns the next synthetic id for t and decrements that type's
// counter.
func (a *IDAllocator) Next(t ObjType) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next[t-1]
	a.next[t-1]--
	return id
}
