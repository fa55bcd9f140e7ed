package smrender

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// QueryCache is a bbox-keyed sub-trie cache: a fixed number of slots,
// each holding a bounding box and the sub-trie of objects within it,
// with ref-counted eviction and a blocking wait when
// every slot is in use. The locking discipline — a map of in-use keys
// guarded by a mutex, with callers blocking until a slot frees rather
// than failing — is grounded in EDirect's CreateStashers archive
// lock (cache.go's inUse map / lockFile OKAY-WAIT-BAIL pattern),
// generalized here from "wait for the same id" to "wait for any slot".
// Keys are hashed with xxhash instead of a hand-rolled FNV loop, for
// fast exact-match slot lookup.
type QueryCache struct {
	mu   sync.Mutex
	cond *sync.Cond

	slots []cacheSlot
}

type cacheSlot struct {
	used     bool
	key      uint64
	bbox     BBox
	sub      *BXTrie
	refCount int
}

// millidegree quantization: 1/1000 degree is well under GPS precision
// and keeps keys stable across floating point formatting differences.
const bboxQuantum = 1000.0

func quantize(f float64) int64 {
	return int64(f * bboxQuantum)
}

// bboxKey hashes a quantized bounding box into a cache slot key.
func bboxKey(b BBox) uint64 {
	var buf [32]byte
	putInt64(buf[0:8], quantize(b.MinLat))
	putInt64(buf[8:16], quantize(b.MinLon))
	putInt64(buf[16:24], quantize(b.MaxLat))
	putInt64(buf[24:32], quantize(b.MaxLon))
	return xxhash.Sum64(buf[:])
}

func putInt64(b []byte, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * uint(i)))
	}
}

// NewQueryCache returns a cache with the given fixed slot count.
func NewQueryCache(slots int) *QueryCache {
	if slots < 1 {
		slots = 1
	}
	c := &QueryCache{slots: make([]cacheSlot, slots)}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Lookup returns the cached sub-trie for bbox, incrementing its ref
// count, or ok=false on a miss. Callers must call Release when done.
func (c *QueryCache) Lookup(bbox BBox) (sub *BXTrie, ok bool) {
	key := bboxKey(bbox)
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.slots {
		s := &c.slots[i]
		if s.used && s.key == key {
			s.refCount++
			return s.sub, true
		}
	}
	return nil, false
}

// Store inserts sub under bbox's key, blocking until a free (refCount==0)
// slot is available if the cache is full. The returned slot starts with
// a ref count of 1; callers must Release it like a Lookup hit.
func (c *QueryCache) Store(bbox BBox, sub *BXTrie) {
	key := bboxKey(bbox)
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		for i := range c.slots {
			s := &c.slots[i]
			if !s.used {
				*s = cacheSlot{used: true, key: key, bbox: bbox, sub: sub, refCount: 1}
				return
			}
		}
		for i := range c.slots {
			s := &c.slots[i]
			if s.refCount == 0 {
				*s = cacheSlot{used: true, key: key, bbox: bbox, sub: sub, refCount: 1}
				return
			}
		}
		c.cond.Wait()
	}
}

// Release decrements bbox's ref count, waking any Store waiting for a
// free slot once it reaches zero.
func (c *QueryCache) Release(bbox BBox) {
	key := bboxKey(bbox)
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.slots {
		s := &c.slots[i]
		if s.used && s.key == key && s.refCount > 0 {
			s.refCount--
			if s.refCount == 0 {
				c.cond.Broadcast()
			}
			return
		}
	}
}

// Len reports the number of occupied slots, for diagnostics.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.slots {
		if s.used {
			n++
		}
	}
	return n
}
