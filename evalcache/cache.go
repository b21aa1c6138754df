// Package evalcache implements the static-evaluation cache: a flat,
// fixed-size table separate from the transposition table so a cheap
// "has this position's static eval already been computed" check never
// contends with TT traffic. Spec.md §4.H has no teacher analog (zurichess
// folds static eval into its hash entries); this is built directly from
// the specification, reusing tt's lockless-atomics idiom since both
// caches serve the same concurrent-search access pattern.
package evalcache

import "sync/atomic"

// numSlots is fixed at 64K entries, indexed by the low 16 bits of the
// position key, per spec.md §4.H.
const numSlots = 1 << 16

const slotIndexMask = numSlots - 1

// Cache is a fixed 64K-slot static evaluation cache.
type Cache struct {
	slots [numSlots]atomic.Uint64
}

// New returns an empty Cache.
func New() *Cache { return &Cache{} }

// pack combines the key's high bits with score into one 64-bit word: the
// low 16 bits hold score as a raw uint16, the high 48 bits hold key>>16.
func pack(key uint64, score int16) uint64 {
	return (key >> 16 << 16) | uint64(uint16(score))
}

// Probe returns the cached static evaluation for key, if present.
func (c *Cache) Probe(key uint64) (score int16, ok bool) {
	idx := key & slotIndexMask
	slot := c.slots[idx].Load()
	if slot>>16 != key>>16 {
		return 0, false
	}
	return int16(uint16(slot)), true
}

// Store records score for key, unconditionally overwriting whatever
// previously lived at that index — the cache has no replacement policy
// beyond "most recent write wins" since static eval is cheap to
// recompute on a miss.
func (c *Cache) Store(key uint64, score int16) {
	idx := key & slotIndexMask
	c.slots[idx].Store(pack(key, score))
}

// Clear zeroes every slot.
func (c *Cache) Clear() {
	for i := range c.slots {
		c.slots[i].Store(0)
	}
}
