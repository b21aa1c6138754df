// Package tt implements a lockless, fixed-size transposition table: a
// bucket of 4 entries per index, each entry consistent only when its
// stored key XOR its stored data reproduces the probe key. Torn or stale
// reads under concurrent access simply miss rather than returning garbage,
// grounded on easychessanimations-zurichess/engine/hash_table.go's bucketed
// lock-and-two-slots scheme, redesigned per spec.md §4.G to the XOR-key
// consistency check original_source/tt.hpp uses instead of a 32-bit lock
// field (the lock field can't prove consistency under concurrent writers
// without a mutex; the XOR trick can).
package tt

import "sync/atomic"

// MateValue is the score reported for a position that is checkmate.
const MateValue = 32000

// MateBound separates "mate scores" from ordinary centipawn scores: any
// score with absolute value >= MateBound encodes a forced mate in
// (MateValue-|score|) plies, per spec.md §4.G's mate-adjustment rule and
// §4.J's pruning guards. Not specified numerically by spec.md; 1000 below
// MateValue leaves room for the longest plausible forced mate depth.
const MateBound = MateValue - 1000

// Bound records which side of the search window a stored score is exact,
// or bounds.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundExact
	BoundLower // score is a lower bound (failed high, beta cutoff)
	BoundUpper // score is an upper bound (failed low)
)

const entriesPerBucket = 4

// data field bit layout, 64 bits total:
// move16(0-15) score16(16-31) eval16(32-47) depth5(48-52) bound2(53-54) avoidNull1(55) age8(56-63)
const (
	moveShift  = 0
	scoreShift = 16
	evalShift  = 32
	depthShift = 48
	boundShift = 53
	avoidShift = 55
	ageShift   = 56

	moveMask  = 0xFFFF
	scoreMask = 0xFFFF
	evalMask  = 0xFFFF
	depthMask = 0x1F
	boundMask = 0x3
	ageMask   = 0xFF
)

// entry is one lockless slot: key holds (storedKey XOR data).
type entry struct {
	key  atomic.Uint64
	data atomic.Uint64
}

// Entry is the decoded, caller-facing view of a stored position.
type Entry struct {
	Move      uint16
	Score     int16
	Eval      int16
	Depth     int8
	Bound     Bound
	AvoidNull bool
	Age       uint8
}

func packData(e Entry) uint64 {
	d := uint64(e.Move) << moveShift
	d |= uint64(uint16(e.Score)) << scoreShift
	d |= uint64(uint16(e.Eval)) << evalShift
	d |= uint64(uint8(e.Depth)) << depthShift
	d |= uint64(e.Bound) << boundShift
	if e.AvoidNull {
		d |= 1 << avoidShift
	}
	d |= uint64(e.Age) << ageShift
	return d
}

func unpackData(d uint64) Entry {
	return Entry{
		Move:      uint16(d>>moveShift) & moveMask,
		Score:     int16(uint16(d>>scoreShift) & scoreMask),
		Eval:      int16(uint16(d>>evalShift) & evalMask),
		Depth:     int8(uint8(d>>depthShift) & depthMask),
		Bound:     Bound(d>>boundShift) & boundMask,
		AvoidNull: d>>avoidShift&1 != 0,
		Age:       uint8(d >> ageShift & ageMask),
	}
}

// Table is a lockless transposition table sized in whole buckets.
type Table struct {
	buckets []entry // len is a power of two times entriesPerBucket
	mask    uint64  // bucket-index mask; numBuckets-1
	gen     atomic.Uint32
}

// New builds a Table sized to fit within sizeMB megabytes, rounded down to
// a power-of-two bucket count.
func New(sizeMB int) *Table {
	const bucketBytes = entriesPerBucket * 16 // two uint64s per entry
	numBuckets := uint64(sizeMB) << 20 / bucketBytes
	if numBuckets == 0 {
		numBuckets = 1
	}
	for numBuckets&(numBuckets-1) != 0 {
		numBuckets &= numBuckets - 1
	}
	t := &Table{
		buckets: make([]entry, numBuckets*entriesPerBucket),
		mask:    numBuckets - 1,
	}
	return t
}

// newWithBuckets builds a table with exactly numBuckets buckets, bypassing
// New's megabyte rounding. Used by tests that need to pin bucket
// collisions deterministically.
func newWithBuckets(numBuckets uint64) *Table {
	return &Table{
		buckets: make([]entry, numBuckets*entriesPerBucket),
		mask:    numBuckets - 1,
	}
}

// Resize rebuilds the table at a new size, discarding all entries.
func (t *Table) Resize(sizeMB int) { *t = *New(sizeMB) }

func (t *Table) bucketBase(key uint64) int {
	return int(key&t.mask) * entriesPerBucket
}

// Probe looks up key and, on a hit, returns the stored entry with Score
// mate-adjusted for ply (spec.md §4.G: stored mate scores are relative to
// the position where they were stored, not the root).
func (t *Table) Probe(key uint64, ply int) (Entry, bool) {
	base := t.bucketBase(key)
	for i := 0; i < entriesPerBucket; i++ {
		e := &t.buckets[base+i]
		k := e.key.Load()
		d := e.data.Load()
		if k^d == key {
			ent := unpackData(d)
			ent.Score = adjustMateScore(ent.Score, ply, 1)
			return ent, true
		}
	}
	return Entry{}, false
}

// Store writes ent under key, replacing whichever entry in the bucket is
// least valuable: the same key (always refresh), else the oldest
// generation with the smallest depth, else (if all current generation) the
// smallest depth, per spec.md §4.G's replacement policy.
func (t *Table) Store(key uint64, ent Entry, ply int) {
	ent.Score = adjustMateScore(ent.Score, ply, -1)
	ent.Age = uint8(t.gen.Load())
	data := packData(ent)

	base := t.bucketBase(key)
	curGen := uint8(t.gen.Load())
	sameKey := -1
	bestOld := -1   // best candidate among stale-generation entries
	bestAny := 0    // best candidate overall, used if nothing is stale
	var bestOldDepth, bestAnyDepth int8 = 127, 127
	for i := 0; i < entriesPerBucket; i++ {
		e := &t.buckets[base+i]
		k := e.key.Load()
		d := e.data.Load()
		if k^d == key {
			sameKey = i
			break
		}
		cur := unpackData(d)
		if cur.Depth < bestAnyDepth {
			bestAny, bestAnyDepth = i, cur.Depth
		}
		if cur.Age != curGen && cur.Depth < bestOldDepth {
			bestOld, bestOldDepth = i, cur.Depth
		}
	}

	victim := bestAny
	if sameKey != -1 {
		victim = sameKey
	} else if bestOld != -1 {
		victim = bestOld
	}

	e := &t.buckets[base+victim]
	e.data.Store(data)
	e.key.Store(key ^ data)
}

// NewSearch bumps the generation counter so subsequent Store calls mark
// entries as current, letting Store's replacement policy evict stale ones
// first.
func (t *Table) NewSearch() { t.gen.Add(1) }

// Clear zeroes every entry.
func (t *Table) Clear() {
	for i := range t.buckets {
		t.buckets[i].key.Store(0)
		t.buckets[i].data.Store(0)
	}
}

// Prefetch is a documented no-op: Go gives no portable prefetch intrinsic,
// so this exists only so callers written against spec.md §4.G's API
// (probe preceded by a prefetch hint) compile unchanged if a future Go
// release adds one.
func (t *Table) Prefetch(key uint64) { _ = t.bucketBase(key) }

// adjustMateScore converts a mate score between "relative to root" (what
// search compares against alpha/beta) and "relative to the stored
// position" (what makes a cached mate score reusable from a different
// ply), per spec.md §4.G. sign is +1 when reading (Probe), -1 when writing
// (Store).
func adjustMateScore(score int16, ply, sign int) int16 {
	s := int(score)
	if s > MateBound {
		s += sign * ply
	} else if s < -MateBound {
		s -= sign * ply
	}
	return int16(s)
}
