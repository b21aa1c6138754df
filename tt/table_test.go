package tt

import (
	"sync"
	"testing"
)

func TestStoreThenProbeHits(t *testing.T) {
	tb := New(1)
	key := uint64(0x1234567890ABCDEF)
	ent := Entry{Move: 0x0742, Score: 55, Eval: 40, Depth: 10, Bound: BoundExact}
	tb.Store(key, ent, 3)

	got, ok := tb.Probe(key, 3)
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.Move != ent.Move || got.Score != ent.Score || got.Eval != ent.Eval || got.Depth != ent.Depth || got.Bound != ent.Bound {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", got, ent)
	}
}

func TestProbeMissesOnUnrelatedKey(t *testing.T) {
	tb := New(1)
	tb.Store(1, Entry{Depth: 5}, 0)
	if _, ok := tb.Probe(2, 0); ok {
		t.Error("expected a miss for a different key")
	}
}

func TestMateScoreAdjustedAcrossPly(t *testing.T) {
	tb := New(1)
	key := uint64(42)
	// A mate-in-5-from-storage-point score, stored while searching at ply 3.
	tb.Store(key, Entry{Score: MateValue - 5, Bound: BoundExact}, 3)

	// Probed from root (ply 0) the score should be smaller in magnitude by
	// the stored ply (mate is further away from the root).
	got, ok := tb.Probe(key, 0)
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.Score != MateValue-5-3 {
		t.Errorf("Probe(ply=0) Score = %d, want %d", got.Score, MateValue-5-3)
	}
}

func TestClearRemovesAllEntries(t *testing.T) {
	tb := New(1)
	tb.Store(7, Entry{Depth: 1}, 0)
	tb.Clear()
	if _, ok := tb.Probe(7, 0); ok {
		t.Error("expected a miss after Clear")
	}
}

func TestReplacementPrefersOldGenerationThenShallowDepth(t *testing.T) {
	tb := newWithBuckets(1) // exactly one bucket of 4 entries, all keys collide
	// Fill the bucket with 4 deep, current-generation entries. Keys start
	// at 1: an all-zero (key=0, data=0) slot would otherwise decode as a
	// spurious hit for probe key 0.
	keys := []uint64{1, 2, 3, 4}
	for _, k := range keys {
		tb.Store(k, Entry{Depth: 20}, 0)
	}
	tb.NewSearch() // entries above are now "old" generation
	// A shallow new-generation entry should still lose to a same-key
	// overwrite and to the now-stale deep entries only by depth, not age,
	// until a fresh store picks a stale slot.
	tb.Store(100, Entry{Depth: 1}, 0)
	hits := 0
	for _, k := range keys {
		if _, ok := tb.Probe(k, 0); ok {
			hits++
		}
	}
	if hits != 3 {
		t.Errorf("expected exactly one of the 4 stale entries evicted, got %d remaining", hits)
	}
	if _, ok := tb.Probe(100, 0); !ok {
		t.Error("expected the newly stored entry to be present")
	}
}

func TestConcurrentProbeStoreNeverReturnsTornEntry(t *testing.T) {
	tb := New(1)
	var wg sync.WaitGroup
	keys := []uint64{1, 2, 3, 4, 5, 6, 7, 8}
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				k := keys[(i+seed)%len(keys)]
				tb.Store(k, Entry{Move: uint16(i), Depth: int8(i % 30), Bound: BoundExact}, 0)
				if ent, ok := tb.Probe(k, 0); ok {
					_ = ent // a hit must have passed the XOR consistency check internally
				}
			}
		}(w)
	}
	wg.Wait()
}
