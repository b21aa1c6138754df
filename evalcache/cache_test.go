package evalcache

import "testing"

func TestStoreThenProbeHits(t *testing.T) {
	c := New()
	c.Store(0xDEADBEEF12345678, -137)
	score, ok := c.Probe(0xDEADBEEF12345678)
	if !ok {
		t.Fatal("expected a hit")
	}
	if score != -137 {
		t.Errorf("score = %d, want -137", score)
	}
}

func TestProbeMissesOnIndexCollisionWithDifferentKey(t *testing.T) {
	c := New()
	// Same low 16 bits (the index), different high bits.
	keyA := uint64(0x0000000000001234)
	keyB := uint64(0x0000000100001234)
	c.Store(keyA, 42)
	if _, ok := c.Probe(keyB); ok {
		t.Error("expected a miss: stored key and probe key differ above the index bits")
	}
}

func TestClearRemovesEntries(t *testing.T) {
	c := New()
	c.Store(99, 7)
	c.Clear()
	if _, ok := c.Probe(99); ok {
		t.Error("expected a miss after Clear")
	}
}

func TestStoreOverwritesPreviousValue(t *testing.T) {
	c := New()
	c.Store(5, 1)
	c.Store(5, 2)
	score, ok := c.Probe(5)
	if !ok || score != 2 {
		t.Errorf("Probe after overwrite = (%d, %v), want (2, true)", score, ok)
	}
}
