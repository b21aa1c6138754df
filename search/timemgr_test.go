package search

import (
	"testing"
	"time"
)

func TestTimeManagerInfiniteNeverExpires(t *testing.T) {
	tm := NewTimeManager(Limits{Infinite: true}, 0, time.Now(), 0)
	if tm.Stopped() {
		t.Fatal("infinite search reported stopped")
	}
	if _, ok := tm.DeadlineAt(); ok {
		t.Error("infinite search should have no deadline")
	}
}

func TestTimeManagerMoveTimeDeadline(t *testing.T) {
	start := time.Now()
	tm := NewTimeManager(Limits{MoveTime: 20 * time.Millisecond}, 0, start, 0)
	if tm.Stopped() {
		t.Fatal("should not be stopped immediately")
	}
	time.Sleep(30 * time.Millisecond)
	if !tm.Stopped() {
		t.Fatal("should be stopped after the move time elapsed")
	}
}

func TestTimeManagerExplicitStopIsImmediate(t *testing.T) {
	tm := NewTimeManager(Limits{Infinite: true}, 0, time.Now(), 0)
	tm.Stop()
	if !tm.Stopped() {
		t.Fatal("Stop() should make Stopped() report true")
	}
}

func TestTimeManagerPonderIgnoresDeadlineUntilHit(t *testing.T) {
	start := time.Now()
	tm := NewTimeManager(Limits{MoveTime: 5 * time.Millisecond}, 0, start, 0)
	tm.Ponder()
	time.Sleep(20 * time.Millisecond)
	if tm.Stopped() {
		t.Fatal("pondering should ignore the expired deadline")
	}
	tm.PonderHit(5 * time.Millisecond)
	if tm.Stopped() {
		t.Fatal("should not be stopped immediately after PonderHit")
	}
	time.Sleep(20 * time.Millisecond)
	if !tm.Stopped() {
		t.Fatal("should be stopped after the post-ponderhit deadline elapsed")
	}
}

func TestTimeManagerSplitsBudgetAcrossMoves(t *testing.T) {
	start := time.Now()
	tm := NewTimeManager(Limits{Time: [2]time.Duration{3 * time.Second, 0}}, 0, start, 0)
	remaining := tm.Remaining()
	if remaining <= 0 || remaining > time.Second {
		t.Errorf("Remaining() = %v, want roughly Time/30 (~100ms)", remaining)
	}
}
