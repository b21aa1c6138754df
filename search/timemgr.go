package search

import (
	"sync/atomic"
	"time"
)

// Limits bundles the `go` command's parameters, mirrored on spec.md §6's UCI
// option list.
type Limits struct {
	Time      [2]time.Duration // remaining time per side, indexed by board.Color
	Inc       [2]time.Duration // increment per side
	MoveTime  time.Duration    // fixed time for this move, 0 if unset
	Depth     int              // 0 means unlimited
	Nodes     uint64           // 0 means unlimited
	Infinite  bool
	MultiPV   int
	MinDepth  int // spec.md §4.J's "d >= min_depth" iterative-deepening cutoff guard
}

// checkpointNodes is how often the search checks the clock, per spec.md
// §4.J's "Search checks the clock every ~2048 nodes".
const checkpointNodes = 2048

// TimeManager computes a search deadline from Limits and exposes the two
// independent stop flags spec.md §4.J names: keepGoing (hard abort) and
// pondering (soft — ignore the deadline until cleared), grounded on
// easychessanimations-zurichess's engine/time_control.go atomicFlag/TimeControl
// shape but replacing its branch-factor heuristic with spec.md's simpler
// time/30 + inc formula.
type TimeManager struct {
	deadline     time.Time
	hasDeadline  bool
	moveOverhead time.Duration

	stopped   atomic.Bool
	pondering atomic.Bool
}

// NewTimeManager builds a TimeManager for limits from the perspective of
// stm (0=White, 1=Black), starting the clock at start.
func NewTimeManager(limits Limits, stm int, start time.Time, moveOverhead time.Duration) *TimeManager {
	tm := &TimeManager{moveOverhead: moveOverhead}
	switch {
	case limits.Infinite:
		// No deadline: only an explicit Stop() or a depth/node limit ends
		// the search.
	case limits.MoveTime > 0:
		tm.deadline = start.Add(limits.MoveTime - moveOverhead)
		tm.hasDeadline = true
	case limits.Time[stm] > 0:
		budget := limits.Time[stm]/30 + limits.Inc[stm] - moveOverhead
		if budget < 0 {
			budget = 0
		}
		tm.deadline = start.Add(budget)
		tm.hasDeadline = true
	}
	return tm
}

// Ponder puts the manager into soft-stop mode: the deadline is ignored until
// PonderHit clears it.
func (tm *TimeManager) Ponder() { tm.pondering.Store(true) }

// PonderHit switches from pondering to the normal deadline, restarting the
// clock from now.
func (tm *TimeManager) PonderHit(moveTime time.Duration) {
	tm.deadline = time.Now().Add(moveTime)
	tm.hasDeadline = true
	tm.pondering.Store(false)
}

// Stop marks the search as hard-stopped: any in-flight subtree should
// unwind immediately. Idempotent and safe to call from another goroutine.
func (tm *TimeManager) Stop() { tm.stopped.Store(true) }

// Stopped reports whether the search should abort now.
func (tm *TimeManager) Stopped() bool {
	if tm.stopped.Load() {
		return true
	}
	if tm.pondering.Load() {
		return false
	}
	if tm.hasDeadline && time.Now().After(tm.deadline) {
		tm.stopped.Store(true)
		return true
	}
	return false
}

// Remaining returns the time left before the deadline, or the maximum
// duration if there is none (infinite search).
func (tm *TimeManager) Remaining() time.Duration {
	if !tm.hasDeadline {
		return time.Duration(1<<63 - 1)
	}
	return time.Until(tm.deadline)
}

// Elapsed returns how much of the allotted deadline window has passed,
// spec.md §4.J's iterative-deepening cutoff compares this against the time
// the next iteration is projected to need.
func (tm *TimeManager) DeadlineAt() (time.Time, bool) { return tm.deadline, tm.hasDeadline }
