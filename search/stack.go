// Package search implements iterative-deepening principal variation search
// over the board package: move ordering, pruning/extension heuristics, a
// time manager and the transposition/eval caches tie together here.
package search

import (
	"github.com/kestrel-engine/kestrel/board"
	"github.com/kestrel-engine/kestrel/eval"
	"github.com/kestrel-engine/kestrel/tt"
)

// maxPly bounds the search stack, grounded on spec.md §4.I's "fixed-capacity
// ply array (>= 1024)".
const maxPly = 1024

// plyState is one entry of the search stack: everything the engine needs to
// remember about a single ply without re-deriving it from the board, mirrored
// on easychessanimations-zurichess/engine/move_ordering.go's moveStack but
// carrying the extra fields (excluded move, static eval, position key) spec.md
// §4.I's search stack names.
type plyState struct {
	key      uint64     // position key at this ply, for repetition detection
	move     board.Move // move played to reach this ply (MoveNone at the root)
	excluded board.Move // move excluded from the picker (singular-extension probe)
	killers  [2]board.Move
	eval     int16 // static eval recorded at this ply, for the "improving" test
	acc      eval.PerspectiveAccumulator // incremental NNUE state, kept current by Engine.stepAccumulator
}

// Stack is the fixed-capacity per-search ply array.
type Stack struct {
	plies [maxPly]plyState
}

// NewStack returns an empty Stack.
func NewStack() *Stack { return &Stack{} }

// Reset clears every ply back to its zero value.
func (s *Stack) Reset() {
	for i := range s.plies {
		s.plies[i] = plyState{}
	}
}

// push records the position reached at ply after playing m, with no
// exclusion active yet. Mirrors make/unmake's "descend" half.
func (s *Stack) push(ply int, key uint64, m board.Move, eval int16) {
	s.plies[ply] = plyState{key: key, move: m, eval: eval}
}

// pop is a documented no-op: unlike the teacher's mutate-in-place Position,
// board.Board.DoMove already returns a fresh value, so "undo" is simply
// letting the caller's stack-allocated copy go out of scope. Kept so callers
// that think in push/pop pairs, per spec.md §4.I, have a symmetric call.
func (s *Stack) pop(ply int) { s.plies[ply] = plyState{} }

func (s *Stack) setExcluded(ply int, m board.Move) { s.plies[ply].excluded = m }
func (s *Stack) excludedAt(ply int) board.Move     { return s.plies[ply].excluded }
func (s *Stack) setEval(ply int, eval int16)       { s.plies[ply].eval = eval }
func (s *Stack) evalAt(ply int) int16              { return s.plies[ply].eval }
func (s *Stack) moveAt(ply int) board.Move         { return s.plies[ply].move }
func (s *Stack) keyAt(ply int) uint64              { return s.plies[ply].key }

// accAt returns the perspective accumulator stored at ply, mutable in place
// so Engine.refreshAcc/stepAccumulator can update it without copying the
// (fairly large) NNUE hidden vectors in and out.
func (s *Stack) accAt(ply int) *eval.PerspectiveAccumulator { return &s.plies[ply].acc }

func (s *Stack) killers(ply int) [2]board.Move { return s.plies[ply].killers }

func (s *Stack) isKiller(ply int, m board.Move) bool {
	k := &s.plies[ply].killers
	return m == k[0] || m == k[1]
}

// addKiller records m as the newest killer at ply, shifting the previous
// first killer down to the second slot, per spec.md §4.E's "two slots".
func (s *Stack) addKiller(ply int, m board.Move) {
	k := &s.plies[ply].killers
	if m == k[0] {
		return
	}
	k[1] = k[0]
	k[0] = m
}

// matedScore returns the score reported for "checkmated at this ply",
// spec.md §4.I's `mated_score() = -MATE + ply`.
func matedScore(ply int) int { return -tt.MateValue + ply }

// isRepetition implements spec.md §4.I's repetition rule: scan back at most
// min(halfMoveClock, pliesFromNull) plies in steps of 2, returning true on
// any repeat inside the search tree, or >= 2 repeats counting prior game
// history recorded by history (the keys played before the search started).
func (s *Stack) isRepetition(ply int, b *board.Board, history []uint64) bool {
	limit := b.HalfMoveClock
	if b.PliesFromNull < limit {
		limit = b.PliesFromNull
	}
	if limit < 2 {
		return false
	}
	key := b.Key
	historyHits := 0
	for back := 2; back <= limit; back += 2 {
		idx := ply - back
		if idx >= 0 {
			// A repeat against a position reached earlier in this same
			// search tree is itself enough: the line is heading for a
			// forced repeat regardless of what happened before the search
			// started.
			if s.plies[idx].key == key {
				return true
			}
			continue
		}
		histIdx := len(history) + idx
		if histIdx < 0 || histIdx >= len(history) {
			continue
		}
		if history[histIdx] == key {
			historyHits++
			if historyHits >= 2 {
				return true
			}
		}
	}
	return false
}
