package search

import "github.com/kestrel-engine/kestrel/board"

// RootPicker enumerates a position's legal moves once and keeps them ordered
// across iterative-deepening depths, bringing the previous iteration's best
// move to the front, per spec.md §4.E's "root move picker variant". It also
// carries the multi-PV exclusion list iterative deepening uses to search for
// the 2nd, 3rd, ... best lines.
type RootPicker struct {
	moves    []board.Move
	excluded []board.Move
}

// NewRootPicker generates every legal move once for b.
func NewRootPicker(b *board.Board) *RootPicker {
	return &RootPicker{moves: b.GenerateMoves(board.StageLegal, make([]board.Move, 0, 48))}
}

// Len returns the number of legal moves.
func (r *RootPicker) Len() int { return len(r.moves) }

// Move returns the i'th move in current order.
func (r *RootPicker) Move(i int) board.Move { return r.moves[i] }

// IsExcluded reports whether m is in the multi-PV exclusion list.
func (r *RootPicker) IsExcluded(m board.Move) bool {
	for _, e := range r.excluded {
		if e == m {
			return true
		}
	}
	return false
}

// Exclude adds m to the multi-PV exclusion list, called after a PV line is
// reported so the next multipv slot searches for a different best move.
func (r *RootPicker) Exclude(m board.Move) { r.excluded = append(r.excluded, m) }

// ResetExclusions clears the multi-PV exclusion list at the start of a new
// iterative-deepening depth.
func (r *RootPicker) ResetExclusions() { r.excluded = r.excluded[:0] }

// PromoteToFront moves m to index 0, shifting the others down by one, so the
// next depth's search tries the previous best move first.
func (r *RootPicker) PromoteToFront(m board.Move) {
	for i, cand := range r.moves {
		if cand == m {
			copy(r.moves[1:i+1], r.moves[:i])
			r.moves[0] = m
			return
		}
	}
}
