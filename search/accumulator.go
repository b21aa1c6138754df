package search

import (
	"github.com/kestrel-engine/kestrel/board"
	"github.com/kestrel-engine/kestrel/eval"
)

// refreshAcc recomputes the accumulator at ply from scratch for both
// perspectives, the path taken once at the search root and whenever
// stepAccumulator finds a king crossed into a new bucket. A no-op when no
// network is loaded, matching eval.Store.Evaluate's material-only fallback.
func (e *Engine) refreshAcc(ply int, b *board.Board) {
	net := e.evalStore.Current()
	if net == nil {
		return
	}
	acc := e.stack.accAt(ply)
	net.Refresh(b, board.White, &acc[board.White])
	net.Refresh(b, board.Black, &acc[board.Black])
}

// stepAccumulator derives the accumulator at childPly from the one already
// recorded at parentPly, given the StateInfo st returned by the DoMove that
// produced child. Per perspective this is either a cheap ApplyDelta replay
// of st's deltas, or a full Refresh when that perspective's own king just
// crossed into a new bucket (eval.NeedsRefresh). A no-op when no network is
// loaded.
func (e *Engine) stepAccumulator(parentPly, childPly int, child *board.Board, st *board.StateInfo) {
	net := e.evalStore.Current()
	if net == nil {
		return
	}
	*e.stack.accAt(childPly) = *e.stack.accAt(parentPly)
	childAcc := e.stack.accAt(childPly)

	var kingMove board.PieceDelta
	sawKingMove := false
	for _, d := range st.Deltas[:st.NumDeltas] {
		if d.Piece.Type() == board.King {
			kingMove = d
			sawKingMove = true
			break
		}
	}

	for _, p := range [board.NumColors]board.Color{board.White, board.Black} {
		if sawKingMove && eval.NeedsRefresh(p, kingMove, kingMove.From, kingMove.To) {
			net.Refresh(child, p, &childAcc[p])
			continue
		}
		ksq := child.KingSquare(p)
		net.ApplyDelta(child, p, ksq, st.Deltas[:st.NumDeltas], &childAcc[p])
	}
}

// copyAccForward carries the accumulator unchanged across a null move: no
// piece moved, so neither perspective needs a refresh or a delta replay.
func (e *Engine) copyAccForward(parentPly, childPly int) {
	*e.stack.accAt(childPly) = *e.stack.accAt(parentPly)
}
