package eval

import "github.com/kestrel-engine/kestrel/board"

// pieceValue mirrors board.SeeValue but lives in eval so the fallback
// evaluator has no dependency on SEE's ordering-only table, grounded on
// easychessanimations-zurichess/engine/material.go's piece-value set.
var pieceValue = [board.NumPieceTypes]int{
	board.Pawn:   100,
	board.Knight: 320,
	board.Bishop: 330,
	board.Rook:   500,
	board.Queen:  900,
}

// Material scores b from the side-to-move's point of view using piece
// counts only, the evaluator used whenever no NNUE weights are loaded
// (spec.md §4.F's fallback).
func Material(b *board.Board) int {
	us, them := b.SideToMove, b.SideToMove.Opposite()
	score := 0
	for pt := board.Pawn; pt <= board.Queen; pt++ {
		score += pieceValue[pt] * b.ByPiece(us, pt).Popcnt()
		score -= pieceValue[pt] * b.ByPiece(them, pt).Popcnt()
	}
	return score
}
