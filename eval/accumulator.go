package eval

import "github.com/kestrel-engine/kestrel/board"

// Accumulator holds the feature-transformer state for one perspective: the
// hidden vector plus the parallel PSQT scalar, per spec.md §4.F.
type Accumulator struct {
	Hidden [H]int16
	PSQT   int32
}

// PerspectiveAccumulator bundles both perspectives together, the unit
// search actually threads through the per-ply stack.
type PerspectiveAccumulator [board.NumColors]Accumulator

// Refresh recomputes acc from scratch for perspective p, the path taken on
// the first ply of a search and whenever the perspective's own king
// crosses into a new bucket.
func (net *Network) Refresh(b *board.Board, p board.Color, acc *Accumulator) {
	acc.Hidden = net.Biases
	acc.PSQT = 0
	var buf [32]int
	features := ActiveFeatures(b, p, buf[:0])
	for _, f := range features {
		net.addFeature(acc, f)
	}
}

// ApplyDelta updates acc in place for perspective p given the board deltas
// of one move (board.StateInfo.Deltas), replaying removed-then-added
// features exactly as the dirty-piece bridge in the pack's NNUE examples
// does. Callers must not call this when the perspective's own king moved
// to a different bucket — refresh from scratch instead (see NeedsRefresh).
func (net *Network) ApplyDelta(b *board.Board, p board.Color, ksq board.Square, deltas []board.PieceDelta, acc *Accumulator) {
	for _, d := range deltas {
		if d.From != board.SquareNone {
			f := FeatureIndex(p, d.From, d.Piece.Color(), d.Piece.Type(), ksq)
			net.removeFeature(acc, f)
		}
		if d.To != board.SquareNone {
			f := FeatureIndex(p, d.To, d.Piece.Color(), d.Piece.Type(), ksq)
			net.addFeature(acc, f)
		}
	}
}

// NeedsRefresh reports whether a king move by color moved (mover) changes
// perspective p's king bucket, which invalidates incremental updates for
// that perspective per spec.md §4.F.
func NeedsRefresh(p board.Color, moved board.PieceDelta, oldKsq, newKsq board.Square) bool {
	if moved.Piece.Type() != board.King || moved.Piece.Color() != p {
		return false
	}
	return KingBucket(povSquare(p, oldKsq)) != KingBucket(povSquare(p, newKsq))
}

func (net *Network) addFeature(acc *Accumulator, f int) {
	base := f * H
	for h := 0; h < H; h++ {
		acc.Hidden[h] += net.Weights[base+h]
	}
	acc.PSQT += net.PSQTWeights[f]
}

func (net *Network) removeFeature(acc *Accumulator, f int) {
	base := f * H
	for h := 0; h < H; h++ {
		acc.Hidden[h] -= net.Weights[base+h]
	}
	acc.PSQT -= net.PSQTWeights[f]
}
