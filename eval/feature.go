// Package eval implements position evaluation: a small NNUE-style
// quantized network when weights are loaded, falling back to a plain
// material count otherwise. Grounded on
// other_examples/hailam-chessplay's sfnnue feature indexing and dirty-piece
// bridge, adapted to the flatter perspective/king-bucket scheme spec.md
// §4.F specifies; cross-checked against original_source/mininnue for the
// handful of details spec.md leaves implicit.
package eval

import "github.com/kestrel-engine/kestrel/board"

// H is the feature-transformer hidden width.
const H = 256

// NumPieceCategories is friend/enemy (2) times piece type (6), the
// perspective-relative category half of the feature index.
const NumPieceCategories = 12

// NumKingBuckets partitions the king's own square into coarse zones so the
// same weight column serves every king position within a zone.
const NumKingBuckets = 4

// NumFeatures is the total feature-index space: 12 categories * 64 squares
// * 4 king buckets, per spec.md §4.F.
const NumFeatures = NumPieceCategories * 64 * NumKingBuckets

// KingBucket partitions ksq (already oriented to the perspective's point of
// view, i.e. flipped for Black) into one of NumKingBuckets zones. This is
// not specified further by spec.md beyond "bucket into one of four zones";
// a file/rank quadrant split is the simplest scheme that actually
// separates castled-kingside, castled-queenside, and uncastled positions
// from each other.
func KingBucket(povKsq board.Square) int {
	bucket := 0
	if povKsq.File() >= 4 {
		bucket |= 1
	}
	if povKsq.Rank() >= 4 {
		bucket |= 2
	}
	return bucket
}

// povSquare returns sq as seen by perspective p: unchanged for White,
// rank-flipped for Black so both perspectives share one weight table.
func povSquare(p board.Color, sq board.Square) board.Square {
	if p == board.Black {
		return sq.FlipRank()
	}
	return sq
}

// pieceCategory returns the perspective-relative category of a piece: 0..5
// for the perspective's own pieces (by type, Pawn=0..King=5), 6..11 for the
// opponent's.
func pieceCategory(p board.Color, pieceColor board.Color, pt board.PieceType) int {
	idx := int(pt) - 1 // Pawn=0 .. King=5
	if pieceColor != p {
		idx += 6
	}
	return idx
}

// FeatureIndex computes the flat feature index for a piece (pieceColor, pt)
// sitting on sq, as seen from perspective p whose king sits on ksq (actual
// board square, not yet oriented).
func FeatureIndex(p board.Color, sq board.Square, pieceColor board.Color, pt board.PieceType, ksq board.Square) int {
	sqPov := povSquare(p, sq)
	bucket := KingBucket(povSquare(p, ksq))
	cat := pieceCategory(p, pieceColor, pt)
	return int(sqPov) + 64*cat + 768*bucket
}

// ActiveFeatures appends every active feature index for perspective p to
// dst and returns the extended slice, used for a from-scratch accumulator
// refresh (perft-style full walk, no incremental deltas available yet).
func ActiveFeatures(b *board.Board, p board.Color, dst []int) []int {
	ksq := b.KingSquare(p)
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			for bb := b.ByPiece(c, pt); bb != 0; {
				sq := bb.Pop()
				dst = append(dst, FeatureIndex(p, sq, c, pt, ksq))
			}
		}
	}
	return dst
}
