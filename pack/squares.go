package pack

import (
	"math/bits"

	"github.com/kestrel-engine/kestrel/board"
)

// nthSetSquare returns the square of the n'th (0-based) least-significant
// set bit of mask.
func nthSetSquare(mask board.Bitboard, n int) board.Square {
	for i := 0; i < n; i++ {
		mask &= mask - 1
	}
	return board.Square(bits.TrailingZeros64(uint64(mask)))
}

// squareIndex returns sq's 0-based rank among mask's set bits, i.e. the
// number of set bits below sq.
func squareIndex(mask board.Bitboard, sq board.Square) int {
	below := mask & (board.Bitboard(1)<<uint(sq) - 1)
	return bits.OnesCount64(uint64(below))
}

// indexBits returns how many bits are needed to index n distinct
// alternatives (0 when n <= 1), per spec.md §4.K's
// `ceil(log2(popcount(mask)))` square encoding.
func indexBits(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// writeSquare encodes sq's position within mask: nothing if mask has at
// most one set bit (the destination is implied), else its 0-based rank
// among mask's set bits in indexBits(popcount(mask)) bits.
func writeSquare(w *BitWriter, mask board.Bitboard, sq board.Square) {
	n := bits.OnesCount64(uint64(mask))
	if n <= 1 {
		return
	}
	w.WriteBits(uint64(squareIndex(mask, sq)), indexBits(n))
}

// readSquare is writeSquare's inverse. Returns SquareNone if mask is empty,
// which only happens against a corrupt stream.
func readSquare(r *BitReader, mask board.Bitboard) board.Square {
	n := bits.OnesCount64(uint64(mask))
	if n == 0 {
		return board.SquareNone
	}
	if n == 1 {
		return board.Square(bits.TrailingZeros64(uint64(mask)))
	}
	idx := int(r.ReadBits(indexBits(n)))
	return nthSetSquare(mask, idx)
}
