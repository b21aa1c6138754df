package pack

import (
	"testing"

	"github.com/kestrel-engine/kestrel/board"
)

func TestIndexBits(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
	}
	for _, c := range cases {
		if got := indexBits(c.n); got != c.want {
			t.Errorf("indexBits(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestWriteReadSquareSingleBitMaskWritesNothing(t *testing.T) {
	mask := board.SquareD4.Bitboard()
	w := NewBitWriter(1)
	writeSquare(w, mask, board.SquareD4)
	if w.BitLen() != 0 {
		t.Errorf("a single-bit mask should need zero bits, wrote %d", w.BitLen())
	}

	r := NewBitReader(w.Bytes())
	if got := readSquare(r, mask); got != board.SquareD4 {
		t.Errorf("readSquare = %v, want d4", got)
	}
}

func TestWriteReadSquareRoundTripsEverySetBit(t *testing.T) {
	mask := board.SquareA1.Bitboard() | board.SquareH1.Bitboard() |
		board.SquareA8.Bitboard() | board.SquareH8.Bitboard() | board.SquareE4.Bitboard()

	for _, sq := range []board.Square{board.SquareA1, board.SquareH1, board.SquareA8, board.SquareH8, board.SquareE4} {
		w := NewBitWriter(1)
		writeSquare(w, mask, sq)
		r := NewBitReader(w.Bytes())
		if got := readSquare(r, mask); got != sq {
			t.Errorf("square %v: round trip gave %v", sq, got)
		}
	}
}

func TestSquareIndexMatchesPopcountBelow(t *testing.T) {
	mask := board.SquareB2.Bitboard() | board.SquareD4.Bitboard() | board.SquareF6.Bitboard()
	if got := squareIndex(mask, board.SquareB2); got != 0 {
		t.Errorf("squareIndex(b2) = %d, want 0", got)
	}
	if got := squareIndex(mask, board.SquareD4); got != 1 {
		t.Errorf("squareIndex(d4) = %d, want 1", got)
	}
	if got := squareIndex(mask, board.SquareF6); got != 2 {
		t.Errorf("squareIndex(f6) = %d, want 2", got)
	}
}

func TestNthSetSquare(t *testing.T) {
	mask := board.SquareB2.Bitboard() | board.SquareD4.Bitboard() | board.SquareF6.Bitboard()
	if got := nthSetSquare(mask, 0); got != board.SquareB2 {
		t.Errorf("nthSetSquare(0) = %v, want b2", got)
	}
	if got := nthSetSquare(mask, 2); got != board.SquareF6 {
		t.Errorf("nthSetSquare(2) = %v, want f6", got)
	}
}
