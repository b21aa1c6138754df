package search

import (
	"testing"

	"github.com/kestrel-engine/kestrel/board"
)

func TestHistoryAddSaturatesAndClamps(t *testing.T) {
	var h historyTable
	p := board.MakePiece(board.White, board.Knight)
	sq := board.SquareE4

	for i := 0; i < 200; i++ {
		h.add(p, sq, 64)
	}
	if got := h.get(p, sq); got != 16384 {
		t.Errorf("repeated positive bonus: get() = %d, want clamped at 16384", got)
	}

	for i := 0; i < 200; i++ {
		h.add(p, sq, -64)
	}
	if got := h.get(p, sq); got != -16384 {
		t.Errorf("repeated negative bonus: get() = %d, want clamped at -16384", got)
	}
}

func TestHistoryIsIndependentPerPieceAndSquare(t *testing.T) {
	var h historyTable
	p1 := board.MakePiece(board.White, board.Knight)
	p2 := board.MakePiece(board.Black, board.Knight)
	h.add(p1, board.SquareE4, 50)
	if h.get(p2, board.SquareE4) != 0 {
		t.Error("history leaked across colors")
	}
	if h.get(p1, board.SquareD4) != 0 {
		t.Error("history leaked across squares")
	}
}

func TestCounterTableIgnoresNoneAndNull(t *testing.T) {
	var c counterTable
	reply := board.Move(5)
	c.set(board.MoveNone, reply)
	c.set(board.MoveNull, reply)
	if got := c.get(board.MoveNone); !got.IsNone() {
		t.Errorf("get(MoveNone) = %v, want MoveNone", got)
	}
	if got := c.get(board.MoveNull); !got.IsNone() {
		t.Errorf("get(MoveNull) = %v, want MoveNone", got)
	}
}

func TestCounterTableRoundTrip(t *testing.T) {
	var c counterTable
	prev := board.Move(3)
	reply := board.Move(9)
	c.set(prev, reply)
	if got := c.get(prev); got != reply {
		t.Errorf("get(prev) = %v, want %v", got, reply)
	}
}

func TestFollowupTableRoundTrip(t *testing.T) {
	var f followupTable
	prev := board.Move(11)
	reply := board.Move(22)
	f.set(prev, reply)
	if got := f.get(prev); got != reply {
		t.Errorf("get(prev) = %v, want %v", got, reply)
	}
}

func TestMvvlvaRanksQueenCaptureAboveRookCapture(t *testing.T) {
	var bQ board.Board
	if err := bQ.SetFEN("4k3/8/8/3q4/2P5/8/8/4K3 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	captureQueen, err := board.ParseUCI(&bQ, "c4d5")
	if err != nil {
		t.Fatalf("c4d5 not legal: %v", err)
	}

	var bR board.Board
	if err := bR.SetFEN("4k3/8/8/3r4/2P5/8/8/4K3 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	captureRook, err := board.ParseUCI(&bR, "c4d5")
	if err != nil {
		t.Fatalf("c4d5 not legal: %v", err)
	}

	scoreQueen := mvvlva(&bQ, captureQueen)
	scoreRook := mvvlva(&bR, captureRook)
	if scoreQueen <= scoreRook {
		t.Errorf("mvvlva(queen capture)=%d should exceed mvvlva(rook capture)=%d", scoreQueen, scoreRook)
	}
}

func TestCenterTableHighestAtCenter(t *testing.T) {
	center := centerTable[board.SquareE4]
	corner := centerTable[board.SquareA1]
	if center <= corner {
		t.Errorf("centerTable[e4]=%d should exceed centerTable[a1]=%d", center, corner)
	}
}
