package search

import (
	"testing"

	"github.com/kestrel-engine/kestrel/board"
)

func TestPVTablePutAndLine(t *testing.T) {
	pv := NewPVTable()
	b := board.StartPos()

	m1, err := board.ParseUCI(&b, "e2e4")
	if err != nil {
		t.Fatal(err)
	}
	nb1, _ := b.DoMove(m1)
	m2, err := board.ParseUCI(&nb1, "e7e5")
	if err != nil {
		t.Fatal(err)
	}

	pv.Put(b.Key, m1)
	pv.Put(nb1.Key, m2)

	line := pv.Line(b, 10)
	if len(line) != 2 || line[0] != m1 || line[1] != m2 {
		t.Fatalf("Line() = %v, want [%v %v]", line, m1, m2)
	}
}

func TestPVTableIgnoresMoveNone(t *testing.T) {
	pv := NewPVTable()
	pv.Put(123, board.MoveNone)
	if got := pv.get(123); !got.IsNone() {
		t.Errorf("get(123) = %v, want MoveNone after Put(MoveNone)", got)
	}
}

func TestPVTableLineStopsOnStaleMove(t *testing.T) {
	pv := NewPVTable()
	b := board.StartPos()

	// A black pawn push, illegal from the (white-to-move) starting position
	// it's being recorded against — simulates a table entry going stale
	// between searches.
	after1e4, _ := b.DoMove(mustParse(t, &b, "e2e4"))
	stale := mustParse(t, &after1e4, "e7e5")

	pv.Put(b.Key, stale)
	line := pv.Line(b, 10)
	if len(line) != 0 {
		t.Errorf("Line() = %v, want empty (stale move rejected)", line)
	}
}

func mustParse(t *testing.T, b *board.Board, uci string) board.Move {
	t.Helper()
	m, err := board.ParseUCI(b, uci)
	if err != nil {
		t.Fatalf("ParseUCI(%q): %v", uci, err)
	}
	return m
}
