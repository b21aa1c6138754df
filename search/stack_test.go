package search

import (
	"testing"

	"github.com/kestrel-engine/kestrel/board"
)

func TestStackKillersShiftOldestOut(t *testing.T) {
	s := NewStack()
	a := board.Move(1)
	b := board.Move(2)
	c := board.Move(3)

	s.addKiller(5, a)
	s.addKiller(5, b)
	k := s.killers(5)
	if k[0] != b || k[1] != a {
		t.Fatalf("after adding a,b: got %v, want [b,a]", k)
	}

	s.addKiller(5, c)
	k = s.killers(5)
	if k[0] != c || k[1] != b {
		t.Fatalf("after adding c: got %v, want [c,b]", k)
	}

	// Re-adding the current first killer is a no-op.
	s.addKiller(5, c)
	k = s.killers(5)
	if k[0] != c || k[1] != b {
		t.Fatalf("re-adding c: got %v, want unchanged [c,b]", k)
	}
}

func TestStackIsKiller(t *testing.T) {
	s := NewStack()
	a := board.Move(7)
	s.addKiller(3, a)
	if !s.isKiller(3, a) {
		t.Error("expected a to be a killer at ply 3")
	}
	if s.isKiller(3, board.Move(8)) {
		t.Error("unrelated move reported as killer")
	}
	if s.isKiller(4, a) {
		t.Error("killer leaked across plies")
	}
}

func TestStackSetEvalRoundTrip(t *testing.T) {
	s := NewStack()
	s.setEval(2, 137)
	if got := s.evalAt(2); got != 137 {
		t.Errorf("evalAt(2) = %d, want 137", got)
	}
	if got := s.evalAt(3); got != 0 {
		t.Errorf("evalAt(3) = %d, want 0 (untouched)", got)
	}
}

func TestMatedScoreIncreasesWithPly(t *testing.T) {
	shallow := matedScore(1)
	deep := matedScore(10)
	if deep <= shallow {
		t.Errorf("matedScore(10)=%d should be greater (less negative) than matedScore(1)=%d", deep, shallow)
	}
}

func TestIsRepetitionWithinSearchTree(t *testing.T) {
	s := NewStack()
	b := board.StartPos()
	var history []uint64

	moves := []string{"g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6"}
	ply := 0
	s.push(ply, b.Key, board.MoveNone, 0)
	for _, uci := range moves {
		m, err := board.ParseUCI(&b, uci)
		if err != nil {
			t.Fatalf("ParseUCI(%q): %v", uci, err)
		}
		nb, _ := b.DoMove(m)
		ply++
		s.push(ply, nb.Key, m, 0)
		b = nb
	}

	// After repeating the position via knight shuffles, the position at the
	// final ply has already been visited twice earlier in this same tree
	// (ply 0 and ply 4), which on its own should report a repetition.
	if !s.isRepetition(ply, &b, history) {
		t.Error("expected in-tree repetition to be detected")
	}
}

func TestIsRepetitionNeedsTwoPriorHistoryHits(t *testing.T) {
	s := NewStack()
	b := board.StartPos()
	key := b.Key

	// Placed so that scanning back 2 and back 4 plies from ply 0 (i.e. into
	// game history before this search started) both land on key.
	history := []uint64{key, 0xDEAD, key, 0xBEEF}
	b.HalfMoveClock = 4
	b.PliesFromNull = 4
	s.push(0, key, board.MoveNone, 0)

	if !s.isRepetition(0, &b, history) {
		t.Error("expected two prior-history hits to count as a repetition")
	}
}

func TestIsRepetitionSingleHistoryHitIsNotEnough(t *testing.T) {
	s := NewStack()
	b := board.StartPos()
	key := b.Key

	history := []uint64{key, 0xDEAD, 0xCAFE, 0xBEEF}
	b.HalfMoveClock = 4
	b.PliesFromNull = 4
	s.push(0, key, board.MoveNone, 0)

	if s.isRepetition(0, &b, history) {
		t.Error("a single prior-history hit should not count as a repetition")
	}
}
