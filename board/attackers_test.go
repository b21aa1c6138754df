package board

import "testing"

func TestPinnedPieceRestrictedToPinLine(t *testing.T) {
	// White king e1, white bishop e2 pinned by black rook e8 along the
	// e-file. The bishop has no move that stays on that file, so it should
	// have zero legal moves; the rook move e8 itself is irrelevant here.
	var b Board
	if err := b.SetFEN("4r1k1/8/8/8/8/8/4B3/4K3 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	if b.Blockers[White]&SquareE2.Bitboard() == 0 {
		t.Fatal("bishop on e2 should be a pinned blocker")
	}
	moves := b.GenerateMoves(StageLegal, nil)
	for _, m := range moves {
		if m.From() == SquareE2 {
			t.Errorf("pinned bishop should have no legal moves, got %v", m)
		}
	}
}

func TestCheckRestrictsToEvasions(t *testing.T) {
	// Black rook on e8 checks the white king on e1 along the e-file; the
	// knight on c3 can block on e4 but has no other legal moves elsewhere.
	var b Board
	if err := b.SetFEN("4r1k1/8/8/8/8/2N5/8/4K3 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	if b.Checkers == 0 {
		t.Fatal("expected white king to be in check")
	}
	moves := b.GenerateMoves(StageLegal, nil)
	for _, m := range moves {
		nb, _ := b.DoMove(m)
		if nb.IsSquareAttacked(nb.KingSquare(White), Black) {
			t.Errorf("move %v leaves king in check", m)
		}
	}
}

func TestEnPassantDiscoveredCheckExcluded(t *testing.T) {
	// Classic case: white king a5, white pawn c5, black pawn just played
	// d7-d5, black rook h5. Capturing en passant (c5xd6) would remove both
	// pawns from the 5th rank and expose the king to the rook; it must not
	// be generated even though neither pawn is individually pinned.
	var b2 Board
	if err := b2.SetFEN("8/8/8/K1Pp3r/1R3p1k/8/4P1P1/8 w - d6 0 2"); err != nil {
		t.Fatal(err)
	}
	for _, m := range b2.GenerateMoves(StageLegal, nil) {
		if m.Type() == EnPassant {
			t.Errorf("en passant capture should be illegal (discovered check), got %v", m)
		}
	}
}
