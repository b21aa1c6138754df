package board

import "testing"

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		var b Board
		if err := b.SetFEN(fen); err != nil {
			t.Fatalf("SetFEN(%q): %v", fen, err)
		}
		if got := b.FEN(); got != fen {
			t.Errorf("round-trip mismatch: got %q, want %q", got, fen)
		}
	}
}

func TestSetFENRejectsBadInput(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
	}
	for _, fen := range bad {
		var b Board
		if err := b.SetFEN(fen); err == nil {
			t.Errorf("SetFEN(%q): expected error, got nil", fen)
		}
	}
}

func TestZobristIncrementalMatchesFromScratch(t *testing.T) {
	b := StartPos()
	moves := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6"}
	for _, uci := range moves {
		m, err := ParseUCI(&b, uci)
		if err != nil {
			t.Fatalf("ParseUCI(%q): %v", uci, err)
		}
		nb, _ := b.DoMove(m)
		var fromScratch Board
		if err := fromScratch.SetFEN(nb.FEN()); err != nil {
			t.Fatalf("SetFEN(%q): %v", nb.FEN(), err)
		}
		if nb.Key != fromScratch.Key {
			t.Fatalf("after %q: incremental key %x != from-scratch key %x", uci, nb.Key, fromScratch.Key)
		}
		b = nb
	}
}

func TestCastlingMovesRook(t *testing.T) {
	var b Board
	if err := b.SetFEN("8/8/8/8/8/8/6k1/4K2R w K - 0 1"); err != nil {
		t.Fatal(err)
	}
	m, err := ParseUCI(&b, "e1g1")
	if err != nil {
		t.Fatalf("castling not legal: %v", err)
	}
	nb, _ := b.DoMove(m)
	if nb.PieceAt(SquareF1) != MakePiece(White, Rook) {
		t.Errorf("rook did not land on f1: %v", nb.FEN())
	}
	if nb.PieceAt(SquareH1) != NoPiece {
		t.Errorf("rook still on h1: %v", nb.FEN())
	}
}
