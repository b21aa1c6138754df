package notation

import (
	"testing"

	"github.com/kestrel-engine/kestrel/board"
)

func TestParseEPDPositionOnly(t *testing.T) {
	epd, err := ParseEPD("8/8/8/8/8/8/8/K6k w - -")
	if err != nil {
		t.Fatalf("ParseEPD: %v", err)
	}
	if epd.Position.FEN() != "8/8/8/8/8/8/8/K6k w - - 0 1" {
		t.Errorf("unexpected FEN round-trip: %s", epd.Position.FEN())
	}
}

func TestParseEPDBestMove(t *testing.T) {
	epd, err := ParseEPD(board.StartFEN + " bm e2e4;")
	if err != nil {
		t.Fatalf("ParseEPD: %v", err)
	}
	if len(epd.BestMove) != 1 {
		t.Fatalf("expected one best move, got %d", len(epd.BestMove))
	}
	if epd.BestMove[0].UCI() != "e2e4" {
		t.Errorf("got bm %s, want e2e4", epd.BestMove[0].UCI())
	}
}

func TestParseEPDIdAndComment(t *testing.T) {
	epd, err := ParseEPD(board.StartFEN + ` id "opening 1"; c0 "test comment";`)
	if err != nil {
		t.Fatalf("ParseEPD: %v", err)
	}
	if epd.Id != "opening 1" {
		t.Errorf("got id %q, want %q", epd.Id, "opening 1")
	}
	if epd.Comment["c0"] != "test comment" {
		t.Errorf("got c0 %q, want %q", epd.Comment["c0"], "test comment")
	}
}

func TestParseEPDRejectsShortRecord(t *testing.T) {
	if _, err := ParseEPD("8/8/8/8/8/8/8/K6k"); err == nil {
		t.Fatal("expected an error for a record missing side/castling/en-passant fields")
	}
}

func TestParseEPDRejectsBadMove(t *testing.T) {
	if _, err := ParseEPD(board.StartFEN + " bm z9z9;"); err == nil {
		t.Fatal("expected an error for an unparseable best move")
	}
}
