package search

import (
	"testing"
	"time"

	"github.com/kestrel-engine/kestrel/board"
	"github.com/kestrel-engine/kestrel/eval"
	"github.com/kestrel-engine/kestrel/evalcache"
	"github.com/kestrel-engine/kestrel/tt"
)

func newTestEngine() *Engine {
	return NewEngine(tt.New(1), evalcache.New(), eval.NewStore(nil), nil)
}

func TestSearchFindsMateInOne(t *testing.T) {
	e := newTestEngine()
	var b board.Board
	// White king on e6 covers d7/e7/f7; Qa1-a8 mates along the back rank.
	if err := b.SetFEN("4k3/8/4K3/8/8/8/8/Q7 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	e.SetPosition(b, nil)
	res := e.Search(Limits{Depth: 4})

	want, err := board.ParseUCI(&b, "a1a8")
	if err != nil {
		t.Fatalf("a1a8 not legal: %v", err)
	}
	if res.BestMove != want {
		t.Errorf("BestMove = %v, want %v (mate in one)", res.BestMove, want)
	}
}

func TestSearchAvoidsHangingTheQueen(t *testing.T) {
	e := newTestEngine()
	var b board.Board
	// Black rook on d3 already attacks the white queen on d1 down the
	// d-file; white to move must not leave both pieces exactly where a
	// free Rxd1 is possible next move.
	if err := b.SetFEN("3k4/8/8/8/8/3r4/8/3QK3 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	e.SetPosition(b, nil)
	res := e.Search(Limits{Depth: 4})

	if res.BestMove.IsNone() {
		t.Fatal("expected a move")
	}
	nb, _ := b.DoMove(res.BestMove)
	queenStillOnD1 := nb.PieceAt(board.SquareD1) == board.MakePiece(board.White, board.Queen)
	rookStillOnD3 := nb.PieceAt(board.SquareD3) == board.MakePiece(board.Black, board.Rook)
	if queenStillOnD1 && rookStillOnD3 {
		t.Errorf("best move %v left the queen hanging to Rxd1", res.BestMove)
	}
}

func TestSearchIsDeterministicGivenFixedDepth(t *testing.T) {
	var b board.Board
	if err := b.SetFEN(board.StartFEN); err != nil {
		t.Fatal(err)
	}

	e1 := newTestEngine()
	e1.SetPosition(b, nil)
	r1 := e1.Search(Limits{Depth: 4})

	e2 := newTestEngine()
	e2.SetPosition(b, nil)
	r2 := e2.Search(Limits{Depth: 4})

	if r1.BestMove != r2.BestMove {
		t.Errorf("non-deterministic best move: %v vs %v", r1.BestMove, r2.BestMove)
	}
}

func TestSearchRespectsMoveTimeLimit(t *testing.T) {
	e := newTestEngine()
	var b board.Board
	if err := b.SetFEN(board.StartFEN); err != nil {
		t.Fatal(err)
	}
	e.SetPosition(b, nil)

	start := time.Now()
	res := e.Search(Limits{MoveTime: 50 * time.Millisecond})
	elapsed := time.Since(start)

	if res.BestMove.IsNone() {
		t.Fatal("expected a move within the time budget")
	}
	if elapsed > 2*time.Second {
		t.Errorf("search ran for %v, want roughly the 50ms budget", elapsed)
	}
}

func TestSearchMultiPVReturnsDistinctMoves(t *testing.T) {
	e := newTestEngine()
	var b board.Board
	if err := b.SetFEN(board.StartFEN); err != nil {
		t.Fatal(err)
	}
	e.SetPosition(b, nil)

	var lines []Info
	e.SetReporter(reporterFunc(func(i Info) { lines = append(lines, i) }))
	e.Search(Limits{Depth: 3, MultiPV: 2})

	byDepth := map[int]map[int]board.Move{}
	for _, ln := range lines {
		if byDepth[ln.Depth] == nil {
			byDepth[ln.Depth] = map[int]board.Move{}
		}
		if len(ln.PV) > 0 {
			byDepth[ln.Depth][ln.MultiPV] = ln.PV[0]
		}
	}
	for depth, slot := range byDepth {
		if len(slot) < 2 {
			continue
		}
		if slot[1] == slot[2] {
			t.Errorf("depth %d: multipv slots 1 and 2 returned the same move %v", depth, slot[1])
		}
	}
}

type reporterFunc func(Info)

func (f reporterFunc) BeginSearch() {}
func (f reporterFunc) EndSearch()   {}
func (f reporterFunc) Info(i Info)  { f(i) }

func TestQuiescenceStandPatBeatsLosingCapture(t *testing.T) {
	e := newTestEngine()
	var b board.Board
	// Quiescence should never recommend a losing capture over standing pat.
	if err := b.SetFEN("4k3/8/2p1p3/3p4/2N5/8/4R3/4K3 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	score := e.quiescence(b, -infinity, infinity, 0)
	standPat := e.evaluate(&b, 0)
	if score < standPat {
		t.Errorf("quiescence score %d fell below stand-pat %d", score, standPat)
	}
}
