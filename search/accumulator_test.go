package search

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/kestrel-engine/kestrel/board"
	"github.com/kestrel-engine/kestrel/eval"
	"github.com/kestrel-engine/kestrel/evalcache"
	"github.com/kestrel-engine/kestrel/tt"
)

// newTestNetworkFile writes a small deterministic weight file (same pattern
// eval_test.go's zeroNetworkWithIdentityPSQT uses in-process) to a temp path
// so these tests can exercise eval.Store.Swap without a real NNUE weights
// file on disk.
func newTestNetworkFile(t *testing.T) string {
	t.Helper()

	psqt := make([]int16, eval.NumFeatures)
	for i := range psqt {
		psqt[i] = int16((i % 7) - 3)
	}
	bias := make([]int16, eval.H)
	weights := make([]int16, eval.NumFeatures*eval.H)
	for i := range weights {
		weights[i] = int16((i % 11) - 5)
	}
	outUs := make([]int16, eval.H)
	outThem := make([]int16, eval.H)
	for i := 0; i < eval.H; i++ {
		outUs[i] = int16((i % 5) - 2)
		outThem[i] = int16((i % 3) - 1)
	}

	var buf bytes.Buffer
	for _, v := range [][]int16{psqt, bias, weights} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := binary.Write(&buf, binary.LittleEndian, int16(7)); err != nil {
		t.Fatal(err)
	}
	for _, v := range [][]int16{outUs, outThem} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}

	path := t.TempDir() + "/net.bin"
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestEngineWithNetwork(t *testing.T) *Engine {
	es := eval.NewStore(nil)
	if err := es.Swap(newTestNetworkFile(t)); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	return NewEngine(tt.New(1), evalcache.New(), es, nil)
}

func TestStepAccumulatorMatchesFullRefresh(t *testing.T) {
	e := newTestEngineWithNetwork(t)
	net := e.evalStore.Current()

	b := board.StartPos()
	e.stack.Reset()
	e.refreshAcc(0, &b)

	m, err := board.ParseUCI(&b, "e2e4")
	if err != nil {
		t.Fatal(err)
	}
	child, st := b.DoMove(m)
	e.stack.push(1, child.Key, m, 0)
	e.stepAccumulator(0, 1, &child, &st)

	var want eval.PerspectiveAccumulator
	net.Refresh(&child, board.White, &want[board.White])
	net.Refresh(&child, board.Black, &want[board.Black])

	if got := *e.stack.accAt(1); got != want {
		t.Errorf("stepAccumulator (pawn push, no king move) diverged from a full refresh")
	}
}

func TestStepAccumulatorRefreshesOnKingBucketCross(t *testing.T) {
	e := newTestEngineWithNetwork(t)
	net := e.evalStore.Current()

	var b board.Board
	// d1 sits in the queenside king-bucket quadrant, e1 in the kingside
	// one: a single king step across that boundary must force a full
	// refresh for White's perspective rather than an incremental replay,
	// since ApplyDelta's feature indices are computed against one fixed
	// king bucket.
	if err := b.SetFEN("4k3/8/8/8/8/8/8/3K4 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	e.stack.Reset()
	e.refreshAcc(0, &b)

	m, err := board.ParseUCI(&b, "d1e1")
	if err != nil {
		t.Fatal(err)
	}
	child, st := b.DoMove(m)
	e.stack.push(1, child.Key, m, 0)
	e.stepAccumulator(0, 1, &child, &st)

	var want eval.PerspectiveAccumulator
	net.Refresh(&child, board.White, &want[board.White])
	net.Refresh(&child, board.Black, &want[board.Black])

	if got := *e.stack.accAt(1); got != want {
		t.Errorf("stepAccumulator across a king-bucket boundary diverged from a full refresh")
	}
}

func TestStepAccumulatorNoopWithoutNetwork(t *testing.T) {
	e := newTestEngine()

	b := board.StartPos()
	e.stack.Reset()
	e.refreshAcc(0, &b)

	m, err := board.ParseUCI(&b, "e2e4")
	if err != nil {
		t.Fatal(err)
	}
	child, st := b.DoMove(m)
	e.stack.push(1, child.Key, m, 0)
	e.stepAccumulator(0, 1, &child, &st)

	var zero eval.PerspectiveAccumulator
	if got := *e.stack.accAt(1); got != zero {
		t.Errorf("stepAccumulator with no network loaded should leave the accumulator zeroed, got %+v", got)
	}
}
