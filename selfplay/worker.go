// Package selfplay runs the self-play driver: N worker goroutines each play
// games against the engine's own search and feed finished chains to a
// single writer, grounded on original_source/selfplay.cpp's Session/Queue
// split (§4.L, §5).
package selfplay

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/kestrel-engine/kestrel/board"
	"github.com/kestrel-engine/kestrel/eval"
	"github.com/kestrel-engine/kestrel/evalcache"
	"github.com/kestrel-engine/kestrel/pack"
	"github.com/kestrel-engine/kestrel/search"
	"github.com/kestrel-engine/kestrel/tt"
)

// errEmptySequence mirrors selfplay.cpp's "[WARN] selfplay worker: empty
// sequence???" guard: a session that produced a result with zero recorded
// plies is discarded and retried rather than ever reaching the writer.
var errEmptySequence = errors.New("selfplay: empty move sequence")

const (
	openingPlies         = 2
	openingTemperature   = 0.5
	lowDepthPly          = 2
	lowDepthMinPVs       = 3
	lowDepthStopScore    = 500
	lowDepthMaxPVDiff    = 50
	mainSamplingMaxDiff  = 100
	drawScoreThreshold   = 10
	winScoreThreshold    = 10000
	drawPlyGate          = 50
	drawConsecutivePlies = 8
)

// pvRecord is one root move/score pair reported for a completed
// iterative-deepening depth at a given MultiPV index.
type pvRecord struct {
	move  board.Move
	score int
}

// recordingReporter captures the most recent Info report for each MultiPV
// index instead of printing anything, letting Worker sample across PVs the
// way original_source/selfplay.cpp's Session reads search_.get_pv_start(i)
// after iterative_deepening returns.
type recordingReporter struct {
	pvs map[int]pvRecord
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{pvs: make(map[int]pvRecord, 8)}
}

func (r *recordingReporter) BeginSearch() {
	for k := range r.pvs {
		delete(r.pvs, k)
	}
}
func (r *recordingReporter) EndSearch() {}

func (r *recordingReporter) Info(info search.Info) {
	var m board.Move
	if len(info.PV) > 0 {
		m = info.PV[0]
	}
	r.pvs[info.MultiPV] = pvRecord{move: m, score: info.Score}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// choosePV samples uniformly among the 1..n ranked PVs whose score is
// within maxDiff of the best (index 1), grounded on selfplay.cpp's
// choose_pv.
func choosePV(rng *rand.Rand, pvs map[int]pvRecord, n, maxDiff int) int {
	best := pvs[1].score
	candidates := make([]int, 0, n)
	candidates = append(candidates, 1)
	for i := 2; i <= n; i++ {
		if absInt(pvs[i].score-best) <= maxDiff {
			candidates = append(candidates, i)
		}
	}
	return candidates[rng.Intn(len(candidates))]
}

// weightedChoice samples an index from weights using a discrete
// distribution, grounded on selfplay.cpp's use of
// std::discrete_distribution in make_random_moves.
func weightedChoice(rng *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return rng.Intn(len(weights))
	}
	x := rng.Float64() * total
	for i, w := range weights {
		x -= w
		if x < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// judge tracks the adjudication state for one game, grounded on
// selfplay.cpp's Judge struct. result is -1 while the game continues, else
// a pack.GameOutcome value.
type judge struct {
	drawScorePlies int
	result         int
}

func newJudge() *judge { return &judge{result: -1} }

// adjudicate updates j.result in place from the position b (before move m
// is played), the move about to be played (MoveNone if none is legal), the
// reported score and the current ply, mirroring selfplay.cpp's
// Judge::adjudicate exactly including its draw-score-plies gating on
// ply >= 50.
func (j *judge) adjudicate(b *board.Board, m board.Move, score, ply int) {
	stm := b.SideToMove

	if absInt(score) > drawScoreThreshold {
		j.drawScorePlies = 0
	} else if ply >= drawPlyGate {
		j.drawScorePlies++
	}

	if m.IsNone() {
		if b.Checkers != 0 {
			j.result = int(stm.Opposite())
		} else {
			j.result = int(pack.Draw)
		}
		return
	}

	if absInt(score) > winScoreThreshold {
		if score > 0 {
			j.result = int(stm)
		} else {
			j.result = int(stm.Opposite())
		}
		return
	}

	if b.HalfMoveClock >= 100 ||
		(b.Checkers == 0 && b.IsInsufficientMaterial()) ||
		j.drawScorePlies >= drawConsecutivePlies ||
		ply+1 >= pack.MaxPlies {
		j.result = int(pack.Draw)
	}
}

func (j *judge) outcome() pack.GameOutcome { return pack.GameOutcome(j.result) }

// Worker plays games one after another on its own Engine, board and rng,
// grounded on selfplay.cpp's Session (one OS thread per Session, each
// owning its own Search/Board/Stack, per spec.md §5).
type Worker struct {
	engine    *search.Engine
	evalStore *eval.Store
	reporter  *recordingReporter
	rng       *rand.Rand

	minDepth   int
	moveTime   time.Duration
	numPVs     int
	maxLDMoves int
}

// newWorker builds a Worker sharing table and evalStore with its siblings
// (the TT is the only state shared across search threads, per spec.md §5)
// but owning a private evalcache.Cache, grounded on that same section's
// "Eval cache is per-search-worker" rule. seed should differ per worker.
func newWorker(seed int64, cfg Config, table *tt.Table, es *eval.Store, log *zap.Logger) *Worker {
	ec := evalcache.New()
	engine := search.NewEngine(table, ec, es, log)
	reporter := newRecordingReporter()
	engine.SetReporter(reporter)
	return &Worker{
		engine:     engine,
		evalStore:  es,
		reporter:   reporter,
		rng:        rand.New(rand.NewSource(seed)),
		minDepth:   cfg.MinDepth,
		moveTime:   cfg.MoveTime,
		numPVs:     cfg.MultiPV,
		maxLDMoves: cfg.MaxLDMoves,
	}
}

// makeRandomMoves plays n weighted-random moves from b, weighting each
// candidate move by (-eval(after) - min + 1) ^ (1/temp), grounded on
// selfplay.cpp's make_random_moves (its assign_weights lambda).
func (w *Worker) makeRandomMoves(b board.Board, n int, temp float64) (board.Board, int) {
	cur := b
	ply := 0
	for i := 0; i < n; i++ {
		moves := cur.GenerateMoves(board.StageLegal, nil)
		if len(moves) == 0 {
			break
		}
		weights := make([]float64, len(moves))
		minWeight := 1.0
		for j, m := range moves {
			nb, _ := cur.DoMove(m)
			weights[j] = -float64(w.evalStore.Evaluate(&nb))
			if weights[j] < minWeight {
				minWeight = weights[j]
			}
		}
		if minWeight <= 0 {
			for j := range weights {
				weights[j] -= minWeight - 1
			}
		}
		for j := range weights {
			weights[j] = math.Pow(weights[j], 1/temp)
		}
		idx := weightedChoice(w.rng, weights)
		cur, _ = cur.DoMove(moves[idx])
		ply++
	}
	return cur, ply
}

// setupBoard plays the opening (2 weighted-random moves) followed by up to
// a random number of low-depth multi-PV moves, grounded on selfplay.cpp's
// Session::setup_board.
func (w *Worker) setupBoard() (board.Board, int) {
	cur, ply := w.makeRandomMoves(board.StartPos(), openingPlies, openingTemperature)

	nLD := w.rng.Intn(w.maxLDMoves + 1)
	ldPVs := w.numPVs
	if ldPVs < lowDepthMinPVs {
		ldPVs = lowDepthMinPVs
	}
	limits := search.Limits{Depth: lowDepthPly, MinDepth: lowDepthPly, MultiPV: ldPVs}

	for i := 0; i < nLD; i++ {
		w.engine.SetPosition(cur, nil)
		w.engine.Search(limits)

		n := len(w.reporter.pvs)
		if n == 0 {
			break
		}
		if absInt(w.reporter.pvs[1].score) > lowDepthStopScore {
			break
		}
		idx := choosePV(w.rng, w.reporter.pvs, n, lowDepthMaxPVDiff)
		cur, _ = cur.DoMove(w.reporter.pvs[idx].move)
		ply++
	}
	return cur, ply
}

// playOneGame runs one full game from a freshly sampled opening through
// adjudication and returns the finished chain plus the XOR of every key
// visited, grounded on selfplay.cpp's Session::thread_routine.
func (w *Worker) playOneGame() (pack.Chain, uint64, error) {
	cur, ply := w.setupBoard()

	start := pack.PackBoard(&cur)
	hash := cur.Key
	history := []uint64{cur.Key}

	jg := newJudge()
	limits := search.Limits{MinDepth: w.minDepth, MoveTime: w.moveTime, MultiPV: w.numPVs}

	var moves []pack.MoveScore
	for ; jg.result < 0; ply++ {
		w.engine.SetPosition(cur, history)
		w.engine.Search(limits)

		n := len(w.reporter.pvs)
		if n == 0 {
			jg.adjudicate(&cur, board.MoveNone, 0, ply)
			break
		}

		score := w.reporter.pvs[1].score
		idx := choosePV(w.rng, w.reporter.pvs, n, mainSamplingMaxDiff)
		move := w.reporter.pvs[idx].move

		jg.adjudicate(&cur, move, score, ply)
		moves = append(moves, pack.MoveScore{Move: move, Score: int16(score)})

		nb, _ := cur.DoMove(move)
		hash ^= nb.Key
		history = append(history, nb.Key)
		cur = nb
	}

	if len(moves) == 0 {
		return pack.Chain{}, 0, errEmptySequence
	}

	return pack.Chain{Start: start, Result: jg.outcome(), Moves: moves}, hash, nil
}
