package search

import (
	"time"

	"github.com/kestrel-engine/kestrel/board"
	"github.com/kestrel-engine/kestrel/eval"
	"github.com/kestrel-engine/kestrel/evalcache"
	"github.com/kestrel-engine/kestrel/tt"

	"go.uber.org/zap"
)

const infinity = tt.MateValue + 1

// Info is one progress report, corresponding to one line of a UCI `info`
// command.
type Info struct {
	Depth    int
	SelDepth int
	Nodes    uint64
	Score    int
	MultiPV  int
	PV       []board.Move
}

// Reporter receives progress reports during iterative deepening, grounded on
// easychessanimations-zurichess/engine/engine.go's Logger interface.
type Reporter interface {
	BeginSearch()
	EndSearch()
	Info(Info)
}

// NullReporter discards every report.
type NullReporter struct{}

func (NullReporter) BeginSearch() {}
func (NullReporter) EndSearch()   {}
func (NullReporter) Info(Info)    {}

// Result is the outcome of a completed search.
type Result struct {
	BestMove Move
	Ponder   Move
}

// Move is a re-export of board.Move for callers that only import search.
type Move = board.Move

// Engine runs iterative-deepening PVS search over a single position,
// grounded on easychessanimations-zurichess/engine/engine.go's Engine/Play
// shape, extended with every knob spec.md §4.J names.
type Engine struct {
	tt        *tt.Table
	evalCache *evalcache.Cache
	evalStore *eval.Store
	log       *zap.Logger
	reporter  Reporter

	root    board.Board
	history []uint64 // keys played before this search started, oldest first

	stack     *Stack
	pv        *PVTable
	mainHist  historyTable
	counters  counterTable
	followups followupTable

	limits       Limits
	tm           *TimeManager
	moveOverhead time.Duration
	aspMinDepth  int
	aspInitDelta int

	nodes          uint64
	nextCheckpoint uint64
	selDepth       int
	rootPly        int
}

// NewEngine wires the shared tables a UCI session keeps alive across moves.
func NewEngine(table *tt.Table, ec *evalcache.Cache, es *eval.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		tt: table, evalCache: ec, evalStore: es, log: log,
		reporter:     NullReporter{},
		stack:        NewStack(),
		pv:           NewPVTable(),
		moveOverhead: 10 * time.Millisecond,
		aspMinDepth:  defaultAspMinDepth,
		aspInitDelta: defaultAspInitDelta,
	}
}

// SetReporter installs the Reporter used to publish Info during Search.
func (e *Engine) SetReporter(r Reporter) {
	if r == nil {
		r = NullReporter{}
	}
	e.reporter = r
}

// SetMoveOverhead sets the safety margin subtracted from every computed time
// budget, the UCI `MoveOverhead` option spec.md §6 lists.
func (e *Engine) SetMoveOverhead(d time.Duration) { e.moveOverhead = d }

// SetAspirationParams overrides the depth at which aspiration windows kick
// in and their initial half-width, the UCI `aspmindepth`/`aspdelta`
// options spec.md §6 lists.
func (e *Engine) SetAspirationParams(minDepth, initDelta int) {
	e.aspMinDepth = minDepth
	e.aspInitDelta = initDelta
}

// SetPosition sets the position to search from and the game-history keys
// (oldest first) needed for spec.md §4.I's repetition rule.
func (e *Engine) SetPosition(b board.Board, history []uint64) {
	e.root = b
	e.history = history
}

// SetLMRCoeff rebuilds the shared LMR table with a new k, the UCI `lmrcoeff`
// option spec.md §6 lists.
func SetLMRCoeff(k float64) { buildLMRTable(k) }

// checkStop counts a visited node and, every checkpointNodes nodes, polls
// the time manager, per spec.md §4.J's "checks the clock every ~2048 nodes".
func (e *Engine) checkStop() bool {
	e.nodes++
	if e.nodes >= e.nextCheckpoint {
		e.nextCheckpoint = e.nodes + checkpointNodes
	}
	return e.tm.Stopped()
}

// Stop requests a hard abort of any in-flight search.
func (e *Engine) Stop() {
	if e.tm != nil {
		e.tm.Stop()
	}
}

// Nodes returns the number of nodes visited by the most recent Search call.
func (e *Engine) Nodes() uint64 { return e.nodes }

// Search runs iterative deepening from the position set by SetPosition and
// returns the best move found plus the TT's suggested ponder reply, per
// spec.md §4.J's iterative-deepening contract.
func (e *Engine) Search(limits Limits) Result {
	e.limits = limits
	e.nodes = 0
	e.nextCheckpoint = checkpointNodes
	e.selDepth = 0
	e.stack.Reset()
	e.rootPly = 0

	stm := int(e.root.SideToMove)
	e.tm = NewTimeManager(limits, stm, time.Now(), e.moveOverhead)
	e.tt.NewSearch()

	multiPV := limits.MultiPV
	if multiPV < 1 {
		multiPV = 1
	}
	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > 127 {
		maxDepth = 127
	}
	minDepth := limits.MinDepth
	if minDepth < 1 {
		minDepth = 1
	}

	e.reporter.BeginSearch()
	defer e.reporter.EndSearch()

	root := NewRootPicker(&e.root)
	if root.Len() == 0 {
		return Result{}
	}
	e.stack.push(0, e.root.Key, board.MoveNone, 0)
	e.refreshAcc(0, &e.root)

	type pvLine struct {
		move  board.Move
		score int
	}
	lines := make([]pvLine, 0, multiPV)
	scores := make([]int, multiPV)

	var best board.Move
	for d := 1; d <= maxDepth; d++ {
		if e.tm.Stopped() {
			break
		}
		iterStart := time.Now()
		root.ResetExclusions()
		lines = lines[:0]

		pvCount := multiPV
		if pvCount > root.Len() {
			pvCount = root.Len()
		}
		var lastScore int
		for i := 0; i < pvCount; i++ {
			if e.tm.Stopped() {
				break
			}
			estimate := 0
			if d > 1 && i < len(scores) {
				estimate = scores[i]
			}
			score, move := e.searchRoot(root, d, estimate)
			if move.IsNone() {
				break
			}
			lastScore = score
			if i < len(scores) {
				scores[i] = score
			}
			lines = append(lines, pvLine{move: move, score: score})
			root.Exclude(move)
			if i == 0 {
				root.PromoteToFront(move)
				best = move
			}
			pvMoves := e.pv.Line(e.root, 64)
			e.reporter.Info(Info{Depth: d, SelDepth: e.selDepth, Nodes: e.nodes, Score: score, MultiPV: i + 1, PV: pvMoves})
		}

		if !limits.Infinite && limits.MoveTime == 0 && d >= minDepth {
			elapsed := time.Since(iterStart)
			remaining := e.tm.Remaining()
			if remaining <= elapsed {
				break
			}
			if multiPV == 1 && abs(lastScore) >= tt.MateValue-d {
				break
			}
		}
	}

	result := Result{BestMove: best}
	if entry, ok := e.tt.Probe(afterKey(e.root, best), 1); ok {
		result.Ponder = board.Move(entry.Move)
	}
	return result
}

// afterKey returns the Zobrist key reached after playing m against b, or 0
// if m is empty — used only to look up a ponder suggestion.
func afterKey(b board.Board, m board.Move) uint64 {
	if m.IsNone() {
		return 0
	}
	nb, _ := b.DoMove(m)
	return nb.Key
}

// searchRoot runs one aspiration-window search at depth d from the root,
// skipping any move already excluded for this multi-PV slot, and returns
// the best score and move found.
func (e *Engine) searchRoot(root *RootPicker, d int, estimate int) (int, board.Move) {
	delta := float64(e.aspInitDelta)
	alpha, beta := -infinity, infinity
	if d >= e.aspMinDepth {
		alpha = max(estimate-int(delta), -infinity)
		beta = min(estimate+int(delta), infinity)
	}

	for {
		score, move := e.rootOnce(root, alpha, beta, d)
		if e.tm.Stopped() {
			return score, move
		}
		if score <= alpha {
			beta = (alpha + beta) / 2
			alpha = max(alpha-int(delta), -infinity)
			if abs(alpha) >= aspMateClampBound {
				alpha = -infinity
			}
			delta *= aspirationGrowth
			continue
		}
		if score >= beta {
			beta = min(beta+int(delta), infinity)
			if abs(beta) >= aspMateClampBound {
				beta = infinity
			}
			delta *= aspirationGrowth
			continue
		}
		return score, move
	}
}

// rootOnce performs a single pass over root's active moves at a fixed
// (alpha, beta) window, returning the best score/move pair.
func (e *Engine) rootOnce(root *RootPicker, alpha, beta, depth int) (int, board.Move) {
	bestScore := -infinity
	var bestMove board.Move
	localAlpha := alpha
	first := true

	for i := 0; i < root.Len(); i++ {
		m := root.Move(i)
		if root.IsExcluded(m) {
			continue
		}
		child, st := e.root.DoMove(m)
		e.stack.push(1, child.Key, m, 0)
		e.stepAccumulator(0, 1, &child, &st)

		var score int
		if first {
			score = -e.pvs(child, -beta, -localAlpha, depth-1, 1, true, false)
			first = false
		} else {
			score = -e.pvs(child, -localAlpha-1, -localAlpha, depth-1, 1, false, false)
			if score > localAlpha && score < beta {
				score = -e.pvs(child, -beta, -localAlpha, depth-1, 1, true, false)
			}
		}

		if e.tm.Stopped() {
			return bestScore, bestMove
		}
		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > localAlpha {
				localAlpha = score
				e.pv.Put(e.root.Key, m)
			}
		}
		if localAlpha >= beta {
			break
		}
	}
	return bestScore, bestMove
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
