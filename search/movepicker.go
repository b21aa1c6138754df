package search

import (
	"sort"

	"github.com/kestrel-engine/kestrel/board"
)

// pickerStage is the state of the move-picker state machine, grounded on
// zurichess's engine/move_ordering.go msHash/msGenViolent/... sequence but
// extended to spec.md §4.E's full seven-stage order: TT move, good tacticals
// (MVV/LVA, filtered by SEE), the two killers, the counter move, the
// follow-up move, the buffered bad tacticals, and finally quiets ranked by
// centralization plus history.
type pickerStage int

const (
	psTT pickerStage = iota
	psGenTactical
	psGoodTactical
	psKiller1
	psKiller2
	psCounter
	psFollowup
	psBadTactical
	psGenQuiet
	psQuiet
	psDone
)

type scoredMove struct {
	m     board.Move
	score int
}

// MovePicker yields moves from one position in the stage order spec.md
// §4.E specifies, validating hash/killer/counter/follow-up candidates
// against the current position before returning them.
type MovePicker struct {
	b *board.Board

	ttMove            board.Move
	killer1, killer2  board.Move
	counter, followup board.Move
	hist              *historyTable
	qsearch           bool // quiescence mode: TT + good tacticals only

	stage pickerStage

	tacticals []scoredMove
	tIdx      int
	bad       []board.Move
	bIdx      int
	quiets    []scoredMove
	qIdx      int

	lastStage pickerStage // stage that produced the most recently returned move
}

// NewMovePicker builds a picker for a normal (non-quiescence) search node.
func NewMovePicker(b *board.Board, ttMove board.Move, killers [2]board.Move, counter, followup board.Move, hist *historyTable) *MovePicker {
	return &MovePicker{
		b: b, ttMove: ttMove,
		killer1: killers[0], killer2: killers[1],
		counter: counter, followup: followup,
		hist: hist,
	}
}

// NewQuiescenceMovePicker builds a picker restricted to the TT move and good
// tacticals, per spec.md §4.J's quiescence "staged picker in q-mode emits
// only TT + good tacticals".
func NewQuiescenceMovePicker(b *board.Board, ttMove board.Move) *MovePicker {
	return &MovePicker{b: b, ttMove: ttMove, qsearch: true}
}

func (p *MovePicker) valid(m board.Move) bool {
	return !m.IsNone() && !m.IsNull() && p.b.IsLegalMove(m)
}

// Next returns the next move to try, or (MoveNone, false) when exhausted.
func (p *MovePicker) Next() (board.Move, bool) {
	for {
		switch p.stage {
		case psTT:
			p.stage = psGenTactical
			if p.valid(p.ttMove) {
				p.lastStage = psTT
				return p.ttMove, true
			}

		case psGenTactical:
			p.stage = psGoodTactical
			cand := p.b.GenerateMoves(board.StageTactical, make([]board.Move, 0, 32))
			p.tacticals = p.tacticals[:0]
			for _, m := range cand {
				if m == p.ttMove {
					continue
				}
				p.tacticals = append(p.tacticals, scoredMove{m, mvvlva(p.b, m)})
			}
			sort.SliceStable(p.tacticals, func(i, j int) bool { return p.tacticals[i].score > p.tacticals[j].score })
			p.tIdx = 0

		case psGoodTactical:
			for p.tIdx < len(p.tacticals) {
				sm := p.tacticals[p.tIdx]
				p.tIdx++
				if p.b.SeeGE(sm.m, 0) {
					p.lastStage = psGoodTactical
					return sm.m, true
				}
				p.bad = append(p.bad, sm.m)
			}
			if p.qsearch {
				p.stage = psDone
			} else {
				p.stage = psKiller1
			}

		case psKiller1:
			p.stage = psKiller2
			if p.killer1 != p.ttMove && p.valid(p.killer1) {
				p.lastStage = psKiller1
				return p.killer1, true
			}

		case psKiller2:
			p.stage = psCounter
			if p.killer2 != p.ttMove && p.killer2 != p.killer1 && p.valid(p.killer2) {
				p.lastStage = psKiller2
				return p.killer2, true
			}

		case psCounter:
			p.stage = psFollowup
			if p.counter != p.ttMove && p.counter != p.killer1 && p.counter != p.killer2 && p.valid(p.counter) {
				p.lastStage = psCounter
				return p.counter, true
			}

		case psFollowup:
			p.stage = psBadTactical
			if p.followup != p.ttMove && p.followup != p.killer1 && p.followup != p.killer2 &&
				p.followup != p.counter && p.valid(p.followup) {
				p.lastStage = psFollowup
				return p.followup, true
			}

		case psBadTactical:
			for p.bIdx < len(p.bad) {
				m := p.bad[p.bIdx]
				p.bIdx++
				p.lastStage = psBadTactical
				return m, true
			}
			p.stage = psGenQuiet

		case psGenQuiet:
			p.stage = psQuiet
			cand := p.b.GenerateMoves(board.StageNonTactical, make([]board.Move, 0, 48))
			p.quiets = p.quiets[:0]
			for _, m := range cand {
				if m == p.ttMove {
					continue
				}
				piece := p.b.PieceAt(m.From())
				score := centerWeight[piece.Type()]*(centerTable[m.To()]-centerTable[m.From()]) + p.hist.get(piece, m.To())
				p.quiets = append(p.quiets, scoredMove{m, score})
			}
			sort.SliceStable(p.quiets, func(i, j int) bool { return p.quiets[i].score > p.quiets[j].score })
			p.qIdx = 0

		case psQuiet:
			for p.qIdx < len(p.quiets) {
				m := p.quiets[p.qIdx].m
				p.qIdx++
				if m == p.killer1 || m == p.killer2 || m == p.counter || m == p.followup {
					continue
				}
				p.lastStage = psQuiet
				return m, true
			}
			p.stage = psDone

		case psDone:
			return board.MoveNone, false
		}
	}
}

// IsCritical reports whether the most recently returned move came from the
// TT or killer/counter/follow-up stages — the stages spec.md §4.J exempts
// from LMP, SEE pruning and LMR.
func (p *MovePicker) IsCritical() bool {
	switch p.lastStage {
	case psTT, psKiller1, psKiller2, psCounter, psFollowup:
		return true
	}
	return false
}

// AtOrAfterBadTactical reports whether the most recently returned move came
// from the bad-tactical buffer or the quiet stage, the point spec.md §4.J's
// SEE-pruning rule ("at/after BAD_TACTICAL stage") fires from.
func (p *MovePicker) AtOrAfterBadTactical() bool {
	return p.lastStage == psBadTactical || p.lastStage == psQuiet
}
