package search

import (
	"github.com/kestrel-engine/kestrel/board"
	"github.com/kestrel-engine/kestrel/eval"
	"github.com/kestrel-engine/kestrel/tt"
)

// evaluate returns the static evaluation of b, consulting the eval cache
// first per spec.md §4.J's "Static eval: ... else call the evaluator (eval
// cache first)". Uses the accumulator already maintained at ply by
// refreshAcc/stepAccumulator rather than recomputing it from scratch, per
// spec.md §4.F's incremental-accumulator requirement.
func (e *Engine) evaluate(b *board.Board, ply int) int {
	if v, ok := e.evalCache.Probe(b.Key); ok {
		return int(v)
	}
	var v int
	if net := e.evalStore.Current(); net != nil {
		v = net.Evaluate(b.SideToMove, e.stack.accAt(ply))
	} else {
		v = eval.Material(b)
	}
	e.evalCache.Store(b.Key, clampInt16(v))
	return v
}

func clampInt16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// moveValue estimates the material a move can swing the static eval by, for
// quiescence delta pruning: the value of whatever it captures, plus the net
// gain of a promotion.
func moveValue(b *board.Board, m board.Move) int {
	switch m.Type() {
	case board.EnPassant:
		return board.SeeValue[board.Pawn]
	case board.Promotion:
		v := board.SeeValue[m.Promotion()] - board.SeeValue[board.Pawn]
		if captured := b.PieceAt(m.To()); captured != board.NoPiece {
			v += board.SeeValue[captured.Type()]
		}
		return v
	default:
		return board.SeeValue[b.PieceAt(m.To()).Type()]
	}
}

// pvs is the alpha-beta (PVS) search contract of spec.md §4.J: negamax,
// fail-soft, scores returned from the side-to-move's point of view.
// Grounded on easychessanimations-zurichess/engine/engine.go's searchTree,
// extended with every pruning/extension knob spec.md §4.J names.
func (e *Engine) pvs(b board.Board, alpha, beta, depth, ply int, pvNode, cutNode bool) int {
	if e.checkStop() {
		return 0
	}
	if ply > e.selDepth {
		e.selDepth = ply
	}
	if ply >= maxPly-1 {
		return e.evaluate(&b, ply)
	}

	origAlpha := alpha

	// Mate distance pruning.
	alpha = max(alpha, matedScore(ply))
	beta = min(beta, -matedScore(ply)-1)
	if alpha >= beta {
		return alpha
	}

	inCheck := b.Checkers != 0

	if b.HalfMoveClock >= 100 {
		return 0
	}
	if !inCheck && b.IsInsufficientMaterial() {
		return 0
	}
	if e.stack.isRepetition(ply, &b, e.history) {
		return 0
	}

	if depth <= 0 {
		return e.quiescence(b, alpha, beta, ply)
	}

	excluded := e.stack.excludedAt(ply)

	var ttMove board.Move
	entry, ttHit := e.tt.Probe(b.Key, ply)
	if ttHit {
		ttMove = board.Move(entry.Move)
		if !ttMove.IsNone() && !b.IsLegalMove(ttMove) {
			ttHit = false
			ttMove = board.MoveNone
		}
	}
	if ttHit && !pvNode && excluded.IsNone() && int(entry.Depth) >= depth {
		score := int(entry.Score)
		switch entry.Bound {
		case tt.BoundExact:
			return score
		case tt.BoundUpper:
			if score <= alpha {
				return score
			}
		case tt.BoundLower:
			if score >= beta {
				if !ttMove.IsNone() && b.IsQuiet(ttMove) {
					e.mainHist.add(b.PieceAt(ttMove.From()), ttMove.To(), depth*depth)
				}
				return score
			}
		}
	}

	var staticEval int
	if ttHit {
		staticEval = int(entry.Eval)
	} else {
		staticEval = e.evaluate(&b, ply)
	}
	e.stack.setEval(ply, int16(staticEval))

	improving := false
	if !inCheck && ply >= 2 {
		improving = e.stack.evalAt(ply-2) < int16(staticEval)
	}

	// Internal iterative reduction.
	if depth >= iirMinDepth && ttMove.IsNone() {
		depth--
	}

	avoidNull := false

	if !pvNode && !inCheck && excluded.IsNone() {
		if depth <= rfpMaxDepth {
			margin := rfpMargin * depth / (1 + boolToInt(improving))
			if staticEval-margin >= beta && abs(beta) < tt.MateBound {
				return staticEval
			}
		}
		if depth <= razorMaxDepth && staticEval+razorMargin*depth <= alpha {
			q := e.quiescence(b, alpha, alpha+1, ply)
			if q <= alpha {
				return alpha
			}
		}
		if depth >= nmpMinDepth && b.PliesFromNull > 0 && !entry.AvoidNull &&
			b.HasNonPawnMaterial(b.SideToMove) && staticEval >= beta {
			r := nmpBase + depth/nmpDepthDiv + clamp((staticEval-beta)/nmpEvalDiv, 0, 2)
			if r > depth {
				r = depth
			}
			child := b.DoNullMove()
			e.stack.push(ply+1, child.Key, board.MoveNull, 0)
			e.copyAccForward(ply, ply+1)
			score := -e.pvs(child, -beta, -beta+1, depth-r, ply+1, false, !cutNode)
			if score >= beta {
				return beta
			}
			avoidNull = true
		}
	}

	picker := NewMovePicker(&b, ttMove, e.stack.killers(ply), e.counters.get(e.stack.moveAt(ply)), e.followups.get(e.stack.moveAt(max(ply-2, 0))), &e.mainHist)

	bestScore := -infinity
	bestMove := board.MoveNone
	localAlpha := alpha
	movesTried := 0
	var triedQuiets []board.Move

	lmpThreshold := (3 + 2*depth*depth) / (2 - boolToInt(improving))

	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		if m == excluded {
			continue
		}

		givesCheck := b.GivesCheck(m)
		isQuiet := b.IsQuiet(m)
		critical := picker.IsCritical()
		movesTried++

		if !pvNode && !inCheck && !givesCheck && isQuiet && movesTried > lmpThreshold {
			break
		}

		if !inCheck && picker.AtOrAfterBadTactical() && depth <= seeFpDepth {
			threshold := seeFpQuiet * depth
			if !isQuiet {
				threshold = seeFpTactical * depth * depth
			}
			if !b.SeeGE(m, threshold) {
				continue
			}
		}

		extension := 0
		if givesCheck && b.SeeGE(m, 0) {
			extension = 1
		}
		if m == ttMove && excluded.IsNone() && depth >= singularMinDepth && ttHit &&
			int(entry.Depth) >= depth-3 && (entry.Bound == tt.BoundLower || entry.Bound == tt.BoundExact) {
			rbeta := int(entry.Score) - depth
			e.stack.setExcluded(ply, m)
			verScore := e.pvs(b, rbeta-1, rbeta, (depth-1)/2, ply, false, cutNode)
			e.stack.setExcluded(ply, board.MoveNone)
			switch {
			case verScore < rbeta-16:
				extension += 2
			case verScore < rbeta:
				extension += 1
			}
			if int(entry.Score) >= beta {
				extension--
			}
			if int(entry.Score) <= origAlpha {
				extension--
			}
		}
		if extension > 2 {
			extension = 2
		}
		newDepth := depth - 1 + extension

		r := 0
		if depth > 2 && movesTried > 1 && isQuiet {
			r = int(lmrTable[clamp(depth, 0, 63)][clamp(movesTried, 0, 63)])
			if !pvNode {
				r++
			}
			if !improving {
				r++
			}
			if critical {
				r -= 2
			}
			r -= e.mainHist.get(b.PieceAt(m.From()), m.To()) / 8192
			r = clamp(r, 0, newDepth-1)
		}

		child, st := b.DoMove(m)
		e.stack.push(ply+1, child.Key, m, 0)
		e.stepAccumulator(ply, ply+1, &child, &st)

		var score int
		if movesTried == 1 {
			score = -e.pvs(child, -beta, -localAlpha, newDepth, ply+1, pvNode, false)
		} else {
			score = -e.pvs(child, -localAlpha-1, -localAlpha, newDepth-r, ply+1, false, true)
			if r > 0 && score > localAlpha {
				score = -e.pvs(child, -localAlpha-1, -localAlpha, newDepth, ply+1, false, true)
			}
			if pvNode && score > localAlpha && score < beta {
				score = -e.pvs(child, -beta, -localAlpha, newDepth, ply+1, true, false)
			}
		}

		if e.tm.Stopped() {
			return 0
		}

		if isQuiet {
			triedQuiets = append(triedQuiets, m)
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > localAlpha {
				localAlpha = score
				if pvNode {
					e.pv.Put(b.Key, m)
				}
			}
		}
		if localAlpha >= beta {
			break
		}
	}

	if movesTried == 0 {
		if !excluded.IsNone() {
			return alpha
		}
		if inCheck {
			return matedScore(ply)
		}
		return 0
	}

	if bestScore >= beta {
		if b.IsQuiet(bestMove) {
			e.stack.addKiller(ply, bestMove)
			e.counters.set(e.stack.moveAt(ply), bestMove)
			e.followups.set(e.stack.moveAt(max(ply-2, 0)), bestMove)
			e.mainHist.add(b.PieceAt(bestMove.From()), bestMove.To(), depth*depth)
			for _, q := range triedQuiets {
				if q == bestMove {
					continue
				}
				e.mainHist.add(b.PieceAt(q.From()), q.To(), -depth*depth)
			}
		}
	}

	if excluded.IsNone() {
		bound := tt.BoundExact
		if bestScore >= beta {
			bound = tt.BoundLower
		} else if bestScore <= origAlpha {
			bound = tt.BoundUpper
		}
		e.tt.Store(b.Key, tt.Entry{
			Move:      uint16(bestMove),
			Score:     int16(clampScore(bestScore)),
			Eval:      int16(staticEval),
			Depth:     int8(depth),
			Bound:     bound,
			AvoidNull: avoidNull,
		}, ply)
	}

	return bestScore
}

func clampScore(v int) int {
	return clamp(v, -tt.MateValue, tt.MateValue)
}

// quiescence implements spec.md §4.J's quiescence search: stand-pat with
// delta pruning outside check, full evasion search with no stand-pat inside
// check.
func (e *Engine) quiescence(b board.Board, alpha, beta, ply int) int {
	if e.checkStop() {
		return 0
	}
	if ply > e.selDepth {
		e.selDepth = ply
	}
	if ply >= maxPly-1 {
		return e.evaluate(&b, ply)
	}

	inCheck := b.Checkers != 0
	if b.HalfMoveClock >= 100 {
		return 0
	}
	if !inCheck && b.IsInsufficientMaterial() {
		return 0
	}
	if e.stack.isRepetition(ply, &b, e.history) {
		return 0
	}

	if inCheck {
		moves := b.GenerateMoves(board.StageLegal, make([]board.Move, 0, 16))
		if len(moves) == 0 {
			return matedScore(ply)
		}
		best := -infinity
		for _, m := range moves {
			child, st := b.DoMove(m)
			e.stack.push(ply+1, child.Key, m, 0)
			e.stepAccumulator(ply, ply+1, &child, &st)
			score := -e.quiescence(child, -beta, -alpha, ply+1)
			if score > best {
				best = score
			}
			if score > alpha {
				alpha = score
			}
			if alpha >= beta {
				break
			}
		}
		return best
	}

	var ttMove board.Move
	if entry, ok := e.tt.Probe(b.Key, ply); ok {
		if m := board.Move(entry.Move); !m.IsNone() && b.IsLegalMove(m) {
			ttMove = m
		}
	}

	standPat := e.evaluate(&b, ply)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	best := standPat
	picker := NewQuiescenceMovePicker(&b, ttMove)
	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		if standPat+moveValue(&b, m)+deltaMargin <= alpha {
			continue
		}
		child, st := b.DoMove(m)
		e.stack.push(ply+1, child.Key, m, 0)
		e.stepAccumulator(ply, ply+1, &child, &st)
		score := -e.quiescence(child, -beta, -alpha, ply+1)
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return best
}
