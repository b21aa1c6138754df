package board

// Stage selects which subset of legal moves GenerateMoves appends, per
// spec §4.D's staged generator (TACTICAL first for move-ordering cheapness,
// then NON_TACTICAL, or LEGAL for the union used by perft and the root).
type Stage int

const (
	StageTactical Stage = iota
	StageNonTactical
	StageLegal
)

// GenerateMoves appends all legal moves for the given stage to moves and
// returns the extended slice. Restricted to evasions when in check,
// restricted to a pinned piece's own pin ray when pinned, grounded on
// easychessanimations-zurichess/engine/moves.go generalized to produce
// strictly legal moves directly instead of pseudo-legal-then-filter.
func (b *Board) GenerateMoves(stage Stage, moves []Move) []Move {
	us := b.SideToMove
	ksq := b.KingSquare(us)
	occ := b.Occupied()

	if b.Checkers != 0 {
		moves = b.genKingMoves(stage, moves, ksq)
		if b.Checkers&(b.Checkers-1) != 0 {
			return moves // double check: only king moves are legal
		}
		checkerSq := b.Checkers.AsSquare()
		target := b.Checkers | Between(ksq, checkerSq)
		moves = b.genPieceMoves(stage, moves, us, occ, target, ksq)
		return moves
	}

	moves = b.genKingMoves(stage, moves, ksq)
	moves = b.genPieceMoves(stage, moves, us, occ, BbAll, ksq)
	if stage != StageTactical {
		moves = b.genCastling(moves, us, occ)
	}
	return moves
}

func (b *Board) genKingMoves(stage Stage, moves []Move, ksq Square) []Move {
	us := b.SideToMove
	targets := KingAttacks(ksq) &^ b.ByColor[us]
	targets = filterStage(stage, targets, b.ByColor[us.Opposite()])
	for t := targets; t != 0; {
		to := t.Pop()
		if b.attackersToIgnoring(to, ksq.Bitboard())&b.ByColor[us.Opposite()] != 0 {
			continue
		}
		moves = append(moves, NewMove(Normal, ksq, to, NoPieceType))
	}
	return moves
}

// genPieceMoves generates legal moves for every non-king piece, restricted
// to target (capture-or-block squares while in check, BbAll otherwise) and
// each pinned piece further restricted to its own pin line.
func (b *Board) genPieceMoves(stage Stage, moves []Move, us Color, occ, target Bitboard, ksq Square) []Move {
	them := us.Opposite()
	pinned := b.Blockers[us] & b.ByColor[us]

	for pt := Knight; pt <= Queen; pt++ {
		for bb := b.ByPiece(us, pt) &^ pinned; bb != 0; {
			from := bb.Pop()
			att := pieceAttacks(pt, from, occ) &^ b.ByColor[us] & target
			att = filterStage(stage, att, b.ByColor[them])
			moves = appendSimple(moves, from, att)
		}
		for bb := b.ByPiece(us, pt) & pinned; bb != 0; {
			from := bb.Pop()
			att := pieceAttacks(pt, from, occ) &^ b.ByColor[us] & target & Line(ksq, from)
			att = filterStage(stage, att, b.ByColor[them])
			moves = appendSimple(moves, from, att)
		}
	}

	moves = b.genPawnMoves(stage, moves, us, occ, target, ksq, pinned)
	return moves
}

func pieceAttacks(pt PieceType, from Square, occ Bitboard) Bitboard {
	switch pt {
	case Knight:
		return KnightAttacks(from)
	case Bishop:
		return BishopAttacks(from, occ)
	case Rook:
		return RookAttacks(from, occ)
	case Queen:
		return QueenAttacks(from, occ)
	}
	return BbEmpty
}

func appendSimple(moves []Move, from Square, targets Bitboard) []Move {
	for t := targets; t != 0; {
		to := t.Pop()
		moves = append(moves, NewMove(Normal, from, to, NoPieceType))
	}
	return moves
}

// filterStage trims a target set to what the requested stage wants:
// tactical keeps only captures, non-tactical drops them, legal keeps all.
func filterStage(stage Stage, targets, enemyOcc Bitboard) Bitboard {
	switch stage {
	case StageTactical:
		return targets & enemyOcc
	case StageNonTactical:
		return targets &^ enemyOcc
	default:
		return targets
	}
}

func (b *Board) genPawnMoves(stage Stage, moves []Move, us Color, occ, target Bitboard, ksq Square, pinned Bitboard) []Move {
	them := us.Opposite()
	pawns := b.ByPiece(us, Pawn)
	forward := pawnForward(us)
	promoRank := RankBb(7)
	if us == Black {
		promoRank = RankBb(0)
	}

	for bb := pawns; bb != 0; {
		from := bb.Pop()
		isPinned := pinned.Has(from)
		pinLine := Bitboard(BbAll)
		if isPinned {
			pinLine = Line(ksq, from)
		}

		// Captures, including promotions-by-capture.
		caps := PawnAttacks(us, from) & b.ByColor[them] & target & pinLine
		if stage != StageNonTactical {
			for c := caps; c != 0; {
				to := c.Pop()
				if to.Bitboard()&promoRank != 0 {
					moves = appendPromotions(moves, from, to)
				} else {
					moves = append(moves, NewMove(Normal, from, to, NoPieceType))
				}
			}
		}

		// Single/double pushes.
		if stage != StageTactical {
			one := from.Relative(forward, 0)
			if !occ.Has(one) {
				oneBb := one.Bitboard() & target & pinLine
				if oneBb != 0 {
					if oneBb&promoRank != 0 {
						moves = appendPromotions(moves, from, one)
					} else {
						moves = append(moves, NewMove(Normal, from, one, NoPieceType))
					}
				}
				startRank := RankBb(1)
				if us == Black {
					startRank = RankBb(6)
				}
				if from.Bitboard()&startRank != 0 {
					two := from.Relative(2*forward, 0)
					if !occ.Has(two) {
						twoBb := two.Bitboard() & target & pinLine
						if twoBb != 0 {
							moves = append(moves, NewMove(Normal, from, two, NoPieceType))
						}
					}
				}
			}
		} else {
			// Promotion pushes count as tactical even without a capture.
			one := from.Relative(forward, 0)
			if !occ.Has(one) && one.Bitboard()&promoRank != 0 {
				if (one.Bitboard() & target & pinLine) != 0 {
					moves = appendPromotions(moves, from, one)
				}
			}
		}
	}

	if stage != StageNonTactical && b.EnPassant != SquareNone {
		moves = b.genEnPassant(moves, us, target)
	}
	return moves
}

func appendPromotions(moves []Move, from, to Square) []Move {
	moves = append(moves, NewMove(Promotion, from, to, Queen))
	moves = append(moves, NewMove(Promotion, from, to, Rook))
	moves = append(moves, NewMove(Promotion, from, to, Bishop))
	moves = append(moves, NewMove(Promotion, from, to, Knight))
	return moves
}

// genEnPassant handles the capture specially: it can expose a discovered
// check along the rank when both the capturing and captured pawn leave it
// (the classic a5xb6 e.p. pinned-pair case), so legality is checked by
// simulating the resulting occupancy rather than via the pin bitboards.
func (b *Board) genEnPassant(moves []Move, us Color, target Bitboard) []Move {
	to := b.EnPassant
	capSq := to.Relative(-pawnForward(us), 0)
	// While in check, en passant only resolves a check given by the pawn
	// being captured (pawn checks never block); target is BbAll otherwise.
	if target != BbAll && target&capSq.Bitboard() == 0 {
		return moves
	}
	candidates := PawnAttacks(us.Opposite(), to) & b.ByPiece(us, Pawn)
	ksq := b.KingSquare(us)
	for c := candidates; c != 0; {
		from := c.Pop()
		occAfter := b.Occupied()
		occAfter &^= from.Bitboard()
		occAfter &^= capSq.Bitboard()
		occAfter |= to.Bitboard()
		if b.epLeavesKingSafe(ksq, us, occAfter) {
			moves = append(moves, NewMove(EnPassant, from, to, NoPieceType))
		}
	}
	return moves
}

func (b *Board) epLeavesKingSafe(ksq Square, us Color, occAfter Bitboard) bool {
	them := us.Opposite()
	rooks := b.ByColor[them] & (b.ByPieceType[Rook] | b.ByPieceType[Queen])
	if rooks != 0 && RookAttacks(ksq, occAfter)&rooks != 0 {
		return false
	}
	bishops := b.ByColor[them] & (b.ByPieceType[Bishop] | b.ByPieceType[Queen])
	if bishops != 0 && BishopAttacks(ksq, occAfter)&bishops != 0 {
		return false
	}
	return true
}

// genCastling appends legal castling moves: rights must hold, the path
// between king and rook must be empty, and every square the king crosses
// (including its origin and destination) must be unattacked.
func (b *Board) genCastling(moves []Move, us Color, occ Bitboard) []Move {
	if b.Checkers != 0 {
		return moves
	}
	home := us.HomeRank()
	ksq := RankFile(home, 4)
	if b.KingSquare(us) != ksq {
		return moves
	}
	them := us.Opposite()

	if b.Castling&kingSideRight(us) != 0 {
		path := RankFile(home, 5).Bitboard() | RankFile(home, 6).Bitboard()
		if occ&path == 0 && b.PieceAt(RankFile(home, 7)) == MakePiece(us, Rook) {
			if !b.IsSquareAttacked(ksq, them) &&
				!b.IsSquareAttacked(RankFile(home, 5), them) &&
				!b.IsSquareAttacked(RankFile(home, 6), them) {
				moves = append(moves, NewMove(Castling, ksq, RankFile(home, 6), NoPieceType))
			}
		}
	}
	if b.Castling&queenSideRight(us) != 0 {
		path := RankFile(home, 1).Bitboard() | RankFile(home, 2).Bitboard() | RankFile(home, 3).Bitboard()
		if occ&path == 0 && b.PieceAt(RankFile(home, 0)) == MakePiece(us, Rook) {
			if !b.IsSquareAttacked(ksq, them) &&
				!b.IsSquareAttacked(RankFile(home, 3), them) &&
				!b.IsSquareAttacked(RankFile(home, 2), them) {
				moves = append(moves, NewMove(Castling, ksq, RankFile(home, 2), NoPieceType))
			}
		}
	}
	return moves
}
