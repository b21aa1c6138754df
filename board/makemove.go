package board

// lostCastleRights maps a square to the castling bits forfeited when a
// piece leaves or arrives there (king start squares clear both rights for
// that side, rook start squares clear the matching single right), grounded
// on easychessanimations-zurichess/engine/position.go's doMove.
var lostCastleRights [64]CastlingRights

func init() {
	lostCastleRights[SquareE1] = WhiteOO | WhiteOOO
	lostCastleRights[SquareA1] = WhiteOOO
	lostCastleRights[SquareH1] = WhiteOO
	lostCastleRights[SquareE8] = BlackOO | BlackOOO
	lostCastleRights[SquareA8] = BlackOOO
	lostCastleRights[SquareH8] = BlackOO
}

// DoMove applies m to a copy of b and returns the resulting Board plus the
// StateInfo needed to incrementally update an NNUE accumulator. b itself is
// never mutated: per spec §3 the position is a plain value and search keeps
// a preallocated per-ply Board array rather than doing explicit undo.
func (b *Board) DoMove(m Move) (Board, StateInfo) {
	nb := *b
	st := StateInfo{Move: m}

	us := nb.SideToMove
	from, to := m.From(), m.To()
	moved := nb.PieceAt(from)
	captured := nb.PieceAt(to)
	st.MovedPiece = moved

	nb.HalfMoveClock++
	if moved.Type() == Pawn || captured != NoPiece {
		nb.HalfMoveClock = 0
	}
	if us == Black {
		nb.FullMoveNumber++
	}
	nb.PliesFromNull++

	epSquare := SquareNone
	if nb.EnPassant != SquareNone {
		epSquare = nb.EnPassant
	}
	nb.setEnPassant(SquareNone)

	switch m.Type() {
	case EnPassant:
		capSq := to.Relative(-pawnForward(us), 0)
		capPiece := nb.PieceAt(capSq)
		st.CapturedPiece = capPiece
		nb.remove(capSq, capPiece)
		nb.remove(from, moved)
		nb.put(to, moved)
		st.Deltas[0] = PieceDelta{capPiece, capSq, SquareNone}
		st.Deltas[1] = PieceDelta{moved, from, to}
		st.NumDeltas = 2

	case Castling:
		rookFrom, rookTo := castleRookSquares(to)
		rook := nb.PieceAt(rookFrom)
		nb.remove(from, moved)
		nb.put(to, moved)
		nb.remove(rookFrom, rook)
		nb.put(rookTo, rook)
		st.Deltas[0] = PieceDelta{moved, from, to}
		st.Deltas[1] = PieceDelta{rook, rookFrom, rookTo}
		st.NumDeltas = 2

	case Promotion:
		st.CapturedPiece = captured
		if captured != NoPiece {
			nb.remove(to, captured)
		}
		nb.remove(from, moved)
		promoted := MakePiece(us, m.Promotion())
		nb.put(to, promoted)
		n := 0
		if captured != NoPiece {
			st.Deltas[n] = PieceDelta{captured, to, SquareNone}
			n++
		}
		st.Deltas[n] = PieceDelta{moved, from, SquareNone}
		n++
		st.Deltas[n] = PieceDelta{promoted, SquareNone, to}
		n++
		st.NumDeltas = n

	default: // Normal
		st.CapturedPiece = captured
		if captured != NoPiece {
			nb.remove(to, captured)
		}
		nb.remove(from, moved)
		nb.put(to, moved)
		n := 0
		if captured != NoPiece {
			st.Deltas[n] = PieceDelta{captured, to, SquareNone}
			n++
		}
		st.Deltas[n] = PieceDelta{moved, from, to}
		n++
		st.NumDeltas = n

		if moved.Type() == Pawn && absSquareDiff(from, to) == 16 {
			ep := from.Relative(pawnForward(us), 0)
			if pawnAttacks[us][ep]&nb.ByPiece(us.Opposite(), Pawn) != 0 {
				nb.setEnPassant(ep)
			}
		}
	}

	if cr := lostCastleRights[from] | lostCastleRights[to]; cr != 0 {
		nb.setCastling(nb.Castling &^ cr)
	}

	nb.flipSideToMove()
	nb.recomputeMaterialKey()
	nb.refreshCheckInfo()
	_ = epSquare
	return nb, st
}

// DoNullMove flips the side to move without moving a piece, used by null-move
// pruning (spec §4.J). The en-passant square is cleared since it cannot be
// captured after a null move.
func (b *Board) DoNullMove() Board {
	nb := *b
	nb.setEnPassant(SquareNone)
	nb.flipSideToMove()
	nb.PliesFromNull = 0
	nb.refreshCheckInfo()
	return nb
}

func pawnForward(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

func absSquareDiff(a, b Square) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d
}

func castleRookSquares(kingTo Square) (from, to Square) {
	switch kingTo {
	case SquareG1:
		return SquareH1, SquareF1
	case SquareC1:
		return SquareA1, SquareD1
	case SquareG8:
		return SquareH8, SquareF8
	case SquareC8:
		return SquareA8, SquareD8
	}
	panic("board: castling move does not target a castle-destination square")
}

// GivesCheck reports whether playing m against b would check the opponent,
// used by quiescence search to extend check-giving captures/quiets (spec
// §4.J). It plays the move on a scratch copy rather than special-casing
// discovered checks, trading a touch of speed for correctness simplicity.
func (b *Board) GivesCheck(m Move) bool {
	nb, _ := b.DoMove(m)
	return nb.Checkers != 0
}

// IsPseudoLegalCapture reports whether m is a capture or promotion,
// i.e. a "tactical" move for staged generation (spec §4.D).
func (m Move) IsTactical() bool {
	return m.Type() == Promotion || m.Type() == EnPassant
}
