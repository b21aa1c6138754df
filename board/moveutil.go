package board

import "fmt"

// IsCapture reports whether playing m against b removes an enemy piece,
// including en passant. Needs board context since Move itself only knows
// its own bits, not what sits on the target square.
func (b *Board) IsCapture(m Move) bool {
	return m.Type() == EnPassant || b.PieceAt(m.To()) != NoPiece
}

// IsQuiet is the complement of a tactical move: neither a capture nor a
// promotion, the bucket staged generation calls NON_TACTICAL.
func (b *Board) IsQuiet(m Move) bool {
	return !b.IsCapture(m) && m.Type() != Promotion
}

// UCI renders m in the engine-protocol move format: e2e4, e7e8q, e1g1.
// Move's own String already produces this; UCI is the protocol-facing name
// callers in the cmd/ binaries reach for.
func (m Move) UCI() string { return m.String() }

// ParseUCI parses a UCI move string against the legal moves of b, since the
// wire format alone doesn't distinguish a normal king step from castling or
// a diagonal pawn capture from en passant.
func ParseUCI(b *Board, s string) (Move, error) {
	if s == "0000" {
		return MoveNull, nil
	}
	if len(s) < 4 || len(s) > 5 {
		return MoveNone, fmt.Errorf("board: bad UCI move %q", s)
	}
	from, err := SquareFromString(s[0:2])
	if err != nil {
		return MoveNone, fmt.Errorf("board: bad UCI move %q: %w", s, err)
	}
	to, err := SquareFromString(s[2:4])
	if err != nil {
		return MoveNone, fmt.Errorf("board: bad UCI move %q: %w", s, err)
	}
	var promo PieceType
	if len(s) == 5 {
		promo, err = pieceTypeFromPromoLetter(s[4])
		if err != nil {
			return MoveNone, fmt.Errorf("board: bad UCI move %q: %w", s, err)
		}
	}

	moves := b.GenerateMoves(StageLegal, make([]Move, 0, 48))
	for _, cand := range moves {
		if cand.From() == from && cand.To() == to {
			if cand.Type() == Promotion && cand.Promotion() != promo {
				continue
			}
			return cand, nil
		}
	}
	return MoveNone, fmt.Errorf("board: %q is not a legal move in this position", s)
}

func pieceTypeFromPromoLetter(ch byte) (PieceType, error) {
	switch ch {
	case 'n':
		return Knight, nil
	case 'b':
		return Bishop, nil
	case 'r':
		return Rook, nil
	case 'q':
		return Queen, nil
	}
	return NoPieceType, fmt.Errorf("bad promotion letter %q", string(ch))
}

// IsLegalMove reports whether m, as parsed from an untrusted source (e.g.
// a transposition-table hash move or a pack-file replay), is still legal in
// b. Cheaper than full ParseUCI since it skips generating the whole move
// list when the cached move plainly cannot apply (wrong piece, wrong side).
func (b *Board) IsLegalMove(m Move) bool {
	if m.IsNone() || m.IsNull() {
		return false
	}
	moves := b.GenerateMoves(StageLegal, make([]Move, 0, 48))
	for _, cand := range moves {
		if cand == m {
			return true
		}
	}
	return false
}
