package pack

import (
	"math/bits"

	"github.com/kestrel-engine/kestrel/board"
)

// castleRightsMask returns both of c's castling bits.
func castleRightsMask(c board.Color) board.CastlingRights {
	if c == board.White {
		return board.WhiteOO | board.WhiteOOO
	}
	return board.BlackOO | board.BlackOOO
}

func castleQueenSide(c board.Color) board.CastlingRights {
	if c == board.White {
		return board.WhiteOOO
	}
	return board.BlackOOO
}

// idxBitsForMax returns how many bits are needed to write any value in
// [0, maxVal], mirroring original_source/pack.cpp's `msb(idx_max) + 1`.
func idxBitsForMax(maxVal int) int {
	if maxVal <= 0 {
		return 0
	}
	return bits.Len(uint(maxVal))
}

func relativeRank7(us board.Color, sq board.Square) bool {
	if us == board.White {
		return sq.Rank() == 6
	}
	return sq.Rank() == 1
}

// pawnPushesMask returns from's push destinations (one and, on the start
// rank, two squares ahead) without regard to blockers, matching
// original_source/movgen/attack.cpp's static PAWN_PUSHES table: the caller
// masks out occupied squares afterward.
func pawnPushesMask(us board.Color, from board.Square) board.Bitboard {
	delta := int(forwardDelta(us))
	mask := board.Square(int(from) + delta).Bitboard()
	startRank := 1
	if us == board.Black {
		startRank = 6
	}
	if from.Rank() == startRank {
		mask |= board.Square(int(from) + 2*delta).Bitboard()
	}
	return mask
}

// writePawnMove encodes m, a move by the pawn on m.From(). Grounded on
// original_source/pack.cpp's write_pawn_move: the destination mask is pushes
// (minus squares held by the opponent, matching the original's formula
// exactly rather than all occupied squares) plus captures onto enemy pieces
// or the en-passant square.
func writePawnMove(w *BitWriter, b *board.Board, m board.Move) {
	from := m.From()
	us := b.SideToMove
	them := us.Opposite()

	var epBB board.Bitboard
	if b.EnPassant != board.SquareNone {
		epBB = b.EnPassant.Bitboard()
	}

	dst := pawnPushesMask(us, from) &^ b.ByColor[them]
	dst |= board.PawnAttacks(us, from) & (b.ByColor[them] | epBB)

	if relativeRank7(us, from) {
		w.WriteBits(uint64(promoBits(m.Promotion())), 2)
	}
	writeSquare(w, dst, m.To())
}

func readPawnMove(r *BitReader, b *board.Board, from board.Square) board.Move {
	us := b.SideToMove
	them := us.Opposite()

	var epBB board.Bitboard
	if b.EnPassant != board.SquareNone {
		epBB = b.EnPassant.Bitboard()
	}

	dst := pawnPushesMask(us, from) &^ b.ByColor[them]
	dst |= board.PawnAttacks(us, from) & (b.ByColor[them] | epBB)

	hasPromo := relativeRank7(us, from)
	var promoIdx uint64
	if hasPromo {
		promoIdx = r.ReadBits(2)
	}

	to := readSquare(r, dst)
	switch {
	case hasPromo:
		return board.NewMove(board.Promotion, from, to, promoFromBits(promoIdx))
	case to == b.EnPassant && to != board.SquareNone:
		return board.NewMove(board.EnPassant, from, to, board.NoPieceType)
	default:
		return board.NewMove(board.Normal, from, to, board.NoPieceType)
	}
}

// promoBits/promoFromBits mirror board.Move's own 2-bit promotion index
// (Knight=0..Queen=3, board/move.go's promoPieceTypes), kept as a local copy
// since that table is unexported.
func promoBits(pt board.PieceType) uint64 {
	switch pt {
	case board.Bishop:
		return 1
	case board.Rook:
		return 2
	case board.Queen:
		return 3
	default:
		return 0
	}
}

func promoFromBits(idx uint64) board.PieceType {
	switch idx {
	case 1:
		return board.Bishop
	case 2:
		return board.Rook
	case 3:
		return board.Queen
	default:
		return board.Knight
	}
}

// writeKingMove encodes a king move or castle, sharing one index space
// between normal destinations and castling choices since a king is never
// both able to step onto a square and castle onto it. Grounded on
// original_source/pack.cpp's write_king_move.
func writeKingMove(w *BitWriter, b *board.Board, m board.Move) {
	from := m.From()
	us := b.SideToMove
	dst := board.KingAttacks(from) &^ b.ByColor[us]
	cr := b.Castling & castleRightsMask(us)

	nDsts := dst.Popcnt()
	nCrs := bits.OnesCount8(uint8(cr))
	idxMax := nDsts + nCrs - 1

	idx := 0
	if m.Type() == board.Castling {
		idx = nDsts
		if nCrs == 2 && m.To().File() == 2 {
			idx++
		}
	} else {
		idx = squareIndex(dst, m.To())
	}
	if idxMax > 0 {
		w.WriteBits(uint64(idx), idxBitsForMax(idxMax))
	}
}

func readKingMove(r *BitReader, b *board.Board, from board.Square) board.Move {
	us := b.SideToMove
	dst := board.KingAttacks(from) &^ b.ByColor[us]
	cr := b.Castling & castleRightsMask(us)

	nDsts := dst.Popcnt()
	nCrs := bits.OnesCount8(uint8(cr))
	idxMax := nDsts + nCrs - 1

	idx := 0
	if idxMax > 0 {
		idx = int(r.ReadBits(idxBitsForMax(idxMax)))
	}
	if idx < nDsts {
		to := nthSetSquare(dst, idx)
		return board.NewMove(board.Normal, from, to, board.NoPieceType)
	}

	castleLong := (nCrs == 2 && idx == idxMax) || (nCrs == 1 && cr&castleQueenSide(us) != 0)
	to := from + 2
	if castleLong {
		to = from - 2
	}
	return board.NewMove(board.Castling, from, to, board.NoPieceType)
}

func sliderAttacks(pt board.PieceType, from board.Square, occ board.Bitboard) board.Bitboard {
	switch pt {
	case board.Bishop:
		return board.BishopAttacks(from, occ)
	case board.Rook:
		return board.RookAttacks(from, occ)
	default:
		return board.QueenAttacks(from, occ)
	}
}

// writeOtherMove encodes a knight or sliding-piece move: every other move
// type. Grounded on original_source/pack.cpp's write_move.
func writeOtherMove(w *BitWriter, b *board.Board, m board.Move) {
	from := m.From()
	us := b.SideToMove
	pt := b.PieceAt(from).Type()

	var mask board.Bitboard
	if pt == board.Knight {
		mask = board.KnightAttacks(from)
	} else {
		mask = sliderAttacks(pt, from, b.Occupied())
	}
	mask &^= b.ByColor[us]
	writeSquare(w, mask, m.To())
}

func readOtherMove(r *BitReader, b *board.Board, from board.Square) board.Move {
	us := b.SideToMove
	pt := b.PieceAt(from).Type()

	var mask board.Bitboard
	if pt == board.Knight {
		mask = board.KnightAttacks(from)
	} else {
		mask = sliderAttacks(pt, from, b.Occupied())
	}
	mask &^= b.ByColor[us]
	to := readSquare(r, mask)
	return board.NewMove(board.Normal, from, to, board.NoPieceType)
}

// writeMove encodes m played against b: the moving piece's from-square
// within the mover's own pieces, then a piece-specific destination code.
// Grounded on original_source/pack.cpp's PosChain::write_to_stream body.
func writeMove(w *BitWriter, b *board.Board, m board.Move) {
	us := b.SideToMove
	writeSquare(w, b.ByColor[us], m.From())

	switch b.PieceAt(m.From()).Type() {
	case board.Pawn:
		writePawnMove(w, b, m)
	case board.King:
		writeKingMove(w, b, m)
	default:
		writeOtherMove(w, b, m)
	}
}

// readMove is writeMove's inverse.
func readMove(r *BitReader, b *board.Board) board.Move {
	us := b.SideToMove
	from := readSquare(r, b.ByColor[us])

	switch b.PieceAt(from).Type() {
	case board.Pawn:
		return readPawnMove(r, b, from)
	case board.King:
		return readKingMove(r, b, from)
	default:
		return readOtherMove(r, b, from)
	}
}

// writeScoreDelta encodes diff as a variable-width value: 4-bit chunks,
// least-significant first, each but the last followed by a continuation
// bit, with the lowest output bit carrying the sign. Grounded on
// original_source/pack.cpp's write_int.
func writeScoreDelta(w *BitWriter, diff int16) {
	const blockSize = 4
	const blockMask = 0xF

	sign := uint16(0)
	mag := diff
	if diff < 0 {
		sign = 1
		mag = -diff
	}
	ux := uint16(mag)<<1 | sign

	for {
		w.WriteBits(uint64(ux&blockMask), blockSize)
		ux >>= blockSize
		if ux == 0 {
			break
		}
		w.WriteBits(1, 1)
	}
	w.WriteBits(0, 1)
}

// readScoreDelta is writeScoreDelta's inverse.
func readScoreDelta(r *BitReader) int16 {
	const blockSize = 4

	off := 0
	var x uint16
	for {
		x |= uint16(r.ReadBits(blockSize)) << uint(off)
		off += blockSize
		if r.ReadBits(1) == 0 {
			break
		}
	}

	sign := int16(1)
	if x&1 != 0 {
		sign = -1
	}
	return int16(x>>1) * sign
}
