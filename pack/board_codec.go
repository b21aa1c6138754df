package pack

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/kestrel-engine/kestrel/board"
)

// PackedBoard is a 24-byte board snapshot: a 64-bit occupancy mask plus one
// nibble per occupied square (at most 32 pieces), grounded on
// original_source/pack.hpp's PackedBoard{pc_mask uint64, pc_list[16]}.
type PackedBoard struct {
	PieceMask board.Bitboard
	PieceList [16]byte // 2 nibbles per byte, ordered by popcount rank of PieceMask
}

// PackedPiece is the nibble value stored per occupied square. Most values
// are an ordinary (type, color) pair; a few are overloaded markers that let
// the codec recover en-passant rights, castling-eligible rooks and which
// side is to move without spending extra header bits, grounded on
// original_source/pack.cpp's PackedPiece enum.
type PackedPiece uint8

const (
	ppwPawn PackedPiece = iota
	ppbPawn
	ppwKnight
	ppbKnight
	ppwBishop
	ppbBishop
	ppwRook
	ppbRook
	ppwQueen
	ppbQueen
	ppwKing
	ppbKing

	ppEnPassant // pawn with an en-passant target square directly behind it
	ppWCRRook   // white rook still eligible to castle on its side
	ppBCRRook   // black rook still eligible to castle on its side
	ppBSTMKing  // black king, recorded in place of ppbKing when black is to move
)

func packPiece(p board.Piece) PackedPiece {
	return PackedPiece((int(p.Type())-1)*2 + int(p.Color()))
}

func unpackPiece(pp PackedPiece) board.Piece {
	return board.MakePiece(board.Color(pp%2), board.PieceType(1+pp/2))
}

func forwardDelta(c board.Color) board.Square {
	if c == board.White {
		return 8
	}
	return -8
}

// sqBackward returns the square directly behind sq from c's point of view.
func sqBackward(c board.Color, sq board.Square) board.Square { return sq - forwardDelta(c) }

// sqForward returns the square directly ahead of sq from c's point of view.
func sqForward(c board.Color, sq board.Square) board.Square { return sq + forwardDelta(c) }

func isCastlingRook(cr board.CastlingRights, c board.Color, file int) bool {
	if c == board.White {
		return (file == 0 && cr&board.WhiteOOO != 0) || (file == 7 && cr&board.WhiteOO != 0)
	}
	return (file == 0 && cr&board.BlackOOO != 0) || (file == 7 && cr&board.BlackOO != 0)
}

func setNibble(pb *PackedBoard, idx int, n PackedPiece) {
	if idx%2 == 1 {
		pb.PieceList[idx/2] |= byte(n) << 4
	} else {
		pb.PieceList[idx/2] |= byte(n)
	}
}

func getNibble(pb PackedBoard, idx int) PackedPiece {
	if idx%2 == 1 {
		return PackedPiece(pb.PieceList[idx/2] >> 4)
	}
	return PackedPiece(pb.PieceList[idx/2] & 0xF)
}

// PackBoard encodes b's full position (pieces, castling rights, en-passant
// square, side to move) into a PackedBoard. Grounded on
// original_source/pack.cpp's pack_board.
func PackBoard(b *board.Board) PackedBoard {
	var pb PackedBoard
	pb.PieceMask = b.Occupied()

	epPawnSq := board.SquareNone
	if b.EnPassant != board.SquareNone {
		epPawnSq = sqForward(b.SideToMove.Opposite(), b.EnPassant)
	}

	mask := pb.PieceMask
	idx := 0
	for mask != 0 {
		sq := board.Square(bits.TrailingZeros64(uint64(mask)))
		mask &= mask - 1

		p := b.PieceAt(sq)
		file := sq.File()

		nibble := packPiece(p)
		switch {
		case sq == epPawnSq:
			nibble = ppEnPassant
		case p == board.MakePiece(board.White, board.Rook) && isCastlingRook(b.Castling, board.White, file):
			nibble = ppWCRRook
		case p == board.MakePiece(board.Black, board.Rook) && isCastlingRook(b.Castling, board.Black, file):
			nibble = ppBCRRook
		case p == board.MakePiece(board.Black, board.King) && b.SideToMove == board.Black:
			nibble = ppBSTMKing
		}

		setNibble(&pb, idx, nibble)
		idx++
	}
	return pb
}

// UnpackBoard decodes a PackedBoard back into a Board. Unlike
// original_source/pack.cpp's unpack_board, which re-derives the Zobrist key
// nibble by nibble and compares it against Board::key() for validation, this
// rebuilds a FEN string from the decoded placement and lets Board.SetFEN
// recompute the key, checkers and material key itself — one fewer place
// that needs to agree with the Zobrist scheme.
func UnpackBoard(pb PackedBoard) (board.Board, error) {
	mask := pb.PieceMask
	if bits.OnesCount64(uint64(mask)) > 32 {
		return board.Board{}, ErrInvalidBoard
	}

	var squares [64]board.Piece
	stm := board.White
	var cr board.CastlingRights
	ep := board.SquareNone

	idx := 0
	for mask != 0 {
		sq := board.Square(bits.TrailingZeros64(uint64(mask)))
		mask &= mask - 1

		nibble := getNibble(pb, idx)
		idx++
		file := sq.File()

		switch nibble {
		case ppBSTMKing:
			stm = board.Black
			nibble = ppbKing
		case ppEnPassant:
			pawnColor := board.Black
			if sq.Rank() == 3 {
				pawnColor = board.White
			}
			ep = sqBackward(pawnColor, sq)
			if pawnColor == board.White {
				nibble = ppwPawn
			} else {
				nibble = ppbPawn
			}
		case ppWCRRook:
			if file == 0 {
				cr |= board.WhiteOOO
			} else {
				cr |= board.WhiteOO
			}
			nibble = ppwRook
		case ppBCRRook:
			if file == 0 {
				cr |= board.BlackOOO
			} else {
				cr |= board.BlackOO
			}
			nibble = ppbRook
		}

		if nibble > ppbKing {
			return board.Board{}, ErrInvalidBoard
		}
		squares[sq] = unpackPiece(nibble)
	}

	fen := renderBoardFEN(squares, stm, cr, ep)
	var b board.Board
	if err := b.SetFEN(fen); err != nil {
		return board.Board{}, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}
	return b, nil
}

func renderBoardFEN(squares [64]board.Piece, stm board.Color, cr board.CastlingRights, ep board.Square) string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			p := squares[board.RankFile(r, f)]
			if p == board.NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	if stm == board.White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(cr.String())
	sb.WriteByte(' ')
	if ep == board.SquareNone {
		sb.WriteByte('-')
	} else {
		sb.WriteString(ep.String())
	}
	sb.WriteString(" 0 1")
	return sb.String()
}
