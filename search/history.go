package search

import "github.com/kestrel-engine/kestrel/board"

// mvvlvaValue is indexed by PieceType and gives the MVV/LVA weight used to
// rank captures, grounded on zurichess's engine/move_ordering.go mvvlvaBonus
// table but rescaled to board.SeeValue's centipawn units so both tables agree
// on "a queen is worth about 9 pawns".
var mvvlvaValue = [board.NumPieceTypes]int{
	board.NoPieceType: 0,
	board.Pawn:        100,
	board.Knight:      320,
	board.Bishop:      330,
	board.Rook:        500,
	board.Queen:       900,
	board.King:        20000,
}

// mvvlva scores a tactical move by victim value first, attacker value
// second, matching spec.md §4.E's "promotion capture victim is the promoted
// piece" rule.
func mvvlva(b *board.Board, m board.Move) int {
	var victim board.PieceType
	switch {
	case m.Type() == board.Promotion:
		victim = m.Promotion()
	case m.Type() == board.EnPassant:
		victim = board.Pawn
	default:
		victim = b.PieceAt(m.To()).Type()
	}
	attacker := b.PieceAt(m.From()).Type()
	return mvvlvaValue[victim]*64 - mvvlvaValue[attacker]
}

// centerWeight scales how much a piece type cares about centralization,
// used by the non-tactical move score in spec.md §4.E. Knights and bishops
// gain the most from the center, kings and rooks the least; pawns are
// scored zero here since pawn advances are already captured by history.
var centerWeight = [board.NumPieceTypes]int{
	board.NoPieceType: 0,
	board.Pawn:         0,
	board.Knight:       4,
	board.Bishop:       3,
	board.Rook:         1,
	board.Queen:        2,
	board.King:         0,
}

// centerTable scores each square by Chebyshev distance from the board's
// center, highest in the middle.
var centerTable = buildCenterTable()

func buildCenterTable() [64]int {
	var t [64]int
	for sq := board.Square(0); sq < 64; sq++ {
		f, r := sq.File(), sq.Rank()
		df, dr := f-3, r-3
		if df < 0 {
			df = -df - 1
		}
		if dr < 0 {
			dr = -dr - 1
		}
		dist := df
		if dr > dist {
			dist = dr
		}
		t[sq] = 3 - dist
	}
	return t
}

// historySize is the table size for history/counter/followup tables,
// grounded on zurichess's engine.go historyTable (a small hashed, evicting
// table) but keyed by (piece, to-square) instead of a hash of the whole Move,
// since spec.md §4.E's INIT_NONTACTICAL score explicitly names
// "main-history[piece][to]".
const numPieces = 16 // Piece is (color<<3)|type, 2 colors * 8 slots

// historyTable is Stockfish-style saturating history, indexed [piece][to].
type historyTable [numPieces][64]int16

// get returns the history score for playing piece p to square to.
func (h *historyTable) get(p board.Piece, to board.Square) int {
	return int(h[p][to])
}

// add applies spec.md §4.J's saturated update: h += 32*bonus - h*|bonus|/512.
func (h *historyTable) add(p board.Piece, to board.Square, bonus int) {
	v := int(h[p][to])
	v += 32*bonus - v*abs(bonus)/512
	if v > 16384 {
		v = 16384
	} else if v < -16384 {
		v = -16384
	}
	h[p][to] = int16(v)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// fromTo packs a move's endpoints into a 12-bit index for the counter and
// follow-up tables, grounded on zurichess's counterIndex but keyed directly
// by (from,to) instead of a murmur hash since board.Move already gives us a
// dense 6+6 bit pair.
func fromTo(m board.Move) int { return int(m.From())<<6 | int(m.To()) }

const fromToSize = 1 << 12

// counterTable maps the opponent's last move to the move that refuted it
// best, indexed by that move's (from,to).
type counterTable [fromToSize]board.Move

func (c *counterTable) get(prev board.Move) board.Move {
	if prev.IsNone() || prev.IsNull() {
		return board.MoveNone
	}
	return c[fromTo(prev)]
}

func (c *counterTable) set(prev, reply board.Move) {
	if prev.IsNone() || prev.IsNull() {
		return
	}
	c[fromTo(prev)] = reply
}

// followupTable maps our own previous move to the move that has followed it
// best, the same shape as counterTable but indexed by our move two plies
// back instead of the opponent's move one ply back.
type followupTable [fromToSize]board.Move

func (f *followupTable) get(prev board.Move) board.Move {
	if prev.IsNone() || prev.IsNull() {
		return board.MoveNone
	}
	return f[fromTo(prev)]
}

func (f *followupTable) set(prev, reply board.Move) {
	if prev.IsNone() || prev.IsNull() {
		return
	}
	f[fromTo(prev)] = reply
}
