package search

import "github.com/kestrel-engine/kestrel/board"

// pvTableSize and pvTableMask mirror zurichess's engine/pv.go sizing: a flat
// hash table keyed by position, much smaller than the transposition table,
// dedicated purely to reconstructing the principal variation for reporting.
const (
	pvTableSize = 1 << 14
	pvTableMask = pvTableSize - 1
)

type pvEntry struct {
	key  uint64
	move board.Move
}

// PVTable records, for positions visited along the principal variation, the
// move that continues it, grounded on easychessanimations-zurichess's
// engine/pv.go pvTable (the "additional table suggested by Robert Hyatt").
type PVTable struct {
	entries [pvTableSize]pvEntry
}

// NewPVTable returns an empty PVTable.
func NewPVTable() *PVTable { return &PVTable{} }

// Put records that move continues the PV from the position with key.
// Ignores MoveNone.
func (pv *PVTable) Put(key uint64, move board.Move) {
	if move.IsNone() {
		return
	}
	pv.entries[key&pvTableMask] = pvEntry{key: key, move: move}
}

func (pv *PVTable) get(key uint64) board.Move {
	e := &pv.entries[key&pvTableMask]
	if e.key == key {
		return e.move
	}
	return board.MoveNone
}

// Line reconstructs the principal variation starting at b by repeatedly
// looking up and playing the recorded move, stopping on a miss, an illegal
// move (the table can go stale between iterations) or a repeated position.
func (pv *PVTable) Line(b board.Board, maxLen int) []board.Move {
	seen := map[uint64]bool{}
	var line []board.Move
	cur := b
	for len(line) < maxLen {
		m := pv.get(cur.Key)
		if m.IsNone() || seen[cur.Key] || !cur.IsLegalMove(m) {
			break
		}
		seen[cur.Key] = true
		line = append(line, m)
		cur, _ = cur.DoMove(m)
	}
	return line
}
