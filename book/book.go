// Package book implements an opening book keyed by Zobrist position hash,
// grounded on original_source/book.hpp's Book class: a collection of
// (position, move, weight) entries grouped by key, with a weighted-random
// pick among the moves sharing a position when more than one is on file.
//
// The original stores all entries in one sorted std::vector and binary
// searches the key, then walks the run of duplicate keys around the match
// to weight-sample within it. Badger has no notion of duplicate keys, so
// the run is pre-grouped at load time and written as a single value per
// Zobrist key: the entries for a key travel together, and Probe reads one
// record and does the same weighted pick the original does at query time.
package book

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/kestrel-engine/kestrel/board"
)

// entry is one (move, weight) pair recorded for a position. Weight mirrors
// the original's uint16 scale: larger is more likely to be picked.
type entry struct {
	move   board.Move
	weight uint16
}

// Book is an opening book backed by an embedded Badger database, one value
// per Zobrist key holding every weighted move recorded for that position.
type Book struct {
	db  *badger.DB
	log *zap.Logger

	// rng and its guard mirror the original's thread_local random engine;
	// Go has no per-goroutine storage so Probe serializes instead.
	mu  sync.Mutex
	rng *rand.Rand
}

// bookSeed matches original_source/book.cpp's fixed thread_local seed, kept
// so book selection is reproducible across runs given the same book file.
const bookSeed = 0xdeadbeef

// Open opens (creating if absent) the Badger database at dir.
func Open(dir string, log *zap.Logger) (*Book, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("book: open %q: %w", dir, err)
	}
	return &Book{
		db:  db,
		log: log,
		rng: rand.New(rand.NewSource(bookSeed)),
	}, nil
}

// Close releases the underlying database.
func (bk *Book) Close() error {
	return bk.db.Close()
}

// Probe returns a weighted-random move recorded for key, or
// (board.MoveNone, false) if the position isn't in the book.
func (bk *Book) Probe(key uint64) (board.Move, bool) {
	entries, err := bk.lookup(key)
	if err != nil || len(entries) == 0 {
		return board.MoveNone, false
	}
	return bk.pickFromGroup(entries), true
}

func (bk *Book) lookup(key uint64) ([]entry, error) {
	var entries []entry
	err := bk.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyBytes(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decodeErr error
			entries, decodeErr = decodeEntries(val)
			return decodeErr
		})
	})
	if err != nil {
		bk.log.Warn("book probe failed", zap.Uint64("key", key), zap.Error(err))
		return nil, err
	}
	return entries, nil
}

// pickFromGroup weight-samples one move among entries, mirroring the
// original's pick_from_group: sum the weights, draw uniformly over the
// sum, and walk the group until the draw is consumed.
func (bk *Book) pickFromGroup(entries []entry) board.Move {
	bk.mu.Lock()
	defer bk.mu.Unlock()

	var total int
	for _, e := range entries {
		total += int(e.weight)
	}
	if total <= 0 {
		return entries[bk.rng.Intn(len(entries))].move
	}
	draw := bk.rng.Intn(total)
	for _, e := range entries {
		if draw < int(e.weight) {
			return e.move
		}
		draw -= int(e.weight)
	}
	return entries[len(entries)-1].move
}

func keyBytes(key uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], key)
	return b[:]
}

// encodeEntries serializes a key's weighted moves as a flat run of
// (uint16 move, uint16 weight) pairs, sorted by weight descending to match
// the original's pre-sort (irrelevant to correctness here since Probe
// always weight-samples the full group, but kept for fidelity and for
// debug dumps that expect the highest-weighted move first).
func encodeEntries(entries []entry) []byte {
	sorted := make([]entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].weight > sorted[j].weight })

	buf := make([]byte, 4*len(sorted))
	for i, e := range sorted {
		binary.BigEndian.PutUint16(buf[4*i:], uint16(e.move))
		binary.BigEndian.PutUint16(buf[4*i+2:], e.weight)
	}
	return buf
}

func decodeEntries(val []byte) ([]entry, error) {
	if len(val)%4 != 0 {
		return nil, fmt.Errorf("book: malformed entry record (%d bytes)", len(val))
	}
	entries := make([]entry, len(val)/4)
	for i := range entries {
		entries[i].move = board.Move(binary.BigEndian.Uint16(val[4*i:]))
		entries[i].weight = binary.BigEndian.Uint16(val[4*i+2:])
	}
	return entries, nil
}

// LoadFromFENs populates a book from the text format used by
// original_source/book.cpp's load_from_fens: each record is a move token
// and a weight on one line, followed by the FEN of the position the move
// was recorded from. Existing entries already on file for a key are
// appended to, not replaced, so repeated loads accumulate.
func LoadFromFENs(bk *Book, r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	grouped := map[uint64][]entry{}
	var loaded int
	for sc.Scan() {
		header := strings.TrimSpace(sc.Text())
		if header == "" {
			continue
		}
		if !sc.Scan() {
			return loaded, fmt.Errorf("book: truncated record, missing FEN after %q", header)
		}
		fen := strings.TrimSpace(sc.Text())

		fields := strings.Fields(header)
		if len(fields) != 2 {
			return loaded, fmt.Errorf("book: bad record header %q, want \"move weight\"", header)
		}
		weight, err := strconv.ParseUint(fields[1], 10, 16)
		if err != nil {
			return loaded, fmt.Errorf("book: bad weight in %q: %w", header, err)
		}

		var b board.Board
		if err := b.SetFEN(fen); err != nil {
			return loaded, fmt.Errorf("book: bad FEN %q: %w", fen, err)
		}
		mv, err := board.ParseUCI(&b, fields[0])
		if err != nil {
			return loaded, fmt.Errorf("book: bad move %q for %q: %w", fields[0], fen, err)
		}

		grouped[b.Key] = append(grouped[b.Key], entry{move: mv, weight: uint16(weight)})
		loaded++
	}
	if err := sc.Err(); err != nil {
		return loaded, fmt.Errorf("book: scan: %w", err)
	}

	err := bk.db.Update(func(txn *badger.Txn) error {
		for key, fresh := range grouped {
			existing, err := readExisting(txn, key)
			if err != nil {
				return err
			}
			merged := mergeEntries(existing, fresh)
			if err := txn.Set(keyBytes(key), encodeEntries(merged)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return loaded, fmt.Errorf("book: commit: %w", err)
	}
	bk.log.Info("book load complete", zap.Int("records", loaded), zap.Int("positions", len(grouped)))
	return loaded, nil
}

func readExisting(txn *badger.Txn, key uint64) ([]entry, error) {
	item, err := txn.Get(keyBytes(key))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var existing []entry
	err = item.Value(func(val []byte) error {
		var decodeErr error
		existing, decodeErr = decodeEntries(bytes.Clone(val))
		return decodeErr
	})
	return existing, err
}

// mergeEntries combines previously-stored entries with freshly loaded ones
// for the same key, summing weights for moves that already had a record
// rather than duplicating the move.
func mergeEntries(existing, fresh []entry) []entry {
	byMove := make(map[board.Move]int, len(existing)+len(fresh))
	order := make([]board.Move, 0, len(existing)+len(fresh))
	for _, e := range existing {
		if _, ok := byMove[e.move]; !ok {
			order = append(order, e.move)
		}
		byMove[e.move] += int(e.weight)
	}
	for _, e := range fresh {
		if _, ok := byMove[e.move]; !ok {
			order = append(order, e.move)
		}
		byMove[e.move] += int(e.weight)
	}
	merged := make([]entry, len(order))
	for i, mv := range order {
		w := byMove[mv]
		if w > 0xFFFF {
			w = 0xFFFF
		}
		merged[i] = entry{move: mv, weight: uint16(w)}
	}
	return merged
}

// LoadFromFile opens path and loads it via LoadFromFENs, the convenience
// wrapper the selfplay and cmd/ binaries actually call.
func LoadFromFile(bk *Book, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("book: open %q: %w", path, err)
	}
	defer f.Close()
	return LoadFromFENs(bk, f)
}
