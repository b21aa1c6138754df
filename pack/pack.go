// Package pack implements the bit-packed game-chain codec: encoding a
// starting position plus a move/score sequence into a compact byte stream,
// and decoding it back move by move. It is the only persistence boundary
// in the module — nothing else in the engine reads or writes a file.
// Grounded on original_source/pack.hpp and pack.cpp's PackedBoard/PosChain/
// BitWriter/BitReader/ChainReader shapes, redesigned per spec.md §4.K as
// idiomatic Go: streams are []byte/io.Reader/io.Writer rather than raw
// pointers, and Result is returned as a Go error (or ErrEndOfChain/
// io.EOF sentinels) rather than an out-param enum.
package pack

import "errors"

// MaxPlies bounds a single chain's move count, per spec.md §4.K's
// `n_moves > MAX` header-validity check.
const MaxPlies = 1024

// ChunkSize is the block-index granularity: a new block starts every time
// the source read since the last block boundary reaches this many bytes,
// per spec.md §4.K "emit a new block every >= 1 MB of source".
const ChunkSize = 1 << 20

// GameOutcome is the result recorded once per chain.
type GameOutcome uint8

const (
	WhiteWins GameOutcome = 0
	BlackWins GameOutcome = 1
	Draw      GameOutcome = 2
)

func (o GameOutcome) valid() bool { return o <= Draw }

// Sentinel errors returned by ChainReader, mirrored on spec.md §4.K's
// ChainReader contract (OK, END_OF_FILE, END_OF_CHAIN, UNEXPECTED_EOF,
// INVALID_HEADER, INVALID_BOARD, INVALID_MOVE).
var (
	ErrEndOfChain    = errors.New("pack: end of chain")
	ErrUnexpectedEOF = errors.New("pack: unexpected end of file mid-chain")
	ErrInvalidHeader = errors.New("pack: invalid chain header")
	ErrInvalidBoard  = errors.New("pack: invalid packed board")
	ErrInvalidMove   = errors.New("pack: invalid move in chain")
)
