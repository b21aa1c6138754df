package pack

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/kestrel-engine/kestrel/board"
)

// MoveScore is one ply of a chain: the move played and the search score
// reported for the position it was played from.
type MoveScore struct {
	Move  board.Move
	Score int16
}

// Chain is one game: a starting position, its outcome, and the sequence of
// moves/scores played from it, stored however many plies deep the producer
// recorded. Grounded on original_source/pack.hpp's PosChain.
type Chain struct {
	Start  PackedBoard
	Result GameOutcome
	Moves  []MoveScore
}

const chainHeaderSize = 8 + 16 + 2 // pc_mask + pc_list + (n_moves<<2 | result)

// WriteTo encodes c onto w: the packed start position, a 2-byte
// (move-count<<2)|result header, then the bit-packed move/score body,
// byte-aligned and zero-padded in its final byte. Grounded on
// original_source/pack.cpp's PosChain::write_to_stream.
func (c *Chain) WriteTo(w io.Writer) (int64, error) {
	if len(c.Moves) > MaxPlies {
		return 0, fmt.Errorf("%w: %d moves exceeds %d", ErrInvalidHeader, len(c.Moves), MaxPlies)
	}
	if !c.Result.valid() {
		return 0, fmt.Errorf("%w: bad result %d", ErrInvalidHeader, c.Result)
	}

	b, err := UnpackBoard(c.Start)
	if err != nil {
		return 0, err
	}

	var header [chainHeaderSize]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(c.Start.PieceMask))
	copy(header[8:24], c.Start.PieceList[:])
	binary.LittleEndian.PutUint16(header[24:26], uint16(len(c.Moves))<<2|uint16(c.Result))

	n, err := w.Write(header[:])
	total := int64(n)
	if err != nil {
		return total, err
	}

	bw := NewBitWriter(4 * (len(c.Moves) + 1))
	prevScore := int16(0)
	for _, ms := range c.Moves {
		writeMove(bw, &b, ms.Move)
		writeScoreDelta(bw, -prevScore-ms.Score)
		prevScore = ms.Score
		b, _ = b.DoMove(ms.Move)
	}

	m, err := w.Write(bw.Bytes())
	return total + int64(m), err
}

// ChainReader decodes a sequence of chains from an underlying stream. It
// buffers a generous worst-case window per chain so the bit reader never
// reads past what start_new_chain/next did in
// original_source/pack.cpp's ChainReader, then rewinds the stream to the
// first unused byte once it knows exactly how many bits the chain used.
//
// It also keeps a running xxhash-64 digest of every byte it has logically
// consumed (header plus decoded move bytes, never the bufio lookahead that
// Discard later drops), so BuildIndex can checksum a block without a second
// pass over the file.
type ChainReader struct {
	r   *bufio.Reader
	pos int64
	h   *xxhash.Digest
}

// NewChainReader wraps r for chain-at-a-time reading.
func NewChainReader(r io.Reader) *ChainReader {
	return &ChainReader{r: bufio.NewReaderSize(r, MaxPlies*2+64), h: xxhash.New()}
}

// Pos returns the number of bytes consumed from the stream so far.
func (cr *ChainReader) Pos() int64 { return cr.pos }

// Digest returns the xxhash-64 of every byte consumed since the reader was
// created or last reset with ResetDigest.
func (cr *ChainReader) Digest() uint64 { return cr.h.Sum64() }

// ResetDigest restarts the running digest, marking a new block boundary.
func (cr *ChainReader) ResetDigest() { cr.h.Reset() }

// Next decodes the next chain, or returns io.EOF once the stream is
// exhausted at a chain boundary. A stream that ends mid-chain, names an
// invalid board, or names a move illegal in the position it's played from
// returns the matching Err* sentinel instead.
func (cr *ChainReader) Next() (Chain, error) {
	var header [chainHeaderSize]byte
	if _, err := io.ReadFull(cr.r, header[:8]); err != nil {
		if err == io.EOF {
			return Chain{}, io.EOF
		}
		return Chain{}, ErrUnexpectedEOF
	}
	if _, err := io.ReadFull(cr.r, header[8:]); err != nil {
		return Chain{}, ErrUnexpectedEOF
	}
	cr.h.Write(header[:])
	cr.pos += int64(len(header))

	var pb PackedBoard
	pb.PieceMask = board.Bitboard(binary.LittleEndian.Uint64(header[0:8]))
	copy(pb.PieceList[:], header[8:24])
	lenAndResult := binary.LittleEndian.Uint16(header[24:26])

	nMoves := int(lenAndResult >> 2)
	result := GameOutcome(lenAndResult & 3)
	if nMoves > MaxPlies {
		return Chain{}, ErrInvalidHeader
	}
	if !result.valid() {
		return Chain{}, ErrInvalidHeader
	}

	b, err := UnpackBoard(pb)
	if err != nil {
		return Chain{}, ErrInvalidBoard
	}

	buf, _ := cr.r.Peek(MaxPlies * 2)
	br := NewBitReader(buf)

	moves := make([]MoveScore, 0, nMoves)
	score := int16(0)
	for i := 0; i < nMoves; i++ {
		m := readMove(br, &b)
		if !b.IsLegalMove(m) {
			return Chain{}, ErrInvalidMove
		}
		diff := readScoreDelta(br)
		score = -score - diff
		moves = append(moves, MoveScore{Move: m, Score: score})
		b, _ = b.DoMove(m)
	}

	consumed := br.ByteLen()
	if consumed > len(buf) {
		return Chain{}, ErrUnexpectedEOF
	}
	cr.h.Write(buf[:consumed])
	if _, err := cr.r.Discard(consumed); err != nil {
		return Chain{}, ErrUnexpectedEOF
	}
	cr.pos += int64(consumed)

	return Chain{Start: pb, Result: result, Moves: moves}, nil
}
