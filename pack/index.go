package pack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxBlocks bounds an Index's size, mirroring
// original_source/pack.hpp's PackIndex::MAX_BLOCKS sizing rationale (a
// fixed ceiling so the index itself stays small relative to the pack file
// it describes).
const MaxBlocks = 1 << 16

// Block is one contiguous span of chains within a pack file: its byte
// range, how many positions it holds, and an xxhash-64 digest of its bytes.
// The digest has no equivalent in original_source/pack.cpp's Block{off_begin,
// off_end, n_pos} — it's added per this codec's design so a reader can
// reject a corrupted block before wasting a scan on it.
type Block struct {
	OffsetBegin  int64
	OffsetEnd    int64
	NumPositions int64
	Digest       uint64
}

// Index locates each roughly-ChunkSize span of chains within a pack file,
// grounded on original_source/pack.cpp's PackIndex/create_index.
type Index struct {
	Blocks []Block
}

const blockRecordSize = 8*4 + 8 // begin, end, n_pos, digest

// WriteTo serializes idx as a block count followed by one fixed-size record
// per block.
func (idx *Index) WriteTo(w io.Writer) (int64, error) {
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(idx.Blocks)))
	n, err := w.Write(countBuf[:])
	total := int64(n)
	if err != nil {
		return total, err
	}

	buf := make([]byte, blockRecordSize)
	for _, blk := range idx.Blocks {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(blk.OffsetBegin))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(blk.OffsetEnd))
		binary.LittleEndian.PutUint64(buf[16:24], uint64(blk.NumPositions))
		binary.LittleEndian.PutUint64(buf[24:32], blk.Digest)
		m, err := w.Write(buf)
		total += int64(m)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadIndex decodes an Index written by Index.WriteTo.
func ReadIndex(r io.Reader) (Index, error) {
	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return Index{}, fmt.Errorf("pack: reading index header: %w", err)
	}
	n := binary.LittleEndian.Uint32(countBuf[:])
	if n > MaxBlocks {
		return Index{}, errors.New("pack: index block count exceeds MaxBlocks")
	}

	idx := Index{Blocks: make([]Block, 0, n)}
	buf := make([]byte, blockRecordSize)
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return Index{}, fmt.Errorf("pack: reading index block %d: %w", i, err)
		}
		blk := Block{
			OffsetBegin:  int64(binary.LittleEndian.Uint64(buf[0:8])),
			OffsetEnd:    int64(binary.LittleEndian.Uint64(buf[8:16])),
			NumPositions: int64(binary.LittleEndian.Uint64(buf[16:24])),
			Digest:       binary.LittleEndian.Uint64(buf[24:32]),
		}
		if blk.OffsetBegin > blk.OffsetEnd {
			return Index{}, fmt.Errorf("pack: index block %d has begin > end", i)
		}
		idx.Blocks = append(idx.Blocks, blk)
	}
	return idx, nil
}

// BuildIndex scans every chain in r, grouping consecutive chains into
// blocks of at least ChunkSize bytes apiece, the same greedy accumulation
// original_source/pack.cpp's create_index uses.
func BuildIndex(r io.Reader) (Index, error) {
	cr := NewChainReader(r)

	var idx Index
	blockStart := int64(0)
	nPos := int64(0)

	for {
		c, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Index{}, err
		}
		nPos += int64(len(c.Moves))

		if cr.Pos()-blockStart >= ChunkSize {
			idx.Blocks = append(idx.Blocks, Block{
				OffsetBegin:  blockStart,
				OffsetEnd:    cr.Pos(),
				NumPositions: nPos,
				Digest:       cr.Digest(),
			})
			if len(idx.Blocks) > MaxBlocks {
				return Index{}, errors.New("pack: pack file produced more than MaxBlocks blocks")
			}
			cr.ResetDigest()
			blockStart = cr.Pos()
			nPos = 0
		}
	}

	if nPos > 0 {
		idx.Blocks = append(idx.Blocks, Block{
			OffsetBegin:  blockStart,
			OffsetEnd:    cr.Pos(),
			NumPositions: nPos,
			Digest:       cr.Digest(),
		})
	}
	return idx, nil
}
