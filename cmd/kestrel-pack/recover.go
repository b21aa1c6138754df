package main

import (
	"fmt"
	"io"
	"os"

	"github.com/kestrel-engine/kestrel/pack"
)

// runPackrecover resynchronizes a pack file byte-by-byte past any
// corrupted region, grounded on original_source/pack.cpp's recover_pack:
// a chain is kept verbatim when it decodes and re-validates cleanly, and
// the scan advances one byte and retries whenever it doesn't.
func runPackrecover(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: packrecover <in> <out_base>")
	}
	inPath, outBase := args[0], args[1]

	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	size := info.Size()

	outBin, err := os.Create(outBase + ".bin")
	if err != nil {
		return err
	}
	defer outBin.Close()

	var (
		cumHash uint64
		nPos    int
		pos     int64
	)

	for pos < size {
		if _, err := in.Seek(pos, io.SeekStart); err != nil {
			return err
		}
		cr := pack.NewChainReader(in)
		chain, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			pos++
			continue
		}

		consumed := cr.Pos()
		raw := make([]byte, consumed)
		if _, err := in.ReadAt(raw, pos); err != nil {
			pos++
			continue
		}
		if _, err := outBin.Write(raw); err != nil {
			return err
		}

		h, err := chainKeyHash(chain)
		if err != nil {
			pos++
			continue
		}
		cumHash ^= h
		nPos += len(chain.Moves)
		pos += consumed
	}

	if err := writeHashFile(outBase+".hash", cumHash); err != nil {
		return err
	}

	fmt.Printf("recovered %d positions\n", nPos)
	return nil
}
