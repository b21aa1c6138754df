package main

import (
	"fmt"
	"io"
	"os"

	"github.com/kestrel-engine/kestrel/pack"
)

// runRepack decodes every chain from the input and re-encodes it to the
// output. original_source/pack.cpp's repack_games converts a still older
// move-index-based format (PosSeq, indexing into a generated legal-move
// list rather than storing the move itself) into the bit-packed PosChain
// format this codec already is; since this module never implements that
// older format, repack here serves as a decode/re-encode normalization
// pass instead — useful after a codec constant changes, and a ready home
// for a real legacy-format reader if one is ever written.
func runRepack(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: repack <old_bin> <new_bin>")
	}
	oldPath, newPath := args[0], args[1]

	in, err := os.Open(oldPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(newPath)
	if err != nil {
		return err
	}
	defer out.Close()

	cr := pack.NewChainReader(in)
	n := 0
	for {
		c, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("repack: decoding chain %d: %w", n, err)
		}
		if _, err := c.WriteTo(out); err != nil {
			return fmt.Errorf("repack: encoding chain %d: %w", n, err)
		}
		n++
	}
	fmt.Printf("repacked %d chains\n", n)
	return nil
}
