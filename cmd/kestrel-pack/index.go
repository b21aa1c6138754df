package main

import (
	"fmt"
	"os"

	"github.com/kestrel-engine/kestrel/pack"
)

// runPackindex writes the block index for a pack file, grounded on
// original_source/pack.cpp's create_index.
func runPackindex(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: packindex <pack> <idx>")
	}
	packPath, idxPath := args[0], args[1]

	f, err := os.Open(packPath)
	if err != nil {
		return err
	}
	defer f.Close()

	idx, err := pack.BuildIndex(f)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", packPath, err)
	}

	out, err := os.Create(idxPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := idx.WriteTo(out); err != nil {
		return fmt.Errorf("writing %s: %w", idxPath, err)
	}
	fmt.Printf("indexed %d blocks\n", len(idx.Blocks))
	return nil
}
