package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// runPackmerge concatenates n pack files and XORs their companion hash
// files, grounded on original_source/pack.cpp's merge_packed_games.
func runPackmerge(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: packmerge <out_bin> <out_hash> <n> <bin1> <hash1> ...")
	}
	outBin, outHash := args[0], args[1]
	n, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("bad file count %q: %w", args[2], err)
	}
	if len(args) != 3+2*n {
		return fmt.Errorf("expected %d bin/hash pairs, got %d arguments", n, len(args)-3)
	}

	fout, err := os.Create(outBin)
	if err != nil {
		return err
	}
	defer fout.Close()

	var hash uint64
	for i := 0; i < n; i++ {
		binPath, hashPath := args[3+2*i], args[3+2*i+1]

		fin, err := os.Open(binPath)
		if err != nil {
			return err
		}
		_, err = io.Copy(fout, fin)
		fin.Close()
		if err != nil {
			return fmt.Errorf("copying %s: %w", binPath, err)
		}

		h, err := readHashFile(hashPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", hashPath, err)
		}
		hash ^= h
	}

	if err := writeHashFile(outHash, hash); err != nil {
		return err
	}

	if validateOne(outBin, outHash) {
		fmt.Println("merge is valid")
	} else {
		fmt.Println("[!] merge is invalid")
	}
	return nil
}
