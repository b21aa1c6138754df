package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/kestrel-engine/kestrel/pack"
)

// chainKeyHash XORs together the Zobrist key of every position in c,
// starting position through the position reached after its final move,
// mirroring original_source/pack.cpp's validate_packed_games accumulation
// (`cum_hash ^= reader.board.key()` at every ply, including the position
// reached by the chain's last move).
func chainKeyHash(c pack.Chain) (uint64, error) {
	b, err := pack.UnpackBoard(c.Start)
	if err != nil {
		return 0, err
	}
	hash := b.Key
	for _, ms := range c.Moves {
		b, _ = b.DoMove(ms.Move)
		hash ^= b.Key
	}
	return hash, nil
}

// fileKeyHash walks every chain in path, returning the XOR of each chain's
// chainKeyHash, i.e. the value that belongs in the companion .hash file.
func fileKeyHash(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cr := pack.NewChainReader(f)
	var hash uint64
	for {
		c, err := cr.Next()
		if err == io.EOF {
			return hash, nil
		}
		if err != nil {
			return 0, err
		}
		h, err := chainKeyHash(c)
		if err != nil {
			return 0, err
		}
		hash ^= h
	}
}

func readHashFile(path string) (uint64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
}

func writeHashFile(path string, hash uint64) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", hash)), 0o644)
}

func runPackval(args []string) error {
	if len(args) < 2 || len(args)%2 != 0 {
		return fmt.Errorf("usage: packval <bin1> <hash1> [<bin2> <hash2> ...]")
	}

	pass := 0
	total := len(args) / 2
	for i := 0; i < len(args); i += 2 {
		binPath, hashPath := args[i], args[i+1]
		fmt.Printf("%d. %s\t%s\n", i/2+1, binPath, hashPath)

		ok := validateOne(binPath, hashPath)
		if ok {
			color.Green("..PASS\n")
			pass++
		} else {
			color.Red("..FAIL\n")
		}
	}
	fmt.Printf("%d pass, %d fail, %d total\n", pass, total-pass, total)
	return nil
}

func validateOne(binPath, hashPath string) bool {
	want, err := readHashFile(hashPath)
	if err != nil {
		return false
	}
	got, err := fileKeyHash(binPath)
	if err != nil {
		return false
	}
	return got == want
}
