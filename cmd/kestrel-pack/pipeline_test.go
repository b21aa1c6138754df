package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrel-engine/kestrel/pack"
)

func writeChainFile(t *testing.T, dir, name string, c pack.Chain) (string, string) {
	t.Helper()
	binPath := filepath.Join(dir, name+".bin")
	hashPath := filepath.Join(dir, name+".hash")

	f, err := os.Create(binPath)
	require.NoError(t, err)
	_, err = c.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	h, err := fileKeyHash(binPath)
	require.NoError(t, err)
	require.NoError(t, writeHashFile(hashPath, h))
	return binPath, hashPath
}

func TestRunPackmergeConcatenatesAndValidates(t *testing.T) {
	dir := t.TempDir()
	c1 := sampleChain(t)
	bin1, hash1 := writeChainFile(t, dir, "a", c1)
	bin2, hash2 := writeChainFile(t, dir, "b", c1)

	outBin := filepath.Join(dir, "out.bin")
	outHash := filepath.Join(dir, "out.hash")

	err := runPackmerge([]string{outBin, outHash, "2", bin1, hash1, bin2, hash2})
	require.NoError(t, err)
	require.True(t, validateOne(outBin, outHash))

	info, err := os.Stat(outBin)
	require.NoError(t, err)
	i1, _ := os.Stat(bin1)
	i2, _ := os.Stat(bin2)
	require.Equal(t, i1.Size()+i2.Size(), info.Size())
}

func TestRunPackmergeRejectsWrongFileCount(t *testing.T) {
	dir := t.TempDir()
	err := runPackmerge([]string{filepath.Join(dir, "out.bin"), filepath.Join(dir, "out.hash"), "2", "only-one-pair.bin", "only-one-pair.hash"})
	require.Error(t, err)
}

func TestRunPackindexCoversWholeFile(t *testing.T) {
	dir := t.TempDir()
	c := sampleChain(t)
	binPath, _ := writeChainFile(t, dir, "a", c)
	idxPath := filepath.Join(dir, "a.idx")

	require.NoError(t, runPackindex([]string{binPath, idxPath}))

	f, err := os.Open(idxPath)
	require.NoError(t, err)
	defer f.Close()
	idx, err := pack.ReadIndex(f)
	require.NoError(t, err)
	require.Len(t, idx.Blocks, 1)
	require.EqualValues(t, len(c.Moves), idx.Blocks[0].NumPositions)
}

func TestRunRepackPreservesChainCountAndHash(t *testing.T) {
	dir := t.TempDir()
	c := sampleChain(t)
	binPath, _ := writeChainFile(t, dir, "a", c)
	newPath := filepath.Join(dir, "repacked.bin")

	require.NoError(t, runRepack([]string{binPath, newPath}))

	oldHash, err := fileKeyHash(binPath)
	require.NoError(t, err)
	newHash, err := fileKeyHash(newPath)
	require.NoError(t, err)
	require.Equal(t, oldHash, newHash)
}

func TestRunPackrecoverResyncsPastLeadingGarbage(t *testing.T) {
	// Two back-to-back copies of the same chain with three garbage bytes
	// spliced between them: recover should skip the garbage byte-at-a-time
	// (it can never parse as a valid chain header, since UnpackBoard
	// rejects a piece mask with more than 32 bits set) and come back with
	// both real chains, each re-validating against its own recomputed hash.
	dir := t.TempDir()
	c := sampleChain(t)

	var clean []byte
	{
		f, err := os.CreateTemp(dir, "clean-*.bin")
		require.NoError(t, err)
		_, err = c.WriteTo(f)
		require.NoError(t, err)
		name := f.Name()
		require.NoError(t, f.Close())
		clean, err = os.ReadFile(name)
		require.NoError(t, err)
	}

	corrupted := append(append(append([]byte{}, clean...), 0xFF, 0xFF, 0xFF), clean...)
	corruptedPath := filepath.Join(dir, "corrupted.bin")
	require.NoError(t, os.WriteFile(corruptedPath, corrupted, 0o644))

	outBase := filepath.Join(dir, "recovered")
	require.NoError(t, runPackrecover([]string{corruptedPath, outBase}))

	recoveredHash, err := readHashFile(outBase + ".hash")
	require.NoError(t, err)

	single, err := chainKeyHash(c)
	require.NoError(t, err)
	require.Equal(t, single^single, recoveredHash, "both copies of the chain should have been recovered")

	got, err := fileKeyHash(outBase + ".bin")
	require.NoError(t, err)
	require.Equal(t, recoveredHash, got)
}
