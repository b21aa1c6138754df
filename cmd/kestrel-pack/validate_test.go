package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrel-engine/kestrel/board"
	"github.com/kestrel-engine/kestrel/pack"
)

func sampleChain(t *testing.T) pack.Chain {
	t.Helper()
	b := board.StartPos()
	m1, err := board.ParseUCI(&b, "e2e4")
	require.NoError(t, err)
	nb, _ := b.DoMove(m1)
	m2, err := board.ParseUCI(&nb, "e7e5")
	require.NoError(t, err)

	return pack.Chain{
		Start:  pack.PackBoard(&b),
		Result: pack.Draw,
		Moves: []pack.MoveScore{
			{Move: m1, Score: 20},
			{Move: m2, Score: -15},
		},
	}
}

func TestChainKeyHashMatchesManualWalk(t *testing.T) {
	c := sampleChain(t)
	got, err := chainKeyHash(c)
	require.NoError(t, err)

	b, err := pack.UnpackBoard(c.Start)
	require.NoError(t, err)
	want := b.Key
	for _, ms := range c.Moves {
		b, _ = b.DoMove(ms.Move)
		want ^= b.Key
	}
	require.Equal(t, want, got)
}

func TestFileKeyHashAndValidateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "games.bin")
	hashPath := filepath.Join(dir, "games.hash")

	f, err := os.Create(binPath)
	require.NoError(t, err)
	c := sampleChain(t)
	_, err = c.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	h, err := fileKeyHash(binPath)
	require.NoError(t, err)
	require.NoError(t, writeHashFile(hashPath, h))

	require.True(t, validateOne(binPath, hashPath))
}

func TestValidateOneRejectsWrongHash(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "games.bin")
	hashPath := filepath.Join(dir, "games.hash")

	f, err := os.Create(binPath)
	require.NoError(t, err)
	c := sampleChain(t)
	_, err = c.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, writeHashFile(hashPath, 0xdeadbeef))
	require.False(t, validateOne(binPath, hashPath))
}
