package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsSelfConsistent(t *testing.T) {
	d := Default()
	require.Equal(t, 1, d.UCI.MultiPV)
	require.Equal(t, 1, d.Selfplay.Threads)
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kestrel.toml")
	body := "[uci]\nhash_mb = 256\n\n[selfplay]\nthreads = 8\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 256, cfg.UCI.HashMB)
	require.Equal(t, 8, cfg.Selfplay.Threads)
	// Untouched fields keep their Default() values.
	require.Equal(t, 1, cfg.UCI.MultiPV)
	require.Equal(t, 6, cfg.Selfplay.MinDepth)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestDurationHelpers(t *testing.T) {
	u := UCI{MoveOverheadMS: 25}
	require.Equal(t, int64(25e6), u.MoveOverhead().Nanoseconds())

	s := Selfplay{MoveTimeMS: 100}
	require.Equal(t, int64(100e6), s.MoveTime().Nanoseconds())
}
