// Package config loads the optional TOML file that seeds process defaults
// for the UCI options and the self-play driver's parameters. A config file
// only sets the initial value; a later `setoption` always overrides it.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// UCI holds the defaults for the options spec.md §6 lists.
type UCI struct {
	HashMB         int     `toml:"hash_mb"`
	MultiPV        int     `toml:"multi_pv"`
	EvalFile       string  `toml:"eval_file"`
	AspDelta       int     `toml:"asp_delta"`
	AspMinDepth    int     `toml:"asp_min_depth"`
	LMRCoeff       float64 `toml:"lmr_coeff"`
	MoveOverheadMS int     `toml:"move_overhead_ms"`
	BookFile       string  `toml:"book_file"`
}

// Selfplay holds the driver parameters a config file can seed, overridden
// by the matching CLI arguments to `cmd/kestrel-selfplay` when given.
type Selfplay struct {
	Threads     int    `toml:"threads"`
	MinDepth    int    `toml:"min_depth"`
	MoveTimeMS  int    `toml:"move_time_ms"`
	MultiPV     int    `toml:"multi_pv"`
	MaxLDMoves  int    `toml:"max_ld_moves"`
	MetricsAddr string `toml:"metrics_addr"`
}

// Config is the root document. Every field has a zero value that means
// "let the caller's own default stand" so a partial file never clobbers
// the rest of the defaults.
type Config struct {
	UCI      UCI      `toml:"uci"`
	Selfplay Selfplay `toml:"selfplay"`
}

// Default returns the built-in defaults, used when no config file is given
// or a field is left unset in one that is.
func Default() Config {
	return Config{
		UCI: UCI{
			HashMB:         16,
			MultiPV:        1,
			AspDelta:       25,
			AspMinDepth:    5,
			LMRCoeff:       0.5,
			MoveOverheadMS: 10,
		},
		Selfplay: Selfplay{
			Threads:    1,
			MinDepth:   6,
			MoveTimeMS: 100,
			MultiPV:    3,
			MaxLDMoves: 6,
		},
	}
}

// Load reads and parses path, decoding on top of Default() so a file only
// needs to name the options it wants to change: toml.DecodeFile sets a
// field only when the document names its key, leaving every other default
// already sitting in cfg untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// MoveOverhead converts the UCI section's millisecond field to a Duration.
func (u UCI) MoveOverhead() time.Duration {
	return time.Duration(u.MoveOverheadMS) * time.Millisecond
}

// MoveTime converts the Selfplay section's millisecond field to a Duration.
func (s Selfplay) MoveTime() time.Duration {
	return time.Duration(s.MoveTimeMS) * time.Millisecond
}
