// Package obs builds the structured logger shared by cmd/, search.Engine and
// selfplay.Driver. The teacher's zurichess/main.go redirects the bare log
// package to stdout with an "info string " prefix so diagnostics ride the
// UCI stream; that trick doesn't survive a real logging library, so every
// diagnostic here goes to stderr instead and UCI output never touches it.
package obs

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger writing to stderr: a human-readable development
// encoder when debug is true (KESTREL_DEBUG set in the environment), a quiet
// JSON production encoder otherwise that only surfaces Warn and above.
func New(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// Debug reports whether KESTREL_DEBUG is set in the environment, the signal
// cmd/ entry points use to decide which encoder New should build.
func Debug() bool {
	_, ok := os.LookupEnv("KESTREL_DEBUG")
	return ok
}
