package eval

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/kestrel-engine/kestrel/board"

	"go.uber.org/zap"
)

// Store publishes a *Network read by many search workers concurrently and
// swapped by the UCI `EvalFile` option, grounded on the teacher's
// guarded-mutation pattern in engine/engine.go's SetPosition and
// generalized with sync/atomic per spec.md §5's "guarded swap, stop all
// searches first" requirement.
type Store struct {
	net atomic.Pointer[Network]
	log *zap.Logger
}

// NewStore returns a Store with no weights loaded; Evaluate falls back to
// material scoring until Swap succeeds.
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{log: log}
}

// Current returns the currently active network, or nil if none is loaded.
func (s *Store) Current() *Network { return s.net.Load() }

// Swap loads weights from path and atomically publishes them. On failure
// the previously active network (possibly nil) remains in effect, per
// spec.md §7's resource-error policy: log and keep operating on the last
// good state.
func (s *Store) Swap(path string) error {
	f, err := os.Open(path)
	if err != nil {
		s.log.Warn("eval weights unavailable, keeping previous network", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("eval: open %q: %w", path, err)
	}
	defer f.Close()

	net, err := Load(f)
	if err != nil {
		s.log.Warn("eval weights malformed, keeping previous network", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("eval: load %q: %w", path, err)
	}
	s.net.Store(net)
	s.log.Info("eval weights loaded", zap.String("path", path))
	return nil
}

// Evaluate scores b from the side-to-move's perspective, using the current
// network's accumulators if loaded, else the material-only fallback.
// Workers that already maintain per-ply accumulators should call
// Network.Evaluate directly instead; this entry point is for callers
// without incremental state (UCI `eval`, tests, selfplay bootstrapping).
func (s *Store) Evaluate(b *board.Board) int {
	net := s.Current()
	if net == nil {
		return Material(b)
	}
	var pa PerspectiveAccumulator
	net.Refresh(b, board.White, &pa[board.White])
	net.Refresh(b, board.Black, &pa[board.Black])
	return net.Evaluate(b.SideToMove, &pa)
}
