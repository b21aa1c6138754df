package selfplay

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kestrel-engine/kestrel/eval"
	"github.com/kestrel-engine/kestrel/pack"
	"github.com/kestrel-engine/kestrel/tt"
)

// Config bundles one self-play run's parameters, mirroring
// original_source/selfplay.cpp's selfplay() argument list and spec.md §6's
// `selfplay` CLI verb.
type Config struct {
	NumPositions int
	MinDepth     int
	MoveTime     time.Duration
	MultiPV      int
	MaxLDMoves   int
	Threads      int
	HashMB       int
	EvalFile     string
}

// Metrics are the counters selfplay.Driver publishes, grounded on
// Voskan-arena-cache's Prometheus wiring for background-worker systems.
// Built with a nil Registerer (as NewMetrics(nil) does) they still work,
// just unobserved — useful for tests and for callers that skip the
// `/metrics` endpoint entirely.
type Metrics struct {
	GamesTotal     prometheus.Counter
	PositionsTotal prometheus.Counter
	Adjudications  *prometheus.CounterVec
}

// NewMetrics builds a Metrics set, registering it against reg unless reg is
// nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GamesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kestrel_selfplay_games_total",
			Help: "Self-play games completed.",
		}),
		PositionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kestrel_selfplay_positions_total",
			Help: "Self-play positions recorded.",
		}),
		Adjudications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kestrel_selfplay_adjudications_total",
			Help: "Self-play games completed, by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.GamesTotal, m.PositionsTotal, m.Adjudications)
	}
	return m
}

func outcomeLabel(r pack.GameOutcome) string {
	switch r {
	case pack.WhiteWins:
		return "white"
	case pack.BlackWins:
		return "black"
	default:
		return "draw"
	}
}

type chainResult struct {
	chain pack.Chain
	hash  uint64
}

// Driver runs Config.Threads worker goroutines producing chains into a
// bounded, semaphore-limited queue and a single writer goroutine draining
// it onto the output stream, grounded on selfplay.cpp's Session/Queue/
// writer-thread split (§4.L) and spec.md §5's concurrency model, using
// golang.org/x/sync/errgroup and golang.org/x/sync/semaphore for the Go
// idiom in place of std::thread/condition_variable.
type Driver struct {
	cfg     Config
	log     *zap.Logger
	metrics *Metrics

	table     *tt.Table
	evalStore *eval.Store
}

// NewDriver builds the state every worker's search.Engine shares: one
// lockless TT and one eval.Store, per spec.md §5 ("the transposition table
// is the only shared mutable state in search"). Each worker gets its own
// evalcache.Cache in newWorker.
func NewDriver(cfg Config, log *zap.Logger, metrics *Metrics) (*Driver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}

	es := eval.NewStore(log)
	if cfg.EvalFile != "" {
		if err := es.Swap(cfg.EvalFile); err != nil {
			return nil, fmt.Errorf("selfplay: loading eval file: %w", err)
		}
	}

	return &Driver{
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
		table:     tt.New(cfg.HashMB),
		evalStore: es,
	}, nil
}

// Run drives self-play until at least cfg.NumPositions positions have been
// written to out, then stops every worker and returns the XOR of every
// chain's key hash — the value spec.md §6 says belongs in the companion
// `.hash` file.
func (d *Driver) Run(parent context.Context, out io.Writer) (uint64, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	results := make(chan chainResult, d.cfg.Threads)
	sem := semaphore.NewWeighted(int64(d.cfg.Threads * 4))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < d.cfg.Threads; i++ {
		seed := time.Now().UnixNano() + int64(i)
		g.Go(func() error {
			w := newWorker(seed, d.cfg, d.table, d.evalStore, d.log)
			for {
				if err := sem.Acquire(gctx, 1); err != nil {
					return nil
				}
				chain, hash, err := w.playOneGame()
				if err != nil {
					sem.Release(1)
					d.log.Warn("selfplay: discarding empty sequence", zap.Error(err))
					continue
				}
				select {
				case results <- chainResult{chain: chain, hash: hash}:
				case <-gctx.Done():
					sem.Release(1)
					return nil
				}
			}
		})
	}

	var (
		hash     uint64
		written  int
		writeErr error
	)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		start := time.Now()
		for written < d.cfg.NumPositions {
			select {
			case r := <-results:
				sem.Release(1)
				if _, err := r.chain.WriteTo(out); err != nil {
					writeErr = fmt.Errorf("selfplay: writing chain: %w", err)
					cancel()
					return
				}
				hash ^= r.hash
				written += len(r.chain.Moves)

				d.metrics.GamesTotal.Inc()
				d.metrics.PositionsTotal.Add(float64(len(r.chain.Moves)))
				d.metrics.Adjudications.WithLabelValues(outcomeLabel(r.chain.Result)).Inc()

				d.log.Info("selfplay progress",
					zap.Int("positions", written),
					zap.Int("target", d.cfg.NumPositions),
					zap.Float64("pos_per_sec", float64(written)/time.Since(start).Seconds()),
				)
			case <-ctx.Done():
				return
			}
		}
		cancel()
	}()

	<-writerDone
	cancel()
	waitErr := g.Wait()

	if writeErr != nil {
		return 0, writeErr
	}
	if waitErr != nil && waitErr != context.Canceled {
		return 0, waitErr
	}
	return hash, nil
}
