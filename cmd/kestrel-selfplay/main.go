// Command kestrel-selfplay runs the self-play driver, writing packed game
// chains to disk and a companion .hash file, per spec.md §6's
// "selfplay <out> <num_pos> <min_depth> <move_time> <multipv> <max_ld_moves>
// <threads>" CLI verb. Grounded on original_source/cli.cpp's "selfplay"
// subcommand and main.cpp's top-level dispatch.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kestrel-engine/kestrel/internal/config"
	"github.com/kestrel-engine/kestrel/internal/obs"
	"github.com/kestrel-engine/kestrel/selfplay"
)

var configPath = flag.String("config", "", "path to a TOML config file seeding defaults")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 7 {
		fmt.Fprintln(os.Stderr, "usage: kestrel-selfplay <out> <num_pos> <min_depth> <move_time_ms> <multipv> <max_ld_moves> <threads>")
		os.Exit(1)
	}

	out := args[0]
	numPos := mustAtoi(args[1])
	minDepth := mustAtoi(args[2])
	moveTimeMS := mustAtoi(args[3])
	multiPV := mustAtoi(args[4])
	maxLDMoves := mustAtoi(args[5])
	threads := mustAtoi(args[6])

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "kestrel-selfplay:", err)
			os.Exit(1)
		}
	}

	log := obs.New(obs.Debug())
	defer log.Sync()

	reg := prometheus.NewRegistry()
	metrics := selfplay.NewMetrics(reg)
	if cfg.Selfplay.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Selfplay.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	driver, err := selfplay.NewDriver(selfplay.Config{
		NumPositions: numPos,
		MinDepth:     minDepth,
		MoveTime:     time.Duration(moveTimeMS) * time.Millisecond,
		MultiPV:      multiPV,
		MaxLDMoves:   maxLDMoves,
		Threads:      threads,
		HashMB:       cfg.UCI.HashMB,
		EvalFile:     cfg.UCI.EvalFile,
	}, log, metrics)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kestrel-selfplay:", err)
		os.Exit(1)
	}

	f, err := os.Create(out + ".bin")
	if err != nil {
		fmt.Fprintln(os.Stderr, "kestrel-selfplay:", err)
		os.Exit(1)
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hash, err := driver.Run(ctx, f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kestrel-selfplay:", err)
		os.Exit(1)
	}

	hf, err := os.Create(out + ".hash")
	if err != nil {
		fmt.Fprintln(os.Stderr, "kestrel-selfplay:", err)
		os.Exit(1)
	}
	defer hf.Close()
	fmt.Fprintf(hf, "%d\n", hash)

	color.Green("wrote %s.bin / %s.hash\n", out, out)
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel-selfplay: bad integer argument %q\n", s)
		os.Exit(1)
	}
	return n
}
