package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kestrel-engine/kestrel/book"
	"github.com/kestrel-engine/kestrel/board"
	"github.com/kestrel-engine/kestrel/eval"
	"github.com/kestrel-engine/kestrel/evalcache"
	"github.com/kestrel-engine/kestrel/internal/config"
	"github.com/kestrel-engine/kestrel/search"
	"github.com/kestrel-engine/kestrel/tt"
)

// ErrQuit is returned by Execute for the `quit` command, grounded on
// zurichess/uci.go's errQuit sentinel.
var ErrQuit = errors.New("quit")

const maxMultiPV = 256

// uciReporter renders search.Info as UCI `info` lines to stdout, grounded
// on zurichess/uci.go's uciLogger, adapted to search.Info's fields and to
// the mate-score convention of tt.MateValue/tt.MateBound instead of the
// teacher's KnownWinScore/KnownLossScore constants.
type uciReporter struct {
	start time.Time
	buf   *bytes.Buffer
}

func newUCIReporter() *uciReporter { return &uciReporter{buf: &bytes.Buffer{}} }

func (r *uciReporter) BeginSearch() {
	r.start = time.Now()
	r.buf.Reset()
}

func (r *uciReporter) EndSearch() {}

func (r *uciReporter) Info(i search.Info) {
	r.buf.Reset()
	fmt.Fprintf(r.buf, "info depth %d seldepth %d multipv %d ", i.Depth, i.SelDepth, i.MultiPV)

	switch {
	case i.Score >= tt.MateBound:
		fmt.Fprintf(r.buf, "score mate %d ", (tt.MateValue-i.Score+1)/2)
	case i.Score <= -tt.MateBound:
		fmt.Fprintf(r.buf, "score mate %d ", (-tt.MateValue-i.Score)/2)
	default:
		fmt.Fprintf(r.buf, "score cp %d ", i.Score)
	}

	elapsed := time.Since(r.start)
	if elapsed <= 0 {
		elapsed = time.Microsecond
	}
	millis := uint64(elapsed / time.Millisecond)
	nps := i.Nodes * uint64(time.Second) / uint64(elapsed)
	fmt.Fprintf(r.buf, "nodes %d time %d nps %d pv", i.Nodes, millis, nps)
	for _, m := range i.PV {
		fmt.Fprintf(r.buf, " %s", m.UCI())
	}
	r.buf.WriteByte('\n')

	os.Stdout.Write(r.buf.Bytes())
}

// UCI implements the protocol loop, grounded on zurichess/uci.go's UCI
// struct and Execute dispatch, generalized over this engine's Board/Engine
// API and extended with the BookFile/EvalFile/aspdelta/aspmindepth/
// lmrcoeff/MoveOverhead options spec.md §6 lists.
type UCI struct {
	cfg config.Config
	log *zap.Logger

	table     *tt.Table
	evalCache *evalcache.Cache
	evalStore *eval.Store
	engine    *search.Engine
	reporter  *uciReporter
	book      *book.Book

	root    board.Board
	history []uint64
	multiPV int

	idle   chan struct{}
	ponder chan struct{}
}

// NewUCI builds a UCI session seeded from cfg, grounded on
// zurichess/uci.go's NewUCI.
func NewUCI(cfg config.Config, log *zap.Logger) *UCI {
	table := tt.New(cfg.UCI.HashMB)
	ec := evalcache.New()
	es := eval.NewStore(log)
	if cfg.UCI.EvalFile != "" {
		if err := es.Swap(cfg.UCI.EvalFile); err != nil {
			log.Warn("uci: eval file from config unavailable", zap.Error(err))
		}
	}

	engine := search.NewEngine(table, ec, es, log)
	engine.SetMoveOverhead(cfg.UCI.MoveOverhead())
	engine.SetAspirationParams(cfg.UCI.AspMinDepth, cfg.UCI.AspDelta)
	search.SetLMRCoeff(cfg.UCI.LMRCoeff)
	reporter := newUCIReporter()
	engine.SetReporter(reporter)

	u := &UCI{
		cfg:       cfg,
		log:       log,
		table:     table,
		evalCache: ec,
		evalStore: es,
		engine:    engine,
		reporter:  reporter,
		root:      board.StartPos(),
		multiPV:   cfg.UCI.MultiPV,
		idle:      make(chan struct{}, 1),
		ponder:    make(chan struct{}, 1),
	}
	if cfg.UCI.BookFile != "" {
		if bk, err := book.Open(cfg.UCI.BookFile, log); err != nil {
			log.Warn("uci: book file from config unavailable", zap.Error(err))
		} else {
			u.book = bk
		}
	}
	return u
}

var reCmd = regexp.MustCompile(`^[[:word:]]+\b`)

// Execute parses and runs one line of UCI input.
func (u *UCI) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	cmd := reCmd.FindString(line)
	if cmd == "" {
		return fmt.Errorf("kestrel: invalid command line %q", line)
	}

	switch cmd {
	case "isready":
		fmt.Println("readyok")
		return nil
	case "quit":
		if u.book != nil {
			u.book.Close()
		}
		return ErrQuit
	case "stop":
		return u.stop()
	case "uci":
		return u.uci()
	case "ponderhit":
		return u.ponderhit()
	}

	// Every remaining command expects the engine to be idle.
	u.idle <- struct{}{}
	<-u.idle

	switch cmd {
	case "ucinewgame":
		u.table.Clear()
		u.evalCache.Clear()
		return nil
	case "position":
		return u.position(line)
	case "go":
		return u.goCmd(line)
	case "setoption":
		return u.setoption(line)
	default:
		return fmt.Errorf("kestrel: unhandled command %q", cmd)
	}
}

func (u *UCI) uci() error {
	fmt.Printf("id name kestrel %s\n", buildVersion)
	fmt.Printf("id author the kestrel engine contributors\n\n")
	fmt.Printf("option name Hash type spin default %d min 1 max 4096\n", u.cfg.UCI.HashMB)
	fmt.Printf("option name Clear Hash type button\n")
	fmt.Printf("option name MultiPV type spin default %d min 1 max %d\n", u.multiPV, maxMultiPV)
	fmt.Printf("option name EvalFile type string default %s\n", u.cfg.UCI.EvalFile)
	fmt.Printf("option name BookFile type string default %s\n", u.cfg.UCI.BookFile)
	fmt.Printf("option name aspdelta type spin default %d min 1 max 1000\n", u.cfg.UCI.AspDelta)
	fmt.Printf("option name aspmindepth type spin default %d min 1 max 64\n", u.cfg.UCI.AspMinDepth)
	fmt.Printf("option name lmrcoeff type string default %v\n", u.cfg.UCI.LMRCoeff)
	fmt.Printf("option name MoveOverhead type spin default %d min 0 max 5000\n", u.cfg.UCI.MoveOverheadMS)
	fmt.Printf("option name Ponder type check default true\n")
	fmt.Println("uciok")
	return nil
}

func (u *UCI) position(line string) error {
	args := strings.Fields(line)[1:]
	if len(args) == 0 {
		return fmt.Errorf("kestrel: expected argument for 'position'")
	}

	var b board.Board
	i := 0
	var err error
	switch args[0] {
	case "startpos":
		b = board.StartPos()
		i = 1
	case "fen":
		i = 1
		for i < len(args) && args[i] != "moves" {
			i++
		}
		err = b.SetFEN(strings.Join(args[1:i], " "))
	default:
		err = fmt.Errorf("kestrel: unknown position command %q", args[0])
	}
	if err != nil {
		return err
	}

	history := []uint64{b.Key}
	if i < len(args) {
		if args[i] != "moves" {
			return fmt.Errorf("kestrel: expected 'moves', got %q", args[i])
		}
		for _, s := range args[i+1:] {
			m, err := board.ParseUCI(&b, s)
			if err != nil {
				return err
			}
			b, _ = b.DoMove(m)
			history = append(history, b.Key)
		}
	}

	u.root = b
	u.history = history
	return nil
}

func (u *UCI) goCmd(line string) error {
	args := strings.Fields(line)[1:]

	for i := 0; i < len(args); i++ {
		if args[i] == "perft" && i+1 < len(args) {
			depth, _ := strconv.Atoi(args[i+1])
			u.runPerft(depth)
			return nil
		}
	}

	limits := search.Limits{MultiPV: u.multiPV, MinDepth: 1}
	ponder := false
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "ponder":
			ponder = true
		case "infinite":
			limits.Infinite = true
		case "wtime":
			i++
			t, _ := strconv.Atoi(args[i])
			limits.Time[board.White] = time.Duration(t) * time.Millisecond
		case "btime":
			i++
			t, _ := strconv.Atoi(args[i])
			limits.Time[board.Black] = time.Duration(t) * time.Millisecond
		case "winc":
			i++
			t, _ := strconv.Atoi(args[i])
			limits.Inc[board.White] = time.Duration(t) * time.Millisecond
		case "binc":
			i++
			t, _ := strconv.Atoi(args[i])
			limits.Inc[board.Black] = time.Duration(t) * time.Millisecond
		case "movetime":
			i++
			t, _ := strconv.Atoi(args[i])
			limits.MoveTime = time.Duration(t) * time.Millisecond
		case "depth":
			i++
			d, _ := strconv.Atoi(args[i])
			limits.Depth = d
		case "nodes":
			i++
			n, _ := strconv.Atoi(args[i])
			limits.Nodes = uint64(n)
		case "movestogo", "mate", "searchmoves":
			i++
		}
	}

	if bk := u.probeBook(); bk != board.MoveNone {
		fmt.Printf("bestmove %s\n", bk.UCI())
		return nil
	}

	if ponder {
		u.ponder <- struct{}{}
	}

	u.engine.SetPosition(u.root, u.history)
	u.idle <- struct{}{}
	go u.play(limits, ponder)
	return nil
}

// probeBook returns a book move for the current root position, or
// board.MoveNone if no book is loaded or the position isn't on file.
func (u *UCI) probeBook() board.Move {
	if u.book == nil {
		return board.MoveNone
	}
	if m, ok := u.book.Probe(u.root.Key); ok {
		return m
	}
	return board.MoveNone
}

func (u *UCI) play(limits search.Limits, ponder bool) {
	result := u.engine.Search(limits)

	// If pondering was requested it will block until ponderhit clears the
	// channel; otherwise this is a no-op.
	u.ponder <- struct{}{}
	<-u.ponder

	if result.BestMove.IsNone() {
		fmt.Println("bestmove (none)")
	} else if !result.Ponder.IsNone() {
		fmt.Printf("bestmove %s ponder %s\n", result.BestMove.UCI(), result.Ponder.UCI())
	} else {
		fmt.Printf("bestmove %s\n", result.BestMove.UCI())
	}

	<-u.idle
}

func (u *UCI) ponderhit() error {
	<-u.ponder
	return nil
}

func (u *UCI) stop() error {
	u.engine.Stop()
	select {
	case <-u.ponder:
	default:
	}
	u.idle <- struct{}{}
	<-u.idle
	return nil
}

var reOption = regexp.MustCompile(`^setoption\s+name\s+(.+?)(\s+value\s+(.*))?$`)

func (u *UCI) setoption(line string) error {
	m := reOption.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("kestrel: invalid setoption arguments")
	}
	name := m[1]

	if name == "Clear Hash" {
		u.table.Clear()
		return nil
	}
	if len(m) < 3 || m[3] == "" {
		return fmt.Errorf("kestrel: missing setoption value for %q", name)
	}
	value := m[3]

	switch name {
	case "Hash":
		mb, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		u.table.Resize(mb)
		return nil
	case "MultiPV":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		if n < 1 || n > maxMultiPV {
			return fmt.Errorf("kestrel: MultiPV must be between 1 and %d", maxMultiPV)
		}
		u.multiPV = n
		return nil
	case "EvalFile":
		return u.evalStore.Swap(value)
	case "BookFile":
		if u.book != nil {
			u.book.Close()
			u.book = nil
		}
		bk, err := book.Open(value, u.log)
		if err != nil {
			return err
		}
		u.book = bk
		return nil
	case "aspdelta":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		u.cfg.UCI.AspDelta = n
		u.engine.SetAspirationParams(u.cfg.UCI.AspMinDepth, n)
		return nil
	case "aspmindepth":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		u.cfg.UCI.AspMinDepth = n
		u.engine.SetAspirationParams(n, u.cfg.UCI.AspDelta)
		return nil
	case "lmrcoeff":
		k, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		search.SetLMRCoeff(k)
		return nil
	case "MoveOverhead":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		u.engine.SetMoveOverhead(time.Duration(ms) * time.Millisecond)
		return nil
	case "Ponder":
		return nil
	default:
		return fmt.Errorf("kestrel: unhandled option %q", name)
	}
}

// runPerft runs a plain move-count perft split one ply deep, printing each
// root move's subtree count followed by the total, matching the
// conventional UCI `go perft N` divide output the teacher's perft tool
// produces in its split mode.
func (u *UCI) runPerft(depth int) {
	if depth < 1 {
		fmt.Println("Nodes searched: 0")
		return
	}
	start := time.Now()
	var total uint64
	moves := u.root.GenerateMoves(board.StageLegal, nil)
	for _, m := range moves {
		child, _ := u.root.DoMove(m)
		n := child.Perft(depth - 1)
		total += n
		fmt.Printf("%s: %d\n", m.UCI(), n)
	}
	fmt.Printf("\nNodes searched: %d\n", total)
	fmt.Fprintf(os.Stderr, "perft depth %d: %d nodes in %s\n", depth, total, time.Since(start))
}
