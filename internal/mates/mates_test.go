// Package mates runs short tactical sanity checks — does the search find
// a known forced mate at a shallow depth — against small EPD fixtures
// under testdata/.
package mates

import (
	"bufio"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/kestrel-engine/kestrel/eval"
	"github.com/kestrel-engine/kestrel/evalcache"
	"github.com/kestrel-engine/kestrel/notation"
	"github.com/kestrel-engine/kestrel/search"
	"github.com/kestrel-engine/kestrel/tt"
)

func helper(t *testing.T, path string, depth, allowedFailures int) {
	t.Helper()
	fin, err := os.Open(path)
	if err != nil {
		t.Fatalf("cannot open %s for reading: %v", path, err)
	}
	defer fin.Close()

	failed, total := 0, 0
	buf := bufio.NewReader(fin)
	for {
		line, err := buf.ReadString('\n')
		if err != nil && err != io.EOF {
			t.Fatal(err)
		}
		if err == io.EOF && line == "" {
			break
		}

		line = strings.SplitN(line, "#", 2)[0]
		line = strings.TrimSpace(line)
		if line != "" {
			epd, perr := notation.ParseEPD(line)
			if perr != nil {
				t.Fatal(perr)
			}

			table := tt.New(1)
			ec := evalcache.New()
			es := eval.NewStore(nil)
			engine := search.NewEngine(table, ec, es, nil)
			engine.SetPosition(epd.Position, nil)
			result := engine.Search(search.Limits{Depth: depth})

			solved := false
			for _, want := range epd.BestMove {
				if result.BestMove == want {
					solved = true
					break
				}
			}

			total++
			if !solved {
				failed++
				t.Logf("failed %s", epd.Id)
				t.Logf("expected one of %v, got %v", epd.BestMove, result.BestMove)
			}
		}

		if err == io.EOF {
			break
		}
	}

	if failed > allowedFailures {
		t.Errorf("failed %d out of %d (allowed %d)", failed, total, allowedFailures)
	}
}

func TestMateIn1(t *testing.T) {
	helper(t, "testdata/mateIn1.epd", 3, 0)
}
