// Command kestrel is the UCI entry point, grounded on
// original_source/main.cpp/uci.cpp's top-level dispatch and the teacher's
// zurichess/main.go stdin read loop.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/kestrel-engine/kestrel/internal/config"
	"github.com/kestrel-engine/kestrel/internal/obs"
)

var (
	buildVersion = "(devel)"
	configPath   = flag.String("config", "", "path to a TOML config file seeding option defaults")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "kestrel: loading config:", err)
			os.Exit(1)
		}
	}

	log := obs.New(obs.Debug())
	defer log.Sync()

	uci := NewUCI(cfg, log)

	bio := bufio.NewReader(os.Stdin)
	for {
		line, _, err := bio.ReadLine()
		if err != nil {
			break
		}
		if err := uci.Execute(string(line)); err != nil {
			if err == ErrQuit {
				break
			}
			fmt.Fprintln(os.Stderr, "kestrel: error:", err)
		}
	}
}
