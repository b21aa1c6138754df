// Command kestrel-pack bundles the pack-file maintenance verbs spec.md §6
// lists (packval, packmerge, packrecover, packindex, repack) behind one
// argv[1]-dispatched binary, grounded on original_source/cli.cpp's
// enter_cli subcommand switch.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "packval":
		err = runPackval(os.Args[2:])
	case "packmerge":
		err = runPackmerge(os.Args[2:])
	case "packrecover":
		err = runPackrecover(os.Args[2:])
	case "packindex":
		err = runPackindex(os.Args[2:])
	case "repack":
		err = runRepack(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		color.Red("kestrel-pack: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kestrel-pack <packval|packmerge|packrecover|packindex|repack> ...")
	fmt.Fprintln(os.Stderr, "  packval <bin1> <hash1> [<bin2> <hash2> ...]")
	fmt.Fprintln(os.Stderr, "  packmerge <out_bin> <out_hash> <n> <bin1> <hash1> ...")
	fmt.Fprintln(os.Stderr, "  packrecover <in> <out_base>")
	fmt.Fprintln(os.Stderr, "  packindex <pack> <idx>")
	fmt.Fprintln(os.Stderr, "  repack <old_bin> <new_bin>")
}
