/*
Command goldpack packs compiled grammar table files in place.

	goldpack [-trace Error] grammar.cgt

The table file is loaded and re-encoded with integer entries below 256
written as bytes. The file is overwritten only if the packed tables are
strictly smaller. goldpack exits with status 1 if no file is given or the
file cannot be read, packed or written.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"

	"github.com/npillmayer/gold/grammar/cgt"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

// tracer traces with key 'gold.cgt'
func tracer() tracing.Trace {
	return tracing.Select("gold.cgt")
}

func main() {
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: goldpack [-trace level] <grammar table file>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel))
	os.Exit(run(flag.Args(), os.Stderr))
}

// run packs the table file given as the single argument and returns the
// exit status.
func run(args []string, errout io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errout, "goldpack: expecting the name of a grammar table file")
		return 1
	}
	result, err := cgt.PackFile(args[0])
	if err != nil {
		fmt.Fprintf(errout, "goldpack: %v\n", err)
		return 1
	}
	report(result)
	return 0
}

func report(result cgt.PackResult) {
	if !result.Written {
		pterm.Info.Printf("%s: %d bytes, cannot be packed any further\n", result.Path, result.Before)
		return
	}
	saved := 100 * float64(result.Before-result.After) / float64(result.Before)
	pterm.Success.Printf("%s: packed from %d to %d bytes (%.1f%% smaller)\n",
		result.Path, result.Before, result.After, saved)
}
