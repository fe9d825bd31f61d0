/*
Command goldrepl provides an interactive command line tool for grammar
tables. It loads a compiled grammar table file and parses every line the user
enters, printing the parse tree or, in token mode, the tokens of the line.
Without a table file, goldrepl uses a built-in grammar for arithmetic
expressions.

	goldrepl [-trace Info] [-tokens] [-init file] [grammar.cgt]

Lines starting with a colon are commands:

	:tokens      toggle token mode
	:grammar     print information about the grammar
	:rules       list the rules of the grammar
	:quit        leave goldrepl

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gold.repl'
func tracer() tracing.Trace {
	return tracing.Select("gold.repl")
}
