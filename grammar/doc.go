/*
Package grammar implements the table model of a compiled grammar.

A compiled grammar consists of a table of symbols, a table of rules, the states
of a DFA for recognizing terminals, and the states of an LALR(1) automaton for
recognizing rules. All table rows are owned by a Grammar and refer to each
other by pointer; identity of rows is identity of pointers. Mixing rows of two
different grammars is a usage error.

Grammars are immutable after construction. They are built in two phases by a
Builder: first all tables are allocated, then rows are filled in by index,
with forward references between tables allowed. Only after all rows are
present, Builder.Build resolves references and hands out the immutable
Grammar. This is what table loaders (see package cgt) do:

	b := grammar.NewBuilder()
	b.SetTableCounts(grammar.TableCounts{Symbols: 3, ...})
	b.SetSymbol(0, "EOF", grammar.End)
	...
	g, err := b.Build()

Grammars may be shared between any number of concurrent lexers and parsers.
Derived data (rules grouped by head symbol, the reverse transitions of the
DFA) is computed lazily, at most once per grammar.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gold.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("gold.grammar")
}
