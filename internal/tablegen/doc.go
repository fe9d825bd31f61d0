/*
Package tablegen generates compiled grammar tables from a small grammar
description. It is used to create grammars for tests and demos; it is not a
replacement for a full grammar compiler.

# Building a Grammar

Grammars are specified using a grammar builder object. Clients declare
terminals with a regular expression, then add rules, consisting of
non-terminal symbols and terminals. Grammars may contain epsilon-productions.

Example:

	b := tablegen.NewGrammarBuilder("Signed Variables")
	b.Terminal("Id", "[a-z]+")
	b.WhiteSpace("( |\t)+")
	b.LHS("Var").N("Sign").T("Id").End()  // <Var>  ::= <Sign> Id
	b.LHS("Sign").T("+").End()            // <Sign> ::= '+'
	b.LHS("Sign").T("-").End()            // <Sign> ::= '-'
	b.LHS("Sign").Epsilon()               // <Sign> ::=
	g, err := b.Grammar()

Terminals used in rules without declaration are treated as literals.
The first left-hand side symbol is the start symbol.

# Table Construction

Terminal patterns are compiled to a DFA by lexmachine. Longer matches win;
for matches of equal length, terminals declared first take precedence.
Parser tables are SLR(1): a characteristic finite state machine (CFSM) is
built from the grammar's LR(0) items, and reduce actions are entered for the
FOLLOW-set of a rule's left-hand side. Grammars with conflicts are rejected.

The resulting tables use the same symbol kinds and layout as tables
produced by an external grammar compiler: symbol 0 is the end of input,
symbol 1 is the error symbol, DFA state 0 and LALR state 0 are the initial
states.

___________________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package tablegen

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gold.tablegen'.
func tracer() tracing.Trace {
	return tracing.Select("gold.tablegen")
}
