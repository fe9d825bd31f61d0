/*
Package gold is a table driven parsing engine for precompiled grammars.

Gold loads compiled grammar tables (a DFA for lexing and an LALR(1) automaton
for parsing) from the binary table format of the GOLD parsing system and uses
them to tokenize and parse text incrementally, one step at a time.
Compiling grammars is not part of this module; tables are expected to be
produced by an external grammar compiler. Package structure is as follows:

■ grammar: Package grammar holds the in-memory grammar table model: symbols,
rules, DFA states and LALR states. Package grammar/cgt reads and writes the
binary table format and is able to re-pack table files.

■ buffer: Package buffer implements a character buffer with unbounded lookahead
and marks, used by the lexer for backtracking.

■ lexer: Package lexer implements a longest-match tokenizer driven by a
grammar's DFA.

■ parser: Package parser implements the LALR shift/reduce engine, including
trimming of single-child reductions.

■ semantic: Package semantic provides a registry of semantic actions, which
turns reductions into client-defined values.

The base package contains data types which are used throughout all the other
packages: positions, tokens, reductions and parse messages.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package gold
