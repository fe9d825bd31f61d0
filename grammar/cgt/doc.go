/*
Package cgt reads and writes compiled grammar tables in the binary format of
the GOLD parsing system (version 1.0, file extension ".cgt").

A table file starts with the header "GOLD Parser Tables/v1.0", encoded as a
zero-terminated UTF-16LE string. It continues with a sequence of records.
Every record starts with the marker byte 'M', a 16 bit little-endian count of
entries, and the entries themselves. The first entry is a byte identifying
the kind of record:

	'P'  parameters   name, version, author, about, case sensitivity, start symbol
	'T'  table counts symbols, character sets, rules, DFA states, LALR states
	'I'  initial      initial DFA state, initial LALR state
	'S'  symbol       index, name, kind
	'C'  charset      index, characters
	'R'  rule         index, head, (empty), body symbols …
	'D'  DFA state    index, accepting, accept symbol, (empty), edges …
	'L'  LALR state   index, (empty), actions …
	'!'  comment      ignored

Entries are tagged with a type byte: 'E' (empty), 'I' (16 bit unsigned
integer), 'S' (zero-terminated UTF-16LE string), 'B' (boolean byte), and 'b'
(byte). Byte entries may stand in for integers with small values: packing
a table file replaces every integer entry with a value up to 255 by a byte
entry, which results in smaller files decoding to identical tables.

Load and LoadFile decode a table file into a grammar.Grammar. Loading is all
or nothing: any format error aborts loading and no grammar is returned.
Encode writes a grammar in table format, Pack re-packs an encoded table
stream.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package cgt

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gold.cgt'.
func tracer() tracing.Trace {
	return tracing.Select("gold.cgt")
}
