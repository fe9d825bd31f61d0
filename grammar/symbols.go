package grammar

import (
	"fmt"
	"strings"
	"unicode"
)

// SymbolKind categorizes grammar symbols. The numeric values are part of the
// binary table format.
type SymbolKind int

// Kinds of symbols, as found in compiled grammar tables.
const (
	Nonterminal  SymbolKind = 0 // symbol on the left side of rules
	Terminal     SymbolKind = 1 // regular terminal, recognized by the DFA
	WhiteSpace   SymbolKind = 2 // terminal which is ignored by the parser
	End          SymbolKind = 3 // end of input
	CommentStart SymbolKind = 4 // start of a block comment
	CommentEnd   SymbolKind = 5 // end of a block comment
	CommentLine  SymbolKind = 6 // start of a comment extending to the end of the line
	Error        SymbolKind = 7 // pseudo-terminal for unrecognized input
)

var kindNames = [...]string{
	"Nonterminal", "Terminal", "WhiteSpace", "End",
	"CommentStart", "CommentEnd", "CommentLine", "Error",
}

func (k SymbolKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
	return kindNames[k]
}

// --- Symbols ---------------------------------------------------------------

// Symbol is a terminal or non-terminal of a grammar. Symbols are immutable
// and are identified by their index within the owning grammar.
type Symbol struct {
	g     *Grammar
	index int
	name  string
	kind  SymbolKind
}

// Grammar returns the grammar owning this symbol.
func (s *Symbol) Grammar() *Grammar {
	return s.g
}

// Index returns the position of this symbol in the symbol table.
func (s *Symbol) Index() int {
	return s.index
}

// Name returns the name of the symbol, without any decoration.
func (s *Symbol) Name() string {
	return s.name
}

// Kind returns the kind of the symbol.
func (s *Symbol) Kind() SymbolKind {
	return s.kind
}

// IsTerminal is true for every kind of symbol except non-terminals.
func (s *Symbol) IsTerminal() bool {
	return s.kind != Nonterminal
}

// String returns the symbol in the notation used for rules:
//
//	<Expression>      non-terminal
//	Integer           terminal
//	'+'               terminal with a name that needs quoting
//	(EOF)             special terminals (end, error, whitespace, comments)
func (s *Symbol) String() string {
	if s == nil {
		return "<nil>"
	}
	switch s.kind {
	case Nonterminal:
		return "<" + s.name + ">"
	case Terminal:
		if needsQuotes(s.name) {
			return "'" + strings.ReplaceAll(s.name, "'", "''") + "'"
		}
		return s.name
	}
	return "(" + s.name + ")"
}

func needsQuotes(name string) bool {
	if name == "" {
		return true
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return true
		}
	}
	return false
}

// --- Character sets --------------------------------------------------------

// CharSet is a set of characters labelling edges of the DFA.
type CharSet struct {
	index int
	chars string
}

// Index returns the position of this set in the character set table.
func (cs *CharSet) Index() int {
	return cs.index
}

// Chars returns the characters of the set, in table order.
func (cs *CharSet) Chars() string {
	return cs.chars
}

// Contains checks if r is a member of the set.
func (cs *CharSet) Contains(r rune) bool {
	return strings.ContainsRune(cs.chars, r)
}

// --- Rules -----------------------------------------------------------------

// Rule is a production of a grammar:
//
//	<Head> ::= X1 ... Xn     with Xi being terminals or non-terminals
type Rule struct {
	g      *Grammar
	index  int
	head   *Symbol
	body   []*Symbol
	single bool // body consists of exactly one non-terminal
}

// Grammar returns the grammar owning this rule.
func (r *Rule) Grammar() *Grammar {
	return r.g
}

// Index returns the position of this rule in the rule table.
func (r *Rule) Index() int {
	return r.index
}

// Head returns the non-terminal on the left side of the rule.
func (r *Rule) Head() *Symbol {
	return r.head
}

// Symbols returns the body of the rule. Clients must not modify the slice.
func (r *Rule) Symbols() []*Symbol {
	return r.body
}

// Symbol returns the i-th symbol of the body.
func (r *Rule) Symbol(i int) *Symbol {
	return r.body[i]
}

// SymbolCount returns the length of the body.
func (r *Rule) SymbolCount() int {
	return len(r.body)
}

// ContainsOneNonterminal is true if the body consists of exactly one
// non-terminal. Reductions for such rules are candidates for trimming.
func (r *Rule) ContainsOneNonterminal() bool {
	return r.single
}

// String returns the rule in BNF notation, e.g.
//
//	<Expression> ::= <Expression> '+' <Mult Exp>
func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString(r.head.String())
	b.WriteString(" ::=")
	for _, sym := range r.body {
		b.WriteByte(' ')
		b.WriteString(sym.String())
	}
	return b.String()
}
