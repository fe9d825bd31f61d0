package tablegen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/npillmayer/gold/grammar"
)

// symbol is a grammar symbol during table generation.
type symbol struct {
	name    string
	kind    grammar.SymbolKind
	pattern string // regular expression for terminals
	id      int    // index in the symbol table, assigned when generating
}

func (s *symbol) isTerminal() bool {
	return s.kind != grammar.Nonterminal
}

func (s *symbol) String() string {
	if s.kind == grammar.Nonterminal {
		return "<" + s.name + ">"
	}
	return s.name
}

// production is a rule during table generation.
type production struct {
	serial int
	lhs    *symbol
	rhs    []*symbol
}

func (p *production) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d: %s ::=", p.serial, p.lhs)
	for _, sym := range p.rhs {
		b.WriteByte(' ')
		b.WriteString(sym.String())
	}
	return b.String()
}

// GrammarBuilder collects terminals and rules of a grammar.
// The methods return the builder, so calls may be chained.
type GrammarBuilder struct {
	name          string
	caseSensitive bool
	terminals     []*symbol // in order of declaration
	nonterminals  []*symbol // in order of first appearance
	rules         []*production
	err           error
}

// NewGrammarBuilder gets a new grammar builder, given the name of the grammar
// to build.
func NewGrammarBuilder(name string) *GrammarBuilder {
	b := &GrammarBuilder{name: name, caseSensitive: true}
	b.terminals = []*symbol{
		{name: "EOF", kind: grammar.End},
		{name: "Error", kind: grammar.Error},
	}
	return b
}

// CaseInsensitive makes the DFA of the grammar ignore letter case.
func (b *GrammarBuilder) CaseInsensitive() *GrammarBuilder {
	b.caseSensitive = false
	return b
}

func (b *GrammarBuilder) declare(name string, kind grammar.SymbolKind, pattern string) *symbol {
	if t := b.terminal(name); t != nil {
		if b.err == nil {
			b.err = fmt.Errorf("terminal %q declared twice", name)
		}
		return t
	}
	t := &symbol{name: name, kind: kind, pattern: pattern}
	b.terminals = append(b.terminals, t)
	return t
}

// Terminal declares a terminal, given its name and a regular expression.
func (b *GrammarBuilder) Terminal(name string, pattern string) *GrammarBuilder {
	b.declare(name, grammar.Terminal, pattern)
	return b
}

// Literal declares a terminal matching exactly the string lit.
func (b *GrammarBuilder) Literal(lit string) *GrammarBuilder {
	b.declare(lit, grammar.Terminal, quote(lit))
	return b
}

// WhiteSpace declares a pattern for input to be skipped by the parser.
func (b *GrammarBuilder) WhiteSpace(pattern string) *GrammarBuilder {
	b.declare("Whitespace", grammar.WhiteSpace, pattern)
	return b
}

// LineComment declares a comment extending from start to the end of the line.
func (b *GrammarBuilder) LineComment(start string) *GrammarBuilder {
	b.declare("Comment Line", grammar.CommentLine, quote(start))
	return b
}

// BlockComment declares a comment enclosed in start and end.
func (b *GrammarBuilder) BlockComment(start, end string) *GrammarBuilder {
	b.declare("Comment Start", grammar.CommentStart, quote(start))
	b.declare("Comment End", grammar.CommentEnd, quote(end))
	return b
}

// quote escapes every character of a literal which is not a letter or digit.
func quote(lit string) string {
	var b strings.Builder
	for _, r := range lit {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (b *GrammarBuilder) terminal(name string) *symbol {
	for _, t := range b.terminals {
		if t.name == name {
			return t
		}
	}
	return nil
}

func (b *GrammarBuilder) nonterminal(name string) *symbol {
	for _, n := range b.nonterminals {
		if n.name == name {
			return n
		}
	}
	n := &symbol{name: name, kind: grammar.Nonterminal}
	b.nonterminals = append(b.nonterminals, n)
	return n
}

// LHS starts a rule given the name of the non-terminal on its left side.
func (b *GrammarBuilder) LHS(name string) *RuleBuilder {
	return &RuleBuilder{b: b, rule: &production{lhs: b.nonterminal(name)}}
}

// RuleBuilder adds symbols to the right side of a rule.
type RuleBuilder struct {
	b    *GrammarBuilder
	rule *production
}

// N appends a non-terminal.
func (rb *RuleBuilder) N(name string) *RuleBuilder {
	rb.rule.rhs = append(rb.rule.rhs, rb.b.nonterminal(name))
	return rb
}

// T appends a terminal. Undeclared terminals are declared as literals.
func (rb *RuleBuilder) T(name string) *RuleBuilder {
	t := rb.b.terminal(name)
	if t == nil {
		t = rb.b.declare(name, grammar.Terminal, quote(name))
	}
	rb.rule.rhs = append(rb.rule.rhs, t)
	return rb
}

// End completes the rule.
func (rb *RuleBuilder) End() *GrammarBuilder {
	rb.rule.serial = len(rb.b.rules)
	rb.b.rules = append(rb.b.rules, rb.rule)
	tracer().Debugf("rule %s", rb.rule)
	return rb.b
}

// Epsilon completes a rule with an empty right side.
func (rb *RuleBuilder) Epsilon() *GrammarBuilder {
	rb.rule.rhs = nil
	return rb.End()
}

// symbols returns the symbol table: terminals first, then non-terminals.
// Symbol IDs are assigned accordingly.
func (b *GrammarBuilder) symbols() []*symbol {
	syms := make([]*symbol, 0, len(b.terminals)+len(b.nonterminals))
	syms = append(syms, b.terminals...)
	syms = append(syms, b.nonterminals...)
	for i, sym := range syms {
		sym.id = i
	}
	return syms
}

// Grammar generates the tables and returns the compiled grammar.
func (b *GrammarBuilder) Grammar() (*grammar.Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.rules) == 0 {
		return nil, fmt.Errorf("grammar %q has no rules", b.name)
	}
	syms := b.symbols()
	for _, n := range b.nonterminals {
		if !b.hasRules(n) {
			return nil, fmt.Errorf("non-terminal %s has no rules", n)
		}
	}
	lex, err := compileDFA(b.terminals)
	if err != nil {
		return nil, err
	}
	ga := analyse(b, syms)
	cfsm := buildCFSM(ga)
	actions, err := buildActionTable(ga, cfsm)
	if err != nil {
		return nil, err
	}
	return b.emit(syms, lex, cfsm, actions)
}

func (b *GrammarBuilder) hasRules(n *symbol) bool {
	for _, r := range b.rules {
		if r.lhs == n {
			return true
		}
	}
	return false
}

// emit stages all tables in a grammar.Builder.
func (b *GrammarBuilder) emit(syms []*symbol, lex *lexDFA, cfsm *CFSM, actions *actionTable) (*grammar.Grammar, error) {
	gb := grammar.NewBuilder()
	var errs errList
	errs.add(gb.SetParameters(grammar.Parameters{
		Name:          b.name,
		Version:       "1.0",
		Author:        "tablegen",
		About:         fmt.Sprintf("generated SLR(1) tables for %s", b.name),
		CaseSensitive: b.caseSensitive,
		StartSymbol:   b.rules[0].lhs.id,
	}))
	errs.add(gb.SetTableCounts(grammar.TableCounts{
		Symbols:    len(syms),
		CharSets:   len(lex.charsets),
		Rules:      len(b.rules),
		DfaStates:  len(lex.states),
		LalrStates: cfsm.states.Size(),
	}))
	errs.add(gb.SetInitialStates(0, int(cfsm.S0.ID)))
	for _, sym := range syms {
		errs.add(gb.SetSymbol(sym.id, sym.name, sym.kind))
	}
	for i, cs := range lex.charsets {
		errs.add(gb.SetCharSet(i, cs))
	}
	for _, r := range b.rules {
		body := make([]int, len(r.rhs))
		for i, sym := range r.rhs {
			body[i] = sym.id
		}
		errs.add(gb.SetRule(r.serial, r.lhs.id, body))
	}
	for i, s := range lex.states {
		accept := -1
		if s.accept >= 0 {
			accept = lex.terminals[s.accept].id
		}
		errs.add(gb.SetDfaState(i, accept, s.edges))
	}
	for _, x := range cfsm.states.Values() {
		state := x.(*CFSMState)
		errs.add(gb.SetLalrState(int(state.ID), actions.row(state.ID)))
	}
	if errs.err != nil {
		return nil, errs.err
	}
	return gb.Build()
}

type errList struct {
	err error
}

func (l *errList) add(err error) {
	if l.err == nil {
		l.err = err
	}
}
