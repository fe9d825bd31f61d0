package grammar

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// Usage errors.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAlreadyInitialized = errors.New("table row already initialized")
	ErrCrossGrammar       = errors.New("object belongs to a different grammar")
	ErrIncomplete         = errors.New("grammar tables incomplete")
)

// Grammar is a compiled grammar. It owns all tables; every row of any table
// refers to rows of this grammar only.
type Grammar struct {
	name, version string
	author, about string
	caseSensitive bool
	symbols       []*Symbol
	charsets      []*CharSet
	rules         []*Rule
	dfaStates     []*DfaState
	lalrStates    []*LalrState
	dfaInitial    *DfaState
	lalrInitial   *LalrState
	start         *Symbol
	errorSymbol   *Symbol
	endSymbol     *Symbol
	blockComment  []bool // by DFA state index
	rulesOnce     sync.Once
	rulesBySymbol [][]*Rule
	originOnce    sync.Once
	origins       [][]*DfaState
}

// Name returns the name of the grammar.
func (g *Grammar) Name() string { return g.name }

// Version returns the version of the grammar.
func (g *Grammar) Version() string { return g.version }

// Author returns the author of the grammar.
func (g *Grammar) Author() string { return g.author }

// About returns a description of the grammar.
func (g *Grammar) About() string { return g.about }

// CaseSensitive is false if the DFA of the grammar folds letter case.
func (g *Grammar) CaseSensitive() bool { return g.caseSensitive }

// StartSymbol returns the start symbol of the grammar.
func (g *Grammar) StartSymbol() *Symbol { return g.start }

// ErrorSymbol returns the pseudo-terminal used for unrecognized input.
func (g *Grammar) ErrorSymbol() *Symbol { return g.errorSymbol }

// EndSymbol returns the terminal signalling end of input.
func (g *Grammar) EndSymbol() *Symbol { return g.endSymbol }

// DfaInitial returns the start state of the DFA.
func (g *Grammar) DfaInitial() *DfaState { return g.dfaInitial }

// LalrInitial returns the start state of the LALR automaton.
func (g *Grammar) LalrInitial() *LalrState { return g.lalrInitial }

// SymbolCount returns the size of the symbol table.
func (g *Grammar) SymbolCount() int { return len(g.symbols) }

// CharSetCount returns the size of the character set table.
func (g *Grammar) CharSetCount() int { return len(g.charsets) }

// RuleCount returns the size of the rule table.
func (g *Grammar) RuleCount() int { return len(g.rules) }

// DfaStateCount returns the number of DFA states.
func (g *Grammar) DfaStateCount() int { return len(g.dfaStates) }

// LalrStateCount returns the number of LALR states.
func (g *Grammar) LalrStateCount() int { return len(g.lalrStates) }

// Symbol returns the symbol at index i.
func (g *Grammar) Symbol(i int) *Symbol { return g.symbols[i] }

// CharSet returns the character set at index i.
func (g *Grammar) CharSet(i int) *CharSet { return g.charsets[i] }

// Rule returns the rule at index i.
func (g *Grammar) Rule(i int) *Rule { return g.rules[i] }

// DfaState returns the DFA state at index i.
func (g *Grammar) DfaState(i int) *DfaState { return g.dfaStates[i] }

// LalrState returns the LALR state at index i.
func (g *Grammar) LalrState(i int) *LalrState { return g.lalrStates[i] }

// SymbolByName finds a symbol by its undecorated name. If a non-terminal and a
// terminal share a name, kind decides: pass Nonterminal or Terminal. Any
// other kind matches the first symbol with that name.
func (g *Grammar) SymbolByName(name string, kind ...SymbolKind) *Symbol {
	for _, sym := range g.symbols {
		if sym.name != name {
			continue
		}
		if len(kind) == 0 || (kind[0] == Nonterminal) == (sym.kind == Nonterminal) {
			return sym
		}
	}
	return nil
}

// RuleByText finds a rule by its BNF notation (see Rule.String).
func (g *Grammar) RuleByText(text string) *Rule {
	for _, r := range g.rules {
		if r.String() == text {
			return r
		}
	}
	return nil
}

// EachSymbol iterates over all symbols of the grammar, in table order.
func (g *Grammar) EachSymbol(mapper func(sym *Symbol) interface{}) []interface{} {
	var r = make([]interface{}, 0, len(g.symbols))
	for _, sym := range g.symbols {
		r = append(r, mapper(sym))
	}
	return r
}

// Owns checks if a symbol, rule or state belongs to this grammar.
func (g *Grammar) Owns(x interface{}) bool {
	switch o := x.(type) {
	case *Symbol:
		return o != nil && o.g == g
	case *Rule:
		return o != nil && o.g == g
	case *DfaState:
		return o != nil && o.g == g
	case *LalrState:
		return o != nil && o.g == g
	}
	return false
}

// CheckOwnership returns ErrCrossGrammar if x does not belong to g.
func (g *Grammar) CheckOwnership(x interface{}) error {
	if !g.Owns(x) {
		return fmt.Errorf("%w: %v is not part of grammar %q", ErrCrossGrammar, x, g.name)
	}
	return nil
}

// --- Derived data ----------------------------------------------------------

// RulesForSymbol returns all rules with head sym, in table order.
// The index is built on first use.
func (g *Grammar) RulesForSymbol(sym *Symbol) []*Rule {
	g.rulesOnce.Do(func() {
		g.rulesBySymbol = make([][]*Rule, len(g.symbols))
		for _, r := range g.rules {
			i := r.head.index
			g.rulesBySymbol[i] = append(g.rulesBySymbol[i], r)
		}
		tracer().Debugf("rule index built for grammar %q", g.name)
	})
	if sym == nil || sym.g != g {
		return nil
	}
	return g.rulesBySymbol[sym.index]
}

// DfaOrigins returns all DFA states with a transition into s.
// The reverse transition map is built on first use.
func (g *Grammar) DfaOrigins(s *DfaState) []*DfaState {
	g.originOnce.Do(func() {
		g.origins = make([][]*DfaState, len(g.dfaStates))
		for _, from := range g.dfaStates {
			seen := make(map[int]bool)
			for _, e := range from.edges {
				to := e.Target.index
				if !seen[to] {
					seen[to] = true
					g.origins[to] = append(g.origins[to], from)
				}
			}
		}
	})
	if s == nil || s.g != g {
		return nil
	}
	return g.origins[s.index]
}

// IsBlockCommentState is true for DFA states on a path from the initial state
// to a state accepting a comment delimiter. Scanning inside block comments is
// restricted to these states.
func (g *Grammar) IsBlockCommentState(s *DfaState) bool {
	return s != nil && s.index < len(g.blockComment) && g.blockComment[s.index]
}

// BlockCommentStates returns the indices of all block comment states,
// in increasing order.
func (g *Grammar) BlockCommentStates() []int {
	var r []int
	for i, ok := range g.blockComment {
		if ok {
			r = append(r, i)
		}
	}
	return r
}

// computeBlockCommentStates collects the states accepting comment delimiters
// and then follows the origin map backwards.
func (g *Grammar) computeBlockCommentStates() {
	g.blockComment = make([]bool, len(g.dfaStates))
	closure := treeset.NewWith(utils.IntComparator)
	var worklist []*DfaState
	for _, s := range g.dfaStates {
		if s.accept != nil && (s.accept.kind == CommentStart || s.accept.kind == CommentEnd) {
			closure.Add(s.index)
			worklist = append(worklist, s)
		}
	}
	for len(worklist) > 0 {
		s := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, o := range g.DfaOrigins(s) {
			if !closure.Contains(o.index) {
				closure.Add(o.index)
				worklist = append(worklist, o)
			}
		}
	}
	for _, x := range closure.Values() {
		g.blockComment[x.(int)] = true
	}
	tracer().Debugf("grammar %q has %d block comment states", g.name, closure.Size())
}

// --- Fingerprint -----------------------------------------------------------

// tableSummary is the hashable projection of a grammar's tables.
type tableSummary struct {
	Name          string
	Version       string
	Author        string
	About         string
	CaseSensitive bool
	Start         int
	End           int
	Error         int
	DfaInitial    int
	LalrInitial   int
	Symbols       []string
	CharSets      []string
	Rules         [][]int
	DfaStates     [][]int
	LalrStates    [][]int
}

// Fingerprint returns a digest over all tables of the grammar. Two grammars
// with equal fingerprints have identical tables, even if they have been
// loaded from differently encoded files.
func (g *Grammar) Fingerprint() (string, error) {
	sum := tableSummary{
		Name: g.name, Version: g.version, Author: g.author, About: g.about,
		CaseSensitive: g.caseSensitive,
		Start:         indexOf(g.start),
		End:           indexOf(g.endSymbol),
		Error:         indexOf(g.errorSymbol),
		DfaInitial:    g.dfaInitial.index,
		LalrInitial:   g.lalrInitial.index,
	}
	for _, s := range g.symbols {
		sum.Symbols = append(sum.Symbols, fmt.Sprintf("%d:%s", s.kind, s.name))
	}
	for _, cs := range g.charsets {
		sum.CharSets = append(sum.CharSets, cs.chars)
	}
	for _, r := range g.rules {
		row := []int{r.head.index}
		for _, sym := range r.body {
			row = append(row, sym.index)
		}
		sum.Rules = append(sum.Rules, row)
	}
	for _, s := range g.dfaStates {
		row := []int{indexOf(s.accept)}
		for _, e := range s.edges {
			row = append(row, e.CharSet.index, e.Target.index)
		}
		sum.DfaStates = append(sum.DfaStates, row)
	}
	for _, s := range g.lalrStates {
		var row []int
		for _, a := range s.actions {
			row = append(row, a.symbol.index, int(a.kind), actionTarget(a))
		}
		sum.LalrStates = append(sum.LalrStates, row)
	}
	return structhash.Hash(sum, 1)
}

func indexOf(sym *Symbol) int {
	if sym == nil {
		return -1
	}
	return sym.index
}

func actionTarget(a *Action) int {
	switch a.kind {
	case ShiftAction, GotoAction:
		return a.state.index
	case ReduceAction:
		return a.rule.index
	}
	return 0
}
