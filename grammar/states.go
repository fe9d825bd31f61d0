package grammar

import (
	"fmt"
)

// --- DFA -------------------------------------------------------------------

// DfaState is a state of the DFA recognizing terminals.
type DfaState struct {
	g      *Grammar
	index  int
	accept *Symbol
	edges  []DfaEdge
	trans  map[rune]*DfaState
}

// DfaEdge is a transition of the DFA, labelled with a set of characters.
type DfaEdge struct {
	CharSet *CharSet
	Target  *DfaState
}

// Grammar returns the grammar owning this state.
func (s *DfaState) Grammar() *Grammar {
	return s.g
}

// Index returns the position of this state in the DFA state table.
func (s *DfaState) Index() int {
	return s.index
}

// AcceptSymbol returns the terminal recognized if the DFA stops in this
// state, or nil if this state is not accepting.
func (s *DfaState) AcceptSymbol() *Symbol {
	return s.accept
}

// Transition returns the successor state for character r, or nil if there is
// no transition for r.
func (s *DfaState) Transition(r rune) *DfaState {
	return s.trans[r]
}

// Edges returns the transitions of this state, in table order.
// Clients must not modify the slice.
func (s *DfaState) Edges() []DfaEdge {
	return s.edges
}

func (s *DfaState) String() string {
	if s.accept != nil {
		return fmt.Sprintf("(dfa %d | %s)", s.index, s.accept)
	}
	return fmt.Sprintf("(dfa %d)", s.index)
}

// --- LALR ------------------------------------------------------------------

// ActionKind is the type of an LALR action. The numeric values are part of
// the binary table format.
type ActionKind int

// Actions of the LALR automaton.
const (
	ShiftAction  ActionKind = 1
	ReduceAction ActionKind = 2
	GotoAction   ActionKind = 3
	AcceptAction ActionKind = 4
)

func (k ActionKind) String() string {
	switch k {
	case ShiftAction:
		return "shift"
	case ReduceAction:
		return "reduce"
	case GotoAction:
		return "goto"
	case AcceptAction:
		return "accept"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action is an entry of the LALR action table: given the current state and
// a lookahead symbol, the automaton either shifts the symbol, reduces a rule,
// goes to a state after a reduction, or accepts the input.
type Action struct {
	symbol *Symbol
	kind   ActionKind
	state  *LalrState // target for shift and goto
	rule   *Rule      // for reduce
}

// Symbol returns the symbol triggering this action.
func (a *Action) Symbol() *Symbol {
	return a.symbol
}

// Kind returns the type of this action.
func (a *Action) Kind() ActionKind {
	return a.kind
}

// Target returns the successor state of a shift or goto action, nil otherwise.
func (a *Action) Target() *LalrState {
	return a.state
}

// Rule returns the rule of a reduce action, nil otherwise.
func (a *Action) Rule() *Rule {
	return a.rule
}

func (a *Action) String() string {
	switch a.kind {
	case ShiftAction, GotoAction:
		return fmt.Sprintf("%s %s → %d", a.symbol, a.kind, a.state.index)
	case ReduceAction:
		return fmt.Sprintf("%s reduce %d", a.symbol, a.rule.index)
	}
	return fmt.Sprintf("%s %s", a.symbol, a.kind)
}

// LalrState is a state of the LALR automaton.
type LalrState struct {
	g        *Grammar
	index    int
	actions  []*Action
	bySymbol []*Action // dense, indexed by symbol index
}

// Grammar returns the grammar owning this state.
func (s *LalrState) Grammar() *Grammar {
	return s.g
}

// Index returns the position of this state in the LALR state table.
func (s *LalrState) Index() int {
	return s.index
}

// Actions returns all actions of this state, in table order.
// Clients must not modify the slice.
func (s *LalrState) Actions() []*Action {
	return s.actions
}

// Action returns the action for a symbol, or nil if there is none. Symbols
// of other grammars never have an action.
func (s *LalrState) Action(sym *Symbol) *Action {
	if sym == nil || sym.g != s.g || sym.index >= len(s.bySymbol) {
		return nil
	}
	return s.bySymbol[sym.index]
}

// ExpectedSymbols returns the terminals for which this state has an action.
// This is what a parser expected to see when reporting a syntax error.
func (s *LalrState) ExpectedSymbols() []*Symbol {
	var expected []*Symbol
	for _, a := range s.actions {
		if a.symbol.IsTerminal() {
			expected = append(expected, a.symbol)
		}
	}
	return expected
}

func (s *LalrState) String() string {
	return fmt.Sprintf("(state %d | [%d])", s.index, len(s.actions))
}
