package tablegen

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// === Items =================================================================

// item is an LR(0) item, i.e. a rule with a dot. Rule -1 denotes the
// augmented start rule S' ::= S.
type item struct {
	rule int
	dot  int
}

func itemComparator(a, b interface{}) int {
	i1, i2 := a.(item), b.(item)
	if c := utils.IntComparator(i1.rule, i2.rule); c != 0 {
		return c
	}
	return utils.IntComparator(i1.dot, i2.dot)
}

func newItemSet() *treeset.Set {
	return treeset.NewWith(itemComparator)
}

func (ga *analysis) rhs(i item) []*symbol {
	if i.rule < 0 {
		return []*symbol{ga.start}
	}
	return ga.b.rules[i.rule].rhs
}

// peek returns the symbol after the dot, or nil.
func (ga *analysis) peek(i item) *symbol {
	rhs := ga.rhs(i)
	if i.dot >= len(rhs) {
		return nil
	}
	return rhs[i.dot]
}

func (ga *analysis) itemString(i item) string {
	var b strings.Builder
	if i.rule < 0 {
		b.WriteString("<S'> ::=")
	} else {
		fmt.Fprintf(&b, "%s ::=", ga.b.rules[i.rule].lhs)
	}
	for k, sym := range ga.rhs(i) {
		if k == i.dot {
			b.WriteString(" ●")
		}
		b.WriteByte(' ')
		b.WriteString(sym.String())
	}
	if i.dot >= len(ga.rhs(i)) {
		b.WriteString(" ●")
	}
	return b.String()
}

// === Closure and Goto-Set Operations =======================================

func (ga *analysis) closure(S *treeset.Set) *treeset.Set {
	C := newItemSet()
	C.Add(S.Values()...)
	worklist := S.Values()
	for len(worklist) > 0 {
		i := worklist[len(worklist)-1].(item)
		worklist = worklist[:len(worklist)-1]
		A := ga.peek(i)
		if A == nil || A.isTerminal() {
			continue
		}
		for _, r := range ga.rulesFor(A) {
			ii := item{rule: r.serial, dot: 0}
			if !C.Contains(ii) {
				C.Add(ii)
				worklist = append(worklist, ii)
			}
		}
	}
	return C
}

func (ga *analysis) gotoSetClosure(S *treeset.Set, A *symbol) *treeset.Set {
	gotoset := newItemSet()
	for _, x := range S.Values() {
		i := x.(item)
		if ga.peek(i) == A {
			gotoset.Add(item{rule: i.rule, dot: i.dot + 1})
		}
	}
	if gotoset.Empty() {
		return gotoset
	}
	return ga.closure(gotoset)
}

// === CFSM Construction =====================================================

// CFSMState is a state within the CFSM for a grammar.
type CFSMState struct {
	ID     uint         // serial ID of this state
	items  *treeset.Set // configuration items within this state
	Accept bool         // contains the completed start item
}

func (s *CFSMState) String() string {
	return fmt.Sprintf("(state %d | [%d])", s.ID, s.items.Size())
}

// CFSM edge between 2 states, directed and labelled with a symbol.
type cfsmEdge struct {
	from  *CFSMState
	to    *CFSMState
	label *symbol
}

// CFSM is the characteristic finite state machine for an LR grammar, i.e. the
// LR(0) state diagram.
type CFSM struct {
	states  *treeset.Set    // all the states, ordered by ID
	edges   *arraylist.List // all the edges between states
	byItems map[string]*CFSMState
	S0      *CFSMState // start state
}

func stateComparator(s1, s2 interface{}) int {
	return utils.IntComparator(int(s1.(*CFSMState).ID), int(s2.(*CFSMState).ID))
}

func itemSetKey(S *treeset.Set) string {
	var b strings.Builder
	for _, x := range S.Values() {
		i := x.(item)
		fmt.Fprintf(&b, "%d.%d;", i.rule, i.dot)
	}
	return b.String()
}

// addState adds a state for an item set, if not already present. It returns
// the state and true if the state is new.
func (c *CFSM) addState(iset *treeset.Set) (*CFSMState, bool) {
	key := itemSetKey(iset)
	if s, ok := c.byItems[key]; ok {
		return s, false
	}
	s := &CFSMState{ID: uint(len(c.byItems)), items: iset}
	c.byItems[key] = s
	c.states.Add(s)
	return s, true
}

func (c *CFSM) allEdges(s *CFSMState) []*cfsmEdge {
	r := make([]*cfsmEdge, 0, 2)
	it := c.edges.Iterator()
	for it.Next() {
		if e := it.Value().(*cfsmEdge); e.from == s {
			r = append(r, e)
		}
	}
	return r
}

// buildCFSM constructs the characteristic finite state machine for a grammar.
// Pending states are processed in order of creation.
func buildCFSM(ga *analysis) *CFSM {
	cfsm := &CFSM{
		states:  treeset.NewWith(stateComparator),
		edges:   arraylist.New(),
		byItems: make(map[string]*CFSMState),
	}
	start := newItemSet()
	start.Add(item{rule: -1, dot: 0})
	cfsm.S0, _ = cfsm.addState(ga.closure(start))
	S := treeset.NewWith(stateComparator)
	S.Add(cfsm.S0)
	for !S.Empty() {
		s := S.Values()[0].(*CFSMState)
		S.Remove(s)
		for _, A := range ga.symbols {
			gotoset := ga.gotoSetClosure(s.items, A)
			if gotoset.Empty() {
				continue
			}
			snew, isNew := cfsm.addState(gotoset)
			if isNew {
				snew.Accept = gotoset.Contains(item{rule: -1, dot: 1})
				S.Add(snew)
			}
			cfsm.edges.Add(&cfsmEdge{from: s, to: snew, label: A})
			tracer().Debugf("goto(%s) --%s--> %s", s, A, snew)
		}
	}
	tracer().Infof("CFSM for grammar %q has %d states", ga.b.name, cfsm.states.Size())
	return cfsm
}
