package tablegen

import (
	"github.com/emirpasic/gods/sets/treeset"
)

// analysis holds the results of static grammar analysis: nullable
// non-terminals, FIRST- and FOLLOW-sets. Sets contain symbol IDs of terminals.
type analysis struct {
	b        *GrammarBuilder
	symbols  []*symbol
	start    *symbol
	end      *symbol
	nullable []bool
	first    []*treeset.Set
	follow   []*treeset.Set
}

func analyse(b *GrammarBuilder, syms []*symbol) *analysis {
	ga := &analysis{
		b:        b,
		symbols:  syms,
		start:    b.rules[0].lhs,
		end:      b.terminals[0],
		nullable: make([]bool, len(syms)),
		first:    make([]*treeset.Set, len(syms)),
		follow:   make([]*treeset.Set, len(syms)),
	}
	for i, sym := range syms {
		ga.first[i] = treeset.NewWithIntComparator()
		ga.follow[i] = treeset.NewWithIntComparator()
		if sym.isTerminal() {
			ga.first[i].Add(sym.id)
		}
	}
	ga.computeFirst()
	ga.computeFollow()
	return ga
}

func (ga *analysis) computeFirst() {
	for changed := true; changed; {
		changed = false
		for _, r := range ga.b.rules {
			A := r.lhs.id
			before := ga.first[A].Size()
			allNullable := true
			for _, X := range r.rhs {
				ga.first[A].Add(ga.first[X.id].Values()...)
				if !ga.nullable[X.id] {
					allNullable = false
					break
				}
			}
			if allNullable && !ga.nullable[A] {
				ga.nullable[A] = true
				changed = true
			}
			if ga.first[A].Size() != before {
				changed = true
			}
		}
	}
}

// firstOfSequence returns FIRST(X1…Xn) and whether X1…Xn is nullable.
func (ga *analysis) firstOfSequence(seq []*symbol) (*treeset.Set, bool) {
	F := treeset.NewWithIntComparator()
	for _, X := range seq {
		F.Add(ga.first[X.id].Values()...)
		if !ga.nullable[X.id] {
			return F, false
		}
	}
	return F, true
}

func (ga *analysis) computeFollow() {
	ga.follow[ga.start.id].Add(ga.end.id)
	for changed := true; changed; {
		changed = false
		for _, r := range ga.b.rules {
			for i, X := range r.rhs {
				if X.isTerminal() {
					continue
				}
				before := ga.follow[X.id].Size()
				F, nullable := ga.firstOfSequence(r.rhs[i+1:])
				ga.follow[X.id].Add(F.Values()...)
				if nullable {
					ga.follow[X.id].Add(ga.follow[r.lhs.id].Values()...)
				}
				if ga.follow[X.id].Size() != before {
					changed = true
				}
			}
		}
	}
	for _, n := range ga.b.nonterminals {
		tracer().Debugf("FOLLOW(%s) = %v", n, ga.follow[n.id].Values())
	}
}

// rulesFor returns the rules with left-hand side A.
func (ga *analysis) rulesFor(A *symbol) []*production {
	var R []*production
	for _, r := range ga.b.rules {
		if r.lhs == A {
			R = append(R, r)
		}
	}
	return R
}
