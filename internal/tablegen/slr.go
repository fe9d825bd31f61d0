package tablegen

import (
	"fmt"
	"strings"

	"github.com/npillmayer/gold/grammar"
	"github.com/npillmayer/gold/internal/sparse"
)

// Actions are encoded into a single int32 table entry: the lower 3 bits hold
// the action kind, the remaining bits the target state or rule.
func encodeAction(kind grammar.ActionKind, target int) int32 {
	return int32(target<<3 | int(kind))
}

func decodeAction(v int32) (grammar.ActionKind, int) {
	return grammar.ActionKind(v & 7), int(v >> 3)
}

func actionString(v int32, ga *analysis) string {
	if v == sparse.DefaultNullValue {
		return "<none>"
	}
	kind, target := decodeAction(v)
	switch kind {
	case grammar.ReduceAction:
		return fmt.Sprintf("<reduce %s>", ga.b.rules[target])
	case grammar.AcceptAction:
		return "<accept>"
	}
	return fmt.Sprintf("<%s %d>", kind, target)
}

// actionTable is the combined ACTION and GOTO table of an SLR(1) parser,
// with rows for CFSM states and columns for symbols.
type actionTable struct {
	matrix *sparse.IntMatrix
}

func (t *actionTable) row(state uint) []grammar.ActionSpec {
	var specs []grammar.ActionSpec
	t.matrix.Row(int(state), func(sym int, a, _ int32) {
		kind, target := decodeAction(a)
		specs = append(specs, grammar.ActionSpec{Symbol: sym, Kind: kind, Target: target})
	})
	return specs
}

// buildActionTable iterates over all the states of the CFSM. Edges labelled
// with terminals produce shift entries, edges labelled with non-terminals
// produce goto entries. If an item's dot is behind the complete right side of
// a rule, we produce a reduce entry for the rule for each terminal of
// FOLLOW(LHS). The completed start item produces an accept entry for the end
// of input.
//
// Every entry of the table may hold 2 values, thus allowing us to detect
// shift/reduce- and reduce/reduce-conflicts.
func buildActionTable(ga *analysis, cfsm *CFSM) (*actionTable, error) {
	matrix := sparse.NewIntMatrix(cfsm.states.Size(), len(ga.symbols), sparse.DefaultNullValue)
	states := cfsm.states.Iterator()
	for states.Next() {
		state := states.Value().(*CFSMState)
		for _, e := range cfsm.allEdges(state) {
			if e.label.isTerminal() {
				matrix.Add(int(state.ID), e.label.id, encodeAction(grammar.ShiftAction, int(e.to.ID)))
			} else {
				matrix.Add(int(state.ID), e.label.id, encodeAction(grammar.GotoAction, int(e.to.ID)))
			}
		}
		if state.Accept {
			matrix.Add(int(state.ID), ga.end.id, encodeAction(grammar.AcceptAction, 0))
		}
		for _, x := range state.items.Values() {
			i := x.(item)
			if i.rule < 0 || ga.peek(i) != nil {
				continue
			}
			rule := ga.b.rules[i.rule]
			for _, la := range ga.follow[rule.lhs.id].Values() {
				tracer().Debugf("state %d: %s, reduce on %s", state.ID, ga.itemString(i), ga.symbols[la.(int)])
				matrix.Add(int(state.ID), la.(int), encodeAction(grammar.ReduceAction, rule.serial))
			}
		}
	}
	if conflicts := matrix.Conflicts(); len(conflicts) > 0 {
		var b strings.Builder
		for _, c := range conflicts {
			a1, a2 := matrix.Values(c[0], c[1])
			fmt.Fprintf(&b, "\n    state %d on %s: %s / %s", c[0], ga.symbols[c[1]],
				actionString(a1, ga), actionString(a2, ga))
		}
		tracer().Errorf("grammar %q is not SLR(1):%s", ga.b.name, b.String())
		return nil, fmt.Errorf("grammar %q has %d conflicts:%s", ga.b.name, len(conflicts), b.String())
	}
	tracer().Infof("ACTION table with %d entries", matrix.ValueCount())
	return &actionTable{matrix: matrix}, nil
}
