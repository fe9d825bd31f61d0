package tablegen

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/timtadh/lexmachine/dfa"
	"github.com/timtadh/lexmachine/frontend"

	"github.com/npillmayer/gold/grammar"
)

// lexDFA is the DFA for the terminals of a grammar, in table form.
type lexDFA struct {
	terminals []*symbol // terminals with a pattern, by lexmachine match ID
	charsets  []string
	states    []lexState
}

type lexState struct {
	accept int // index into terminals, or -1
	edges  []grammar.EdgeSpec
}

// compileDFA compiles the patterns of all terminals into a single DFA.
// States are numbered in breadth-first order, starting with the initial state.
// Only ASCII characters are supported.
func compileDFA(terminals []*symbol) (*lexDFA, error) {
	lex := &lexDFA{}
	var asts []frontend.AST
	for _, t := range terminals {
		if t.pattern == "" {
			continue
		}
		ast, err := frontend.Parse([]byte(t.pattern))
		if err != nil {
			return nil, fmt.Errorf("pattern %q for terminal %s: %w", t.pattern, t.name, err)
		}
		asts = append(asts, ast)
		lex.terminals = append(lex.terminals, t)
	}
	if len(asts) == 0 {
		return nil, fmt.Errorf("grammar has no terminals to scan")
	}
	root := asts[len(asts)-1]
	for i := len(asts) - 2; i >= 0; i-- {
		root = frontend.NewAltMatch(asts[i], root)
	}
	d := dfa.Generate(root)
	tracer().Debugf("lexmachine DFA has %d states", len(d.Trans))
	//
	number := map[int]int{d.Start: 0}
	queue := []int{d.Start}
	csIndex := map[string]int{}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		state := lexState{accept: -1}
		if m, ok := d.Accepting[s]; ok {
			state.accept = m
		}
		// group characters by target state, targets ordered by first character
		byTarget := treemap.NewWith(utils.IntComparator)
		var order []int
		for c := 0; c < 128; c++ {
			t := d.Trans[s][c]
			if t == d.Error || t < 0 || t >= len(d.Trans) {
				continue
			}
			chars, found := byTarget.Get(t)
			if !found {
				order = append(order, t)
				chars = []byte{}
			}
			byTarget.Put(t, append(chars.([]byte), byte(c)))
		}
		for _, t := range order {
			chars, _ := byTarget.Get(t)
			cs := string(chars.([]byte))
			i, ok := csIndex[cs]
			if !ok {
				i = len(lex.charsets)
				csIndex[cs] = i
				lex.charsets = append(lex.charsets, cs)
			}
			n, ok := number[t]
			if !ok {
				n = len(number)
				number[t] = n
				queue = append(queue, t)
			}
			state.edges = append(state.edges, grammar.EdgeSpec{CharSet: i, Target: n})
		}
		lex.states = append(lex.states, state)
	}
	tracer().Infof("DFA with %d states and %d character sets", len(lex.states), len(lex.charsets))
	return lex, nil
}
