package grammar

import (
	"fmt"
	"unicode"
)

// Parameters holds the metadata of a grammar.
type Parameters struct {
	Name          string
	Version       string
	Author        string
	About         string
	CaseSensitive bool
	StartSymbol   int // index into the symbol table
}

// TableCounts holds the sizes of the tables of a grammar.
type TableCounts struct {
	Symbols    int
	CharSets   int
	Rules      int
	DfaStates  int
	LalrStates int
}

// EdgeSpec describes a DFA edge by table indices.
type EdgeSpec struct {
	CharSet int
	Target  int
}

// ActionSpec describes an LALR action by table indices. Target is a state
// index for shift and goto actions, a rule index for reduce actions, and
// ignored for accept actions.
type ActionSpec struct {
	Symbol int
	Kind   ActionKind
	Target int
}

type symbolRow struct {
	name string
	kind SymbolKind
}

type ruleRow struct {
	head int
	body []int
}

type dfaRow struct {
	accept int
	edges  []EdgeSpec
}

// Builder stages the tables of a grammar. Rows may be set in any order and
// may refer to rows not yet set, as long as the table counts are known.
// Every row may be set exactly once.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	params   *Parameters
	counts   *TableCounts
	initial  *[2]int // DFA, LALR
	symbols  []*symbolRow
	charsets []*string
	rules    []*ruleRow
	dfa      []*dfaRow
	lalr     [][]ActionSpec
	lalrSet  []bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetParameters sets the grammar metadata.
func (b *Builder) SetParameters(p Parameters) error {
	if b.params != nil {
		return fmt.Errorf("%w: parameters", ErrAlreadyInitialized)
	}
	b.params = &p
	return nil
}

// SetTableCounts allocates the tables. It has to be called before any row
// is set.
func (b *Builder) SetTableCounts(c TableCounts) error {
	if b.counts != nil {
		return fmt.Errorf("%w: table counts", ErrAlreadyInitialized)
	}
	if c.Symbols < 0 || c.CharSets < 0 || c.Rules < 0 || c.DfaStates < 0 || c.LalrStates < 0 {
		return fmt.Errorf("%w: negative table count %+v", ErrInvalidArgument, c)
	}
	b.counts = &c
	b.symbols = make([]*symbolRow, c.Symbols)
	b.charsets = make([]*string, c.CharSets)
	b.rules = make([]*ruleRow, c.Rules)
	b.dfa = make([]*dfaRow, c.DfaStates)
	b.lalr = make([][]ActionSpec, c.LalrStates)
	b.lalrSet = make([]bool, c.LalrStates)
	tracer().Debugf("table counts: %+v", c)
	return nil
}

// Counts returns the table counts, if already set.
func (b *Builder) Counts() (TableCounts, bool) {
	if b.counts == nil {
		return TableCounts{}, false
	}
	return *b.counts, true
}

// SetInitialStates sets the indices of the initial DFA and LALR states.
func (b *Builder) SetInitialStates(dfa, lalr int) error {
	if b.initial != nil {
		return fmt.Errorf("%w: initial states", ErrAlreadyInitialized)
	}
	b.initial = &[2]int{dfa, lalr}
	return nil
}

// SetSymbol sets row i of the symbol table.
func (b *Builder) SetSymbol(i int, name string, kind SymbolKind) error {
	if err := b.checkRow("symbol", i, len(b.symbols)); err != nil {
		return err
	}
	if b.symbols[i] != nil {
		return fmt.Errorf("%w: symbol %d", ErrAlreadyInitialized, i)
	}
	if kind < 0 {
		return fmt.Errorf("%w: symbol %d has kind %d", ErrInvalidArgument, i, kind)
	}
	b.symbols[i] = &symbolRow{name: name, kind: kind}
	return nil
}

// SetCharSet sets row i of the character set table.
func (b *Builder) SetCharSet(i int, chars string) error {
	if err := b.checkRow("charset", i, len(b.charsets)); err != nil {
		return err
	}
	if b.charsets[i] != nil {
		return fmt.Errorf("%w: charset %d", ErrAlreadyInitialized, i)
	}
	b.charsets[i] = &chars
	return nil
}

// SetRule sets row i of the rule table.
func (b *Builder) SetRule(i int, head int, body []int) error {
	if err := b.checkRow("rule", i, len(b.rules)); err != nil {
		return err
	}
	if b.rules[i] != nil {
		return fmt.Errorf("%w: rule %d", ErrAlreadyInitialized, i)
	}
	b.rules[i] = &ruleRow{head: head, body: append([]int(nil), body...)}
	return nil
}

// SetDfaState sets row i of the DFA state table. accept is a symbol index,
// or -1 for non-accepting states.
func (b *Builder) SetDfaState(i int, accept int, edges []EdgeSpec) error {
	if err := b.checkRow("DFA state", i, len(b.dfa)); err != nil {
		return err
	}
	if b.dfa[i] != nil {
		return fmt.Errorf("%w: DFA state %d", ErrAlreadyInitialized, i)
	}
	b.dfa[i] = &dfaRow{accept: accept, edges: append([]EdgeSpec(nil), edges...)}
	return nil
}

// SetLalrState sets row i of the LALR state table.
func (b *Builder) SetLalrState(i int, actions []ActionSpec) error {
	if err := b.checkRow("LALR state", i, len(b.lalr)); err != nil {
		return err
	}
	if b.lalrSet[i] {
		return fmt.Errorf("%w: LALR state %d", ErrAlreadyInitialized, i)
	}
	b.lalr[i] = append([]ActionSpec(nil), actions...)
	b.lalrSet[i] = true
	return nil
}

func (b *Builder) checkRow(table string, i, n int) error {
	if b.counts == nil {
		return fmt.Errorf("%w: %s %d set before table counts", ErrInvalidArgument, table, i)
	}
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %s index %d out of range [0..%d)", ErrInvalidArgument, table, i, n)
	}
	return nil
}

// Build checks that all tables are complete, resolves all references and
// returns the immutable grammar. Nothing of a grammar which fails to build is
// exposed.
func (b *Builder) Build() (*Grammar, error) {
	if b.counts == nil || b.params == nil || b.initial == nil {
		return nil, fmt.Errorf("%w: missing parameters, table counts or initial states", ErrIncomplete)
	}
	if err := b.checkComplete(); err != nil {
		return nil, err
	}
	g := &Grammar{
		name:          b.params.Name,
		version:       b.params.Version,
		author:        b.params.Author,
		about:         b.params.About,
		caseSensitive: b.params.CaseSensitive,
	}
	// allocate first, forward references are resolved against allocated rows
	g.symbols = make([]*Symbol, len(b.symbols))
	for i, row := range b.symbols {
		g.symbols[i] = &Symbol{g: g, index: i, name: row.name, kind: row.kind}
		switch row.kind {
		case Error:
			if g.errorSymbol == nil {
				g.errorSymbol = g.symbols[i]
			}
		case End:
			if g.endSymbol == nil {
				g.endSymbol = g.symbols[i]
			}
		}
	}
	g.charsets = make([]*CharSet, len(b.charsets))
	for i, chars := range b.charsets {
		g.charsets[i] = &CharSet{index: i, chars: *chars}
	}
	g.rules = make([]*Rule, len(b.rules))
	g.dfaStates = make([]*DfaState, len(b.dfa))
	for i := range b.dfa {
		g.dfaStates[i] = &DfaState{g: g, index: i}
	}
	g.lalrStates = make([]*LalrState, len(b.lalr))
	for i := range b.lalr {
		g.lalrStates[i] = &LalrState{g: g, index: i}
	}
	var err error
	if g.start, err = b.symbol(g, b.params.StartSymbol, "start symbol"); err != nil {
		return nil, err
	}
	if g.errorSymbol == nil || g.endSymbol == nil {
		return nil, fmt.Errorf("%w: grammar has no error or end symbol", ErrIncomplete)
	}
	if b.initial[0] < 0 || b.initial[0] >= len(g.dfaStates) {
		return nil, fmt.Errorf("%w: initial DFA state %d", ErrInvalidArgument, b.initial[0])
	}
	g.dfaInitial = g.dfaStates[b.initial[0]]
	if b.initial[1] < 0 || b.initial[1] >= len(g.lalrStates) {
		return nil, fmt.Errorf("%w: initial LALR state %d", ErrInvalidArgument, b.initial[1])
	}
	g.lalrInitial = g.lalrStates[b.initial[1]]
	if err = b.buildRules(g); err != nil {
		return nil, err
	}
	if err = b.buildDfa(g); err != nil {
		return nil, err
	}
	if err = b.buildLalr(g); err != nil {
		return nil, err
	}
	g.computeBlockCommentStates()
	tracer().Infof("grammar %q built: %d symbols, %d rules, %d DFA states, %d LALR states",
		g.name, len(g.symbols), len(g.rules), len(g.dfaStates), len(g.lalrStates))
	return g, nil
}

func (b *Builder) checkComplete() error {
	for i, row := range b.symbols {
		if row == nil {
			return fmt.Errorf("%w: symbol %d not set", ErrIncomplete, i)
		}
	}
	for i, row := range b.charsets {
		if row == nil {
			return fmt.Errorf("%w: charset %d not set", ErrIncomplete, i)
		}
	}
	for i, row := range b.rules {
		if row == nil {
			return fmt.Errorf("%w: rule %d not set", ErrIncomplete, i)
		}
	}
	for i, row := range b.dfa {
		if row == nil {
			return fmt.Errorf("%w: DFA state %d not set", ErrIncomplete, i)
		}
	}
	for i, ok := range b.lalrSet {
		if !ok {
			return fmt.Errorf("%w: LALR state %d not set", ErrIncomplete, i)
		}
	}
	return nil
}

func (b *Builder) symbol(g *Grammar, i int, what string) (*Symbol, error) {
	if i < 0 || i >= len(g.symbols) {
		return nil, fmt.Errorf("%w: %s refers to symbol %d", ErrInvalidArgument, what, i)
	}
	return g.symbols[i], nil
}

func (b *Builder) buildRules(g *Grammar) error {
	for i, row := range b.rules {
		head, err := b.symbol(g, row.head, fmt.Sprintf("head of rule %d", i))
		if err != nil {
			return err
		}
		if head.kind != Nonterminal {
			return fmt.Errorf("%w: head of rule %d is terminal %s", ErrInvalidArgument, i, head)
		}
		r := &Rule{g: g, index: i, head: head, body: make([]*Symbol, len(row.body))}
		for j, x := range row.body {
			if r.body[j], err = b.symbol(g, x, fmt.Sprintf("rule %d", i)); err != nil {
				return err
			}
		}
		r.single = len(r.body) == 1 && r.body[0].kind == Nonterminal
		g.rules[i] = r
	}
	return nil
}

func (b *Builder) buildDfa(g *Grammar) error {
	for i, row := range b.dfa {
		s := g.dfaStates[i]
		if row.accept >= 0 {
			sym, err := b.symbol(g, row.accept, fmt.Sprintf("DFA state %d", i))
			if err != nil {
				return err
			}
			s.accept = sym
		}
		s.edges = make([]DfaEdge, len(row.edges))
		s.trans = make(map[rune]*DfaState)
		for j, e := range row.edges {
			if e.CharSet < 0 || e.CharSet >= len(g.charsets) {
				return fmt.Errorf("%w: DFA state %d refers to charset %d", ErrInvalidArgument, i, e.CharSet)
			}
			if e.Target < 0 || e.Target >= len(g.dfaStates) {
				return fmt.Errorf("%w: DFA state %d refers to state %d", ErrInvalidArgument, i, e.Target)
			}
			cs, target := g.charsets[e.CharSet], g.dfaStates[e.Target]
			s.edges[j] = DfaEdge{CharSet: cs, Target: target}
			for _, r := range cs.chars {
				if t, ok := s.trans[r]; ok && t != target {
					return fmt.Errorf("%w: DFA state %d is not deterministic for %q", ErrInvalidArgument, i, r)
				}
				s.trans[r] = target
			}
		}
		if !g.caseSensitive {
			foldCase(s)
		}
	}
	return nil
}

// foldCase adds transitions for the case variants of every character of an
// edge, unless an edge for the variant exists.
func foldCase(s *DfaState) {
	for _, e := range s.edges {
		for _, r := range e.CharSet.chars {
			for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
				if _, ok := s.trans[f]; !ok {
					s.trans[f] = e.Target
				}
			}
		}
	}
}

func (b *Builder) buildLalr(g *Grammar) error {
	for i, specs := range b.lalr {
		s := g.lalrStates[i]
		s.actions = make([]*Action, len(specs))
		s.bySymbol = make([]*Action, len(g.symbols))
		for j, spec := range specs {
			sym, err := b.symbol(g, spec.Symbol, fmt.Sprintf("LALR state %d", i))
			if err != nil {
				return err
			}
			a := &Action{symbol: sym, kind: spec.Kind}
			switch spec.Kind {
			case ShiftAction, GotoAction:
				if spec.Target < 0 || spec.Target >= len(g.lalrStates) {
					return fmt.Errorf("%w: LALR state %d: %s to state %d", ErrInvalidArgument, i, spec.Kind, spec.Target)
				}
				a.state = g.lalrStates[spec.Target]
			case ReduceAction:
				if spec.Target < 0 || spec.Target >= len(g.rules) {
					return fmt.Errorf("%w: LALR state %d: reduce by rule %d", ErrInvalidArgument, i, spec.Target)
				}
				a.rule = g.rules[spec.Target]
			case AcceptAction:
			default:
				return fmt.Errorf("%w: LALR state %d: unknown action %d", ErrInvalidArgument, i, spec.Kind)
			}
			if s.bySymbol[sym.index] != nil {
				return fmt.Errorf("%w: LALR state %d has more than one action for %s", ErrInvalidArgument, i, sym)
			}
			s.actions[j] = a
			s.bySymbol[sym.index] = a
		}
	}
	return nil
}
