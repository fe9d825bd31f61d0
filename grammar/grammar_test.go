package grammar_test

import (
	"errors"
	"testing"

	"github.com/npillmayer/gold/grammar"
	"github.com/npillmayer/gold/internal/tablegen"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// tiny stages a grammar for   <S> ::= a
func tiny(b *grammar.Builder) error {
	steps := []func() error{
		func() error {
			return b.SetParameters(grammar.Parameters{Name: "tiny", CaseSensitive: true, StartSymbol: 3})
		},
		func() error {
			return b.SetTableCounts(grammar.TableCounts{Symbols: 4, CharSets: 1, Rules: 1, DfaStates: 2, LalrStates: 3})
		},
		func() error { return b.SetInitialStates(0, 0) },
		func() error { return b.SetSymbol(3, "S", grammar.Nonterminal) }, // forward order is fine
		func() error { return b.SetSymbol(0, "EOF", grammar.End) },
		func() error { return b.SetSymbol(1, "Error", grammar.Error) },
		func() error { return b.SetSymbol(2, "a", grammar.Terminal) },
		func() error { return b.SetCharSet(0, "a") },
		func() error { return b.SetRule(0, 3, []int{2}) },
		func() error { return b.SetDfaState(0, -1, []grammar.EdgeSpec{{CharSet: 0, Target: 1}}) },
		func() error { return b.SetDfaState(1, 2, nil) },
		func() error {
			return b.SetLalrState(0, []grammar.ActionSpec{
				{Symbol: 2, Kind: grammar.ShiftAction, Target: 1},
				{Symbol: 3, Kind: grammar.GotoAction, Target: 2},
			})
		},
		func() error {
			return b.SetLalrState(1, []grammar.ActionSpec{{Symbol: 0, Kind: grammar.ReduceAction, Target: 0}})
		},
		func() error {
			return b.SetLalrState(2, []grammar.ActionSpec{{Symbol: 0, Kind: grammar.AcceptAction}})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func TestBuilderTiny(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.grammar")
	defer teardown()
	//
	b := grammar.NewBuilder()
	if err := tiny(b); err != nil {
		t.Fatal(err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if g.StartSymbol().Name() != "S" || g.EndSymbol().Index() != 0 || g.ErrorSymbol().Index() != 1 {
		t.Errorf("special symbols not resolved correctly")
	}
	if s := g.DfaInitial().Transition('a'); s == nil || s.AcceptSymbol() != g.Symbol(2) {
		t.Errorf("expected transition on 'a' to accept symbol a")
	}
	if g.DfaInitial().Transition('A') != nil {
		t.Errorf("case-sensitive grammar should not fold 'A'")
	}
	a := g.LalrInitial().Action(g.Symbol(2))
	if a == nil || a.Kind() != grammar.ShiftAction || a.Target() != g.LalrState(1) {
		t.Errorf("expected shift to state 1, have %v", a)
	}
	if a := g.LalrInitial().Action(g.EndSymbol()); a != nil {
		t.Errorf("expected no action for EOF in initial state, have %v", a)
	}
	if exp := g.LalrInitial().ExpectedSymbols(); len(exp) != 1 || exp[0].Name() != "a" {
		t.Errorf("expected initial state to expect 'a' only, is %v", exp)
	}
	if g.Rule(0).ContainsOneNonterminal() {
		t.Errorf("rule <S> ::= a does not consist of a single non-terminal")
	}
	if g.Rule(0).String() != "<S> ::= a" {
		t.Errorf("unexpected rule string %q", g.Rule(0).String())
	}
}

func TestBuilderRejectsDoubleInitialization(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.grammar")
	defer teardown()
	//
	b := grammar.NewBuilder()
	if err := tiny(b); err != nil {
		t.Fatal(err)
	}
	if err := b.SetSymbol(2, "b", grammar.Terminal); !errors.Is(err, grammar.ErrAlreadyInitialized) {
		t.Errorf("expected ErrAlreadyInitialized, got %v", err)
	}
	if err := b.SetLalrState(2, nil); !errors.Is(err, grammar.ErrAlreadyInitialized) {
		t.Errorf("expected ErrAlreadyInitialized, got %v", err)
	}
	if err := b.SetRule(1, 3, nil); !errors.Is(err, grammar.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for index out of range, got %v", err)
	}
}

func TestBuilderRejectsIncompleteTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.grammar")
	defer teardown()
	//
	b := grammar.NewBuilder()
	if err := b.SetSymbol(0, "EOF", grammar.End); !errors.Is(err, grammar.ErrInvalidArgument) {
		t.Errorf("expected error for row set before table counts, got %v", err)
	}
	b.SetParameters(grammar.Parameters{Name: "incomplete"})
	b.SetTableCounts(grammar.TableCounts{Symbols: 2, DfaStates: 1, LalrStates: 1})
	b.SetInitialStates(0, 0)
	b.SetSymbol(0, "EOF", grammar.End)
	if _, err := b.Build(); !errors.Is(err, grammar.ErrIncomplete) {
		t.Errorf("expected ErrIncomplete, got %v", err)
	}
}

func TestBuilderRejectsDuplicateActions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.grammar")
	defer teardown()
	//
	b := grammar.NewBuilder()
	b.SetParameters(grammar.Parameters{Name: "dup"})
	b.SetTableCounts(grammar.TableCounts{Symbols: 2, DfaStates: 1, LalrStates: 1})
	b.SetInitialStates(0, 0)
	b.SetSymbol(0, "EOF", grammar.End)
	b.SetSymbol(1, "Error", grammar.Error)
	b.SetDfaState(0, -1, nil)
	b.SetLalrState(0, []grammar.ActionSpec{
		{Symbol: 0, Kind: grammar.AcceptAction},
		{Symbol: 0, Kind: grammar.ShiftAction, Target: 0},
	})
	if _, err := b.Build(); !errors.Is(err, grammar.ErrInvalidArgument) {
		t.Errorf("expected duplicate action to be rejected, got %v", err)
	}
}

func TestSymbolNotation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.grammar")
	defer teardown()
	//
	g, err := tablegen.Calculator()
	if err != nil {
		t.Fatal(err)
	}
	for name, expected := range map[string]string{
		"Integer":    "Integer",
		"+":          "'+'",
		"EOF":        "(EOF)",
		"Whitespace": "(Whitespace)",
	} {
		sym := g.SymbolByName(name, grammar.Terminal)
		if sym == nil {
			t.Errorf("symbol %q not found", name)
			continue
		}
		if sym.String() != expected {
			t.Errorf("expected %s, have %s", expected, sym)
		}
	}
	r := g.RuleByText("<Expression> ::= <Expression> '+' <Mult Exp>")
	if r == nil || r.Index() != 0 {
		t.Errorf("expected to find rule 0 by its BNF notation")
	}
	if !g.RuleByText("<Expression> ::= <Mult Exp>").ContainsOneNonterminal() {
		t.Errorf("expected <Expression> ::= <Mult Exp> to be a chain rule")
	}
}

func TestOwnership(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.grammar")
	defer teardown()
	//
	g1, err := tablegen.Calculator()
	if err != nil {
		t.Fatal(err)
	}
	g2, _ := tablegen.Calculator()
	if err := g1.CheckOwnership(g1.Symbol(3)); err != nil {
		t.Errorf("symbol of g1 should belong to g1: %v", err)
	}
	if err := g1.CheckOwnership(g2.Symbol(3)); !errors.Is(err, grammar.ErrCrossGrammar) {
		t.Errorf("expected ErrCrossGrammar, got %v", err)
	}
	if g1.RulesForSymbol(g2.StartSymbol()) != nil {
		t.Errorf("expected no rules for a symbol of a different grammar")
	}
}

func TestActionForForeignSymbol(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.grammar")
	defer teardown()
	//
	g1, err := tablegen.Calculator()
	if err != nil {
		t.Fatal(err)
	}
	g2, _ := tablegen.Calculator()
	integer := g1.SymbolByName("Integer", grammar.Terminal)
	if a := g1.LalrInitial().Action(integer); a == nil || a.Kind() != grammar.ShiftAction {
		t.Fatalf("expected initial state to shift Integer, have %v", a)
	}
	foreign := g2.SymbolByName("Integer", grammar.Terminal)
	if foreign.Index() != integer.Index() {
		t.Fatalf("expected symbol tables of both grammars to match")
	}
	if a := g1.LalrInitial().Action(foreign); a != nil {
		t.Errorf("expected no action for a symbol of a different grammar, have %v", a)
	}
}

func TestOriginsAndBlockComments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.grammar")
	defer teardown()
	//
	g, err := tablegen.Calculator()
	if err != nil {
		t.Fatal(err)
	}
	slash := g.DfaInitial().Transition('/')
	star := slash.Transition('*')
	if star == nil || star.AcceptSymbol().Kind() != grammar.CommentStart {
		t.Fatalf("expected /* to be accepted as comment start")
	}
	origins := g.DfaOrigins(star)
	if len(origins) != 1 || origins[0] != slash {
		t.Errorf("expected origin of /* state to be / state, is %v", origins)
	}
	for _, s := range []*grammar.DfaState{g.DfaInitial(), slash, star} {
		if !g.IsBlockCommentState(s) {
			t.Errorf("expected %s to be a block comment state", s)
		}
	}
	digit := g.DfaInitial().Transition('7')
	if g.IsBlockCommentState(digit) {
		t.Errorf("state for integers should not be a block comment state")
	}
}

func TestFingerprint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.grammar")
	defer teardown()
	//
	g1, _ := tablegen.Calculator()
	g2, _ := tablegen.Calculator()
	g3, _ := tablegen.List()
	f1, err := g1.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	f2, _ := g2.Fingerprint()
	f3, _ := g3.Fingerprint()
	if f1 != f2 {
		t.Errorf("expected equal fingerprints for equal tables")
	}
	if f1 == f3 {
		t.Errorf("expected different fingerprints for different grammars")
	}
}
