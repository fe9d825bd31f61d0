package parser

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/npillmayer/gold"
	"github.com/npillmayer/gold/grammar"
	"github.com/npillmayer/gold/grammar/cgt"
	"github.com/npillmayer/gold/internal/tablegen"
	"github.com/npillmayer/gold/lexer"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func load(t *testing.T, fixture func() (*grammar.Grammar, error)) *grammar.Grammar {
	g, err := fixture()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err = cgt.Encode(&buf, g); err != nil {
		t.Fatal(err)
	}
	if g, err = cgt.Load(&buf); err != nil {
		t.Fatal(err)
	}
	return g
}

func newParser(t *testing.T, g *grammar.Grammar, input string, opts ...Option) *Parser {
	tok, err := lexer.New(g, strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	p, err := New(tok, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// --- Calculator ------------------------------------------------------------

type number struct {
	sym *grammar.Symbol
	pos gold.Position
	v   float64
}

func (n *number) Symbol() *grammar.Symbol { return n.sym }
func (n *number) Position() gold.Position { return n.pos }

// evaluator computes the value of arithmetic expressions while parsing.
type evaluator struct {
	t *testing.T
}

func (ev evaluator) value(tok gold.Token) float64 {
	n, ok := tok.(*number)
	if !ok {
		ev.t.Fatalf("expected a number, got %v", tok)
	}
	return n.v
}

func (ev evaluator) CanTrim(*grammar.Rule) bool { return true }

func (ev evaluator) CreateReduction(rule *grammar.Rule, ch []gold.Token) gold.Token {
	n := &number{sym: rule.Head(), pos: gold.StartOfInput}
	if len(ch) > 0 {
		n.pos = ch[0].Position()
	}
	switch rule.Index() {
	case 0:
		n.v = ev.value(ch[0]) + ev.value(ch[2])
	case 1:
		n.v = ev.value(ch[0]) - ev.value(ch[2])
	case 3:
		n.v = ev.value(ch[0]) * ev.value(ch[2])
	case 4:
		n.v = ev.value(ch[0]) / ev.value(ch[2])
	case 6:
		n.v = -ev.value(ch[1])
	case 10:
		n.v = ev.value(ch[1])
	default: // single symbol rules
		n.v = ev.value(ch[0])
	}
	return n
}

func (ev evaluator) CreateTerminal(tok gold.Token) gold.Token {
	text, ok := tok.(*gold.TextToken)
	if !ok {
		return tok
	}
	switch tok.Symbol().Name() {
	case "Integer", "Float":
		v, err := strconv.ParseFloat(text.Text(), 64)
		if err != nil {
			ev.t.Fatal(err)
		}
		return &number{sym: tok.Symbol(), pos: tok.Position(), v: v}
	}
	return tok
}

func TestEvaluateExpression(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.Calculator)
	for _, trim := range []bool{false, true} {
		p := newParser(t, g, "((100+5.0)/(4.5+.5))-12345.4e+1",
			WithSemantic(evaluator{t}), Trim(trim))
		if msg := p.ParseAll(); msg != gold.MsgAccept {
			t.Fatalf("expected input to be accepted, got %s", msg)
		}
		result, ok := p.Result().(*number)
		if !ok {
			t.Fatalf("expected a number as result, got %v", p.Result())
		}
		if math.Abs(result.v-(-123433.0)) > 1e-9 {
			t.Errorf("expected -123433.0, got %g (trim=%v)", result.v, trim)
		}
	}
}

func TestParseMessages(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.Calculator)
	p := newParser(t, g, "1 -- one\n+2")
	var msgs []gold.ParseMessage
	for {
		msg := p.Parse()
		msgs = append(msgs, msg)
		if !msg.Continues() {
			break
		}
	}
	count := map[gold.ParseMessage]int{}
	for _, msg := range msgs {
		count[msg]++
	}
	if msgs[len(msgs)-1] != gold.MsgAccept {
		t.Errorf("expected parse to end with Accept, got %v", msgs)
	}
	if count[gold.MsgTokenRead] != 4 { // 1 + 2 EOF
		t.Errorf("expected 4 tokens to be read, got %d", count[gold.MsgTokenRead])
	}
	if count[gold.MsgCommentLineRead] != 1 {
		t.Errorf("expected a line comment, got %v", msgs)
	}
	// four reductions up to <Expression> for 1, three up to <Mult Exp> for 2,
	// one for the sum
	if count[gold.MsgReduction] != 8 {
		t.Errorf("expected 8 reductions, got %d", count[gold.MsgReduction])
	}
	r, ok := p.Result().(*gold.Reduction)
	if !ok || r.Rule().Index() != 0 {
		t.Fatalf("expected result to be a reduction of rule 0, got %v", p.Result())
	}
	if gold.Text(r) != "1+2" {
		t.Errorf("expected text of result to be '1+2', got %q", gold.Text(r))
	}
}

func TestEmptyInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.List)
	p := newParser(t, g, "")
	if msg := p.ParseAll(); msg != gold.MsgAccept {
		t.Fatalf("expected empty input to be accepted, got %s", msg)
	}
	r, ok := p.Result().(*gold.Reduction)
	if !ok {
		t.Fatalf("expected a reduction, got %v", p.Result())
	}
	if r.Len() != 0 {
		t.Errorf("expected reduction without children, has %d", r.Len())
	}
	if !r.Position().Equals(gold.StartOfInput) {
		t.Errorf("expected reduction at start of input, is at %s", r.Position())
	}
}

func TestListOfItems(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.List)
	p := newParser(t, g, "a bc\ndef")
	if msg := p.ParseAll(); msg != gold.MsgAccept {
		t.Fatalf("expected input to be accepted, got %s", msg)
	}
	if text := gold.Text(p.Result()); text != "abcdef" {
		t.Errorf("expected 'abcdef', got %q", text)
	}
}

func depth(tok gold.Token) int {
	r, ok := tok.(*gold.Reduction)
	if !ok {
		return 0
	}
	d := 0
	for _, ch := range r.Children() {
		if x := depth(ch); x > d {
			d = x
		}
	}
	return d + 1
}

func TestTrimChain(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.Chain)
	p := newParser(t, g, "abc")
	if msg := p.ParseAll(); msg != gold.MsgAccept {
		t.Fatalf("expected input to be accepted, got %s", msg)
	}
	if d := depth(p.Result()); d != 4 {
		t.Errorf("expected untrimmed tree of depth 4, is %d", d)
	}
	p = newParser(t, g, "abc", Trim(true))
	if msg := p.ParseAll(); msg != gold.MsgAccept {
		t.Fatalf("expected input to be accepted, got %s", msg)
	}
	if d := depth(p.Result()); d != 1 {
		t.Errorf("expected trimmed tree of depth 1, is %d", d)
	}
	if r := p.Result().(*gold.Reduction); r.Rule().String() != "<Value> ::= Id" {
		t.Errorf("expected result to be <Value> ::= Id, is %s", r.Rule())
	}
	// a rule with more than a single non-terminal is never trimmed
	p = newParser(t, g, "abc;", Trim(true))
	if msg := p.ParseAll(); msg != gold.MsgAccept {
		t.Fatalf("expected input to be accepted, got %s", msg)
	}
	if d := depth(p.Result()); d != 2 {
		t.Errorf("expected trimmed tree of depth 2, is %d", d)
	}
}

func TestSyntaxError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.Calculator)
	p := newParser(t, g, "1+*2")
	if msg := p.ParseAll(); msg != gold.MsgSyntaxError {
		t.Fatalf("expected syntax error, got %s", msg)
	}
	if text := gold.Text(p.CurrentToken()); text != "*" {
		t.Errorf("expected offending token to be '*', is %q", text)
	}
	expected := map[string]bool{}
	for _, sym := range p.ExpectedSymbols() {
		expected[sym.Name()] = true
	}
	for _, name := range []string{"(", "-", "Integer", "Float"} {
		if !expected[name] {
			t.Errorf("expected %s to be acceptable, expected are %v", name, p.ExpectedSymbols())
		}
	}
	if expected["*"] || expected["EOF"] {
		t.Errorf("did not expect '*' or EOF to be acceptable")
	}
}

func TestLexicalError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.Calculator)
	p := newParser(t, g, "1+x")
	if msg := p.ParseAll(); msg != gold.MsgLexicalError {
		t.Fatalf("expected lexical error, got %s", msg)
	}
	tok := p.CurrentToken()
	if tok.Symbol() != g.ErrorSymbol() || gold.Text(tok) != "x" {
		t.Errorf("expected error token 'x', got %v", tok)
	}
	if tok.Position().Index != 2 {
		t.Errorf("expected error at index 2, is %d", tok.Position().Index)
	}
}

func TestCommentError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.Calculator)
	p := newParser(t, g, "1+2 /* unterminated")
	if msg := p.ParseAll(); msg != gold.MsgCommentError {
		t.Fatalf("expected comment error, got %s", msg)
	}
}

func TestStrayCommentEnd(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.Calculator)
	for _, input := range []string{"1+2 */", "1 */ +2"} {
		p := newParser(t, g, input)
		if msg := p.ParseAll(); msg != gold.MsgSyntaxError {
			t.Errorf("expected syntax error for %q, got %s", input, msg)
			continue
		}
		tok := p.CurrentToken()
		if tok.Symbol().Kind() != grammar.CommentEnd || gold.Text(tok) != "*/" {
			t.Errorf("expected offending token to be '*/' in %q, is %v", input, tok)
		}
	}
}

func TestTerminalMessages(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	calc := load(t, tablegen.Calculator)
	broken := brokenGrammar(t)
	tests := []struct {
		g     *grammar.Grammar
		input string
		msg   gold.ParseMessage
	}{
		{calc, "1+x", gold.MsgLexicalError},
		{calc, "1+*2", gold.MsgSyntaxError},
		{calc, "1+2 */", gold.MsgSyntaxError},
		{calc, "1+2 /* open", gold.MsgCommentError},
		{broken, "a", gold.MsgInternalError},
		{calc, "1 -- c\n+2 /* b */", gold.MsgAccept},
	}
	for _, test := range tests {
		p := newParser(t, test.g, test.input)
		if msg := p.ParseAll(); msg != test.msg {
			t.Errorf("expected %s for %q, got %s", test.msg, test.input, msg)
		}
		if test.msg.Continues() {
			t.Errorf("%s must end parsing", test.msg)
		}
	}
}

func TestCommentMessagesContinue(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.Calculator)
	p := newParser(t, g, "1 -- c\n+2 /* b */")
	var comments []gold.ParseMessage
	msg := p.Parse()
	for ; msg.Continues(); msg = p.Parse() {
		switch msg {
		case gold.MsgCommentLineRead, gold.MsgCommentBlockRead:
			comments = append(comments, msg)
		}
	}
	if msg != gold.MsgAccept {
		t.Fatalf("expected input to be accepted after comments, got %s", msg)
	}
	if len(comments) != 2 || comments[0] != gold.MsgCommentLineRead || comments[1] != gold.MsgCommentBlockRead {
		t.Errorf("expected a line comment and a block comment, got %v", comments)
	}
}

func TestRetryLexicalError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.Calculator)
	var dropped []string
	skip := func(p *Parser, tok gold.Token) (gold.Token, bool) {
		dropped = append(dropped, gold.Text(tok))
		return nil, true
	}
	p := newParser(t, g, "1+x2", WithSemantic(evaluator{t}), RetryLexicalError(skip))
	if msg := p.ParseAll(); msg != gold.MsgAccept {
		t.Fatalf("expected input to be accepted, got %s", msg)
	}
	if v := p.Result().(*number).v; v != 3 {
		t.Errorf("expected 1+2=3, got %g", v)
	}
	if len(dropped) != 1 || dropped[0] != "x" {
		t.Errorf("expected 'x' to be dropped, dropped are %v", dropped)
	}
}

func TestRetrySyntaxErrorWithInjectedTokens(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.Calculator)
	plus := g.SymbolByName("+", grammar.Terminal)
	insertPlus := func(p *Parser, tok gold.Token) (gold.Token, bool) {
		if tok.Symbol() == g.EndSymbol() {
			return nil, false
		}
		p.PushTokens(tok)
		return gold.NewTextToken(plus, tok.Position(), "+"), true
	}
	p := newParser(t, g, "1 2 3", WithSemantic(evaluator{t}), RetrySyntaxError(insertPlus))
	if msg := p.ParseAll(); msg != gold.MsgAccept {
		t.Fatalf("expected input to be accepted, got %s", msg)
	}
	if v := p.Result().(*number).v; v != 6 {
		t.Errorf("expected 1+2+3=6, got %g", v)
	}
}

func TestResetParser(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	g := load(t, tablegen.Calculator)
	tok, _ := lexer.New(g, strings.NewReader("1+"))
	p, _ := New(tok, WithSemantic(evaluator{t}))
	if msg := p.ParseAll(); msg != gold.MsgSyntaxError {
		t.Fatalf("expected syntax error at end of input, got %s", msg)
	}
	if err := tok.Reset(strings.NewReader("2*3")); err != nil {
		t.Fatal(err)
	}
	p.Reset()
	if p.Top() != nil || p.Result() != nil {
		t.Errorf("expected parser to be reset")
	}
	if msg := p.ParseAll(); msg != gold.MsgAccept {
		t.Fatalf("expected input to be accepted, got %s", msg)
	}
	if v := p.Result().(*number).v; v != 6 {
		t.Errorf("expected 2*3=6, got %g", v)
	}
}

func TestNewParserArguments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	if _, err := New(nil); !errors.Is(err, grammar.ErrInvalidArgument) {
		t.Errorf("expected invalid argument for missing tokenizer, got %v", err)
	}
}

// brokenGrammar has tables for <S> ::= a without a goto action for <S>.
func brokenGrammar(t *testing.T) *grammar.Grammar {
	b := grammar.NewBuilder()
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(b.SetParameters(grammar.Parameters{Name: "broken", CaseSensitive: true, StartSymbol: 3}))
	must(b.SetTableCounts(grammar.TableCounts{Symbols: 4, CharSets: 1, Rules: 1, DfaStates: 2, LalrStates: 2}))
	must(b.SetInitialStates(0, 0))
	must(b.SetSymbol(0, "EOF", grammar.End))
	must(b.SetSymbol(1, "Error", grammar.Error))
	must(b.SetSymbol(2, "a", grammar.Terminal))
	must(b.SetSymbol(3, "S", grammar.Nonterminal))
	must(b.SetCharSet(0, "a"))
	must(b.SetRule(0, 3, []int{2}))
	must(b.SetDfaState(0, -1, []grammar.EdgeSpec{{CharSet: 0, Target: 1}}))
	must(b.SetDfaState(1, 2, nil))
	must(b.SetLalrState(0, []grammar.ActionSpec{{Symbol: 2, Kind: grammar.ShiftAction, Target: 1}}))
	must(b.SetLalrState(1, []grammar.ActionSpec{{Symbol: 0, Kind: grammar.ReduceAction, Target: 0}}))
	g, err := b.Build()
	must(err)
	return g
}

func TestMissingGotoIsInternalError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.parser")
	defer teardown()
	//
	p := newParser(t, brokenGrammar(t), "a")
	if msg := p.ParseAll(); msg != gold.MsgInternalError {
		t.Errorf("expected internal error, got %s", msg)
	}
}
