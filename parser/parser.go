/*
Package parser implements an LALR(1) parsing engine driven by the tables of a
compiled grammar.

The parser pulls tokens from a tokenizer (usually a lexer.Tokenizer) and runs
the shift-reduce automaton of the grammar. Parsing proceeds in steps: each
call to Parse performs work until something observable happens and reports it
as a gold.ParseMessage. A token has been read, a rule has been reduced, the
input has been accepted, or an error has been found. Clients interested only
in the result call ParseAll.

	tok, _ := lexer.New(g, strings.NewReader("1+2*3"))
	p, _ := parser.New(tok)
	if msg := p.ParseAll(); msg == gold.MsgAccept {
	    fmt.Println(p.Result())
	}

Lexical and syntax errors are reported as messages, not as Go errors. Clients
may register retry hooks to rewrite or drop an offending token and continue.

# Semantics

Reductions are built by a Semantic collaborator. The default one builds a
structural parse tree of gold.Reductions. If trimming is switched on (see
option Trim), reductions of rules consisting of a single non-terminal are
elided, i.e. the child's token is passed up as the result of the reduction,
provided the collaborator agrees (see Semantic.CanTrim).

# Configuration

If configuration flag 'gold.panic-on-internal-error' is set, the parser
panics on internal errors instead of reporting them. Internal errors indicate
corrupt or mismatched grammar tables.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package parser

import (
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/gold"
	"github.com/npillmayer/gold/grammar"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gold.parser'.
func tracer() tracing.Trace {
	return tracing.Select("gold.parser")
}

// Tokenizer is the interface the parser relies on to read tokens.
// lexer.Tokenizer implements it.
type Tokenizer interface {
	NextToken() (gold.ParseMessage, gold.Token)
	Grammar() *grammar.Grammar
}

// Semantic is a collaborator creating the tokens for reductions.
type Semantic interface {
	// CanTrim is asked for rules consisting of a single non-terminal, if
	// trimming is switched on. If it returns true, no reduction is created
	// for the rule.
	CanTrim(rule *grammar.Rule) bool
	// CreateReduction creates the token for a reduction of rule, given the
	// tokens for the symbols of the rule's body.
	CreateReduction(rule *grammar.Rule, children []gold.Token) gold.Token
}

// TerminalFactory may be implemented by a Semantic collaborator. If it is,
// every token read from the input is passed to CreateTerminal before it is
// handed to the automaton.
type TerminalFactory interface {
	CreateTerminal(tok gold.Token) gold.Token
}

// RetryFunc is a hook for recovering from an error. It receives the
// offending token and may return a replacement token and true, to continue
// parsing with the replacement. A nil replacement drops the token.
// Returning false reports the error.
type RetryFunc func(p *Parser, tok gold.Token) (gold.Token, bool)

// structural is the default Semantic collaborator, building a parse tree.
type structural struct{}

func (structural) CanTrim(*grammar.Rule) bool { return true }

func (structural) CreateReduction(rule *grammar.Rule, children []gold.Token) gold.Token {
	return gold.NewReduction(rule, children)
}

// stackEntry pairs a token with the state the parser went to after pushing it.
type stackEntry struct {
	token gold.Token
	state *grammar.LalrState
}

// Parser is an LALR(1) parser. A Parser is not safe for concurrent use.
type Parser struct {
	g            *grammar.Grammar
	tokenizer    Tokenizer
	semantic     Semantic
	trim         bool
	retryLexical RetryFunc
	retrySyntax  RetryFunc
	stack        []stackEntry
	state        *grammar.LalrState
	input        gold.Token      // token read, but not yet shifted
	queue        *arraylist.List // injected tokens, read before the tokenizer
	result       gold.Token
}

// Option configures a Parser.
type Option func(*Parser)

// WithSemantic sets the collaborator for creating reductions.
func WithSemantic(s Semantic) Option {
	return func(p *Parser) {
		if s != nil {
			p.semantic = s
		}
	}
}

// Trim switches trimming of single non-terminal reductions on or off.
// Default is off.
func Trim(b bool) Option {
	return func(p *Parser) {
		p.trim = b
	}
}

// RetryLexicalError sets a hook for recovering from lexical errors.
func RetryLexicalError(f RetryFunc) Option {
	return func(p *Parser) {
		p.retryLexical = f
	}
}

// RetrySyntaxError sets a hook for recovering from syntax errors.
func RetrySyntaxError(f RetryFunc) Option {
	return func(p *Parser) {
		p.retrySyntax = f
	}
}

// New creates a parser reading tokens from t.
func New(t Tokenizer, opts ...Option) (*Parser, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: parser needs a tokenizer", grammar.ErrInvalidArgument)
	}
	g := t.Grammar()
	if g == nil || g.LalrInitial() == nil {
		return nil, fmt.Errorf("%w: parser needs a grammar with an initial LALR state", grammar.ErrInvalidArgument)
	}
	p := &Parser{
		g:         g,
		tokenizer: t,
		semantic:  structural{},
		queue:     arraylist.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Reset()
	return p, nil
}

// Reset prepares the parser for a new parse. Clients usually reset the
// tokenizer as well. Injected tokens not yet read are dropped.
func (p *Parser) Reset() {
	p.state = p.g.LalrInitial()
	p.stack = append(p.stack[:0], stackEntry{state: p.state})
	p.input = nil
	p.result = nil
	p.queue.Clear()
}

// Grammar returns the grammar of the parser.
func (p *Parser) Grammar() *grammar.Grammar {
	return p.g
}

// State returns the current LALR state.
func (p *Parser) State() *grammar.LalrState {
	return p.state
}

// CurrentToken returns the token read but not yet consumed by the automaton.
// After a lexical or syntax error this is the offending token.
func (p *Parser) CurrentToken() gold.Token {
	return p.input
}

// Top returns the token on top of the parse stack, i.e. the token most
// recently shifted or reduced. It is nil at the start of a parse.
func (p *Parser) Top() gold.Token {
	return p.stack[len(p.stack)-1].token
}

// Result returns the token for the start symbol after the input has been
// accepted, and nil otherwise.
func (p *Parser) Result() gold.Token {
	return p.result
}

// ExpectedSymbols returns the terminals acceptable in the current state.
// After a syntax error clients use it to report what has been expected.
func (p *Parser) ExpectedSymbols() []*grammar.Symbol {
	return p.state.ExpectedSymbols()
}

// PushTokens injects tokens into the input. Injected tokens are read, in
// order, before any more tokens are read from the tokenizer.
func (p *Parser) PushTokens(tokens ...gold.Token) {
	for _, tok := range tokens {
		p.queue.Add(tok)
	}
}

// ParseAll calls Parse until it reports a message which does not allow
// parsing to continue, and returns that message.
func (p *Parser) ParseAll() gold.ParseMessage {
	for {
		if msg := p.Parse(); !msg.Continues() {
			return msg
		}
	}
}

// Parse performs a single step of parsing. It returns MsgTokenRead after a
// token has been read, MsgReduction after a rule has been reduced,
// MsgCommentLineRead or MsgCommentBlockRead after a comment has been skipped,
// MsgAccept if the input is complete, or one of the error messages.
func (p *Parser) Parse() gold.ParseMessage {
	for {
		if p.input == nil {
			msg, tok := p.nextToken()
			switch msg {
			case gold.MsgCommentLineRead, gold.MsgCommentBlockRead, gold.MsgCommentError:
				return msg
			}
			switch tok.Symbol().Kind() {
			case grammar.WhiteSpace, grammar.CommentStart, grammar.CommentLine:
				continue
			case grammar.Error:
				p.input = tok
				if p.retry(p.retryLexical, tok, true) {
					continue
				}
				return gold.MsgLexicalError
			}
			if f, ok := p.semantic.(TerminalFactory); ok {
				tok = f.CreateTerminal(tok)
			}
			p.input = tok
			return gold.MsgTokenRead
		}
		action := p.state.Action(p.input.Symbol())
		if action == nil {
			tracer().Debugf("no action for %s in state %d", p.input.Symbol(), p.state.Index())
			if p.retry(p.retrySyntax, p.input, false) {
				continue
			}
			return gold.MsgSyntaxError
		}
		switch action.Kind() {
		case grammar.ShiftAction:
			tracer().Debugf("shift %s, goto %d", p.input.Symbol(), action.Target().Index())
			p.push(p.input, action.Target())
			p.input = nil
		case grammar.ReduceAction:
			return p.reduce(action.Rule())
		case grammar.AcceptAction:
			p.result = p.Top()
			tracer().Infof("input accepted")
			return gold.MsgAccept
		default:
			return p.internalError("unexpected %s action for %s in state %d",
				action.Kind(), p.input.Symbol(), p.state.Index())
		}
	}
}

// nextToken reads a token from the injection queue, or from the tokenizer if
// the queue is empty.
func (p *Parser) nextToken() (gold.ParseMessage, gold.Token) {
	if x, ok := p.queue.Get(0); ok {
		p.queue.Remove(0)
		tok := x.(gold.Token)
		if tok.Symbol().Kind() == grammar.Error {
			return gold.MsgLexicalError, tok
		}
		return gold.MsgTokenRead, tok
	}
	return p.tokenizer.NextToken()
}

// retry calls a retry hook. A replacement for a lexical error is read again
// as input, a replacement for a syntax error is handed to the automaton.
func (p *Parser) retry(f RetryFunc, tok gold.Token, lexical bool) bool {
	if f == nil {
		return false
	}
	replacement, ok := f(p, tok)
	if !ok {
		return false
	}
	tracer().Debugf("retrying with %v instead of %s", replacement, tok)
	p.input = nil
	if replacement != nil {
		if lexical {
			p.queue.Insert(0, replacement)
		} else {
			p.input = replacement
		}
	}
	return true
}

func (p *Parser) push(tok gold.Token, state *grammar.LalrState) {
	p.stack = append(p.stack, stackEntry{token: tok, state: state})
	p.state = state
}

// reduce pops the tokens for the body of rule and pushes the reduction.
func (p *Parser) reduce(rule *grammar.Rule) gold.ParseMessage {
	var head gold.Token
	if p.trim && rule.ContainsOneNonterminal() && p.semantic.CanTrim(rule) {
		tracer().Debugf("trim %s", rule)
		head = p.Top()
		p.stack = p.stack[:len(p.stack)-1]
	} else {
		n := rule.SymbolCount()
		if n > len(p.stack)-1 {
			return p.internalError("stack too small to reduce %s", rule)
		}
		children := make([]gold.Token, n)
		for i, entry := range p.stack[len(p.stack)-n:] {
			children[i] = entry.token
		}
		p.stack = p.stack[:len(p.stack)-n]
		head = p.semantic.CreateReduction(rule, children)
		tracer().Debugf("reduce %s", rule)
	}
	exposed := p.stack[len(p.stack)-1].state
	gotoAction := exposed.Action(rule.Head())
	if gotoAction == nil || gotoAction.Kind() != grammar.GotoAction {
		return p.internalError("no goto for %s in state %d", rule.Head(), exposed.Index())
	}
	p.push(head, gotoAction.Target())
	return gold.MsgReduction
}

func (p *Parser) internalError(format string, args ...interface{}) gold.ParseMessage {
	msg := fmt.Sprintf(format, args...)
	tracer().Errorf("internal error: %s", msg)
	if gconf.GetBool("gold.panic-on-internal-error") {
		panic(fmt.Sprintf(`internal error: %s

Configuration flag gold.panic-on-internal-error is set to true. Grammar tables
are probably corrupt or do not match the tokenizer.`, msg))
	}
	return gold.MsgInternalError
}
