/*
Package lexer implements a tokenizer driven by the DFA of a compiled grammar.

The tokenizer reads characters from a buffer.CharBuffer and walks the DFA of
the grammar, remembering the last accepting state. Tokens are the longest
matches ("maximal munch"). Input the DFA does not recognize is reported as a
lexical error, with the unrecognized character as a token of the grammar's
error symbol; the tokenizer continues with the next character.

Comments are recognized by their start symbols. Line comments extend to the
end of the line (excluding the line break). Block comments extend to the
next comment end symbol; while scanning a block comment, the DFA is
restricted to states leading to comment delimiters. Block comments do not
nest.

	tok, _ := lexer.New(g, strings.NewReader("1+2"))
	for {
	    msg, token := tok.NextToken()
	    if token.Symbol() == g.EndSymbol() {
	        break
	    }
	    fmt.Println(msg, token)
	}

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package lexer

import (
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/gold"
	"github.com/npillmayer/gold/buffer"
	"github.com/npillmayer/gold/grammar"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gold.lexer'.
func tracer() tracing.Trace {
	return tracing.Select("gold.lexer")
}

// Tokenizer splits an input stream into tokens. A Tokenizer is not safe for
// concurrent use, but any number of tokenizers may share a grammar.
type Tokenizer struct {
	g           *grammar.Grammar
	buf         *buffer.CharBuffer
	start       gold.Position
	line, col   int
	index       int // stream index of the buffer's first character
	afterCR     bool
	mergeErrors bool
	tabWidth    int
	bufOpts     []buffer.Option
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// MergeLexicalErrors sets whether consecutive unrecognized characters are
// reported as a single error token. Default is false.
func MergeLexicalErrors(b bool) Option {
	return func(t *Tokenizer) {
		t.mergeErrors = b
	}
}

// TabWidth sets the number of columns a tab character advances.
// Default is 1.
func TabWidth(n int) Option {
	return func(t *Tokenizer) {
		if n > 0 {
			t.tabWidth = n
		}
	}
}

// StartPosition sets the position of the first character of the input.
// Default is gold.StartOfInput.
func StartPosition(pos gold.Position) Option {
	return func(t *Tokenizer) {
		t.start = pos
	}
}

// BufferOptions passes options to the character buffer.
func BufferOptions(opts ...buffer.Option) Option {
	return func(t *Tokenizer) {
		t.bufOpts = append(t.bufOpts, opts...)
	}
}

// New creates a tokenizer for input r, using the DFA of grammar g.
func New(g *grammar.Grammar, r io.Reader, opts ...Option) (*Tokenizer, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: tokenizer needs a grammar", grammar.ErrInvalidArgument)
	}
	t := &Tokenizer{g: g, start: gold.StartOfInput, tabWidth: 1}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.Reset(r); err != nil {
		return nil, err
	}
	return t, nil
}

// Reset starts tokenizing a new input stream, at the start position.
func (t *Tokenizer) Reset(r io.Reader) error {
	if r == nil {
		return fmt.Errorf("%w: tokenizer needs a reader", grammar.ErrInvalidArgument)
	}
	buf, err := buffer.New(r, t.bufOpts...)
	if err != nil {
		return err
	}
	t.buf = buf
	t.line, t.col, t.index = t.start.Line, t.start.Column, t.start.Index
	t.afterCR = false
	return nil
}

// Grammar returns the grammar of this tokenizer.
func (t *Tokenizer) Grammar() *grammar.Grammar {
	return t.g
}

// Position returns the position of the next character to read.
func (t *Tokenizer) Position() gold.Position {
	return gold.Position{Line: t.line, Column: t.col, Index: t.index + int(t.buf.Index())}
}

// Err returns the read error which ended the input, if any.
func (t *Tokenizer) Err() error {
	return t.buf.Err()
}

// NextToken reads the next token. At the end of input it returns a token for
// the grammar's end symbol, and it will continue to do so on subsequent calls.
func (t *Tokenizer) NextToken() (gold.ParseMessage, gold.Token) {
	pos := t.Position()
	sym, n, eof := t.match(false)
	if eof {
		tracer().Debugf("end of input at %s", pos)
		return gold.MsgTokenRead, gold.NewTextToken(t.g.EndSymbol(), pos, "")
	}
	if sym == nil {
		text := t.lexicalError()
		tracer().Debugf("lexical error at %s: %q", pos, text)
		return gold.MsgLexicalError, gold.NewTextToken(t.g.ErrorSymbol(), pos, text)
	}
	text := t.consume(n)
	var msg gold.ParseMessage
	switch sym.Kind() {
	case grammar.CommentLine:
		text += t.restOfLine()
		msg = gold.MsgCommentLineRead
	case grammar.CommentStart:
		rest, closed := t.blockComment()
		text += rest
		msg = gold.MsgCommentBlockRead
		if !closed {
			msg = gold.MsgCommentError
		}
	case grammar.Error:
		msg = gold.MsgLexicalError
	default:
		msg = gold.MsgTokenRead
	}
	tok := gold.NewTextToken(sym, pos, text)
	tracer().Debugf("%s: %s", msg, tok)
	return msg, tok
}

// match walks the DFA from the read position and returns the longest match,
// as accepted symbol and length in characters. The read position is not
// changed. If restricted is set, only block comment states are visited.
// eof is set if there are no characters left.
func (t *Tokenizer) match(restricted bool) (sym *grammar.Symbol, length int, eof bool) {
	m := t.buf.CreateMark()
	defer m.Release()
	state := t.g.DfaInitial()
	for n := 1; ; n++ {
		r, ok := t.buf.TryReadChar()
		if !ok {
			eof = n == 1
			break
		}
		next := state.Transition(r)
		if next == nil || (restricted && !t.g.IsBlockCommentState(next)) {
			break
		}
		state = next
		if state.AcceptSymbol() != nil {
			sym, length = state.AcceptSymbol(), n
		}
	}
	if err := t.buf.MoveToMark(m); err != nil {
		panic(err) // mark is ours
	}
	return
}

// consume reads n characters, updating line and column, and returns them.
func (t *Tokenizer) consume(n int) string {
	m := t.buf.CreateMark()
	defer m.Release()
	for i := 0; i < n; i++ {
		r, ok := t.buf.TryReadChar()
		if !ok {
			break
		}
		t.advance(r)
	}
	return m.Text()
}

// advance moves line and column past character r. CR, LF and CR LF each
// count as a single line break.
func (t *Tokenizer) advance(r rune) {
	switch r {
	case '\r':
		t.line++
		t.col = 1
		t.afterCR = true
		return
	case '\n':
		if !t.afterCR {
			t.line++
			t.col = 1
		}
	case '\t':
		t.col += t.tabWidth
	default:
		t.col++
	}
	t.afterCR = false
}

// lexicalError consumes an unrecognized character. If errors are merged, all
// following characters which do not start a token are consumed as well.
func (t *Tokenizer) lexicalError() string {
	var b strings.Builder
	b.WriteString(t.consume(1))
	for t.mergeErrors {
		sym, _, eof := t.match(false)
		if eof || sym != nil {
			break
		}
		b.WriteString(t.consume(1))
	}
	return b.String()
}

// restOfLine consumes characters up to, but excluding, a line break.
func (t *Tokenizer) restOfLine() string {
	var b strings.Builder
	for {
		r, ok := t.buf.PeekChar()
		if !ok || r == '\r' || r == '\n' {
			return b.String()
		}
		b.WriteString(t.consume(1))
	}
}

// blockComment consumes characters up to and including a comment end
// symbol. It returns false if the input ends before the comment is closed.
func (t *Tokenizer) blockComment() (string, bool) {
	var b strings.Builder
	for {
		sym, n, eof := t.match(true)
		if eof {
			return b.String(), false
		}
		if sym != nil && sym.Kind() == grammar.CommentEnd {
			b.WriteString(t.consume(n))
			return b.String(), true
		}
		b.WriteString(t.consume(1))
	}
}
