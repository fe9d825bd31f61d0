package gold

import (
	"fmt"
	"strings"

	"github.com/npillmayer/gold/grammar"
)

// --- Positions -------------------------------------------------------------

// Position locates a token within the input stream. Lines and columns count
// from 1, Index is the 0-based character offset.
type Position struct {
	Line   int
	Column int
	Index  int
}

// StartOfInput is the position of the first character of an input stream.
// Tokens which do not carry position information report it, too.
var StartOfInput = Position{Line: 1, Column: 1, Index: 0}

// Equals compares two positions on all of line, column and index.
func (p Position) Equals(other Position) bool {
	return p.Line == other.Line && p.Column == other.Column && p.Index == other.Index
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d(@%d)", p.Line, p.Column, p.Index)
}

// --- Tokens ----------------------------------------------------------------

// Token is the common interface of everything the lexer and the parser
// produce. Terminals are represented by TextTokens, reductions of grammar rules
// by Reductions. Semantic collaborators are free to introduce their own token
// types, as long as they report a grammar symbol and a position.
type Token interface {
	Symbol() *grammar.Symbol
	Position() Position
}

// TextToken is a terminal token, i.e. a run of input characters recognized by
// the DFA of a grammar.
type TextToken struct {
	symbol *grammar.Symbol
	pos    Position
	text   string
}

var _ Token = (*TextToken)(nil)

// NewTextToken creates a terminal token.
func NewTextToken(sym *grammar.Symbol, pos Position, text string) *TextToken {
	return &TextToken{symbol: sym, pos: pos, text: text}
}

// Symbol returns the terminal symbol of this token.
func (t *TextToken) Symbol() *grammar.Symbol {
	return t.symbol
}

// Position returns the position of the first character of this token.
func (t *TextToken) Position() Position {
	return t.pos
}

// Text returns the lexeme of this token.
func (t *TextToken) Text() string {
	return t.text
}

func (t *TextToken) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.symbol, t.text, t.pos)
}

// Reduction is a node of a parse tree, representing the application of a
// grammar rule to its child tokens.
type Reduction struct {
	rule     *grammar.Rule
	children []Token
}

var _ Token = (*Reduction)(nil)

// NewReduction creates a parse tree node for a rule. The reduction takes
// ownership of the children slice.
func NewReduction(rule *grammar.Rule, children []Token) *Reduction {
	return &Reduction{rule: rule, children: children}
}

// Rule returns the grammar rule which has been reduced.
func (r *Reduction) Rule() *grammar.Rule {
	return r.rule
}

// Symbol returns the head symbol of the reduced rule.
func (r *Reduction) Symbol() *grammar.Symbol {
	return r.rule.Head()
}

// Children returns the child tokens, in the order of the rule's body.
// Clients must not modify the slice.
func (r *Reduction) Children() []Token {
	return r.children
}

// Child returns the i-th child token.
func (r *Reduction) Child(i int) Token {
	return r.children[i]
}

// Len returns the number of children.
func (r *Reduction) Len() int {
	return len(r.children)
}

// Position is the position of the first child. Epsilon reductions do not
// have any children and report StartOfInput.
func (r *Reduction) Position() Position {
	if len(r.children) == 0 || r.children[0] == nil {
		return StartOfInput
	}
	return r.children[0].Position()
}

func (r *Reduction) String() string {
	return fmt.Sprintf("%s[%d]", r.rule.Head(), len(r.children))
}

// Text returns the lexeme of a terminal token or, for tokens having children,
// the concatenated lexemes of all terminals underneath it.
func Text(t Token) string {
	var b strings.Builder
	collectText(t, &b)
	return b.String()
}

func collectText(t Token, b *strings.Builder) {
	switch tok := t.(type) {
	case interface{ Text() string }:
		b.WriteString(tok.Text())
	case interface{ Children() []Token }:
		for _, ch := range tok.Children() {
			collectText(ch, b)
		}
	}
}

// --- Parse messages --------------------------------------------------------

// ParseMessage is the outcome of a single step of the lexer or the parser.
type ParseMessage int8

// Messages reported by the lexer and the parser. Lexical, syntax, comment and
// internal errors are reported as messages, not as Go errors.
const (
	MsgTokenRead ParseMessage = iota
	MsgReduction
	MsgAccept
	MsgLexicalError
	MsgSyntaxError
	MsgCommentError
	MsgInternalError
	MsgCommentLineRead
	MsgCommentBlockRead
)

var messageNames = [...]string{
	"TokenRead", "Reduction", "Accept", "LexicalError", "SyntaxError",
	"CommentError", "InternalError", "CommentLineRead", "CommentBlockRead",
}

func (m ParseMessage) String() string {
	if m < 0 || int(m) >= len(messageNames) {
		return fmt.Sprintf("ParseMessage(%d)", int(m))
	}
	return messageNames[m]
}

// Continues is true for messages after which parsing may proceed.
func (m ParseMessage) Continues() bool {
	switch m {
	case MsgTokenRead, MsgReduction, MsgCommentLineRead, MsgCommentBlockRead:
		return true
	}
	return false
}

// IsError is true for messages signalling a failed parse.
func (m ParseMessage) IsError() bool {
	switch m {
	case MsgLexicalError, MsgSyntaxError, MsgCommentError, MsgInternalError:
		return true
	}
	return false
}
