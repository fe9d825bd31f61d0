package lexer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/gold"
	"github.com/npillmayer/gold/grammar"
	"github.com/npillmayer/gold/grammar/cgt"
	"github.com/npillmayer/gold/internal/tablegen"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// calculator loads the calculator tables the way clients do, from a table
// stream.
func calculator(t *testing.T) *grammar.Grammar {
	g, err := tablegen.Calculator()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, cgt.Encode(&buf, g, cgt.Packed(true)))
	g, err = cgt.Load(&buf)
	require.NoError(t, err)
	return g
}

type lexeme struct {
	msg   gold.ParseMessage
	kind  grammar.SymbolKind
	name  string
	text  string
	index int
}

func collect(t *testing.T, tok *Tokenizer) []lexeme {
	var lexemes []lexeme
	for i := 0; i < 100; i++ {
		msg, token := tok.NextToken()
		lexemes = append(lexemes, lexeme{
			msg:   msg,
			kind:  token.Symbol().Kind(),
			name:  token.Symbol().Name(),
			text:  gold.Text(token),
			index: token.Position().Index,
		})
		if token.Symbol() == tok.Grammar().EndSymbol() {
			return lexemes
		}
	}
	t.Fatalf("tokenizer did not reach end of input")
	return nil
}

func TestNewTokenizerArguments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.lexer")
	defer teardown()
	//
	_, err := New(nil, strings.NewReader("1"))
	assert.True(t, errors.Is(err, grammar.ErrInvalidArgument))
	_, err = New(calculator(t), nil)
	assert.True(t, errors.Is(err, grammar.ErrInvalidArgument))
}

func TestTokenSequence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.lexer")
	defer teardown()
	//
	g := calculator(t)
	input := "0*(3-5)/-9 -- line comment\r\n+1.0 /* block\r\ncomment */ *.0e2"
	tok, err := New(g, strings.NewReader(input))
	require.NoError(t, err)
	read, ws := gold.MsgTokenRead, grammar.WhiteSpace
	term := grammar.Terminal
	expected := []lexeme{
		{read, term, "Integer", "0", 0},
		{read, term, "*", "*", 1},
		{read, term, "(", "(", 2},
		{read, term, "Integer", "3", 3},
		{read, term, "-", "-", 4},
		{read, term, "Integer", "5", 5},
		{read, term, ")", ")", 6},
		{read, term, "/", "/", 7},
		{read, term, "-", "-", 8},
		{read, term, "Integer", "9", 9},
		{read, ws, "Whitespace", " ", 10},
		{gold.MsgCommentLineRead, grammar.CommentLine, "Comment Line", "-- line comment", 11},
		{read, ws, "Whitespace", "\r\n", 26},
		{read, term, "+", "+", 28},
		{read, term, "Float", "1.0", 29},
		{read, ws, "Whitespace", " ", 32},
		{gold.MsgCommentBlockRead, grammar.CommentStart, "Comment Start", "/* block\r\ncomment */", 33},
		{read, ws, "Whitespace", " ", 53},
		{read, term, "*", "*", 54},
		{read, term, "Float", ".0e2", 55},
		{read, grammar.End, "EOF", "", 59},
	}
	assert.Equal(t, expected, collect(t, tok))
	// end of input is sticky
	msg, token := tok.NextToken()
	assert.Equal(t, gold.MsgTokenRead, msg)
	assert.Equal(t, g.EndSymbol(), token.Symbol())
}

func TestLinesAndColumns(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.lexer")
	defer teardown()
	//
	g := calculator(t)
	tok, _ := New(g, strings.NewReader("1\r\n2\n3\r4\r\n\t5"), TabWidth(4))
	var positions []gold.Position
	for {
		_, token := tok.NextToken()
		if token.Symbol().Kind() == grammar.Terminal {
			positions = append(positions, token.Position())
		}
		if token.Symbol() == g.EndSymbol() {
			break
		}
	}
	assert.Equal(t, []gold.Position{
		{Line: 1, Column: 1, Index: 0},
		{Line: 2, Column: 1, Index: 3},
		{Line: 3, Column: 1, Index: 5},
		{Line: 4, Column: 1, Index: 7},
		{Line: 5, Column: 5, Index: 11},
	}, positions)
}

func TestStartPosition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.lexer")
	defer teardown()
	//
	g := calculator(t)
	start := gold.Position{Line: 10, Column: 5, Index: 100}
	tok, _ := New(g, strings.NewReader("12+3"), StartPosition(start))
	_, token := tok.NextToken()
	assert.Equal(t, start, token.Position())
	_, token = tok.NextToken()
	assert.Equal(t, gold.Position{Line: 10, Column: 7, Index: 102}, token.Position())
	//
	require.NoError(t, tok.Reset(strings.NewReader("7")))
	_, token = tok.NextToken()
	assert.Equal(t, start, token.Position())
	assert.Equal(t, "7", gold.Text(token))
}

func TestLexicalErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.lexer")
	defer teardown()
	//
	g := calculator(t)
	tok, _ := New(g, strings.NewReader("1+x*200"))
	lexemes := collect(t, tok)
	require.Len(t, lexemes, 6)
	assert.Equal(t, "1", lexemes[0].text)
	assert.Equal(t, lexeme{gold.MsgLexicalError, grammar.Error, "Error", "x", 2}, lexemes[2])
	assert.Equal(t, "*", lexemes[3].text)
	assert.Equal(t, "200", lexemes[4].text)
	assert.Equal(t, grammar.End, lexemes[5].kind)
}

func TestMergedLexicalErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.lexer")
	defer teardown()
	//
	g := calculator(t)
	tok, _ := New(g, strings.NewReader("1+xyz*2"))
	assert.Len(t, collect(t, tok), 8, "unmerged errors yield one token per character")
	tok, _ = New(g, strings.NewReader("1+xyz*2"), MergeLexicalErrors(true))
	lexemes := collect(t, tok)
	require.Len(t, lexemes, 6)
	assert.Equal(t, gold.MsgLexicalError, lexemes[2].msg)
	assert.Equal(t, "xyz", lexemes[2].text)
	assert.Equal(t, 5, lexemes[3].index)
}

func TestUnterminatedBlockComment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.lexer")
	defer teardown()
	//
	g := calculator(t)
	tok, _ := New(g, strings.NewReader("1 /* no end * / in sight"))
	lexemes := collect(t, tok)
	require.Len(t, lexemes, 4)
	assert.Equal(t, gold.MsgCommentError, lexemes[2].msg)
	assert.Equal(t, "/* no end * / in sight", lexemes[2].text)
	assert.Equal(t, grammar.End, lexemes[3].kind)
}

func TestBlockCommentsDoNotNest(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.lexer")
	defer teardown()
	//
	g := calculator(t)
	tok, _ := New(g, strings.NewReader("/* a /* b */ 1"))
	lexemes := collect(t, tok)
	require.Len(t, lexemes, 4)
	assert.Equal(t, gold.MsgCommentBlockRead, lexemes[0].msg)
	assert.Equal(t, "/* a /* b */", lexemes[0].text)
	assert.Equal(t, "1", lexemes[2].text)
}

func TestLineCommentAtEndOfInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.lexer")
	defer teardown()
	//
	g := calculator(t)
	tok, _ := New(g, strings.NewReader("2 -- done"))
	lexemes := collect(t, tok)
	require.Len(t, lexemes, 4)
	assert.Equal(t, gold.MsgCommentLineRead, lexemes[2].msg)
	assert.Equal(t, "-- done", lexemes[2].text)
}

func TestCaseInsensitiveKeywords(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "gold.lexer")
	defer teardown()
	//
	g, err := tablegen.Keywords()
	require.NoError(t, err)
	tok, _ := New(g, strings.NewReader("Begin abc END"))
	lexemes := collect(t, tok)
	require.Len(t, lexemes, 6)
	assert.Equal(t, "BEGIN", lexemes[0].name)
	assert.Equal(t, "Begin", lexemes[0].text)
	assert.Equal(t, "Name", lexemes[2].name)
	assert.Equal(t, "END", lexemes[4].name)
}
