package tablegen

import (
	"github.com/npillmayer/gold/grammar"
)

// CalculatorBuilder prepares a grammar for arithmetic expressions:
//
//	<Expression> ::= <Expression> '+' <Mult Exp>
//	               | <Expression> '-' <Mult Exp>
//	               | <Mult Exp>
//	<Mult Exp>   ::= <Mult Exp> '*' <Negate Exp>
//	               | <Mult Exp> '/' <Negate Exp>
//	               | <Negate Exp>
//	<Negate Exp> ::= '-' <Value>
//	               | <Value>
//	<Value>      ::= Integer | Float | '(' <Expression> ')'
//
// Line comments start with "--", block comments are enclosed in "/*" and "*/".
func CalculatorBuilder() *GrammarBuilder {
	b := NewGrammarBuilder("Calculator")
	b.WhiteSpace("( |\t|\r|\n)+")
	b.LineComment("--")
	b.BlockComment("/*", "*/")
	b.Terminal("Integer", `[0-9]+`)
	b.Terminal("Float", `[0-9]*\.[0-9]+((e|E)(\+|\-)?[0-9]+)?`)
	b.Literal("+").Literal("-").Literal("*").Literal("/").Literal("(").Literal(")")
	b.LHS("Expression").N("Expression").T("+").N("Mult Exp").End()
	b.LHS("Expression").N("Expression").T("-").N("Mult Exp").End()
	b.LHS("Expression").N("Mult Exp").End()
	b.LHS("Mult Exp").N("Mult Exp").T("*").N("Negate Exp").End()
	b.LHS("Mult Exp").N("Mult Exp").T("/").N("Negate Exp").End()
	b.LHS("Mult Exp").N("Negate Exp").End()
	b.LHS("Negate Exp").T("-").N("Value").End()
	b.LHS("Negate Exp").N("Value").End()
	b.LHS("Value").T("Integer").End()
	b.LHS("Value").T("Float").End()
	b.LHS("Value").T("(").N("Expression").T(")").End()
	return b
}

// Calculator returns the tables for the grammar of CalculatorBuilder.
func Calculator() (*grammar.Grammar, error) {
	return CalculatorBuilder().Grammar()
}

// List returns the tables for a grammar accepting the empty input:
//
//	<List> ::= <List> Item
//	         |
func List() (*grammar.Grammar, error) {
	b := NewGrammarBuilder("List")
	b.WhiteSpace("( |\t|\r|\n)+")
	b.Terminal("Item", `[a-z]+`)
	b.LHS("List").N("List").T("Item").End()
	b.LHS("List").Epsilon()
	return b.Grammar()
}

// Chain returns the tables for a grammar with a chain of rules having a
// single non-terminal on their right side:
//
//	<Program>    ::= <Statement>
//	<Statement>  ::= <Expression>
//	<Expression> ::= <Value> | <Value> ';'
//	<Value>      ::= Id
func Chain() (*grammar.Grammar, error) {
	b := NewGrammarBuilder("Chain")
	b.WhiteSpace("( |\t|\r|\n)+")
	b.Terminal("Id", `[a-zA-Z]+`)
	b.LHS("Program").N("Statement").End()
	b.LHS("Statement").N("Expression").End()
	b.LHS("Expression").N("Value").End()
	b.LHS("Expression").N("Value").T(";").End()
	b.LHS("Value").T("Id").End()
	return b.Grammar()
}

// Keywords returns the tables for a case-insensitive grammar:
//
//	<Statement> ::= BEGIN <Names> END
//	<Names>     ::= <Names> Name | Name
func Keywords() (*grammar.Grammar, error) {
	b := NewGrammarBuilder("Keywords").CaseInsensitive()
	b.WhiteSpace("( |\t|\r|\n)+")
	b.Terminal("BEGIN", `begin`)
	b.Terminal("END", `end`)
	b.Terminal("Name", `[a-z]+`)
	b.LHS("Statement").T("BEGIN").N("Names").T("END").End()
	b.LHS("Names").N("Names").T("Name").End()
	b.LHS("Names").T("Name").End()
	return b.Grammar()
}
