/*
Package semantic provides a registry-style semantic collaborator for the
parser.

Clients register actions for rules and terminals of a grammar. The parser
calls them whenever it reduces a rule or reads a terminal, and the values they
return are carried as Nodes on the parse stack.

	actions := semantic.NewActions(g)
	actions.Terminal("Integer", func(tok gold.Token) interface{} {
	    n, _ := strconv.Atoi(gold.Text(tok))
	    return n
	})
	actions.Rule("<Expression> ::= <Expression> '+' <Mult Exp>",
	    func(children []gold.Token) interface{} {
	        return semantic.Value(children[0]).(int) + semantic.Value(children[2]).(int)
	    })
	p, _ := parser.New(tokenizer, parser.WithSemantic(actions), parser.Trim(true))

Reductions of rules without an action are built as plain gold.Reductions.
Rules consisting of a single non-terminal and having no action may be trimmed
by the parser.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package semantic

import (
	"fmt"

	"github.com/npillmayer/gold"
	"github.com/npillmayer/gold/grammar"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gold.semantic'.
func tracer() tracing.Trace {
	return tracing.Select("gold.semantic")
}

// RuleAction computes the value of a reduction from the tokens of the rule's
// body.
type RuleAction func(children []gold.Token) interface{}

// TerminalAction computes the value of a terminal token.
type TerminalAction func(tok gold.Token) interface{}

// Node is a token carrying a semantic value.
type Node struct {
	symbol   *grammar.Symbol
	pos      gold.Position
	rule     *grammar.Rule // nil for terminals
	children []gold.Token
	Value    interface{}
}

var _ gold.Token = (*Node)(nil)

// Symbol returns the grammar symbol of the node.
func (n *Node) Symbol() *grammar.Symbol {
	return n.symbol
}

// Position returns the input position of the node.
func (n *Node) Position() gold.Position {
	return n.pos
}

// Rule returns the rule the node has been reduced from, or nil for terminals.
func (n *Node) Rule() *grammar.Rule {
	return n.rule
}

// Children returns the tokens the node has been reduced from. For terminals
// it is the token read from the input.
func (n *Node) Children() []gold.Token {
	return n.children
}

func (n *Node) String() string {
	return fmt.Sprintf("%s=%v", n.symbol, n.Value)
}

// Value returns the semantic value of a token. For Nodes this is the value
// computed by an action. For text tokens it is the text. For reductions with
// a single child it is the value of the child, for other reductions it is nil.
func Value(tok gold.Token) interface{} {
	switch t := tok.(type) {
	case *Node:
		return t.Value
	case *gold.TextToken:
		return t.Text()
	case *gold.Reduction:
		if t.Len() == 1 {
			return Value(t.Child(0))
		}
	}
	return nil
}

// Actions is a registry of actions for the rules and terminals of a grammar.
// It implements parser.Semantic and parser.TerminalFactory.
type Actions struct {
	g         *grammar.Grammar
	rules     []RuleAction // by rule index
	terminals []TerminalAction
}

// NewActions creates an empty registry for grammar g.
func NewActions(g *grammar.Grammar) *Actions {
	return &Actions{
		g:         g,
		rules:     make([]RuleAction, g.RuleCount()),
		terminals: make([]TerminalAction, g.SymbolCount()),
	}
}

// Rule registers an action for a rule, given in BNF notation as printed by
// grammar.Rule.String.
func (a *Actions) Rule(bnf string, f RuleAction) error {
	rule := a.g.RuleByText(bnf)
	if rule == nil {
		return fmt.Errorf("%w: no rule %s in grammar %s", grammar.ErrInvalidArgument, bnf, a.g.Name())
	}
	return a.RuleAt(rule.Index(), f)
}

// RuleAt registers an action for the rule at index i.
func (a *Actions) RuleAt(i int, f RuleAction) error {
	if i < 0 || i >= len(a.rules) || f == nil {
		return fmt.Errorf("%w: cannot register action for rule #%d", grammar.ErrInvalidArgument, i)
	}
	tracer().Debugf("action for rule %s", a.g.Rule(i))
	a.rules[i] = f
	return nil
}

// Terminal registers an action for the terminal with the given name.
func (a *Actions) Terminal(name string, f TerminalAction) error {
	sym := a.g.SymbolByName(name, grammar.Terminal)
	if sym == nil || !sym.IsTerminal() || f == nil {
		return fmt.Errorf("%w: cannot register action for terminal %s", grammar.ErrInvalidArgument, name)
	}
	a.terminals[sym.Index()] = f
	return nil
}

// CanTrim is true for rules without an action.
func (a *Actions) CanTrim(rule *grammar.Rule) bool {
	return a.rules[rule.Index()] == nil
}

// CreateReduction calls the action for rule. Without an action, a
// gold.Reduction is created.
func (a *Actions) CreateReduction(rule *grammar.Rule, children []gold.Token) gold.Token {
	f := a.rules[rule.Index()]
	if f == nil {
		return gold.NewReduction(rule, children)
	}
	pos := gold.StartOfInput
	if len(children) > 0 {
		pos = children[0].Position()
	}
	return &Node{
		symbol:   rule.Head(),
		pos:      pos,
		rule:     rule,
		children: children,
		Value:    f(children),
	}
}

// CreateTerminal calls the action for the token's terminal, if any.
func (a *Actions) CreateTerminal(tok gold.Token) gold.Token {
	f := a.terminals[tok.Symbol().Index()]
	if f == nil {
		return tok
	}
	return &Node{
		symbol:   tok.Symbol(),
		pos:      tok.Position(),
		children: []gold.Token{tok},
		Value:    f(tok),
	}
}
