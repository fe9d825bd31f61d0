package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/gold"
	"github.com/npillmayer/gold/grammar"
	"github.com/npillmayer/gold/grammar/cgt"
	"github.com/npillmayer/gold/internal/tablegen"
	"github.com/npillmayer/gold/lexer"
	"github.com/npillmayer/gold/parser"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

// main starts an interactive CLI, where users may enter lines of input for a
// grammar. Every line is parsed on its own.
func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	tokens := flag.Bool("tokens", false, "Print tokens instead of parse trees")
	initf := flag.String("init", "", "Initial input, one line per parse")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelInfo) // will set the correct level later
	pterm.Info.Println("Welcome to GoldREPL")
	tracer().Infof("Trace level is %s", *tlevel)
	//
	g, err := loadGrammar(flag.Arg(0))
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	tracer().SetTraceLevel(traceLevel(*tlevel)) // now set the user supplied level
	intp, err := NewIntp(g)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	intp.tokenMode = *tokens
	intp.repl, err = readline.New("gold> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer intp.repl.Close()
	tracer().Infof("Quit with <ctrl>D")
	intp.loadInitFile(*initf)
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// loadGrammar loads a table file. Without a file name, a grammar for
// arithmetic expressions is used.
func loadGrammar(filename string) (*grammar.Grammar, error) {
	if filename == "" {
		tracer().Infof("No grammar table given, using arithmetic expressions")
		level := tracer().GetTraceLevel()
		tracer().SetTraceLevel(tracing.LevelError)
		defer tracer().SetTraceLevel(level)
		return tablegen.Calculator()
	}
	return cgt.LoadFile(filename)
}

// Intp is our interpreter object.
type Intp struct {
	g         *grammar.Grammar
	tokenizer *lexer.Tokenizer
	parser    *parser.Parser
	repl      *readline.Instance
	tokenMode bool
}

// NewIntp creates an interpreter for grammar g.
func NewIntp(g *grammar.Grammar) (*Intp, error) {
	tok, err := lexer.New(g, strings.NewReader(""))
	if err != nil {
		return nil, err
	}
	p, err := parser.New(tok)
	if err != nil {
		return nil, err
	}
	return &Intp{g: g, tokenizer: tok, parser: p}, nil
}

func (intp *Intp) loadInitFile(filename string) {
	if filename == "" {
		return
	}
	f, err := os.Open(filename)
	if err != nil {
		tracer().Errorf("Unable to open init file: %s", filename)
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	lineno := 1
	for scanner.Scan() {
		line := scanner.Text()
		if line = strings.TrimSpace(line); line != "" {
			if _, err := intp.Eval(line); err != nil {
				tracer().Errorf("Error line %d: %v", lineno, err)
			}
		}
		lineno++
	}
	if err := scanner.Err(); err != nil {
		tracer().Errorf("Error while reading init file: %v", err)
	}
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.Eval(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	println("Good bye!")
}

// Eval executes a command or parses a line of input.
func (intp *Intp) Eval(line string) (bool, error) {
	if strings.HasPrefix(line, ":") {
		return intp.command(line)
	}
	if intp.tokenMode {
		return false, intp.printTokens(line)
	}
	root, err := intp.Parse(line)
	if err != nil {
		return false, err
	}
	pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(leveled(root, nil, 0))).Render()
	return false, nil
}

func (intp *Intp) command(line string) (bool, error) {
	switch cmd := strings.Fields(line)[0]; cmd {
	case ":quit", ":q":
		return true, nil
	case ":tokens":
		intp.tokenMode = !intp.tokenMode
		pterm.Info.Printf("Token mode is %v\n", intp.tokenMode)
	case ":grammar":
		fp, err := intp.g.Fingerprint()
		if err != nil {
			return false, err
		}
		pterm.Info.Println(grammarInfo(intp.g, fp))
	case ":rules":
		for i := 0; i < intp.g.RuleCount(); i++ {
			pterm.Println(fmt.Sprintf("%3d  %s", i, intp.g.Rule(i)))
		}
	default:
		return false, fmt.Errorf("unknown command %s", cmd)
	}
	return false, nil
}

func grammarInfo(g *grammar.Grammar, fingerprint string) string {
	return fmt.Sprintf("%s %s: %d symbols, %d rules, %d DFA states, %d LALR states, start %s, fingerprint %s",
		g.Name(), g.Version(), g.SymbolCount(), g.RuleCount(), g.DfaStateCount(),
		g.LalrStateCount(), g.StartSymbol(), fingerprint)
}

// Parse parses a line of input and returns the root of the parse tree.
func (intp *Intp) Parse(line string) (gold.Token, error) {
	if err := intp.tokenizer.Reset(strings.NewReader(line)); err != nil {
		return nil, err
	}
	intp.parser.Reset()
	msg := intp.parser.ParseAll()
	switch msg {
	case gold.MsgAccept:
		tracer().Infof("Successfully parsed input")
		return intp.parser.Result(), nil
	case gold.MsgSyntaxError:
		tok := intp.parser.CurrentToken()
		return nil, fmt.Errorf("syntax error at %s: unexpected %s, expected one of %v",
			tok.Position(), tok.Symbol(), intp.parser.ExpectedSymbols())
	case gold.MsgLexicalError:
		tok := intp.parser.CurrentToken()
		return nil, fmt.Errorf("lexical error at %s: cannot read %q", tok.Position(), gold.Text(tok))
	}
	return nil, fmt.Errorf("could not parse input: %s", msg)
}

func (intp *Intp) printTokens(line string) error {
	if err := intp.tokenizer.Reset(strings.NewReader(line)); err != nil {
		return err
	}
	data := pterm.TableData{{"Position", "Symbol", "Message", "Text"}}
	for {
		msg, tok := intp.tokenizer.NextToken()
		data = append(data, []string{
			tok.Position().String(), tok.Symbol().String(), msg.String(),
			fmt.Sprintf("%q", gold.Text(tok)),
		})
		if tok.Symbol() == intp.g.EndSymbol() {
			break
		}
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil
}

// leveled flattens a parse tree into a leveled list, suitable for pterm trees.
func leveled(tok gold.Token, ll pterm.LeveledList, level int) pterm.LeveledList {
	if tok == nil {
		return append(ll, pterm.LeveledListItem{Level: level, Text: "nil"})
	}
	if r, ok := tok.(*gold.Reduction); ok {
		ll = append(ll, pterm.LeveledListItem{Level: level, Text: r.Rule().String()})
		for _, ch := range r.Children() {
			ll = leveled(ch, ll, level+1)
		}
		return ll
	}
	text := fmt.Sprintf("%s %q", tok.Symbol(), gold.Text(tok))
	return append(ll, pterm.LeveledListItem{Level: level, Text: text})
}

func traceLevel(l string) tracing.TraceLevel {
	return tracing.TraceLevelFromString(l)
}
