package cgt

import (
	"fmt"
	"io"
	"os"

	"github.com/pingcap/errors"

	"github.com/npillmayer/gold/grammar"
)

// Load decodes a table stream into a grammar.
func Load(r io.Reader) (*grammar.Grammar, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no table stream to load", grammar.ErrInvalidArgument)
	}
	rd := newReader(r)
	if err := rd.header(); err != nil {
		return nil, err
	}
	b := grammar.NewBuilder()
	for {
		rec, err := rd.record()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if err = decode(b, rec); err != nil {
			return nil, err
		}
	}
	g, err := b.Build()
	if err != nil {
		return nil, &FormatError{Kind: ErrMalformedTable, Offset: rd.offset, Msg: "inconsistent tables", Err: err}
	}
	tracer().Infof("loaded grammar %q (%d bytes)", g.Name(), rd.offset)
	return g, nil
}

// LoadFile loads a grammar from a table file.
func LoadFile(path string) (*grammar.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	g, err := Load(f)
	if err != nil {
		return nil, errors.Annotatef(err, "loading grammar table %s", path)
	}
	return g, nil
}

// decode hands the content of a record to the grammar builder.
func decode(b *grammar.Builder, rec *record) error {
	f := &fields{rec: rec}
	var err error
	switch rec.kind {
	case recComment:
		return nil // content ignored
	case recParameters:
		p := grammar.Parameters{}
		p.Name = f.string()
		p.Version = f.string()
		p.Author = f.string()
		p.About = f.string()
		p.CaseSensitive = f.bool()
		p.StartSymbol = f.int()
		if err = f.done(); err == nil {
			err = b.SetParameters(p)
		}
	case recCounts:
		c := grammar.TableCounts{}
		c.Symbols = f.int()
		c.CharSets = f.int()
		c.Rules = f.int()
		c.DfaStates = f.int()
		c.LalrStates = f.int()
		if err = f.done(); err == nil {
			err = b.SetTableCounts(c)
		}
	case recInitial:
		dfa, lalr := f.int(), f.int()
		if err = f.done(); err == nil {
			err = b.SetInitialStates(dfa, lalr)
		}
	case recSymbol:
		index, name, kind := f.int(), f.string(), f.int()
		if err = f.done(); err == nil {
			tracer().Debugf("symbol %d: %s (%s)", index, name, grammar.SymbolKind(kind))
			err = b.SetSymbol(index, name, grammar.SymbolKind(kind))
		}
	case recCharSet:
		index, chars := f.int(), f.string()
		if err = f.done(); err == nil {
			err = b.SetCharSet(index, chars)
		}
	case recRule:
		index, head := f.int(), f.int()
		f.empty()
		body := make([]int, 0, f.remaining())
		for f.err == nil && f.remaining() > 0 {
			body = append(body, f.int())
		}
		if err = f.done(); err == nil {
			err = b.SetRule(index, head, body)
		}
	case recDfaState:
		index, accepting, accept := f.int(), f.bool(), f.int()
		f.empty()
		if f.err == nil && f.remaining()%3 != 0 {
			f.err = formatError(ErrEntryCount, rec.offset, "DFA state %d: edges need 3 entries each", index)
		}
		var edges []grammar.EdgeSpec
		for f.err == nil && f.remaining() > 0 {
			e := grammar.EdgeSpec{CharSet: f.int(), Target: f.int()}
			f.empty()
			edges = append(edges, e)
		}
		if !accepting {
			accept = -1
		}
		if err = f.done(); err == nil {
			err = b.SetDfaState(index, accept, edges)
		}
	case recLalrState:
		index := f.int()
		f.empty()
		if f.err == nil && f.remaining()%4 != 0 {
			f.err = formatError(ErrEntryCount, rec.offset, "LALR state %d: actions need 4 entries each", index)
		}
		var actions []grammar.ActionSpec
		for f.err == nil && f.remaining() > 0 {
			a := grammar.ActionSpec{Symbol: f.int(), Kind: grammar.ActionKind(f.int()), Target: f.int()}
			f.empty()
			actions = append(actions, a)
		}
		if err = f.done(); err == nil {
			err = b.SetLalrState(index, actions)
		}
	}
	if err != nil {
		if _, ok := err.(*FormatError); ok {
			return err
		}
		return &FormatError{Kind: ErrMalformedTable, Offset: rec.offset,
			Msg: "record " + string(rune(rec.kind)), Err: err}
	}
	return nil
}
