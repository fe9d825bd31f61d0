package cgt

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pingcap/errors"

	"github.com/npillmayer/gold/grammar"
)

// Option configures encoding.
type Option func(*writer)

// Packed sets whether integer entries with small values are written as byte
// entries. Default is false.
func Packed(b bool) Option {
	return func(wr *writer) {
		wr.packed = b
	}
}

// Encode writes the tables of a grammar to w. Records are written in the
// order parameters, table counts, character sets, symbols, rules, initial
// states, DFA states and LALR states.
func Encode(w io.Writer, g *grammar.Grammar, opts ...Option) error {
	if g == nil || w == nil {
		return fmt.Errorf("%w: nothing to encode", grammar.ErrInvalidArgument)
	}
	wr := newWriter(w, false)
	for _, opt := range opts {
		opt(wr)
	}
	wr.header()
	//
	wr.begin(recParameters)
	wr.string(g.Name())
	wr.string(g.Version())
	wr.string(g.Author())
	wr.string(g.About())
	wr.bool(g.CaseSensitive())
	wr.int(g.StartSymbol().Index())
	wr.end()
	//
	wr.begin(recCounts)
	wr.int(g.SymbolCount())
	wr.int(g.CharSetCount())
	wr.int(g.RuleCount())
	wr.int(g.DfaStateCount())
	wr.int(g.LalrStateCount())
	wr.end()
	//
	for i := 0; i < g.CharSetCount(); i++ {
		wr.begin(recCharSet)
		wr.int(i)
		wr.string(g.CharSet(i).Chars())
		wr.end()
	}
	for i := 0; i < g.SymbolCount(); i++ {
		sym := g.Symbol(i)
		wr.begin(recSymbol)
		wr.int(i)
		wr.string(sym.Name())
		wr.int(int(sym.Kind()))
		wr.end()
	}
	for i := 0; i < g.RuleCount(); i++ {
		r := g.Rule(i)
		wr.begin(recRule)
		wr.int(i)
		wr.int(r.Head().Index())
		wr.empty()
		for _, sym := range r.Symbols() {
			wr.int(sym.Index())
		}
		wr.end()
	}
	wr.begin(recInitial)
	wr.int(g.DfaInitial().Index())
	wr.int(g.LalrInitial().Index())
	wr.end()
	//
	for i := 0; i < g.DfaStateCount(); i++ {
		s := g.DfaState(i)
		wr.begin(recDfaState)
		wr.int(i)
		wr.bool(s.AcceptSymbol() != nil)
		if s.AcceptSymbol() != nil {
			wr.int(s.AcceptSymbol().Index())
		} else {
			wr.int(0)
		}
		wr.empty()
		for _, e := range s.Edges() {
			wr.int(e.CharSet.Index())
			wr.int(e.Target.Index())
			wr.empty()
		}
		wr.end()
	}
	for i := 0; i < g.LalrStateCount(); i++ {
		s := g.LalrState(i)
		wr.begin(recLalrState)
		wr.int(i)
		wr.empty()
		for _, a := range s.Actions() {
			wr.int(a.Symbol().Index())
			wr.int(int(a.Kind()))
			switch a.Kind() {
			case grammar.ShiftAction, grammar.GotoAction:
				wr.int(a.Target().Index())
			case grammar.ReduceAction:
				wr.int(a.Rule().Index())
			default:
				wr.int(0)
			}
			wr.empty()
		}
		wr.end()
	}
	return wr.flush()
}

// Pack re-encodes a table stream, replacing integer entries with small values
// by byte entries. Record and entry order is preserved; the result decodes to
// the same tables and is never larger than the input. It returns the number
// of bytes read and written.
func Pack(r io.Reader, w io.Writer) (int64, int64, error) {
	rd := newReader(r)
	if err := rd.header(); err != nil {
		return rd.offset, 0, err
	}
	cw := &countingWriter{w: w}
	wr := newWriter(cw, true)
	wr.header()
	for {
		rec, err := rd.record()
		if err == io.EOF {
			break
		} else if err != nil {
			return rd.offset, cw.n, err
		}
		wr.begin(rec.kind)
		for _, e := range rec.entries {
			if e.tag == tagInteger && e.num <= 255 {
				e.tag = tagByte
			}
			wr.entries = append(wr.entries, e)
		}
		wr.end()
	}
	err := wr.flush()
	tracer().Debugf("packed %d bytes to %d bytes", rd.offset, cw.n)
	return rd.offset, cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// PackResult reports the outcome of packing a table file.
type PackResult struct {
	Path    string
	Before  int64 // size of the original file
	After   int64 // size of the packed tables
	Written bool  // file has been replaced by the packed tables
}

// PackFile packs a table file in place. The file is loaded first, to make
// sure only valid tables are packed. It is overwritten only if the packed
// tables are strictly smaller.
func PackFile(path string) (PackResult, error) {
	result := PackResult{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		return result, errors.Trace(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return result, errors.Trace(err)
	}
	result.Before = int64(len(data))
	if _, err = Load(bytes.NewReader(data)); err != nil {
		return result, errors.Annotatef(err, "loading grammar table %s", path)
	}
	var packed bytes.Buffer
	if _, result.After, err = Pack(bytes.NewReader(data), &packed); err != nil {
		return result, errors.Annotatef(err, "packing grammar table %s", path)
	}
	if result.After >= result.Before {
		tracer().Infof("%s cannot be packed any further", path)
		return result, nil
	}
	if err = os.WriteFile(path, packed.Bytes(), info.Mode().Perm()); err != nil {
		return result, errors.Trace(err)
	}
	result.Written = true
	tracer().Infof("packed %s from %d to %d bytes", path, result.Before, result.After)
	return result, nil
}
