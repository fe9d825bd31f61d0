/*
Package buffer implements a character buffer with unbounded lookahead.

A CharBuffer reads characters from an io.Reader into a sliding window.
Clients read characters one by one and may set marks at the current read
position. A mark guarantees that all characters from the mark's position up
to the read position stay available: clients may move back to the mark,
measure the distance to the mark, or extract the text between the mark and
the read position. Everything in front of the earliest active mark may be
discarded. Marks therefore have to be released as soon as they are no longer
needed.

	buf, _ := buffer.New(strings.NewReader("Hello World"))
	m := buf.CreateMark()
	for i := 0; i < 5; i++ {
	    buf.TryReadChar()
	}
	fmt.Println(m.Text())    // prints "Hello"
	buf.MoveToMark(m)        // read position is at 'H' again
	m.Release()

When new characters are needed, the buffer moves the retained characters to
the front of the window. It grows (doubling its capacity) only if the
retained characters fill the window.

A CharBuffer is not safe for concurrent use.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package buffer

import (
	"bufio"
	"errors"
	"io"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'gold.buffer'.
func tracer() tracing.Trace {
	return tracing.Select("gold.buffer")
}

// Usage errors.
var (
	ErrNilReader    = errors.New("buffer needs a reader")
	ErrMarkReleased = errors.New("mark has already been released")
	ErrForeignMark  = errors.New("mark belongs to a different buffer")
	ErrStepBack     = errors.New("cannot step back in front of the earliest mark")
)

// DefaultCapacity is the initial capacity of a buffer, in characters.
const DefaultCapacity = 1024

// CharBuffer is a sliding window over a stream of characters.
type CharBuffer struct {
	reader io.RuneReader
	chars  []rune
	pos    int          // read position, index into chars
	end    int          // number of valid characters in chars
	base   int64        // stream index of chars[0]
	marks  *treeset.Set // active marks, ordered by position
	serial int          // for ordering marks at the same position
	eof    bool         // no more characters to read from reader
	err    error        // read error other than EOF
}

// Option configures a CharBuffer.
type Option func(*CharBuffer)

// InitialCapacity sets the initial size of the buffer window, in characters.
func InitialCapacity(n int) Option {
	return func(cb *CharBuffer) {
		if n > 0 {
			cb.chars = make([]rune, n)
		}
	}
}

// New creates a buffer reading characters from r.
func New(r io.Reader, opts ...Option) (*CharBuffer, error) {
	if r == nil {
		return nil, ErrNilReader
	}
	cb := &CharBuffer{marks: treeset.NewWith(markComparator)}
	if rr, ok := r.(io.RuneReader); ok {
		cb.reader = rr
	} else {
		cb.reader = bufio.NewReader(r)
	}
	for _, opt := range opts {
		opt(cb)
	}
	if cb.chars == nil {
		cb.chars = make([]rune, DefaultCapacity)
	}
	return cb, nil
}

// TryReadChar reads the next character and advances the read position.
// At the end of input it returns false.
func (cb *CharBuffer) TryReadChar() (rune, bool) {
	if cb.pos == cb.end && !cb.fill() {
		return 0, false
	}
	r := cb.chars[cb.pos]
	cb.pos++
	return r, true
}

// PeekChar returns the next character without advancing the read position.
func (cb *CharBuffer) PeekChar() (rune, bool) {
	if cb.pos == cb.end && !cb.fill() {
		return 0, false
	}
	return cb.chars[cb.pos], true
}

// Index returns the read position as an index into the character stream.
func (cb *CharBuffer) Index() int64 {
	return cb.base + int64(cb.pos)
}

// Err returns the first error other than io.EOF encountered while reading.
// Read errors end the input.
func (cb *CharBuffer) Err() error {
	return cb.err
}

// StepBack moves the read position back by n characters. Stepping back in
// front of the earliest active mark is a programming error and panics.
func (cb *CharBuffer) StepBack(n int) {
	if n < 0 || cb.pos-n < cb.floor(-1) {
		panic(ErrStepBack)
	}
	cb.pos -= n
}

// floor returns the position in front of which characters may be discarded.
// If there are no marks, dflt is returned.
func (cb *CharBuffer) floor(dflt int) int {
	if cb.marks.Empty() {
		if dflt < 0 {
			return cb.pos
		}
		return dflt
	}
	it := cb.marks.Iterator()
	it.First()
	return it.Value().(*Mark).pos
}

// fill reads more characters. It returns false if no more characters are
// available. Reading stops after a newline, to support line-wise
// interactive input.
func (cb *CharBuffer) fill() bool {
	if cb.eof {
		return false
	}
	if floor := cb.floor(cb.pos); floor > 0 {
		copy(cb.chars, cb.chars[floor:cb.end])
		cb.end -= floor
		cb.pos -= floor
		cb.base += int64(floor)
		for _, x := range cb.marks.Values() {
			x.(*Mark).pos -= floor
		}
	}
	if cb.end == len(cb.chars) {
		grown := make([]rune, 2*len(cb.chars))
		copy(grown, cb.chars[:cb.end])
		cb.chars = grown
		tracer().Debugf("buffer grown to %d characters", len(grown))
	}
	start := cb.end
	for cb.end < len(cb.chars) {
		r, _, err := cb.reader.ReadRune()
		if err != nil {
			cb.eof = true
			if err != io.EOF {
				cb.err = err
				tracer().Errorf("read error: %v", err)
			}
			break
		}
		cb.chars[cb.end] = r
		cb.end++
		if r == '\n' {
			break
		}
	}
	return cb.end > start
}

// --- Marks -----------------------------------------------------------------

// Mark is a position within a CharBuffer.
type Mark struct {
	cb       *CharBuffer
	serial   int
	pos      int
	released bool
}

func markComparator(a, b interface{}) int {
	m1, m2 := a.(*Mark), b.(*Mark)
	if m1.pos != m2.pos {
		return m1.pos - m2.pos
	}
	return m1.serial - m2.serial
}

// CreateMark sets a mark at the current read position. The mark has to be
// released.
func (cb *CharBuffer) CreateMark() *Mark {
	cb.serial++
	m := &Mark{cb: cb, serial: cb.serial, pos: cb.pos}
	cb.marks.Add(m)
	return m
}

// MoveToMark moves the read position to the position of mark m.
func (cb *CharBuffer) MoveToMark(m *Mark) error {
	if m == nil || m.cb != cb {
		return ErrForeignMark
	}
	if m.released {
		return ErrMarkReleased
	}
	cb.pos = m.pos
	return nil
}

// MarkCount returns the number of active marks.
func (cb *CharBuffer) MarkCount() int {
	return cb.marks.Size()
}

// Index returns the position of the mark as an index into the character stream.
func (m *Mark) Index() int64 {
	m.check()
	return m.cb.base + int64(m.pos)
}

// Distance returns the number of characters between the mark and the read
// position. It is negative if the read position is in front of the mark.
func (m *Mark) Distance() int {
	m.check()
	return m.cb.pos - m.pos
}

// Text returns the characters from the mark up to the read position.
func (m *Mark) Text() string {
	m.check()
	if m.cb.pos <= m.pos {
		return ""
	}
	return string(m.cb.chars[m.pos:m.cb.pos])
}

// Release releases the mark. Released marks must not be used any more.
func (m *Mark) Release() {
	m.check()
	m.cb.marks.Remove(m)
	m.released = true
}

func (m *Mark) check() {
	if m.released {
		panic(ErrMarkReleased)
	}
}
