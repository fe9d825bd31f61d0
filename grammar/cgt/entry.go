package cgt

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pingcap/errors"
	"golang.org/x/text/encoding/unicode"
)

// Header of table files, version 1.0.
const Header = "GOLD Parser Tables/v1.0"

const recordMarker = 'M'

// Entry type tags.
const (
	tagEmpty   = 'E'
	tagInteger = 'I'
	tagString  = 'S'
	tagBool    = 'B'
	tagByte    = 'b'
)

// Record kinds.
const (
	recParameters = 'P'
	recCounts     = 'T'
	recInitial    = 'I'
	recSymbol     = 'S'
	recCharSet    = 'C'
	recRule       = 'R'
	recDfaState   = 'D'
	recLalrState  = 'L'
	recComment    = '!'
)

func knownRecord(kind byte) bool {
	switch kind {
	case recParameters, recCounts, recInitial, recSymbol, recCharSet,
		recRule, recDfaState, recLalrState, recComment:
		return true
	}
	return false
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// entry is a typed value of a record.
type entry struct {
	tag    byte
	num    int    // integer, byte and boolean entries
	str    string // string entries
	offset int64
}

// record is a sequence of entries, the first of which is the record kind.
type record struct {
	kind    byte
	offset  int64
	entries []entry // without the kind entry
}

// --- Reading ---------------------------------------------------------------

// reader reads entries and records, keeping track of the stream offset.
type reader struct {
	r      *bufio.Reader
	offset int64
}

func newReader(r io.Reader) *reader {
	return &reader{r: bufio.NewReader(r)}
}

func (rd *reader) truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return formatError(ErrTruncated, rd.offset, "unexpected end of stream")
	}
	return errors.Trace(err)
}

func (rd *reader) byte() (byte, error) {
	b, err := rd.r.ReadByte()
	if err != nil {
		return 0, rd.truncated(err)
	}
	rd.offset++
	return b, nil
}

func (rd *reader) uint16() (int, error) {
	var buf [2]byte
	n, err := io.ReadFull(rd.r, buf[:])
	rd.offset += int64(n)
	if err != nil {
		return 0, rd.truncated(err)
	}
	return int(binary.LittleEndian.Uint16(buf[:])), nil
}

// string reads UTF-16LE code units up to a zero unit.
func (rd *reader) string() (string, error) {
	var raw []byte
	for {
		var buf [2]byte
		n, err := io.ReadFull(rd.r, buf[:])
		rd.offset += int64(n)
		if err != nil {
			return "", rd.truncated(err)
		}
		if buf[0] == 0 && buf[1] == 0 {
			break
		}
		raw = append(raw, buf[0], buf[1])
	}
	s, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Trace(err)
	}
	return string(s), nil
}

func (rd *reader) header() error {
	h, err := rd.string()
	if err != nil {
		if fe, ok := err.(*FormatError); ok && fe.Kind == ErrTruncated {
			return formatError(ErrBadHeader, 0, "stream too short for header")
		}
		return err
	}
	if h != Header {
		return formatError(ErrBadHeader, 0, "header is %q", h)
	}
	return nil
}

func (rd *reader) entry() (entry, error) {
	e := entry{offset: rd.offset}
	var err error
	if e.tag, err = rd.byte(); err != nil {
		return e, err
	}
	switch e.tag {
	case tagEmpty:
	case tagInteger:
		e.num, err = rd.uint16()
	case tagString:
		e.str, err = rd.string()
	case tagBool, tagByte:
		var b byte
		b, err = rd.byte()
		e.num = int(b)
	default:
		return e, formatError(ErrEntryType, e.offset, "unknown entry tag %q", e.tag)
	}
	return e, err
}

// record reads the next record. At the end of the stream it returns io.EOF.
func (rd *reader) record() (*record, error) {
	m, err := rd.r.ReadByte()
	if err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	rec := &record{offset: rd.offset}
	rd.offset++
	if m != recordMarker {
		return nil, formatError(ErrUnknownRecord, rec.offset, "expected record marker, found %q", m)
	}
	count, err := rd.uint16()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, formatError(ErrEntryCount, rec.offset, "record without entries")
	}
	kind, err := rd.entry()
	if err != nil {
		return nil, err
	}
	if kind.tag != tagByte {
		return nil, formatError(ErrEntryType, kind.offset, "record kind has tag %q", kind.tag)
	}
	rec.kind = byte(kind.num)
	if !knownRecord(rec.kind) {
		return nil, formatError(ErrUnknownRecord, kind.offset, "record kind %q", rec.kind)
	}
	rec.entries = make([]entry, count-1)
	for i := range rec.entries {
		if rec.entries[i], err = rd.entry(); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// fields interprets the entries of a record, checking entry types and counts.
type fields struct {
	rec *record
	pos int
	err error
}

func (f *fields) next(want string) (entry, bool) {
	if f.err != nil {
		return entry{}, false
	}
	if f.pos >= len(f.rec.entries) {
		f.err = formatError(ErrEntryCount, f.rec.offset, "record %q: missing %s", f.rec.kind, want)
		return entry{}, false
	}
	e := f.rec.entries[f.pos]
	f.pos++
	return e, true
}

func (f *fields) mismatch(e entry, want string) {
	f.err = formatError(ErrEntryType, e.offset, "record %q: expected %s, found tag %q", f.rec.kind, want, e.tag)
}

// int accepts integer entries and byte entries.
func (f *fields) int() int {
	e, ok := f.next("integer")
	if !ok {
		return 0
	}
	if e.tag != tagInteger && e.tag != tagByte {
		f.mismatch(e, "integer")
		return 0
	}
	return e.num
}

func (f *fields) string() string {
	e, ok := f.next("string")
	if !ok {
		return ""
	}
	if e.tag != tagString {
		f.mismatch(e, "string")
	}
	return e.str
}

func (f *fields) bool() bool {
	e, ok := f.next("boolean")
	if !ok {
		return false
	}
	if e.tag != tagBool {
		f.mismatch(e, "boolean")
	}
	return e.num != 0
}

func (f *fields) empty() {
	e, ok := f.next("empty entry")
	if ok && e.tag != tagEmpty {
		f.mismatch(e, "empty entry")
	}
}

func (f *fields) remaining() int {
	return len(f.rec.entries) - f.pos
}

// done checks that all entries have been consumed.
func (f *fields) done() error {
	if f.err == nil && f.remaining() > 0 {
		f.err = formatError(ErrEntryCount, f.rec.offset, "record %q: %d surplus entries", f.rec.kind, f.remaining())
	}
	return f.err
}

// --- Writing ---------------------------------------------------------------

// writer writes entries and records. Errors are sticky.
type writer struct {
	w       *bufio.Writer
	packed  bool
	entries []entry
	err     error
}

func newWriter(w io.Writer, packed bool) *writer {
	return &writer{w: bufio.NewWriter(w), packed: packed}
}

func (wr *writer) write(p []byte) {
	if wr.err == nil {
		_, wr.err = wr.w.Write(p)
	}
}

func (wr *writer) writeString(s string) {
	raw, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil && wr.err == nil {
		wr.err = errors.Trace(err)
	}
	wr.write(raw)
	wr.write([]byte{0, 0})
}

func (wr *writer) header() {
	wr.writeString(Header)
}

// begin starts a record of a given kind.
func (wr *writer) begin(kind byte) {
	wr.entries = append(wr.entries[:0], entry{tag: tagByte, num: int(kind)})
}

func (wr *writer) int(n int) {
	if wr.packed && n >= 0 && n <= 255 {
		wr.entries = append(wr.entries, entry{tag: tagByte, num: n})
		return
	}
	wr.entries = append(wr.entries, entry{tag: tagInteger, num: n})
}

func (wr *writer) string(s string) {
	wr.entries = append(wr.entries, entry{tag: tagString, str: s})
}

func (wr *writer) bool(b bool) {
	e := entry{tag: tagBool}
	if b {
		e.num = 1
	}
	wr.entries = append(wr.entries, e)
}

func (wr *writer) empty() {
	wr.entries = append(wr.entries, entry{tag: tagEmpty})
}

// end writes the current record.
func (wr *writer) end() {
	if len(wr.entries) > 0xffff && wr.err == nil {
		wr.err = errors.Errorf("record %q has too many entries: %d", wr.entries[0].num, len(wr.entries))
	}
	var buf [3]byte
	buf[0] = recordMarker
	binary.LittleEndian.PutUint16(buf[1:], uint16(len(wr.entries)))
	wr.write(buf[:])
	for _, e := range wr.entries {
		wr.entry(e)
	}
}

func (wr *writer) entry(e entry) {
	switch e.tag {
	case tagEmpty:
		wr.write([]byte{tagEmpty})
	case tagInteger:
		if (e.num < 0 || e.num > 0xffff) && wr.err == nil {
			wr.err = errors.Errorf("integer entry out of range: %d", e.num)
		}
		var buf [3]byte
		buf[0] = tagInteger
		binary.LittleEndian.PutUint16(buf[1:], uint16(e.num))
		wr.write(buf[:])
	case tagString:
		wr.write([]byte{tagString})
		wr.writeString(e.str)
	case tagBool, tagByte:
		wr.write([]byte{e.tag, byte(e.num)})
	}
}

func (wr *writer) flush() error {
	if wr.err != nil {
		return wr.err
	}
	return errors.Trace(wr.w.Flush())
}
