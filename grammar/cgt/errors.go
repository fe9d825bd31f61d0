package cgt

import (
	"fmt"

	"github.com/pingcap/errors"
)

// ErrMalformedTable is the error class of all format errors. Every error
// returned from loading or packing a table stream matches it with errors.Is.
var ErrMalformedTable = errors.New("malformed grammar table")

// Kinds of format errors.
var (
	ErrBadHeader     = errors.New("bad header")
	ErrUnknownRecord = errors.New("unknown record type")
	ErrEntryType     = errors.New("unexpected entry type")
	ErrEntryCount    = errors.New("wrong number of entries")
	ErrTruncated     = errors.New("truncated table stream")
)

// FormatError describes a format error in a table stream.
type FormatError struct {
	Kind   error // one of the error kinds above, or ErrMalformedTable
	Offset int64 // byte offset in the stream
	Msg    string
	Err    error // underlying error, if any
}

func (e *FormatError) Error() string {
	s := fmt.Sprintf("%v at offset %d", e.Kind, e.Offset)
	if e.Kind != ErrMalformedTable {
		s = ErrMalformedTable.Error() + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the error kind and the underlying error.
func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Is reports every format error to be a malformed table error.
func (e *FormatError) Is(target error) bool {
	return target == ErrMalformedTable
}

// Cause returns the error kind, for errors.Cause.
func (e *FormatError) Cause() error {
	return e.Kind
}

func formatError(kind error, offset int64, format string, args ...interface{}) *FormatError {
	err := &FormatError{Kind: kind, Offset: offset, Msg: fmt.Sprintf(format, args...)}
	tracer().Errorf(err.Error())
	return err
}
