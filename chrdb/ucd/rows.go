package ucd

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/ZanzyTHEbar/chrdb/chrdb/common"
)

// row is one semicolon-separated line of a UCD file.
type row struct {
	line   int
	fields []string
}

// newReader configures a reader for the headerless UCD formats. Rows may have
// any number of fields; callers decide what a valid row is.
func newReader(r io.Reader, comment rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.Comment = comment
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// rowIterator is a peekable iterator over parsed rows. A read error ends the
// iteration and is reported by Err.
type rowIterator struct {
	r      *csv.Reader
	stage  string
	peeked *row
	err    error
}

func newRowIterator(r io.Reader, stage string, comment rune) *rowIterator {
	return &rowIterator{r: newReader(r, comment), stage: stage}
}

// Peek returns the next row without consuming it.
func (it *rowIterator) Peek() (row, bool) {
	if it.peeked == nil {
		next, ok := it.read()
		if !ok {
			return row{}, false
		}
		it.peeked = &next
	}
	return *it.peeked, true
}

// Next consumes and returns the next row.
func (it *rowIterator) Next() (row, bool) {
	if it.peeked != nil {
		next := *it.peeked
		it.peeked = nil
		return next, true
	}
	return it.read()
}

// Err returns the first read error, if any.
func (it *rowIterator) Err() error {
	return it.err
}

func (it *rowIterator) read() (row, bool) {
	if it.err != nil {
		return row{}, false
	}
	fields, err := it.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return row{}, false
		}
		line := 0
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			line = pe.Line
		}
		it.err = &common.StageError{Stage: it.stage, Line: line, Err: common.Malformed("unreadable row: %v", err)}
		return row{}, false
	}
	line, _ := it.r.FieldPos(0)
	return row{line: line, fields: fields}, true
}

// malformedAt reports a decoding failure of the row at line.
func malformedAt(stage string, line int, format string, args ...any) error {
	return &common.StageError{Stage: stage, Line: line, Err: common.Malformed(format, args...)}
}
