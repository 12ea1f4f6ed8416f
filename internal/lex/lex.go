// Package lex splits def-file lines into whitespace-delimited tokens.
package lex

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize bounds a single def-file line.
const maxLineSize = 1 << 20

// Line is one non-blank, non-comment input line.
type Line struct {
	Num    int // 1-based
	Fields []string
}

// Fields tokenizes text. ok is false for blank lines and lines whose first
// token starts with '#'.
func Fields(text string) (fields []string, ok bool) {
	fields = strings.Fields(text)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil, false
	}
	return fields, true
}

// Scanner yields the tokenized lines of a reader, skipping blank and comment
// lines while keeping the original line numbers.
type Scanner struct {
	sc   *bufio.Scanner
	num  int
	line Line
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Scanner{sc: sc}
}

// Next advances to the next tokenized line and reports whether there is one.
func (s *Scanner) Next() bool {
	for s.sc.Scan() {
		s.num++
		fields, ok := Fields(s.sc.Text())
		if !ok {
			continue
		}
		s.line = Line{Num: s.num, Fields: fields}
		return true
	}
	return false
}

// Line returns the current line.
func (s *Scanner) Line() Line { return s.line }

// LastLine returns the number of the last physical line read.
func (s *Scanner) LastLine() int { return s.num }

// Err returns the first read error, if any.
func (s *Scanner) Err() error { return s.sc.Err() }
