// Package textscan is the shared token-scanning helper for the text-format
// decoders (MD5, SMD, ASE, NFF, PLY), grounded in the teacher's
// bufio.Scanner + strings.Fields token-loop style used for its own text
// asset formats. It transcodes from Windows-1252 up front — legacy content
// tools emit that encoding for author-supplied names/comments — then hands
// out whitespace-delimited tokens and quoted strings one at a time.
package textscan

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Decode transcodes a Windows-1252 byte buffer to UTF-8. Bytes that are
// already valid ASCII pass through unchanged.
func Decode(buf []byte) (string, error) {
	out, err := charmap.Windows1252.NewDecoder().Bytes(buf)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Scanner walks whitespace-delimited tokens across an already-decoded text
// body, tracking line numbers for error messages.
type Scanner struct {
	lines   []string
	lineNo  int
	tokens  []string
	tokIdx  int
}

// New builds a Scanner over text, split into lines up front.
func New(text string) *Scanner {
	return &Scanner{lines: strings.Split(text, "\n"), lineNo: -1}
}

// Line returns the 1-based line the last-returned token came from.
func (s *Scanner) Line() int { return s.lineNo + 1 }

func (s *Scanner) fill() bool {
	for s.tokIdx >= len(s.tokens) {
		s.lineNo++
		if s.lineNo >= len(s.lines) {
			return false
		}
		line := s.lines[s.lineNo]
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i] // strip line comments, matching the teacher's OBJ/MTL scanning.
		}
		s.tokens = tokenize(line)
		s.tokIdx = 0
	}
	return true
}

// tokenize splits a line into fields, keeping double-quoted runs intact as a
// single token (MD5/SMD joint and mesh names are quoted).
func tokenize(line string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t' || r == '\r'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// Next returns the next token, or ok=false at end of input.
func (s *Scanner) Next() (string, bool) {
	if !s.fill() {
		return "", false
	}
	tok := s.tokens[s.tokIdx]
	s.tokIdx++
	return tok, true
}

// Peek returns the next token without consuming it.
func (s *Scanner) Peek() (string, bool) {
	if !s.fill() {
		return "", false
	}
	return s.tokens[s.tokIdx], true
}

// NextFloat consumes and parses the next token as a float32.
func (s *Scanner) NextFloat() (float32, error) {
	tok, ok := s.Next()
	if !ok {
		return 0, io.EOF
	}
	v, err := strconv.ParseFloat(tok, 32)
	return float32(v), err
}

// NextInt consumes and parses the next token as an int.
func (s *Scanner) NextInt() (int, error) {
	tok, ok := s.Next()
	if !ok {
		return 0, io.EOF
	}
	return strconv.Atoi(tok)
}

// SkipLine discards whatever remains of the current line.
func (s *Scanner) SkipLine() {
	s.tokens = nil
	s.tokIdx = 0
}
