// Package source defines input text with line and column mapping.
package source

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Source contains input text and index of line starts.
// Source is immutable and safe for concurrent use.
type Source struct {
	name       string
	text       string
	lineStarts []int
}

// New creates a Source, name may be empty.
func New(name, text string) *Source {
	s := &Source{name: name, text: text}
	lineCnt := strings.Count(text, "\n") + 1
	s.lineStarts = make([]int, lineCnt)
	j := 1
	for i := 0; i < len(text) && j < lineCnt; i++ {
		if text[i] == '\n' {
			s.lineStarts[j] = i + 1
			j++
		}
	}

	return s
}

// Name returns source name.
func (s *Source) Name() string {
	return s.name
}

// Text returns source text.
func (s *Source) Text() string {
	return s.text
}

// Len returns source text length in bytes.
func (s *Source) Len() int {
	return len(s.text)
}

// LineCount returns number of lines, text that ends with a newline has an empty last line.
func (s *Source) LineCount() int {
	return len(s.lineStarts)
}

func (s *Source) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(s.text) {
		return len(s.text)
	}
	return pos
}

func (s *Source) findLineIndex(pos int) int {
	return sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > pos
	}) - 1
}

// LineCol returns 1-based line and column numbers for byte offset pos.
// Columns are counted in runes. Offsets out of range are clamped.
func (s *Source) LineCol(pos int) (line, col int) {
	pos = s.clamp(pos)
	lineIndex := s.findLineIndex(pos)
	lineStart := s.lineStarts[lineIndex]
	return lineIndex + 1, utf8.RuneCountInString(s.text[lineStart:pos]) + 1
}

// LineNo returns 1-based line number for byte offset pos.
func (s *Source) LineNo(pos int) int {
	return s.findLineIndex(s.clamp(pos)) + 1
}

// Col returns 1-based column number (in runes) for byte offset pos.
func (s *Source) Col(pos int) int {
	_, col := s.LineCol(pos)
	return col
}

// Line returns the text of the line containing byte offset pos, without the trailing newline.
func (s *Source) Line(pos int) string {
	lineIndex := s.findLineIndex(s.clamp(pos))
	start := s.lineStarts[lineIndex]
	end := len(s.text)
	if lineIndex+1 < len(s.lineStarts) {
		end = s.lineStarts[lineIndex+1] - 1
	}
	return strings.TrimSuffix(s.text[start:end], "\r")
}

// Pos returns byte offset for 1-based line and column (in runes) numbers.
// Returns 0 for non-positive arguments, clamps the result to text length.
func (s *Source) Pos(line, col int) int {
	if line <= 0 || col <= 0 {
		return 0
	}

	l := len(s.text)
	if line > len(s.lineStarts) {
		return l
	}

	res := s.lineStarts[line-1]
	for col > 1 && res < l && s.text[res] != '\n' {
		_, size := utf8.DecodeRuneInString(s.text[res:])
		res += size
		col--
	}
	return res
}

// Pos contains resolved source position.
type Pos struct {
	src            *Source
	pos, line, col int
}

// NewPos creates resolved position for byte offset pos. s must not be nil.
func NewPos(s *Source, pos int) Pos {
	line, col := s.LineCol(pos)
	return Pos{s, s.clamp(pos), line, col}
}

// Source returns the source this position belongs to.
func (p Pos) Source() *Source {
	return p.src
}

// SourceName returns source name or empty string.
func (p Pos) SourceName() string {
	if p.src == nil {
		return ""
	}
	return p.src.name
}

// Pos returns byte offset.
func (p Pos) Pos() int {
	return p.pos
}

// Line returns 1-based line number.
func (p Pos) Line() int {
	return p.line
}

// Col returns 1-based column number.
func (p Pos) Col() int {
	return p.col
}
