package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type result struct {
	pos, line, col int
}

func TestSourceLineCol(t *testing.T) {
	samples := map[string][]result{
		"": {
			{0, 1, 1},
			{100, 1, 1},
			{-5, 1, 1},
		},
		"\n": {
			{0, 1, 1},
			{1, 2, 1},
			{100, 2, 1},
		},
		"0\n2\n4\n6789abcde\ng\ni\n": {
			{4, 3, 1},
			{5, 3, 2},
			{6, 4, 1},
			{7, 4, 2},
			{14, 4, 9},
			{19, 6, 2},
			{20, 7, 1},
			{9, 4, 4},
			{5, 3, 2},
		},
		"été\nx": {
			{0, 1, 1},
			{2, 1, 2},
			{5, 1, 4},
			{6, 2, 1},
		},
	}

	for text, results := range samples {
		source := New("", text)
		for _, res := range results {
			l, c := source.LineCol(res.pos)
			if l != res.line || c != res.col {
				t.Errorf("sample %q: expected %v, got line: %d, col: %d", text, res, l, c)
			}
			assert.Equal(t, res.line, source.LineNo(res.pos))
			assert.Equal(t, res.col, source.Col(res.pos))
		}
	}
}

func TestSourcePos(t *testing.T) {
	samples := map[string][]result{
		"": {
			{0, 0, 1},
			{0, 1, 0},
			{0, 1, 1},
			{0, 1, 2},
			{0, 2, 1},
		},
		" ": {
			{0, 1, 1},
			{1, 1, 2},
			{1, 2, 1},
		},
		"\n": {
			{0, 1, 1},
			{0, 1, 2},
			{1, 2, 1},
			{1, 2, 2},
			{1, 3, 1},
		},
		"hello\nworld\n": {
			{0, 1, 1},
			{1, 1, 2},
			{6, 2, 1},
			{7, 2, 2},
			{11, 2, 10},
			{12, 3, 1},
			{12, 4, 1},
		},
	}

	for text, results := range samples {
		source := New("", text)
		for _, res := range results {
			p := source.Pos(res.line, res.col)
			if p != res.pos {
				t.Errorf("sample %q: expected %v, got pos: %d", text, res, p)
			}
		}
	}
}

func TestLine(t *testing.T) {
	s := New("sample", "first\r\nsecond\n\nlast")
	assert.Equal(t, 4, s.LineCount())
	assert.Equal(t, "first", s.Line(0))
	assert.Equal(t, "first", s.Line(5))
	assert.Equal(t, "second", s.Line(7))
	assert.Equal(t, "", s.Line(14))
	assert.Equal(t, "last", s.Line(100))
}

func TestNewPos(t *testing.T) {
	s := New("sample", "ab\ncd")
	p := NewPos(s, 4)
	assert.Equal(t, "sample", p.SourceName())
	assert.Equal(t, 4, p.Pos())
	assert.Equal(t, 2, p.Line())
	assert.Equal(t, 2, p.Col())
	assert.Same(t, s, p.Source())

	assert.Equal(t, "", Pos{}.SourceName())
}
