package grammar

import (
	"fmt"
	"strings"

	"github.com/klahnakoski/mo-parsing-sub000/results"
)

// ParseString matches e at the start of text (after skipping whitespace).
// If parseAll is set, only whitespace and ignored expressions may follow the match.
// Errors are *ParseError for parse failures and *parsing.Error for grammar problems.
func (e Expr) ParseString(text string, parseAll bool) (*results.Results, error) {
	if err := e.g.prepare(e.id); err != nil {
		return nil, err
	}

	st := e.g.newState(text)
	end, r, err := st.parse(e.id, 0, true, true)
	st.logStats()
	if err != nil {
		return nil, err
	}
	if parseAll {
		loc := st.skip(e.node().engine, true, end)
		if loc < len(text) {
			return nil, st.newError(ExpectedError, loc, e.id, "Expected end of text")
		}
	}
	return results.List(r.Start(), r.End(), r), nil
}

// Matches reports whether e matches the whole text.
func (e Expr) Matches(text string) bool {
	_, err := e.ParseString(text, true)
	return err == nil
}

// Match is a single match found by Scanner.
type Match struct {
	Results    *results.Results
	Start, End int
}

// Scanner iterates over matches of an expression in text.
type Scanner struct {
	expr       Expr
	st         *state
	loc        int
	maxMatches int
	count      int
	overlap    bool
	match      Match
	err        error
}

// ScanString returns a scanner looking for matches of e anywhere in text.
// maxMatches < 0 means no limit. Without overlap scanning continues after the end of each match.
func (e Expr) ScanString(text string, maxMatches int, overlap bool) *Scanner {
	s := &Scanner{expr: e, maxMatches: maxMatches, overlap: overlap}
	if err := e.g.prepare(e.id); err != nil {
		s.err = err
		s.loc = len(text) + 1
		return s
	}
	s.st = e.g.newState(text)
	return s
}

// Next advances to the next match, returns false when there are no more matches or an error occurred.
func (s *Scanner) Next() bool {
	if s.err != nil || s.st == nil {
		return false
	}

	text := s.st.text
	n := s.expr.node()
	for s.loc <= len(text) && (s.maxMatches < 0 || s.count < s.maxMatches) {
		preLoc := s.st.skip(n.engine, n.skipWS, s.loc)
		end, r, err := s.st.parse(s.expr.id, preLoc, true, false)
		if err != nil {
			if !canRecover(err) {
				s.err = err
				return false
			}
			s.loc = nextPos(text, preLoc)
			continue
		}
		if end <= s.loc {
			s.loc = nextPos(text, preLoc)
			continue
		}

		s.count++
		s.match = Match{r, preLoc, end}
		if s.overlap {
			s.loc = nextPos(text, preLoc)
		} else {
			s.loc = end
		}
		return true
	}
	return false
}

// Match returns the current match.
func (s *Scanner) Match() Match {
	return s.match
}

// Err returns the error stopping the scan, ordinary parse failures are not reported.
func (s *Scanner) Err() error {
	return s.err
}

// All collects the remaining matches.
func (s *Scanner) All() ([]Match, error) {
	var result []Match
	for s.Next() {
		result = append(result, s.Match())
	}
	return result, s.Err()
}

// SearchString returns a list of groups, one per match of e in text.
func (e Expr) SearchString(text string, maxMatches int) (*results.Results, error) {
	matches, err := e.ScanString(text, maxMatches, false).All()
	if err != nil {
		return nil, err
	}
	groups := make([]*results.Results, len(matches))
	for i, m := range matches {
		groups[i] = results.Group(m.Start, m.End, m.Results)
	}
	return results.List(0, len(text), groups...), nil
}

// TransformString replaces each match of e in text with its tokens concatenated.
func (e Expr) TransformString(text string) (string, error) {
	sb := &strings.Builder{}
	last := 0
	s := e.ScanString(text, -1, false)
	for s.Next() {
		m := s.Match()
		sb.WriteString(text[last:m.Start])
		sb.WriteString(strings.Join(m.Results.Strings(), ""))
		last = m.End
	}
	if s.Err() != nil {
		return "", s.Err()
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}

// Split splits text at matches of e, maxSplit < 0 means no limit.
// With includeSeparators the first token of each match is added between parts.
func (e Expr) Split(text string, maxSplit int, includeSeparators bool) ([]string, error) {
	var result []string
	last := 0
	s := e.ScanString(text, maxSplit, false)
	for s.Next() {
		m := s.Match()
		result = append(result, text[last:m.Start])
		if includeSeparators && m.Results.Len() > 0 {
			result = append(result, fmt.Sprint(m.Results.At(0)))
		}
		last = m.End
	}
	if s.Err() != nil {
		return nil, s.Err()
	}
	return append(result, text[last:]), nil
}
