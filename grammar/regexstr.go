package grammar

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type fastPattern struct {
	pattern string
	re      *regexp.Regexp
}

// segment is a regexp translation of an expression.
// first holds characters a match may start with, tail holds characters
// a variable-length match may continue with (empty for fixed-length matches).
type segment struct {
	pattern string
	first   string
	tail    string
}

// regexSegment translates expressions whose regexp match is always identical to the PEG match:
// literals, unbounded words, single characters, sequences where a variable-length item
// cannot be followed by an item starting with one of its characters,
// and choices between literals none of which is a prefix of another.
func (g *Grammar) regexSegment(id int) (segment, bool) {
	n := g.nodes[id]
	if len(n.actions) > 0 || n.failAction != nil || n.resultsName != "" || len(n.engine.ignores) > 0 || (n.callPreParse && n.skipWS) {
		return segment{}, false
	}

	switch m := n.impl.(type) {
	case literalMatcher:
		r, _ := utf8.DecodeRuneInString(m.match)
		return segment{regexp.QuoteMeta(m.match), string(r), ""}, true
	case charLiteralMatcher:
		return segment{regexp.QuoteMeta(m.match), m.match, ""}, true
	case regexWordMatcher:
		return segment{m.init.regexClass() + m.body.regexClass() + "*", m.init.chars, m.body.chars}, true
	case charMatcher:
		if m.asKeyword {
			return segment{}, false
		}
		return segment{m.set.regexClass(), m.set.chars, ""}, true
	case andMatcher:
		if m.cutAt >= 0 || len(n.exprs) == 0 {
			return segment{}, false
		}
		result := segment{}
		for i, c := range n.exprs {
			s, ok := g.regexSegment(c)
			if !ok {
				return segment{}, false
			}
			if i == 0 {
				result.first = s.first
			} else if strings.ContainsAny(s.first, result.tail) {
				return segment{}, false
			}
			result.pattern += s.pattern
			result.tail = s.tail
		}
		return result, true
	case matchFirstMatcher:
		var literals []string
		for _, c := range n.exprs {
			s, ok := g.regexSegment(c)
			if !ok || s.tail != "" {
				return segment{}, false
			}
			switch lm := g.nodes[c].impl.(type) {
			case literalMatcher:
				literals = append(literals, lm.match)
			case charLiteralMatcher:
				literals = append(literals, lm.match)
			default:
				return segment{}, false
			}
		}
		if len(literals) == 0 {
			return segment{}, false
		}
		result := segment{}
		patterns := make([]string, len(literals))
		for i, l := range literals {
			for j, other := range literals {
				if i != j && strings.HasPrefix(other, l) {
					return segment{}, false
				}
			}
			patterns[i] = regexp.QuoteMeta(l)
			r, _ := utf8.DecodeRuneInString(l)
			result.first += string(r)
		}
		result.pattern = "(?:" + strings.Join(patterns, "|") + ")"
		return result, true
	default:
		return segment{}, false
	}
}

func (g *Grammar) compileFast(id int) *fastPattern {
	s, ok := g.regexSegment(id)
	if !ok {
		return nil
	}
	re, e := regexp.Compile("^(?:" + s.pattern + ")")
	if e != nil {
		g.logger.WithField("pattern", s.pattern).Warn("cannot compile translated expression")
		return nil
	}
	return &fastPattern{s.pattern, re}
}

// RegexString returns a regexp equivalent to e if e belongs to the translatable subset.
func (e Expr) RegexString() (string, bool) {
	s, ok := e.g.regexSegment(e.id)
	return s.pattern, ok
}
