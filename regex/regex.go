/*
Package regex translates regular expressions of a restricted dialect into grammar expressions.

Supported syntax: literal characters, escapes (\d \w \s \D \W \S \t \n \r \f \v \xHH \uHHHH
and escaped punctuation), ".", character classes with ranges and negation, groups
"(...)", "(?:...)", "(?P<name>...)" and "(?<name>...)", alternatives, quantifiers
"*", "+", "?", "{n}", "{n,}", "{n,m}", and anchors "^", "$", \A, \z, \b.

Translated expressions follow PEG semantics: alternatives are ordered and repetitions
are greedy without backtracking, so "a*a" never matches. Text matched by a named
group is bound to the group name.
*/
package regex

import (
	"github.com/pkg/errors"

	"github.com/klahnakoski/mo-parsing-sub000/grammar"
	"github.com/klahnakoski/mo-parsing-sub000/source"
)

// Translate creates an expression of g matching pattern, the whole match is returned as a single token.
// Errors are *parsing.Error with one of SyntaxError, WrongRangeError, WrongRepetitionError codes.
func Translate(g *grammar.Grammar, pattern string) (grammar.Expr, error) {
	root, e := parse(pattern)
	if e != nil {
		return grammar.Expr{}, e
	}
	return g.Combine(root.build(g), "").SetName("re:" + pattern), nil
}

// MustTranslate is Translate that panics on error.
func MustTranslate(g *grammar.Grammar, pattern string) grammar.Expr {
	result, e := Translate(g, pattern)
	if e != nil {
		panic(e)
	}
	return result
}

func parse(pattern string) (node, error) {
	res, e := patternSyntax().ParseString(pattern, true)
	if e == nil {
		return res.At(0).(node), nil
	}

	var pe *grammar.ParseError
	if !errors.As(e, &pe) {
		return nil, e
	}
	pos := source.NewPos(source.New("", pattern), pe.Loc)
	var pat *patternError
	if errors.As(pe, &pat) {
		return nil, pat.at(pos)
	}
	found := "end of pattern"
	if pe.Loc < len(pattern) {
		found = "character " + quoteRune(pattern[pe.Loc:])
	}
	return nil, syntaxError(pos, found)
}
