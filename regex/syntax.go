package regex

import (
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/klahnakoski/mo-parsing-sub000/grammar"
	"github.com/klahnakoski/mo-parsing-sub000/results"
)

const (
	wordChars  = grammar.Alphanums + "_"
	spaceChars = " \t\n\r\f\v"
	// largest number of characters a class range may expand to
	maxRange = 0x3000
)

// negation marks a class starting with "^".
type negation struct{}

type bounds struct {
	min, max int
}

type groupOpen struct {
	name string
}

var (
	syntaxOnce sync.Once
	syntax     grammar.Expr
)

// patternSyntax returns the expression parsing patterns into nodes.
// The grammar is built once and shared, parsing does not modify it.
func patternSyntax() grammar.Expr {
	syntaxOnce.Do(func() {
		g := grammar.New()
		g.WithEngine(grammar.NewEngine().SetWhitespace(""), func() {
			syntax = defineSyntax(g)
		})
	})
	return syntax
}

func defineSyntax(g *grammar.Grammar) grammar.Expr {
	alt := g.Forward()

	literal := g.CharsNotIn(`\.^$|?*+()[{`, 1, 1).Action(grammar.TokensAction(func(toks *results.Results) any {
		return literalNode{toks.At(0).(string)}
	}))
	dot := g.Literal(".").Action(grammar.ReplaceWith(anyNode{}))
	anchor := g.MatchFirst(
		g.Literal("^").Action(grammar.ReplaceWith(anchorNode{lineStart})),
		g.Literal("$").Action(grammar.ReplaceWith(anchorNode{lineEnd})),
	)
	escape := g.Regex(`\\(?:[dDwWsSAzZbtnrfv]|x[0-9a-fA-F]{2}|u[0-9a-fA-F]{4}|[^0-9A-Za-z])`).
		SetName("escape sequence").
		Action(grammar.TokensAction(func(toks *results.Results) any {
			return escapeNode(toks.At(0).(string))
		}))

	classEscape := g.Regex(`\\(?:[dwstnrfv]|x[0-9a-fA-F]{2}|u[0-9a-fA-F]{4}|[^0-9A-Za-z])`).
		SetName("class escape sequence").
		Action(grammar.TokensAction(func(toks *results.Results) any {
			return escapeChars(toks.At(0).(string))
		}))
	classChar := g.MatchFirst(classEscape, g.CharsNotIn(`]\`, 1, 1))
	classRange := g.And(classChar, g.Suppress("-"), classChar).Action(expandRange)
	class := g.And(
		g.Suppress("["),
		g.Optional(g.Literal("^").Action(grammar.ReplaceWith(negation{}))),
		g.OneOrMore(g.MatchFirst(classRange, classChar)),
		g.Suppress("]"),
	).SetName("character class").Action(grammar.TokensAction(func(toks *results.Results) any {
		result := classNode{}
		sb := &strings.Builder{}
		for _, v := range toks.Values() {
			if _, isNegation := v.(negation); isNegation {
				result.negate = true
				continue
			}
			sb.WriteString(v.(string))
		}
		result.chars = sb.String()
		return result
	}))

	open := g.Regex(`\((?:\?:|\?P?<(?P<group>[A-Za-z_][A-Za-z0-9_]*)>)?`).
		SetName("group").
		Action(grammar.TokensAction(func(toks *results.Results) any {
			name, _ := toks.Get("group").(string)
			return groupOpen{name}
		}))
	group := g.And(open, alt, g.Suppress(")")).Action(grammar.TokensAction(func(toks *results.Results) any {
		return groupNode{toks.At(0).(groupOpen).name, toks.At(1).(node)}
	}))

	quantifier := g.MatchFirst(
		g.Literal("*").Action(grammar.ReplaceWith(bounds{0, -1})),
		g.Literal("+").Action(grammar.ReplaceWith(bounds{1, -1})),
		g.Literal("?").Action(grammar.ReplaceWith(bounds{0, 1})),
		g.Regex(`\{[0-9]+(?:,[0-9]*)?\}`).SetName("repetition").Action(parseBounds),
	)
	atom := g.MatchFirst(group, class, escape, dot, anchor, literal)
	piece := g.And(atom, g.Optional(quantifier)).Action(grammar.TokensAction(func(toks *results.Results) any {
		item := toks.At(0).(node)
		if toks.Len() == 1 {
			return item
		}
		b := toks.At(1).(bounds)
		return repeatNode{item, b.min, b.max}
	}))

	sequence := g.ZeroOrMore(piece).Action(grammar.TokensAction(func(toks *results.Results) any {
		items := make([]node, toks.Len())
		for i := range items {
			items[i] = toks.At(i).(node)
		}
		return concatNode{items}
	}))
	alt.Bind(g.And(sequence, g.ZeroOrMore(g.And(g.Suppress("|"), sequence))).
		Action(grammar.TokensAction(func(toks *results.Results) any {
			if toks.Len() == 1 {
				return toks.At(0)
			}
			items := make([]node, toks.Len())
			for i := range items {
				items[i] = toks.At(i).(node)
			}
			return altNode{items}
		})))
	return alt
}

// escapeNode converts an escape sequence outside of a class.
func escapeNode(s string) node {
	switch s {
	case `\A`:
		return anchorNode{textStart}
	case `\z`, `\Z`:
		return anchorNode{textEnd}
	case `\b`:
		return anchorNode{wordBoundary}
	case `\D`:
		return classNode{grammar.Nums, true}
	case `\W`:
		return classNode{wordChars, true}
	case `\S`:
		return classNode{spaceChars, true}
	}

	chars := escapeChars(s)
	if utf8.RuneCountInString(chars) > 1 {
		return classNode{chars: chars}
	}
	return literalNode{chars}
}

// escapeChars returns characters denoted by an escape sequence, classes are expanded.
func escapeChars(s string) string {
	switch s[1] {
	case 'd':
		return grammar.Nums
	case 'w':
		return wordChars
	case 's':
		return spaceChars
	case 't':
		return "\t"
	case 'n':
		return "\n"
	case 'r':
		return "\r"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case 'x', 'u':
		if len(s) > 2 {
			code, _ := strconv.ParseUint(s[2:], 16, 32)
			return string(rune(code))
		}
	}
	return s[1:]
}

func expandRange(toks *results.Results, loc int, src string) (any, error) {
	from, _ := toks.At(0).(string)
	to, _ := toks.At(1).(string)
	if utf8.RuneCountInString(from) != 1 || utf8.RuneCountInString(to) != 1 {
		return nil, rangeError("range bounds must be single characters")
	}

	lo, _ := utf8.DecodeRuneInString(from)
	hi, _ := utf8.DecodeRuneInString(to)
	if hi < lo {
		return nil, rangeError("range %q-%q is out of order", lo, hi)
	}
	if hi-lo >= maxRange {
		return nil, rangeError("range %q-%q is too wide", lo, hi)
	}

	sb := &strings.Builder{}
	for r := lo; r <= hi; r++ {
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

func parseBounds(toks *results.Results, loc int, src string) (any, error) {
	s, _ := toks.At(0).(string)
	s = s[1 : len(s)-1]
	lo, hi, hasComma := strings.Cut(s, ",")

	min, e := strconv.Atoi(lo)
	if e != nil {
		return nil, repetitionError("count %q is too big", lo)
	}
	max := min
	if hasComma {
		max = -1
		if hi != "" {
			max, e = strconv.Atoi(hi)
			if e != nil {
				return nil, repetitionError("count %q is too big", hi)
			}
			if max < min {
				return nil, repetitionError("bounds {%d,%d} are out of order", min, max)
			}
		}
	}
	return bounds{min, max}, nil
}

func quoteRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	return strconv.QuoteRune(r)
}
