package regex

import (
	"strings"

	"github.com/klahnakoski/mo-parsing-sub000/grammar"
)

// node is a parsed pattern element able to build its expression in a target grammar.
type node interface {
	build(g *grammar.Grammar) grammar.Expr
}

type literalNode struct {
	text string
}

func (n literalNode) build(g *grammar.Grammar) grammar.Expr {
	return g.Literal(n.text)
}

type classNode struct {
	chars  string
	negate bool
}

func (n classNode) build(g *grammar.Grammar) grammar.Expr {
	if n.negate {
		return g.CharsNotIn(n.chars, 1, 1)
	}
	return g.Char(n.chars)
}

// anyNode is ".", it does not match line breaks.
type anyNode struct{}

func (anyNode) build(g *grammar.Grammar) grammar.Expr {
	return g.CharsNotIn("\n", 1, 1)
}

type anchorKind int

const (
	lineStart anchorKind = iota
	lineEnd
	textStart
	textEnd
	wordBoundary
)

type anchorNode struct {
	kind anchorKind
}

func (n anchorNode) build(g *grammar.Grammar) grammar.Expr {
	switch n.kind {
	case lineStart:
		return g.LineStart()
	case lineEnd:
		return g.FollowedBy(g.LineEnd())
	case textStart:
		return g.StringStart()
	case textEnd:
		return g.StringEnd()
	default:
		return g.MatchFirst(g.WordStart(wordChars), g.WordEnd(wordChars))
	}
}

type concatNode struct {
	items []node
}

// build merges runs of literal characters into single literals.
func (n concatNode) build(g *grammar.Grammar) grammar.Expr {
	var (
		items []any
		run   strings.Builder
	)
	flush := func() {
		if run.Len() > 0 {
			items = append(items, g.Literal(run.String()))
			run.Reset()
		}
	}
	for _, item := range n.items {
		if lit, isLiteral := item.(literalNode); isLiteral {
			run.WriteString(lit.text)
			continue
		}
		flush()
		items = append(items, item.build(g))
	}
	flush()

	switch len(items) {
	case 0:
		return g.Empty()
	case 1:
		return items[0].(grammar.Expr)
	default:
		return g.And(items...)
	}
}

type altNode struct {
	items []node
}

func (n altNode) build(g *grammar.Grammar) grammar.Expr {
	items := make([]any, len(n.items))
	for i, item := range n.items {
		items[i] = item.build(g)
	}
	return g.MatchFirst(items...)
}

type repeatNode struct {
	item     node
	min, max int
}

func (n repeatNode) build(g *grammar.Grammar) grammar.Expr {
	return g.Many(n.item.build(g), n.min, n.max)
}

// groupNode is a parenthesized subpattern, a named one binds its text to the name.
type groupNode struct {
	name string
	item node
}

func (n groupNode) build(g *grammar.Grammar) grammar.Expr {
	e := n.item.build(g)
	if n.name == "" {
		return e
	}
	return g.Combine(e, "").Named(n.name)
}
