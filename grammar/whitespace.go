package grammar

import (
	"github.com/klahnakoski/mo-parsing-sub000/internal/ints"
)

// leaveWhitespaceCopy copies expression id and its sub-expressions with whitespace skipping disabled.
// Forward expressions are not copied, shared sub-expressions are copied once.
func (g *Grammar) leaveWhitespaceCopy(id int) int {
	copies := make(map[int]int)
	var f func(id int) int
	f = func(id int) int {
		if c, found := copies[id]; found {
			return c
		}
		if _, isForward := g.nodes[id].impl.(forwardMatcher); isForward {
			g.nodes[id].skipWS = false
			return id
		}

		n := g.copyNode(id)
		copies[id] = n.id
		n.skipWS = false
		for i, c := range n.exprs {
			n.exprs[i] = f(c)
		}
		return n.id
	}
	return f(id)
}

// LeaveWhitespace disables whitespace skipping for e and copies of its sub-expressions.
// Ignored expressions are still skipped.
func (e Expr) LeaveWhitespace() Expr {
	n := e.node()
	n.skipWS = false
	if _, isForward := n.impl.(forwardMatcher); isForward {
		return e
	}
	for i, c := range n.exprs {
		n.exprs[i] = e.g.leaveWhitespaceCopy(c)
	}
	e.g.touch()
	return e
}

// SetWhitespace sets characters skipped before e and its sub-expressions.
func (e Expr) SetWhitespace(chars string) Expr {
	derived := make(map[*Engine]*Engine)
	e.walk(func(n *node) bool {
		d, found := derived[n.engine]
		if !found {
			d = n.engine.withWhitespace(chars)
			derived[n.engine] = d
		}
		n.engine = d
		n.skipWS = true
		return true
	})
	e.g.touch()
	return e
}

// Ignore makes e and its sub-expressions skip expr along with whitespace.
func (e Expr) Ignore(expr any) Expr {
	ig := e.g.expr(expr)
	derived := make(map[*Engine]*Engine)
	visited := ints.NewSet(ig.id)
	var f func(id int)
	f = func(id int) {
		if visited.Contains(id) {
			return
		}
		visited.Add(id)
		n := e.g.nodes[id]
		d, found := derived[n.engine]
		if !found {
			d = n.engine.derive().AddIgnore(ig)
			derived[n.engine] = d
		}
		n.engine = d
		for _, c := range n.exprs {
			f(c)
		}
	}
	f(e.id)
	e.g.touch()
	return e
}
