package grammar

import (
	"github.com/klahnakoski/mo-parsing-sub000/internal/ints"
)

// Streamline flattens nested sequences and alternatives of the same kind
// lacking their own names and actions, and compiles Combine bodies to regexps where possible.
// Repeated calls do not change the grammar.
func (e Expr) Streamline() Expr {
	e.g.mu.Lock()
	defer e.g.mu.Unlock()
	e.g.streamline(e.id)
	return e
}

func (g *Grammar) streamline(root int) {
	// already streamlined nodes are still walked, a Forward bound later may lead to new ones
	visited := ints.NewSet()
	var f func(id int)
	f = func(id int) {
		if visited.Contains(id) {
			return
		}
		visited.Add(id)
		n := g.nodes[id]

		for _, c := range n.exprs {
			f(c)
		}
		for _, c := range extraExprs(n) {
			f(c)
		}
		if n.streamlined {
			return
		}
		n.streamlined = true

		switch m := n.impl.(type) {
		case andMatcher:
			if m.cutAt < 0 {
				n.exprs = g.flatten(n.exprs, func(c *node) bool {
					cm, isAnd := c.impl.(andMatcher)
					return isAnd && cm.cutAt < 0
				})
			}
		case matchFirstMatcher:
			n.exprs = g.flatten(n.exprs, func(c *node) bool {
				_, isSame := c.impl.(matchFirstMatcher)
				return isSame
			})
		case orMatcher:
			n.exprs = g.flatten(n.exprs, func(c *node) bool {
				_, isSame := c.impl.(orMatcher)
				return isSame
			})
		case *combineMatcher:
			if m.fast == nil && m.join == "" {
				m.fast = g.compileFast(n.exprs[0])
			}
		}
	}
	f(root)
}

// flatten replaces plain children accepted by same with their own children.
func (g *Grammar) flatten(ids []int, same func(c *node) bool) []int {
	result := make([]int, 0, len(ids))
	for _, id := range ids {
		c := g.nodes[id]
		if same(c) && c.resultsName == "" && len(c.actions) == 0 && !c.debug && c.failAction == nil {
			result = append(result, c.exprs...)
		} else {
			result = append(result, id)
		}
	}
	return result
}

// mayReturnEmpty reports whether expression id can succeed without consuming input.
func (g *Grammar) mayReturnEmpty(id int, visiting map[int]bool) bool {
	if visiting[id] {
		return false
	}
	visiting[id] = true
	defer delete(visiting, id)

	n := g.nodes[id]
	switch m := n.impl.(type) {
	case emptyMatcher, positionMatcher, optionalMatcher, notAnyMatcher, followedByMatcher, precededByMatcher, skipToMatcher:
		return true
	case regexMatcher:
		return m.re.MatchString("")
	case manyMatcher:
		return m.min == 0 || g.mayReturnEmpty(n.exprs[0], visiting)
	case andMatcher, eachMatcher:
		for _, c := range n.exprs {
			if !g.mayReturnEmpty(c, visiting) {
				return false
			}
		}
		return true
	case matchFirstMatcher, orMatcher:
		for _, c := range n.exprs {
			if g.mayReturnEmpty(c, visiting) {
				return true
			}
		}
		return false
	case forwardMatcher, groupMatcher, suppressMatcher, dictMatcher, originalTextMatcher, *combineMatcher:
		return len(n.exprs) > 0 && g.mayReturnEmpty(n.exprs[0], visiting)
	default:
		return false
	}
}

// leftmost returns expressions that may be tried at the starting position of id.
func (g *Grammar) leftmost(id int) []int {
	n := g.nodes[id]
	switch m := n.impl.(type) {
	case andMatcher:
		var result []int
		for _, c := range n.exprs {
			result = append(result, c)
			if !g.mayReturnEmpty(c, make(map[int]bool)) {
				break
			}
		}
		return result
	case manyMatcher:
		return append([]int{n.exprs[0]}, m.refs()...)
	case skipToMatcher:
		return append([]int{n.exprs[0]}, m.refs()...)
	case infixMatcher:
		return m.leftmost(n)
	default:
		return n.exprs
	}
}

// Validate checks that no expression reachable from e is left-recursive
// and that all Forward expressions are bound.
func (e Expr) Validate() error {
	e.g.mu.Lock()
	defer e.g.mu.Unlock()
	if err := e.g.checkRecursion(e.id); err != nil {
		return err
	}

	var unbound []string
	e.walk(func(n *node) bool {
		if _, isForward := n.impl.(forwardMatcher); isForward && len(n.exprs) == 0 {
			unbound = append(unbound, Expr{e.g, n.id}.String())
		}
		return true
	})
	if len(unbound) > 0 {
		return unboundError(unbound)
	}
	return nil
}

func (g *Grammar) checkRecursion(root int) error {
	done := ints.NewSet()
	path := ints.NewSet()
	var recursive []string
	var f func(id int)
	f = func(id int) {
		if path.Contains(id) {
			recursive = append(recursive, Expr{g, id}.String())
			return
		}
		if done.Contains(id) {
			return
		}
		path.Add(id)
		for _, c := range g.leftmost(id) {
			f(c)
		}
		path.Remove(id)
		done.Add(id)
	}
	f(root)

	if len(recursive) > 0 {
		return recursionError(recursive)
	}
	return nil
}

// prepare streamlines and checks root once, until the grammar is changed.
func (g *Grammar) prepare(root int) error {
	g.mu.RLock()
	done := g.prepared[root]
	g.mu.RUnlock()
	if done {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.prepared[root] {
		return nil
	}
	g.streamline(root)
	if err := g.checkRecursion(root); err != nil {
		g.logger.WithField("expr", Expr{g, root}.String()).Warn(err.Error())
		return err
	}
	if g.prepared == nil {
		g.prepared = make(map[int]bool)
	}
	g.prepared[root] = true
	g.logger.WithField("expr", root).Debug("grammar prepared")
	return nil
}
