package grammar

import (
	"github.com/klahnakoski/mo-parsing-sub000/results"
)

// Assoc is associativity of an operator level.
type Assoc int

const (
	// AssocLeft reduces the leftmost occurrence first, unary operators are postfix.
	AssocLeft Assoc = iota
	// AssocRight reduces the rightmost occurrence first, unary operators are prefix.
	AssocRight
)

// OpLevel describes operators of one precedence level.
type OpLevel struct {
	// Op is a string or Expr, ternary levels use [2]any with both operator parts.
	Op any
	// Arity is 1, 2, or 3.
	Arity int
	Assoc Assoc
	// Action builds the composite from the operator and its operands, the default is a group.
	Action Action
}

type infixOp struct {
	arity  int
	assoc  Assoc
	action Action
}

// infixToken is an operator expression stored in node.exprs at idx.
type infixToken struct {
	op     *infixOp
	idx    int
	second bool
}

type infixItem struct {
	op     *infixOp
	second bool
	res    *results.Results
	// contents of a default composite
	inner *results.Results
}

// node.exprs layout: operand, lpar, rpar, operator tokens
const (
	infixOperand = iota
	infixLpar
	infixRpar
)

type infixMatcher struct {
	levels  []*infixOp
	prefix  []infixToken
	postfix []infixToken
	infix   []infixToken
}

func (m infixMatcher) leftmost(n *node) []int {
	result := []int{n.exprs[infixOperand], n.exprs[infixLpar]}
	for _, t := range m.prefix {
		result = append(result, n.exprs[t.idx])
	}
	return result
}

type infixCut struct {
	count int
	end   int
}

// parseImpl collects operands and operators first, then reduces the flat list level by level.
// If the list cannot be reduced, shorter prefixes ending with an operand are tried.
func (m infixMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	var (
		items []infixItem
		cuts  []infixCut
	)
	cur, pp := loc, preParse
	for {
		end, operand, e := m.parseOperand(st, n, cur, doActions, pp)
		if e != nil {
			if len(cuts) == 0 || !canRecover(e) {
				return 0, nil, e
			}
			break
		}
		items = append(items, operand...)
		cur, pp = end, true
		cuts = append(cuts, infixCut{len(items), cur})

		end, op, found, e := m.matchOp(st, n, m.infix, cur, doActions, true)
		if e != nil {
			return 0, nil, e
		}
		if !found {
			break
		}
		items = append(items, op)
		cur = end
	}

	var failed error
	for i := len(cuts) - 1; i >= 0; i-- {
		r, e := m.reduce(st, n, items[:cuts[i].count], doActions)
		if e != nil {
			if !canRecover(e) {
				return 0, nil, e
			}
			// rejected by an action, a shorter prefix may still reduce
			failed = e
			continue
		}
		if r != nil {
			return cuts[i].end, r, nil
		}
	}
	if failed != nil {
		return 0, nil, failed
	}
	return 0, nil, st.expected(loc, n.id)
}

// parseOperand matches prefix operators, an operand or a parenthesized expression, and postfix operators.
func (m infixMatcher) parseOperand(st *state, n *node, loc int, doActions, preParse bool) (int, []infixItem, error) {
	var items []infixItem
	cur, pp := loc, preParse
	for {
		end, item, found, e := m.matchOp(st, n, m.prefix, cur, doActions, pp)
		if e != nil {
			return 0, nil, e
		}
		if !found {
			break
		}
		items = append(items, item)
		cur, pp = end, true
	}

	end, r, e := st.parse(n.exprs[infixOperand], cur, doActions, pp)
	if e != nil {
		if !canRecover(e) {
			return 0, nil, e
		}
		var ne error
		end, r, ne = m.parseNested(st, n, cur, doActions, pp)
		if ne != nil {
			if !canRecover(ne) || ne.(*ParseError).Loc > e.(*ParseError).Loc {
				return 0, nil, ne
			}
			return 0, nil, e
		}
	}
	items = append(items, infixItem{res: r})
	cur = end

	for {
		end, item, found, e := m.matchOp(st, n, m.postfix, cur, doActions, true)
		if e != nil {
			return 0, nil, e
		}
		if !found {
			break
		}
		items = append(items, item)
		cur = end
	}
	return cur, items, nil
}

func (m infixMatcher) parseNested(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	end, lr, e := st.parse(n.exprs[infixLpar], loc, doActions, preParse)
	if e != nil {
		return 0, nil, e
	}
	end, inner, e := st.parse(n.id, end, doActions, true)
	if e != nil {
		return 0, nil, e
	}
	end, rr, e := st.parse(n.exprs[infixRpar], end, doActions, true)
	if e != nil {
		return 0, nil, e
	}

	if inner.Len() > 1 && inner.Kind() != results.GroupKind {
		inner = results.Group(inner.Start(), inner.End(), inner)
	}
	if lr.Len() == 0 && rr.Len() == 0 {
		return end, inner, nil
	}
	return end, results.List(loc, end, lr, inner, rr), nil
}

func (m infixMatcher) matchOp(st *state, n *node, tokens []infixToken, loc int, doActions, preParse bool) (int, infixItem, bool, error) {
	for _, t := range tokens {
		end, r, e := st.parse(n.exprs[t.idx], loc, doActions, preParse)
		if e == nil {
			return end, infixItem{op: t.op, second: t.second, res: r}, true, nil
		}
		if !canRecover(e) {
			return 0, infixItem{}, false, e
		}
	}
	return 0, infixItem{}, false, nil
}

// reduce collapses items into a single composite, returns nil results if some operator cannot be reduced.
func (m infixMatcher) reduce(st *state, n *node, items []infixItem, doActions bool) (*results.Results, error) {
	items = append([]infixItem(nil), items...)
	for len(items) > 1 {
		reduced := false
		for _, level := range m.levels {
			from, to := findInfix(items, level)
			if from < 0 {
				continue
			}

			item, e := m.compose(st, n, level, items[from:to], doActions)
			if e != nil {
				return nil, e
			}
			items = append(append(items[:from:from], item), items[to:]...)
			reduced = true
			break
		}
		if !reduced {
			return nil, nil
		}
	}

	if items[0].op != nil {
		return nil, nil
	}
	if items[0].inner != nil {
		return items[0].inner, nil
	}
	return items[0].res, nil
}

// findInfix returns bounds of the operator occurrence of level to reduce next, from is -1 if there is none.
func findInfix(items []infixItem, level *infixOp) (from, to int) {
	operand := func(i int) bool {
		return i >= 0 && i < len(items) && items[i].op == nil
	}
	is := func(i int, second bool) bool {
		return i >= 0 && i < len(items) && items[i].op == level && items[i].second == second
	}

	from = -1
	for i := range items {
		if !is(i, false) {
			continue
		}

		f, t := -1, -1
		switch {
		case level.arity == 1 && level.assoc == AssocRight:
			if operand(i + 1) {
				f, t = i, i+2
			}
		case level.arity == 1:
			if operand(i - 1) {
				f, t = i-1, i+1
			}
		case level.arity == 2:
			if operand(i-1) && operand(i+1) {
				f, t = i-1, i+2
			}
		default:
			if operand(i-1) && operand(i+1) && is(i+2, true) && operand(i+3) {
				f, t = i-1, i+4
			}
		}
		if f < 0 {
			continue
		}
		from, to = f, t
		if level.assoc == AssocLeft {
			break
		}
	}
	return from, to
}

func (m infixMatcher) compose(st *state, n *node, level *infixOp, parts []infixItem, doActions bool) (infixItem, error) {
	children := make([]*results.Results, len(parts))
	for i, p := range parts {
		children[i] = p.res
	}
	start, end := children[0].Start(), children[len(children)-1].End()
	list := results.List(start, end, children...)

	if level.action != nil && doActions {
		v, e := level.action(list, start, st.text)
		if e != nil {
			if pe, isParseError := e.(*ParseError); isParseError {
				return infixItem{}, st.complete(pe, start, n.id)
			}
			return infixItem{}, st.actionError(e, start, n.id)
		}
		if v != nil {
			return infixItem{res: actionResults(v, start, end, list)}, nil
		}
	}
	return infixItem{res: results.Group(start, end, list), inner: list}, nil
}

func (m infixMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "InfixNotation:(" + g.describe(n.exprs[infixOperand], visiting) + ")"
}

// InfixNotation creates an expression of operands combined by operators of the given levels,
// levels are listed from the tightest binding to the loosest.
// lpar and rpar enclose nested expressions, strings are suppressed, nil means "(" and ")".
// Each reduction is grouped unless the level has an action, the result holds
// the contents of the outermost group.
func (g *Grammar) InfixNotation(operand any, levels []OpLevel, lpar, rpar any) Expr {
	exprs := []int{g.expr(operand).id, g.parenthesis(lpar, "("), g.parenthesis(rpar, ")")}
	m := infixMatcher{}
	for _, level := range levels {
		op := &infixOp{level.Arity, level.Assoc, level.Action}
		m.levels = append(m.levels, op)
		switch level.Arity {
		case 1:
			t := infixToken{op: op, idx: len(exprs)}
			exprs = append(exprs, g.expr(level.Op).id)
			if level.Assoc == AssocRight {
				m.prefix = append(m.prefix, t)
			} else {
				m.postfix = append(m.postfix, t)
			}
		case 2:
			m.infix = append(m.infix, infixToken{op: op, idx: len(exprs)})
			exprs = append(exprs, g.expr(level.Op).id)
		case 3:
			pair, isPair := level.Op.([2]any)
			if !isPair {
				panic(wrongArgError("ternary operator requires a pair of expressions, got %T", level.Op))
			}
			m.infix = append(m.infix,
				infixToken{op: op, idx: len(exprs)},
				infixToken{op: op, idx: len(exprs) + 1, second: true})
			exprs = append(exprs, g.expr(pair[0]).id, g.expr(pair[1]).id)
		default:
			panic(wrongArgError("operator arity must be 1, 2, or 3, got %d", level.Arity))
		}
	}
	return g.add(m, exprs...)
}

func (g *Grammar) parenthesis(v any, def string) int {
	switch x := v.(type) {
	case nil:
		return g.Suppress(g.Literal(def)).id
	case string:
		return g.Suppress(g.Literal(x)).id
	default:
		return g.expr(v).id
	}
}
