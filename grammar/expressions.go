package grammar

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/klahnakoski/mo-parsing-sub000/results"
)

type cutMarker struct{}

// Cut may be placed between And items: failures of the following items are fatal.
var Cut = cutMarker{}

type andMatcher struct {
	cutAt int
}

func (m andMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	parts := make([]*results.Results, 0, len(n.exprs))
	cur := loc
	for i, c := range n.exprs {
		end, r, e := st.parse(c, cur, doActions, preParse || i > 0)
		if e != nil {
			if m.cutAt >= 0 && i >= m.cutAt && canRecover(e) {
				pe := e.(*ParseError).copy()
				pe.Code = SyntaxError
				pe.fatal = true
				return 0, nil, pe
			}
			return 0, nil, e
		}
		parts = append(parts, r)
		cur = end
	}
	return cur, results.List(loc, cur, parts...), nil
}

func (m andMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	if m.cutAt < 0 {
		return g.describeAll(n.exprs, " ", visiting)
	}
	return "{" + strings.Trim(g.describeAll(n.exprs[:m.cutAt], " ", visiting), "{}") + " - " +
		strings.Trim(g.describeAll(n.exprs[m.cutAt:], " ", visiting), "{}") + "}"
}

// And matches all items in sequence. Items may contain Cut.
func (g *Grammar) And(items ...any) Expr {
	m := andMatcher{cutAt: -1}
	ids := make([]int, 0, len(items))
	for _, item := range items {
		if _, isCut := item.(cutMarker); isCut {
			if m.cutAt < 0 {
				m.cutAt = len(ids)
			}
			continue
		}
		ids = append(ids, g.expr(item).id)
	}
	return g.add(m, ids...)
}

// Then is shorthand for And(e, items...).
func (e Expr) Then(items ...any) Expr {
	return e.g.And(append([]any{e}, items...)...)
}

// furthest folds failures of alternatives into one error.
// Choosing the failure that got furthest is a usability heuristic only.
func (st *state) furthest(n *node, loc int, errs []*ParseError) *ParseError {
	if len(errs) == 0 {
		return st.newError(ExpectedError, loc, n.id, "no defined alternatives to match")
	}

	best := errs[0]
	same := true
	for _, e := range errs[1:] {
		if e.Loc != best.Loc {
			same = false
		}
		if e.Loc > best.Loc {
			best = e
		}
	}
	if !same && n.name == "" {
		return best
	}

	result := st.expected(best.Loc, n.id)
	result.Causes = errs
	return result
}

type matchFirstMatcher struct{}

func (matchFirstMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	var errs []*ParseError
	for _, c := range n.exprs {
		end, r, e := st.parse(c, loc, doActions, preParse)
		if e == nil {
			return end, r, nil
		}
		if !canRecover(e) {
			return 0, nil, e
		}
		errs = append(errs, e.(*ParseError))
	}
	return 0, nil, st.furthest(n, loc, errs)
}

func (matchFirstMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return g.describeAll(n.exprs, " | ", visiting)
}

// MatchFirst matches the first alternative that succeeds.
func (g *Grammar) MatchFirst(alts ...any) Expr {
	return g.add(matchFirstMatcher{}, g.ids(alts)...)
}

// Or is shorthand for MatchFirst(e, alts...).
func (e Expr) Or(alts ...any) Expr {
	return e.g.MatchFirst(append([]any{e}, alts...)...)
}

type orMatcher struct{}

type trialMatch struct {
	end int
	id  int
}

// parseImpl tries all alternatives without actions, then re-evaluates them with actions
// from the longest trial match down. A re-evaluation shorter than its trial lets a longer one win.
// Actions lengthening a match beyond its trial do not change the order.
func (orMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	var (
		errs    []*ParseError
		matches []trialMatch
	)
	for _, c := range n.exprs {
		end, _, e := st.parse(c, loc, false, preParse)
		if e != nil {
			if !canRecover(e) {
				return 0, nil, e
			}
			errs = append(errs, e.(*ParseError))
			continue
		}
		matches = append(matches, trialMatch{end, c})
	}
	if len(matches) == 0 {
		return 0, nil, st.furthest(n, loc, errs)
	}

	slices.SortStableFunc(matches, func(a, b trialMatch) int {
		return b.end - a.end
	})
	if !doActions {
		return st.parse(matches[0].id, loc, false, preParse)
	}

	longestEnd := -1
	var longest *results.Results
	for _, m := range matches {
		if m.end <= longestEnd {
			break
		}
		end, r, e := st.parse(m.id, loc, true, preParse)
		if e != nil {
			if !canRecover(e) {
				return 0, nil, e
			}
			errs = append(errs, e.(*ParseError))
			continue
		}
		if end >= m.end {
			return end, r, nil
		}
		if end > longestEnd {
			longestEnd, longest = end, r
		}
	}
	if longest != nil {
		return longestEnd, longest, nil
	}
	return 0, nil, st.furthest(n, loc, errs)
}

func (orMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return g.describeAll(n.exprs, " ^ ", visiting)
}

// Or matches the alternative consuming the longest text.
func (g *Grammar) Or(alts ...any) Expr {
	return g.add(orMatcher{}, g.ids(alts)...)
}

// Longest is shorthand for Or(e, alts...).
func (e Expr) Longest(alts ...any) Expr {
	return e.g.Or(append([]any{e}, alts...)...)
}

type eachMatcher struct{}

type eachItem struct {
	trial    int
	final    int
	name     string
	required bool
	multi    bool
	optional bool
}

func (eachMatcher) items(g *Grammar, n *node) []eachItem {
	result := make([]eachItem, 0, len(n.exprs))
	for _, c := range n.exprs {
		cn := g.nodes[c]
		switch m := cn.impl.(type) {
		case optionalMatcher:
			result = append(result, eachItem{trial: cn.exprs[0], final: c, optional: true})
		case manyMatcher:
			result = append(result, eachItem{
				trial:    cn.exprs[0],
				final:    cn.exprs[0],
				name:     cn.resultsName,
				required: m.min > 0,
				multi:    true,
			})
		default:
			result = append(result, eachItem{trial: c, final: c, required: !g.mayReturnEmpty(c, make(map[int]bool))})
		}
	}
	return result
}

func (m eachMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	items := m.items(st.g, n)
	done := make([]bool, len(items))
	var order []eachItem
	cur := loc
	for matched := true; matched; {
		matched = false
		for i, item := range items {
			if done[i] && !item.multi {
				continue
			}
			end, _, e := st.parse(item.trial, cur, false, preParse || cur > loc)
			if e != nil {
				if !canRecover(e) {
					return 0, nil, e
				}
				continue
			}
			if item.multi && end == cur {
				continue
			}
			order = append(order, item)
			done[i] = true
			cur = end
			matched = true
		}
	}

	var missing []string
	for i, item := range items {
		if item.required && !done[i] {
			missing = append(missing, Expr{st.g, item.trial}.String())
		}
	}
	if len(missing) > 0 {
		msg := "Missing one or more required elements (" + strings.Join(missing, ", ") + ")"
		return 0, nil, st.newError(MissingError, loc, n.id, msg)
	}
	for i, item := range items {
		if item.optional && !done[i] {
			order = append(order, item)
		}
	}

	parts := make([]*results.Results, 0, len(order))
	cur = loc
	for i, item := range order {
		end, r, e := st.parse(item.final, cur, doActions, preParse || i > 0)
		if e != nil {
			return 0, nil, e
		}
		if item.name != "" {
			r = results.Named(item.name, false, r)
		}
		parts = append(parts, r)
		cur = end
	}
	return cur, results.List(loc, cur, parts...), nil
}

func (eachMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return g.describeAll(n.exprs, " & ", visiting)
}

// Each matches all items in any order, each required item exactly once.
// Optional items match at most once, repetitions may match several times.
func (g *Grammar) Each(items ...any) Expr {
	return g.add(eachMatcher{}, g.ids(items)...)
}
