package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/klahnakoski/mo-parsing-sub000/results"
)

// referrer is implemented by matchers using expressions besides node.exprs.
type referrer interface {
	refs() []int
}

func extraExprs(n *node) []int {
	var result []int
	if r, isReferrer := n.impl.(referrer); isReferrer {
		result = r.refs()
	}
	for _, ig := range n.engine.ignores {
		result = append(result, ig.id)
	}
	return result
}

type manyMatcher struct {
	min, max int
	stopOn   int
}

func (m manyMatcher) refs() []int {
	if m.stopOn < 0 {
		return nil
	}
	return []int{m.stopOn}
}

func (m manyMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	child := n.exprs[0]
	var (
		parts   []*results.Results
		lastErr error
	)
	count := 0
	cur := loc
	stopped := false
	for m.max < 0 || count < m.max {
		pp := preParse || count > 0
		if m.stopOn >= 0 {
			if _, _, e := st.parse(m.stopOn, cur, false, pp); e == nil {
				stopped = true
				break
			} else if !canRecover(e) {
				return 0, nil, e
			}
		}

		end, r, e := st.parse(child, cur, doActions, pp)
		if e != nil {
			if !canRecover(e) {
				return 0, nil, e
			}
			lastErr = e
			break
		}

		parts = append(parts, r)
		count++
		if end == cur {
			// an empty match would repeat forever
			if count < m.min {
				count = m.min
			}
			break
		}
		cur = end
	}

	if count < m.min {
		if lastErr != nil && !stopped {
			return 0, nil, lastErr
		}
		return 0, nil, st.expected(cur, n.id)
	}
	return cur, results.List(loc, cur, parts...), nil
}

func (m manyMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	inner := g.describe(n.exprs[0], visiting)
	switch {
	case m.min == 0 && m.max < 0:
		return "[" + inner + "]..."
	case m.min == 1 && m.max < 0:
		return "{" + inner + "}..."
	case m.min == 0 && m.max == 1:
		return "[" + inner + "]"
	case m.max < 0:
		return fmt.Sprintf("%s{%d,...}", inner, m.min)
	case m.min == m.max:
		return fmt.Sprintf("%s{%d}", inner, m.min)
	default:
		return fmt.Sprintf("%s{%d,%d}", inner, m.min, m.max)
	}
}

// Many matches expr repeatedly, at least min and at most max times (max < 0 means no limit).
// Matching stops at max without trying further.
func (g *Grammar) Many(expr any, min, max int) Expr {
	return g.ManyUntil(expr, min, max, nil)
}

// ManyUntil is Many that also stops when stopOn matches at the current position.
// stopOn may be nil.
func (g *Grammar) ManyUntil(expr any, min, max int, stopOn any) Expr {
	if min < 0 || (max >= 0 && max < min) {
		panic(wrongArgError("wrong repetition limits %d..%d", min, max))
	}
	stop := -1
	if stopOn != nil {
		stop = g.expr(stopOn).id
	}
	return g.add(manyMatcher{min, max, stop}, g.expr(expr).id)
}

func (g *Grammar) ZeroOrMore(expr any) Expr {
	return g.Many(expr, 0, -1)
}

func (g *Grammar) OneOrMore(expr any) Expr {
	return g.Many(expr, 1, -1)
}

type optionalMatcher struct {
	def        any
	hasDefault bool
}

func (m optionalMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	child := n.exprs[0]
	end, r, e := st.parse(child, loc, doActions, preParse)
	if e == nil {
		return end, r, nil
	}
	if !canRecover(e) {
		return 0, nil, e
	}
	if !m.hasDefault {
		return loc, results.Empty(loc), nil
	}

	res := results.FromValues(loc, loc, []any{m.def})
	if c := st.g.nodes[child]; c.resultsName != "" {
		res = results.Named(c.resultsName, c.modal, res)
	}
	return loc, res, nil
}

func (m optionalMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "[" + g.describe(n.exprs[0], visiting) + "]"
}

// Optional matches expr or nothing.
func (g *Grammar) Optional(expr any) Expr {
	return g.add(optionalMatcher{}, g.expr(expr).id)
}

// OptionalDefault matches expr or returns def as a token, bound to the name of expr if any.
func (g *Grammar) OptionalDefault(expr any, def any) Expr {
	return g.add(optionalMatcher{def, true}, g.expr(expr).id)
}

type notAnyMatcher struct{}

func (notAnyMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	_, _, e := st.parse(n.exprs[0], loc, false, preParse)
	if e == nil {
		return 0, nil, st.newError(ExpectedError, loc, n.id, "Found unwanted token, "+st.g.describe(n.exprs[0], make(map[int]bool)))
	}
	if !canRecover(e) {
		return 0, nil, e
	}
	return loc, results.Empty(loc), nil
}

func (notAnyMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "~{" + g.describe(n.exprs[0], visiting) + "}"
}

// NotAny succeeds without consuming input if expr does not match.
func (g *Grammar) NotAny(expr any) Expr {
	return g.add(notAnyMatcher{}, g.expr(expr).id)
}

type followedByMatcher struct{}

func (followedByMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	_, r, e := st.parse(n.exprs[0], loc, doActions, preParse)
	if e != nil {
		return 0, nil, e
	}
	h := results.Hollow(r)
	return loc, results.List(loc, loc, h), nil
}

func (followedByMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "FollowedBy:(" + g.describe(n.exprs[0], visiting) + ")"
}

// FollowedBy succeeds without consuming input if expr matches, names bound by expr are kept.
func (g *Grammar) FollowedBy(expr any) Expr {
	return g.add(followedByMatcher{}, g.expr(expr).id)
}

type precededByMatcher struct {
	retreat int
	exact   bool
}

func (m precededByMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	child := n.exprs[0]
	if m.exact {
		start := loc - m.retreat
		if start < 0 {
			return 0, nil, st.expected(loc, n.id)
		}
		end, r, e := st.parse(child, start, doActions, false)
		if e != nil {
			return 0, nil, e
		}
		if end != loc {
			return 0, nil, st.expected(loc, n.id)
		}
		return loc, results.List(loc, loc, results.Hollow(r)), nil
	}

	sub := st.sub(loc)
	var lastErr error = st.expected(loc, n.id)
	for start := loc - 1; start >= 0 && start >= loc-m.retreat; start-- {
		end, r, e := sub.parse(child, start, doActions, false)
		if e != nil {
			if !canRecover(e) {
				return 0, nil, e
			}
			lastErr = e
			continue
		}
		if end == loc {
			return loc, results.List(loc, loc, results.Hollow(r)), nil
		}
	}
	return 0, nil, lastErr
}

func (m precededByMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "PrecededBy:(" + g.describe(n.exprs[0], visiting) + ")"
}

// PrecededBy succeeds without consuming input if expr matches text ending at the current position.
// Names bound by expr are kept, its tokens are dropped.
// The look-behind distance is known for literals, keywords, and position tokens,
// is computed from maximal length for Word and CharsNotIn, and is retreat bytes otherwise.
func (g *Grammar) PrecededBy(expr any, retreat int) Expr {
	inner := g.leaveWhitespaceCopy(g.expr(expr).id)
	m := precededByMatcher{retreat: retreat}
	switch x := g.nodes[inner].impl.(type) {
	case literalMatcher:
		m.retreat, m.exact = len(x.match), true
	case charLiteralMatcher:
		m.retreat, m.exact = 1, true
	case keywordMatcher:
		m.retreat, m.exact = len(x.match), true
	case caselessLiteralMatcher:
		m.retreat, m.exact = len(x.match), true
	case positionMatcher, emptyMatcher:
		m.retreat, m.exact = 0, true
	case scanWordMatcher:
		if x.max > 0 {
			m.retreat = x.max * 4
		}
	case charsNotInMatcher:
		if x.max > 0 {
			m.retreat = x.max * 4
		}
	case charMatcher:
		m.retreat = 4
	}
	if !m.exact && m.retreat <= 0 {
		panic(wrongArgError("PrecededBy of %s requires retreat distance", g.describe(inner, make(map[int]bool))))
	}
	return g.add(m, inner)
}

// SkipOptions customizes SkipTo.
type SkipOptions struct {
	// Include adds tokens of the target to the result.
	Include bool
	// Ignore is skipped as a whole while looking for the target, e.g. quoted strings or comments.
	Ignore any
	// FailOn makes SkipTo fail if it matches before the target.
	FailOn any
}

type skipToMatcher struct {
	include bool
	ignore  int
	failOn  int
}

func (m skipToMatcher) refs() []int {
	var result []int
	if m.ignore >= 0 {
		result = append(result, m.ignore)
	}
	if m.failOn >= 0 {
		result = append(result, m.failOn)
	}
	return result
}

func (m skipToMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	target := n.exprs[0]
	text := st.text
	cur := loc
	for {
		if cur > len(text) {
			return 0, nil, st.expected(loc, n.id)
		}
		if m.failOn >= 0 {
			if _, _, e := st.parse(m.failOn, cur, false, true); e == nil {
				return 0, nil, st.expected(loc, n.id)
			} else if !canRecover(e) {
				return 0, nil, e
			}
		}
		if m.ignore >= 0 {
			for {
				end, _, e := st.parse(m.ignore, cur, false, true)
				if e != nil || end <= cur {
					break
				}
				cur = end
			}
		}

		_, _, e := st.parse(target, cur, false, false)
		if e == nil {
			break
		}
		if !canRecover(e) {
			return 0, nil, e
		}
		cur = nextPos(text, cur)
	}

	skipped := results.Leaf(text[loc:cur], loc, cur)
	if !m.include {
		return cur, results.List(loc, cur, skipped), nil
	}

	end, r, e := st.parse(target, cur, doActions, false)
	if e != nil {
		return 0, nil, e
	}
	return end, results.List(loc, end, skipped, r), nil
}

func (m skipToMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "SkipTo:(" + g.describe(n.exprs[0], visiting) + ")"
}

// SkipTo matches any text up to the target, the skipped text is returned as a single token.
func (g *Grammar) SkipTo(target any, opts ...SkipOptions) Expr {
	opt := SkipOptions{}
	if len(opts) > 0 {
		opt = opts[0]
	}
	m := skipToMatcher{include: opt.Include, ignore: -1, failOn: -1}
	if opt.Ignore != nil {
		m.ignore = g.expr(opt.Ignore).id
	}
	if opt.FailOn != nil {
		m.failOn = g.expr(opt.FailOn).id
	}
	return g.addToken(m).withExprs(g.expr(target).id)
}

type forwardMatcher struct{}

func (forwardMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	if len(n.exprs) == 0 {
		return 0, nil, st.newError(UnboundForwardError, loc, n.id, "Forward expression was never bound")
	}
	return st.parse(n.exprs[0], loc, doActions, preParse)
}

func (forwardMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	if len(n.exprs) == 0 {
		return "Forward: None"
	}
	return "Forward: " + g.describe(n.exprs[0], visiting)
}

// Forward creates a placeholder bound later with Bind, used for recursive grammars.
func (g *Grammar) Forward() Expr {
	return g.add(forwardMatcher{})
}

// Bind sets the definition of a Forward expression, rebinding replaces the previous one.
func (e Expr) Bind(target any) Expr {
	n := e.node()
	if _, isForward := n.impl.(forwardMatcher); !isForward {
		panic(wrongArgError("Bind requires Forward, got %s", e.String()))
	}
	n.exprs = []int{e.g.expr(target).id}
	n.streamlined = false
	e.g.touch()
	return e
}

type combineMatcher struct {
	join string
	fast *fastPattern
}

func (m *combineMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	if m.fast != nil {
		match := m.fast.re.FindStringIndex(st.text[loc:])
		if match == nil {
			return 0, nil, st.expected(loc, n.id)
		}
		end := loc + match[1]
		return end, results.Leaf(st.text[loc:end], loc, end), nil
	}

	end, r, e := st.parse(n.exprs[0], loc, doActions, false)
	if e != nil {
		return 0, nil, e
	}
	return end, results.List(loc, end, results.Leaf(strings.Join(r.Strings(), m.join), loc, end), results.Hollow(r)), nil
}

func (m *combineMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "Combine:(" + g.describe(n.exprs[0], visiting) + ")"
}

// Combine matches expr without whitespace between its parts and returns the joined text as one token.
// Names bound inside expr are kept, so r.Get reaches the parts of the joined token.
// A Forward inside expr is not copied and its bound expression still skips whitespace,
// so Combine(And("a", fwd), "") with fwd bound to "b" accepts "a b".
func (g *Grammar) Combine(expr any, join string) Expr {
	inner := g.leaveWhitespaceCopy(g.expr(expr).id)
	return g.addToken(&combineMatcher{join: join}).withExprs(inner)
}

type groupMatcher struct{}

func (groupMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	end, r, e := st.parse(n.exprs[0], loc, doActions, preParse)
	if e != nil {
		return 0, nil, e
	}
	return end, results.Group(loc, end, r), nil
}

func (groupMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "Group:(" + g.describe(n.exprs[0], visiting) + ")"
}

// Group returns tokens of expr as a single nested token.
func (g *Grammar) Group(expr any) Expr {
	return g.add(groupMatcher{}, g.expr(expr).id)
}

type suppressMatcher struct{}

func (suppressMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	end, _, e := st.parse(n.exprs[0], loc, doActions, preParse)
	if e != nil {
		return 0, nil, e
	}
	return end, results.List(loc, end), nil
}

func (suppressMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "Suppress:(" + g.describe(n.exprs[0], visiting) + ")"
}

// Suppress matches expr and drops its tokens and names.
func (g *Grammar) Suppress(expr any) Expr {
	return g.add(suppressMatcher{}, g.expr(expr).id)
}

type dictMatcher struct {
	open bool
}

func (m dictMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	end, r, e := st.parse(n.exprs[0], loc, doActions, preParse)
	if e != nil {
		return 0, nil, e
	}

	res := results.List(loc, end, r)
	if m.open {
		values := r.Values()
		for i := 0; i < len(values); i += 2 {
			var v any = ""
			if i+1 < len(values) {
				v = values[i+1]
			}
			res.Set(dictKey(values[i]), v)
		}
		return end, res, nil
	}

	for i := 0; i < r.Len(); i++ {
		item, _ := r.Node(i)
		if item.Kind() != results.GroupKind || item.Len() == 0 {
			continue
		}
		key := dictKey(item.At(0))
		if item.Len() == 1 {
			res.Set(key, "")
			continue
		}
		value := item.Copy()
		value.Pop(0)
		if value.Len() == 1 && len(value.Names()) == 0 {
			res.Set(key, value.At(0))
		} else {
			res.Set(key, value)
		}
	}
	return end, res, nil
}

func dictKey(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (m dictMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	if m.open {
		return "OpenDict:(" + g.describe(n.exprs[0], visiting) + ")"
	}
	return "Dict:(" + g.describe(n.exprs[0], visiting) + ")"
}

// Dict binds names from the parsed text: each group token of expr binds its remaining tokens
// to the name given by its first token.
func (g *Grammar) Dict(expr any) Expr {
	return g.add(dictMatcher{}, g.expr(expr).id)
}

// OpenDict binds names from alternating key and value tokens of expr.
func (g *Grammar) OpenDict(expr any) Expr {
	return g.add(dictMatcher{open: true}, g.expr(expr).id)
}

type originalTextMatcher struct{}

func (originalTextMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	end, r, e := st.parse(n.exprs[0], loc, doActions, false)
	if e != nil {
		return 0, nil, e
	}
	return end, results.List(loc, end, results.Hollow(r), results.Leaf(st.text[loc:end], loc, end)), nil
}

func (originalTextMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "OriginalTextFor:(" + g.describe(n.exprs[0], visiting) + ")"
}

// OriginalTextFor returns the source text matched by expr as a single token, names bound by expr are kept.
func (g *Grammar) OriginalTextFor(expr any) Expr {
	return g.addToken(originalTextMatcher{}).withExprs(g.expr(expr).id)
}

func (e Expr) withExprs(ids ...int) Expr {
	e.node().exprs = ids
	return e
}
