/*
Package grammar implements parsing expression grammars with packrat memoization.

Expressions are created by methods of a Grammar and stored in its arena,
an Expr is a handle (grammar and node index) to a stored node. Cycles are
possible only through Forward expressions bound after construction.
Combinator arguments typed as any accept an Expr or a string, strings are
converted by the active Engine.

	g := grammar.New()
	greet := g.And(g.Word(grammar.Alphas), ",", g.Word(grammar.Alphas), g.OneOf("! ? ."))
	res, e := greet.ParseString("Hello, World!", false)

Grammars may be parsed concurrently once constructed, parse state is private to each call.
Constructing or modifying expressions while parsing is not supported.
*/
package grammar

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/klahnakoski/mo-parsing-sub000/internal/ints"
	"github.com/klahnakoski/mo-parsing-sub000/results"
)

// Grammar is an arena of expression nodes.
type Grammar struct {
	mu        sync.RWMutex
	nodes     []*node
	engines   []*Engine
	logger    logrus.FieldLogger
	packrat   bool
	cacheSize int
	debug     bool
	prepared  map[int]bool
}

// matcher is the node variant implementing the matching algorithm.
type matcher interface {
	parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error)
	describe(g *Grammar, n *node, visiting map[int]bool) string
}

type node struct {
	id           int
	impl         matcher
	exprs        []int
	engine       *Engine
	skipWS       bool
	callPreParse bool
	name         string
	resultsName  string
	modal        bool
	actions      []Action
	failAction   FailAction
	debug        bool
	streamlined  bool
}

// Expr is a handle of an expression node. The zero Expr is not valid.
type Expr struct {
	g  *Grammar
	id int
}

// New creates a grammar with default configuration.
func New() *Grammar {
	g, _ := NewWithConfig(DefaultConfig())
	return g
}

// NewWithConfig creates a grammar using packrat, whitespace, keyword, and logging settings of cfg.
func NewWithConfig(cfg Config) (*Grammar, error) {
	level, e := parseLogLevel(cfg.LogLevel)
	if e != nil {
		return nil, e
	}
	if cfg.CacheSize < 0 {
		return nil, configError("cache size must not be negative, got %d", cfg.CacheSize)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)

	engine := NewEngine().SetWhitespace(cfg.Whitespace).SetKeywordChars(cfg.KeywordChars)
	g := &Grammar{
		engines:   []*Engine{engine},
		logger:    logger,
		packrat:   cfg.Packrat,
		cacheSize: cfg.CacheSize,
		debug:     cfg.Debug,
	}
	return g, nil
}

func (g *Grammar) SetLogger(l logrus.FieldLogger) {
	g.logger = l
}

func (g *Grammar) Logger() logrus.FieldLogger {
	return g.logger
}

// EnablePackrat turns memoization on, size 0 means unbounded cache.
func (g *Grammar) EnablePackrat(size int) {
	if size < 0 {
		size = 0
	}
	g.packrat = true
	g.cacheSize = size
}

func (g *Grammar) DisablePackrat() {
	g.packrat = false
}

// SetDebug enables tracing of all expressions.
func (g *Grammar) SetDebug(debug bool) {
	g.debug = debug
}

func (g *Grammar) add(impl matcher, exprs ...int) Expr {
	n := &node{
		id:           len(g.nodes),
		impl:         impl,
		exprs:        exprs,
		engine:       g.Engine(),
		skipWS:       true,
		callPreParse: false,
	}
	g.nodes = append(g.nodes, n)
	g.touch()
	return Expr{g, n.id}
}

// addToken creates a node skipping whitespace before matching.
func (g *Grammar) addToken(impl matcher) Expr {
	e := g.add(impl)
	g.nodes[e.id].callPreParse = true
	return e
}

func (g *Grammar) node(id int) *node {
	return g.nodes[id]
}

// touch drops preparation marks after the arena changed.
func (g *Grammar) touch() {
	g.mu.Lock()
	g.prepared = nil
	g.mu.Unlock()
}

// expr converts a combinator argument.
func (g *Grammar) expr(v any) Expr {
	switch x := v.(type) {
	case Expr:
		if x.g != g {
			panic(wrongArgError("expression belongs to another grammar"))
		}
		return x
	case string:
		return g.Engine().promote(g, x)
	default:
		panic(wrongArgError("cannot use %T as expression", v))
	}
}

func (g *Grammar) ids(vs []any) []int {
	result := make([]int, 0, len(vs))
	for _, v := range vs {
		result = append(result, g.expr(v).id)
	}
	return result
}

func (g *Grammar) copyNode(id int) *node {
	n := *g.nodes[id]
	n.id = len(g.nodes)
	n.exprs = append([]int(nil), n.exprs...)
	n.actions = append([]Action(nil), n.actions...)
	n.streamlined = false
	if _, isForward := n.impl.(forwardMatcher); isForward {
		// the copy follows later Bind calls on the original
		n.exprs = []int{id}
	}
	g.nodes = append(g.nodes, &n)
	g.touch()
	return &n
}

func (g *Grammar) describe(id int, visiting map[int]bool) string {
	n := g.nodes[id]
	if n.name != "" {
		return n.name
	}
	if visiting[id] {
		return "..."
	}
	visiting[id] = true
	defer delete(visiting, id)
	return n.impl.describe(g, n, visiting)
}

func (g *Grammar) describeAll(ids []int, sep string, visiting map[int]bool) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = g.describe(id, visiting)
	}
	return "{" + strings.Join(names, sep) + "}"
}

func (e Expr) node() *node {
	return e.g.nodes[e.id]
}

// Grammar returns the arena e belongs to.
func (e Expr) Grammar() *Grammar {
	return e.g
}

// ID returns the node index, unique within the grammar.
func (e Expr) ID() int {
	return e.id
}

// String returns the custom name or a generated description.
func (e Expr) String() string {
	if e.g == nil {
		return "<nil>"
	}
	return e.g.describe(e.id, make(map[int]bool))
}

// SetName sets the name used in error messages.
func (e Expr) SetName(name string) Expr {
	e.node().name = name
	return e
}

// Named returns a copy of e binding its results to name.
// A name ending with "*" accumulates all matches instead of keeping the last one.
func (e Expr) Named(name string) Expr {
	n := e.g.copyNode(e.id)
	modal := true
	if strings.HasSuffix(name, "*") {
		name = name[:len(name)-1]
		modal = false
	}
	n.resultsName = name
	n.modal = modal
	return Expr{e.g, n.id}
}

// ResultsName returns the bound results name or empty string.
func (e Expr) ResultsName() string {
	return e.node().resultsName
}

// Copy returns a new node sharing sub-expressions with e.
func (e Expr) Copy() Expr {
	return Expr{e.g, e.g.copyNode(e.id).id}
}

func (e Expr) SetDebug(debug bool) Expr {
	e.node().debug = debug
	return e
}

// Suppress returns an expression matching e and dropping its tokens.
func (e Expr) Suppress() Expr {
	return e.g.Suppress(e)
}

// Times returns an expression matching e from min to max times, max < 0 means no limit.
func (e Expr) Times(min, max int) Expr {
	return e.g.Many(e, min, max)
}

// Repeat returns an expression matching e exactly count times.
func (e Expr) Repeat(count int) Expr {
	return e.g.Many(e, count, count)
}

// walk visits each node reachable from e once, visit returns false to skip sub-expressions.
func (e Expr) walk(visit func(n *node) bool) {
	visited := ints.NewSet()
	var f func(id int)
	f = func(id int) {
		if visited.Contains(id) {
			return
		}
		visited.Add(id)
		n := e.g.nodes[id]
		if !visit(n) {
			return
		}
		for _, c := range n.exprs {
			f(c)
		}
		for _, c := range extraExprs(n) {
			f(c)
		}
	}
	f(e.id)
}
