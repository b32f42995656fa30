package grammar

import (
	"strings"
	"sync/atomic"
)

// Promotion converts a string argument of a combinator into an expression.
type Promotion func(g *Grammar, s string) Expr

var (
	PromoteLiteral  Promotion = func(g *Grammar, s string) Expr { return g.Literal(s) }
	PromoteKeyword  Promotion = func(g *Grammar, s string) Expr { return g.Keyword(s) }
	PromoteSuppress Promotion = func(g *Grammar, s string) Expr { return g.Literal(s).Suppress() }
	PromoteCaseless Promotion = func(g *Grammar, s string) Expr { return g.CaselessLiteral(s) }
)

var lastEngineID int64

// Engine holds whitespace and ignore settings captured by expressions at construction time.
// Engine settings must not be changed after expressions using it are parsed.
type Engine struct {
	id           int
	whitespace   charSet
	ignores      []Expr
	keywordChars string
	promote      Promotion
}

// NewEngine creates an engine skipping DefaultWhitespace and promoting strings to literals.
func NewEngine() *Engine {
	return &Engine{
		id:           int(atomic.AddInt64(&lastEngineID, 1)),
		whitespace:   newCharSet(DefaultWhitespace),
		keywordChars: DefaultKeywordChars,
		promote:      PromoteLiteral,
	}
}

func (e *Engine) derive() *Engine {
	result := *e
	result.id = int(atomic.AddInt64(&lastEngineID, 1))
	result.ignores = append([]Expr(nil), e.ignores...)
	return &result
}

func (e *Engine) SetWhitespace(chars string) *Engine {
	e.whitespace = newCharSet(chars)
	return e
}

func (e *Engine) Whitespace() string {
	return e.whitespace.chars
}

// AddIgnore registers an expression skipped along with whitespace, e.g. comments.
func (e *Engine) AddIgnore(expr Expr) *Engine {
	for _, ig := range e.ignores {
		if ig == expr {
			return e
		}
	}
	e.ignores = append(e.ignores, expr)
	return e
}

func (e *Engine) SetKeywordChars(chars string) *Engine {
	e.keywordChars = chars
	return e
}

func (e *Engine) KeywordChars() string {
	return e.keywordChars
}

// SetPromotion selects how string arguments are converted, nil restores PromoteLiteral.
func (e *Engine) SetPromotion(p Promotion) *Engine {
	if p == nil {
		p = PromoteLiteral
	}
	e.promote = p
	return e
}

func (e *Engine) withWhitespace(chars string) *Engine {
	if chars == e.whitespace.chars {
		return e
	}
	result := e.derive()
	result.whitespace = newCharSet(chars)
	return result
}

func (e *Engine) withoutWhitespace(chars string) *Engine {
	return e.withWhitespace(strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, e.whitespace.chars))
}

// PushEngine makes e the active engine for subsequently constructed expressions.
// The returned function restores the previous engine, calling it again has no effect.
func (g *Grammar) PushEngine(e *Engine) (pop func()) {
	g.engines = append(g.engines, e)
	depth := len(g.engines)
	popped := false
	return func() {
		if popped {
			return
		}
		popped = true
		if len(g.engines) >= depth && g.engines[depth-1] == e {
			g.engines = append(g.engines[:depth-1], g.engines[depth:]...)
		}
	}
}

// WithEngine calls fn with e active, the previous engine is restored even if fn panics.
func (g *Grammar) WithEngine(e *Engine, fn func()) {
	pop := g.PushEngine(e)
	defer pop()
	fn()
}

// Engine returns the active engine.
func (g *Grammar) Engine() *Engine {
	return g.engines[len(g.engines)-1]
}
