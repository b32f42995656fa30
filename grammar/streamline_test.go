package grammar

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klahnakoski/mo-parsing-sub000/results"
)

func TestStreamlineFlatten(t *testing.T) {
	g := New()
	seq := g.And(g.And("a", "b"), "c")
	assert.Equal(t, `{{"a" "b"} "c"}`, seq.String())
	seq.Streamline()
	assert.Equal(t, `{"a" "b" "c"}`, seq.String())
	seq.Streamline()
	assert.Equal(t, `{"a" "b" "c"}`, seq.String())
	testParseSamples(t, seq, []parseSample{
		{"a b c", []any{"a", "b", "c"}},
	})

	alts := g.MatchFirst(g.MatchFirst("a", "b"), "c").Streamline()
	assert.Equal(t, `{"a" | "b" | "c"}`, alts.String())
	longest := g.Or(g.Or("a", "b"), "c").Streamline()
	assert.Equal(t, `{"a" ^ "b" ^ "c"}`, longest.String())
}

func TestStreamlineKeepsNamed(t *testing.T) {
	g := New()
	inner := g.And("a", "b")
	named := g.And(inner.Named("pair"), "c").Streamline()
	assert.Len(t, named.node().exprs, 2)

	withAction := g.And(inner.Copy().Action(ReplaceWith("ab")), "c").Streamline()
	assert.Len(t, withAction.node().exprs, 2)
	testParseSamples(t, withAction, []parseSample{
		{"a b c", []any{"ab", "c"}},
	})

	cut := g.And(g.And("a", Cut, "b"), "c").Streamline()
	assert.Len(t, cut.node().exprs, 2)
}

func TestStreamlineCombine(t *testing.T) {
	g := New()
	real := g.Combine(g.And(g.Word(Nums), ".", g.Word(Nums)), "").Streamline()
	m, isCombine := real.node().impl.(*combineMatcher)
	require.True(t, isCombine)
	assert.NotNil(t, m.fast)
	testParseSamples(t, real, []parseSample{
		{"3.14", []any{"3.14"}},
	})

	withAction := g.Combine(g.And(g.Word(Nums).Action(ConvertToInteger), ".", g.Word(Nums)), "").Streamline()
	m, isCombine = withAction.node().impl.(*combineMatcher)
	require.True(t, isCombine)
	assert.Nil(t, m.fast)
}

func packratSamples(g *Grammar) Expr {
	term := g.Integer()
	expr := g.Forward()
	factor := g.MatchFirst(term, g.And(g.Suppress("("), expr, g.Suppress(")")))
	expr.Bind(g.MatchFirst(
		g.Group(g.And(factor, "+", expr)),
		g.Group(g.And(factor, "-", expr)),
		factor,
	))
	return expr
}

func TestPackratTransparency(t *testing.T) {
	sources := []string{
		"1",
		"1 + 2",
		"1 - (2 + 3)",
		"((1 - 2) + (3 - (4 + 5)))",
		"1 +",
		"(1 + 2",
		"+",
	}
	configure := map[string]func(g *Grammar){
		"off":       func(g *Grammar) { g.DisablePackrat() },
		"unbounded": func(g *Grammar) { g.EnablePackrat(0) },
		"fifo-3":    func(g *Grammar) { g.EnablePackrat(3) },
	}

	type outcome struct {
		values []any
		code   int
		loc    int
	}
	run := func(name string) []outcome {
		g := New()
		configure[name](g)
		e := packratSamples(g)
		result := make([]outcome, len(sources))
		for i, src := range sources {
			res, err := e.ParseString(src, true)
			if err != nil {
				pe, isParseError := err.(*ParseError)
				require.True(t, isParseError, "%s: %v", name, err)
				result[i] = outcome{code: pe.Code, loc: pe.Loc}
				continue
			}
			result[i] = outcome{values: res.AsList()}
		}
		return result
	}

	expected := run("off")
	assert.Equal(t, []any{[]any{1, "+", 2}}, expected[1].values)
	for _, name := range []string{"unbounded", "fifo-3"} {
		t.Run(name, func(t *testing.T) {
			got := run(name)
			for i := range sources {
				assert.Equal(t, expected[i], got[i], fmt.Sprintf("source %q", sources[i]))
			}
		})
	}
}

func TestPackratIsPerCall(t *testing.T) {
	g := New()
	g.EnablePackrat(0)
	calls := 0
	e := g.Word(Alphas).Action(func(toks *results.Results, loc int, src string) (any, error) {
		calls++
		return nil, nil
	})
	parse(t, e, "abc")
	parse(t, e, "abc")
	assert.Equal(t, 2, calls)
}
