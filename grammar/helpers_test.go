package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderSymbols(t *testing.T) {
	samples := []struct {
		src      []string
		caseless bool
		expected []string
	}{
		{[]string{"<", "<=", ">", ">="}, false, []string{"<=", "<", ">=", ">"}},
		{[]string{"a", "b", "a", "ab"}, false, []string{"ab", "a", "b"}},
		{[]string{"in", "IN", "inner"}, true, []string{"inner", "in"}},
		{[]string{"x"}, false, []string{"x"}},
	}
	for _, s := range samples {
		assert.Equal(t, s.expected, orderSymbols(s.src, s.caseless), "%v", s.src)
	}
}

func TestOneOf(t *testing.T) {
	g := New()
	ops := g.OneOf("< <= > >= = !=")
	testParseSamples(t, g.OneOrMore(ops), []parseSample{
		{"<= < >=", []any{"<=", "<", ">="}},
		{"!==", []any{"!=", "="}},
	})
	testFailSamples(t, ops, "!", "")
	assert.Equal(t, "a | b", g.OneOf([]string{"a", "b"}).String())

	caseless := g.OneOf("select from where", OneOfOptions{Caseless: true})
	testParseSamples(t, g.OneOrMore(caseless), []parseSample{
		{"FROM Where", []any{"from", "where"}},
	})

	keywords := g.OneOf("if in", OneOfOptions{AsKeyword: true})
	testParseSamples(t, keywords, []parseSample{
		{"in x", []any{"in"}},
	})
	testFailSamples(t, keywords, "inside", "IF")

	caselessKeywords := g.OneOf("if", OneOfOptions{AsKeyword: true, Caseless: true})
	testParseSamples(t, caselessKeywords, []parseSample{
		{"IF", []any{"if"}},
	})
	testFailSamples(t, caselessKeywords, "Iffy")
}

func TestOneOfArguments(t *testing.T) {
	g := New()
	testFailSamples(t, g.OneOf(""), "a", "")
	assert.Panics(t, func() { g.OneOf([]string{"a", ""}) })
	assert.Panics(t, func() { g.OneOf(42) })
}

func TestDelimitedList(t *testing.T) {
	g := New()
	word := g.Word(Alphas)
	testParseSamples(t, g.DelimitedList(word), []parseSample{
		{"a, b,c", []any{"a", "b", "c"}},
		{"a", []any{"a"}},
		{"a,", []any{"a"}},
	})
	testParseSamples(t, g.DelimitedList(word, ListOptions{Delim: ";", Max: 2}), []parseSample{
		{"a; b; c", []any{"a", "b"}},
	})
	testFailSamples(t, g.DelimitedList(word, ListOptions{Min: 2}), "a", "a;b")
	testParseSamples(t, g.DelimitedList(word, ListOptions{Combine: true}), []parseSample{
		{"a,b,c", []any{"a,b,c"}},
	})

	trailing := g.DelimitedList(word, ListOptions{AllowTrailingDelim: true})
	res, e := trailing.ParseString("a, b,", true)
	require.NoError(t, e)
	assert.Equal(t, []any{"a", "b"}, res.AsList())

	assert.Panics(t, func() { g.DelimitedList(word, ListOptions{Min: 3, Max: 2}) })
}

func TestNestedExpr(t *testing.T) {
	g := New()
	nested := g.NestedExpr("(", ")", nil, nil)
	testParseSamples(t, nested, []parseSample{
		{"(a (b c) 'x y')", []any{[]any{"a", []any{"b", "c"}, "'x y'"}}},
		{"()", []any{[]any{}}},
		{"(a+b (c))", []any{[]any{"a+b", []any{"c"}}}},
	})
	testFailSamples(t, nested, "(a (b)", "a")

	braces := g.NestedExpr("{", "}", g.Integer(), nil)
	testParseSamples(t, braces, []parseSample{
		{"{1 {2 3}}", []any{[]any{1, []any{2, 3}}}},
	})
	assert.Panics(t, func() { g.NestedExpr("|", "|", nil, nil) })
}

func TestNumbers(t *testing.T) {
	g := New()
	testParseSamples(t, g.Integer(), []parseSample{
		{"42", []any{42}},
	})
	testParseSamples(t, g.SignedInteger(), []parseSample{
		{"+100", []any{100}},
		{"-7", []any{-7}},
	})
	testParseSamples(t, g.Real(), []parseSample{
		{"1e3", []any{1000.0}},
		{"3.25", []any{3.25}},
		{"-.5", []any{-0.5}},
	})
	testFailSamples(t, g.Real(), "12", "e3")
	testParseSamples(t, g.Number(), []parseSample{
		{"3.5", []any{3.5}},
		{"-7", []any{-7}},
		{"2E2", []any{200.0}},
	})
}

func TestIdentifier(t *testing.T) {
	g := New()
	testParseSamples(t, g.Identifier(), []parseSample{
		{"_tmp1 x", []any{"_tmp1"}},
	})
	testFailSamples(t, g.Identifier(), "1x")
}

func TestComments(t *testing.T) {
	g := New()
	testParseSamples(t, g.CStyleComment(), []parseSample{
		{"/* a\n b */ c */", []any{"/* a\n b */"}},
	})
	testParseSamples(t, g.DblSlashComment(), []parseSample{
		{"// one\ntwo", []any{"// one"}},
		{"// one\\\ntwo\nthree", []any{"// one\\\ntwo"}},
	})
	testParseSamples(t, g.OneOrMore(g.CppStyleComment()), []parseSample{
		{"/* a */ // b", []any{"/* a */", "// b"}},
	})
	testParseSamples(t, g.PythonStyleComment(), []parseSample{
		{"# note\nx = 1", []any{"# note"}},
	})
}

func TestQuotedStrings(t *testing.T) {
	g := New()
	testParseSamples(t, g.DblQuotedString(), []parseSample{
		{`"a \"b\"" c`, []any{`"a \"b\""`}},
	})
	testParseSamples(t, g.SglQuotedString(), []parseSample{
		{`'it\'s'`, []any{`'it\'s'`}},
	})
	testParseSamples(t, g.OneOrMore(g.QuotedStringAny()), []parseSample{
		{`"a" 'b'`, []any{`"a"`, `'b'`}},
	})
	testFailSamples(t, g.QuotedStringAny(), `"open`, "x")
}
