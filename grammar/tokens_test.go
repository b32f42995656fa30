package grammar

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/klahnakoski/mo-parsing-sub000/internal/test"
)

func TestLiteral(t *testing.T) {
	g := New()
	testParseSamples(t, g.Literal("Hello"), []parseSample{
		{"Hello", []any{"Hello"}},
		{"  Hello world", []any{"Hello"}},
		{"Helloworld", []any{"Hello"}},
	})
	testFailSamples(t, g.Literal("Hello"), "Help", "", "hello")

	testParseSamples(t, g.Literal("!"), []parseSample{{" !", []any{"!"}}})
	testFailSamples(t, g.Literal("!"), "?")
}

func TestEmptyLiteral(t *testing.T) {
	g := New()
	r := parse(t, g.Literal(""), "abc")
	assert.Equal(t, 0, r.Len())
}

func TestCaselessLiteral(t *testing.T) {
	g := New()
	testParseSamples(t, g.CaselessLiteral("CMD"), []parseSample{
		{"cmd", []any{"CMD"}},
		{"CmD1", []any{"CMD"}},
	})
	testFailSamples(t, g.CaselessLiteral("CMD"), "cm")
}

func TestKeyword(t *testing.T) {
	g := New()
	testParseSamples(t, g.Keyword("if"), []parseSample{
		{"if x", []any{"if"}},
		{"if(", []any{"if"}},
		{"if", []any{"if"}},
	})
	testFailSamples(t, g.Keyword("if"), "ifx", "if_", "If")
	testParseSamples(t, g.Literal("if"), []parseSample{{"ifx", []any{"if"}}})

	testParseSamples(t, g.CaselessKeyword("IF"), []parseSample{{"If (", []any{"IF"}}})
	testFailSamples(t, g.CaselessKeyword("IF"), "iffy")

	r := parse(t, g.And("x", g.Keyword("if")), "x if")
	ExpectValues(t, []any{"x", "if"}, r.AsList())
	testFailSamples(t, g.And(g.Word(Alphas), g.Keyword("if")), "xif")
}

func TestWord(t *testing.T) {
	g := New()
	testParseSamples(t, g.Word(Alphas), []parseSample{
		{"hello world", []any{"hello"}},
		{"  a1", []any{"a"}},
	})
	testFailSamples(t, g.Word(Alphas), "1a", "", " ")

	testParseSamples(t, g.Word(Alphas, WordOptions{Body: Alphanums}), []parseSample{
		{"x1y2 z", []any{"x1y2"}},
	})
	testFailSamples(t, g.Word(Alphas, WordOptions{Body: Alphanums}), "1x")

	exact := g.Word(Alphas, WordOptions{Exact: 3})
	testParseSamples(t, exact, []parseSample{{"abc", []any{"abc"}}, {"abc d", []any{"abc"}}})
	testFailSamples(t, exact, "ab", "abcd")

	bounded := g.Word(Alphas, WordOptions{Min: 2, Max: 3})
	testParseSamples(t, bounded, []parseSample{{"ab", []any{"ab"}}, {"abc", []any{"abc"}}})
	testFailSamples(t, bounded, "a", "abcd")

	excluded := g.Word(Printables, WordOptions{ExcludeChars: ","})
	testParseSamples(t, excluded, []parseSample{{"a,b", []any{"a"}}})

	kw := g.Word(Nums, WordOptions{AsKeyword: true})
	testParseSamples(t, kw, []parseSample{{"12 a", []any{"12"}}})
	testFailSamples(t, g.And(g.Literal("1"), kw), "12")

	assert.Panics(t, func() { g.Word("") })
	assert.Panics(t, func() { g.Word(Alphas, WordOptions{Min: 3, Max: 2}) })
}

func TestWordRegexMatchesScan(t *testing.T) {
	g := New()
	init, body := Alphas+"ü", Alphanums+"ï"
	fast := g.Word(init, WordOptions{Body: body})
	slow := g.Word(init, WordOptions{Body: body, Max: 1000})
	_, isRegex := fast.node().impl.(regexWordMatcher)
	require.True(t, isRegex)
	_, isScan := slow.node().impl.(scanWordMatcher)
	require.True(t, isScan)

	for _, src := range []string{"abc123", "1abc", "", "a b", "üïï1x", "ïü", "x-y", "  tail"} {
		fr, fe := fast.ParseString(src, false)
		sr, se := slow.ParseString(src, false)
		if fe != nil || se != nil {
			assert.Error(t, fe, "source %q", src)
			assert.Error(t, se, "source %q", src)
			continue
		}
		assert.Equal(t, sr.AsList(), fr.AsList(), "source %q", src)
		assert.Equal(t, sr.End(), fr.End(), "source %q", src)
	}
}

func TestChar(t *testing.T) {
	g := New()
	testParseSamples(t, g.Char("+-"), []parseSample{{"-5", []any{"-"}}, {" +", []any{"+"}}})
	testFailSamples(t, g.Char("+-"), "5")
	testParseSamples(t, g.Char("äö"), []parseSample{{"öx", []any{"ö"}}})
	assert.Panics(t, func() { g.Char("") })
}

func TestRegex(t *testing.T) {
	g := New()
	date := g.Regex(`(?P<year>[0-9]{4})-(?P<month>[0-9]{2})`)
	r := parse(t, date, " 2024-05 x")
	ExpectValues(t, []any{"2024-05"}, r.AsList())
	assert.Equal(t, "2024", r.Get("year"))
	assert.Equal(t, "05", r.Get("month"))

	testFailSamples(t, date, "24-05", "x2024-05")

	_, e := g.CompileRegex("(")
	ExpectErrorCode(t, WrongRegexpError, e)
	_, e = g.CompileRegex("")
	ExpectErrorCode(t, WrongRegexpError, e)
	assert.Panics(t, func() { g.Regex("[") })
}

func TestQuotedString(t *testing.T) {
	g := New()
	doubled := g.QuotedString(`"`, QuoteOptions{EscQuote: `""`})
	r := parse(t, doubled, `"This is the quote with ""embedded"" quotes"`)
	ExpectValues(t, []any{`This is the quote with "embedded" quotes`}, r.AsList())

	escaped := g.QuotedString(`'`, QuoteOptions{EscChar: `\`})
	testParseSamples(t, escaped, []parseSample{
		{`'it\'s'`, []any{"it's"}},
		{`'a\tb'`, []any{"a\tb"}},
		{`'a\\'`, []any{`a\`}},
		{`''`, []any{""}},
	})
	testFailSamples(t, escaped, "'a\nb'", `'abc`, `"abc"`)

	multiline := g.QuotedString(`'`, QuoteOptions{Multiline: true})
	testParseSamples(t, multiline, []parseSample{{"'a\nb'", []any{"a\nb"}}})

	raw := g.QuotedString(`'`, QuoteOptions{EscChar: `\`, KeepWhitespaceEscapes: true})
	testParseSamples(t, raw, []parseSample{{`'a\tb'`, []any{"atb"}}})

	kept := g.QuotedString(`"`, QuoteOptions{EscChar: `\`, KeepQuotes: true})
	testParseSamples(t, kept, []parseSample{{`"a\"b" c`, []any{`"a\"b"`}}})

	braces := g.QuotedString("{{", QuoteOptions{EndQuote: "}}"})
	testParseSamples(t, braces, []parseSample{{"{{x}}", []any{"x"}}})

	assert.Panics(t, func() { g.QuotedString("") })
}

func TestCharsNotIn(t *testing.T) {
	g := New()
	testParseSamples(t, g.CharsNotIn(",", 1, 0), []parseSample{
		{"ab c,d", []any{"ab c"}},
		{" ab", []any{" ab"}},
	})
	testFailSamples(t, g.CharsNotIn(",", 1, 0), ",a", "")
	testParseSamples(t, g.CharsNotIn(",", 1, 2), []parseSample{{"abc", []any{"ab"}}})
	testFailSamples(t, g.CharsNotIn(",", 3, 0), "ab,")
}

func TestWhite(t *testing.T) {
	g := New()
	e := g.And("a", g.White(" ", 1, 0), "b")
	r := parse(t, e, "a  b")
	ExpectValues(t, []any{"a", "  ", "b"}, r.AsList())
	testFailSamples(t, e, "ab")
	assert.Equal(t, "<SP><TAB>", g.White(" \t", 1, 0).String())
}

func TestLineStartEnd(t *testing.T) {
	g := New()
	start := g.And("x", g.LineStart(), "y")
	testParseSamples(t, start, []parseSample{{"x\ny", []any{"x", "y"}}})
	testFailSamples(t, start, "x y")
	testParseSamples(t, g.And(g.LineStart(), "a"), []parseSample{{"a", []any{"a"}}})

	end := g.And("x", g.LineEnd())
	testParseSamples(t, end, []parseSample{
		{"x\n", []any{"x", "\n"}},
		{"x", []any{"x"}},
		{"x  \n", []any{"x", "\n"}},
	})
	testFailSamples(t, end, "x y")
}

func TestStringStartEnd(t *testing.T) {
	g := New()
	end := g.And("x", g.StringEnd())
	testParseSamples(t, end, []parseSample{{"x  ", []any{"x"}}})
	testFailSamples(t, end, "x y")

	start := g.And(g.StringStart(), "x")
	testParseSamples(t, start, []parseSample{{"  x", []any{"x"}}})
	testFailSamples(t, g.And("y", g.StringStart(), "x"), "y x")
}

func TestWordStartEnd(t *testing.T) {
	g := New()
	end := g.And(g.Literal("ab"), g.WordEnd(Alphas))
	testParseSamples(t, end, []parseSample{{"ab cd", []any{"ab"}}, {"ab", []any{"ab"}}, {"ab1", []any{"ab"}}})
	testFailSamples(t, end, "abc")

	start := g.And(g.WordStart(Alphas), g.Word(Alphas))
	testParseSamples(t, start, []parseSample{{"  abc", []any{"abc"}}})
	testFailSamples(t, g.And("a", g.WordStart(Alphas), g.Word(Alphas)), "abc")
}

func TestRegexString(t *testing.T) {
	g := New()
	_, ok := g.Literal("ab").RegexString()
	assert.False(t, ok)

	p, ok := g.Literal("a.b").LeaveWhitespace().RegexString()
	require.True(t, ok)
	assert.Equal(t, `a\.b`, p)

	p, ok = g.And(g.Word(Nums), ".", g.Word(Nums)).LeaveWhitespace().RegexString()
	require.True(t, ok)
	assert.Equal(t, "3.14", regexp.MustCompile("^(?:"+p+")").FindString("3.14x"))

	_, ok = g.And(g.Word(Alphas), g.Word(Alphanums)).LeaveWhitespace().RegexString()
	assert.False(t, ok)

	p, ok = g.MatchFirst("ab", "cd").LeaveWhitespace().RegexString()
	require.True(t, ok)
	assert.Equal(t, "(?:ab|cd)", p)

	_, ok = g.MatchFirst("a", "ab").LeaveWhitespace().RegexString()
	assert.False(t, ok)
}
