package grammar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/klahnakoski/mo-parsing-sub000/results"
)

type emptyMatcher struct{}

func (emptyMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	return loc, results.Empty(loc), nil
}

func (emptyMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "Empty"
}

// Empty matches at any position without consuming input.
func (g *Grammar) Empty() Expr {
	return g.addToken(emptyMatcher{})
}

type noMatcher struct{}

func (noMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	return 0, nil, st.expected(loc, n.id)
}

func (noMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "NoMatch"
}

// NoMatch never matches.
func (g *Grammar) NoMatch() Expr {
	return g.addToken(noMatcher{})
}

type literalMatcher struct {
	match string
}

func (m literalMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	if strings.HasPrefix(st.text[loc:], m.match) {
		end := loc + len(m.match)
		return end, results.Leaf(m.match, loc, end), nil
	}
	return 0, nil, st.expected(loc, n.id)
}

func (m literalMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return strconv.Quote(m.match)
}

type charLiteralMatcher struct {
	c     byte
	match string
}

func (m charLiteralMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	if loc < len(st.text) && st.text[loc] == m.c {
		return loc + 1, results.Leaf(m.match, loc, loc+1), nil
	}
	return 0, nil, st.expected(loc, n.id)
}

func (m charLiteralMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return strconv.Quote(m.match)
}

// Literal matches s exactly. An empty s gives Empty.
func (g *Grammar) Literal(s string) Expr {
	switch {
	case s == "":
		g.logger.Warn("empty literal replaced with Empty")
		return g.Empty()
	case len(s) == 1:
		return g.addToken(charLiteralMatcher{s[0], s})
	default:
		return g.addToken(literalMatcher{s})
	}
}

type caselessLiteralMatcher struct {
	match string
}

func (m caselessLiteralMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	end := loc + len(m.match)
	if end <= len(st.text) && strings.EqualFold(st.text[loc:end], m.match) {
		return end, results.Leaf(m.match, loc, end), nil
	}
	return 0, nil, st.expected(loc, n.id)
}

func (m caselessLiteralMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return strconv.Quote(m.match)
}

// CaselessLiteral matches s ignoring case, the result is s as defined.
func (g *Grammar) CaselessLiteral(s string) Expr {
	if s == "" {
		return g.Empty()
	}
	return g.addToken(caselessLiteralMatcher{s})
}

type keywordMatcher struct {
	match      string
	caseless   bool
	identChars charSet
}

func (m keywordMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	text := st.text
	end := loc + len(m.match)
	if end <= len(text) {
		matched := text[loc:end] == m.match || (m.caseless && strings.EqualFold(text[loc:end], m.match))
		if matched {
			next, _ := runeAt(text, end)
			prev, _ := runeBefore(text, loc)
			if (end >= len(text) || !m.identChars.has(next)) && (loc == 0 || !m.identChars.has(prev)) {
				return end, results.Leaf(m.match, loc, end), nil
			}
		}
	}
	return 0, nil, st.expected(loc, n.id)
}

func (m keywordMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return strconv.Quote(m.match)
}

// Keyword matches s not immediately surrounded by keyword characters of the active engine.
func (g *Grammar) Keyword(s string) Expr {
	return g.addToken(keywordMatcher{s, false, newCharSet(g.Engine().keywordChars)})
}

// CaselessKeyword is a Keyword ignoring case.
func (g *Grammar) CaselessKeyword(s string) Expr {
	return g.addToken(keywordMatcher{s, true, newCharSet(g.Engine().keywordChars)})
}

// WordOptions customizes Word, zero values mean defaults.
type WordOptions struct {
	// Body is the set of characters after the first one, defaults to the initial set.
	Body string
	// Min is the minimal length in characters, defaults to 1.
	Min int
	// Max is the maximal length, 0 means no limit. Longer words do not match at all.
	Max int
	// Exact sets both Min and Max.
	Exact int
	// AsKeyword requires the word to be surrounded by non-body characters.
	AsKeyword bool
	// ExcludeChars are removed from both sets.
	ExcludeChars string
}

type scanWordMatcher struct {
	init, body charSet
	min, max   int
	asKeyword  bool
}

func (m scanWordMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	text := st.text
	r, size := runeAt(text, loc)
	if size == 0 || !m.init.has(r) {
		return 0, nil, st.expected(loc, n.id)
	}

	end := loc + size
	count := 1
	for end < len(text) && (m.max == 0 || count < m.max) {
		r, size = runeAt(text, end)
		if !m.body.has(r) {
			break
		}
		end += size
		count++
	}

	failed := count < m.min
	if !failed && m.max > 0 && end < len(text) {
		r, _ = runeAt(text, end)
		failed = m.body.has(r)
	}
	if !failed && m.asKeyword {
		prev, _ := runeBefore(text, loc)
		next, _ := runeAt(text, end)
		failed = (loc > 0 && m.body.has(prev)) || (end < len(text) && m.body.has(next))
	}
	if failed {
		return 0, nil, st.expected(loc, n.id)
	}
	return end, results.Leaf(text[loc:end], loc, end), nil
}

func (m scanWordMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return describeWord(m.init, m.body)
}

type regexWordMatcher struct {
	init, body charSet
	re         *regexp.Regexp
}

func (m regexWordMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	match := m.re.FindStringIndex(st.text[loc:])
	if match == nil {
		return 0, nil, st.expected(loc, n.id)
	}
	end := loc + match[1]
	return end, results.Leaf(st.text[loc:end], loc, end), nil
}

func (m regexWordMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return describeWord(m.init, m.body)
}

func describeWord(init, body charSet) string {
	if init.chars == body.chars {
		return "W:(" + abbrev(init.chars) + ")"
	}
	return "W:(" + abbrev(init.chars) + ", " + abbrev(body.chars) + ")"
}

// Word matches a run of characters, the first one from init and the rest from the body set.
// Words without length limits and keyword checks are matched with a compiled regexp.
func (g *Grammar) Word(init string, opts ...WordOptions) Expr {
	opt := WordOptions{}
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Body == "" {
		opt.Body = init
	}
	initSet := newCharSet(init).without(opt.ExcludeChars)
	bodySet := newCharSet(opt.Body).without(opt.ExcludeChars)
	if initSet.isEmpty() {
		panic(wrongArgError("Word requires non-empty initial character set"))
	}

	min, max := opt.Min, opt.Max
	if opt.Exact > 0 {
		min, max = opt.Exact, opt.Exact
	}
	if min == 0 {
		min = 1
	}
	if min < 0 || max < 0 || (max > 0 && max < min) {
		panic(wrongArgError("wrong Word length limits %d..%d", min, max))
	}

	if min == 1 && max == 0 && !opt.AsKeyword {
		re := regexp.MustCompile(`^` + initSet.regexClass() + bodySet.regexClass() + `*`)
		return g.addToken(regexWordMatcher{initSet, bodySet, re})
	}
	return g.addToken(scanWordMatcher{initSet, bodySet, min, max, opt.AsKeyword})
}

type charMatcher struct {
	set       charSet
	asKeyword bool
}

func (m charMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	r, size := runeAt(st.text, loc)
	if size > 0 && m.set.has(r) {
		end := loc + size
		if m.asKeyword {
			prev, _ := runeBefore(st.text, loc)
			next, _ := runeAt(st.text, end)
			if (loc > 0 && m.set.has(prev)) || (end < len(st.text) && m.set.has(next)) {
				return 0, nil, st.expected(loc, n.id)
			}
		}
		return end, results.Leaf(st.text[loc:end], loc, end), nil
	}
	return 0, nil, st.expected(loc, n.id)
}

func (m charMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "[" + abbrev(m.set.chars) + "]"
}

// Char matches a single character from chars.
func (g *Grammar) Char(chars string) Expr {
	set := newCharSet(chars)
	if set.isEmpty() {
		panic(wrongArgError("Char requires non-empty character set"))
	}
	return g.addToken(charMatcher{set: set})
}

type regexMatcher struct {
	pattern string
	re      *regexp.Regexp
}

func (m regexMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	match := m.re.FindStringSubmatchIndex(st.text[loc:])
	if match == nil {
		return 0, nil, st.expected(loc, n.id)
	}

	end := loc + match[1]
	res := results.List(loc, end, results.Leaf(st.text[loc:end], loc, end))
	for i, name := range m.re.SubexpNames() {
		if name != "" && match[2*i] >= 0 {
			res.Set(name, st.text[loc+match[2*i]:loc+match[2*i+1]])
		}
	}
	return end, res, nil
}

func (m regexMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "Re:(" + strconv.Quote(m.pattern) + ")"
}

// CompileRegex creates an expression matching pattern (RE2 syntax) at the current position.
// Named groups are bound as results names.
func (g *Grammar) CompileRegex(pattern string) (Expr, error) {
	if pattern == "" {
		return Expr{}, regexpError(pattern, errEmptyPattern)
	}
	re, e := regexp.Compile(`^(?:` + pattern + `)`)
	if e != nil {
		return Expr{}, regexpError(pattern, e)
	}
	return g.addToken(regexMatcher{pattern, re}), nil
}

// Regex is like CompileRegex but panics if pattern is incorrect.
func (g *Grammar) Regex(pattern string) Expr {
	result, e := g.CompileRegex(pattern)
	if e != nil {
		panic(e)
	}
	return result
}

// QuoteOptions customizes QuotedString, zero values mean defaults.
type QuoteOptions struct {
	// EscChar escapes any following character, usually "\\".
	EscChar string
	// EscQuote is a sequence standing for a quote inside the string, e.g. `""`.
	EscQuote string
	// Multiline allows newlines inside the string.
	Multiline bool
	// KeepQuotes disables quote stripping and unescaping of the result.
	KeepQuotes bool
	// EndQuote defaults to the opening quote.
	EndQuote string
	// KeepWhitespaceEscapes disables conversion of \t, \n, \f, \r sequences.
	KeepWhitespaceEscapes bool
}

var errEmptyPattern = errors.New("empty pattern")

type quotedStringMatcher struct {
	quote string
	opt   QuoteOptions
}

var whitespaceEscapes = strings.NewReplacer(`\t`, "\t", `\n`, "\n", `\f`, "\f", `\r`, "\r")

func (m quotedStringMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	text := st.text
	if !strings.HasPrefix(text[loc:], m.quote) {
		return 0, nil, st.expected(loc, n.id)
	}

	i := loc + len(m.quote)
	for {
		switch {
		case i >= len(text):
			return 0, nil, st.expected(loc, n.id)
		case m.opt.EscQuote != "" && strings.HasPrefix(text[i:], m.opt.EscQuote):
			i += len(m.opt.EscQuote)
			continue
		case m.opt.EscChar != "" && strings.HasPrefix(text[i:], m.opt.EscChar) && i+len(m.opt.EscChar) < len(text):
			next := i + len(m.opt.EscChar)
			if !m.opt.Multiline && text[next] == '\n' {
				return 0, nil, st.expected(loc, n.id)
			}
			i = nextPos(text, next)
			continue
		case strings.HasPrefix(text[i:], m.opt.EndQuote):
			end := i + len(m.opt.EndQuote)
			return end, results.Leaf(m.value(text[loc:end]), loc, end), nil
		case !m.opt.Multiline && (text[i] == '\n' || text[i] == '\r'):
			return 0, nil, st.expected(loc, n.id)
		}
		i = nextPos(text, i)
	}
}

func (m quotedStringMatcher) value(s string) string {
	if m.opt.KeepQuotes {
		return s
	}

	s = s[len(m.quote) : len(s)-len(m.opt.EndQuote)]
	if !m.opt.KeepWhitespaceEscapes && strings.Contains(s, `\`) {
		s = whitespaceEscapes.Replace(s)
	}
	if m.opt.EscChar != "" {
		sb := &strings.Builder{}
		for i := 0; i < len(s); {
			if strings.HasPrefix(s[i:], m.opt.EscChar) && i+len(m.opt.EscChar) < len(s) {
				i += len(m.opt.EscChar)
			}
			next := nextPos(s, i)
			sb.WriteString(s[i:next])
			i = next
		}
		s = sb.String()
	}
	if m.opt.EscQuote != "" {
		s = strings.ReplaceAll(s, m.opt.EscQuote, m.opt.EndQuote)
	}
	return s
}

func (m quotedStringMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "quoted string, starting with " + m.quote + " ending with " + m.opt.EndQuote
}

// QuotedString matches text enclosed in quote characters.
func (g *Grammar) QuotedString(quote string, opts ...QuoteOptions) Expr {
	opt := QuoteOptions{}
	if len(opts) > 0 {
		opt = opts[0]
	}
	if quote == "" {
		panic(wrongArgError("QuotedString requires non-empty quote"))
	}
	if opt.EndQuote == "" {
		opt.EndQuote = quote
	}
	return g.addToken(quotedStringMatcher{quote, opt})
}

type charsNotInMatcher struct {
	notChars charSet
	min, max int
}

func (m charsNotInMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	text := st.text
	end := loc
	count := 0
	for end < len(text) && (m.max == 0 || count < m.max) {
		r, size := runeAt(text, end)
		if m.notChars.has(r) {
			break
		}
		end += size
		count++
	}
	if count < m.min || count == 0 {
		return 0, nil, st.expected(loc, n.id)
	}
	return end, results.Leaf(text[loc:end], loc, end), nil
}

func (m charsNotInMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return "!W:(" + abbrev(m.notChars.chars) + ")"
}

// CharsNotIn matches a run of characters not in notChars, max 0 means no limit.
// Leading whitespace is not skipped.
func (g *Grammar) CharsNotIn(notChars string, min, max int) Expr {
	if min < 1 {
		min = 1
	}
	if max < 0 || (max > 0 && max < min) {
		panic(wrongArgError("wrong CharsNotIn length limits %d..%d", min, max))
	}
	e := g.addToken(charsNotInMatcher{newCharSet(notChars), min, max})
	e.node().skipWS = false
	return e
}

var whiteNames = map[rune]string{
	' ':      "<SP>",
	'\t':     "<TAB>",
	'\n':     "<LF>",
	'\r':     "<CR>",
	'\f':     "<FF>",
	'\u00a0': "<NBSP>",
	'\u2028': "<LINE_SEPARATOR>",
	'\u3000': "<IDEOGRAPHIC_SPACE>",
}

type whiteMatcher struct {
	chars    charSet
	min, max int
}

func (m whiteMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	text := st.text
	end := loc
	count := 0
	for end < len(text) && (m.max == 0 || count < m.max) {
		r, size := runeAt(text, end)
		if !m.chars.has(r) {
			break
		}
		end += size
		count++
	}
	if count < m.min {
		return 0, nil, st.expected(loc, n.id)
	}
	return end, results.Leaf(text[loc:end], loc, end), nil
}

func (m whiteMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	sb := &strings.Builder{}
	for _, r := range m.chars.chars {
		name, found := whiteNames[r]
		if !found {
			name = strconv.QuoteRune(r)
		}
		sb.WriteString(name)
	}
	return sb.String()
}

// White matches whitespace characters from chars (DefaultWhitespace if empty),
// these characters are not skipped before matching.
func (g *Grammar) White(chars string, min, max int) Expr {
	if chars == "" {
		chars = DefaultWhitespace
	}
	if min < 1 {
		min = 1
	}
	e := g.addToken(whiteMatcher{newCharSet(chars), min, max})
	n := e.node()
	n.engine = n.engine.withoutWhitespace(chars)
	return e
}

type positionKind int

const (
	lineStart positionKind = iota
	lineEnd
	stringStart
	stringEnd
	wordStart
	wordEnd
)

var positionNames = []string{"LineStart", "LineEnd", "StringStart", "StringEnd", "WordStart", "WordEnd"}

type positionMatcher struct {
	kind         positionKind
	wordChars    charSet
	skipNewlines bool
}

func (m positionMatcher) parseImpl(st *state, n *node, loc int, doActions, preParse bool) (int, *results.Results, error) {
	text := st.text
	matched := false
	switch m.kind {
	case lineStart:
		if m.skipNewlines {
			for loc > 0 && loc < len(text) && text[loc-1] != '\n' && text[loc] == '\n' {
				loc = st.skip(n.engine, n.skipWS, loc+1)
			}
		}
		matched = loc == 0 || text[loc-1] == '\n'
	case lineEnd:
		if loc < len(text) && text[loc] == '\n' {
			return loc + 1, results.Leaf("\n", loc, loc+1), nil
		}
		matched = loc >= len(text)
	case stringStart:
		matched = loc == 0 || loc == st.skip(n.engine, n.skipWS, 0)
	case stringEnd:
		matched = loc >= len(text)
	case wordStart:
		next, size := runeAt(text, loc)
		prev, _ := runeBefore(text, loc)
		matched = size > 0 && m.wordChars.has(next) && (loc == 0 || !m.wordChars.has(prev))
	case wordEnd:
		next, _ := runeAt(text, loc)
		prev, _ := runeBefore(text, loc)
		matched = loc >= len(text) || (loc > 0 && m.wordChars.has(prev) && !m.wordChars.has(next))
	}
	if !matched {
		return 0, nil, st.expected(loc, n.id)
	}
	return loc, results.Empty(loc), nil
}

func (m positionMatcher) describe(g *Grammar, n *node, visiting map[int]bool) string {
	return positionNames[m.kind]
}

func (g *Grammar) position(kind positionKind, wordChars string) Expr {
	skipNewlines := strings.ContainsRune(g.Engine().Whitespace(), '\n')
	e := g.addToken(positionMatcher{kind, newCharSet(wordChars), skipNewlines})
	n := e.node()
	switch kind {
	case lineStart, lineEnd:
		n.engine = n.engine.withoutWhitespace("\n")
	case wordEnd:
		n.skipWS = false
	}
	return e
}

// LineStart matches at the beginning of a line, newlines are not skipped.
func (g *Grammar) LineStart() Expr {
	return g.position(lineStart, "")
}

// LineEnd matches a newline (returning it as a token) or the end of text.
func (g *Grammar) LineEnd() Expr {
	return g.position(lineEnd, "")
}

func (g *Grammar) StringStart() Expr {
	return g.position(stringStart, "")
}

func (g *Grammar) StringEnd() Expr {
	return g.position(stringEnd, "")
}

// WordStart matches before a word character not preceded by another one, Printables if wordChars is empty.
func (g *Grammar) WordStart(wordChars string) Expr {
	if wordChars == "" {
		wordChars = Printables
	}
	return g.position(wordStart, wordChars)
}

// WordEnd matches after a word character not followed by another one, Printables if wordChars is empty.
func (g *Grammar) WordEnd(wordChars string) Expr {
	if wordChars == "" {
		wordChars = Printables
	}
	return g.position(wordEnd, wordChars)
}

