package grammar

import (
	"regexp"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/klahnakoski/mo-parsing-sub000/results"
)

// OneOfOptions customizes OneOf.
type OneOfOptions struct {
	// Caseless matches symbols ignoring case, the result holds the symbol as defined.
	Caseless bool
	// AsKeyword matches symbols as keywords.
	AsKeyword bool
}

// OneOf matches any of the symbols, given as a whitespace-separated string or a []string.
// Symbols are reordered so that a symbol is tried before its prefixes.
func (g *Grammar) OneOf(symbols any, opts ...OneOfOptions) Expr {
	opt := OneOfOptions{}
	if len(opts) > 0 {
		opt = opts[0]
	}

	var list []string
	switch x := symbols.(type) {
	case string:
		list = strings.Fields(x)
	case []string:
		list = append(list, x...)
	default:
		panic(wrongArgError("OneOf requires string or []string, got %T", symbols))
	}
	for _, s := range list {
		if s == "" {
			panic(wrongArgError("OneOf symbols must not be empty"))
		}
	}
	if len(list) == 0 {
		g.logger.Warn("OneOf called with no symbols")
		return g.NoMatch()
	}

	list = orderSymbols(list, opt.Caseless)
	name := strings.Join(list, " | ")
	if opt.AsKeyword {
		alts := make([]any, len(list))
		for i, s := range list {
			if opt.Caseless {
				alts[i] = g.CaselessKeyword(s)
			} else {
				alts[i] = g.Keyword(s)
			}
		}
		return g.MatchFirst(alts...).SetName(name)
	}

	quoted := make([]string, len(list))
	for i, s := range list {
		quoted[i] = regexp.QuoteMeta(s)
	}
	pattern := strings.Join(quoted, "|")
	if !opt.Caseless {
		return g.Regex(pattern).SetName(name)
	}

	defined := make(map[string]string, len(list))
	for _, s := range list {
		defined[strings.ToLower(s)] = s
	}
	return g.Regex("(?i:" + pattern + ")").SetName(name).Action(TokensAction(func(toks *results.Results) any {
		s, _ := toks.At(0).(string)
		return defined[strings.ToLower(s)]
	}))
}

// orderSymbols removes duplicates and moves each symbol before the symbols it starts with.
func orderSymbols(symbols []string, caseless bool) []string {
	key := func(s string) string {
		if caseless {
			return strings.ToLower(s)
		}
		return s
	}

	result := append([]string(nil), symbols...)
	for i := 0; i < len(result)-1; {
		cur := key(result[i])
		moved := false
		for j := i + 1; j < len(result); j++ {
			other := key(result[j])
			if other == cur {
				result = slices.Delete(result, j, j+1)
				moved = true
				break
			}
			if strings.HasPrefix(other, cur) {
				s := result[j]
				result = slices.Insert(slices.Delete(result, j, j+1), i, s)
				moved = true
				break
			}
		}
		if !moved {
			i++
		}
	}
	return result
}

// ListOptions customizes DelimitedList, zero values mean defaults.
type ListOptions struct {
	// Delim separates items, defaults to ",". Delimiters are suppressed unless Combine is set.
	Delim any
	// Combine returns the whole list as a single token.
	Combine bool
	// Min is the minimal number of items, defaults to 1.
	Min int
	// Max is the maximal number of items, 0 means no limit.
	Max int
	// AllowTrailingDelim accepts a delimiter after the last item.
	AllowTrailingDelim bool
}

// DelimitedList matches one or more expr separated by a delimiter.
func (g *Grammar) DelimitedList(expr any, opts ...ListOptions) Expr {
	opt := ListOptions{}
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Delim == nil {
		opt.Delim = ","
	}
	if opt.Min < 1 {
		opt.Min = 1
	}
	max := -1
	if opt.Max > 0 {
		if opt.Max < opt.Min {
			panic(wrongArgError("wrong list limits %d..%d", opt.Min, opt.Max))
		}
		max = opt.Max - 1
	}

	item := g.expr(expr)
	delim := g.expr(opt.Delim)
	if !opt.Combine {
		delim = delim.Suppress()
	}
	items := []any{item, g.Many(g.And(delim, item), opt.Min-1, max)}
	if opt.AllowTrailingDelim {
		items = append(items, g.Optional(delim))
	}
	result := g.And(items...)
	if opt.Combine {
		result = g.Combine(result, "")
	}
	return result.SetName(item.String() + " [" + delim.String() + " " + item.String() + "]...")
}

// NestedExpr matches nested lists enclosed in opener and closer, each level is a group.
// Default content is a run of characters other than whitespace, opener, and closer.
// Text matching ignore is kept as is, nil ignore means quoted strings.
func (g *Grammar) NestedExpr(opener, closer string, content, ignore any) Expr {
	if opener == closer {
		panic(wrongArgError("opening and closing strings must be different"))
	}
	var ig Expr
	if ignore == nil {
		ig = g.QuotedStringAny()
	} else {
		ig = g.expr(ignore)
	}
	if content == nil {
		chars := g.CharsNotIn(opener+closer+g.Engine().Whitespace(), 1, 1)
		content = g.Combine(g.OneOrMore(g.And(g.NotAny(ig), chars)), "").
			Action(TokensAction(func(toks *results.Results) any {
				s, _ := toks.At(0).(string)
				return strings.TrimSpace(s)
			}))
	}

	result := g.Forward()
	result.Bind(g.Group(g.And(
		g.Literal(opener).Suppress(),
		g.ZeroOrMore(g.MatchFirst(ig, result, content)),
		g.Literal(closer).Suppress(),
	)))
	return result.SetName("nested " + opener + closer + " expression")
}

// Integer matches unsigned decimal digits and converts them to int.
func (g *Grammar) Integer() Expr {
	return g.Word(Nums).SetName("integer").Action(ConvertToInteger)
}

// SignedInteger matches an integer with optional sign and converts it to int.
func (g *Grammar) SignedInteger() Expr {
	return g.Regex(`[+-]?[0-9]+`).SetName("signed integer").Action(ConvertToInteger)
}

// Real matches a floating point number with a fraction or an exponent and converts it to float64.
func (g *Grammar) Real() Expr {
	return g.Regex(`[+-]?(?:[0-9]+\.[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?|[+-]?[0-9]+[eE][+-]?[0-9]+`).
		SetName("real number").Action(ConvertToFloat)
}

// Number matches Real or SignedInteger.
func (g *Grammar) Number() Expr {
	return g.MatchFirst(g.Real(), g.SignedInteger()).SetName("number")
}

func (g *Grammar) Identifier() Expr {
	return g.Word(Alphas+"_", WordOptions{Body: Alphanums + "_"}).SetName("identifier")
}

func (g *Grammar) CStyleComment() Expr {
	return g.Regex(`/\*(?s:.*?)\*/`).SetName("C style comment")
}

// DblSlashComment matches a // comment, a backslash before the line end continues it.
func (g *Grammar) DblSlashComment() Expr {
	return g.Regex(`//(?:\\\n|[^\n])*`).SetName("// comment")
}

func (g *Grammar) CppStyleComment() Expr {
	return g.MatchFirst(g.CStyleComment(), g.DblSlashComment()).SetName("C++ style comment")
}

func (g *Grammar) PythonStyleComment() Expr {
	return g.Regex(`#[^\n]*`).SetName("Python style comment")
}

// DblQuotedString matches a double quoted string with backslash escapes, quotes are kept.
func (g *Grammar) DblQuotedString() Expr {
	return g.QuotedString(`"`, QuoteOptions{EscChar: `\`, KeepQuotes: true}).SetName("string enclosed in double quotes")
}

// SglQuotedString matches a single quoted string with backslash escapes, quotes are kept.
func (g *Grammar) SglQuotedString() Expr {
	return g.QuotedString(`'`, QuoteOptions{EscChar: `\`, KeepQuotes: true}).SetName("string enclosed in single quotes")
}

func (g *Grammar) QuotedStringAny() Expr {
	return g.MatchFirst(g.DblQuotedString(), g.SglQuotedString()).SetName("quoted string using single or double quotes")
}
