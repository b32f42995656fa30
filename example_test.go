package parsing_test

import (
	"fmt"

	"github.com/klahnakoski/mo-parsing-sub000/grammar"
	"github.com/klahnakoski/mo-parsing-sub000/results"
)

func Example() {
	input := `
foo = hello
bar = world
[sec]
baz =
[sec.subsec]
qux = !
`
	g := grammar.New()
	defer g.PushEngine(grammar.NewEngine().SetWhitespace(" \t\r"))()

	result := make(map[string]string)
	prefix := ""

	nl := g.Suppress("\n")
	section := g.And(g.Suppress("["), g.Regex(`[a-z]+(?:\.[a-z]+)*`), g.Suppress("]"), nl).
		Action(func(toks *results.Results, loc int, src string) (any, error) {
			prefix = toks.At(0).(string) + "."
			return nil, nil
		})
	value := g.And(g.Regex(`[a-z]+`), g.Suppress("="), g.OptionalDefault(g.Regex(`[^\n]+`), ""), nl).
		Action(func(toks *results.Results, loc int, src string) (any, error) {
			result[prefix+toks.At(0).(string)] = toks.At(1).(string)
			return nil, nil
		})
	config := g.ZeroOrMore(g.MatchFirst(section, value, nl))

	_, e := config.ParseString(input, true)
	if e == nil {
		fmt.Println(result)
	} else {
		fmt.Println(e)
	}

	// Output:
	// map[bar:world foo:hello sec.baz: sec.subsec.qux:!]
}
