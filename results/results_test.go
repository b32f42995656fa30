package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/klahnakoski/mo-parsing-sub000/internal/test"
)

func leaves(start int, values ...string) []*Results {
	result := make([]*Results, len(values))
	for i, v := range values {
		result[i] = Leaf(v, start, start+len(v))
		start += len(v) + 1
	}
	return result
}

func TestListFlattening(t *testing.T) {
	inner := List(2, 5, leaves(2, "b", "c")...)
	r := List(0, 5, Leaf("a", 0, 1), inner, List(5, 5))
	ExpectValues(t, []any{"a", "b", "c"}, r.Values())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, "c", r.At(-1))
	assert.Nil(t, r.At(3))
	assert.Nil(t, r.At(-4))
}

func TestGroupIsAtom(t *testing.T) {
	g := Group(2, 5, leaves(2, "b", "c")...)
	r := List(0, 5, Leaf("a", 0, 1), g)
	require.Equal(t, 2, r.Len())
	assert.Same(t, g, r.At(1))
	ExpectValues(t, []any{"a", []any{"b", "c"}}, r.AsList())

	ExpectValues(t, []any{"b", "c"}, g.Values())
	assert.Equal(t, 2, g.Len())
}

func TestNamedModal(t *testing.T) {
	r := List(0, 3,
		Named("x", true, Leaf("A", 0, 1)),
		Named("x", true, Leaf("B", 2, 3)),
	)
	ExpectValues(t, []any{"A", "B"}, r.Values())
	assert.Equal(t, "B", r.Get("x"))
	assert.True(t, r.Has("x"))
	assert.False(t, r.Has("y"))
	assert.Equal(t, "def", r.GetOr("y", "def"))
}

func TestNamedCumulative(t *testing.T) {
	r := List(0, 3,
		Named("x", false, Leaf("A", 0, 1)),
		Named("x", false, Leaf("B", 2, 3)),
	)
	assert.Equal(t, []any{"A", "B"}, r.Get("x"))
}

func TestNamedMultipleTokens(t *testing.T) {
	body := List(0, 3, leaves(0, "a", "b")...)
	r := List(0, 3, Named("pair", true, body))
	v, isResults := r.Get("pair").(*Results)
	require.True(t, isResults)
	ExpectValues(t, []any{"a", "b"}, v.AsList())
	assert.Equal(t, map[string]any{"pair": []any{"a", "b"}}, r.AsDict())
}

func TestNamedEmptyIsNotBound(t *testing.T) {
	r := List(0, 0, Named("x", true, Empty(0)))
	assert.False(t, r.Has("x"))
	assert.Empty(t, r.Names())
}

func TestNamesDoNotLeakFromGroups(t *testing.T) {
	g := Group(0, 3, Named("inner", true, Leaf("a", 0, 1)), Leaf("b", 2, 3))
	r := List(0, 3, Named("outer", true, g))
	assert.False(t, r.Has("inner"))
	assert.Same(t, g, r.Get("outer"))
	assert.Equal(t, "a", g.Get("inner"))
	assert.Equal(t, map[string]any{"outer": map[string]any{"inner": "a"}}, r.AsDict())
}

func TestFromValues(t *testing.T) {
	nested := Group(0, 1, Leaf("z", 0, 1))
	r := FromValues(0, 4, []any{1, []any{2, 3}, nested})
	ExpectValues(t, []any{1, []any{2, 3}, []any{"z"}}, r.AsList())
	assert.Equal(t, 0, r.Start())
	assert.Equal(t, 4, r.End())
}

func TestHollow(t *testing.T) {
	r := List(0, 3, Named("x", true, Leaf("A", 0, 1)), Leaf("B", 2, 3))
	h := Hollow(r)
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, "A", h.Get("x"))

	parent := List(0, 3, h, Leaf("C", 0, 1))
	assert.Equal(t, "A", parent.Get("x"))
	ExpectValues(t, []any{"C"}, parent.Values())
}

func TestOverlay(t *testing.T) {
	r := List(0, 5, Named("x", true, Leaf("a", 0, 1)), Leaf("b", 2, 3))
	r.Append("c", []any{"d", "e"})
	ExpectValues(t, []any{"a", "b", "c", []any{"d", "e"}}, r.AsList())

	r.Insert(0, "start")
	r.Insert(-1, "mid")
	ExpectValues(t, []any{"start", "a", "b", "c", "mid", []any{"d", "e"}}, r.AsList())

	v, popped := r.Pop(1)
	assert.True(t, popped)
	assert.Equal(t, "a", v)
	_, popped = r.Pop(10)
	assert.False(t, popped)

	assert.Equal(t, "a", r.Get("x"), "names survive overlay changes")
}

func TestCopyIsolatesOverlay(t *testing.T) {
	r := List(0, 3, leaves(0, "a", "b")...)
	c := r.Copy()
	c.Append("c")
	c.Set("k", 1)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 3, c.Len())
	assert.False(t, r.Has("k"))
	assert.Equal(t, 1, c.Get("k"))
}

func TestSetOverridesWalkedNames(t *testing.T) {
	r := List(0, 1, Named("x", true, Leaf("a", 0, 1)))
	r.Set("x", "override")
	assert.Equal(t, "override", r.Get("x"))
	assert.Equal(t, []string{"x"}, r.Names())
}

func TestNameIndexFollowsMutations(t *testing.T) {
	inner := List(0, 1, Named("x", true, Leaf("a", 0, 1)))
	pair := List(1, 3, Leaf("b", 1, 2), Leaf("c", 2, 3))
	r := List(0, 3, inner, Named("w", true, pair))

	assert.Equal(t, "a", r.Get("x"))
	assert.Same(t, r.names(), r.names())
	assert.Same(t, pair, r.Get("w"))

	inner.Set("z", 1)
	assert.True(t, r.Has("z"))
	assert.Equal(t, 1, r.GetOr("z", 0))

	_, popped := pair.Pop(0)
	require.True(t, popped)
	assert.Equal(t, "c", r.Get("w"))

	names := r.Names()
	assert.ElementsMatch(t, []string{"x", "z", "w"}, names)
	names[0] = "changed"
	assert.ElementsMatch(t, []string{"x", "z", "w"}, r.Names())

	c := r.Copy()
	c.Set("x", "b")
	assert.Equal(t, "b", c.Get("x"))
	assert.Equal(t, "a", r.Get("x"))
}

func TestStrings(t *testing.T) {
	r := List(0, 5, Leaf(1, 0, 1), Group(1, 5, leaves(1, "b", "c")...))
	assert.Equal(t, []string{"1", "b", "c"}, r.Strings())
	assert.Equal(t, `[1, ["b", "c"]]`, r.String())
}

func TestDump(t *testing.T) {
	g := Group(2, 5, Named("k", true, Leaf("v", 2, 3)))
	r := List(0, 5, Named("a", true, Leaf("x", 0, 1)), Named("g", true, g))
	expected := "[\"x\", [\"v\"]]\n" +
		"- a: \"x\"\n" +
		"- g: [\"v\"]\n" +
		"  - k: \"v\""
	assert.Equal(t, expected, r.Dump())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "group", GroupKind.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
