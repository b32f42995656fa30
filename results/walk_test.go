package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// (root a (g1 b (g2 c)) d)
func sampleTree() (*Results, map[string]*Results) {
	c := Leaf("c", 4, 5)
	g2 := Group(4, 5, c)
	b := Leaf("b", 2, 3)
	g1 := Group(2, 5, b, g2)
	a := Leaf("a", 0, 1)
	d := Leaf("d", 6, 7)
	root := List(0, 7, a, g1, d)
	return root, map[string]*Results{"root": root, "a": a, "g1": g1, "b": b, "g2": g2, "c": c, "d": d}
}

func collect(root *Results, index map[string]*Results, mode WalkMode, f func(name string) WalkerFlags) []string {
	names := make(map[*Results]string)
	for k, v := range index {
		names[v] = k
	}
	var result []string
	Walk(root, mode, func(r *Results) WalkerFlags {
		result = append(result, names[r])
		return f(names[r])
	})
	return result
}

func TestWalk(t *testing.T) {
	root, i := sampleTree()
	none := func(string) WalkerFlags { return 0 }
	assert.Equal(t, []string{"root", "a", "g1", "b", "g2", "c", "d"}, collect(root, i, WalkLtr, none))
	assert.Equal(t, []string{"root", "d", "g1", "g2", "c", "b", "a"}, collect(root, i, WalkRtl, none))
}

func TestWalkFlags(t *testing.T) {
	root, i := sampleTree()
	samples := []struct {
		at       string
		flags    WalkerFlags
		expected []string
	}{
		{"g1", WalkerSkipChildren, []string{"root", "a", "g1", "d"}},
		{"b", WalkerSkipSiblings, []string{"root", "a", "g1", "b", "d"}},
		{"b", WalkerStop, []string{"root", "a", "g1", "b"}},
	}

	for _, s := range samples {
		got := collect(root, i, WalkLtr, func(name string) WalkerFlags {
			if name == s.at {
				return s.flags
			}
			return 0
		})
		assert.Equal(t, s.expected, got)
	}
	Walk(nil, WalkLtr, func(*Results) WalkerFlags {
		t.Fatal("nil root visited")
		return 0
	})
}
