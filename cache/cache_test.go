package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnbounded(t *testing.T) {
	c := NewUnbounded[string, int]()
	_, found := c.Get("a")
	assert.False(t, found)

	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprint(i), i)
	}
	require.Equal(t, 100, c.Len())
	v, found := c.Get("42")
	assert.True(t, found)
	assert.Equal(t, 42, v)
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Stats{}, c.Stats())
}

func TestFIFOEvictsOldest(t *testing.T) {
	c := NewFIFO[int, string](3)
	c.Set(1, "one")
	c.Set(2, "two")
	c.Set(3, "three")

	_, found := c.Get(1)
	require.True(t, found)

	c.Set(4, "four")
	assert.Equal(t, 3, c.Len())
	_, found = c.Get(1)
	assert.False(t, found, "lookup must not refresh an entry")
	for _, k := range []int{2, 3, 4} {
		_, found = c.Get(k)
		assert.True(t, found, "key %d", k)
	}
	assert.Equal(t, 1, c.Stats().Evictions)
}

func TestFIFOReplaceKeepsOrder(t *testing.T) {
	c := NewFIFO[int, string](2)
	c.Set(1, "one")
	c.Set(2, "two")
	c.Set(1, "uno")
	c.Set(3, "three")

	_, found := c.Get(1)
	assert.False(t, found)
	v, found := c.Get(2)
	assert.True(t, found)
	assert.Equal(t, "two", v)
}

func TestFIFOClear(t *testing.T) {
	c := NewFIFO[int, int](2)
	for i := 0; i < 10; i++ {
		c.Set(i, i)
	}
	c.Clear()
	assert.Equal(t, 0, c.Len())
	c.Set(20, 20)
	c.Set(21, 21)
	c.Set(22, 22)
	assert.Equal(t, 2, c.Len())
	_, found := c.Get(20)
	assert.False(t, found)
}

func TestFIFOMinimalSize(t *testing.T) {
	c := NewFIFO[int, int](0)
	c.Set(1, 1)
	c.Set(2, 2)
	assert.Equal(t, 1, c.Len())
}
