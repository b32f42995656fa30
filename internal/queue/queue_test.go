package queue

import (
	"fmt"
	"testing"

	. "github.com/klahnakoski/mo-parsing-sub000/internal/test"
)

// fill pushes items expecting none to be dropped.
func fill(t *testing.T, r *Ring[int], items ...int) {
	t.Helper()
	for _, x := range items {
		_, full := r.Push(x)
		ExpectBool(t, false, full)
	}
}

// expectDropped pushes items expecting each push to drop the next of dropped.
func expectDropped(t *testing.T, r *Ring[int], items, dropped []int) {
	t.Helper()
	for i, x := range items {
		d, full := r.Push(x)
		ExpectBool(t, true, full)
		ExpectInt(t, dropped[i], d)
	}
}

func TestNew(t *testing.T) {
	for _, c := range []int{-1, 0, 1, 5} {
		t.Run(fmt.Sprintf("capacity %d", c), func(t *testing.T) {
			r := New[int](c)
			ExpectInt(t, max(c, 1), len(r.items))
			ExpectInt(t, 0, r.count)
			fill(t, r, make([]int, max(c, 1))...)
			expectDropped(t, r, []int{1}, []int{0})
		})
	}
}

func TestPush(t *testing.T) {
	r := New[int](3)
	fill(t, r, 1, 2, 3)
	expectDropped(t, r, []int{4}, []int{1})
	expectDropped(t, r, []int{5, 6, 7}, []int{2, 3, 4})
	expectDropped(t, r, []int{8, 9, 10}, []int{5, 6, 7})
	ExpectInt(t, 3, r.count)
}

func TestClear(t *testing.T) {
	r := New[int](2)
	fill(t, r, 1, 2)
	expectDropped(t, r, []int{3}, []int{1})
	r.Clear()
	ExpectInt(t, 0, r.count)
	ExpectInt(t, 2, len(r.items))
	fill(t, r, 9, 10)
	expectDropped(t, r, []int{11}, []int{9})
}
