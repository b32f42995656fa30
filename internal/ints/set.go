// Package ints implements a set of small non-negative integers, used for node index sets.
package ints

import (
	"math/bits"
)

const wordBits = bits.UintSize

// Set is a bit set growing to the largest stored item.
type Set struct {
	words []uint
}

func NewSet(items ...int) *Set {
	return (&Set{}).Add(items...)
}

func split(item int) (word int, mask uint) {
	if item < 0 {
		panic("ints: negative item")
	}
	return item / wordBits, 1 << uint(item%wordBits)
}

func (s *Set) Add(items ...int) *Set {
	for _, item := range items {
		w, m := split(item)
		if w >= len(s.words) {
			s.words = append(s.words, make([]uint, w+1-len(s.words))...)
		}
		s.words[w] |= m
	}
	return s
}

func (s *Set) Remove(items ...int) *Set {
	for _, item := range items {
		w, m := split(item)
		if w < len(s.words) {
			s.words[w] &^= m
		}
	}
	return s
}

func (s *Set) Contains(item int) bool {
	if item < 0 {
		return false
	}
	w, m := split(item)
	return w < len(s.words) && s.words[w]&m != 0
}
