package grammar

import (
	"math/bits"
	"strconv"
	"strings"
)

// bitSet is a set of small non-negative integers. The relation solver uses it for sets of
// terminal numbers.
type bitSet []uint64

func newBitSet(size int) bitSet {
	return make(bitSet, (size+63)/64)
}

func (s bitSet) add(n int) bool {
	w, b := n/64, uint(n%64)
	if s[w]&(1<<b) != 0 {
		return false
	}
	s[w] |= 1 << b
	return true
}

func (s bitSet) remove(n int) {
	s[n/64] &^= 1 << uint(n%64)
}

func (s bitSet) has(n int) bool {
	if n < 0 || n/64 >= len(s) {
		return false
	}
	return s[n/64]&(1<<uint(n%64)) != 0
}

// union adds the members of t to s and reports whether s changed.
func (s bitSet) union(t bitSet) bool {
	changed := false
	for i := range s {
		if i >= len(t) {
			break
		}
		v := s[i] | t[i]
		if v != s[i] {
			s[i] = v
			changed = true
		}
	}
	return changed
}

func (s bitSet) intersection(t bitSet) bitSet {
	r := make(bitSet, len(s))
	for i := range s {
		if i < len(t) {
			r[i] = s[i] & t[i]
		}
	}
	return r
}

func (s bitSet) clone() bitSet {
	r := make(bitSet, len(s))
	copy(r, s)
	return r
}

func (s bitSet) isEmpty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

func (s bitSet) count() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// elems returns the members in ascending order.
func (s bitSet) elems() []int {
	var elems []int
	for i, w := range s {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			elems = append(elems, i*64+b)
			w &^= 1 << uint(b)
		}
	}
	return elems
}

// key returns a string that identifies the members of the set.
func (s bitSet) key() string {
	var b strings.Builder
	for _, w := range s {
		b.WriteString(strconv.FormatUint(w, 36))
		b.WriteByte('.')
	}
	return b.String()
}
