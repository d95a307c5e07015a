package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testBits(size int, elems ...int) bitSet {
	s := newBitSet(size)
	for _, e := range elems {
		s.add(e)
	}
	return s
}

func TestDigraph(t *testing.T) {
	tests := []struct {
		caption  string
		relation [][]int
		initial  []bitSet
		expected [][]int
		sccs     int
	}{
		{
			caption:  "an acyclic relation",
			relation: [][]int{{1}, {2}, nil},
			initial:  []bitSet{testBits(8, 0), testBits(8, 1), testBits(8, 2)},
			expected: [][]int{{0, 1, 2}, {1, 2}, {2}},
		},
		{
			caption:  "a cycle shares one result",
			relation: [][]int{{1}, {0}},
			initial:  []bitSet{testBits(8, 3), testBits(8, 5)},
			expected: [][]int{{3, 5}, {3, 5}},
			sccs:     1,
		},
		{
			caption:  "a node reaching a cycle takes the union of the cycle",
			relation: [][]int{{1}, {2}, {1, 3}, nil},
			initial:  []bitSet{testBits(8), testBits(8, 1), testBits(8, 2), testBits(8, 7)},
			expected: [][]int{{1, 2, 7}, {1, 2, 7}, {1, 2, 7}, {7}},
			sccs:     1,
		},
		{
			caption:  "a self loop is not a component of many nodes",
			relation: [][]int{{0}},
			initial:  []bitSet{testBits(8, 4)},
			expected: [][]int{{4}},
		},
		{
			caption:  "an empty relation",
			relation: [][]int{},
			initial:  []bitSet{},
			expected: [][]int{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			f, sccs := digraph(tt.relation, tt.initial)
			assert.Equal(t, tt.sccs, sccs)
			actual := make([][]int, len(f))
			for i, s := range f {
				actual[i] = s.elems()
			}
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestDigraph_KeepsInitialSets(t *testing.T) {
	initial := []bitSet{testBits(8, 0), testBits(8, 1)}
	digraph([][]int{{1}, {0}}, initial)
	assert.Equal(t, []int{0}, initial[0].elems())
	assert.Equal(t, []int{1}, initial[1].elems())
}

func TestBitSet(t *testing.T) {
	s := newBitSet(130)
	assert.True(t, s.isEmpty())
	assert.True(t, s.add(0))
	assert.True(t, s.add(129))
	assert.False(t, s.add(129))
	assert.True(t, s.has(129))
	assert.Equal(t, 2, s.count())

	u := testBits(130, 64, 129)
	assert.True(t, s.union(u))
	assert.False(t, s.union(u))
	assert.Equal(t, []int{0, 64, 129}, s.elems())
	assert.Equal(t, []int{64, 129}, s.intersection(testBits(130, 64, 65, 129)).elems())

	c := s.clone()
	c.remove(0)
	assert.True(t, s.has(0))
	assert.False(t, c.has(0))
	assert.NotEqual(t, s.key(), c.key())
}
