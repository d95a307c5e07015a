package grammar

import (
	"math"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// digraph computes F(x) = F'(x) ∪ ⋃{ F(y) | x R+ y } for every node x. Nodes in the same strongly
// connected component share one result, so cyclic relations terminate.
func digraph(relation [][]int, initial []bitSet) ([]bitSet, int) {
	c := &digraphContext{
		relation: relation,
		f:        make([]bitSet, len(initial)),
		n:        make([]int, len(initial)),
		stack:    arraystack.New(),
	}
	for x, s := range initial {
		c.f[x] = s.clone()
	}
	for x := range initial {
		if c.n[x] == 0 {
			c.traverse(x)
		}
	}
	return c.f, c.sccCount
}

type digraphContext struct {
	relation [][]int
	f        []bitSet
	n        []int
	stack    *arraystack.Stack

	// sccCount counts the components having more than one node.
	sccCount int
}

func (c *digraphContext) traverse(x int) {
	c.stack.Push(x)
	d := c.stack.Size()
	c.n[x] = d

	for _, y := range c.relation[x] {
		if c.n[y] == 0 {
			c.traverse(y)
		}
		if c.n[y] < c.n[x] {
			c.n[x] = c.n[y]
		}
		c.f[x].union(c.f[y])
	}

	if c.n[x] != d {
		return
	}

	members := 0
	for {
		v, _ := c.stack.Pop()
		top := v.(int)
		c.n[top] = math.MaxInt32
		members++
		if top == x {
			break
		}
		c.f[top] = c.f[x].clone()
	}
	if members > 1 {
		c.sccCount++
	}
}
