package lexical

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type runeRange struct {
	from rune
	to   rune
}

func sortRuneRanges(ranges []runeRange) {
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].from == ranges[j].from {
			return ranges[i].to < ranges[j].to
		}
		return ranges[i].from < ranges[j].from
	})
}

// position numbers the leaves of a tree from 1.
type position int

const positionNil = position(0)

type positionSet struct {
	s      []position
	sorted bool
}

func newPositionSet() *positionSet {
	return &positionSet{}
}

func (s *positionSet) add(pos position) *positionSet {
	s.s = append(s.s, pos)
	s.sorted = false
	return s
}

func (s *positionSet) merge(t *positionSet) *positionSet {
	s.s = append(s.s, t.s...)
	s.sorted = false
	return s
}

func (s *positionSet) set() []position {
	if s.sorted {
		return s.s
	}
	sort.Slice(s.s, func(i, j int) bool {
		return s.s[i] < s.s[j]
	})
	n := 0
	for i, p := range s.s {
		if i > 0 && p == s.s[n-1] {
			continue
		}
		s.s[n] = p
		n++
	}
	s.s = s.s[:n]
	s.sorted = true
	return s.s
}

func (s *positionSet) isEmpty() bool {
	return len(s.s) == 0
}

func (s *positionSet) key() string {
	var b strings.Builder
	for i, p := range s.set() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(p)))
	}
	return b.String()
}

type regexTree interface {
	fmt.Stringer
	children() (regexTree, regexTree)
	nullable() bool
	first() *positionSet
	last() *positionSet
	clone() regexTree
}

var (
	_ regexTree = &symbolNode{}
	_ regexTree = &endMarkerNode{}
	_ regexTree = &concatNode{}
	_ regexTree = &altNode{}
	_ regexTree = &repeatNode{}
	_ regexTree = &optionNode{}
)

type symbolNode struct {
	runeRange
	pos position
}

func newSymbolNode(c rune) *symbolNode {
	return newRangeSymbolNode(c, c)
}

func newRangeSymbolNode(from, to rune) *symbolNode {
	return &symbolNode{
		runeRange: runeRange{
			from: from,
			to:   to,
		},
		pos: positionNil,
	}
}

func (n *symbolNode) String() string {
	return fmt.Sprintf("symbol: %X-%X, pos: %v", n.from, n.to, n.pos)
}

func (n *symbolNode) children() (regexTree, regexTree) {
	return nil, nil
}

func (n *symbolNode) nullable() bool {
	return false
}

func (n *symbolNode) first() *positionSet {
	return newPositionSet().add(n.pos)
}

func (n *symbolNode) last() *positionSet {
	return newPositionSet().add(n.pos)
}

func (n *symbolNode) clone() regexTree {
	return newRangeSymbolNode(n.from, n.to)
}

// endMarkerNode terminates the pattern whose declaration order is order.
type endMarkerNode struct {
	order int
	pos   position
}

func newEndMarkerNode(order int) *endMarkerNode {
	return &endMarkerNode{
		order: order,
		pos:   positionNil,
	}
}

func (n *endMarkerNode) String() string {
	return fmt.Sprintf("end: order: %v, pos: %v", n.order, n.pos)
}

func (n *endMarkerNode) children() (regexTree, regexTree) {
	return nil, nil
}

func (n *endMarkerNode) nullable() bool {
	return false
}

func (n *endMarkerNode) first() *positionSet {
	return newPositionSet().add(n.pos)
}

func (n *endMarkerNode) last() *positionSet {
	return newPositionSet().add(n.pos)
}

func (n *endMarkerNode) clone() regexTree {
	return newEndMarkerNode(n.order)
}

type concatNode struct {
	left  regexTree
	right regexTree
}

func newConcatNode(left, right regexTree) *concatNode {
	return &concatNode{
		left:  left,
		right: right,
	}
}

func (n *concatNode) String() string {
	return "concat"
}

func (n *concatNode) children() (regexTree, regexTree) {
	return n.left, n.right
}

func (n *concatNode) nullable() bool {
	return n.left.nullable() && n.right.nullable()
}

func (n *concatNode) first() *positionSet {
	s := newPositionSet().merge(n.left.first())
	if n.left.nullable() {
		s.merge(n.right.first())
	}
	return s
}

func (n *concatNode) last() *positionSet {
	s := newPositionSet().merge(n.right.last())
	if n.right.nullable() {
		s.merge(n.left.last())
	}
	return s
}

func (n *concatNode) clone() regexTree {
	return newConcatNode(n.left.clone(), n.right.clone())
}

type altNode struct {
	left  regexTree
	right regexTree
}

func newAltNode(left, right regexTree) *altNode {
	return &altNode{
		left:  left,
		right: right,
	}
}

func (n *altNode) String() string {
	return "alt"
}

func (n *altNode) children() (regexTree, regexTree) {
	return n.left, n.right
}

func (n *altNode) nullable() bool {
	return n.left.nullable() || n.right.nullable()
}

func (n *altNode) first() *positionSet {
	return newPositionSet().merge(n.left.first()).merge(n.right.first())
}

func (n *altNode) last() *positionSet {
	return newPositionSet().merge(n.left.last()).merge(n.right.last())
}

func (n *altNode) clone() regexTree {
	return newAltNode(n.left.clone(), n.right.clone())
}

type repeatNode struct {
	left regexTree
}

func newRepeatNode(left regexTree) *repeatNode {
	return &repeatNode{
		left: left,
	}
}

func (n *repeatNode) String() string {
	return "repeat"
}

func (n *repeatNode) children() (regexTree, regexTree) {
	return n.left, nil
}

func (n *repeatNode) nullable() bool {
	return true
}

func (n *repeatNode) first() *positionSet {
	return newPositionSet().merge(n.left.first())
}

func (n *repeatNode) last() *positionSet {
	return newPositionSet().merge(n.left.last())
}

func (n *repeatNode) clone() regexTree {
	return newRepeatNode(n.left.clone())
}

type optionNode struct {
	left regexTree
}

func newOptionNode(left regexTree) *optionNode {
	return &optionNode{
		left: left,
	}
}

func (n *optionNode) String() string {
	return "option"
}

func (n *optionNode) children() (regexTree, regexTree) {
	return n.left, nil
}

func (n *optionNode) nullable() bool {
	return true
}

func (n *optionNode) first() *positionSet {
	return newPositionSet().merge(n.left.first())
}

func (n *optionNode) last() *positionSet {
	return newPositionSet().merge(n.left.last())
}

func (n *optionNode) clone() regexTree {
	return newOptionNode(n.left.clone())
}

// leafTable maps the positions of a tree to its leaves.
type leafTable struct {
	symbols    map[position]runeRange
	endMarkers map[position]int
}

// positionLeaves numbers the leaves of a tree in left-to-right order.
func positionLeaves(root regexTree) *leafTable {
	tab := &leafTable{
		symbols:    map[position]runeRange{},
		endMarkers: map[position]int{},
	}
	var next position = 1
	var walk func(n regexTree)
	walk = func(n regexTree) {
		if n == nil {
			return
		}
		switch leaf := n.(type) {
		case *symbolNode:
			leaf.pos = next
			tab.symbols[next] = leaf.runeRange
			next++
		case *endMarkerNode:
			leaf.pos = next
			tab.endMarkers[next] = leaf.order
			next++
		default:
			left, right := n.children()
			walk(left)
			walk(right)
		}
	}
	walk(root)
	return tab
}

func genFollowTable(root regexTree) map[position]*positionSet {
	follow := map[position]*positionSet{}
	calcFollow(follow, root)
	return follow
}

func calcFollow(follow map[position]*positionSet, n regexTree) {
	if n == nil {
		return
	}
	left, right := n.children()
	calcFollow(follow, left)
	calcFollow(follow, right)

	switch n := n.(type) {
	case *concatNode:
		for _, p := range n.left.last().set() {
			if _, ok := follow[p]; !ok {
				follow[p] = newPositionSet()
			}
			follow[p].merge(n.right.first())
		}
	case *repeatNode:
		for _, p := range n.last().set() {
			if _, ok := follow[p]; !ok {
				follow[p] = newPositionSet()
			}
			follow[p].merge(n.first())
		}
	}
}
