package grammar

import "fmt"

type pathKind int

const (
	pathKindStart pathKind = iota
	pathKindTransition
	pathKindProduction
)

func (k pathKind) String() string {
	switch k {
	case pathKindStart:
		return "start"
	case pathKindTransition:
		return "transition"
	case pathKindProduction:
		return "production"
	}
	return "unknown"
}

const pathNil = -1

// pathNode is a step of a path over state-items. A start node has no parent and its from equals
// its to. A transition node moves over the dotted symbol into the next state, and a production
// node moves to an item the closure added in the same state.
type pathNode struct {
	kind   pathKind
	from   stateItemID
	to     stateItemID
	parent int
}

func (n *pathNode) String() string {
	return fmt.Sprintf("%v(%v -> %v)", n.kind, n.from, n.to)
}

// pathArena owns the nodes of every path of one counterexample search. Nodes refer to their parents
// by index, so paths share their prefixes.
type pathArena struct {
	nodes []*pathNode
}

func newPathArena() *pathArena {
	return &pathArena{}
}

func (a *pathArena) start(si stateItemID) int {
	return a.add(pathKindStart, si, si, pathNil)
}

func (a *pathArena) transition(from, to stateItemID, parent int) int {
	return a.add(pathKindTransition, from, to, parent)
}

func (a *pathArena) production(from, to stateItemID, parent int) int {
	return a.add(pathKindProduction, from, to, parent)
}

func (a *pathArena) add(kind pathKind, from, to stateItemID, parent int) int {
	a.nodes = append(a.nodes, &pathNode{
		kind:   kind,
		from:   from,
		to:     to,
		parent: parent,
	})
	return len(a.nodes) - 1
}

func (a *pathArena) get(n int) *pathNode {
	return a.nodes[n]
}

// unwind returns the nodes from the start node to the node n.
func (a *pathArena) unwind(n int) []*pathNode {
	var rev []*pathNode
	for i := n; i != pathNil; i = a.nodes[i].parent {
		rev = append(rev, a.nodes[i])
	}
	path := make([]*pathNode, len(rev))
	for i, node := range rev {
		path[len(rev)-1-i] = node
	}
	return path
}

// fromStateItems links state-items into a path. An item at the beginning of its rule is reached by
// a production step, and any other item by a transition.
func (a *pathArena) fromStateItems(g *stateItemGraph, sis []stateItemID) []*pathNode {
	if len(sis) == 0 {
		return nil
	}
	n := a.start(sis[0])
	for i := 1; i < len(sis); i++ {
		if g.item(sis[i]).beginningOfRule() {
			n = a.production(sis[i-1], sis[i], n)
		} else {
			n = a.transition(sis[i-1], sis[i], n)
		}
	}
	return a.unwind(n)
}
