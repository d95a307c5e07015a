package lexical

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
)

type FSATransition struct {
	From rune
	To   rune
	Next int
}

// FSAState is a state of a ScannerFSA. Accepts holds every token a scanner may accept in the state,
// in declaration order.
type FSAState struct {
	ID          int
	Accepts     []int
	Transitions []*FSATransition
}

// ScannerFSA is a deterministic automaton recognizing all the patterns of a grammar at once. Unlike
// a longest-match scanner, it keeps every token accepted in a state, so that a parser state can
// choose the token it expects.
type ScannerFSA struct {
	Initial int
	States  []*FSAState

	// order[token] is the declaration order of a token.
	order map[int]int
}

// NewScannerFSA builds a ScannerFSA from patterns. The order of patterns is their declaration
// order. States are numbered in breadth-first order from the initial state 0.
func NewScannerFSA(patterns []*Pattern) (*ScannerFSA, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("a scanner needs at least one pattern")
	}

	order := map[int]int{}
	var root regexTree
	for i, pat := range patterns {
		if _, ok := order[pat.Token]; ok {
			return nil, fmt.Errorf("duplicate pattern; token: %v", pat.Token)
		}
		order[pat.Token] = i

		tree, err := parsePattern(pat.Source)
		if err != nil {
			cErr := &CompileError{
				Token: pat.Token,
				Name:  pat.Name,
				Cause: err,
			}
			if pErr, ok := err.(*patternParseError); ok {
				cErr.Cause = pErr.cause
				cErr.Detail = pErr.detail
			}
			return nil, cErr
		}
		tree = newConcatNode(tree, newEndMarkerNode(i))
		if root == nil {
			root = tree
			continue
		}
		root = newAltNode(root, tree)
	}

	leaves := positionLeaves(root)
	follow := genFollowTable(root)

	fsa := &ScannerFSA{
		order: order,
	}
	key2State := map[string]int{}
	var sets []*positionSet

	newState := func(set *positionSet) int {
		id := len(fsa.States)
		key2State[set.key()] = id
		sets = append(sets, set)
		var accepts []int
		for _, pos := range set.set() {
			if i, ok := leaves.endMarkers[pos]; ok {
				accepts = append(accepts, i)
			}
		}
		sort.Ints(accepts)
		for i, o := range accepts {
			accepts[i] = patterns[o].Token
		}
		fsa.States = append(fsa.States, &FSAState{
			ID:      id,
			Accepts: accepts,
		})
		return id
	}

	fsa.Initial = newState(root.first())
	queue := doublylinkedlist.New()
	queue.Add(fsa.Initial)
	for !queue.Empty() {
		v, _ := queue.Get(0)
		queue.Remove(0)
		state := v.(int)

		for _, seg := range splitSegments(sets[state], leaves) {
			next := newPositionSet()
			for _, pos := range sets[state].set() {
				r, ok := leaves.symbols[pos]
				if !ok || r.from > seg.from || r.to < seg.to {
					continue
				}
				if f, ok := follow[pos]; ok {
					next.merge(f)
				}
			}
			if next.isEmpty() {
				continue
			}

			nextState, ok := key2State[next.key()]
			if !ok {
				nextState = newState(next)
				queue.Add(nextState)
			}

			trans := fsa.States[state].Transitions
			if n := len(trans); n > 0 && trans[n-1].Next == nextState && trans[n-1].To+1 == seg.from {
				trans[n-1].To = seg.to
				continue
			}
			fsa.States[state].Transitions = append(trans, &FSATransition{
				From: seg.from,
				To:   seg.to,
				Next: nextState,
			})
		}
	}

	tracer().Debugf("scanner FSA: %v patterns, %v states", len(patterns), len(fsa.States))

	return fsa, nil
}

// splitSegments splits the ranges of the symbol positions of a set into disjoint segments in
// ascending order. Every range of the set covers each segment entirely or not at all.
func splitSegments(set *positionSet, leaves *leafTable) []runeRange {
	bounds := map[rune]struct{}{}
	for _, pos := range set.set() {
		r, ok := leaves.symbols[pos]
		if !ok {
			continue
		}
		bounds[r.from] = struct{}{}
		bounds[r.to+1] = struct{}{}
	}
	if len(bounds) == 0 {
		return nil
	}
	sorted := make([]rune, 0, len(bounds))
	for b := range bounds {
		sorted = append(sorted, b)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	var segs []runeRange
	for i := 0; i+1 < len(sorted); i++ {
		segs = append(segs, runeRange{
			from: sorted[i],
			to:   sorted[i+1] - 1,
		})
	}
	return segs
}

// Step returns the state the FSA moves to from a state on a character.
func (fsa *ScannerFSA) Step(state int, c rune) (int, bool) {
	trans := fsa.States[state].Transitions
	i := sort.Search(len(trans), func(i int) bool {
		return trans[i].To >= c
	})
	if i < len(trans) && trans[i].From <= c {
		return trans[i].Next, true
	}
	return 0, false
}

// Match runs the FSA over s from the initial state and returns the state it stops in.
func (fsa *ScannerFSA) Match(s string) (int, bool) {
	state := fsa.Initial
	for _, c := range s {
		next, ok := fsa.Step(state, c)
		if !ok {
			return 0, false
		}
		state = next
	}
	return state, true
}

// Order returns the declaration order of a token, or -1 when no pattern defines it.
func (fsa *ScannerFSA) Order(token int) int {
	if o, ok := fsa.order[token]; ok {
		return o
	}
	return -1
}

// AcceptingStates returns the states accepting at least one token in ascending order.
func (fsa *ScannerFSA) AcceptingStates() []int {
	var states []int
	for _, s := range fsa.States {
		if len(s.Accepts) > 0 {
			states = append(states, s.ID)
		}
	}
	return states
}
