package grammar

import (
	"fmt"
	"strconv"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/nihei9/pslrgen/grammar/symbol"
)

const defaultCounterexampleSearchLimit = 100000

// maxShiftPathCandidates bounds the shift paths compared with the reduce derivation.
const maxShiftPathCandidates = 16

type stateItemID int

const stateItemIDNil = stateItemID(-1)

type stateItem struct {
	state stateNum
	item  *lrItem
}

type stateItemKey struct {
	state stateNum
	prod  productionNum
	dot   int
}

// stateItemGraph connects every item of every state. A transition edge moves over the dotted
// symbol, and a production edge moves from an item to the initial items of the dotted non-terminal
// in the same state.
type stateItemGraph struct {
	automaton *lalr1Automaton
	first     *firstSet
	termCount int

	stateItems  []*stateItem
	index       map[stateItemKey]stateItemID
	transitions []stateItemID
	productions [][]stateItemID

	// reverseTransitions[si] lists the state-items that move to si. The symbol is the one right
	// before the dot of si.
	reverseTransitions [][]stateItemID

	// reverseProductions[state][A] lists the items of the state whose dotted symbol is A.
	reverseProductions []map[symbol.Symbol][]stateItemID
}

func newStateItemGraph(automaton *lalr1Automaton, first *firstSet, termCount int) *stateItemGraph {
	g := &stateItemGraph{
		automaton:          automaton,
		first:              first,
		termCount:          termCount,
		index:              map[stateItemKey]stateItemID{},
		reverseProductions: make([]map[symbol.Symbol][]stateItemID, len(automaton.states)),
	}
	for _, state := range automaton.states {
		g.reverseProductions[state.num] = map[symbol.Symbol][]stateItemID{}
		for _, item := range state.items {
			id := stateItemID(len(g.stateItems))
			g.stateItems = append(g.stateItems, &stateItem{
				state: state.num,
				item:  item,
			})
			g.index[stateItemKey{state: state.num, prod: item.prod.num, dot: item.dot}] = id
			if item.dottedSymbol.IsNonTerminal() {
				g.reverseProductions[state.num][item.dottedSymbol] = append(g.reverseProductions[state.num][item.dottedSymbol], id)
			}
		}
	}

	g.transitions = make([]stateItemID, len(g.stateItems))
	g.productions = make([][]stateItemID, len(g.stateItems))
	g.reverseTransitions = make([][]stateItemID, len(g.stateItems))
	for i, si := range g.stateItems {
		id := stateItemID(i)
		g.transitions[id] = stateItemIDNil
		sym := si.item.dottedSymbol
		if sym.IsNil() {
			continue
		}

		next, ok := automaton.goTo(si.state, sym)
		if ok {
			to, ok := g.find(next, si.item.prod.num, si.item.dot+1)
			if ok {
				g.transitions[id] = to
				g.reverseTransitions[to] = append(g.reverseTransitions[to], id)
			}
		}

		if sym.IsNonTerminal() {
			for _, item := range automaton.states[si.state].items {
				if item.dot != 0 || item.prod.lhs != sym {
					continue
				}
				to, _ := g.find(si.state, item.prod.num, 0)
				g.productions[id] = append(g.productions[id], to)
			}
		}
	}

	return g
}

func (g *stateItemGraph) find(state stateNum, prod productionNum, dot int) (stateItemID, bool) {
	id, ok := g.index[stateItemKey{state: state, prod: prod, dot: dot}]
	if !ok {
		return stateItemIDNil, false
	}
	return id, true
}

func (g *stateItemGraph) item(si stateItemID) *lrItem {
	return g.stateItems[si].item
}

func (g *stateItemGraph) state(si stateItemID) stateNum {
	return g.stateItems[si].state
}

// followL returns the precise look-ahead set of the items a production step adds, given the item
// whose dotted symbol they derive and the look-ahead set L of that item.
//
//	A → X1 … Xn-1・Xn        : L
//	A → X1 … Xk・Xk+1 Xk+2 … : {Xk+2} when Xk+2 is a terminal
//	                           FIRST(Xk+2) when Xk+2 is not nullable
//	                           FIRST(Xk+2) ∪ followL(A → X1 … Xk+1・Xk+2 …) otherwise
func (g *stateItemGraph) followL(prod *production, dot int, l bitSet) bitSet {
	if prod.rhsLen-dot <= 1 {
		return l
	}
	next := prod.rhs[dot+1]
	if next.IsTerminal() {
		s := newBitSet(g.termCount)
		s.add(next.Num().Int())
		return s
	}
	f := g.firstBits(next)
	if !g.first.isNullable(next) {
		return f
	}
	f.union(g.followL(prod, dot+1, l))
	return f
}

func (g *stateItemGraph) firstBits(sym symbol.Symbol) bitSet {
	s := newBitSet(g.termCount)
	for t := range g.first.firstOf(sym).symbols {
		s.add(t.Num().Int())
	}
	return s
}

// counterexampleSearch finds the paths of one conflict. Every search shares the limit on the
// number of nodes it expands.
type counterexampleSearch struct {
	graph *stateItemGraph
	arena *pathArena
	limit int
	steps int
}

func newCounterexampleSearch(g *stateItemGraph, limit int) *counterexampleSearch {
	if limit <= 0 {
		limit = defaultCounterexampleSearchLimit
	}
	return &counterexampleSearch{
		graph: g,
		arena: newPathArena(),
		limit: limit,
	}
}

func (s *counterexampleSearch) exhausted() bool {
	s.steps++
	return s.steps > s.limit
}

type triple struct {
	si   stateItemID
	l    bitSet
	path int
}

// shortestPath finds the shortest path from the start item to the reduce item in the conflict
// state with the conflict symbol in its look-ahead set. The search tracks the precise look-ahead
// set of each item along the way.
func (s *counterexampleSearch) shortestPath(conflictState stateNum, reduceItem *lrItem, conflictSym symbol.Symbol) []*pathNode {
	g := s.graph
	start, ok := g.find(g.automaton.initialState, productionNumStart, 0)
	if !ok {
		return nil
	}
	target, ok := g.find(conflictState, reduceItem.prod.num, reduceItem.dot)
	if !ok {
		return nil
	}

	eof := newBitSet(g.termCount)
	eof.add(symbol.SymbolEOF.Num().Int())

	visited := map[string]struct{}{}
	queue := doublylinkedlist.New()
	queue.Add(&triple{
		si:   start,
		l:    eof,
		path: s.arena.start(start),
	})
	for !queue.Empty() {
		v, _ := queue.Get(0)
		queue.Remove(0)
		t := v.(*triple)

		key := strconv.Itoa(int(t.si)) + ":" + t.l.key()
		if _, ok := visited[key]; ok {
			continue
		}
		visited[key] = struct{}{}

		if s.exhausted() {
			tracer().Debugf("counterexample: the search limit was exceeded; state: %v", conflictState)
			return nil
		}

		if t.si == target && t.l.has(conflictSym.Num().Int()) {
			return s.arena.unwind(t.path)
		}

		if next := g.transitions[t.si]; next != stateItemIDNil {
			queue.Add(&triple{
				si:   next,
				l:    t.l,
				path: s.arena.transition(t.si, next, t.path),
			})
		}

		prods := g.productions[t.si]
		if len(prods) > 0 {
			item := g.item(t.si)
			l := g.followL(item.prod, item.dot, t.l)
			for _, next := range prods {
				queue.Add(&triple{
					si:   next,
					l:    l,
					path: s.arena.production(t.si, next, t.path),
				})
			}
		}
	}

	return nil
}

// transitionStates lists the states a path passes through: the state of its start and the state
// each transition enters.
func transitionStates(g *stateItemGraph, path []*pathNode) []stateNum {
	var states []stateNum
	for _, p := range path {
		if p.kind == pathKindProduction {
			continue
		}
		states = append(states, g.state(p.to))
	}
	return states
}

// shiftStep is a node of the backward search for shift paths. next points toward the shift item.
type shiftStep struct {
	si    stateItemID
	index int
	next  *shiftStep
}

func (st *shiftStep) visits(si stateItemID, index int) bool {
	for s := st; s != nil; s = s.next {
		if s.si == si && s.index == index {
			return true
		}
	}
	return false
}

func (st *shiftStep) stateItems() []stateItemID {
	var sis []stateItemID
	for s := st; s != nil; s = s.next {
		sis = append(sis, s.si)
	}
	return sis
}

// shiftPaths finds paths from the start item to the shift item of a shift/reduce conflict that
// enter the same states as the reduce path, so every path shares the prefix of the reduce path.
// It walks back from the shift item breadth-first and returns at most maxPaths paths, shortest first.
func (s *counterexampleSearch) shiftPaths(reducePath []*pathNode, conflictState stateNum, shiftItem *lrItem, maxPaths int) [][]*pathNode {
	g := s.graph
	target, ok := g.find(conflictState, shiftItem.prod.num, shiftItem.dot)
	if !ok {
		return nil
	}
	states := transitionStates(g, reducePath)
	if len(states) == 0 || states[len(states)-1] != conflictState {
		return nil
	}

	var paths [][]*pathNode
	queue := doublylinkedlist.New()
	queue.Add(&shiftStep{
		si:    target,
		index: len(states) - 1,
	})
	for !queue.Empty() && len(paths) < maxPaths {
		v, _ := queue.Get(0)
		queue.Remove(0)
		step := v.(*shiftStep)

		if s.exhausted() {
			tracer().Debugf("counterexample: the search limit was exceeded; state: %v", conflictState)
			break
		}

		item := g.item(step.si)
		if item.initial {
			if step.index == 0 {
				paths = append(paths, s.arena.fromStateItems(g, step.stateItems()))
			}
			continue
		}

		if item.beginningOfRule() {
			for _, prev := range g.reverseProductions[states[step.index]][item.prod.lhs] {
				if step.visits(prev, step.index) {
					continue
				}
				queue.Add(&shiftStep{
					si:    prev,
					index: step.index,
					next:  step,
				})
			}
			continue
		}

		if step.index == 0 {
			continue
		}
		for _, prev := range g.reverseTransitions[step.si] {
			if g.state(prev) != states[step.index-1] {
				continue
			}
			queue.Add(&shiftStep{
				si:    prev,
				index: step.index - 1,
				next:  step,
			})
		}
	}
	return paths
}

func appendStateItem(sis []stateItemID, si stateItemID) []stateItemID {
	r := make([]stateItemID, len(sis), len(sis)+1)
	copy(r, sis)
	return append(r, si)
}

// findDerivationForSymbol finds the shortest chain of production steps and nullable transitions from
// a state-item to an item whose dotted symbol is sym.
func (s *counterexampleSearch) findDerivationForSymbol(from stateItemID, sym symbol.Symbol) *derivation {
	g := s.graph
	if from == stateItemIDNil {
		return nil
	}

	queue := doublylinkedlist.New()
	queue.Add([]stateItemID{from})
	for !queue.Empty() {
		v, _ := queue.Get(0)
		queue.Remove(0)
		sis := v.([]stateItemID)
		si := sis[len(sis)-1]

		if s.exhausted() {
			return nil
		}

		next := g.item(si).dottedSymbol
		if next == sym {
			var d *derivation
			for k := len(sis) - 1; k >= 0; k-- {
				d = newDerivation(g.item(sis[k]), d)
			}
			return d
		}

		if !next.IsNonTerminal() || !g.first.firstOf(next).contains(sym) {
			continue
		}
		for _, p := range g.productions[si] {
			if g.item(p).prod.isEmpty() || containsStateItem(sis, p) {
				continue
			}
			queue.Add(appendStateItem(sis, p))
		}
		if g.first.isNullable(next) {
			t := g.transitions[si]
			if t != stateItemIDNil && !containsStateItem(sis, t) {
				queue.Add(appendStateItem(sis, t))
			}
		}
	}
	return nil
}

func containsStateItem(sis []stateItemID, si stateItemID) bool {
	for _, e := range sis {
		if e == si {
			return true
		}
	}
	return false
}

// derivations rebuilds the derivation tree of a path. It walks the path from its end and creates a
// node for each item that expands the node created before. When the path ends with a reducible item,
// the first node whose next-but-one symbol can begin with the conflict symbol gets a right branch
// deriving that symbol.
func (s *counterexampleSearch) derivations(path []*pathNode, conflictSym symbol.Symbol) *derivation {
	g := s.graph
	if len(path) == 0 {
		return nil
	}

	lookAhead := symbol.SymbolNil
	if g.item(path[len(path)-1].to).reducible {
		lookAhead = conflictSym
	}

	var d *derivation
	expanding := true
	for k := len(path) - 1; k >= 0; k-- {
		p := path[k]
		item := g.item(p.to)

		if !expanding {
			if p.kind == pathKindStart {
				d = newDerivation(item, d)
				break
			}
			expanding = p.kind == pathKindProduction
			continue
		}

		d = newDerivation(item, d)
		expanding = p.kind == pathKindProduction

		nn := item.nextNextSymbol()
		if !lookAhead.IsNil() && !nn.IsNil() && g.first.firstOf(nn).contains(lookAhead) {
			d.right = s.findDerivationForSymbol(g.transitions[p.to], lookAhead)
			lookAhead = symbol.SymbolNil
		}

		if p.kind == pathKindStart {
			break
		}
	}
	return d
}

type counterexampleKind string

const (
	counterexampleKindSR = counterexampleKind("shift/reduce")
	counterexampleKindRR = counterexampleKind("reduce/reduce")
)

type counterexample struct {
	kind          counterexampleKind
	state         stateNum
	sym           symbol.Symbol
	label1        string
	derivation1   *derivation
	label2        string
	derivation2   *derivation
	conflictItems []*lrItem
}

type counterexampleGenerator struct {
	graph *stateItemGraph
	limit int
}

func newCounterexampleGenerator(automaton *lalr1Automaton, first *firstSet, termCount int, limit int) *counterexampleGenerator {
	return &counterexampleGenerator{
		graph: newStateItemGraph(automaton, first, termCount),
		limit: limit,
	}
}

func (gen *counterexampleGenerator) shiftReduceExample(c *shiftReduceConflict) (*counterexample, error) {
	state := gen.graph.automaton.states[c.state]
	sym := c.syms[0]

	var shiftItem *lrItem
	for _, item := range state.items {
		if item.dottedSymbol == sym {
			shiftItem = item
			break
		}
	}
	if shiftItem == nil {
		return nil, fmt.Errorf("an item to shift was not found; state: %v, symbol: %v", c.state, sym)
	}
	prod, ok := findReducible(state, c.prodNum)
	if !ok {
		return nil, fmt.Errorf("a reducible item was not found; state: %v, production: %v", c.state, c.prodNum)
	}
	reduceItem, ok := state.findItem(prod, prod.rhsLen)
	if !ok {
		return nil, fmt.Errorf("a reducible item was not found; state: %v, production: %v", c.state, c.prodNum)
	}

	s := newCounterexampleSearch(gen.graph, gen.limit)
	reducePath := s.shortestPath(c.state, reduceItem, sym)
	if reducePath == nil {
		tracer().Debugf("counterexample: no reduce path; state: %v, symbol: %v", c.state, sym)
		return nil, nil
	}
	shiftPaths := s.shiftPaths(reducePath, c.state, shiftItem, maxShiftPathCandidates)
	if len(shiftPaths) == 0 {
		tracer().Debugf("counterexample: no shift path; state: %v, symbol: %v", c.state, sym)
		return nil, nil
	}

	// Prefer a shift derivation deriving the same sentence as the reduce derivation.
	reduceDerivation := s.derivations(reducePath, sym)
	var shiftDerivation *derivation
	for _, p := range shiftPaths {
		d := s.derivations(p, sym)
		if shiftDerivation == nil {
			shiftDerivation = d
		}
		if unifyDerivations(d, reduceDerivation, gen.graph.first) {
			shiftDerivation = d
			break
		}
	}

	return &counterexample{
		kind:          counterexampleKindSR,
		state:         c.state,
		sym:           sym,
		label1:        "Shift derivation",
		derivation1:   shiftDerivation,
		label2:        "Reduce derivation",
		derivation2:   reduceDerivation,
		conflictItems: []*lrItem{shiftItem, reduceItem},
	}, nil
}

func (gen *counterexampleGenerator) reduceReduceExample(c *reduceReduceConflict) (*counterexample, error) {
	state := gen.graph.automaton.states[c.state]
	sym := c.syms[0]

	var items []*lrItem
	for _, num := range []productionNum{c.prodNum1, c.prodNum2} {
		prod, ok := findReducible(state, num)
		if !ok {
			return nil, fmt.Errorf("a reducible item was not found; state: %v, production: %v", c.state, num)
		}
		item, ok := state.findItem(prod, prod.rhsLen)
		if !ok {
			return nil, fmt.Errorf("a reducible item was not found; state: %v, production: %v", c.state, num)
		}
		items = append(items, item)
	}

	s := newCounterexampleSearch(gen.graph, gen.limit)
	path1 := s.shortestPath(c.state, items[0], sym)
	path2 := s.shortestPath(c.state, items[1], sym)
	if path1 == nil || path2 == nil {
		tracer().Debugf("counterexample: no reduce path; state: %v, symbol: %v", c.state, sym)
		return nil, nil
	}

	d1 := s.derivations(path1, sym)
	d2 := s.derivations(path2, sym)
	unifyDerivations(d1, d2, gen.graph.first)

	return &counterexample{
		kind:          counterexampleKindRR,
		state:         c.state,
		sym:           sym,
		label1:        "First Reduce derivation",
		derivation1:   d1,
		label2:        "Second Reduce derivation",
		derivation2:   d2,
		conflictItems: items,
	}, nil
}

func findReducible(state *lrState, num productionNum) (*production, bool) {
	for _, prod := range state.reducible {
		if prod.num == num {
			return prod, true
		}
	}
	return nil, false
}
