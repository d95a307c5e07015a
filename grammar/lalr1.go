package grammar

import (
	"fmt"

	"github.com/nihei9/pslrgen/grammar/symbol"
)

// gotoTransition is a transition on a non-terminal symbol. The relation solver computes one
// follow set per goto transition.
type gotoTransition struct {
	from   stateNum
	symbol symbol.Symbol
	to     stateNum
}

// lalr1Automaton annotates an LR(0) automaton with LALR(1) look-ahead sets computed by the
// DeRemer-Pennello method.
//
//	DR(p, A)       = { t | goto(p, A) shifts t }
//	(p, A) reads (r, C)        iff r = goto(p, A) and C is nullable
//	(p, A) includes (p', B)    iff B → β A γ, γ is nullable, and p' --β--> p
//	(q, B → ω) lookback (p', B) iff p' --ω--> q
//	Read   = digraph(reads, DR)
//	Follow = digraph(includes, Read)
//	LA(q, B → ω) = ⋃{ Follow(p', B) | (q, B → ω) lookback (p', B) }
type lalr1Automaton struct {
	*lr0Automaton

	termCount int

	gotoTrans []*gotoTransition
	gotoIndex []map[symbol.Symbol]int

	directReads []bitSet
	reads       [][]int
	readSets    []bitSet
	includes    [][]int
	follows     []bitSet

	// lookAheads and lookbacks are indexed by state number and keyed by production number.
	lookAheads []map[productionNum]bitSet
	lookbacks  []map[productionNum][]int
}

func genLALR1Automaton(lr0 *lr0Automaton, prods *productionSet, first *firstSet, termCount int) (*lalr1Automaton, error) {
	a := &lalr1Automaton{
		lr0Automaton: lr0,
		termCount:    termCount,
	}

	a.genGotoTransitions()
	a.genDirectReads()
	a.genReads(first)

	var sccs int
	a.readSets, sccs = digraph(a.reads, a.directReads)
	tracer().Debugf("relation solver: reads solved; %v transitions, %v cyclic components", len(a.gotoTrans), sccs)

	err := a.genIncludesAndLookbacks(prods, first)
	if err != nil {
		return nil, err
	}

	a.follows, sccs = digraph(a.includes, a.readSets)
	tracer().Debugf("relation solver: includes solved; %v cyclic components", sccs)

	a.genLookAheads()

	return a, nil
}

func (a *lalr1Automaton) genGotoTransitions() {
	a.gotoIndex = make([]map[symbol.Symbol]int, len(a.states))
	for _, state := range a.states {
		a.gotoIndex[state.num] = map[symbol.Symbol]int{}
		for _, t := range state.goTos {
			a.gotoIndex[state.num][t.symbol] = len(a.gotoTrans)
			a.gotoTrans = append(a.gotoTrans, &gotoTransition{
				from:   state.num,
				symbol: t.symbol,
				to:     t.next,
			})
		}
	}
}

func (a *lalr1Automaton) findGotoTransition(from stateNum, sym symbol.Symbol) (int, bool) {
	i, ok := a.gotoIndex[from][sym]
	return i, ok
}

func (a *lalr1Automaton) genDirectReads() {
	a.directReads = make([]bitSet, len(a.gotoTrans))
	for i, g := range a.gotoTrans {
		dr := newBitSet(a.termCount)
		for _, t := range a.states[g.to].shifts {
			dr.add(t.symbol.Num().Int())
		}
		a.directReads[i] = dr
	}
}

func (a *lalr1Automaton) genReads(first *firstSet) {
	a.reads = make([][]int, len(a.gotoTrans))
	for i, g := range a.gotoTrans {
		for _, t := range a.states[g.to].goTos {
			if !first.isNullable(t.symbol) {
				continue
			}
			j, _ := a.findGotoTransition(g.to, t.symbol)
			a.reads[i] = append(a.reads[i], j)
		}
	}
}

func (a *lalr1Automaton) genIncludesAndLookbacks(prods *productionSet, first *firstSet) error {
	a.includes = make([][]int, len(a.gotoTrans))
	a.lookbacks = make([]map[productionNum][]int, len(a.states))
	for i := range a.lookbacks {
		a.lookbacks[i] = map[productionNum][]int{}
	}

	includes := make([]map[int]struct{}, len(a.gotoTrans))
	for j, g := range a.gotoTrans {
		ps, _ := prods.findByLHS(g.symbol)
		for _, prod := range ps {
			s := g.from
			for k, sym := range prod.rhs {
				if sym.IsNonTerminal() && first.isNullableSequence(prod.rhs[k+1:]) {
					i, ok := a.findGotoTransition(s, sym)
					if !ok {
						return fmt.Errorf("a goto transition was not found; state: %v, symbol: %v", s, sym)
					}
					if includes[i] == nil {
						includes[i] = map[int]struct{}{}
					}
					if _, ok := includes[i][j]; !ok {
						includes[i][j] = struct{}{}
						a.includes[i] = append(a.includes[i], j)
					}
				}

				next, ok := a.goTo(s, sym)
				if !ok {
					return fmt.Errorf("a transition was not found; state: %v, symbol: %v", s, sym)
				}
				s = next
			}
			a.lookbacks[s][prod.num] = append(a.lookbacks[s][prod.num], j)
		}
	}

	return nil
}

func (a *lalr1Automaton) genLookAheads() {
	a.lookAheads = make([]map[productionNum]bitSet, len(a.states))
	for _, state := range a.states {
		a.lookAheads[state.num] = map[productionNum]bitSet{}
		for _, prod := range state.reducible {
			la := newBitSet(a.termCount)
			for _, j := range a.lookbacks[state.num][prod.num] {
				la.union(a.follows[j])
			}
			a.lookAheads[state.num][prod.num] = la
		}
	}
}

func (a *lalr1Automaton) lookAhead(state stateNum, prod productionNum) bitSet {
	if la, ok := a.lookAheads[state][prod]; ok {
		return la
	}
	return newBitSet(a.termCount)
}

// lookAheadOrigins returns the look-ahead set contributed by each source state of the lookback
// transitions of a reduction, keyed by source state number.
func (a *lalr1Automaton) lookAheadOrigins(state stateNum, prod productionNum) map[stateNum]bitSet {
	origins := map[stateNum]bitSet{}
	for _, j := range a.lookbacks[state][prod] {
		g := a.gotoTrans[j]
		la, ok := origins[g.from]
		if !ok {
			la = newBitSet(a.termCount)
			origins[g.from] = la
		}
		la.union(a.follows[j])
	}
	return origins
}
