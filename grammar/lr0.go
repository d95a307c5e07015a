package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/pslrgen/grammar/symbol"
)

type lr0Automaton struct {
	initialState stateNum
	acceptState  stateNum

	// states is indexed by state numbers. A state number is the order in which the state was
	// discovered.
	states       []*lrState
	kernel2State map[kernelID]stateNum

	// predecessors[s][X] lists the states that move to s on X in ascending order.
	predecessors []map[symbol.Symbol][]stateNum
}

func (a *lr0Automaton) goTo(from stateNum, sym symbol.Symbol) (stateNum, bool) {
	return a.states[from].findTransition(sym)
}

// walk follows the symbols from a state and returns the state reached.
func (a *lr0Automaton) walk(from stateNum, syms []symbol.Symbol) (stateNum, bool) {
	s := from
	for _, sym := range syms {
		next, ok := a.goTo(s, sym)
		if !ok {
			return stateNumNil, false
		}
		s = next
	}
	return s, true
}

func genLR0Automaton(prods *productionSet, startSym symbol.Symbol, errSym symbol.Symbol) (*lr0Automaton, error) {
	if !startSym.IsStart() {
		return nil, fmt.Errorf("passed symbold is not a start symbol")
	}

	automaton := &lr0Automaton{
		initialState: stateNumInitial,
		acceptState:  stateNumNil,
		kernel2State: map[kernelID]stateNum{},
	}

	var startProd *production
	uncheckedKernels := []*kernel{}

	// Generate an initial kernel.
	{
		ps, ok := prods.findByLHS(startSym)
		if !ok || len(ps) != 1 {
			return nil, fmt.Errorf("the augmented start symbol must have just one production")
		}
		startProd = ps[0]
		initialItem, err := newLR0Item(startProd, 0)
		if err != nil {
			return nil, err
		}

		k, err := newKernel([]*lrItem{initialItem})
		if err != nil {
			return nil, err
		}

		automaton.kernel2State[k.id] = stateNumInitial
		uncheckedKernels = append(uncheckedKernels, k)
	}

	nextState := stateNumInitial.next()
	for len(uncheckedKernels) > 0 {
		k := uncheckedKernels[0]
		uncheckedKernels = uncheckedKernels[1:]

		state, neighbours, err := genStateAndNeighbourKernels(k, prods, errSym)
		if err != nil {
			return nil, err
		}
		state.num = automaton.kernel2State[k.id]

		for _, n := range neighbours {
			num, known := automaton.kernel2State[n.kernel.id]
			if !known {
				num = nextState
				nextState = nextState.next()
				automaton.kernel2State[n.kernel.id] = num
				uncheckedKernels = append(uncheckedKernels, n.kernel)
			}
			trans := &transition{
				symbol: n.symbol,
				next:   num,
			}
			if n.symbol.IsTerminal() {
				state.shifts = append(state.shifts, trans)
			} else {
				state.goTos = append(state.goTos, trans)
			}
		}

		for _, item := range state.kernel.items {
			if item.prod == startProd && item.reducible {
				automaton.acceptState = state.num
			}
		}

		automaton.states = append(automaton.states, state)
	}

	if automaton.acceptState == stateNumNil {
		return nil, fmt.Errorf("an accept state was not found")
	}

	automaton.predecessors = make([]map[symbol.Symbol][]stateNum, len(automaton.states))
	for i := range automaton.predecessors {
		automaton.predecessors[i] = map[symbol.Symbol][]stateNum{}
	}
	for _, state := range automaton.states {
		for _, trans := range [][]*transition{state.shifts, state.goTos} {
			for _, t := range trans {
				automaton.predecessors[t.next][t.symbol] = append(automaton.predecessors[t.next][t.symbol], state.num)
			}
		}
	}

	tracer().Debugf("LR(0) automaton: %v states", len(automaton.states))

	return automaton, nil
}

func genStateAndNeighbourKernels(k *kernel, prods *productionSet, errSym symbol.Symbol) (*lrState, []*neighbourKernel, error) {
	items, err := genLR0Closure(k, prods)
	if err != nil {
		return nil, nil, err
	}
	neighbours, err := genNeighbourKernels(items)
	if err != nil {
		return nil, nil, err
	}

	var reducible []*production
	isErrorTrapper := false
	for _, item := range items {
		if item.dottedSymbol == errSym {
			isErrorTrapper = true
		}

		if item.reducible {
			reducible = append(reducible, item.prod)
		}
	}
	sort.Slice(reducible, func(i, j int) bool {
		return reducible[i].num < reducible[j].num
	})

	return &lrState{
		kernel:         k,
		items:          items,
		reducible:      reducible,
		isErrorTrapper: isErrorTrapper,
	}, neighbours, nil
}

// genLR0Closure returns the closure of a kernel. Calling it for a kernel made of the closure's own
// kernel items yields the same items.
func genLR0Closure(k *kernel, prods *productionSet) ([]*lrItem, error) {
	items := []*lrItem{}
	knownItems := map[lrItemID]struct{}{}
	uncheckedItems := []*lrItem{}
	for _, item := range k.items {
		items = append(items, item)
		knownItems[item.id] = struct{}{}
		uncheckedItems = append(uncheckedItems, item)
	}
	for len(uncheckedItems) > 0 {
		nextUncheckedItems := []*lrItem{}
		for _, item := range uncheckedItems {
			if !item.dottedSymbol.IsNonTerminal() {
				continue
			}

			ps, _ := prods.findByLHS(item.dottedSymbol)
			for _, prod := range ps {
				item, err := newLR0Item(prod, 0)
				if err != nil {
					return nil, err
				}
				if _, exist := knownItems[item.id]; exist {
					continue
				}
				items = append(items, item)
				knownItems[item.id] = struct{}{}
				nextUncheckedItems = append(nextUncheckedItems, item)
			}
		}
		uncheckedItems = nextUncheckedItems
	}

	return items, nil
}

type neighbourKernel struct {
	symbol symbol.Symbol
	kernel *kernel
}

// genNeighbourKernels returns the kernels reachable from a closure in ascending order of the
// symbols leading to them.
func genNeighbourKernels(items []*lrItem) ([]*neighbourKernel, error) {
	kItemMap := map[symbol.Symbol][]*lrItem{}
	for _, item := range items {
		if item.dottedSymbol.IsNil() {
			continue
		}
		kItem, err := item.advance()
		if err != nil {
			return nil, err
		}
		kItemMap[item.dottedSymbol] = append(kItemMap[item.dottedSymbol], kItem)
	}

	nextSyms := []symbol.Symbol{}
	for sym := range kItemMap {
		nextSyms = append(nextSyms, sym)
	}
	sort.Slice(nextSyms, func(i, j int) bool {
		return nextSyms[i] < nextSyms[j]
	})

	kernels := []*neighbourKernel{}
	for _, sym := range nextSyms {
		k, err := newKernel(kItemMap[sym])
		if err != nil {
			return nil, err
		}
		kernels = append(kernels, &neighbourKernel{
			symbol: sym,
			kernel: k,
		})
	}

	return kernels, nil
}
