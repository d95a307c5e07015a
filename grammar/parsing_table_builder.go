package grammar

import (
	"fmt"

	"github.com/nihei9/pslrgen/grammar/symbol"
)

type lrTableBuilder struct {
	automaton    *lalr1Automaton
	prods        *productionSet
	termCount    int
	nonTermCount int
	symTab       *symbol.SymbolTableReader
	precAndAssoc *precAndAssoc

	// lookAheads holds the look-ahead sets left after precedence resolution, indexed by state
	// number and keyed by production number.
	lookAheads []map[productionNum]bitSet
}

func (b *lrTableBuilder) build() (*ParsingTable, error) {
	var ptab *ParsingTable
	{
		initialState := b.automaton.states[b.automaton.initialState]
		ptab = &ParsingTable{
			actionTable:        make([]actionEntry, len(b.automaton.states)*b.termCount),
			goToTable:          make([]goToEntry, len(b.automaton.states)*b.nonTermCount),
			stateCount:         len(b.automaton.states),
			terminalCount:      b.termCount,
			nonTerminalCount:   b.nonTermCount,
			errorTrapperStates: make([]int, len(b.automaton.states)),
			defaultReductions:  make([]productionNum, len(b.automaton.states)),
			explicitErrors:     map[stateNum][]symbol.Symbol{},
			InitialState:       initialState.num,
			AcceptState:        b.automaton.acceptState,
		}
	}

	b.lookAheads = make([]map[productionNum]bitSet, len(b.automaton.states))
	for _, state := range b.automaton.states {
		if state.isErrorTrapper {
			ptab.errorTrapperStates[state.num] = 1
		}

		shiftSet := newBitSet(b.termCount)
		for _, t := range state.shifts {
			shiftSet.add(t.symbol.Num().Int())
		}

		las := map[productionNum]bitSet{}
		for _, prod := range state.reducible {
			las[prod.num] = b.automaton.lookAhead(state.num, prod.num).clone()
		}
		b.lookAheads[state.num] = las

		err := b.resolveConflictsByPrecedence(ptab, state, shiftSet, las)
		if err != nil {
			return nil, err
		}
		b.detectConflicts(ptab, state, shiftSet, las)

		for _, t := range state.shifts {
			if !shiftSet.has(t.symbol.Num().Int()) {
				continue
			}
			ptab.writeAction(state.num.Int(), t.symbol.Num().Int(), newShiftActionEntry(t.next))
		}
		for _, t := range state.goTos {
			ptab.writeGoTo(state.num, t.symbol, t.next)
		}
		for _, prod := range state.reducible {
			for _, a := range las[prod.num].elems() {
				b.writeReduceAction(ptab, state.num, a, prod.num)
			}
		}

		if len(state.shifts) == 0 && len(state.reducible) == 1 && len(ptab.explicitErrors[state.num]) == 0 {
			ptab.defaultReductions[state.num] = state.reducible[0].num
		}
	}

	tracer().Debugf("conflict resolver: %v resolved, %v shift/reduce, %v reduce/reduce", len(ptab.resolved), ptab.srConflictCount, ptab.rrConflictCount)

	return ptab, nil
}

// writeReduceAction writes a reduce action to the parsing table. A shift action written earlier
// stays because unresolved shift/reduce conflicts adopt the shift action. Among reduce actions, the
// production declared first stays because productions are written in ascending order.
func (b *lrTableBuilder) writeReduceAction(tab *ParsingTable, state stateNum, sym int, prod productionNum) {
	act := tab.readAction(state.Int(), sym)
	if !act.isEmpty() {
		return
	}
	tab.writeAction(state.Int(), sym, newReduceActionEntry(prod))
}

// resolveConflictsByPrecedence resolves the shift/reduce conflicts of a state the way bison does.
// The reduce side needs the precedence of its production, and the shift side needs the precedence
// of the token. A resolution removes the losing action from shiftSet or from the look-ahead set.
func (b *lrTableBuilder) resolveConflictsByPrecedence(tab *ParsingTable, state *lrState, shiftSet bitSet, las map[productionNum]bitSet) error {
	for _, prod := range state.reducible {
		prodPrec := b.precAndAssoc.productionPredence(prod.num)
		if prodPrec == precNil {
			continue
		}

		la := las[prod.num]
		for _, a := range la.intersection(shiftSet).elems() {
			term := symbol.SymbolNum(a)
			termPrec := b.precAndAssoc.terminalPrecedence(term)
			if termPrec == precNil {
				continue
			}

			sym := b.terminalSymbol(a)
			rc := &resolvedConflict{
				state:   state.num,
				sym:     sym,
				prodNum: prod.num,
			}
			switch {
			case termPrec < prodPrec:
				rc.which = ActionTypeReduce
				shiftSet.remove(a)
			case termPrec > prodPrec:
				rc.which = ActionTypeShift
				la.remove(a)
			default:
				rc.samePrec = true
				switch assoc := b.precAndAssoc.terminalAssociativity(term); assoc {
				case assocTypeRight:
					rc.which = ActionTypeShift
					la.remove(a)
				case assocTypeLeft:
					rc.which = ActionTypeReduce
					shiftSet.remove(a)
				case assocTypeNonAssoc:
					rc.which = ActionTypeError
					shiftSet.remove(a)
					la.remove(a)
					tab.explicitErrors[state.num] = append(tab.explicitErrors[state.num], sym)
				case assocTypePrecedence:
					// The token has precedence only, so the conflict remains.
					continue
				default:
					return fmt.Errorf("unknown associativity; state: %v, symbol: %v, associativity: %v", state.num, b.symTab.DisplayName(sym), assoc)
				}
			}
			rc.message = b.resolutionMessage(rc)
			tab.resolved = append(tab.resolved, rc)

			tracer().Debugf("state %v: %v", state.num, rc.message)
		}
	}
	return nil
}

func (b *lrTableBuilder) resolutionMessage(rc *resolvedConflict) string {
	t := b.symTab.DisplayName(rc.sym)
	r := b.symTab.DisplayName(b.precAndAssoc.productionPrecedenceSymbol(rc.prodNum))
	switch {
	case rc.which == ActionTypeShift && !rc.samePrec:
		return fmt.Sprintf("Conflict between rule %v and token %v resolved as shift (%v < %v).", rc.prodNum, t, r, t)
	case rc.which == ActionTypeShift:
		return fmt.Sprintf("Conflict between rule %v and token %v resolved as shift (%%right %v).", rc.prodNum, t, t)
	case rc.which == ActionTypeReduce && !rc.samePrec:
		return fmt.Sprintf("Conflict between rule %v and token %v resolved as reduce (%v < %v).", rc.prodNum, t, t, r)
	case rc.which == ActionTypeReduce:
		return fmt.Sprintf("Conflict between rule %v and token %v resolved as reduce (%%left %v).", rc.prodNum, t, t)
	default:
		return fmt.Sprintf("Conflict between rule %v and token %v resolved as an error (%%nonassoc %v).", rc.prodNum, t, t)
	}
}

func (b *lrTableBuilder) detectConflicts(tab *ParsingTable, state *lrState, shiftSet bitSet, las map[productionNum]bitSet) {
	union := newBitSet(b.termCount)
	for _, prod := range state.reducible {
		la := las[prod.num]
		syms := la.intersection(shiftSet)
		if !syms.isEmpty() {
			tab.srConflicts = append(tab.srConflicts, &shiftReduceConflict{
				state:   state.num,
				syms:    b.terminalSymbols(syms),
				prodNum: prod.num,
			})
		}
		union.union(la)
	}
	tab.srConflictCount += union.intersection(shiftSet).count()

	for i, prod1 := range state.reducible {
		for _, prod2 := range state.reducible[i+1:] {
			syms := las[prod1.num].intersection(las[prod2.num])
			if syms.isEmpty() {
				continue
			}
			tab.rrConflicts = append(tab.rrConflicts, &reduceReduceConflict{
				state:    state.num,
				syms:     b.terminalSymbols(syms),
				prodNum1: prod1.num,
				prodNum2: prod2.num,
			})
		}
	}
	for _, a := range union.elems() {
		n := 0
		for _, prod := range state.reducible {
			if las[prod.num].has(a) {
				n++
			}
		}
		if n > 1 {
			tab.rrConflictCount += n - 1
		}
	}
}

func (b *lrTableBuilder) terminalSymbol(num int) symbol.Symbol {
	// Terminal symbols have the kind bit cleared, so the number is the symbol itself.
	return symbol.Symbol(num)
}

func (b *lrTableBuilder) terminalSymbols(set bitSet) []symbol.Symbol {
	elems := set.elems()
	syms := make([]symbol.Symbol, len(elems))
	for i, a := range elems {
		syms[i] = b.terminalSymbol(a)
	}
	return syms
}

// effectiveLookAhead returns the look-ahead set of a reduction left after precedence resolution.
func (b *lrTableBuilder) effectiveLookAhead(state stateNum, prod productionNum) bitSet {
	if la, ok := b.lookAheads[state][prod]; ok {
		return la
	}
	return newBitSet(b.termCount)
}
