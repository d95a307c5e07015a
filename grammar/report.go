package grammar

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/nihei9/pslrgen/grammar/symbol"
	spec "github.com/nihei9/pslrgen/spec/grammar"
)

func (b *lrTableBuilder) genReport(tab *ParsingTable, gram *Grammar, first *firstSet, config *compileConfig) (*spec.Report, error) {
	patterns := map[int]string{}
	for _, p := range gram.patterns {
		patterns[p.Token] = p.Source
	}

	var terms []*spec.Terminal
	{
		termSyms := b.symTab.TerminalSymbols()
		terms = make([]*spec.Terminal, len(termSyms)+1)
		for _, sym := range termSyms {
			name, ok := b.symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate terminals: symbol not found: %v", sym)
			}
			terms[sym.Num()] = &spec.Terminal{
				Number:        sym.Num().Int(),
				ID:            b.symTab.ID(sym),
				Name:          name,
				Alias:         b.symTab.Alias(sym),
				Tag:           b.symTab.Tag(sym),
				Pattern:       patterns[sym.Num().Int()],
				Precedence:    b.precAndAssoc.terminalPrecedence(sym.Num()),
				Associativity: b.precAndAssoc.terminalAssociativity(sym.Num()).String(),
			}
		}
	}

	var nonTerms []*spec.NonTerminal
	{
		nonTermSyms := b.symTab.NonTerminalSymbols()
		nonTerms = make([]*spec.NonTerminal, len(nonTermSyms)+1)
		for _, sym := range nonTermSyms {
			name, ok := b.symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate non-terminals: symbol not found: %v", sym)
			}

			fst := treeset.NewWithIntComparator()
			for t := range first.firstOf(sym).symbols {
				fst.Add(t.Num().Int())
			}
			firstNums := make([]int, 0, fst.Size())
			for _, v := range fst.Values() {
				firstNums = append(firstNums, v.(int))
			}

			nonTerms[sym.Num()] = &spec.NonTerminal{
				Number:   sym.Num().Int(),
				ID:       b.symTab.ID(sym),
				Name:     name,
				Tag:      b.symTab.Tag(sym),
				Nullable: first.isNullable(sym),
				First:    firstNums,
			}
		}
	}

	var prods []*spec.Production
	{
		ps := gram.productionSet.getAllProductions()
		prods = make([]*spec.Production, len(ps)+1)
		for _, p := range ps {
			rhs := make([]int, len(p.rhs))
			for i, e := range p.rhs {
				if e.IsTerminal() {
					rhs[i] = e.Num().Int()
				} else {
					rhs[i] = e.Num().Int() * -1
				}
			}

			prods[p.num.Int()] = &spec.Production{
				Number:        p.num.Int(),
				LHS:           p.lhs.Num().Int(),
				RHS:           rhs,
				Precedence:    b.precAndAssoc.productionPredence(p.num),
				Associativity: b.precAndAssoc.productionAssociativity(p.num).String(),
				Action:        gram.actions[p.num],
			}
		}
	}

	var cexGen *counterexampleGenerator
	if config.isCounterexamplesEnabled {
		cexGen = newCounterexampleGenerator(b.automaton, first, b.termCount, config.cexLimit)
	}

	var states []*spec.State
	{
		srConflicts := map[stateNum][]*shiftReduceConflict{}
		for _, c := range tab.srConflicts {
			srConflicts[c.state] = append(srConflicts[c.state], c)
		}
		rrConflicts := map[stateNum][]*reduceReduceConflict{}
		for _, c := range tab.rrConflicts {
			rrConflicts[c.state] = append(rrConflicts[c.state], c)
		}
		resolved := map[stateNum][]*resolvedConflict{}
		for _, c := range tab.resolved {
			resolved[c.state] = append(resolved[c.state], c)
		}

		states = make([]*spec.State, len(b.automaton.states))
		for _, s := range b.automaton.states {
			kernel := make([]*spec.Item, len(s.kernel.items))
			for i, item := range s.kernel.items {
				kernel[i] = specItem(item)
			}
			var closure []*spec.Item
			for _, item := range s.items {
				if item.kernel {
					continue
				}
				closure = append(closure, specItem(item))
			}

			shifts, las := tab.stateActions(s.num)
			var shift []*spec.Transition
			for _, t := range shifts {
				_, next, _ := tab.getAction(s.num, symbol.SymbolNum(t))
				shift = append(shift, &spec.Transition{
					Symbol: t,
					State:  next.Int(),
				})
			}

			var reduce []*spec.Reduce
			for _, prod := range s.reducible {
				la, ok := las[prod.num]
				isDefault := tab.defaultReductions[s.num] == prod.num
				if !ok && !isDefault {
					continue
				}
				reduce = append(reduce, &spec.Reduce{
					LookAhead:  la.elems(),
					Production: prod.num.Int(),
					Default:    isDefault,
				})
			}

			var goTo []*spec.Transition
			for _, t := range s.goTos {
				goTo = append(goTo, &spec.Transition{
					Symbol: t.symbol.Num().Int(),
					State:  t.next.Int(),
				})
			}

			errs := symbolNums(tab.explicitErrors[s.num])
			sort.Ints(errs)

			sr := []*spec.SRConflict{}
			for _, c := range srConflicts[s.num] {
				sr = append(sr, &spec.SRConflict{
					Symbols:    symbolNums(c.syms),
					Production: c.prodNum.Int(),
				})
			}
			rr := []*spec.RRConflict{}
			for _, c := range rrConflicts[s.num] {
				rr = append(rr, &spec.RRConflict{
					Symbols:           symbolNums(c.syms),
					Production1:       c.prodNum1.Int(),
					Production2:       c.prodNum2.Int(),
					AdoptedProduction: c.prodNum1.Int(),
				})
			}
			rc := []*spec.ResolvedConflict{}
			for _, c := range resolved[s.num] {
				rc = append(rc, &spec.ResolvedConflict{
					Symbol:         c.sym.Num().Int(),
					Production:     c.prodNum.Int(),
					Which:          string(c.which),
					SamePrecedence: c.samePrec,
					Message:        c.message,
				})
			}

			var cexs []*spec.Counterexample
			if cexGen != nil {
				for _, c := range srConflicts[s.num] {
					ex, err := cexGen.shiftReduceExample(c)
					if err != nil {
						return nil, err
					}
					if ex != nil {
						cexs = append(cexs, b.specCounterexample(ex))
					}
				}
				for _, c := range rrConflicts[s.num] {
					ex, err := cexGen.reduceReduceExample(c)
					if err != nil {
						return nil, err
					}
					if ex != nil {
						cexs = append(cexs, b.specCounterexample(ex))
					}
				}
			}

			states[s.num] = &spec.State{
				Number:           s.num.Int(),
				Kernel:           kernel,
				Closure:          closure,
				Shift:            shift,
				Reduce:           reduce,
				GoTo:             goTo,
				Errors:           errs,
				SRConflict:       sr,
				RRConflict:       rr,
				ResolvedConflict: rc,
				Counterexamples:  cexs,
			}
		}
	}

	return &spec.Report{
		Name:         gram.name,
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
		Summary: &spec.ConflictSummary{
			SRConflictCount: tab.srConflictCount,
			RRConflictCount: tab.rrConflictCount,
			ExpectedSR:      gram.expectSR,
			ExpectedRR:      gram.expectRR,
		},
	}, nil
}

func specItem(item *lrItem) *spec.Item {
	return &spec.Item{
		Production: item.prod.num.Int(),
		Dot:        item.dot,
	}
}

func (b *lrTableBuilder) specCounterexample(ex *counterexample) *spec.Counterexample {
	items := make([]*spec.Item, len(ex.conflictItems))
	for i, item := range ex.conflictItems {
		items[i] = specItem(item)
	}
	return &spec.Counterexample{
		Kind:         string(ex.kind),
		Symbol:       ex.sym.Num().Int(),
		Label1:       ex.label1,
		Example1:     derivationSentence(ex.derivation1, b.symTab),
		Derivation1:  ex.derivation1.toSpec(),
		Rendered1:    renderDerivation(ex.derivation1, b.symTab),
		Label2:       ex.label2,
		Example2:     derivationSentence(ex.derivation2, b.symTab),
		Derivation2:  ex.derivation2.toSpec(),
		Rendered2:    renderDerivation(ex.derivation2, b.symTab),
		ConflictItem: items,
	}
}
