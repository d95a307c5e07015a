package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/pslrgen/grammar/lexical"
	"github.com/nihei9/pslrgen/grammar/pslr"
	"github.com/nihei9/pslrgen/grammar/symbol"
	spec "github.com/nihei9/pslrgen/spec/grammar"
)

// genScanner builds the context-aware scanner of a grammar and the PSLR part of the report.
func genScanner(gram *Grammar, b *lrTableBuilder, tab *ParsingTable) (*spec.ScannerSpec, *spec.PSLRReport, error) {
	fsa, err := lexical.NewScannerFSA(gram.patterns)
	if err != nil {
		return nil, nil, err
	}

	order := make([]int, len(gram.patterns))
	for i, p := range gram.patterns {
		order[i] = p.Token
	}
	pairs := make([]*pslr.LexPrecPair, len(gram.lexPrecs))
	for i, p := range gram.lexPrecs {
		pairs[i] = &pslr.LexPrecPair{
			Higher: p.higher.Num().Int(),
			Lower:  p.lower.Num().Int(),
		}
	}
	prec, err := pslr.NewLexPrec(order, pairs)
	if err != nil {
		return nil, nil, err
	}

	states := b.parserStates(tab)
	accepts := pslr.NewScannerAccepts(fsa, states, prec)
	contexts, err := accepts.ScannerContexts()
	if err != nil {
		return nil, nil, err
	}

	fsaStates := make([]*spec.ScannerState, len(fsa.States))
	for i, s := range fsa.States {
		trans := make([]*spec.ScannerTransition, len(s.Transitions))
		for j, t := range s.Transitions {
			trans[j] = &spec.ScannerTransition{
				From: int(t.From),
				To:   int(t.To),
				Next: t.Next,
			}
		}
		fsaStates[i] = &spec.ScannerState{
			Number:      s.ID,
			Accepts:     s.Accepts,
			Transitions: trans,
		}
	}

	ctxRows := make([][]int, len(contexts))
	ctxStates := make([][]int, len(contexts))
	state2Ctx := make([]int, tab.stateCount)
	for i, c := range contexts {
		ctxRows[i] = c.Row
		ctxStates[i] = c.States
		for _, s := range c.States {
			state2Ctx[s] = c.ID
		}
	}

	pats := make([]string, tab.terminalCount)
	for _, p := range gram.patterns {
		pats[p.Token] = p.Source
	}

	longest, err := lexical.CompileLongestMatch(gram.name, gram.patterns)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile the longest-match lexer: %w", err)
	}

	var accRows []*spec.ScannerAccepts
	for _, s := range states {
		row := &spec.ScannerAccepts{
			State: s.Number,
		}
		for f, t := range accepts.Row(s.Number) {
			if t == 0 {
				continue
			}
			row.Entries = append(row.Entries, &spec.ScannerAcceptsEntry{
				FSAState: f,
				Token:    t,
			})
		}
		accRows = append(accRows, row)
	}

	inadequacies := b.lrInadequacies(tab)
	for _, in := range accepts.FindInadequacies() {
		inadequacies = append(inadequacies, &spec.Inadequacy{
			Kind:        spec.InadequacyKindPSLR,
			State:       in.State,
			Productions: []int{in.Production},
			Origins:     []int{in.Origins[0], in.Origins[1]},
			FSAState:    in.FSAState,
			Tokens:      []int{in.Tokens[0], in.Tokens[1]},
		})
	}

	tracer().Infof("scanner: %v FSA states, %v contexts, %v inadequacies", len(fsa.States), len(contexts), len(inadequacies))

	scanner := &spec.ScannerSpec{
		InitialState:   fsa.Initial,
		States:         fsaStates,
		Contexts:       ctxRows,
		StateToContext: state2Ctx,
		Patterns:       pats,
		LongestMatch:   longest,
	}
	report := &spec.PSLRReport{
		InitialFSAState: fsa.Initial,
		FSA:             fsaStates,
		Accepts:         accRows,
		Contexts:        ctxStates,
		Inadequacies:    inadequacies,
	}
	return scanner, report, nil
}

// parserStates extracts the tokens every state shifts and reduces on from the parsing table, so
// the scanner analysis sees the table after conflict resolution. The look-ahead set each origin of
// a reduction contributes is cut down to the look-ahead set the table kept.
func (b *lrTableBuilder) parserStates(tab *ParsingTable) []*pslr.ParserState {
	states := make([]*pslr.ParserState, len(b.automaton.states))
	for _, s := range b.automaton.states {
		ps := &pslr.ParserState{
			Number: s.num.Int(),
		}
		shifts, las := tab.stateActions(s.num)
		ps.Shifts = shifts

		for _, prod := range s.reducible {
			la, ok := las[prod.num]
			if !ok {
				continue
			}
			red := &pslr.Reduction{
				Production: prod.num.Int(),
				LookAhead:  la.elems(),
			}
			for from, ola := range b.automaton.lookAheadOrigins(s.num, prod.num) {
				ola = ola.intersection(la)
				if ola.isEmpty() {
					continue
				}
				red.Origins = append(red.Origins, &pslr.Origin{
					State:     from.Int(),
					LookAhead: ola.elems(),
				})
			}
			sort.Slice(red.Origins, func(i, j int) bool {
				return red.Origins[i].State < red.Origins[j].State
			})
			ps.Reductions = append(ps.Reductions, red)
		}

		states[s.num] = ps
	}
	return states
}

// lrInadequacies turns the conflicts of the parsing table into lr_relative inadequacies.
func (b *lrTableBuilder) lrInadequacies(tab *ParsingTable) []*spec.Inadequacy {
	var inadequacies []*spec.Inadequacy
	for _, c := range tab.srConflicts {
		inadequacies = append(inadequacies, &spec.Inadequacy{
			Kind:        spec.InadequacyKindLR,
			State:       c.state.Int(),
			Symbols:     symbolNums(c.syms),
			Productions: []int{c.prodNum.Int()},
		})
	}
	for _, c := range tab.rrConflicts {
		inadequacies = append(inadequacies, &spec.Inadequacy{
			Kind:        spec.InadequacyKindLR,
			State:       c.state.Int(),
			Symbols:     symbolNums(c.syms),
			Productions: []int{c.prodNum1.Int(), c.prodNum2.Int()},
		})
	}
	sort.SliceStable(inadequacies, func(i, j int) bool {
		return inadequacies[i].State < inadequacies[j].State
	})
	if len(inadequacies) > 0 {
		tracer().Debugf("%v lr_relative inadequacies", len(inadequacies))
	}
	return inadequacies
}

func symbolNums(syms []symbol.Symbol) []int {
	nums := make([]int, len(syms))
	for i, sym := range syms {
		nums[i] = sym.Num().Int()
	}
	return nums
}
