package grammar

import (
	"fmt"

	"github.com/nihei9/pslrgen/compressor"
	"github.com/nihei9/pslrgen/grammar/symbol"
	spec "github.com/nihei9/pslrgen/spec/grammar"
)

type compileConfig struct {
	isReportingEnabled       bool
	isCounterexamplesEnabled bool
	cexLimit                 int
	isPSLRDisabled           bool
}

type CompileOption func(config *compileConfig)

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// EnableCounterexamples makes the report carry a counterexample for every conflict precedence could
// not resolve. It enables reporting as well.
func EnableCounterexamples() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
		config.isCounterexamplesEnabled = true
	}
}

// CounterexampleSearchLimit bounds the number of search steps spent on one counterexample.
func CounterexampleSearchLimit(limit int) CompileOption {
	return func(config *compileConfig) {
		if limit > 0 {
			config.cexLimit = limit
		}
	}
}

// DisablePSLR skips the scanner analysis even when the grammar has token patterns.
func DisablePSLR() CompileOption {
	return func(config *compileConfig) {
		config.isPSLRDisabled = true
	}
}

func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		cexLimit: defaultCounterexampleSearchLimit,
	}
	for _, opt := range opts {
		opt(config)
	}

	terms := gram.symbolTable.TerminalTexts()
	nonTerms, err := gram.symbolTable.NonTerminalTexts()
	if err != nil {
		return nil, nil, err
	}

	aliases := make([]string, len(terms))
	for _, sym := range gram.symbolTable.TerminalSymbols() {
		aliases[sym.Num().Int()] = gram.symbolTable.Alias(sym)
	}

	firstSet, err := genFirstSet(gram.productionSet)
	if err != nil {
		return nil, nil, err
	}

	lr0, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol, gram.errorSymbol)
	if err != nil {
		return nil, nil, err
	}

	lalr1, err := genLALR1Automaton(lr0, gram.productionSet, firstSet, len(terms))
	if err != nil {
		return nil, nil, err
	}

	b := &lrTableBuilder{
		automaton:    lalr1,
		prods:        gram.productionSet,
		termCount:    len(terms),
		nonTermCount: len(nonTerms),
		symTab:       gram.symbolTable,
		precAndAssoc: gram.precAndAssoc,
	}
	tab, err := b.build()
	if err != nil {
		return nil, nil, err
	}

	action := tab.actionInts()
	goTo := tab.goToInts()
	compactAction, err := compressor.Compact(action, tab.terminalCount, int(actionEntryEmpty))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compress the action table: %w", err)
	}
	compactGoTo, err := compressor.Compact(goTo, tab.nonTerminalCount, int(goToEntryEmpty))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compress the goto table: %w", err)
	}

	lhsSyms := make([]int, gram.productionSet.count()+1)
	altSymCounts := make([]int, gram.productionSet.count()+1)
	for _, p := range gram.productionSet.getAllProductions() {
		lhsSyms[p.num] = p.lhs.Num().Int()
		altSymCounts[p.num] = p.rhsLen
	}

	var scanner *spec.ScannerSpec
	var pslrReport *spec.PSLRReport
	if len(gram.patterns) > 0 && !config.isPSLRDisabled {
		scanner, pslrReport, err = genScanner(gram, b, tab)
		if err != nil {
			return nil, nil, err
		}
	}

	var report *spec.Report
	if config.isReportingEnabled {
		report, err = b.genReport(tab, gram, firstSet, config)
		if err != nil {
			return nil, nil, err
		}
		report.PSLR = pslrReport
	}

	return &spec.CompiledGrammar{
		Name: gram.name,
		Syntactic: &spec.SyntacticSpec{
			Action:                  action,
			GoTo:                    goTo,
			CompactAction:           compactAction,
			CompactGoTo:             compactGoTo,
			DefaultReductions:       tab.defaultReductionInts(),
			StateCount:              tab.stateCount,
			InitialState:            tab.InitialState.Int(),
			AcceptState:             tab.AcceptState.Int(),
			StartProduction:         productionNumStart.Int(),
			LHSSymbols:              lhsSyms,
			AlternativeSymbolCounts: altSymCounts,
			Terminals:               terms,
			TerminalAliases:         aliases,
			TerminalCount:           tab.terminalCount,
			NonTerminals:            nonTerms,
			NonTerminalCount:        tab.nonTerminalCount,
			EOFSymbol:               symbol.SymbolEOF.Num().Int(),
			ErrorSymbol:             gram.errorSymbol.Num().Int(),
			ErrorTrapperStates:      tab.errorTrapperStates,
		},
		Scanner: scanner,
	}, report, nil
}
