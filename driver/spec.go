package driver

import (
	"github.com/nihei9/pslrgen/compressor"
	spec "github.com/nihei9/pslrgen/spec/grammar"
)

type Grammar interface {
	// InitialState returns the initial state of a parser.
	InitialState() int

	// AcceptState returns the state a parser reaches by shifting the EOF symbol. Reaching it means
	// the input was accepted.
	AcceptState() int

	// Action returns an ACTION entry corresponding to a (state, terminal symbol) pair.
	Action(state int, terminal int) int

	// GoTo returns a GOTO entry corresponding to a (state, non-terminal symbol) pair.
	GoTo(state int, lhs int) int

	// DefaultReduction returns the production a state reduces without looking at a token, or 0
	// when the state has none.
	DefaultReduction(state int) int

	// ErrorTrapperState returns true when a state can shift the error symbol.
	ErrorTrapperState(state int) bool

	// LHS returns a LHS symbol of a production.
	LHS(prod int) int

	// AlternativeSymbolCount returns a symbol count of p production.
	AlternativeSymbolCount(prod int) int

	// TerminalCount returns a terminal symbol count of grammar.
	TerminalCount() int

	// EOF returns the EOF symbol.
	EOF() int

	// Error returns the error symbol.
	Error() int

	// Terminal retuns a string representaion of a terminal symbol.
	Terminal(terminal int) string

	// TerminalAlias returns an alias for a terminal.
	TerminalAlias(terminal int) string

	// NonTerminal retuns a string representaion of a non-terminal symbol.
	NonTerminal(nonTerminal int) string

	// ScanContext returns the scanner context a state scans its next token in, or -1 when the grammar
	// carries no context-aware scanner.
	ScanContext(state int) int
}

type grammarImpl struct {
	g    *spec.SyntacticSpec
	scan *spec.ScannerSpec
}

// NewGrammar wraps the parsing table of a compiled grammar. Lookups go through the compressed
// tables when the grammar carries them.
func NewGrammar(g *spec.CompiledGrammar) *grammarImpl {
	return &grammarImpl{
		g:    g.Syntactic,
		scan: g.Scanner,
	}
}

func (g *grammarImpl) InitialState() int {
	return g.g.InitialState
}

func (g *grammarImpl) AcceptState() int {
	return g.g.AcceptState
}

func (g *grammarImpl) Action(state int, terminal int) int {
	if g.g.CompactAction != nil {
		act, err := compressor.LookupCompact(g.g.CompactAction, state, terminal)
		if err != nil {
			return 0
		}
		return act
	}
	return g.g.Action[state*g.g.TerminalCount+terminal]
}

func (g *grammarImpl) GoTo(state int, lhs int) int {
	if g.g.CompactGoTo != nil {
		next, err := compressor.LookupCompact(g.g.CompactGoTo, state, lhs)
		if err != nil {
			return 0
		}
		return next
	}
	return g.g.GoTo[state*g.g.NonTerminalCount+lhs]
}

func (g *grammarImpl) DefaultReduction(state int) int {
	return g.g.DefaultReductions[state]
}

func (g *grammarImpl) ErrorTrapperState(state int) bool {
	return g.g.ErrorTrapperStates[state] != 0
}

func (g *grammarImpl) LHS(prod int) int {
	return g.g.LHSSymbols[prod]
}

func (g *grammarImpl) AlternativeSymbolCount(prod int) int {
	return g.g.AlternativeSymbolCounts[prod]
}

func (g *grammarImpl) TerminalCount() int {
	return g.g.TerminalCount
}

func (g *grammarImpl) EOF() int {
	return g.g.EOFSymbol
}

func (g *grammarImpl) Error() int {
	return g.g.ErrorSymbol
}

func (g *grammarImpl) Terminal(terminal int) string {
	return g.g.Terminals[terminal]
}

func (g *grammarImpl) TerminalAlias(terminal int) string {
	return g.g.TerminalAliases[terminal]
}

func (g *grammarImpl) NonTerminal(nonTerminal int) string {
	return g.g.NonTerminals[nonTerminal]
}

func (g *grammarImpl) ScanContext(state int) int {
	if g.scan == nil || state < 0 || state >= len(g.scan.StateToContext) {
		return -1
	}
	return g.scan.StateToContext[state]
}
