package grammar

import (
	"github.com/nihei9/pslrgen/grammar/symbol"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeError  = ActionType("error")
)

type actionEntry int

const actionEntryEmpty = actionEntry(0)

func newShiftActionEntry(state stateNum) actionEntry {
	return actionEntry(state * -1)
}

func newReduceActionEntry(prod productionNum) actionEntry {
	return actionEntry(prod)
}

func (e actionEntry) isEmpty() bool {
	return e == actionEntryEmpty
}

func (e actionEntry) describe() (ActionType, stateNum, productionNum) {
	if e == actionEntryEmpty {
		return ActionTypeError, stateNumInitial, productionNumNil
	}
	if e < 0 {
		return ActionTypeShift, stateNum(e * -1), productionNumNil
	}
	return ActionTypeReduce, stateNumInitial, productionNum(e)
}

type GoToType string

const (
	GoToTypeRegistered = GoToType("registered")
	GoToTypeError      = GoToType("error")
)

type goToEntry uint

const goToEntryEmpty = goToEntry(0)

func newGoToEntry(state stateNum) goToEntry {
	return goToEntry(state)
}

func (e goToEntry) describe() (GoToType, stateNum) {
	if e == goToEntryEmpty {
		return GoToTypeError, stateNumInitial
	}
	return GoToTypeRegistered, stateNum(e)
}

type conflict interface {
	conflict()
}

// shiftReduceConflict is a shift/reduce conflict that precedence and associativity could not
// resolve. The table keeps the shift actions for syms.
type shiftReduceConflict struct {
	state   stateNum
	syms    []symbol.Symbol
	prodNum productionNum
}

func (c *shiftReduceConflict) conflict() {
}

// reduceReduceConflict is always resolved in favor of prodNum1, the production declared first.
type reduceReduceConflict struct {
	state    stateNum
	syms     []symbol.Symbol
	prodNum1 productionNum
	prodNum2 productionNum
}

func (c *reduceReduceConflict) conflict() {
}

var (
	_ conflict = &shiftReduceConflict{}
	_ conflict = &reduceReduceConflict{}
)

// resolvedConflict records a shift/reduce conflict resolved with precedence and associativity.
// which is ActionTypeError when a non-associative token made the pair a syntax error.
type resolvedConflict struct {
	state    stateNum
	sym      symbol.Symbol
	prodNum  productionNum
	which    ActionType
	samePrec bool
	message  string
}

type ParsingTable struct {
	actionTable      []actionEntry
	goToTable        []goToEntry
	stateCount       int
	terminalCount    int
	nonTerminalCount int

	// errorTrapperStates's index means a state number, and when `errorTrapperStates[stateNum]` is `1`,
	// the state has an item having the following form. The `α` and `β` can be empty.
	//
	// A → α・error β
	errorTrapperStates []int

	// defaultReductions[state] is the production the state reduces regardless of the look-ahead
	// symbol, or productionNumNil.
	defaultReductions []productionNum

	// explicitErrors holds the terminal symbols that non-associative tokens turned into errors.
	explicitErrors map[stateNum][]symbol.Symbol

	srConflicts []*shiftReduceConflict
	rrConflicts []*reduceReduceConflict
	resolved    []*resolvedConflict

	// srConflictCount and rrConflictCount are counted the way bison counts them: one shift/reduce
	// conflict per token of a state, and one reduce/reduce conflict per extra reduction of a token.
	srConflictCount int
	rrConflictCount int

	InitialState stateNum
	AcceptState  stateNum
}

// stateActions splits the ACTION row of a state into the terminals it shifts and the look-ahead
// set each production reduces on. Both reflect the table after conflict resolution.
func (t *ParsingTable) stateActions(state stateNum) ([]int, map[productionNum]bitSet) {
	var shifts []int
	reduces := map[productionNum]bitSet{}
	for sym := 1; sym < t.terminalCount; sym++ {
		ty, _, prod := t.readAction(state.Int(), sym).describe()
		switch ty {
		case ActionTypeShift:
			shifts = append(shifts, sym)
		case ActionTypeReduce:
			la, ok := reduces[prod]
			if !ok {
				la = newBitSet(t.terminalCount)
				reduces[prod] = la
			}
			la.add(sym)
		}
	}
	return shifts, reduces
}

// actionInts and goToInts flatten the tables into the encoding of a compiled grammar: a shift
// is the negated next state, a reduce is the production number, and 0 is an error.
func (t *ParsingTable) actionInts() []int {
	action := make([]int, len(t.actionTable))
	for i, e := range t.actionTable {
		action[i] = int(e)
	}
	return action
}

func (t *ParsingTable) goToInts() []int {
	goTo := make([]int, len(t.goToTable))
	for i, e := range t.goToTable {
		goTo[i] = int(e)
	}
	return goTo
}

func (t *ParsingTable) defaultReductionInts() []int {
	reds := make([]int, len(t.defaultReductions))
	for i, p := range t.defaultReductions {
		reds[i] = p.Int()
	}
	return reds
}

func (t *ParsingTable) getAction(state stateNum, sym symbol.SymbolNum) (ActionType, stateNum, productionNum) {
	pos := state.Int()*t.terminalCount + sym.Int()
	return t.actionTable[pos].describe()
}

func (t *ParsingTable) getGoTo(state stateNum, sym symbol.SymbolNum) (GoToType, stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Int()
	return t.goToTable[pos].describe()
}

func (t *ParsingTable) readAction(row int, col int) actionEntry {
	return t.actionTable[row*t.terminalCount+col]
}

func (t *ParsingTable) writeAction(row int, col int, act actionEntry) {
	t.actionTable[row*t.terminalCount+col] = act
}

func (t *ParsingTable) writeGoTo(state stateNum, sym symbol.Symbol, nextState stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Num().Int()
	t.goToTable[pos] = newGoToEntry(nextState)
}

// SRConflictCount returns the number of the shift/reduce conflicts precedence could not resolve.
func (t *ParsingTable) SRConflictCount() int {
	return t.srConflictCount
}

// RRConflictCount returns the number of the reduce/reduce conflicts.
func (t *ParsingTable) RRConflictCount() int {
	return t.rrConflictCount
}
