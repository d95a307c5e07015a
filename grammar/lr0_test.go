package grammar

import (
	"testing"

	"github.com/nihei9/pslrgen/grammar/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exprGrammarSrc = `
name = "expr"

[[terminal]]
name = "ID"
pattern = "[A-Za-z_][0-9A-Za-z_]*"

[[rule]]
lhs = "expr"
rhs = ["expr", "'+'", "term"]

[[rule]]
lhs = "expr"
rhs = ["term"]

[[rule]]
lhs = "term"
rhs = ["term", "'*'", "factor"]

[[rule]]
lhs = "term"
rhs = ["factor"]

[[rule]]
lhs = "factor"
rhs = ["'('", "expr", "')'"]

[[rule]]
lhs = "factor"
rhs = ["ID"]
`

type expectedLRState struct {
	kernelItems    []*lrItem
	nextStates     map[string][]*lrItem
	reducibleProds []*production
}

func TestGenLR0Automaton(t *testing.T) {
	a := genTestAutomaton(t, exprGrammarSrc)

	genSym := newTestSymbolGenerator(t, a.symTab)
	genProd := newTestProductionGenerator(t, genSym)
	genLR0Item := newTestLR0ItemGenerator(t, genProd)

	expectedKernels := map[int][]*lrItem{
		0: {
			genLR0Item("$accept", 0, "expr", "$end"),
		},
		1: {
			genLR0Item("$accept", 1, "expr", "$end"),
			genLR0Item("expr", 1, "expr", "'+'", "term"),
		},
		2: {
			genLR0Item("expr", 1, "term"),
			genLR0Item("term", 1, "term", "'*'", "factor"),
		},
		3: {
			genLR0Item("term", 1, "factor"),
		},
		4: {
			genLR0Item("factor", 1, "'('", "expr", "')'"),
		},
		5: {
			genLR0Item("factor", 1, "ID"),
		},
		6: {
			genLR0Item("$accept", 2, "expr", "$end"),
		},
		7: {
			genLR0Item("expr", 2, "expr", "'+'", "term"),
		},
		8: {
			genLR0Item("term", 2, "term", "'*'", "factor"),
		},
		9: {
			genLR0Item("expr", 1, "expr", "'+'", "term"),
			genLR0Item("factor", 2, "'('", "expr", "')'"),
		},
		10: {
			genLR0Item("expr", 3, "expr", "'+'", "term"),
			genLR0Item("term", 1, "term", "'*'", "factor"),
		},
		11: {
			genLR0Item("term", 3, "term", "'*'", "factor"),
		},
		12: {
			genLR0Item("factor", 3, "'('", "expr", "')'"),
		},
	}

	expectedStates := []*expectedLRState{
		{
			kernelItems: expectedKernels[0],
			nextStates: map[string][]*lrItem{
				"expr":   expectedKernels[1],
				"term":   expectedKernels[2],
				"factor": expectedKernels[3],
				"'('":    expectedKernels[4],
				"ID":     expectedKernels[5],
			},
		},
		{
			kernelItems: expectedKernels[1],
			nextStates: map[string][]*lrItem{
				"$end": expectedKernels[6],
				"'+'":  expectedKernels[7],
			},
		},
		{
			kernelItems: expectedKernels[2],
			nextStates: map[string][]*lrItem{
				"'*'": expectedKernels[8],
			},
			reducibleProds: []*production{
				genProd("expr", "term"),
			},
		},
		{
			kernelItems: expectedKernels[3],
			reducibleProds: []*production{
				genProd("term", "factor"),
			},
		},
		{
			kernelItems: expectedKernels[4],
			nextStates: map[string][]*lrItem{
				"expr":   expectedKernels[9],
				"term":   expectedKernels[2],
				"factor": expectedKernels[3],
				"'('":    expectedKernels[4],
				"ID":     expectedKernels[5],
			},
		},
		{
			kernelItems: expectedKernels[5],
			reducibleProds: []*production{
				genProd("factor", "ID"),
			},
		},
		{
			kernelItems: expectedKernels[6],
			reducibleProds: []*production{
				genProd("$accept", "expr", "$end"),
			},
		},
		{
			kernelItems: expectedKernels[7],
			nextStates: map[string][]*lrItem{
				"term":   expectedKernels[10],
				"factor": expectedKernels[3],
				"'('":    expectedKernels[4],
				"ID":     expectedKernels[5],
			},
		},
		{
			kernelItems: expectedKernels[8],
			nextStates: map[string][]*lrItem{
				"factor": expectedKernels[11],
				"'('":    expectedKernels[4],
				"ID":     expectedKernels[5],
			},
		},
		{
			kernelItems: expectedKernels[9],
			nextStates: map[string][]*lrItem{
				"')'": expectedKernels[12],
				"'+'": expectedKernels[7],
			},
		},
		{
			kernelItems: expectedKernels[10],
			nextStates: map[string][]*lrItem{
				"'*'": expectedKernels[8],
			},
			reducibleProds: []*production{
				genProd("expr", "expr", "'+'", "term"),
			},
		},
		{
			kernelItems: expectedKernels[11],
			reducibleProds: []*production{
				genProd("term", "term", "'*'", "factor"),
			},
		},
		{
			kernelItems: expectedKernels[12],
			reducibleProds: []*production{
				genProd("factor", "'('", "expr", "')'"),
			},
		},
	}

	require.Len(t, a.lr0.states, len(expectedStates))
	assert.Equal(t, stateNumInitial, a.lr0.initialState)
	assert.Equal(t, a.findState(t, expectedKernels[6]...).num, a.lr0.acceptState)

	for i, eState := range expectedStates {
		t.Run(eState.kernelItems[0].String(), func(t *testing.T) {
			state := a.findState(t, eState.kernelItems...)
			if i == 0 {
				assert.Equal(t, stateNumInitial, state.num)
			}

			transCount := len(state.shifts) + len(state.goTos)
			require.Equal(t, len(eState.nextStates), transCount, "transition count is mismatched")
			for name, eKernel := range eState.nextStates {
				next, ok := state.findTransition(genSym(name))
				require.True(t, ok, "a transition on %v was not found", name)
				assert.Equal(t, a.findState(t, eKernel...).num, next, "a transition on %v is mismatched", name)
			}

			require.Len(t, state.reducible, len(eState.reducibleProds))
			for j, eProd := range eState.reducibleProds {
				assert.Equal(t, eProd.id, state.reducible[j].id)
			}
		})
	}
}

func TestGenLR0Automaton_Invariants(t *testing.T) {
	a := genTestAutomaton(t, exprGrammarSrc)

	seen := map[kernelID]stateNum{}
	for i, state := range a.lr0.states {
		// The state numbers are the indices of the states.
		assert.Equal(t, stateNum(i), state.num)

		// No two states share a kernel.
		if prev, ok := seen[state.kernel.id]; ok {
			t.Fatalf("states %v and %v have the same kernel", prev, state.num)
		}
		seen[state.kernel.id] = state.num

		// The transitions are sorted by symbol and deterministic.
		for _, trans := range [][]*transition{state.shifts, state.goTos} {
			for j := 1; j < len(trans); j++ {
				assert.True(t, trans[j-1].symbol < trans[j].symbol)
			}
		}

		// The closure of the kernel yields the same items again.
		items, err := genLR0Closure(state.kernel, a.gram.productionSet)
		require.NoError(t, err)
		require.Len(t, items, len(state.items))
		for j, item := range items {
			assert.Equal(t, state.items[j].id, item.id)
		}

		// Every predecessor moves to the state.
		for sym, preds := range a.lr0.predecessors[state.num] {
			for _, p := range preds {
				next, ok := a.lr0.goTo(p, sym)
				assert.True(t, ok)
				assert.Equal(t, state.num, next)
			}
		}
	}

	// A second run numbers the states identically.
	b := genTestAutomaton(t, exprGrammarSrc)
	require.Len(t, b.lr0.states, len(a.lr0.states))
	for i, state := range a.lr0.states {
		assert.Equal(t, state.kernel.id, b.lr0.states[i].kernel.id)
	}
}

func TestGenLR0Automaton_ErrorTrapper(t *testing.T) {
	a := genTestAutomaton(t, `
name = "test"

[[rule]]
lhs = "s"
rhs = ["s", "'x'"]

[[rule]]
lhs = "s"
rhs = ["'x'"]

[[rule]]
lhs = "s"
rhs = ["error", "';'"]
`)

	genSym := newTestSymbolGenerator(t, a.symTab)
	initial := a.lr0.states[a.lr0.initialState]
	assert.True(t, initial.isErrorTrapper)

	next, ok := initial.findTransition(genSym("error"))
	require.True(t, ok)
	assert.False(t, a.lr0.states[next].isErrorTrapper)

	syms := []symbol.Symbol{genSym("s"), genSym("'x'")}
	dest, ok := a.lr0.walk(a.lr0.initialState, syms)
	require.True(t, ok)
	assert.Len(t, a.lr0.states[dest].reducible, 1)
}
