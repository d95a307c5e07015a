package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenLALR1Automaton(t *testing.T) {
	// This grammar belongs to LALR(1) class, not SLR(1).
	a := genTestAutomaton(t, `
name = "test"

[[terminal]]
name = "ID"
pattern = "[A-Za-z0-9_]+"

[[rule]]
lhs = "S"
rhs = ["L", "'='", "R"]

[[rule]]
lhs = "S"
rhs = ["R"]

[[rule]]
lhs = "L"
rhs = ["'*'", "R"]

[[rule]]
lhs = "L"
rhs = ["ID"]

[[rule]]
lhs = "R"
rhs = ["L"]
`)

	genSym := newTestSymbolGenerator(t, a.symTab)
	genProd := newTestProductionGenerator(t, genSym)
	genLR0Item := newTestLR0ItemGenerator(t, genProd)

	tests := []struct {
		kernel    []*lrItem
		prod      *production
		lookAhead []string
	}{
		{
			kernel: []*lrItem{
				genLR0Item("S", 1, "L", "'='", "R"),
				genLR0Item("R", 1, "L"),
			},
			prod:      genProd("R", "L"),
			lookAhead: []string{"$end"},
		},
		{
			kernel: []*lrItem{
				genLR0Item("S", 1, "R"),
			},
			prod:      genProd("S", "R"),
			lookAhead: []string{"$end"},
		},
		{
			kernel: []*lrItem{
				genLR0Item("L", 1, "ID"),
			},
			prod:      genProd("L", "ID"),
			lookAhead: []string{"'='", "$end"},
		},
		{
			kernel: []*lrItem{
				genLR0Item("L", 2, "'*'", "R"),
			},
			prod:      genProd("L", "'*'", "R"),
			lookAhead: []string{"'='", "$end"},
		},
		{
			kernel: []*lrItem{
				genLR0Item("R", 1, "L"),
			},
			prod:      genProd("R", "L"),
			lookAhead: []string{"'='", "$end"},
		},
		{
			kernel: []*lrItem{
				genLR0Item("S", 3, "L", "'='", "R"),
			},
			prod:      genProd("S", "L", "'='", "R"),
			lookAhead: []string{"$end"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.kernel[0].String(), func(t *testing.T) {
			state := a.findState(t, tt.kernel...)
			prod := findProduction(t, a.gram.productionSet, tt.prod)
			la := a.lalr1.lookAhead(state.num, prod.num)
			assert.Equal(t, a.termSet(t, genSym, tt.lookAhead...).elems(), la.elems())
		})
	}

	t.Run("look-ahead origins", func(t *testing.T) {
		state := a.findState(t, genLR0Item("R", 1, "L"))
		prod := findProduction(t, a.gram.productionSet, genProd("R", "L"))
		origins := a.lalr1.lookAheadOrigins(state.num, prod.num)
		require.Len(t, origins, 2)

		star := a.findState(t, genLR0Item("L", 1, "'*'", "R"))
		eq := a.findState(t, genLR0Item("S", 2, "L", "'='", "R"))
		assert.Equal(t, a.termSet(t, genSym, "'='", "$end").elems(), origins[star.num].elems())
		assert.Equal(t, a.termSet(t, genSym, "$end").elems(), origins[eq.num].elems())
	})
}

func TestGenLALR1Automaton_MutuallyNullable(t *testing.T) {
	a := genTestAutomaton(t, `
name = "test"

[[rule]]
lhs = "a"

[[rule]]
lhs = "a"
rhs = ["b"]

[[rule]]
lhs = "b"

[[rule]]
lhs = "b"
rhs = ["a"]
`)

	genSym := newTestSymbolGenerator(t, a.symTab)
	genProd := newTestProductionGenerator(t, genSym)

	end := a.termSet(t, genSym, "$end").elems()
	for _, name := range []string{"a", "b"} {
		i, ok := a.lalr1.findGotoTransition(a.lr0.initialState, genSym(name))
		require.True(t, ok)
		assert.Equal(t, end, a.lalr1.follows[i].elems(), "Follow of %v", name)
	}

	initial := a.lr0.states[a.lr0.initialState]
	for _, p := range []*production{genProd("a"), genProd("b")} {
		prod := findProduction(t, a.gram.productionSet, p)
		assert.Equal(t, end, a.lalr1.lookAhead(initial.num, prod.num).elems())
	}
}

func TestGenLALR1Automaton_NullableTail(t *testing.T) {
	// The look-ahead of `opt → ε` reaches `'z'` through the nullable `tail`.
	a := genTestAutomaton(t, `
name = "test"

[[rule]]
lhs = "s"
rhs = ["'x'", "opt", "tail", "'z'"]

[[rule]]
lhs = "opt"
rhs = ["'y'"]

[[rule]]
lhs = "opt"

[[rule]]
lhs = "tail"
rhs = ["'w'"]

[[rule]]
lhs = "tail"
`)

	genSym := newTestSymbolGenerator(t, a.symTab)
	genProd := newTestProductionGenerator(t, genSym)
	genLR0Item := newTestLR0ItemGenerator(t, genProd)

	state := a.findState(t, genLR0Item("s", 1, "'x'", "opt", "tail", "'z'"))
	prod := findProduction(t, a.gram.productionSet, genProd("opt"))
	assert.Equal(t, a.termSet(t, genSym, "'w'", "'z'").elems(), a.lalr1.lookAhead(state.num, prod.num).elems())
}
