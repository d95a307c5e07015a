package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expectedAction struct {
	ty   ActionType
	prod []string
}

func TestGenLALRParsingTable_Precedence(t *testing.T) {
	tests := []struct {
		caption   string
		src       string
		kernel    [][]string
		actions   map[string]*expectedAction
		srCount   int
		rrCount   int
		resolved  int
		errorSyms []string
	}{
		{
			caption: "a left-associative operator reduces",
			src: `
name = "test"

[[terminal]]
name = "NUM"

[[precedence]]
assoc = "left"
symbols = ["'+'"]

[[rule]]
lhs = "expr"
rhs = ["expr", "'+'", "expr"]

[[rule]]
lhs = "expr"
rhs = ["NUM"]
`,
			kernel: [][]string{
				{"3", "expr", "expr", "'+'", "expr"},
				{"1", "expr", "expr", "'+'", "expr"},
			},
			actions: map[string]*expectedAction{
				"'+'":  {ty: ActionTypeReduce, prod: []string{"expr", "expr", "'+'", "expr"}},
				"$end": {ty: ActionTypeReduce, prod: []string{"expr", "expr", "'+'", "expr"}},
			},
			resolved: 1,
		},
		{
			caption: "without precedence, the conflict remains and shift is adopted",
			src: `
name = "test"

[[terminal]]
name = "NUM"

[[rule]]
lhs = "expr"
rhs = ["expr", "'+'", "expr"]

[[rule]]
lhs = "expr"
rhs = ["NUM"]
`,
			kernel: [][]string{
				{"3", "expr", "expr", "'+'", "expr"},
				{"1", "expr", "expr", "'+'", "expr"},
			},
			actions: map[string]*expectedAction{
				"'+'":  {ty: ActionTypeShift},
				"$end": {ty: ActionTypeReduce, prod: []string{"expr", "expr", "'+'", "expr"}},
			},
			srCount: 1,
		},
		{
			caption: "a right-associative operator shifts",
			src: `
name = "test"

[[terminal]]
name = "NUM"

[[precedence]]
assoc = "right"
symbols = ["'^'"]

[[rule]]
lhs = "expr"
rhs = ["expr", "'^'", "expr"]

[[rule]]
lhs = "expr"
rhs = ["NUM"]
`,
			kernel: [][]string{
				{"3", "expr", "expr", "'^'", "expr"},
				{"1", "expr", "expr", "'^'", "expr"},
			},
			actions: map[string]*expectedAction{
				"'^'": {ty: ActionTypeShift},
			},
			resolved: 1,
		},
		{
			caption: "a non-associative operator makes an error",
			src: `
name = "test"

[[terminal]]
name = "NUM"

[[precedence]]
assoc = "nonassoc"
symbols = ["'<'"]

[[rule]]
lhs = "expr"
rhs = ["expr", "'<'", "expr"]

[[rule]]
lhs = "expr"
rhs = ["NUM"]
`,
			kernel: [][]string{
				{"3", "expr", "expr", "'<'", "expr"},
				{"1", "expr", "expr", "'<'", "expr"},
			},
			actions: map[string]*expectedAction{
				"'<'":  {ty: ActionTypeError},
				"$end": {ty: ActionTypeReduce, prod: []string{"expr", "expr", "'<'", "expr"}},
			},
			resolved:  1,
			errorSyms: []string{"'<'"},
		},
		{
			caption: "a later precedence group binds tighter",
			src: `
name = "test"

[[terminal]]
name = "NUM"

[[precedence]]
assoc = "left"
symbols = ["'+'"]

[[precedence]]
assoc = "left"
symbols = ["'*'"]

[[rule]]
lhs = "expr"
rhs = ["expr", "'+'", "expr"]

[[rule]]
lhs = "expr"
rhs = ["expr", "'*'", "expr"]

[[rule]]
lhs = "expr"
rhs = ["NUM"]
`,
			kernel: [][]string{
				{"3", "expr", "expr", "'+'", "expr"},
				{"1", "expr", "expr", "'+'", "expr"},
				{"1", "expr", "expr", "'*'", "expr"},
			},
			actions: map[string]*expectedAction{
				"'+'": {ty: ActionTypeReduce, prod: []string{"expr", "expr", "'+'", "expr"}},
				"'*'": {ty: ActionTypeShift},
			},
			resolved: 4,
		},
		{
			caption: "a production takes the precedence of its precedence symbol",
			src: `
name = "test"

[[terminal]]
name = "NUM"

[[precedence]]
assoc = "left"
symbols = ["'-'"]

[[precedence]]
assoc = "right"
symbols = ["NEG"]

[[rule]]
lhs = "expr"
rhs = ["expr", "'-'", "expr"]

[[rule]]
lhs = "expr"
rhs = ["'-'", "expr"]
prec = "NEG"

[[rule]]
lhs = "expr"
rhs = ["NUM"]
`,
			kernel: [][]string{
				{"2", "expr", "'-'", "expr"},
				{"1", "expr", "expr", "'-'", "expr"},
			},
			actions: map[string]*expectedAction{
				"'-'": {ty: ActionTypeReduce, prod: []string{"expr", "'-'", "expr"}},
			},
			resolved: 2,
		},
		{
			caption: "a token having precedence only leaves the conflict",
			src: `
name = "test"

[[terminal]]
name = "NUM"

[[precedence]]
assoc = "precedence"
symbols = ["'+'"]

[[rule]]
lhs = "expr"
rhs = ["expr", "'+'", "expr"]

[[rule]]
lhs = "expr"
rhs = ["NUM"]
`,
			kernel: [][]string{
				{"3", "expr", "expr", "'+'", "expr"},
				{"1", "expr", "expr", "'+'", "expr"},
			},
			actions: map[string]*expectedAction{
				"'+'": {ty: ActionTypeShift},
			},
			srCount: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			a := genTestAutomaton(t, tt.src)
			genSym := newTestSymbolGenerator(t, a.symTab)
			genProd := newTestProductionGenerator(t, genSym)
			genLR0Item := newTestLR0ItemGenerator(t, genProd)

			tab, err := a.tableBuilder().build()
			require.NoError(t, err)

			var items []*lrItem
			for _, k := range tt.kernel {
				dot := int(k[0][0] - '0')
				items = append(items, genLR0Item(k[1], dot, k[2:]...))
			}
			state := a.findState(t, items...)

			for name, eAct := range tt.actions {
				ty, _, prodNum := tab.getAction(state.num, genSym(name).Num())
				assert.Equal(t, eAct.ty, ty, "an action on %v is mismatched", name)
				if eAct.ty == ActionTypeReduce {
					prod := findProduction(t, a.gram.productionSet, genProd(eAct.prod[0], eAct.prod[1:]...))
					assert.Equal(t, prod.num, prodNum, "a reduced production on %v is mismatched", name)
				}
			}

			assert.Equal(t, tt.srCount, tab.SRConflictCount())
			assert.Equal(t, tt.rrCount, tab.RRConflictCount())
			assert.Len(t, tab.resolved, tt.resolved)
			for _, rc := range tab.resolved {
				assert.NotEmpty(t, rc.message)
			}

			var errSyms []string
			for _, sym := range tab.explicitErrors[state.num] {
				errSyms = append(errSyms, a.symTab.DisplayName(sym))
			}
			assert.Equal(t, tt.errorSyms, errSyms)
		})
	}
}

func TestGenLALRParsingTable_ReduceReduceConflict(t *testing.T) {
	a := genTestAutomaton(t, `
name = "test"

[[rule]]
lhs = "s"
rhs = ["a"]

[[rule]]
lhs = "s"
rhs = ["b"]

[[rule]]
lhs = "a"
rhs = ["'x'"]

[[rule]]
lhs = "b"
rhs = ["'x'"]
`)
	genSym := newTestSymbolGenerator(t, a.symTab)
	genProd := newTestProductionGenerator(t, genSym)
	genLR0Item := newTestLR0ItemGenerator(t, genProd)

	tab, err := a.tableBuilder().build()
	require.NoError(t, err)

	state := a.findState(t, genLR0Item("a", 1, "'x'"), genLR0Item("b", 1, "'x'"))
	first := findProduction(t, a.gram.productionSet, genProd("a", "'x'"))
	second := findProduction(t, a.gram.productionSet, genProd("b", "'x'"))

	ty, _, prodNum := tab.getAction(state.num, genSym("$end").Num())
	assert.Equal(t, ActionTypeReduce, ty)
	assert.Equal(t, first.num, prodNum)

	assert.Equal(t, 0, tab.SRConflictCount())
	assert.Equal(t, 1, tab.RRConflictCount())
	require.Len(t, tab.rrConflicts, 1)
	c := tab.rrConflicts[0]
	assert.Equal(t, state.num, c.state)
	assert.Equal(t, first.num, c.prodNum1)
	assert.Equal(t, second.num, c.prodNum2)

	// Two candidate reductions are never a default reduction.
	assert.Equal(t, productionNumNil, tab.defaultReductions[state.num])
}

func TestGenLALRParsingTable_DefaultReductionsAndErrorTrappers(t *testing.T) {
	a := genTestAutomaton(t, `
name = "test"

[[terminal]]
name = "ID"

[[rule]]
lhs = "list"
rhs = ["list", "elem"]

[[rule]]
lhs = "list"
rhs = ["elem"]

[[rule]]
lhs = "elem"
rhs = ["ID", "';'"]

[[rule]]
lhs = "elem"
rhs = ["error", "';'"]
`)
	genSym := newTestSymbolGenerator(t, a.symTab)
	genProd := newTestProductionGenerator(t, genSym)
	genLR0Item := newTestLR0ItemGenerator(t, genProd)

	tab, err := a.tableBuilder().build()
	require.NoError(t, err)

	for _, state := range a.lr0.states {
		assert.Equal(t, state.isErrorTrapper, tab.errorTrapperStates[state.num] == 1)
		if len(state.shifts) > 0 || len(state.reducible) != 1 {
			assert.Equal(t, productionNumNil, tab.defaultReductions[state.num], "state %v", state.num)
		}
	}

	elem := a.findState(t, genLR0Item("elem", 2, "ID", "';'"))
	assert.Equal(t, findProduction(t, a.gram.productionSet, genProd("elem", "ID", "';'")).num, tab.defaultReductions[elem.num])

	assert.Equal(t, a.lr0.acceptState, tab.AcceptState)
	ty, next, _ := tab.getAction(a.findState(t, genLR0Item("$accept", 1, "list", "$end"), genLR0Item("list", 1, "list", "elem")).num, genSym("$end").Num())
	assert.Equal(t, ActionTypeShift, ty)
	assert.Equal(t, tab.AcceptState, next)

	gt, gnext := tab.getGoTo(tab.InitialState, genSym("list").Num())
	assert.Equal(t, GoToTypeRegistered, gt)
	assert.Equal(t, a.findState(t, genLR0Item("$accept", 1, "list", "$end"), genLR0Item("list", 1, "list", "elem")).num, gnext)
}

func TestParsingTable_StateActions(t *testing.T) {
	a := genTestAutomaton(t, `
name = "test"

[[terminal]]
name = "ID"

[[rule]]
lhs = "list"
rhs = ["list", "elem"]

[[rule]]
lhs = "list"
rhs = ["elem"]

[[rule]]
lhs = "elem"
rhs = ["ID", "';'"]

[[rule]]
lhs = "elem"
rhs = ["error", "';'"]
`)
	genSym := newTestSymbolGenerator(t, a.symTab)
	genProd := newTestProductionGenerator(t, genSym)
	genLR0Item := newTestLR0ItemGenerator(t, genProd)

	tab, err := a.tableBuilder().build()
	require.NoError(t, err)

	follow := []int{
		genSym("$end").Num().Int(),
		genSym("ID").Num().Int(),
		genSym("error").Num().Int(),
	}

	tests := []struct {
		caption string
		items   []*lrItem
		shifts  []int
		reduces map[productionNum][]int
	}{
		{
			caption: "a state shifting the terminals following list",
			items: []*lrItem{
				genLR0Item("$accept", 1, "list", "$end"),
				genLR0Item("list", 1, "list", "elem"),
			},
			shifts:  follow,
			reduces: map[productionNum][]int{},
		},
		{
			caption: "a state reducing elem on its follow set",
			items: []*lrItem{
				genLR0Item("elem", 2, "ID", "';'"),
			},
			reduces: map[productionNum][]int{
				findProduction(t, a.gram.productionSet, genProd("elem", "ID", "';'")).num: follow,
			},
		},
	}
	action := tab.actionInts()
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			state := a.findState(t, tt.items...)
			shifts, reduces := tab.stateActions(state.num)
			assert.ElementsMatch(t, tt.shifts, shifts)
			require.Len(t, reduces, len(tt.reduces))
			for prod, la := range tt.reduces {
				require.Contains(t, reduces, prod)
				assert.ElementsMatch(t, la, reduces[prod].elems())
				for _, sym := range la {
					assert.Equal(t, prod.Int(), action[state.num.Int()*tab.terminalCount+sym])
				}
			}
			for _, sym := range shifts {
				assert.Less(t, action[state.num.Int()*tab.terminalCount+sym], 0)
			}
		})
	}
	assert.Len(t, tab.defaultReductionInts(), tab.stateCount)
	assert.Len(t, tab.goToInts(), tab.stateCount*tab.nonTerminalCount)
}

func TestGenLALRParsingTable_MutuallyNullable(t *testing.T) {
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

	tab, err := a.tableBuilder().build()
	require.NoError(t, err)

	// a → ε is declared before b → ε, so it wins on $end.
	ty, _, prodNum := tab.getAction(tab.InitialState, genSym("$end").Num())
	assert.Equal(t, ActionTypeReduce, ty)
	assert.Equal(t, findProduction(t, a.gram.productionSet, genProd("a")).num, prodNum)
	assert.Equal(t, 1, tab.RRConflictCount())
}
