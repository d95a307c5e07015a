package grammar

import (
	"strings"
	"testing"

	"github.com/nihei9/pslrgen/grammar/symbol"
	"github.com/nihei9/pslrgen/spec/grammar/parser"
)

func buildGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	ast, err := parser.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := GrammarBuilder{
		AST: ast,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return gram
}

// testAutomaton builds every stage of the generator up to the LALR(1) automaton.
type testAutomaton struct {
	gram   *Grammar
	first  *firstSet
	lr0    *lr0Automaton
	lalr1  *lalr1Automaton
	symTab *symbol.SymbolTableReader
}

func genTestAutomaton(t *testing.T, src string) *testAutomaton {
	t.Helper()

	gram := buildGrammar(t, src)
	first, err := genFirstSet(gram.productionSet)
	if err != nil {
		t.Fatal(err)
	}
	lr0, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol, gram.errorSymbol)
	if err != nil {
		t.Fatal(err)
	}
	lalr1, err := genLALR1Automaton(lr0, gram.productionSet, first, len(gram.symbolTable.TerminalTexts()))
	if err != nil {
		t.Fatal(err)
	}
	return &testAutomaton{
		gram:   gram,
		first:  first,
		lr0:    lr0,
		lalr1:  lalr1,
		symTab: gram.symbolTable,
	}
}

func (a *testAutomaton) tableBuilder() *lrTableBuilder {
	nonTerms, _ := a.symTab.NonTerminalTexts()
	return &lrTableBuilder{
		automaton:    a.lalr1,
		prods:        a.gram.productionSet,
		termCount:    len(a.symTab.TerminalTexts()),
		nonTermCount: len(nonTerms),
		symTab:       a.symTab,
		precAndAssoc: a.gram.precAndAssoc,
	}
}

// findState returns the state whose kernel consists of exactly the given items.
func (a *testAutomaton) findState(t *testing.T, items ...*lrItem) *lrState {
	t.Helper()

	// Kernel IDs depend on production numbers, so the items are rebuilt from the registered productions.
	registered := make([]*lrItem, len(items))
	for i, item := range items {
		var err error
		registered[i], err = newLR0Item(findProduction(t, a.gram.productionSet, item.prod), item.dot)
		if err != nil {
			t.Fatal(err)
		}
	}
	k, err := newKernel(registered)
	if err != nil {
		t.Fatal(err)
	}
	num, ok := a.lr0.kernel2State[k.id]
	if !ok {
		t.Fatalf("a state was not found; kernel: %v", items)
	}
	return a.lr0.states[num]
}

type testSymbolGenerator func(text string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, symTab *symbol.SymbolTableReader) testSymbolGenerator {
	return func(text string) symbol.Symbol {
		t.Helper()

		sym, ok := symTab.ToSymbol(text)
		if !ok {
			t.Fatalf("symbol was not found: %v", text)
		}
		return sym
	}
}

type testProductionGenerator func(lhs string, rhs ...string) *production

func newTestProductionGenerator(t *testing.T, genSym testSymbolGenerator) testProductionGenerator {
	return func(lhs string, rhs ...string) *production {
		t.Helper()

		rhsSym := []symbol.Symbol{}
		for _, text := range rhs {
			rhsSym = append(rhsSym, genSym(text))
		}
		prod, err := newProduction(genSym(lhs), rhsSym)
		if err != nil {
			t.Fatalf("failed to create a production: %v", err)
		}

		return prod
	}
}

type testLR0ItemGenerator func(lhs string, dot int, rhs ...string) *lrItem

func newTestLR0ItemGenerator(t *testing.T, genProd testProductionGenerator) testLR0ItemGenerator {
	return func(lhs string, dot int, rhs ...string) *lrItem {
		t.Helper()

		prod := genProd(lhs, rhs...)
		item, err := newLR0Item(prod, dot)
		if err != nil {
			t.Fatalf("failed to create a LR0 item: %v", err)
		}

		return item
	}
}

// findProduction returns the registered production equal to the given one, which carries its number.
func findProduction(t *testing.T, prods *productionSet, prod *production) *production {
	t.Helper()

	p, ok := prods.findByID(prod.id)
	if !ok {
		t.Fatalf("a production was not found: %v", prod)
	}
	return p
}

func (a *testAutomaton) termSet(t *testing.T, genSym testSymbolGenerator, names ...string) bitSet {
	t.Helper()

	s := newBitSet(len(a.symTab.TerminalTexts()))
	for _, name := range names {
		s.add(genSym(name).Num().Int())
	}
	return s
}
