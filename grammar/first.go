package grammar

import (
	"fmt"

	"github.com/nihei9/pslrgen/grammar/symbol"
)

// firstEntry is FIRST of a symbol sequence. empty is true when the sequence derives ε, so for a
// single non-terminal it is the nullable flag.
type firstEntry struct {
	symbols map[symbol.Symbol]struct{}
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: map[symbol.Symbol]struct{}{},
		empty:   false,
	}
}

func (e *firstEntry) add(sym symbol.Symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *firstEntry) addEmpty() bool {
	if !e.empty {
		e.empty = true
		return true
	}
	return false
}

func (e *firstEntry) mergeExceptEmpty(target *firstEntry) bool {
	if target == nil {
		return false
	}
	changed := false
	for sym := range target.symbols {
		added := e.add(sym)
		if added {
			changed = true
		}
	}
	return changed
}

func (e *firstEntry) contains(sym symbol.Symbol) bool {
	_, ok := e.symbols[sym]
	return ok
}

type firstSet struct {
	set map[symbol.Symbol]*firstEntry
}

func newFirstSet(prods *productionSet) *firstSet {
	fst := &firstSet{
		set: map[symbol.Symbol]*firstEntry{},
	}
	for _, prod := range prods.getAllProductions() {
		if _, ok := fst.set[prod.lhs]; ok {
			continue
		}
		fst.set[prod.lhs] = newFirstEntry()
	}

	return fst
}

func (fst *firstSet) find(prod *production, head int) (*firstEntry, error) {
	return fst.findBySequence(prod.rhs[min(head, prod.rhsLen):])
}

func (fst *firstSet) findBySequence(syms []symbol.Symbol) (*firstEntry, error) {
	entry := newFirstEntry()
	for _, sym := range syms {
		if sym.IsTerminal() {
			entry.add(sym)
			return entry, nil
		}

		e := fst.findBySymbol(sym)
		if e == nil {
			return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		for s := range e.symbols {
			entry.add(s)
		}
		if !e.empty {
			return entry, nil
		}
	}
	entry.addEmpty()
	return entry, nil
}

func (fst *firstSet) findBySymbol(sym symbol.Symbol) *firstEntry {
	return fst.set[sym]
}

// firstOf returns FIRST of a single symbol. FIRST of a terminal symbol is the symbol itself.
func (fst *firstSet) firstOf(sym symbol.Symbol) *firstEntry {
	if sym.IsTerminal() {
		e := newFirstEntry()
		e.add(sym)
		return e
	}
	if e := fst.findBySymbol(sym); e != nil {
		return e
	}
	return newFirstEntry()
}

func (fst *firstSet) isNullable(sym symbol.Symbol) bool {
	if !sym.IsNonTerminal() {
		return false
	}
	e := fst.findBySymbol(sym)
	return e != nil && e.empty
}

// isNullableSequence reports whether every symbol of a sequence is nullable. An empty sequence is
// nullable.
func (fst *firstSet) isNullableSequence(syms []symbol.Symbol) bool {
	for _, sym := range syms {
		if !fst.isNullable(sym) {
			return false
		}
	}
	return true
}

type firstComContext struct {
	first *firstSet
}

func newFirstComContext(prods *productionSet) *firstComContext {
	return &firstComContext{
		first: newFirstSet(prods),
	}
}

// genFirstSet computes FIRST and the nullable flags by iterating until nothing changes. Each pass
// only adds members, so the iteration terminates even when non-terminals refer to each other.
func genFirstSet(prods *productionSet) (*firstSet, error) {
	cc := newFirstComContext(prods)
	for {
		more := false
		for _, prod := range prods.getAllProductions() {
			e := cc.first.findBySymbol(prod.lhs)
			changed, err := genProdFirstEntry(cc, e, prod)
			if err != nil {
				return nil, err
			}
			if changed {
				more = true
			}
		}
		if !more {
			break
		}
	}
	return cc.first, nil
}

func genProdFirstEntry(cc *firstComContext, acc *firstEntry, prod *production) (bool, error) {
	if prod.isEmpty() {
		return acc.addEmpty(), nil
	}

	changed := false
	for _, sym := range prod.rhs {
		if sym.IsTerminal() {
			return acc.add(sym) || changed, nil
		}

		e := cc.first.findBySymbol(sym)
		if e == nil {
			return false, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		if acc.mergeExceptEmpty(e) {
			changed = true
		}
		if !e.empty {
			return changed, nil
		}
	}
	return acc.addEmpty() || changed, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
