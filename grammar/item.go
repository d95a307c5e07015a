package grammar

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"

	"github.com/nihei9/pslrgen/grammar/symbol"
)

type lrItemID [32]byte

func (id lrItemID) String() string {
	return fmt.Sprintf("%x", id.num())
}

func (id lrItemID) num() uint32 {
	return binary.LittleEndian.Uint32(id[:])
}

type lrItem struct {
	id   lrItemID
	prod *production

	// E → E + T
	//
	// Dot | Dotted Symbol | Item
	// ----+---------------+------------
	// 0   | E             | E →・E + T
	// 1   | +             | E → E・+ T
	// 2   | T             | E → E +・T
	// 3   | Nil           | E → E + T・
	dot          int
	dottedSymbol symbol.Symbol

	// When initial is true, the LHS of the production is the augmented start symbol and dot is 0.
	// It looks like $accept →・S $end.
	initial bool

	// When reducible is true, the item looks like E → E + T・.
	reducible bool

	// When kernel is true, the item is kernel item.
	kernel bool
}

func newLR0Item(prod *production, dot int) (*lrItem, error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}

	if dot < 0 || dot > prod.rhsLen {
		return nil, fmt.Errorf("dot must be between 0 and %v", prod.rhsLen)
	}

	var id lrItemID
	{
		b := []byte{}
		b = append(b, prod.id[:]...)
		bDot := make([]byte, 8)
		binary.LittleEndian.PutUint64(bDot, uint64(dot))
		b = append(b, bDot...)
		id = sha256.Sum256(b)
	}

	dottedSymbol := symbol.SymbolNil
	if dot < prod.rhsLen {
		dottedSymbol = prod.rhs[dot]
	}

	initial := false
	if prod.lhs.IsStart() && dot == 0 {
		initial = true
	}

	reducible := false
	if dot == prod.rhsLen {
		reducible = true
	}

	kernel := false
	if initial || dot > 0 {
		kernel = true
	}

	item := &lrItem{
		id:           id,
		prod:         prod,
		dot:          dot,
		dottedSymbol: dottedSymbol,
		initial:      initial,
		reducible:    reducible,
		kernel:       kernel,
	}

	return item, nil
}

func (item *lrItem) String() string {
	return fmt.Sprintf("(%v, %v)", item.prod.num, item.dot)
}

// beginningOfRule reports whether the dot is at the head of the RHS.
func (item *lrItem) beginningOfRule() bool {
	return item.dot == 0
}

// nextNextSymbol returns the symbol following the dotted symbol.
func (item *lrItem) nextNextSymbol() symbol.Symbol {
	if item.dot+1 >= item.prod.rhsLen {
		return symbol.SymbolNil
	}
	return item.prod.rhs[item.dot+1]
}

// previousSymbol returns the symbol right before the dot.
func (item *lrItem) previousSymbol() symbol.Symbol {
	if item.dot == 0 {
		return symbol.SymbolNil
	}
	return item.prod.rhs[item.dot-1]
}

// restSymbolCount returns the number of symbols following the dot.
func (item *lrItem) restSymbolCount() int {
	return item.prod.rhsLen - item.dot
}

func (item *lrItem) advance() (*lrItem, error) {
	return newLR0Item(item.prod, item.dot+1)
}

func compareItems(a, b *lrItem) bool {
	if a.prod.num != b.prod.num {
		return a.prod.num < b.prod.num
	}
	return a.dot < b.dot
}

type kernelID [32]byte

func (id kernelID) String() string {
	return fmt.Sprintf("%x", binary.LittleEndian.Uint32(id[:]))
}

type kernel struct {
	id    kernelID
	items []*lrItem
}

func newKernel(items []*lrItem) (*kernel, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("a kernel need at least one item")
	}

	// Remove duplicates from items.
	var sortedItems []*lrItem
	{
		m := map[lrItemID]*lrItem{}
		for _, item := range items {
			if !item.kernel {
				return nil, fmt.Errorf("not a kernel item: %v", item)
			}
			m[item.id] = item
		}
		sortedItems = []*lrItem{}
		for _, item := range m {
			sortedItems = append(sortedItems, item)
		}
		sort.Slice(sortedItems, func(i, j int) bool {
			return compareItems(sortedItems[i], sortedItems[j])
		})
	}

	var id kernelID
	{
		b := []byte{}
		for _, item := range sortedItems {
			b = append(b, item.id[:]...)
		}
		id = sha256.Sum256(b)
	}

	return &kernel{
		id:    id,
		items: sortedItems,
	}, nil
}

type stateNum int

const (
	stateNumInitial = stateNum(0)
	stateNumNil     = stateNum(-1)
)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return strconv.Itoa(int(n))
}

func (n stateNum) next() stateNum {
	return stateNum(n + 1)
}

type transition struct {
	symbol symbol.Symbol
	next   stateNum
}

type lrState struct {
	*kernel
	num stateNum

	// items is the closure of the kernel. The kernel items come first, and the other items follow
	// in the order the closure found them.
	items []*lrItem

	// shifts and goTos are sorted by symbol.
	shifts []*transition
	goTos  []*transition

	// reducible holds the reducible productions in ascending order of their numbers.
	reducible []*production

	// When isErrorTrapper is true, the state has an item like `A → α・error β`.
	isErrorTrapper bool
}

func (s *lrState) findTransition(sym symbol.Symbol) (stateNum, bool) {
	trans := s.shifts
	if sym.IsNonTerminal() {
		trans = s.goTos
	}
	i := sort.Search(len(trans), func(i int) bool {
		return trans[i].symbol >= sym
	})
	if i < len(trans) && trans[i].symbol == sym {
		return trans[i].next, true
	}
	return stateNumNil, false
}

func (s *lrState) findItem(prod *production, dot int) (*lrItem, bool) {
	for _, item := range s.items {
		if item.prod.id == prod.id && item.dot == dot {
			return item, true
		}
	}
	return nil, false
}
