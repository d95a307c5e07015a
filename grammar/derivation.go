package grammar

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nihei9/pslrgen/grammar/symbol"
	spec "github.com/nihei9/pslrgen/spec/grammar"
)

const dotMark = "•"

// derivation is a node of a derivation tree. left derives the dotted symbol of item, and right,
// when present, is a chain whose left derives the symbol after the dotted symbol up to the
// conflict symbol.
type derivation struct {
	item  *lrItem
	left  *derivation
	right *derivation

	// empty holds the positions of the RHS of item deriving the empty string.
	empty map[int]struct{}
}

func (d *derivation) deriveEmpty(pos int) {
	if d.empty == nil {
		d.empty = map[int]struct{}{}
	}
	d.empty[pos] = struct{}{}
}

func (d *derivation) derivesEmpty(pos int) bool {
	_, ok := d.empty[pos]
	return ok
}

func newDerivation(item *lrItem, left *derivation) *derivation {
	return &derivation{
		item: item,
		left: left,
	}
}

func (d *derivation) toSpec() *spec.Derivation {
	if d == nil {
		return nil
	}
	var empty []int
	for pos := range d.empty {
		empty = append(empty, pos)
	}
	sort.Ints(empty)
	return &spec.Derivation{
		Production: d.item.prod.num.Int(),
		Dot:        d.item.dot,
		Left:       d.left.toSpec(),
		Right:      d.right.toSpec(),
		Empty:      empty,
	}
}

type derivationRenderer struct {
	symTab *symbol.SymbolTableReader
	lines  []string
}

// renderDerivation renders a derivation tree into lines. Each line holds the nodes of one depth,
// and a node starts at the column of the symbol it derives.
//
//	1:  stmt                                        $end
//	    3: IF expr THEN stmt                        ELSE stmt
//	                    2: IF expr THEN stmt  •
func renderDerivation(d *derivation, symTab *symbol.SymbolTableReader) []string {
	if d == nil {
		return nil
	}
	r := &derivationRenderer{
		symTab: symTab,
	}
	r.render(d, 0, 0)
	for i, l := range r.lines {
		r.lines[i] = strings.TrimRight(l, " ")
	}
	return r.lines
}

func (r *derivationRenderer) render(d *derivation, offset int, index int) int {
	if index < len(r.lines) {
		r.pad(index, offset)
	} else {
		r.lines = append(r.lines, strings.Repeat(" ", offset))
	}

	item := d.item
	before := r.names(d, 0, item.dot)
	after := r.names(d, item.dot, item.prod.rhsLen)

	r.lines[index] += fmt.Sprintf("%v: %v ", item.prod.num, strings.Join(before, " "))
	if d.left == nil {
		r.lines[index] += fmt.Sprintf(" %v %v ", dotMark, strings.Join(after, " "))
		return width(r.lines[index])
	}

	start := width(r.lines[index])
	r.lines[index] += after[0]
	length := r.render(d.left, start, index+1)
	r.pad(index, length)

	if d.right != nil && d.right.left != nil {
		length := r.render(d.right.left, width(r.lines[index]), index+1)
		r.lines[index] += strings.Join(after[1:], " ") + " "
		r.pad(index, length)
	} else if len(after) > 1 {
		r.lines[index] += strings.Join(after[1:], " ") + " "
	}

	return width(r.lines[index])
}

func (r *derivationRenderer) pad(index int, length int) {
	if w := width(r.lines[index]); w < length {
		r.lines[index] += strings.Repeat(" ", length-w)
	}
}

func (r *derivationRenderer) names(d *derivation, from, to int) []string {
	var names []string
	for i := from; i < to; i++ {
		name := r.symTab.DisplayName(d.item.prod.rhs[i])
		if d.derivesEmpty(i) {
			name += "(ε)"
		}
		names = append(names, name)
	}
	return names
}

func width(s string) int {
	return utf8.RuneCountInString(s)
}

// derivationSentence returns the leaves of a derivation tree with a dot at the conflict point.
// The end-of-input symbol is left out.
func derivationSentence(d *derivation, symTab *symbol.SymbolTableReader) string {
	if d == nil {
		return ""
	}
	var syms []string
	for _, l := range d.leaves() {
		switch {
		case l.sym.IsNil():
			syms = append(syms, dotMark)
		case l.sym.IsEOF():
		default:
			syms = append(syms, symTab.DisplayName(l.sym))
		}
	}
	return strings.Join(syms, " ")
}

// derivationLeaf is a symbol of a sentence and the position in the node it comes from. The dot has
// symbol.SymbolNil and no owner.
type derivationLeaf struct {
	sym   symbol.Symbol
	owner *derivation
	pos   int
}

func (d *derivation) rhsLeaves(from, to int) []derivationLeaf {
	var leaves []derivationLeaf
	for i := from; i < to; i++ {
		if d.derivesEmpty(i) {
			continue
		}
		leaves = append(leaves, derivationLeaf{
			sym:   d.item.prod.rhs[i],
			owner: d,
			pos:   i,
		})
	}
	return leaves
}

// leaves flattens the main chain of a tree.
func (d *derivation) leaves() []derivationLeaf {
	item := d.item
	leaves := d.rhsLeaves(0, item.dot)
	if d.left == nil {
		leaves = append(leaves, derivationLeaf{sym: symbol.SymbolNil})
		return append(leaves, d.rhsLeaves(item.dot, item.prod.rhsLen)...)
	}

	leaves = append(leaves, d.left.leaves()...)
	if d.right != nil && d.right.left != nil && item.dot+2 <= item.prod.rhsLen {
		leaves = append(leaves, d.right.left.rightLeaves(0)...)
		return append(leaves, d.rhsLeaves(item.dot+2, item.prod.rhsLen)...)
	}
	return append(leaves, d.rhsLeaves(item.dot+1, item.prod.rhsLen)...)
}

// rightLeaves flattens a right branch, omitting the first skip symbols of the node. A child of the
// same rule one position ahead means the symbol between them derives the empty string.
func (d *derivation) rightLeaves(skip int) []derivationLeaf {
	item := d.item
	leaves := d.rhsLeaves(skip, item.dot)
	if d.left == nil {
		return append(leaves, d.rhsLeaves(item.dot, item.prod.rhsLen)...)
	}
	if d.left.item.prod == item.prod && d.left.item.dot == item.dot+1 {
		return append(leaves, d.left.rightLeaves(d.left.item.dot)...)
	}
	leaves = append(leaves, d.left.rightLeaves(0)...)
	return append(leaves, d.rhsLeaves(item.dot+1, item.prod.rhsLen)...)
}

func afterDot(leaves []derivationLeaf) []derivationLeaf {
	for i, l := range leaves {
		if l.owner == nil {
			return leaves[i+1:]
		}
	}
	return nil
}

// unifyDerivations derives nullable symbols after the dot to the empty string until both trees
// give the same sentence. It reports whether they do; on false neither tree changes.
func unifyDerivations(d1, d2 *derivation, first *firstSet) bool {
	if d1 == nil || d2 == nil {
		return false
	}
	a := afterDot(d1.leaves())
	b := afterDot(d2.leaves())
	nullable := func(l derivationLeaf) bool {
		return l.sym.IsNonTerminal() && first.isNullable(l.sym)
	}

	// ok[i][j] reports whether a[i:] and b[j:] can give the same symbols.
	n, m := len(a), len(b)
	ok := make([][]bool, n+1)
	for i := range ok {
		ok[i] = make([]bool, m+1)
	}
	ok[n][m] = true
	for i := n; i >= 0; i-- {
		for j := m; j >= 0; j-- {
			if i == n && j == m {
				continue
			}
			ok[i][j] = (i < n && j < m && a[i].sym == b[j].sym && ok[i+1][j+1]) ||
				(i < n && nullable(a[i]) && ok[i+1][j]) ||
				(j < m && nullable(b[j]) && ok[i][j+1])
		}
	}
	if !ok[0][0] {
		return false
	}

	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && a[i].sym == b[j].sym && ok[i+1][j+1]:
			i++
			j++
		case i < n && nullable(a[i]) && ok[i+1][j]:
			a[i].owner.deriveEmpty(a[i].pos)
			i++
		default:
			b[j].owner.deriveEmpty(b[j].pos)
			j++
		}
	}
	return true
}
