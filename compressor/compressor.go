package compressor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

// ErrOutOfRange is returned by a lookup outside the original table.
var ErrOutOfRange = errors.New("indexes are out of range")

// OriginalTable is a row-major view of a parsing table: ACTION rows are states and columns are
// terminals, GOTO columns are non-terminals.
type OriginalTable struct {
	entries  []int
	rowCount int
	colCount int
}

func NewOriginalTable(entries []int, colCount int) (*OriginalTable, error) {
	switch {
	case len(entries) == 0:
		return nil, fmt.Errorf("a table needs at least one entry")
	case colCount <= 0:
		return nil, fmt.Errorf("a table needs at least one column; column count: %v", colCount)
	case len(entries)%colCount != 0:
		return nil, fmt.Errorf("%v entries don't divide into rows of %v columns", len(entries), colCount)
	}
	return &OriginalTable{
		entries:  entries,
		rowCount: len(entries) / colCount,
		colCount: colCount,
	}, nil
}

func (t *OriginalTable) row(row int) []int {
	return t.entries[row*t.colCount : (row+1)*t.colCount]
}

// rowKey encodes a row into a string usable as a map key. Shift actions make entries negative.
func (t *OriginalTable) rowKey(row int) string {
	buf := make([]byte, 0, t.colCount*binary.MaxVarintLen64)
	for _, e := range t.row(row) {
		buf = binary.AppendVarint(buf, int64(e))
	}
	return string(buf)
}

func checkRange(rowCount, colCount, row, col int) error {
	if row < 0 || row >= rowCount || col < 0 || col >= colCount {
		return fmt.Errorf("%w: [%v, %v] of a %vx%v table", ErrOutOfRange, row, col, rowCount, colCount)
	}
	return nil
}

type Compressor interface {
	Compress(orig *OriginalTable) error
	Lookup(row, col int) (int, error)
	OriginalTableSize() (int, int)
}

var (
	_ Compressor = &UniqueEntriesTable{}
	_ Compressor = &RowDisplacementTable{}
	_ Compressor = &TwoStageTable{}
)

// UniqueEntriesTable stores each distinct row once. States of an LALR automaton often share
// their whole ACTION row, error recovery states especially.
type UniqueEntriesTable struct {
	UniqueEntries    []int
	RowNums          []int
	OriginalRowCount int
	OriginalColCount int
}

func NewUniqueEntriesTable() *UniqueEntriesTable {
	return &UniqueEntriesTable{}
}

func (tab *UniqueEntriesTable) Lookup(row, col int) (int, error) {
	if err := checkRange(tab.OriginalRowCount, tab.OriginalColCount, row, col); err != nil {
		return 0, err
	}
	return tab.UniqueEntries[tab.RowNums[row]*tab.OriginalColCount+col], nil
}

func (tab *UniqueEntriesTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

// UniqueRowCount returns the number of distinct rows.
func (tab *UniqueEntriesTable) UniqueRowCount() int {
	if tab.OriginalColCount == 0 {
		return 0
	}
	return len(tab.UniqueEntries) / tab.OriginalColCount
}

func (tab *UniqueEntriesTable) Compress(orig *OriginalTable) error {
	tab.UniqueEntries = nil
	tab.RowNums = make([]int, orig.rowCount)
	seen := map[string]int{}
	for row := 0; row < orig.rowCount; row++ {
		key := orig.rowKey(row)
		num, ok := seen[key]
		if !ok {
			num = len(seen)
			seen[key] = num
			tab.UniqueEntries = append(tab.UniqueEntries, orig.row(row)...)
		}
		tab.RowNums[row] = num
	}
	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount
	return nil
}

// ForbiddenValue marks a slot of Bounds no row owns.
const ForbiddenValue = -1

// RowDisplacementTable overlays sparse rows on one array. Bounds[i] names the row owning
// Entries[i], so a lookup landing on another row's slot reads as EmptyValue.
type RowDisplacementTable struct {
	OriginalRowCount int
	OriginalColCount int
	EmptyValue       int
	Entries          []int
	Bounds           []int
	RowDisplacement  []int
}

func NewRowDisplacementTable(emptyValue int) *RowDisplacementTable {
	return &RowDisplacementTable{
		EmptyValue: emptyValue,
	}
}

func (tab *RowDisplacementTable) Lookup(row int, col int) (int, error) {
	if err := checkRange(tab.OriginalRowCount, tab.OriginalColCount, row, col); err != nil {
		return tab.EmptyValue, err
	}
	d := tab.RowDisplacement[row]
	if tab.Bounds[d+col] != row {
		return tab.EmptyValue, nil
	}
	return tab.Entries[d+col], nil
}

func (tab *RowDisplacementTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

// Compress places the densest rows first. Each row takes the smallest displacement at which its
// non-empty columns land on free slots. A row without entries keeps displacement 0.
func (tab *RowDisplacementTable) Compress(orig *OriginalTable) error {
	type denseRow struct {
		row  int
		cols []int
	}
	rows := make([]denseRow, orig.rowCount)
	for row := 0; row < orig.rowCount; row++ {
		rows[row].row = row
		for col, e := range orig.row(row) {
			if e != tab.EmptyValue {
				rows[row].cols = append(rows[row].cols, col)
			}
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return len(rows[i].cols) > len(rows[j].cols)
	})

	entries := make([]int, 0, orig.colCount)
	bounds := make([]int, 0, orig.colCount)
	grow := func(size int) {
		for len(entries) < size {
			entries = append(entries, tab.EmptyValue)
			bounds = append(bounds, ForbiddenValue)
		}
	}
	fits := func(disp int, cols []int) bool {
		for _, col := range cols {
			if bounds[disp+col] != ForbiddenValue {
				return false
			}
		}
		return true
	}
	grow(orig.colCount)

	rowDisplacement := make([]int, orig.rowCount)
	for _, r := range rows {
		if len(r.cols) == 0 {
			continue
		}
		disp := 0
		for {
			grow(disp + orig.colCount)
			if fits(disp, r.cols) {
				break
			}
			disp++
		}
		rowDisplacement[r.row] = disp
		for _, col := range r.cols {
			entries[disp+col] = orig.entries[r.row*orig.colCount+col]
			bounds[disp+col] = r.row
		}
	}

	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount
	tab.Entries = entries
	tab.Bounds = bounds
	tab.RowDisplacement = rowDisplacement
	return nil
}
