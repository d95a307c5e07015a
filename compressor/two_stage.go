package compressor

import (
	spec "github.com/nihei9/pslrgen/spec/grammar"
)

// TwoStageTable shares identical rows first, and then overlays the unique rows by row
// displacement. LALR tables have many identical rows, and the remaining rows are sparse.
type TwoStageTable struct {
	RowNums          []int
	OriginalRowCount int
	OriginalColCount int
	rd               *RowDisplacementTable
}

func NewTwoStageTable(emptyValue int) *TwoStageTable {
	return &TwoStageTable{
		rd: NewRowDisplacementTable(emptyValue),
	}
}

func (tab *TwoStageTable) Compress(orig *OriginalTable) error {
	ue := NewUniqueEntriesTable()
	err := ue.Compress(orig)
	if err != nil {
		return err
	}
	unique, err := NewOriginalTable(ue.UniqueEntries, orig.colCount)
	if err != nil {
		return err
	}
	err = tab.rd.Compress(unique)
	if err != nil {
		return err
	}

	tab.RowNums = ue.RowNums
	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount

	return nil
}

func (tab *TwoStageTable) Lookup(row, col int) (int, error) {
	if err := checkRange(tab.OriginalRowCount, tab.OriginalColCount, row, col); err != nil {
		return tab.rd.EmptyValue, err
	}
	return tab.rd.Lookup(tab.RowNums[row], col)
}

func (tab *TwoStageTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

// Compact compresses a table of colCount columns with a TwoStageTable.
func Compact(entries []int, colCount int, emptyValue int) (*spec.CompactTable, error) {
	orig, err := NewOriginalTable(entries, colCount)
	if err != nil {
		return nil, err
	}
	tab := NewTwoStageTable(emptyValue)
	err = tab.Compress(orig)
	if err != nil {
		return nil, err
	}
	return &spec.CompactTable{
		RowNums:          tab.RowNums,
		OriginalRowCount: tab.OriginalRowCount,
		OriginalColCount: tab.OriginalColCount,
		EmptyValue:       emptyValue,
		Entries:          tab.rd.Entries,
		Bounds:           tab.rd.Bounds,
		RowDisplacement:  tab.rd.RowDisplacement,
	}, nil
}

// LookupCompact reads an entry of a table Compact compressed.
func LookupCompact(tab *spec.CompactTable, row, col int) (int, error) {
	if err := checkRange(tab.OriginalRowCount, tab.OriginalColCount, row, col); err != nil {
		return tab.EmptyValue, err
	}
	d := tab.RowDisplacement[tab.RowNums[row]]
	if tab.Bounds[d+col] != tab.RowNums[row] {
		return tab.EmptyValue, nil
	}
	return tab.Entries[d+col], nil
}
