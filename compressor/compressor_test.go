package compressor

import (
	"errors"
	"fmt"
	"testing"
)

func TestCompressor_Compress(t *testing.T) {
	x := 0 // an empty value

	allCompressors := func() []Compressor {
		return []Compressor{
			NewUniqueEntriesTable(),
			NewRowDisplacementTable(x),
			NewTwoStageTable(x),
		}
	}

	tests := []struct {
		original    []int
		rowCount    int
		colCount    int
		compressors []Compressor
	}{
		{
			original: []int{
				1, 1, 1, 1, 1,
				1, 1, 1, 1, 1,
				1, 1, 1, 1, 1,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
		{
			original: []int{
				x, x, x, x, x,
				x, x, x, x, x,
				x, x, x, x, x,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
		{
			original: []int{
				1, 1, 1, 1, 1,
				x, x, x, x, x,
				1, 1, 1, 1, 1,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
		{
			original: []int{
				1, x, 1, 1, 1,
				1, 1, x, 1, 1,
				1, 1, 1, x, 1,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
		{
			original: []int{
				-3, x, 2, x, -1200,
				x, x, x, x, x,
				-3, x, 2, x, -1200,
				x, -4, x, x, 2,
			},
			rowCount:    4,
			colCount:    5,
			compressors: allCompressors(),
		},
	}
	for i, tt := range tests {
		for _, comp := range tt.compressors {
			t.Run(fmt.Sprintf("%T #%v", comp, i), func(t *testing.T) {
				dup := make([]int, len(tt.original))
				copy(dup, tt.original)

				orig, err := NewOriginalTable(tt.original, tt.colCount)
				if err != nil {
					t.Fatal(err)
				}
				err = comp.Compress(orig)
				if err != nil {
					t.Fatal(err)
				}
				rowCount, colCount := comp.OriginalTableSize()
				if rowCount != tt.rowCount || colCount != tt.colCount {
					t.Fatalf("unexpected table size; want: %vx%v, got: %vx%v", tt.rowCount, tt.colCount, rowCount, colCount)
				}
				for i := 0; i < tt.rowCount; i++ {
					for j := 0; j < tt.colCount; j++ {
						v, err := comp.Lookup(i, j)
						if err != nil {
							t.Fatal(err)
						}
						expected := tt.original[i*tt.colCount+j]
						if v != expected {
							t.Fatalf("unexpected entry (%v, %v); want: %v, got: %v", i, j, expected, v)
						}
					}
				}

				// Calling with out-of-range indexes should be an error.
				if _, err := comp.Lookup(0, -1); err == nil {
					t.Fatalf("expected error didn't occur (0, -1)")
				}
				if _, err := comp.Lookup(-1, 0); err == nil {
					t.Fatalf("expected error didn't occur (-1, 0)")
				}
				if _, err := comp.Lookup(rowCount-1, colCount); err == nil {
					t.Fatalf("expected error didn't occur (%v, %v)", rowCount-1, colCount)
				}
				if _, err := comp.Lookup(rowCount, colCount-1); err == nil {
					t.Fatalf("expected error didn't occur (%v, %v)", rowCount, colCount-1)
				}

				// The compressor must not break the original table.
				for i := 0; i < tt.rowCount; i++ {
					for j := 0; j < tt.colCount; j++ {
						idx := i*tt.colCount + j
						if tt.original[idx] != dup[idx] {
							t.Fatalf("the original table is broken (%v, %v); want: %v, got: %v", i, j, dup[idx], tt.original[idx])
						}
					}
				}
			})
		}
	}
}

func TestCompact(t *testing.T) {
	x := 0
	original := []int{
		-2, x, x, 3,
		x, x, x, x,
		-2, x, x, 3,
		x, -5, 4, x,
		x, -5, 4, x,
	}
	tab, err := Compact(original, 4, x)
	if err != nil {
		t.Fatal(err)
	}
	if tab.OriginalRowCount != 5 || tab.OriginalColCount != 4 {
		t.Fatalf("unexpected table size; want: 5x4, got: %vx%v", tab.OriginalRowCount, tab.OriginalColCount)
	}
	if tab.RowNums[0] != tab.RowNums[2] || tab.RowNums[3] != tab.RowNums[4] {
		t.Fatalf("identical rows must share a row number: %v", tab.RowNums)
	}
	for i := 0; i < 5; i++ {
		for j := 0; j < 4; j++ {
			v, err := LookupCompact(tab, i, j)
			if err != nil {
				t.Fatal(err)
			}
			if v != original[i*4+j] {
				t.Fatalf("unexpected entry (%v, %v); want: %v, got: %v", i, j, original[i*4+j], v)
			}
		}
	}
	if _, err := LookupCompact(tab, 5, 0); err == nil {
		t.Fatalf("expected error didn't occur (5, 0)")
	}
}

func TestRowDisplacementTable_FillsHoles(t *testing.T) {
	x := 0
	tests := []struct {
		caption    string
		original   []int
		colCount   int
		entryCount int
	}{
		{
			caption: "interleaved rows share displacement 0",
			original: []int{
				1, x, 1, x,
				x, 2, x, 2,
			},
			colCount:   4,
			entryCount: 4,
		},
		{
			caption: "a sparse row fills a hole left by denser rows",
			original: []int{
				1, 1, x, 1,
				x, x, 2, x,
				x, x, x, x,
			},
			colCount:   4,
			entryCount: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			orig, err := NewOriginalTable(tt.original, tt.colCount)
			if err != nil {
				t.Fatal(err)
			}
			tab := NewRowDisplacementTable(x)
			if err := tab.Compress(orig); err != nil {
				t.Fatal(err)
			}
			if len(tab.Entries) != tt.entryCount {
				t.Fatalf("unexpected entry count; want: %v, got: %v (%v)", tt.entryCount, len(tab.Entries), tab.Entries)
			}
			for i := 0; i < len(tt.original)/tt.colCount; i++ {
				for j := 0; j < tt.colCount; j++ {
					v, err := tab.Lookup(i, j)
					if err != nil {
						t.Fatal(err)
					}
					if v != tt.original[i*tt.colCount+j] {
						t.Fatalf("unexpected entry (%v, %v); want: %v, got: %v", i, j, tt.original[i*tt.colCount+j], v)
					}
				}
			}
		})
	}
}

func TestUniqueEntriesTable_UniqueRowCount(t *testing.T) {
	x := 0
	orig, err := NewOriginalTable([]int{
		-1, x, 2,
		x, x, x,
		-1, x, 2,
		x, x, x,
	}, 3)
	if err != nil {
		t.Fatal(err)
	}
	tab := NewUniqueEntriesTable()
	if err := tab.Compress(orig); err != nil {
		t.Fatal(err)
	}
	if tab.UniqueRowCount() != 2 {
		t.Fatalf("unexpected unique row count; want: 2, got: %v", tab.UniqueRowCount())
	}
	if _, err := tab.Lookup(4, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrOutOfRange, err)
	}
}

func TestNewOriginalTable_Errors(t *testing.T) {
	tests := []struct {
		entries  []int
		colCount int
	}{
		{entries: nil, colCount: 1},
		{entries: []int{1, 2}, colCount: 0},
		{entries: []int{1, 2, 3}, colCount: 2},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
			if _, err := NewOriginalTable(tt.entries, tt.colCount); err == nil {
				t.Fatalf("expected error didn't occur")
			}
		})
	}
}
