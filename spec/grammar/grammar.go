package grammar

import mlspec "github.com/nihei9/maleeni/spec"

type CompiledGrammar struct {
	Name      string         `json:"name"`
	Syntactic *SyntacticSpec `json:"syntactic"`
	Scanner   *ScannerSpec   `json:"scanner,omitempty"`
}

// CompactTable is an action or goto table compressed in two steps: identical rows are shared, and
// the unique rows are overlaid by row displacement.
type CompactTable struct {
	RowNums          []int `json:"row_nums"`
	OriginalRowCount int   `json:"original_row_count"`
	OriginalColCount int   `json:"original_col_count"`
	EmptyValue       int   `json:"empty_value"`
	Entries          []int `json:"entries"`
	Bounds           []int `json:"bounds"`
	RowDisplacement  []int `json:"row_displacement"`
}

// SyntacticSpec holds the parsing table. An action entry is a shift when it is negative (the next
// state multiplied by -1), a reduce when it is positive (a production number), and an error when
// it is 0.
type SyntacticSpec struct {
	Action                  []int         `json:"action"`
	GoTo                    []int         `json:"goto"`
	CompactAction           *CompactTable `json:"compact_action,omitempty"`
	CompactGoTo             *CompactTable `json:"compact_goto,omitempty"`
	DefaultReductions       []int         `json:"default_reductions"`
	StateCount              int           `json:"state_count"`
	InitialState            int           `json:"initial_state"`
	AcceptState             int           `json:"accept_state"`
	StartProduction         int           `json:"start_production"`
	LHSSymbols              []int         `json:"lhs_symbols"`
	AlternativeSymbolCounts []int         `json:"alternative_symbol_counts"`
	Terminals               []string      `json:"terminals"`
	TerminalAliases         []string      `json:"terminal_aliases"`
	TerminalCount           int           `json:"terminal_count"`
	NonTerminals            []string      `json:"non_terminals"`
	NonTerminalCount        int           `json:"non_terminal_count"`
	EOFSymbol               int           `json:"eof_symbol"`
	ErrorSymbol             int           `json:"error_symbol"`
	ErrorTrapperStates      []int         `json:"error_trapper_states"`
}

// ScannerSpec is the context-aware scanner. Contexts[c][f] is the terminal the scanner selects when
// it reaches the FSA state f in the scanner context c, or 0 when it selects nothing there.
// Patterns holds the pattern of each terminal indexed by terminal number.
type ScannerSpec struct {
	InitialState   int             `json:"initial_state"`
	States         []*ScannerState `json:"states"`
	Contexts       [][]int         `json:"contexts"`
	StateToContext []int           `json:"state_to_context"`
	Patterns       []string        `json:"patterns"`
	LongestMatch   *LongestMatch   `json:"longest_match,omitempty"`
}

// LongestMatch is a classic longest-match lexer compiled from the same patterns. KindToTerminal maps
// a kind ID of the lexer to a terminal number.
type LongestMatch struct {
	Spec           *mlspec.CompiledLexSpec `json:"spec"`
	KindToTerminal []int                   `json:"kind_to_terminal"`
}
