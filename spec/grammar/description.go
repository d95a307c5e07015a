package grammar

type Terminal struct {
	Number        int    `json:"number"`
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Alias         string `json:"alias,omitempty"`
	Tag           string `json:"tag,omitempty"`
	Pattern       string `json:"pattern,omitempty"`
	Precedence    int    `json:"prec"`
	Associativity string `json:"assoc"`
}

type NonTerminal struct {
	Number   int    `json:"number"`
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Tag      string `json:"tag,omitempty"`
	Nullable bool   `json:"nullable"`
	First    []int  `json:"first"`
}

// Production represents a production. Positive values of RHS are terminal numbers, and negative
// values are non-terminal numbers multiplied by -1.
type Production struct {
	Number        int    `json:"number"`
	LHS           int    `json:"lhs"`
	RHS           []int  `json:"rhs"`
	Precedence    int    `json:"prec"`
	Associativity string `json:"assoc"`
	Action        string `json:"action,omitempty"`
}

type Item struct {
	Production int `json:"production"`
	Dot        int `json:"dot"`
}

type Transition struct {
	Symbol int `json:"symbol"`
	State  int `json:"state"`
}

// Reduce represents a reduce action. When Default is true, the state has no shift action and
// this is its only reduce action, so the parser reduces regardless of the look-ahead symbol.
type Reduce struct {
	LookAhead  []int `json:"look_ahead"`
	Production int   `json:"production"`
	Default    bool  `json:"default"`
}

// SRConflict is a shift/reduce conflict that precedence and associativity could not resolve.
// The parser adopts the shift action.
type SRConflict struct {
	Symbols    []int `json:"symbols"`
	Production int   `json:"production"`
}

// RRConflict is a reduce/reduce conflict. The parser adopts the production declared first.
type RRConflict struct {
	Symbols           []int `json:"symbols"`
	Production1       int   `json:"production_1"`
	Production2       int   `json:"production_2"`
	AdoptedProduction int   `json:"adopted_production"`
}

type ResolvedConflict struct {
	Symbol         int    `json:"symbol"`
	Production     int    `json:"production"`
	Which          string `json:"which"`
	SamePrecedence bool   `json:"same_prec"`
	Message        string `json:"message"`
}

// Derivation is a node of a derivation tree. Left expands the symbol right after the dot, and
// Right, when present, derives the symbol following it up to the conflict symbol.
type Derivation struct {
	Production int         `json:"production"`
	Dot        int         `json:"dot"`
	Left       *Derivation `json:"left,omitempty"`
	Right      *Derivation `json:"right,omitempty"`

	// Empty lists the RHS positions deriving the empty string.
	Empty []int `json:"empty,omitempty"`
}

type Counterexample struct {
	Kind         string      `json:"kind"`
	Symbol       int         `json:"symbol"`
	Label1       string      `json:"label_1"`
	Example1     string      `json:"example_1"`
	Derivation1  *Derivation `json:"derivation_1"`
	Rendered1    []string    `json:"rendered_1"`
	Label2       string      `json:"label_2"`
	Example2     string      `json:"example_2"`
	Derivation2  *Derivation `json:"derivation_2"`
	Rendered2    []string    `json:"rendered_2"`
	ConflictItem []*Item     `json:"conflict_items"`
}

type State struct {
	Number           int                 `json:"number"`
	Kernel           []*Item             `json:"kernel"`
	Closure          []*Item             `json:"closure"`
	Shift            []*Transition       `json:"shift"`
	Reduce           []*Reduce           `json:"reduce"`
	GoTo             []*Transition       `json:"goto"`
	Errors           []int               `json:"errors"`
	SRConflict       []*SRConflict       `json:"sr_conflict"`
	RRConflict       []*RRConflict       `json:"rr_conflict"`
	ResolvedConflict []*ResolvedConflict `json:"resolved_conflict"`
	Counterexamples  []*Counterexample   `json:"counterexamples"`
}

type ConflictSummary struct {
	SRConflictCount int  `json:"sr_conflict_count"`
	RRConflictCount int  `json:"rr_conflict_count"`
	ExpectedSR      *int `json:"expected_sr,omitempty"`
	ExpectedRR      *int `json:"expected_rr,omitempty"`
}

type ScannerTransition struct {
	From int `json:"from"`
	To   int `json:"to"`
	Next int `json:"next"`
}

type ScannerState struct {
	Number      int                  `json:"number"`
	Accepts     []int                `json:"accepts"`
	Transitions []*ScannerTransition `json:"transitions"`
}

type ScannerAcceptsEntry struct {
	FSAState int `json:"fsa_state"`
	Token    int `json:"token"`
}

type ScannerAccepts struct {
	State   int                    `json:"state"`
	Entries []*ScannerAcceptsEntry `json:"entries"`
}

const (
	InadequacyKindLR   = "lr_relative"
	InadequacyKindPSLR = "pslr_relative"
)

// Inadequacy is a reason a state cannot be used as is. An lr_relative inadequacy is a parser
// conflict on Symbols between Productions. A pslr_relative inadequacy means the state merges the
// Origins, which need the different Tokens at the FSA state FSAState.
type Inadequacy struct {
	Kind        string `json:"kind"`
	State       int    `json:"state"`
	Symbols     []int  `json:"symbols,omitempty"`
	Productions []int  `json:"productions,omitempty"`
	Origins     []int  `json:"origins,omitempty"`
	FSAState    int    `json:"fsa_state,omitempty"`
	Tokens      []int  `json:"tokens,omitempty"`
}

type PSLRReport struct {
	InitialFSAState int               `json:"initial_fsa_state"`
	FSA             []*ScannerState   `json:"fsa"`
	Accepts         []*ScannerAccepts `json:"accepts"`
	Contexts        [][]int           `json:"contexts"`
	Inadequacies    []*Inadequacy     `json:"inadequacies"`
}

type Report struct {
	Name         string           `json:"name"`
	Terminals    []*Terminal      `json:"terminals"`
	NonTerminals []*NonTerminal   `json:"non_terminals"`
	Productions  []*Production    `json:"productions"`
	States       []*State         `json:"states"`
	Summary      *ConflictSummary `json:"summary"`
	PSLR         *PSLRReport      `json:"pslr,omitempty"`
}
