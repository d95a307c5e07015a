package pslr

import (
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/nihei9/pslrgen/grammar/lexical"
)

type fsaVisit struct {
	state int
	path  []int
}

// pathTokens explores the FSA depth first from its initial state and returns, for every state, the
// tokens accepted on the way to the state including the state itself, in order of appearance. The
// path of a state is the one of its first visit, and transitions are explored in interval order.
func pathTokens(fsa *lexical.ScannerFSA) [][]int {
	tokens := make([][]int, len(fsa.States))
	visited := make([]bool, len(fsa.States))

	stack := arraystack.New()
	stack.Push(&fsaVisit{
		state: fsa.Initial,
	})
	for !stack.Empty() {
		v, _ := stack.Pop()
		visit := v.(*fsaVisit)
		if visited[visit.state] {
			continue
		}
		visited[visit.state] = true

		path := append([]int{}, visit.path...)
		for _, t := range fsa.States[visit.state].Accepts {
			if !containsToken(path, t) {
				path = append(path, t)
			}
		}
		tokens[visit.state] = path

		trans := fsa.States[visit.state].Transitions
		for i := len(trans) - 1; i >= 0; i-- {
			if visited[trans[i].Next] {
				continue
			}
			stack.Push(&fsaVisit{
				state: trans[i].Next,
				path:  path,
			})
		}
	}
	return tokens
}

func containsToken(ts []int, t int) bool {
	for _, u := range ts {
		if u == t {
			return true
		}
	}
	return false
}

// ScannerAccepts maps a pair of a parser state and an accepting FSA state to the token a scanner
// must select when it reaches the FSA state while the parser is in the parser state.
type ScannerAccepts struct {
	fsa    *lexical.ScannerFSA
	prec   *LexPrec
	paths  [][]int
	states []*ParserState

	// rows[p][f] is the token selected in the parser state p at the FSA state f, or 0 when no token
	// is selected there.
	rows map[int][]int
}

// NewScannerAccepts computes the token selected for every parser state and every accepting FSA
// state. A candidate token must be accepted on the way to the FSA state, and the parser state must
// be able to consume it. LexPrec breaks ties among the remaining candidates.
func NewScannerAccepts(fsa *lexical.ScannerFSA, states []*ParserState, prec *LexPrec) *ScannerAccepts {
	a := &ScannerAccepts{
		fsa:    fsa,
		prec:   prec,
		paths:  pathTokens(fsa),
		states: states,
		rows:   map[int][]int{},
	}
	for _, s := range states {
		a.rows[s.Number] = a.row(s.acceptable())
	}

	tracer().Debugf("scanner accepts: %v parser states, %v FSA states", len(states), len(fsa.States))

	return a
}

// row selects the tokens for every accepting FSA state when the tokens of acceptable are valid.
func (a *ScannerAccepts) row(acceptable map[int]struct{}) []int {
	row := make([]int, len(a.fsa.States))
	for _, f := range a.fsa.AcceptingStates() {
		var cands []int
		for _, t := range a.paths[f] {
			if _, ok := acceptable[t]; ok {
				cands = append(cands, t)
			}
		}
		if t, ok := a.prec.Select(cands); ok {
			row[f] = t
		}
	}
	return row
}

// Lookup returns the token selected in a parser state at an FSA state.
func (a *ScannerAccepts) Lookup(parserState, fsaState int) (int, bool) {
	row, ok := a.rows[parserState]
	if !ok || fsaState < 0 || fsaState >= len(row) || row[fsaState] == 0 {
		return 0, false
	}
	return row[fsaState], true
}

// Row returns the tokens selected in a parser state indexed by FSA state. 0 means no token.
func (a *ScannerAccepts) Row(parserState int) []int {
	return a.rows[parserState]
}

// States returns the parser states in the order they were given.
func (a *ScannerAccepts) States() []*ParserState {
	return a.states
}
