package pslr

import (
	"fmt"
)

// LexPrecPair declares that the token Higher outranks the token Lower.
type LexPrecPair struct {
	Higher int
	Lower  int
}

// LexPrec holds the lexical precedence of tokens: explicit "A outranks B" declarations, and the
// declaration order of tokens as a tie-break.
type LexPrec struct {
	order    map[int]int
	outranks map[int]map[int]struct{}
}

// NewLexPrec returns a lexical precedence table. tokens lists the tokens in declaration order.
func NewLexPrec(tokens []int, pairs []*LexPrecPair) (*LexPrec, error) {
	p := &LexPrec{
		order:    map[int]int{},
		outranks: map[int]map[int]struct{}{},
	}
	for i, t := range tokens {
		if _, ok := p.order[t]; ok {
			return nil, fmt.Errorf("a token appears twice in the declaration order; token: %v", t)
		}
		p.order[t] = i
	}
	for _, pair := range pairs {
		if _, ok := p.order[pair.Higher]; !ok {
			return nil, fmt.Errorf("a lexical precedence refers to an undeclared token; token: %v", pair.Higher)
		}
		if _, ok := p.order[pair.Lower]; !ok {
			return nil, fmt.Errorf("a lexical precedence refers to an undeclared token; token: %v", pair.Lower)
		}
		if pair.Higher == pair.Lower {
			return nil, fmt.Errorf("a token cannot outrank itself; token: %v", pair.Higher)
		}
		lower, ok := p.outranks[pair.Higher]
		if !ok {
			lower = map[int]struct{}{}
			p.outranks[pair.Higher] = lower
		}
		lower[pair.Lower] = struct{}{}
	}
	return p, nil
}

// Outranks reports whether a is declared to outrank b.
func (p *LexPrec) Outranks(a, b int) bool {
	_, ok := p.outranks[a][b]
	return ok
}

// Order returns the declaration order of a token, or -1 for an unknown token.
func (p *LexPrec) Order(t int) int {
	if o, ok := p.order[t]; ok {
		return o
	}
	return -1
}

// Select chooses one token among candidates. The candidate outranking the most other candidates
// wins, and a tie goes to the candidate declared first.
func (p *LexPrec) Select(candidates []int) (int, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	best := candidates[0]
	bestScore := p.score(best, candidates)
	for _, c := range candidates[1:] {
		s := p.score(c, candidates)
		if s > bestScore || (s == bestScore && p.Order(c) < p.Order(best)) {
			best = c
			bestScore = s
		}
	}
	return best, true
}

func (p *LexPrec) score(t int, candidates []int) int {
	n := 0
	for _, c := range candidates {
		if c != t && p.Outranks(t, c) {
			n++
		}
	}
	return n
}
