package pslr

import (
	"github.com/cnf/structhash"
)

// Compatible reports whether two parser states select the same token, or no token, at every
// accepting FSA state. Compatible states can share one scanner context.
func (a *ScannerAccepts) Compatible(p1, p2 int) bool {
	r1 := a.rows[p1]
	r2 := a.rows[p2]
	for _, f := range a.fsa.AcceptingStates() {
		if cell(r1, f) != cell(r2, f) {
			return false
		}
	}
	return true
}

func cell(row []int, f int) int {
	if f < 0 || f >= len(row) {
		return 0
	}
	return row[f]
}

// ScannerContext is a group of parser states that share one row of selected tokens.
type ScannerContext struct {
	ID     int
	Row    []int
	States []int
}

type contextFingerprint struct {
	Row []int
}

// ScannerContexts groups the parser states into scanner contexts. Contexts are numbered in the
// order of their first parser state.
func (a *ScannerAccepts) ScannerContexts() ([]*ScannerContext, error) {
	var contexts []*ScannerContext
	byHash := map[string][]*ScannerContext{}
	for _, s := range a.states {
		row := a.rows[s.Number]
		h, err := structhash.Hash(&contextFingerprint{Row: row}, 1)
		if err != nil {
			return nil, err
		}

		var ctx *ScannerContext
		for _, c := range byHash[h] {
			if a.Compatible(c.States[0], s.Number) {
				ctx = c
				break
			}
		}
		if ctx == nil {
			ctx = &ScannerContext{
				ID:  len(contexts),
				Row: row,
			}
			contexts = append(contexts, ctx)
			byHash[h] = append(byHash[h], ctx)
		}
		ctx.States = append(ctx.States, s.Number)
	}

	tracer().Debugf("scanner contexts: %v parser states share %v contexts", len(a.states), len(contexts))

	return contexts, nil
}

// Inadequacy records that a parser state merges origins requiring different tokens at an FSA
// state, so the scanner of the merged state selects a token one of the origins cannot consume.
type Inadequacy struct {
	State      int
	Production int
	Origins    [2]int
	FSAState   int
	Tokens     [2]int
}

// FindInadequacies compares, for every reduction merging several origins, the tokens each origin
// alone would select. Each pair of an FSA state and conflicting tokens is reported once per parser
// state.
func (a *ScannerAccepts) FindInadequacies() []*Inadequacy {
	var inadequacies []*Inadequacy
	accepting := a.fsa.AcceptingStates()
	for _, s := range a.states {
		seen := map[[3]int]struct{}{}
		for _, red := range s.Reductions {
			if len(red.Origins) < 2 {
				continue
			}
			rows := make([][]int, len(red.Origins))
			for i, o := range red.Origins {
				rows[i] = a.row(s.acceptableFrom(red, o))
			}
			for _, f := range accepting {
				for i := 0; i < len(red.Origins); i++ {
					for j := i + 1; j < len(red.Origins); j++ {
						t1 := rows[i][f]
						t2 := rows[j][f]
						if t1 == 0 || t2 == 0 || t1 == t2 {
							continue
						}
						key := [3]int{f, t1, t2}
						if t1 > t2 {
							key = [3]int{f, t2, t1}
						}
						if _, ok := seen[key]; ok {
							continue
						}
						seen[key] = struct{}{}

						inadequacies = append(inadequacies, &Inadequacy{
							State:      s.Number,
							Production: red.Production,
							Origins:    [2]int{red.Origins[i].State, red.Origins[j].State},
							FSAState:   f,
							Tokens:     [2]int{t1, t2},
						})

						tracer().Debugf("state %v: origins %v and %v select %v and %v at FSA state %v", s.Number, red.Origins[i].State, red.Origins[j].State, t1, t2, f)
					}
				}
			}
		}
	}
	return inadequacies
}
