package pslr

// Origin is a state a reduction looks back to, with the part of the look-ahead set it contributes.
type Origin struct {
	State     int
	LookAhead []int
}

type Reduction struct {
	Production int
	LookAhead  []int
	Origins    []*Origin
}

// ParserState is the part of an LALR state the scanner analysis needs: the tokens it shifts and its
// reductions after conflict resolution.
type ParserState struct {
	Number     int
	Shifts     []int
	Reductions []*Reduction
}

// acceptable returns the tokens the state can consume.
func (s *ParserState) acceptable() map[int]struct{} {
	set := map[int]struct{}{}
	for _, t := range s.Shifts {
		set[t] = struct{}{}
	}
	for _, r := range s.Reductions {
		for _, t := range r.LookAhead {
			set[t] = struct{}{}
		}
	}
	return set
}

// acceptableFrom returns the tokens the state could consume if it had been entered only through
// an origin of a reduction.
func (s *ParserState) acceptableFrom(red *Reduction, origin *Origin) map[int]struct{} {
	set := map[int]struct{}{}
	for _, t := range s.Shifts {
		set[t] = struct{}{}
	}
	for _, r := range s.Reductions {
		la := r.LookAhead
		if r == red {
			la = origin.LookAhead
		}
		for _, t := range la {
			set[t] = struct{}{}
		}
	}
	return set
}
