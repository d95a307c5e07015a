package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nihei9/pslrgen/grammar"
	spec "github.com/nihei9/pslrgen/spec/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int {
	return &n
}

func TestCheckExpectations(t *testing.T) {
	tests := []struct {
		caption string
		summary *spec.ConflictSummary
		err     bool
	}{
		{
			caption: "without expectations, conflicts are not errors",
			summary: &spec.ConflictSummary{SRConflictCount: 1, RRConflictCount: 1},
		},
		{
			caption: "the expected shift/reduce count matches",
			summary: &spec.ConflictSummary{SRConflictCount: 1, ExpectedSR: intPtr(1)},
		},
		{
			caption: "the expected shift/reduce count differs",
			summary: &spec.ConflictSummary{SRConflictCount: 2, ExpectedSR: intPtr(1)},
			err:     true,
		},
		{
			caption: "expecting shift/reduce conflicts rejects unexpected reduce/reduce conflicts",
			summary: &spec.ConflictSummary{SRConflictCount: 1, RRConflictCount: 1, ExpectedSR: intPtr(1)},
			err:     true,
		},
		{
			caption: "the expected reduce/reduce count matches",
			summary: &spec.ConflictSummary{RRConflictCount: 1, ExpectedRR: intPtr(1)},
		},
		{
			caption: "the expected reduce/reduce count differs",
			summary: &spec.ConflictSummary{ExpectedRR: intPtr(1)},
			err:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			err := checkExpectations(tt.summary)
			if tt.err {
				assert.Error(t, err)
				assert.Equal(t, exitConflictMismatch, exitCode(err))
				assert.Equal(t, exitConflictMismatch, exitCode(fmt.Errorf("compile: %w", err)))
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Equal(t, exitFailure, exitCode(errors.New("Cannot read a grammar")))
}

const danglingElse = `
name = "stmt"
expect = 1

[[terminal]]
name = "IF"
literal = "if"

[[terminal]]
name = "THEN"
literal = "then"

[[terminal]]
name = "ELSE"
literal = "else"

[[terminal]]
name = "EXPR"
literal = "e"

[[terminal]]
name = "OTHER"
literal = "o"

[[rule]]
lhs = "stmt"
rhs = ["IF", "EXPR", "THEN", "stmt"]

[[rule]]
lhs = "stmt"
rhs = ["IF", "EXPR", "THEN", "stmt", "ELSE", "stmt"]

[[rule]]
lhs = "stmt"
rhs = ["OTHER"]
`

func TestDescribeAndExplain(t *testing.T) {
	gram, err := readGrammar(strings.NewReader(danglingElse))
	require.NoError(t, err)
	_, report, err := grammar.Compile(gram, grammar.EnableCounterexamples())
	require.NoError(t, err)
	require.NoError(t, checkExpectations(report.Summary))

	var b strings.Builder
	require.NoError(t, writeDescription(&b, report))
	desc := b.String()
	assert.Contains(t, desc, "1 shift/reduce conflicts")
	assert.Contains(t, desc, "shift/reduce conflict (reduce 2) on ELSE: shift adopted")
	assert.Contains(t, desc, "# Scanner")

	var cex *spec.Counterexample
	for _, s := range report.States {
		if len(s.Counterexamples) > 0 {
			cex = s.Counterexamples[0]
		}
	}
	require.NotNil(t, cex)
	ll := derivationList(report, cex.Derivation1, nil, 0)
	require.NotEmpty(t, ll)
	assert.Equal(t, 0, ll[0].Level)
	assert.True(t, strings.HasPrefix(ll[0].Text, "1: $accept →"))
}
