package parser

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/pslrgen/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src := `
name = "expr"
start = "expr"
expect = 0

[[terminal]]
name = "NUM"
alias = "number"
tag = "int"
pattern = "[0-9]+"

[[terminal]]
name = "GTGT"
literal = ">>"

[[nonterminal]]
name = "expr"
tag = "int"

[[precedence]]
assoc = "left"
symbols = ["'+'", "'-'"]

[[precedence]]
assoc = "right"
symbols = ["'^'"]

[[rule]]
lhs = "expr"
rhs = ["expr", "'+'", "expr"]

[[rule]]
lhs = "expr"
rhs = ["NUM"]
action = "$$ = $1"

[[rule]]
lhs = "expr"
rhs = []
prec = "'^'"

[[lex_prec]]
higher = "GTGT"
lower = "'>'"
`
	root, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal("expr", root.Name)
	assert.Equal("expr", root.Start)
	require.NotNil(t, root.Expect)
	assert.Equal(0, *root.Expect)
	assert.Nil(root.ExpectRR)

	require.Len(t, root.Terminals, 2)
	assert.Equal(&TerminalNode{
		Name:    "NUM",
		Alias:   "number",
		Tag:     "int",
		Pattern: "[0-9]+",
		Pos:     Position{Table: "terminal", Index: 1},
	}, root.Terminals[0])
	assert.Equal(">>", root.Terminals[1].Literal)

	require.Len(t, root.NonTerminals, 1)
	assert.Equal("int", root.NonTerminals[0].Tag)

	require.Len(t, root.Precedences, 2)
	assert.Equal("left", root.Precedences[0].Assoc)
	assert.Equal([]string{"'+'", "'-'"}, root.Precedences[0].Symbols)
	assert.Equal(2, root.Precedences[1].Pos.Index)

	require.Len(t, root.Rules, 3)
	assert.Equal([]string{"expr", "'+'", "expr"}, root.Rules[0].RHS)
	assert.Equal("$$ = $1", root.Rules[1].Action)
	assert.Empty(root.Rules[2].RHS)
	assert.Equal("'^'", root.Rules[2].Prec)

	require.Len(t, root.LexPrecs, 1)
	assert.Equal("GTGT", root.LexPrecs[0].Higher)
	assert.Equal("'>'", root.LexPrecs[0].Lower)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		causes  []error
	}{
		{
			caption: "a grammar needs a name",
			src: `
[[rule]]
lhs = "s"
rhs = ["a"]
`,
			causes: []error{synErrNoGrammarName},
		},
		{
			caption: "unknown keys are rejected",
			src: `
name = "test"
colour = "red"
`,
			causes: []error{synErrUnknownKey},
		},
		{
			caption: "a terminal cannot have both a pattern and a literal",
			src: `
name = "test"

[[terminal]]
name = "a"
pattern = "a+"
literal = "a"
`,
			causes: []error{synErrPatternAndLiteral},
		},
		{
			caption: "a rule needs an LHS",
			src: `
name = "test"

[[rule]]
rhs = ["a"]
`,
			causes: []error{synErrNoProductionName},
		},
		{
			caption: "an alternative cannot contain an empty symbol",
			src: `
name = "test"

[[rule]]
lhs = "s"
rhs = ["a", ""]
`,
			causes: []error{synErrEmptySymbol},
		},
		{
			caption: "a precedence group needs symbols",
			src: `
name = "test"

[[precedence]]
assoc = "left"
`,
			causes: []error{synErrNoPrecSymbol},
		},
		{
			caption: "a lexical precedence needs both sides",
			src: `
name = "test"

[[lex_prec]]
higher = "a"
`,
			causes: []error{synErrIncompleteLexPrec},
		},
		{
			caption: "a broken document",
			src: `
name = "test
`,
			causes: []error{synErrInvalidDocument},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.Error(t, err)

			var specErrs verr.SpecErrors
			require.True(t, errors.As(err, &specErrs))
			require.Len(t, specErrs, len(tt.causes))
			for i, cause := range tt.causes {
				assert.Equal(t, cause, specErrs[i].Cause)
			}
		})
	}
}

func TestIsCharLiteral(t *testing.T) {
	assert := assert.New(t)
	assert.True(IsCharLiteral("'+'"))
	assert.True(IsCharLiteral("'あ'"))
	assert.False(IsCharLiteral("'+"))
	assert.False(IsCharLiteral("'++'"))
	assert.False(IsCharLiteral("plus"))
	assert.Equal("あ", CharOfLiteral("'あ'"))
}
